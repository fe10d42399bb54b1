package bilibili

import (
	"context"

	"livenotify-srv/internal/model"
)

// Client reads live room status.
type Client interface {
	// GetStatusInfoByUIDs fetches the room of every uid in one request, keyed by uid.
	GetStatusInfoByUIDs(ctx context.Context, uids []int64) (map[string]model.RoomInfo, error)
}
