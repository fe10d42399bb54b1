package safety

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"livenotify-srv/internal/storage"
	"livenotify-srv/pkg/log"
)

const (
	wordListComponent = "SensitiveWords"
	wordListFile      = "sensitivewords.txt"
)

// LoadFile reads the word list from a local file.
func LoadFile(ctx context.Context, path string, logger log.Logger) (*Filter, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("safety.LoadFile: %w", err)
	}
	defer f.Close()
	return Load(ctx, f, logger)
}

// LoadStore reads the word list kept next to the rest of the state. A missing
// list yields an empty filter that matches nothing.
func LoadStore(ctx context.Context, st storage.Store, logger log.Logger) (*Filter, error) {
	data, found, err := st.LoadRaw(ctx, wordListComponent, wordListFile)
	if err != nil {
		return nil, fmt.Errorf("safety.LoadStore: %w", err)
	}
	if !found {
		logger.Warnf(ctx, "safety.LoadStore: %s/%s not found, no words loaded", wordListComponent, wordListFile)
		return New(ctx, nil, logger), nil
	}
	return Load(ctx, bytes.NewReader(data), logger)
}
