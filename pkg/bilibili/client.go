package bilibili

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"livenotify-srv/internal/model"
)

func (c *implClient) GetStatusInfoByUIDs(ctx context.Context, uids []int64) (map[string]model.RoomInfo, error) {
	if len(uids) == 0 {
		return nil, ErrNoUIDs
	}

	body, err := json.Marshal(statusRequest{UIDs: uids})
	if err != nil {
		return nil, fmt.Errorf("pkg.bilibili.GetStatusInfoByUIDs: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+statusInfoByUIDsPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("pkg.bilibili.GetStatusInfoByUIDs: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pkg.bilibili.GetStatusInfoByUIDs: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("pkg.bilibili.GetStatusInfoByUIDs: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: truncate(string(raw), 256)}
	}

	return decodeStatus(raw)
}

func decodeStatus(raw []byte) (map[string]model.RoomInfo, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if env.Code != 0 {
		msg := env.Msg
		if msg == "" {
			msg = env.Message
		}
		return nil, &APIError{Code: env.Code, Msg: msg, Message: env.Message}
	}

	rooms := map[string]model.RoomInfo{}
	trimmed := bytes.TrimSpace(env.Data)
	// an empty result comes back as [] rather than {}
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte("[]")) {
		return rooms, nil
	}
	if err := json.Unmarshal(trimmed, &rooms); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return rooms, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
