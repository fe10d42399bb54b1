package bilibili

import (
	"encoding/json"
	"net/http"
	"time"

	"livenotify-srv/pkg/log"
)

type Config struct {
	BaseURL string
	Timeout time.Duration
}

type envelope struct {
	Code    int             `json:"code"`
	Msg     string          `json:"msg"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type statusRequest struct {
	UIDs []int64 `json:"uids"`
}

type implClient struct {
	baseURL string
	client  *http.Client
	logger  log.Logger
}
