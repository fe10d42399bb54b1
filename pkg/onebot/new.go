package onebot

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/juju/clock"

	"livenotify-srv/pkg/log"
)

// New returns a client for cfg. clk may be nil.
func New(cfg Config, clk clock.Clock, logger log.Logger) (Client, error) {
	if cfg.URL == "" {
		return nil, ErrURLRequired
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.MinBackoff <= 0 {
		cfg.MinBackoff = DefaultMinBackoff
	}
	if cfg.MaxBackoff < cfg.MinBackoff {
		cfg.MaxBackoff = max(DefaultMaxBackoff, cfg.MinBackoff)
	}
	if clk == nil {
		clk = clock.WallClock
	}

	header := http.Header{}
	if cfg.AccessToken != "" {
		header.Set("Authorization", "Bearer "+cfg.AccessToken)
	}

	return &implClient{
		cfg:     cfg,
		dialer:  websocket.DefaultDialer,
		header:  header,
		clock:   clk,
		logger:  logger,
		pending: make(map[string]chan response),
	}, nil
}
