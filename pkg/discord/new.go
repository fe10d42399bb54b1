package discord

import (
	"net/http"
	"strings"
	"time"

	"github.com/juju/clock"

	"livenotify-srv/pkg/log"
)

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     30 * time.Second,
		},
	}
}

// DefaultConfig returns the default Discord config.
func DefaultConfig() Config {
	return Config{
		Timeout:         DefaultTimeout,
		RetryCount:      DefaultRetryCount,
		RetryDelay:      DefaultRetryDelay,
		DefaultUsername: DefaultUsername,
	}
}

func validateWebhookURL(webhookURL string) (string, error) {
	webhookURL = strings.TrimSpace(webhookURL)
	if webhookURL == "" {
		return "", errWebhookRequired
	}
	if !strings.HasPrefix(webhookURL, webhookPrefix) {
		return "", errInvalidWebhook
	}
	parts := strings.SplitN(strings.TrimPrefix(webhookURL, webhookPrefix), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", errInvalidWebhook
	}
	return webhookURL, nil
}

// New returns a client posting to webhookURL.
func New(l log.Logger, webhookURL string) (IDiscord, error) {
	endpoint, err := validateWebhookURL(webhookURL)
	if err != nil {
		return nil, err
	}
	return newImpl(l, endpoint, DefaultConfig(), clock.WallClock), nil
}

func newImpl(l log.Logger, endpoint string, cfg Config, clk clock.Clock) *discordImpl {
	return &discordImpl{
		l:        l,
		endpoint: endpoint,
		config:   cfg,
		client:   newHTTPClient(cfg.Timeout),
		clock:    clk,
	}
}
