package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livenotify-srv/internal/livenotify"
	"livenotify-srv/internal/metrics"
	"livenotify-srv/internal/moderation"
	moderationHTTP "livenotify-srv/internal/moderation/delivery/http"
	"livenotify-srv/pkg/jwt"
	"livenotify-srv/pkg/log"
)

type liveStub struct{ livenotify.UseCase }

func (liveStub) SubscribedEntities() []string { return []string{"200", "201"} }

type moderationStub struct{ moderation.UseCase }

type permsStub struct{ moderationHTTP.Permissions }

type bot struct{ up bool }

func (b *bot) Connected() bool { return b.up }

type redisStub struct {
	err error
}

func (r redisStub) Ping(ctx context.Context) error { return r.err }

func newServer(t *testing.T, b *bot) *HTTPServer {
	t.Helper()
	mgr, err := jwt.New(jwt.Config{SecretKey: "0123456789abcdef0123456789abcdef"})
	require.NoError(t, err)
	reg := prometheus.NewRegistry()
	c := metrics.NewCollector()
	require.NoError(t, reg.Register(c))
	c.PollCycle(metrics.OutcomeOK, 1)

	srv, err := New(log.NewNop(), Config{
		Port:        8080,
		Environment: "test",
		LiveNotify:  liveStub{},
		Moderation:  moderationStub{},
		Permissions: permsStub{},
		Bot:         b,
		JWTManager:  mgr,
		Registry:    reg,
	})
	require.NoError(t, err)
	return srv
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestProbes(t *testing.T) {
	b := &bot{}
	srv := newServer(t, b)
	h := srv.Handler()

	w := get(h, "/health")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"subscribed":2`)
	assert.Contains(t, w.Body.String(), `"bot":"disconnected"`)

	assert.Equal(t, http.StatusOK, get(h, "/live").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(h, "/ready").Code)

	b.up = true
	assert.Equal(t, http.StatusOK, get(h, "/ready").Code)

	srv.redis = redisStub{err: errors.New("down")}
	assert.Equal(t, http.StatusServiceUnavailable, get(h, "/ready").Code)
}

func TestMetricsAndAuth(t *testing.T) {
	srv := newServer(t, &bot{up: true})
	h := srv.Handler()

	w := get(h, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `livenotify_poll_cycles_total{outcome="ok"} 1`)

	assert.Equal(t, http.StatusUnauthorized, get(h, "/api/v1/livenotify/groups/100/subscriptions").Code)
}

func TestListenAddr(t *testing.T) {
	srv := newServer(t, &bot{})
	assert.Equal(t, ":8080", srv.addr())

	srv.host = "127.0.0.1"
	assert.Equal(t, "127.0.0.1:8080", srv.addr())

	srv.host = "::1"
	assert.Equal(t, "[::1]:8080", srv.addr())
}

func TestNewValidates(t *testing.T) {
	_, err := New(log.NewNop(), Config{Port: 8080})
	assert.Error(t, err)
}
