package httpserver

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"livenotify-srv/internal/livenotify"
	"livenotify-srv/internal/middleware"
	"livenotify-srv/internal/moderation"
	moderationHTTP "livenotify-srv/internal/moderation/delivery/http"
	"livenotify-srv/pkg/discord"
	"livenotify-srv/pkg/jwt"
	"livenotify-srv/pkg/log"
)

// BotStatus reports whether the OneBot connection is up.
type BotStatus interface {
	Connected() bool
}

// Pinger is a backend probed by the readiness check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HTTPServer represents the HTTP server with all dependencies.
// New() only wires dependencies and validates them; Run() serves.
type HTTPServer struct {
	gin         *gin.Engine
	logger      log.Logger
	host        string
	port        int
	environment string

	liveUC      livenotify.UseCase
	moderateUC  moderation.UseCase
	permissions moderationHTTP.Permissions
	bot         BotStatus

	jwtMgr   jwt.Manager
	limiter  *middleware.SubjectLimiter
	registry *prometheus.Registry

	// optional
	redis   Pinger
	discord discord.IDiscord
}

// Config is the constructor input for HTTPServer.
type Config struct {
	// Host is the listen interface, empty for all.
	Host        string
	Port        int
	Environment string

	LiveNotify  livenotify.UseCase
	Moderation  moderation.UseCase
	Permissions moderationHTTP.Permissions
	Bot         BotStatus

	JWTManager jwt.Manager
	Limiter    *middleware.SubjectLimiter
	Registry   *prometheus.Registry

	Redis   Pinger
	Discord discord.IDiscord
}

const shutdownTimeout = 10 * time.Second

// New creates a new HTTPServer instance. It does not start any goroutine.
func New(logger log.Logger, cfg Config) (*HTTPServer, error) {
	gin.SetMode(ginMode(cfg.Environment))

	srv := &HTTPServer{
		gin:         gin.New(),
		logger:      logger,
		host:        cfg.Host,
		port:        cfg.Port,
		environment: cfg.Environment,

		liveUC:      cfg.LiveNotify,
		moderateUC:  cfg.Moderation,
		permissions: cfg.Permissions,
		bot:         cfg.Bot,

		jwtMgr:   cfg.JWTManager,
		limiter:  cfg.Limiter,
		registry: cfg.Registry,

		redis:   cfg.Redis,
		discord: cfg.Discord,
	}

	if err := srv.validate(); err != nil {
		return nil, err
	}
	srv.mapHandlers()
	return srv, nil
}

func (s *HTTPServer) validate() error {
	if s.logger == nil {
		return errors.New("logger is required")
	}
	if s.port == 0 {
		return errors.New("port is required")
	}
	if s.jwtMgr == nil {
		return errors.New("JWTManager is required")
	}
	if s.liveUC == nil || s.moderateUC == nil || s.permissions == nil {
		return errors.New("use cases are required")
	}
	if s.bot == nil {
		return errors.New("bot status is required")
	}
	if s.registry == nil {
		return errors.New("metrics registry is required")
	}
	return nil
}

func ginMode(env string) string {
	switch env {
	case "production", gin.ReleaseMode:
		return gin.ReleaseMode
	case gin.TestMode:
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}
