package httpserver

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	liveHTTP "livenotify-srv/internal/livenotify/delivery/http"
	"livenotify-srv/internal/middleware"
	moderationHTTP "livenotify-srv/internal/moderation/delivery/http"
)

const Api = "/api/v1"

func (srv *HTTPServer) mapHandlers() {
	mw := middleware.New(srv.logger, srv.jwtMgr, srv.limiter)
	srv.gin.Use(middleware.Recovery(srv.logger, srv.discord))

	srv.gin.GET("/health", srv.healthCheck)
	srv.gin.GET("/ready", srv.readyCheck)
	srv.gin.GET("/live", srv.liveCheck)
	srv.gin.GET("/metrics", gin.WrapH(promhttp.HandlerFor(srv.registry, promhttp.HandlerOpts{})))

	api := srv.gin.Group(Api, mw.Auth(), mw.RateLimit())
	liveHTTP.New(srv.liveUC, srv.logger).RegisterRoutes(api.Group("/livenotify"), mw)
	moderationHTTP.New(srv.moderateUC, srv.permissions, srv.logger).RegisterRoutes(api.Group("/moderation"), mw)
}
