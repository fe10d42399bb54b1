package http

import (
	"livenotify-srv/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the moderation and permission endpoints. Everything
// but the reads needs the admin role.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, mw middleware.Middleware) {
	admin := mw.RequireAdmin()

	r.GET("/permissions", h.Permissions)
	r.POST("/admins", admin, h.AddAdmin)
	r.POST("/members/ban", admin, h.BanMembers)
	r.POST("/members/unban", admin, h.UnbanMembers)

	groups := r.Group("/groups/:group")
	{
		groups.POST("/ban", admin, h.BanGroup)
		groups.DELETE("/ban", admin, h.UnbanGroup)
		groups.PUT("/bot", admin, h.SetBot)
		groups.GET("/features", h.Features)
		groups.PUT("/features", admin, h.SetFeatures)
	}

	r.GET("/violations", h.Violations)
	r.POST("/violations", admin, h.RecordViolation)
	r.POST("/messages/check", admin, h.CheckMessage)
}
