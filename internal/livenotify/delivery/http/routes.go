package http

import (
	"livenotify-srv/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the subscription commands. Reads need a token, writes the admin role.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, mw middleware.Middleware) {
	admin := mw.RequireAdmin()

	groups := r.Group("/groups/:group")
	{
		groups.GET("/subscriptions", h.ShowGroupSubscriptions)
		groups.POST("/subscriptions", admin, h.Subscribe)
		groups.POST("/subscriptions/remove", admin, h.Unsubscribe)
		groups.DELETE("/subscriptions", admin, h.ClearGroup)
		groups.GET("/config", h.GroupConfig)
		groups.PUT("/config", admin, h.SetGroupConfig)
	}

	streamers := r.Group("/streamers/:uid")
	{
		streamers.GET("/subscriptions", h.ShowEntitySubscriptions)
		streamers.DELETE("/subscriptions", admin, h.ClearEntity)
	}

	sensitive := r.Group("/sensitive-streamers")
	{
		sensitive.GET("", h.SensitiveEntities)
		sensitive.DELETE("/:uid", admin, h.ClearSensitive)
	}
}
