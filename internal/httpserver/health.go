package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"livenotify-srv/pkg/errors"
	"livenotify-srv/pkg/response"
)

const serviceName = "livenotify-srv"

func (srv *HTTPServer) healthCheck(c *gin.Context) {
	response.OK(c, gin.H{
		"status":      "healthy",
		"service":     serviceName,
		"bot":         connState(srv.bot.Connected()),
		"subscribed":  len(srv.liveUC.SubscribedEntities()),
		"environment": srv.environment,
	})
}

// readyCheck fails while the bot is offline or the Redis backend is unreachable.
func (srv *HTTPServer) readyCheck(c *gin.Context) {
	if !srv.bot.Connected() {
		response.Error(c, errors.NewHTTPError(http.StatusServiceUnavailable, "OneBot connection not available"), nil)
		return
	}
	body := gin.H{"status": "ready", "service": serviceName, "bot": "connected"}
	if srv.redis != nil {
		if err := srv.redis.Ping(c.Request.Context()); err != nil {
			response.Error(c, errors.NewHTTPError(http.StatusServiceUnavailable, "Redis connection not available"), nil)
			return
		}
		body["redis"] = "connected"
	}
	response.OK(c, body)
}

func (srv *HTTPServer) liveCheck(c *gin.Context) {
	response.OK(c, gin.H{"status": "alive", "service": serviceName})
}

func connState(ok bool) string {
	if ok {
		return "connected"
	}
	return "disconnected"
}
