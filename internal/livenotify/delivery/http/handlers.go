package http

import (
	stderrors "errors"

	"livenotify-srv/internal/livenotify"
	"livenotify-srv/pkg/errors"
	"livenotify-srv/pkg/response"

	"github.com/gin-gonic/gin"
)

// reply answers with the command reply. A rejected command carries its chat
// reply as the error message.
func (h *Handler) reply(c *gin.Context, r livenotify.Reply, err error) {
	if err == nil {
		response.OK(c, newReplyResp(r))
		return
	}
	for target, httpErr := range errMap {
		if stderrors.Is(err, target) {
			msg := httpErr.Message
			if r.Text != "" {
				msg = r.Text
			}
			response.Error(c, errors.NewHTTPError(httpErr.Code, msg), nil)
			return
		}
	}
	h.logger.Errorf(c.Request.Context(), "livenotify.delivery.http: %s %s: %v", c.Request.Method, c.FullPath(), err)
	response.Error(c, err, nil)
}

func (h *Handler) Subscribe(c *gin.Context) {
	var req uidsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errors.NewValidationError(400, "body", err.Error()), nil)
		return
	}
	if err := req.validate(); err != nil {
		response.Error(c, err, nil)
		return
	}
	r, err := h.uc.Subscribe(c.Request.Context(), c.Param("group"), req.values())
	h.reply(c, r, err)
}

func (h *Handler) Unsubscribe(c *gin.Context) {
	var req uidsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errors.NewValidationError(400, "body", err.Error()), nil)
		return
	}
	if err := req.validate(); err != nil {
		response.Error(c, err, nil)
		return
	}
	r, err := h.uc.Unsubscribe(c.Request.Context(), c.Param("group"), req.values())
	h.reply(c, r, err)
}

func (h *Handler) ClearGroup(c *gin.Context) {
	r, err := h.uc.ClearGroup(c.Request.Context(), c.Param("group"))
	h.reply(c, r, err)
}

func (h *Handler) ShowGroupSubscriptions(c *gin.Context) {
	r, err := h.uc.ShowGroupSubscriptions(c.Request.Context(), c.Param("group"))
	h.reply(c, r, err)
}

func (h *Handler) GroupConfig(c *gin.Context) {
	r, err := h.uc.GroupConfig(c.Request.Context(), c.Param("group"))
	h.reply(c, r, err)
}

func (h *Handler) SetGroupConfig(c *gin.Context) {
	var req setConfigReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errors.NewValidationError(400, "body", err.Error()), nil)
		return
	}
	if err := req.validate(); err != nil {
		response.Error(c, err, nil)
		return
	}
	r, err := h.uc.SetGroupConfig(c.Request.Context(), c.Param("group"), req.Key, req.Value)
	h.reply(c, r, err)
}

func (h *Handler) ShowEntitySubscriptions(c *gin.Context) {
	r, err := h.uc.ShowEntitySubscriptions(c.Request.Context(), c.Param("uid"))
	h.reply(c, r, err)
}

func (h *Handler) ClearEntity(c *gin.Context) {
	r, err := h.uc.ClearEntity(c.Request.Context(), c.Param("uid"))
	h.reply(c, r, err)
}

func (h *Handler) SensitiveEntities(c *gin.Context) {
	response.OK(c, sensitiveResp{UIDs: h.uc.SensitiveEntities()})
}

func (h *Handler) ClearSensitive(c *gin.Context) {
	if err := h.uc.ClearSensitive(c.Request.Context(), c.Param("uid")); err != nil {
		response.ErrorWithMap(c, err, errMap)
		return
	}
	response.OK(c, sensitiveResp{UIDs: h.uc.SensitiveEntities()})
}
