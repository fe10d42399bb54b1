package http

import (
	"livenotify-srv/internal/permission"
	"livenotify-srv/pkg/errors"
	"livenotify-srv/pkg/response"

	"github.com/gin-gonic/gin"
)

func (h *Handler) fail(c *gin.Context, err error) {
	h.logger.Warnf(c.Request.Context(), "moderation.delivery.http: %s %s: %v", c.Request.Method, c.FullPath(), err)
	response.ErrorWithMap(c, err, errMap)
}

func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		response.Error(c, errors.NewValidationError(400, "body", err.Error()), nil)
		return false
	}
	return true
}

func (h *Handler) Permissions(c *gin.Context) {
	response.OK(c, h.perms.Snapshot())
}

func (h *Handler) AddAdmin(c *gin.Context) {
	var req adminReq
	if !bindJSON(c, &req) {
		return
	}
	if err := h.perms.AddAdmin(c.Request.Context(), req.Member); err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, h.perms.Snapshot())
}

func (h *Handler) BanMembers(c *gin.Context) {
	var req membersReq
	if !bindJSON(c, &req) {
		return
	}
	if err := req.validate(); err != nil {
		response.Error(c, err, nil)
		return
	}
	banned, err := h.perms.BanMember(c.Request.Context(), req.Members...)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, banResp{Banned: banned})
}

func (h *Handler) UnbanMembers(c *gin.Context) {
	var req membersReq
	if !bindJSON(c, &req) {
		return
	}
	if err := req.validate(); err != nil {
		response.Error(c, err, nil)
		return
	}
	if err := h.perms.UnbanMember(c.Request.Context(), req.Members...); err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, h.perms.Snapshot())
}

func (h *Handler) BanGroup(c *gin.Context) {
	group := c.Param("group")
	added, err := h.perms.BanGroup(c.Request.Context(), group)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, groupBanResp{Group: group, Added: added})
}

// UnbanGroup lifts the ban and resets the violation counter.
func (h *Handler) UnbanGroup(c *gin.Context) {
	if err := h.uc.UnbanGroup(c.Request.Context(), c.Param("group")); err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, h.perms.Snapshot())
}

func (h *Handler) SetBot(c *gin.Context) {
	var req botReq
	if !bindJSON(c, &req) {
		return
	}
	if req.Enabled == nil {
		response.Error(c, errors.NewValidationError(400, "enabled", "required"), nil)
		return
	}

	ctx := c.Request.Context()
	var err error
	if *req.Enabled {
		err = h.perms.EnableBot(ctx, c.Param("group"))
	} else {
		err = h.perms.DisableBot(ctx, c.Param("group"))
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, h.perms.Snapshot())
}

func (h *Handler) Features(c *gin.Context) {
	response.OK(c, h.perms.Features(c.Param("group")))
}

func (h *Handler) SetFeatures(c *gin.Context) {
	var req featuresReq
	if !bindJSON(c, &req) {
		return
	}
	if err := req.validate(); err != nil {
		response.Error(c, err, nil)
		return
	}
	group := c.Param("group")
	if err := h.perms.SetFeature(c.Request.Context(), group, permission.SwitchOp(req.Op), req.Features...); err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, h.perms.Features(group))
}

func (h *Handler) Violations(c *gin.Context) {
	response.OK(c, h.uc.Counts())
}

func (h *Handler) RecordViolation(c *gin.Context) {
	var req violationReq
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.uc.RecordViolation(c.Request.Context(), req.toInput())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, newRecordResp(res))
}

func (h *Handler) CheckMessage(c *gin.Context) {
	var req checkReq
	if !bindJSON(c, &req) {
		return
	}
	hit, err := h.uc.CheckMessage(c.Request.Context(), req.toInput())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, checkResp{Sensitive: hit})
}
