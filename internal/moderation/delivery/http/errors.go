package http

import (
	"net/http"

	"livenotify-srv/internal/moderation"
	"livenotify-srv/internal/permission"
	"livenotify-srv/pkg/errors"
	"livenotify-srv/pkg/response"
)

var errMap = response.ErrorMapping{
	permission.ErrAdminImmune:     errors.NewHTTPError(http.StatusConflict, "Bot administrators cannot be banned"),
	permission.ErrUnknownSwitch:   errors.NewHTTPError(http.StatusBadRequest, "Unknown feature switch operation"),
	permission.ErrEmptyIdentifier: errors.NewHTTPError(http.StatusBadRequest, "Identifier is required"),
	moderation.ErrEmptyViolation:  errors.NewHTTPError(http.StatusBadRequest, "member_id or group_id is required"),
}
