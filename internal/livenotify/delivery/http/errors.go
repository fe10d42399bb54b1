package http

import (
	"net/http"

	"livenotify-srv/internal/livenotify"
	"livenotify-srv/pkg/errors"
	"livenotify-srv/pkg/response"
)

var errMap = response.ErrorMapping{
	livenotify.ErrEmptyGroup:          errors.NewHTTPError(http.StatusBadRequest, "Group id is required"),
	livenotify.ErrNoUIDs:              errors.NewHTTPError(http.StatusBadRequest, "No streamer uid recognized"),
	livenotify.ErrUnknownConfigKey:    errors.NewHTTPError(http.StatusBadRequest, "Unknown config item"),
	livenotify.ErrUnknownConfigValue:  errors.NewHTTPError(http.StatusBadRequest, "Unknown switch value"),
	livenotify.ErrStreamerNotRedacted: errors.NewHTTPError(http.StatusNotFound, "Streamer is not redacted"),
}
