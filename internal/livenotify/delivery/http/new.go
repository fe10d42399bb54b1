package http

import (
	"livenotify-srv/internal/livenotify"
	"livenotify-srv/pkg/log"
)

type Handler struct {
	uc     livenotify.UseCase
	logger log.Logger
}

func New(uc livenotify.UseCase, logger log.Logger) *Handler {
	return &Handler{uc: uc, logger: logger}
}
