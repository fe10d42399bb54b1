package http

import (
	"context"

	"livenotify-srv/internal/model"
	"livenotify-srv/internal/moderation"
	"livenotify-srv/internal/permission"
	"livenotify-srv/pkg/log"
)

// Permissions is the access list administration used by the handlers.
type Permissions interface {
	Snapshot() model.Permission
	Features(group string) model.FeatureSwitch
	AddAdmin(ctx context.Context, member string) error
	BanMember(ctx context.Context, members ...string) ([]string, error)
	UnbanMember(ctx context.Context, members ...string) error
	BanGroup(ctx context.Context, group string) (bool, error)
	EnableBot(ctx context.Context, group string) error
	DisableBot(ctx context.Context, group string) error
	SetFeature(ctx context.Context, group string, op permission.SwitchOp, features ...string) error
}

type Handler struct {
	uc     moderation.UseCase
	perms  Permissions
	logger log.Logger
}

func New(uc moderation.UseCase, perms Permissions, logger log.Logger) *Handler {
	return &Handler{uc: uc, perms: perms, logger: logger}
}
