package usecase

import (
	"context"
	"fmt"
	"strconv"

	"livenotify-srv/internal/alert"
	"livenotify-srv/pkg/discord"
)

func (uc *implUseCase) DispatchGroupBanned(ctx context.Context, input alert.GroupBannedInput) error {
	if input.GroupID == "" {
		return alert.ErrInvalidInput
	}
	uc.logger.Warnf(ctx, "internal.alert.DispatchGroupBanned: group %s banned after %d violations", input.GroupID, input.Violations)
	if uc.discord == nil {
		return nil
	}

	at := input.BannedAt
	if at.IsZero() {
		at = uc.clock.Now()
	}
	opts := discord.MessageOptions{
		Type:        discord.MessageTypeWarning,
		Title:       "Group banned",
		Description: fmt.Sprintf("Group **%s** triggered the sensitive word filter too many times and was banned.", input.GroupID),
		Fields: []discord.EmbedField{
			buildField("Group", input.GroupID, true),
			buildField("Violations", strconv.Itoa(input.Violations), true),
		},
		Timestamp: at,
	}
	if err := uc.discord.SendEmbed(ctx, opts); err != nil {
		uc.logger.Errorf(ctx, "internal.alert.DispatchGroupBanned: %v", err)
		return fmt.Errorf("%w: %v", alert.ErrDispatchFailed, err)
	}
	return nil
}
