package usecase

import (
	"context"
	"fmt"
	"strconv"

	"livenotify-srv/internal/alert"
	"livenotify-srv/pkg/discord"
)

func (uc *implUseCase) DispatchPollFailure(ctx context.Context, input alert.PollFailureInput) error {
	if input.Err == nil {
		return alert.ErrInvalidInput
	}
	if uc.discord == nil {
		return nil
	}

	now := uc.clock.Now()
	uc.mu.Lock()
	if !uc.lastPollFailure.IsZero() && now.Sub(uc.lastPollFailure) < uc.throttle {
		uc.mu.Unlock()
		return nil
	}
	uc.lastPollFailure = now
	uc.mu.Unlock()

	at := input.At
	if at.IsZero() {
		at = now
	}
	opts := discord.MessageOptions{
		Type:        discord.MessageTypeError,
		Title:       "Live status poll failed",
		Description: fmt.Sprintf("A poll cycle over %d streamers failed; notifications are delayed until the next successful cycle.", input.Entities),
		Fields: []discord.EmbedField{
			buildField("Stage", input.Reason, true),
			buildField("Streamers", strconv.Itoa(input.Entities), true),
			buildField("Error", input.Err.Error(), false),
		},
		Timestamp: at,
	}
	if err := uc.discord.SendEmbed(ctx, opts); err != nil {
		uc.logger.Errorf(ctx, "internal.alert.DispatchPollFailure: %v", err)
		return fmt.Errorf("%w: %v", alert.ErrDispatchFailed, err)
	}
	return nil
}
