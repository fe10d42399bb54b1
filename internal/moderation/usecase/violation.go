package usecase

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"livenotify-srv/internal/alert"
	"livenotify-srv/internal/moderation"
	"livenotify-srv/internal/permission"
	"livenotify-srv/pkg/onebot"
)

func (uc *implUseCase) Load(ctx context.Context) error {
	counts := map[string]int{}
	if _, err := uc.storage.Load(ctx, component, file, &counts); err != nil {
		return fmt.Errorf("moderation.Load: %w", err)
	}
	if counts == nil {
		counts = map[string]int{}
	}
	uc.mu.Lock()
	uc.counts = counts
	uc.mu.Unlock()
	return nil
}

func (uc *implUseCase) RecordViolation(ctx context.Context, v moderation.Violation) (moderation.RecordResult, error) {
	var res moderation.RecordResult
	if v.MemberID == "" && v.GroupID == "" {
		return res, moderation.ErrEmptyViolation
	}

	if v.MemberID != "" {
		banned, err := uc.permissions.BanMember(ctx, v.MemberID)
		switch {
		case errors.Is(err, permission.ErrAdminImmune):
			uc.logger.Infof(ctx, "moderation.RecordViolation: member %s is an administrator, not banned", v.MemberID)
		case err != nil:
			uc.logger.Errorf(ctx, "moderation.RecordViolation: ban member %s: %v", v.MemberID, err)
		default:
			res.MemberBanned = len(banned) > 0
			uc.logger.Infof(ctx, "moderation.RecordViolation: member %s banned", v.MemberID)
		}
	}

	if v.GroupID == "" {
		return res, nil
	}

	uc.mu.Lock()
	uc.counts[v.GroupID]++
	res.Count = uc.counts[v.GroupID]
	uc.mu.Unlock()

	uc.logger.Infof(ctx, "moderation.RecordViolation: group %s has %d violations", v.GroupID, res.Count)
	if err := uc.saveCounts(ctx); err != nil {
		uc.logger.Errorf(ctx, "moderation.RecordViolation: persist counters: %v", err)
	}

	if res.Count < moderation.BanThreshold || uc.permissions.IsGroupBanned(v.GroupID) {
		return res, nil
	}

	added, err := uc.permissions.BanGroup(ctx, v.GroupID)
	if err != nil {
		return res, fmt.Errorf("moderation.RecordViolation: ban group %s: %w", v.GroupID, err)
	}
	if !added {
		return res, nil
	}
	res.GroupBanned = true
	uc.logger.Warnf(ctx, "moderation.RecordViolation: group %s banned", v.GroupID)

	uc.notifyBanned(ctx, v.GroupID)
	if uc.alert != nil {
		if err := uc.alert.DispatchGroupBanned(ctx, alert.GroupBannedInput{
			GroupID:    v.GroupID,
			Violations: res.Count,
			BannedAt:   uc.clock.Now(),
		}); err != nil {
			uc.logger.Warnf(ctx, "moderation.RecordViolation: alert: %v", err)
		}
	}
	return res, nil
}

func (uc *implUseCase) notifyBanned(ctx context.Context, groupID string) {
	if uc.sessions == nil {
		return
	}
	sender, err := uc.sessions.Session(ctx)
	if err != nil {
		uc.logger.Warnf(ctx, "moderation.notifyBanned: group %s: %v", groupID, err)
		return
	}
	if err := sender.SendGroupMessage(ctx, groupID, onebot.NewText(moderation.BanNotice)); err != nil {
		uc.logger.Warnf(ctx, "moderation.notifyBanned: group %s: %v", groupID, err)
	}
}

func (uc *implUseCase) CheckMessage(ctx context.Context, msg moderation.InboundMessage) (bool, error) {
	if msg.MemberID != "" && uc.permissions.IsMemberBanned(msg.MemberID) {
		return false, nil
	}
	if msg.GroupID != "" && (uc.permissions.IsGroupBanned(msg.GroupID) || uc.permissions.IsGroupDisabled(msg.GroupID)) {
		return false, nil
	}
	if !uc.checker.IsSensitive(msg.Text) {
		return false, nil
	}

	uc.logger.Warnf(ctx, "moderation.CheckMessage: sensitive message from %s in group %s", msg.MemberID, msg.GroupID)
	if _, err := uc.RecordViolation(ctx, moderation.Violation{MemberID: msg.MemberID, GroupID: msg.GroupID}); err != nil {
		return true, err
	}
	return true, nil
}

func (uc *implUseCase) UnbanGroup(ctx context.Context, groupID string) error {
	if err := uc.permissions.UnbanGroup(ctx, groupID); err != nil {
		return fmt.Errorf("moderation.UnbanGroup: %w", err)
	}

	uc.mu.Lock()
	_, had := uc.counts[groupID]
	delete(uc.counts, groupID)
	uc.mu.Unlock()

	if !had {
		return nil
	}
	if err := uc.saveCounts(ctx); err != nil {
		return fmt.Errorf("moderation.UnbanGroup: %w", err)
	}
	return nil
}

func (uc *implUseCase) saveCounts(ctx context.Context) error {
	uc.saveMu.Lock()
	defer uc.saveMu.Unlock()

	uc.mu.Lock()
	snapshot := maps.Clone(uc.counts)
	uc.mu.Unlock()
	return uc.storage.Save(ctx, component, file, snapshot)
}

func (uc *implUseCase) Count(groupID string) int {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.counts[groupID]
}

func (uc *implUseCase) Counts() map[string]int {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return maps.Clone(uc.counts)
}
