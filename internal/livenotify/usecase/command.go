package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"livenotify-srv/internal/livenotify"
	"livenotify-srv/internal/roomstate"
)

const (
	msgNoUIDs            = "无法识别要操作的主播UID，请正确输入！"
	msgGroupFull         = "本群订阅的主播数量已达到最大值！"
	msgGlobalFull        = "全局订阅的主播数量已达到最大值！"
	msgNothingToRemove   = "该群没有订阅上述任何主播！"
	msgUnknownValue      = "无法识别操作，请输入 启用/禁用、开/关、on/off、true/false 等可以识别的操作！"
	msgUnknownKey        = "无法识别配置项，请输入下列选项其中之一: \n"
	msgConfigSaved       = "设置成功！"
	msgGroupNoSubs       = "该群还没有订阅主播！"
	msgEntityNoSubs      = "目前还没有群订阅该主播！"
	msgClearGroupNothing = "该群没有订阅任何主播！"
)

func (uc *implUseCase) Subscribe(ctx context.Context, group string, uids []string) (livenotify.Reply, error) {
	if group == "" {
		return livenotify.Reply{}, livenotify.ErrEmptyGroup
	}
	ids := livenotify.ParseUIDs(strings.Join(uids, " "))
	if len(ids) == 0 {
		return livenotify.Reply{Text: msgNoUIDs}, livenotify.ErrNoUIDs
	}

	switch groupFull, globalFull := uc.registry.Full(group); {
	case groupFull:
		return livenotify.Reply{Text: msgGroupFull, UIDs: []string{}}, nil
	case globalFull:
		return livenotify.Reply{Text: msgGlobalFull, UIDs: []string{}}, nil
	}

	accepted := uc.registry.Subscribe(group, ids)
	uc.saveRegistry(ctx)

	names := uc.displayNames(accepted)
	uc.logger.Infof(ctx, "livenotify.Subscribe: group %s subscribed to %d streamers: %s", group, len(accepted), names)
	return livenotify.Reply{
		Text: fmt.Sprintf("已订阅以下%d个主播: \n%s", len(accepted), names),
		OK:   len(accepted) > 0,
		UIDs: accepted,
	}, nil
}

func (uc *implUseCase) Unsubscribe(ctx context.Context, group string, uids []string) (livenotify.Reply, error) {
	if group == "" {
		return livenotify.Reply{}, livenotify.ErrEmptyGroup
	}
	ids := livenotify.ParseUIDs(strings.Join(uids, " "))
	if len(ids) == 0 {
		return livenotify.Reply{Text: msgNoUIDs}, livenotify.ErrNoUIDs
	}

	removed := uc.registry.Unsubscribe(group, ids)
	if len(removed) == 0 {
		return livenotify.Reply{Text: msgNothingToRemove, UIDs: removed}, nil
	}
	uc.saveRegistry(ctx)

	names := uc.displayNames(removed)
	uc.logger.Infof(ctx, "livenotify.Unsubscribe: group %s unsubscribed from %d streamers: %s", group, len(removed), names)
	return livenotify.Reply{
		Text: fmt.Sprintf("已取消订阅以下%d个主播: \n%s", len(removed), names),
		OK:   true,
		UIDs: removed,
	}, nil
}

func (uc *implUseCase) SetGroupConfig(ctx context.Context, group, key, value string) (livenotify.Reply, error) {
	if group == "" {
		return livenotify.Reply{}, livenotify.ErrEmptyGroup
	}
	enable, ok := livenotify.ParseSwitch(value)
	if !ok {
		return livenotify.Reply{Text: msgUnknownValue}, livenotify.ErrUnknownConfigValue
	}
	configKey, ok := livenotify.ResolveConfigKey(key)
	if !ok {
		return livenotify.Reply{Text: msgUnknownKey + livenotify.ConfigLabels()}, livenotify.ErrUnknownConfigKey
	}

	cfg, err := uc.configs.Set(ctx, group, configKey, enable)
	if err != nil {
		// the new value is live in memory, only the write failed
		uc.logger.Errorf(ctx, "livenotify.SetGroupConfig: %v", err)
	}
	uc.logger.Infof(ctx, "livenotify.SetGroupConfig: group %s set %s to %t", group, configKey, enable)
	return livenotify.Reply{Text: msgConfigSaved, OK: true, Config: &cfg}, nil
}

func (uc *implUseCase) GroupConfig(ctx context.Context, group string) (livenotify.Reply, error) {
	if group == "" {
		return livenotify.Reply{}, livenotify.ErrEmptyGroup
	}
	cfg := uc.configs.Get(group)
	return livenotify.Reply{Text: livenotify.RenderConfig(cfg), OK: true, Config: &cfg}, nil
}

func (uc *implUseCase) ShowGroupSubscriptions(ctx context.Context, group string) (livenotify.Reply, error) {
	if group == "" {
		return livenotify.Reply{}, livenotify.ErrEmptyGroup
	}
	ids := uc.registry.EntitiesFor(group)
	if len(ids) == 0 {
		return livenotify.Reply{Text: msgGroupNoSubs, UIDs: ids}, nil
	}
	return livenotify.Reply{
		Text: fmt.Sprintf("该群订阅的%d个主播UID: %s", len(ids), uc.displayNames(ids)),
		OK:   true,
		UIDs: ids,
	}, nil
}

func (uc *implUseCase) ShowEntitySubscriptions(ctx context.Context, uid string) (livenotify.Reply, error) {
	id, err := singleUID(uid)
	if err != nil {
		return livenotify.Reply{Text: msgNoUIDs}, err
	}
	groups := uc.registry.GroupsFor(id)
	if len(groups) == 0 {
		return livenotify.Reply{Text: msgEntityNoSubs, UIDs: []string{id}, Groups: groups}, nil
	}
	return livenotify.Reply{
		Text:   fmt.Sprintf("订阅主播 %s 的%d个群: %s", uc.rooms.DisplayName(id, uc.checker), len(groups), strings.Join(groups, ", ")),
		OK:     true,
		UIDs:   []string{id},
		Groups: groups,
	}, nil
}

func (uc *implUseCase) ClearGroup(ctx context.Context, group string) (livenotify.Reply, error) {
	if group == "" {
		return livenotify.Reply{}, livenotify.ErrEmptyGroup
	}
	removed := uc.registry.ClearByGroup(group)
	if len(removed) == 0 {
		return livenotify.Reply{Text: msgClearGroupNothing, UIDs: removed, Groups: []string{group}}, nil
	}
	uc.saveRegistry(ctx)

	names := uc.displayNames(removed)
	uc.logger.Infof(ctx, "livenotify.ClearGroup: cleared %d streamers of group %s: %s", len(removed), group, names)
	return livenotify.Reply{
		Text:   fmt.Sprintf("已清空群 %s 订阅的%d个主播: %s", group, len(removed), names),
		OK:     true,
		UIDs:   removed,
		Groups: []string{group},
	}, nil
}

func (uc *implUseCase) ClearEntity(ctx context.Context, uid string) (livenotify.Reply, error) {
	id, err := singleUID(uid)
	if err != nil {
		return livenotify.Reply{Text: msgNoUIDs}, err
	}
	name := uc.rooms.DisplayName(id, uc.checker)
	groups := uc.registry.ClearByEntity(id)
	if len(groups) == 0 {
		return livenotify.Reply{Text: fmt.Sprintf("该主播 %s 没有任何群订阅！", name), UIDs: []string{id}, Groups: groups}, nil
	}
	uc.saveRegistry(ctx)

	uc.logger.Infof(ctx, "livenotify.ClearEntity: cleared %d groups following %s: %s", len(groups), name, strings.Join(groups, ", "))
	return livenotify.Reply{
		Text:   fmt.Sprintf("已清空订阅 %s 的%d个群: %s", name, len(groups), strings.Join(groups, ", ")),
		OK:     true,
		UIDs:   []string{id},
		Groups: groups,
	}, nil
}

func (uc *implUseCase) RemoveGroup(ctx context.Context, group string) error {
	if group == "" {
		return livenotify.ErrEmptyGroup
	}
	removed := uc.registry.ClearByGroup(group)
	if len(removed) > 0 {
		uc.saveRegistry(ctx)
	}
	if _, err := uc.configs.Remove(ctx, group); err != nil {
		return fmt.Errorf("livenotify.RemoveGroup: %w", err)
	}
	uc.logger.Infof(ctx, "livenotify.RemoveGroup: bot left group %s, dropped %d subscriptions", group, len(removed))
	return nil
}

func (uc *implUseCase) SensitiveEntities() []string {
	return uc.rooms.Sensitive()
}

func (uc *implUseCase) ClearSensitive(ctx context.Context, uid string) error {
	id, err := singleUID(uid)
	if err != nil {
		return err
	}
	if err := uc.rooms.ClearSensitive(id); err != nil {
		if errors.Is(err, roomstate.ErrNotSensitive) {
			return livenotify.ErrStreamerNotRedacted
		}
		return err
	}
	uc.logger.Infof(ctx, "livenotify.ClearSensitive: lifted redaction of %s", roomstate.Label(id))
	if err := uc.rooms.Persist(ctx); err != nil {
		uc.logger.Errorf(ctx, "livenotify.ClearSensitive: %v", err)
	}
	return nil
}

func (uc *implUseCase) saveRegistry(ctx context.Context) {
	if err := uc.registry.Save(ctx); err != nil {
		uc.logger.Errorf(ctx, "livenotify.saveRegistry: %v", err)
	}
}

func (uc *implUseCase) displayNames(ids []string) string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, uc.rooms.DisplayName(id, uc.checker))
	}
	return strings.Join(names, ", ")
}

func singleUID(s string) (string, error) {
	ids := livenotify.ParseUIDs(s)
	if len(ids) == 0 {
		return "", livenotify.ErrNoUIDs
	}
	return ids[0], nil
}
