package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"livenotify-srv/internal/livenotify"
	"livenotify-srv/internal/metrics"
	"livenotify-srv/internal/model"
	"livenotify-srv/internal/notify"
	"livenotify-srv/internal/roomstate"
	"livenotify-srv/pkg/onebot"
)

func (uc *implUseCase) Load(ctx context.Context) error {
	return errors.Join(
		uc.registry.Load(ctx),
		uc.rooms.Load(ctx),
		uc.configs.Load(ctx),
	)
}

func (uc *implUseCase) Persist(ctx context.Context) error {
	return uc.rooms.Persist(ctx)
}

func (uc *implUseCase) SubscribedEntities() []string {
	return uc.registry.SubscribedEntities()
}

func (uc *implUseCase) HandleRoom(ctx context.Context, sender onebot.Sender, info model.RoomInfo) livenotify.RoomEvent {
	uid := info.EntityID()
	name := uc.screenName(ctx, uid, info.Name)
	title := uc.screenTitle(ctx, uid, info)

	next := info.State()
	prev := uc.rooms.Previous(uid, info.Title)
	change := roomstate.Classify(prev, next)
	ev := livenotify.RoomEvent{EntityID: uid, Change: change, Redacted: uc.rooms.IsSensitive(uid)}

	if change.TitleChanged {
		uc.logger.Infof(ctx, "livenotify.HandleRoom: %s changed title from %q to %q",
			uc.rooms.DisplayName(uid, uc.checker), change.OldTitle, info.Title)
		uc.metrics.RoomEvent(metrics.EventTitleChange)
		// redacted streamers never get title pushes
		if !ev.Redacted {
			res := uc.dispatcher.Notify(ctx, sender, uid, name, titleMessage(name, change, uc.screenOldTitle(change.OldTitle), title))
			ev.Title = &res
		}
	}

	switch {
	case change.Started:
		now := uc.clock.Now().Unix()
		uc.logger.Infof(ctx, "livenotify.HandleRoom: %s went live at %d, detected %ds later",
			uc.rooms.DisplayName(uid, uc.checker), info.LiveTime, now-info.LiveTime)
		if change.Restarted {
			uc.metrics.RoomEvent(metrics.EventRestart)
		} else {
			uc.metrics.RoomEvent(metrics.EventStart)
		}
		res := uc.dispatcher.Notify(ctx, sender, uid, name, startMessage(name, title, info, change.Restarted))
		ev.Start = &res

	case change.Stopped:
		now := uc.clock.Now().Unix()
		uc.logger.Infof(ctx, "livenotify.HandleRoom: %s went offline, session %d-%d",
			uc.rooms.DisplayName(uid, uc.checker), change.SessionStart, now)
		uc.metrics.RoomEvent(metrics.EventStop)
		res := uc.dispatcher.Notify(ctx, sender, uid, name, stopMessage(name, change.SessionStart, now))
		ev.Stop = &res
	}

	uc.rooms.Update(uid, next)
	return ev
}

// screenName returns the name to print for uid, redacting the streamer for
// good when the name is sensitive.
func (uc *implUseCase) screenName(ctx context.Context, uid, name string) string {
	if uc.rooms.IsSensitive(uid) {
		return roomstate.Label(uid)
	}
	if uc.checker.IsSensitive(name) {
		uc.logger.Warnf(ctx, "livenotify.screenName: name of %s looks sensitive, redacting", roomstate.Label(uid))
		uc.rooms.MarkSensitive(uid)
		return roomstate.Label(uid)
	}
	uc.rooms.RememberName(uid, name)
	return name
}

// screenTitle returns the title to print for uid, empty when withheld.
func (uc *implUseCase) screenTitle(ctx context.Context, uid string, info model.RoomInfo) string {
	if uc.rooms.IsSensitive(uid) {
		return ""
	}
	if uc.checker.IsSensitive(info.Title) {
		uc.logger.Warnf(ctx, "livenotify.screenTitle: title of %s looks sensitive, redacting", roomstate.Label(uid))
		uc.rooms.MarkSensitive(uid)
		return ""
	}
	return info.Title
}

// screenOldTitle returns the stored title when it is still safe to print. A
// title stored before a redaction was lifted or before the word list changed
// is checked again here.
func (uc *implUseCase) screenOldTitle(old string) string {
	if old == "" || uc.checker.IsSensitive(old) {
		return ""
	}
	return old
}

// titleMessage prints "old -> new", or only the new title when the old one is
// withheld.
func titleMessage(name string, change roomstate.Change, oldTitle, title string) notify.Builder {
	return func(cfg model.GroupNotifyConfig) onebot.Message {
		wanted := cfg.NotifyTitleChangeWhileOffline
		if change.WhileLive {
			wanted = cfg.NotifyTitleChangeWhileLive
		}
		if !wanted || title == "" {
			return nil
		}
		if oldTitle == "" {
			return onebot.NewText(fmt.Sprintf("%s 更改了直播间标题: %s", name, title))
		}
		return onebot.NewText(fmt.Sprintf("%s 更改了直播间标题: %s -> %s", name, oldTitle, title))
	}
}

func startMessage(name, title string, info model.RoomInfo, restarted bool) notify.Builder {
	return func(cfg model.GroupNotifyConfig) onebot.Message {
		var sb strings.Builder
		sb.WriteString(name)
		if cfg.ShowLiveArea {
			fmt.Fprintf(&sb, " 在%s-%s分区", info.ParentAreaName, info.AreaName)
		}
		if restarted {
			sb.WriteString("重新")
		}
		sb.WriteString("开播了！")
		if cfg.ShowTitle && title != "" {
			sb.WriteString("\n" + title)
		}
		if cfg.ShowLink {
			fmt.Fprintf(&sb, "\n%s%d", livenotify.LiveRoomURL, info.RoomID)
		}

		msg := onebot.NewText(sb.String())
		if cfg.ShowCover && info.CoverURL != "" {
			msg = append(msg, onebot.Image(info.CoverURL))
		}
		return msg
	}
}

func stopMessage(name string, start, end int64) notify.Builder {
	return func(cfg model.GroupNotifyConfig) onebot.Message {
		if !cfg.NotifyStopStream {
			return nil
		}
		text := name + "下播了！"
		if cfg.ShowStreamTime {
			text += "本次直播时长: " + livenotify.FormatDuration(start, end)
		}
		return onebot.NewText(text)
	}
}
