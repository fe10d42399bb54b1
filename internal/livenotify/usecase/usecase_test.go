package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livenotify-srv/internal/livenotify"
	"livenotify-srv/internal/model"
	"livenotify-srv/internal/notify"
	"livenotify-srv/internal/permission"
	"livenotify-srv/internal/roomstate"
	"livenotify-srv/internal/storage"
	"livenotify-srv/internal/subscription"
	"livenotify-srv/pkg/log"
	"livenotify-srv/pkg/onebot"
)

type sent struct {
	group string
	msg   onebot.Message
}

type recordingSender struct {
	mu   sync.Mutex
	sent []sent
	fail map[string]bool
}

func (s *recordingSender) SendGroupMessage(ctx context.Context, groupID string, msg onebot.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail[groupID] {
		return errors.New("send failed")
	}
	s.sent = append(s.sent, sent{group: groupID, msg: msg})
	return nil
}

func (s *recordingSender) texts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.sent))
	for _, m := range s.sent {
		out = append(out, m.msg.PlainText())
	}
	return out
}

type words map[string]bool

func (w words) IsSensitive(text string) bool { return w[text] }

type fixture struct {
	uc       livenotify.UseCase
	registry *subscription.Registry
	rooms    *roomstate.Store
	configs  *notify.ConfigStore
	perms    *permission.Store
	sender   *recordingSender
	clock    *testclock.Clock
}

func newFixture(t *testing.T, perGroupMax int, sensitive words) fixture {
	t.Helper()
	logger := log.NewNop()
	st := storage.NewFileStore(t.TempDir(), nil, nil, logger)

	registry := subscription.NewWithCaps(st, logger, perGroupMax, model.GlobalMax)
	rooms := roomstate.New(st, logger)
	configs := notify.NewConfigStore(st, logger)
	perms := permission.New(st, logger)
	clk := testclock.NewClock(time.Unix(5000, 0))
	dispatcher := notify.NewDispatcher(registry, perms, configs, clk, 0, nil, logger)
	if sensitive == nil {
		sensitive = words{}
	}

	uc := New(logger, Deps{
		Registry:   registry,
		Rooms:      rooms,
		Configs:    configs,
		Dispatcher: dispatcher,
		Checker:    sensitive,
		Clock:      clk,
	})
	return fixture{
		uc:       uc,
		registry: registry,
		rooms:    rooms,
		configs:  configs,
		perms:    perms,
		sender:   &recordingSender{},
		clock:    clk,
	}
}

func liveRoom(uid, liveTime int64, title string) model.RoomInfo {
	return model.RoomInfo{
		UID:            uid,
		Name:           "streamer",
		Title:          title,
		LiveStatus:     1,
		LiveTime:       liveTime,
		RoomID:         300,
		AreaName:       "Chat",
		ParentAreaName: "Ent",
		CoverURL:       "https://i0.hdslb.com/cover.jpg",
	}
}

func offlineRoom(uid int64, title string) model.RoomInfo {
	r := liveRoom(uid, 0, title)
	r.LiveStatus = 0
	return r
}

func TestHandleRoom_StartRepeatStop(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, model.PerGroupMax, nil)

	reply, err := f.uc.Subscribe(ctx, "100", []string{"200"})
	require.NoError(t, err)
	assert.Equal(t, []string{"200"}, reply.UIDs)

	ev := f.uc.HandleRoom(ctx, f.sender, liveRoom(200, 1000, "hello"))
	require.NotNil(t, ev.Start)
	assert.Equal(t, []string{"100"}, ev.Start.Succeeded)
	assert.False(t, ev.Change.TitleChanged, "first sighting keeps the title")
	require.Len(t, f.sender.sent, 1)
	msg := f.sender.sent[0].msg
	assert.Equal(t, "streamer 在Ent-Chat分区开播了！\nhello\nhttps://live.bilibili.com/300", msg.PlainText())
	require.Len(t, msg, 2)
	assert.Equal(t, "https://i0.hdslb.com/cover.jpg", msg[1].Data["file"])

	state, ok := f.rooms.Get("200")
	require.True(t, ok)
	assert.Equal(t, int64(1000), state.LiveStartTimestamp)

	ev = f.uc.HandleRoom(ctx, f.sender, liveRoom(200, 1000, "hello"))
	assert.Nil(t, ev.Start)
	assert.Len(t, f.sender.sent, 1, "same timestamp is not a new session")

	ev = f.uc.HandleRoom(ctx, f.sender, offlineRoom(200, "hello"))
	require.NotNil(t, ev.Stop)
	assert.Equal(t, []string{
		"streamer 在Ent-Chat分区开播了！\nhello\nhttps://live.bilibili.com/300",
		"streamer下播了！本次直播时长: 1小时6分钟",
	}, f.sender.texts())

	ev = f.uc.HandleRoom(ctx, f.sender, offlineRoom(200, "hello"))
	assert.Nil(t, ev.Stop)
	assert.Len(t, f.sender.sent, 2, "stop fires once")
}

func TestHandleRoom_Restart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, model.PerGroupMax, nil)
	_, err := f.uc.Subscribe(ctx, "100", []string{"200"})
	require.NoError(t, err)

	f.uc.HandleRoom(ctx, f.sender, liveRoom(200, 1000, "t"))
	ev := f.uc.HandleRoom(ctx, f.sender, liveRoom(200, 2000, "t"))
	require.NotNil(t, ev.Start)
	assert.True(t, ev.Change.Restarted)
	assert.Contains(t, f.sender.texts()[1], "重新开播了！")
}

func TestHandleRoom_TitleChange(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, model.PerGroupMax, nil)
	_, err := f.uc.Subscribe(ctx, "100", []string{"200"})
	require.NoError(t, err)

	f.uc.HandleRoom(ctx, f.sender, liveRoom(200, 1000, "old"))
	ev := f.uc.HandleRoom(ctx, f.sender, liveRoom(200, 1000, "new"))
	require.NotNil(t, ev.Title)
	assert.Equal(t, "streamer 更改了直播间标题: old -> new", f.sender.texts()[1])

	// offline title changes are off by default: counted, not sent
	f.uc.HandleRoom(ctx, f.sender, offlineRoom(200, "new"))
	before := len(f.sender.sent)
	ev = f.uc.HandleRoom(ctx, f.sender, offlineRoom(200, "newer"))
	require.NotNil(t, ev.Title)
	assert.Equal(t, []string{"100"}, ev.Title.Succeeded)
	assert.Len(t, f.sender.sent, before)

	_, err = f.uc.SetGroupConfig(ctx, "100", "非直播时通知直播间标题更改", "开")
	require.NoError(t, err)
	f.uc.HandleRoom(ctx, f.sender, offlineRoom(200, "newest"))
	assert.Len(t, f.sender.sent, before+1)
}

func TestHandleRoom_StickyRedaction(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, model.PerGroupMax, words{"badname": true, "bad title": true})
	_, err := f.uc.Subscribe(ctx, "100", []string{"201", "202"})
	require.NoError(t, err)

	info := liveRoom(201, 1000, "fine")
	info.Name = "badname"
	ev := f.uc.HandleRoom(ctx, f.sender, info)
	assert.True(t, ev.Redacted)
	assert.True(t, f.rooms.IsSensitive("201"))
	assert.Equal(t, "UID: 201 在Ent-Chat分区开播了！\nhttps://live.bilibili.com/300", f.sender.texts()[0])

	// a clean name later does not lift the redaction, and titles stay hidden
	info = liveRoom(201, 1000, "another")
	ev = f.uc.HandleRoom(ctx, f.sender, info)
	assert.True(t, ev.Change.TitleChanged)
	assert.Nil(t, ev.Title)
	assert.Len(t, f.sender.sent, 1)

	ev = f.uc.HandleRoom(ctx, f.sender, liveRoom(202, 1000, "bad title"))
	assert.True(t, ev.Redacted)
	assert.Equal(t, "streamer 在Ent-Chat分区开播了！\nhttps://live.bilibili.com/300", f.sender.texts()[1])
	assert.Equal(t, []string{"201", "202"}, f.uc.SensitiveEntities())

	require.NoError(t, f.uc.ClearSensitive(ctx, "202"))
	assert.ErrorIs(t, f.uc.ClearSensitive(ctx, "202"), livenotify.ErrStreamerNotRedacted)
}

func TestHandleRoom_WithheldOldTitle(t *testing.T) {
	ctx := context.Background()
	checker := words{"bad title": true}
	f := newFixture(t, model.PerGroupMax, checker)
	_, err := f.uc.Subscribe(ctx, "100", []string{"203"})
	require.NoError(t, err)

	// the sensitive title is stored as the room state while the streamer is redacted
	f.uc.HandleRoom(ctx, f.sender, liveRoom(203, 1000, "bad title"))
	require.True(t, f.rooms.IsSensitive("203"))
	require.NoError(t, f.uc.ClearSensitive(ctx, "203"))

	ev := f.uc.HandleRoom(ctx, f.sender, liveRoom(203, 1000, "clean"))
	require.NotNil(t, ev.Title)
	assert.Equal(t, "streamer 更改了直播间标题: clean", f.sender.texts()[1])

	// a stored title that became sensitive after the word list changed
	checker["clean"] = true
	ev = f.uc.HandleRoom(ctx, f.sender, liveRoom(203, 1000, "final"))
	require.NotNil(t, ev.Title)
	texts := f.sender.texts()
	require.Len(t, texts, 3)
	assert.Equal(t, "streamer 更改了直播间标题: final", texts[2])
	for _, text := range texts {
		assert.NotContains(t, text, "bad title")
	}
}

func TestHandleRoom_IneligibleAndFailingGroups(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, model.PerGroupMax, nil)
	for _, g := range []string{"1", "2", "3"} {
		_, err := f.uc.Subscribe(ctx, g, []string{"200"})
		require.NoError(t, err)
	}
	_, err := f.perms.BanGroup(ctx, "2")
	require.NoError(t, err)
	f.sender.fail = map[string]bool{"1": true}

	ev := f.uc.HandleRoom(ctx, f.sender, liveRoom(200, 1000, "t"))
	require.NotNil(t, ev.Start)
	assert.Equal(t, []string{"1", "3"}, ev.Start.Recipients)
	assert.Equal(t, []string{"1"}, ev.Start.Failed)
	assert.Equal(t, []string{"3"}, ev.Start.Succeeded)

	state, _ := f.rooms.Get("200")
	assert.Equal(t, int64(1000), state.LiveStartTimestamp, "state converges even on partial failure")
}

func TestHandleRoom_ConfigShapesMessage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, model.PerGroupMax, nil)
	_, err := f.uc.Subscribe(ctx, "100", []string{"200"})
	require.NoError(t, err)
	for _, key := range []string{"show_area", "show_title", "show_link", "show_cover", "show_duration"} {
		_, err := f.uc.SetGroupConfig(ctx, "100", key, "off")
		require.NoError(t, err)
	}

	f.uc.HandleRoom(ctx, f.sender, liveRoom(200, 1000, "t"))
	f.uc.HandleRoom(ctx, f.sender, offlineRoom(200, "t"))
	assert.Equal(t, []string{"streamer开播了！", "streamer下播了！"}, f.sender.texts())
	assert.Len(t, f.sender.sent[0].msg, 1)

	_, err = f.uc.SetGroupConfig(ctx, "100", "下播通知", "关")
	require.NoError(t, err)
	f.uc.HandleRoom(ctx, f.sender, liveRoom(200, 3000, "t"))
	ev := f.uc.HandleRoom(ctx, f.sender, offlineRoom(200, "t"))
	require.NotNil(t, ev.Stop)
	assert.Len(t, f.sender.sent, 3)
}

func TestResubscribeDoesNotReplayStart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, model.PerGroupMax, nil)
	_, err := f.uc.Subscribe(ctx, "100", []string{"200"})
	require.NoError(t, err)
	f.uc.HandleRoom(ctx, f.sender, liveRoom(200, 1000, "t"))

	_, err = f.uc.Unsubscribe(ctx, "100", []string{"200"})
	require.NoError(t, err)
	_, err = f.uc.Subscribe(ctx, "100", []string{"200"})
	require.NoError(t, err)

	ev := f.uc.HandleRoom(ctx, f.sender, liveRoom(200, 1000, "t"))
	assert.Nil(t, ev.Start)
	assert.Len(t, f.sender.sent, 1)
}
