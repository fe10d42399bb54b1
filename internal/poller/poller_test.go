package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livenotify-srv/internal/alert"
	"livenotify-srv/internal/livenotify"
	"livenotify-srv/internal/livenotify/usecase"
	"livenotify-srv/internal/model"
	"livenotify-srv/internal/notify"
	"livenotify-srv/internal/permission"
	"livenotify-srv/internal/roomstate"
	"livenotify-srv/internal/storage"
	"livenotify-srv/internal/subscription"
	"livenotify-srv/pkg/bilibili"
	"livenotify-srv/pkg/log"
	"livenotify-srv/pkg/onebot"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []string
}

func (s *recordingSender) SendGroupMessage(ctx context.Context, groupID string, msg onebot.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, groupID+": "+msg.PlainText())
	return nil
}

func (s *recordingSender) texts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sent...)
}

type sessions struct {
	connected atomic.Bool
	// drops is the number of calls that fail before the session comes up.
	drops  atomic.Int32
	sender onebot.Sender
}

func (s *sessions) Session(ctx context.Context) (onebot.Sender, error) {
	if s.drops.Add(-1) >= 0 || !s.connected.Load() {
		return nil, onebot.ErrNotConnected
	}
	return s.sender, nil
}

// scriptedFetcher answers each call with the next scripted step and repeats
// the last one when the script runs out.
type scriptedFetcher struct {
	mu     sync.Mutex
	steps  []func(uids []int64) (map[string]model.RoomInfo, error)
	calls  int
	called chan []int64
}

func (f *scriptedFetcher) GetStatusInfoByUIDs(ctx context.Context, uids []int64) (map[string]model.RoomInfo, error) {
	f.mu.Lock()
	step := f.steps[min(f.calls, len(f.steps)-1)]
	f.calls++
	f.mu.Unlock()
	if f.called != nil {
		defer func() { f.called <- uids }()
	}
	return step(uids)
}

func rooms(infos ...model.RoomInfo) func([]int64) (map[string]model.RoomInfo, error) {
	return func([]int64) (map[string]model.RoomInfo, error) {
		out := make(map[string]model.RoomInfo, len(infos))
		for _, info := range infos {
			out[info.EntityID()] = info
		}
		return out, nil
	}
}

type alertRecorder struct {
	mu       sync.Mutex
	failures []alert.PollFailureInput
}

func (a *alertRecorder) DispatchGroupBanned(ctx context.Context, input alert.GroupBannedInput) error {
	return nil
}

func (a *alertRecorder) DispatchPollFailure(ctx context.Context, input alert.PollFailureInput) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failures = append(a.failures, input)
	return nil
}

type fixture struct {
	uc       livenotify.UseCase
	rooms    *roomstate.Store
	sender   *recordingSender
	sessions *sessions
	clock    *testclock.Clock
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	logger := log.NewNop()
	st := storage.NewFileStore(t.TempDir(), nil, nil, logger)
	registry := subscription.New(st, logger)
	rs := roomstate.New(st, logger)
	configs := notify.NewConfigStore(st, logger)
	perms := permission.New(st, logger)
	clk := testclock.NewClock(time.Unix(5000, 0))

	uc := usecase.New(logger, usecase.Deps{
		Registry:   registry,
		Rooms:      rs,
		Configs:    configs,
		Dispatcher: notify.NewDispatcher(registry, perms, configs, clk, 0, nil, logger),
		Checker:    noWords{},
		Clock:      clk,
	})
	sender := &recordingSender{}
	s := &sessions{sender: sender}
	s.connected.Store(true)
	return fixture{uc: uc, rooms: rs, sender: sender, sessions: s, clock: clk}
}

type noWords struct{}

func (noWords) IsSensitive(string) bool { return false }

func live(uid, liveTime int64) model.RoomInfo {
	return model.RoomInfo{
		UID:            uid,
		Name:           "streamer",
		Title:          "hello",
		LiveStatus:     1,
		LiveTime:       liveTime,
		RoomID:         300,
		AreaName:       "Chat",
		ParentAreaName: "Ent",
	}
}

func offline(uid int64) model.RoomInfo {
	r := live(uid, 0)
	r.LiveStatus = 0
	return r
}

func (f fixture) poller(fetcher StatusFetcher, al alert.UseCase) *Poller {
	return New(Config{}, Deps{
		UseCase:  f.uc,
		Fetcher:  fetcher,
		Sessions: f.sessions,
		Alert:    al,
		Clock:    f.clock,
	}, log.NewNop())
}

func TestRunOnce_StartRepeatStop(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.uc.Subscribe(ctx, "100", []string{"200"})
	require.NoError(t, err)

	fetcher := &scriptedFetcher{steps: []func([]int64) (map[string]model.RoomInfo, error){
		rooms(live(200, 1000)),
		rooms(live(200, 1000)),
		rooms(offline(200)),
	}}
	p := f.poller(fetcher, nil)

	require.NoError(t, p.RunOnce(ctx))
	state, ok := f.rooms.Get("200")
	require.True(t, ok)
	assert.Equal(t, int64(1000), state.LiveStartTimestamp)
	require.Len(t, f.sender.texts(), 1)

	require.NoError(t, p.RunOnce(ctx))
	assert.Len(t, f.sender.texts(), 1)

	require.NoError(t, p.RunOnce(ctx))
	assert.Equal(t, []string{
		"100: streamer 在Ent-Chat分区开播了！\nhello\nhttps://live.bilibili.com/300",
		"100: streamer下播了！本次直播时长: 1小时6分钟",
	}, f.sender.texts())
}

func TestRunOnce_Failures(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	al := &alertRecorder{}

	fetcher := &scriptedFetcher{steps: []func([]int64) (map[string]model.RoomInfo, error){
		func([]int64) (map[string]model.RoomInfo, error) {
			return nil, &bilibili.APIError{Code: -412, Msg: "blocked"}
		},
	}}
	p := f.poller(fetcher, al)

	// nothing followed: no fetch at all
	require.NoError(t, p.RunOnce(ctx))
	assert.Equal(t, 0, fetcher.calls)

	_, err := f.uc.Subscribe(ctx, "100", []string{"200"})
	require.NoError(t, err)

	f.sessions.connected.Store(false)
	assert.ErrorIs(t, p.RunOnce(ctx), ErrNoSession)
	assert.Equal(t, 0, fetcher.calls)

	f.sessions.connected.Store(true)
	assert.ErrorIs(t, p.RunOnce(ctx), ErrFetch)
	require.Len(t, al.failures, 1)
	assert.Equal(t, "api", al.failures[0].Reason)
	assert.Equal(t, 1, al.failures[0].Entities)
	_, ok := f.rooms.Get("200")
	assert.False(t, ok, "a failed fetch processes nothing")
}

type panicking struct {
	livenotify.UseCase
	handled []int64
}

func (p *panicking) HandleRoom(ctx context.Context, sender onebot.Sender, info model.RoomInfo) livenotify.RoomEvent {
	p.handled = append(p.handled, info.UID)
	if info.UID == 201 {
		panic("boom")
	}
	return livenotify.RoomEvent{EntityID: info.EntityID()}
}

func TestRunOnce_PanicIsolated(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.uc.Subscribe(ctx, "100", []string{"201", "202"})
	require.NoError(t, err)

	uc := &panicking{UseCase: f.uc}
	fetcher := &scriptedFetcher{steps: []func([]int64) (map[string]model.RoomInfo, error){
		rooms(live(201, 1000), live(202, 1000)),
	}}
	p := New(Config{}, Deps{UseCase: uc, Fetcher: fetcher, Sessions: f.sessions, Clock: f.clock}, log.NewNop())

	require.NoError(t, p.RunOnce(ctx))
	assert.Equal(t, []int64{201, 202}, uc.handled)
}

func waitCall(t *testing.T, ch <-chan []int64) []int64 {
	t.Helper()
	select {
	case uids := <-ch:
		return uids
	case <-time.After(5 * time.Second):
		t.Fatal("fetch not called")
		return nil
	}
}

func TestRun_BackoffAndDriftCorrectedSleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f := newFixture(t)
	_, err := f.uc.Subscribe(ctx, "100", []string{"200"})
	require.NoError(t, err)
	f.sessions.drops.Store(1)

	fetcher := &scriptedFetcher{
		called: make(chan []int64, 4),
		steps: []func([]int64) (map[string]model.RoomInfo, error){
			func(uids []int64) (map[string]model.RoomInfo, error) {
				f.clock.Advance(10 * time.Second)
				return rooms(live(200, 1000))(uids)
			},
			rooms(live(200, 1000)),
		},
	}
	p := f.poller(fetcher, nil)

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	// no session: retried after the short backoff
	require.NoError(t, f.clock.WaitAdvance(DefaultBackoff, 5*time.Second, 1))
	assert.Equal(t, []int64{200}, waitCall(t, fetcher.called))

	// the cycle took 10s, so the next one starts 20s later
	require.NoError(t, f.clock.WaitAdvance(DefaultInterval-10*time.Second, 5*time.Second, 1))
	assert.Equal(t, []int64{200}, waitCall(t, fetcher.called))

	cancel()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop")
	}
}
