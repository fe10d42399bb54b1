package onebot

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livenotify-srv/pkg/log"
)

type fakeBot struct {
	mu       sync.Mutex
	requests []request
	auth     string
	failFor  int64
	conn     *websocket.Conn
	ready    chan struct{}
}

func newFakeBot() *fakeBot {
	return &fakeBot{ready: make(chan struct{})}
}

func (b *fakeBot) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	b.mu.Lock()
	b.auth = r.Header.Get("Authorization")
	b.conn = conn
	b.mu.Unlock()
	close(b.ready)

	for {
		var req struct {
			Action string          `json:"action"`
			Params json.RawMessage `json:"params"`
			Echo   string          `json:"echo"`
		}
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		b.mu.Lock()
		b.requests = append(b.requests, request{Action: req.Action, Params: req.Params, Echo: req.Echo})
		failFor := b.failFor
		b.mu.Unlock()

		resp := map[string]any{"status": "ok", "retcode": 0, "echo": req.Echo}
		switch req.Action {
		case actionGetLoginInfo:
			resp["data"] = map[string]any{"user_id": 42, "nickname": "bot"}
		case actionSendGroupMsg:
			var p sendGroupMsgParams
			_ = json.Unmarshal(req.Params, &p)
			if p.GroupID == failFor {
				resp["status"] = "failed"
				resp["retcode"] = 1200
				resp["message"] = "not in group"
			} else {
				resp["data"] = map[string]any{"message_id": 7}
			}
		}
		b.mu.Lock()
		err := conn.WriteJSON(resp)
		b.mu.Unlock()
		if err != nil {
			return
		}
	}
}

func (b *fakeBot) push(t *testing.T, v any) {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	require.NoError(t, b.conn.WriteJSON(v))
}

func startClient(t *testing.T, bot *fakeBot) (Client, context.CancelFunc, chan error) {
	t.Helper()
	srv := httptest.NewServer(bot)
	t.Cleanup(srv.Close)

	c, err := New(Config{
		URL:            "ws" + strings.TrimPrefix(srv.URL, "http"),
		AccessToken:    "secret",
		RequestTimeout: 2 * time.Second,
	}, nil, log.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	select {
	case <-bot.ready:
	case <-time.After(5 * time.Second):
		t.Fatal("client never connected")
	}
	require.Eventually(t, c.Connected, 2*time.Second, 10*time.Millisecond)
	return c, cancel, done
}

func TestClient_SendGroupMessage(t *testing.T) {
	bot := newFakeBot()
	bot.failFor = 999
	c, cancel, done := startClient(t, bot)
	defer cancel()

	ctx := context.Background()
	s, err := c.Session(ctx)
	require.NoError(t, err)

	require.NoError(t, s.SendGroupMessage(ctx, "100", Message{Text("hello"), Image("https://example.com/a.jpg")}))

	err = s.SendGroupMessage(ctx, "999", NewText("hi"))
	var actionErr *ActionError
	require.ErrorAs(t, err, &actionErr)
	assert.Equal(t, 1200, actionErr.RetCode)

	assert.ErrorIs(t, s.SendGroupMessage(ctx, "abc", NewText("hi")), ErrInvalidGroupID)
	assert.ErrorIs(t, s.SendGroupMessage(ctx, "100", nil), ErrEmptyMessage)

	bot.mu.Lock()
	assert.Equal(t, "Bearer secret", bot.auth)
	var sent []request
	for _, r := range bot.requests {
		if r.Action == actionSendGroupMsg {
			sent = append(sent, r)
		}
	}
	bot.mu.Unlock()
	require.Len(t, sent, 2)
	var p sendGroupMsgParams
	require.NoError(t, json.Unmarshal(sent[0].Params.(json.RawMessage), &p))
	assert.Equal(t, int64(100), p.GroupID)
	assert.Equal(t, "hello", p.Message.PlainText())

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
	assert.False(t, c.Connected())
	_, err = c.Session(ctx)
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestClient_GroupMessageEvents(t *testing.T) {
	bot := newFakeBot()
	c, cancel, _ := startClient(t, bot)
	defer cancel()

	got := make(chan GroupMessageEvent, 1)
	c.OnGroupMessage(func(ctx context.Context, ev GroupMessageEvent) { got <- ev })

	bot.push(t, map[string]any{"post_type": "meta_event", "meta_event_type": "heartbeat"})
	bot.push(t, map[string]any{"post_type": "message", "message_type": "private", "user_id": 1, "raw_message": "dm"})
	bot.push(t, map[string]any{
		"post_type": "message", "message_type": "group", "group_id": 100, "user_id": 5, "raw_message": "hi there",
	})

	select {
	case ev := <-got:
		assert.Equal(t, int64(100), ev.GroupID)
		assert.Equal(t, int64(5), ev.UserID)
		assert.Equal(t, "hi there", ev.RawMessage)
	case <-time.After(5 * time.Second):
		t.Fatal("no group event delivered")
	}
}

func TestClient_KickedNotice(t *testing.T) {
	bot := newFakeBot()
	c, cancel, _ := startClient(t, bot)
	defer cancel()

	got := make(chan int64, 1)
	c.OnGroupKicked(func(ctx context.Context, groupID int64) { got <- groupID })

	bot.push(t, map[string]any{"post_type": "notice", "notice_type": "group_decrease", "sub_type": "leave", "group_id": 1})
	bot.push(t, map[string]any{"post_type": "notice", "notice_type": "group_decrease", "sub_type": "kick_me", "group_id": 100})

	select {
	case id := <-got:
		assert.Equal(t, int64(100), id)
	case <-time.After(5 * time.Second):
		t.Fatal("no kick notice delivered")
	}
}

func TestNew_RequiresURL(t *testing.T) {
	_, err := New(Config{}, nil, log.NewNop())
	assert.ErrorIs(t, err, ErrURLRequired)
}

func TestMessage_PlainText(t *testing.T) {
	m := Message{Text("a"), At("1"), Image("u"), Text("b")}
	assert.Equal(t, "ab", m.PlainText())
}
