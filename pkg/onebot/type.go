package onebot

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/juju/clock"

	"livenotify-srv/pkg/log"
)

// Config is the forward websocket endpoint of a OneBot v11 implementation.
type Config struct {
	URL            string
	AccessToken    string
	WriteTimeout   time.Duration
	RequestTimeout time.Duration
	MinBackoff     time.Duration
	MaxBackoff     time.Duration
}

// GroupMessageEvent is a message posted in a group the bot is in.
type GroupMessageEvent struct {
	Time       int64           `json:"time"`
	SelfID     int64           `json:"self_id"`
	PostType   string          `json:"post_type"`
	MsgType    string          `json:"message_type"`
	SubType    string          `json:"sub_type"`
	MessageID  int64           `json:"message_id"`
	GroupID    int64           `json:"group_id"`
	UserID     int64           `json:"user_id"`
	RawMessage string          `json:"raw_message"`
	Message    json.RawMessage `json:"message"`
	Sender     struct {
		Nickname string `json:"nickname"`
		Card     string `json:"card"`
		Role     string `json:"role"`
	} `json:"sender"`
}

// GroupKickedHandler is told when the bot was removed from a group.
type GroupKickedHandler func(ctx context.Context, groupID int64)

type noticeEvent struct {
	NoticeType string `json:"notice_type"`
	SubType    string `json:"sub_type"`
	GroupID    int64  `json:"group_id"`
}

// GroupMessageHandler receives group messages. It runs on its own goroutine.
type GroupMessageHandler func(ctx context.Context, ev GroupMessageEvent)

type request struct {
	Action string `json:"action"`
	Params any    `json:"params"`
	Echo   string `json:"echo"`
}

type response struct {
	Status  string          `json:"status"`
	RetCode int             `json:"retcode"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Wording string          `json:"wording"`
	Echo    string          `json:"echo"`
}

type envelope struct {
	PostType string          `json:"post_type"`
	Echo     json.RawMessage `json:"echo"`
}

type sendGroupMsgParams struct {
	GroupID int64   `json:"group_id"`
	Message Message `json:"message"`
}

type session struct {
	conn *websocket.Conn
	done chan struct{}
}

type implClient struct {
	cfg    Config
	dialer *websocket.Dialer
	header http.Header
	clock  clock.Clock
	logger log.Logger

	mu      sync.RWMutex
	current *session
	writeMu sync.Mutex

	pendingMu sync.Mutex
	pending   map[string]chan response

	handlerMu sync.RWMutex
	handler   GroupMessageHandler
	onKicked  GroupKickedHandler
}
