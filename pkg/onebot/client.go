package onebot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

func (c *implClient) Run(ctx context.Context) error {
	backoff := c.cfg.MinBackoff
	for {
		s, err := c.connect(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Warnf(ctx, "pkg.onebot.Run: connect %s: %v, retrying in %s", c.cfg.URL, err, backoff)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-c.clock.After(backoff):
			}
			backoff = min(backoff*2, c.cfg.MaxBackoff)
			continue
		}

		backoff = c.cfg.MinBackoff
		c.logger.Infof(ctx, "pkg.onebot.Run: connected to %s", c.cfg.URL)
		go c.logLogin(ctx)

		stop := context.AfterFunc(ctx, func() { s.conn.Close() })
		err = c.readLoop(ctx, s)
		stop()
		c.drop(s)

		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Warnf(ctx, "pkg.onebot.Run: connection lost: %v", err)
	}
}

func (c *implClient) connect(ctx context.Context) (*session, error) {
	conn, resp, err := c.dialer.DialContext(ctx, c.cfg.URL, c.header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	conn.SetReadLimit(maxMessageReadLen)

	s := &session{conn: conn, done: make(chan struct{})}
	c.mu.Lock()
	c.current = s
	c.mu.Unlock()
	return s, nil
}

func (c *implClient) drop(s *session) {
	c.mu.Lock()
	if c.current == s {
		c.current = nil
	}
	c.mu.Unlock()
	close(s.done)
	s.conn.Close()
}

func (c *implClient) readLoop(ctx context.Context, s *session) error {
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return err
		}
		c.dispatch(ctx, data)
	}
}

func (c *implClient) dispatch(ctx context.Context, data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.logger.Warnf(ctx, "pkg.onebot.dispatch: malformed frame: %v", err)
		return
	}

	if env.PostType == "" && len(env.Echo) > 0 {
		var resp response
		if err := json.Unmarshal(data, &resp); err != nil {
			c.logger.Warnf(ctx, "pkg.onebot.dispatch: malformed response: %v", err)
			return
		}
		c.pendingMu.Lock()
		ch, ok := c.pending[resp.Echo]
		delete(c.pending, resp.Echo)
		c.pendingMu.Unlock()
		if ok {
			ch <- resp
		}
		return
	}

	if env.PostType == postTypeNotice {
		c.dispatchNotice(ctx, data)
		return
	}
	if env.PostType != postTypeMessage {
		return
	}
	var ev GroupMessageEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		c.logger.Warnf(ctx, "pkg.onebot.dispatch: malformed event: %v", err)
		return
	}
	if ev.MsgType != messageTypeGroup {
		return
	}

	c.handlerMu.RLock()
	h := c.handler
	c.handlerMu.RUnlock()
	if h != nil {
		go h(ctx, ev)
	}
}

func (c *implClient) dispatchNotice(ctx context.Context, data []byte) {
	var ev noticeEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		c.logger.Warnf(ctx, "pkg.onebot.dispatchNotice: malformed event: %v", err)
		return
	}
	if ev.NoticeType != noticeGroupDecr || ev.SubType != subTypeKickMe {
		return
	}
	c.handlerMu.RLock()
	h := c.onKicked
	c.handlerMu.RUnlock()
	if h != nil {
		go h(ctx, ev.GroupID)
	}
}

// call sends an action and waits for its response.
func (c *implClient) call(ctx context.Context, action string, params any) (json.RawMessage, error) {
	c.mu.RLock()
	s := c.current
	c.mu.RUnlock()
	if s == nil {
		return nil, ErrNotConnected
	}

	echo := uuid.NewString()
	payload, err := json.Marshal(request{Action: action, Params: params, Echo: echo})
	if err != nil {
		return nil, fmt.Errorf("pkg.onebot.call: %w", err)
	}

	ch := make(chan response, 1)
	c.pendingMu.Lock()
	c.pending[echo] = ch
	c.pendingMu.Unlock()
	defer func() {
		c.pendingMu.Lock()
		delete(c.pending, echo)
		c.pendingMu.Unlock()
	}()

	c.writeMu.Lock()
	s.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	err = s.conn.WriteMessage(websocket.TextMessage, payload)
	c.writeMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("pkg.onebot.call: %s: %w", action, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	select {
	case resp := <-ch:
		if resp.Status != statusOK && resp.Status != statusAsync {
			msg := resp.Message
			if msg == "" {
				msg = resp.Wording
			}
			return nil, &ActionError{Action: action, Status: resp.Status, RetCode: resp.RetCode, Message: msg}
		}
		return resp.Data, nil
	case <-s.done:
		return nil, ErrNotConnected
	case <-ctx.Done():
		return nil, fmt.Errorf("pkg.onebot.call: %s: %w", action, ctx.Err())
	}
}

func (c *implClient) SendGroupMessage(ctx context.Context, groupID string, msg Message) error {
	if len(msg) == 0 {
		return ErrEmptyMessage
	}
	gid, err := strconv.ParseInt(strings.TrimSpace(groupID), 10, 64)
	if err != nil || gid <= 0 {
		return fmt.Errorf("%w: %q", ErrInvalidGroupID, groupID)
	}
	_, err = c.call(ctx, actionSendGroupMsg, sendGroupMsgParams{GroupID: gid, Message: msg})
	return err
}

func (c *implClient) LoginInfo(ctx context.Context) (userID int64, nickname string, err error) {
	data, err := c.call(ctx, actionGetLoginInfo, struct{}{})
	if err != nil {
		return 0, "", err
	}
	var info struct {
		UserID   int64  `json:"user_id"`
		Nickname string `json:"nickname"`
	}
	if err := json.Unmarshal(data, &info); err != nil {
		return 0, "", fmt.Errorf("pkg.onebot.LoginInfo: %w", err)
	}
	return info.UserID, info.Nickname, nil
}

func (c *implClient) logLogin(ctx context.Context) {
	id, nickname, err := c.LoginInfo(ctx)
	if err != nil {
		c.logger.Warnf(ctx, "pkg.onebot.logLogin: %v", err)
		return
	}
	c.logger.Infof(ctx, "pkg.onebot.logLogin: logged in as %s(%d)", nickname, id)
}

func (c *implClient) Session(ctx context.Context) (Sender, error) {
	if !c.Connected() {
		return nil, ErrNotConnected
	}
	return c, nil
}

func (c *implClient) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current != nil
}

func (c *implClient) OnGroupMessage(h GroupMessageHandler) {
	c.handlerMu.Lock()
	c.handler = h
	c.handlerMu.Unlock()
}

func (c *implClient) OnGroupKicked(h GroupKickedHandler) {
	c.handlerMu.Lock()
	c.onKicked = h
	c.handlerMu.Unlock()
}

func (c *implClient) Close() error {
	c.mu.RLock()
	s := c.current
	c.mu.RUnlock()
	if s == nil {
		return nil
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	err := s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(c.cfg.WriteTimeout))
	if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		return err
	}
	return nil
}
