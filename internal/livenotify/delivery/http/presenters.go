package http

import (
	"strings"

	"livenotify-srv/internal/livenotify"
	"livenotify-srv/internal/model"
	"livenotify-srv/pkg/errors"
)

type uidsReq struct {
	UIDs []string `json:"uids"`
	// Text is free text such as "114514(name) 1919810".
	Text string `json:"text"`
}

func (r uidsReq) validate() error {
	if len(r.UIDs) == 0 && strings.TrimSpace(r.Text) == "" {
		return errors.NewValidationError(400, "uids", "uids or text is required")
	}
	return nil
}

func (r uidsReq) values() []string {
	out := append([]string{}, r.UIDs...)
	if r.Text != "" {
		out = append(out, r.Text)
	}
	return out
}

type setConfigReq struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (r setConfigReq) validate() error {
	c := errors.NewValidationErrorCollector()
	if strings.TrimSpace(r.Key) == "" {
		c.Add(errors.NewValidationError(400, "key", "required"))
	}
	if strings.TrimSpace(r.Value) == "" {
		c.Add(errors.NewValidationError(400, "value", "required"))
	}
	if c.HasError() {
		return c
	}
	return nil
}

type replyResp struct {
	Reply  string                   `json:"reply"`
	OK     bool                     `json:"ok"`
	UIDs   []string                 `json:"uids,omitempty"`
	Groups []string                 `json:"groups,omitempty"`
	Config *model.GroupNotifyConfig `json:"config,omitempty"`
}

func newReplyResp(r livenotify.Reply) replyResp {
	return replyResp{
		Reply:  r.Text,
		OK:     r.OK,
		UIDs:   r.UIDs,
		Groups: r.Groups,
		Config: r.Config,
	}
}

type sensitiveResp struct {
	UIDs []string `json:"uids"`
}
