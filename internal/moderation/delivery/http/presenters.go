package http

import (
	"strings"

	"livenotify-srv/internal/moderation"
	"livenotify-srv/internal/permission"
	"livenotify-srv/pkg/errors"
)

type membersReq struct {
	Members []string `json:"members"`
}

func (r membersReq) validate() error {
	if len(r.Members) == 0 {
		return errors.NewValidationError(400, "members", "required")
	}
	for _, m := range r.Members {
		if strings.TrimSpace(m) == "" {
			return errors.NewValidationError(400, "members", "must not contain empty ids")
		}
	}
	return nil
}

type adminReq struct {
	Member string `json:"member"`
}

type botReq struct {
	Enabled *bool `json:"enabled"`
}

type featuresReq struct {
	Op       string   `json:"op"`
	Features []string `json:"features"`
}

func (r featuresReq) validate() error {
	c := errors.NewValidationErrorCollector()
	switch permission.SwitchOp(r.Op) {
	case permission.SwitchEnable, permission.SwitchDisable, permission.SwitchReset:
	default:
		c.Add(errors.NewValidationError(400, "op", "must be enable, disable or reset"))
	}
	if len(r.Features) == 0 {
		c.Add(errors.NewValidationError(400, "features", "required"))
	}
	if c.HasError() {
		return c
	}
	return nil
}

type violationReq struct {
	MemberID string `json:"member_id"`
	GroupID  string `json:"group_id"`
}

func (r violationReq) toInput() moderation.Violation {
	return moderation.Violation{MemberID: r.MemberID, GroupID: r.GroupID}
}

type checkReq struct {
	MemberID string `json:"member_id"`
	GroupID  string `json:"group_id"`
	Text     string `json:"text"`
}

func (r checkReq) toInput() moderation.InboundMessage {
	return moderation.InboundMessage{GroupID: r.GroupID, MemberID: r.MemberID, Text: r.Text}
}

type banResp struct {
	Banned []string `json:"banned"`
}

type groupBanResp struct {
	Group string `json:"group"`
	Added bool   `json:"added"`
}

type recordResp struct {
	MemberBanned bool `json:"member_banned"`
	Count        int  `json:"count"`
	GroupBanned  bool `json:"group_banned"`
}

func newRecordResp(r moderation.RecordResult) recordResp {
	return recordResp{MemberBanned: r.MemberBanned, Count: r.Count, GroupBanned: r.GroupBanned}
}

type checkResp struct {
	Sensitive bool `json:"sensitive"`
}
