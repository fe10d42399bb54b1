package livenotify

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"livenotify-srv/internal/model"
)

// LiveRoomURL prefixes a room id to form its public link.
const LiveRoomURL = "https://live.bilibili.com/"

// uidSeparator splits free text into uids, dropping bracketed annotations
// like the name in "114514(name1919810)".
var uidSeparator = regexp.MustCompile(`\D*(\(.+?\)|\[.+?])\D*|\D+`)

// ParseUIDs extracts the distinct streamer uids of text, in order.
func ParseUIDs(text string) []string {
	out := []string{}
	seen := map[string]struct{}{}
	for _, part := range uidSeparator.Split(text, -1) {
		if part == "" {
			continue
		}
		if _, err := strconv.ParseInt(part, 10, 64); err != nil {
			continue
		}
		if _, dup := seen[part]; dup {
			continue
		}
		seen[part] = struct{}{}
		out = append(out, part)
	}
	return out
}

// FormatDuration renders end-start seconds as days, hours and minutes.
func FormatDuration(start, end int64) string {
	diff := end - start
	days := diff / 86400
	hours := diff % 86400 / 3600
	minutes := diff % 3600 / 60

	switch {
	case days > 0:
		return fmt.Sprintf("%d天%d小时%d分钟", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%d小时%d分钟", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%d分钟", minutes)
	default:
		return "不到一分钟"
	}
}

var configLabels = map[model.NotifyConfigKey]string{
	model.KeyNotifyStopStream:              "下播通知",
	model.KeyShowStreamTime:                "显示直播时长",
	model.KeyShowTitle:                     "显示直播间标题",
	model.KeyShowCover:                     "显示直播间封面",
	model.KeyShowLink:                      "显示直播间链接",
	model.KeyShowLiveArea:                  "显示直播分区",
	model.KeyNotifyTitleChangeWhileLive:    "直播时通知直播间标题更改",
	model.KeyNotifyTitleChangeWhileOffline: "非直播时通知直播间标题更改",
}

// ConfigLabel is the chat label of key.
func ConfigLabel(key model.NotifyConfigKey) string {
	return configLabels[key]
}

// ResolveConfigKey accepts a toggle by English key or chat label.
func ResolveConfigKey(s string) (model.NotifyConfigKey, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, key := range model.NotifyConfigKeys {
		if s == string(key) || s == configLabels[key] {
			return key, true
		}
	}
	return "", false
}

// ParseSwitch reads an on/off word, common misspellings included.
func ParseSwitch(s string) (value bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "enable", "true", "ture", "开", "启用", "开启", "1", "ok":
		return true, true
	case "off", "disable", "false", "flase", "关", "禁用", "关闭", "0", "cancel":
		return false, true
	}
	return false, false
}

// RenderConfig lists every toggle of cfg with its chat label.
func RenderConfig(cfg model.GroupNotifyConfig) string {
	var sb strings.Builder
	sb.WriteString("直播通知配置\n")
	for _, key := range model.NotifyConfigKeys {
		v, _ := cfg.Get(key)
		state := "关"
		if v {
			state = "开"
		}
		fmt.Fprintf(&sb, "\n%s: %s", configLabels[key], state)
	}
	return sb.String()
}

// ConfigLabels lists the chat labels in display order, space separated.
func ConfigLabels() string {
	labels := make([]string, 0, len(model.NotifyConfigKeys))
	for _, key := range model.NotifyConfigKeys {
		labels = append(labels, configLabels[key])
	}
	return strings.Join(labels, " ")
}
