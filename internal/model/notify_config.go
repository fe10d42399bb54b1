package model

// GroupNotifyConfig holds the per-group toggles for live notifications.
type GroupNotifyConfig struct {
	NotifyStopStream              bool `json:"notifyStopStream"`
	ShowStreamTime                bool `json:"showStreamTime"`
	ShowTitle                     bool `json:"showTitle"`
	ShowCover                     bool `json:"showCover"`
	ShowLink                      bool `json:"showLink"`
	ShowLiveArea                  bool `json:"showLiveArea"`
	NotifyTitleChangeWhileLive    bool `json:"notifyTitleChangeWhileStreaming"`
	NotifyTitleChangeWhileOffline bool `json:"notifyTitleChangeWhileNotStreaming"`
}

// DefaultGroupNotifyConfig enables everything except title changes while offline.
func DefaultGroupNotifyConfig() GroupNotifyConfig {
	return GroupNotifyConfig{
		NotifyStopStream:              true,
		ShowStreamTime:                true,
		ShowTitle:                     true,
		ShowCover:                     true,
		ShowLink:                      true,
		ShowLiveArea:                  true,
		NotifyTitleChangeWhileLive:    true,
		NotifyTitleChangeWhileOffline: false,
	}
}

// NotifyConfigKey names one toggle of GroupNotifyConfig.
type NotifyConfigKey string

const (
	KeyNotifyStopStream              NotifyConfigKey = "notify_stop"
	KeyShowStreamTime                NotifyConfigKey = "show_duration"
	KeyShowTitle                     NotifyConfigKey = "show_title"
	KeyShowCover                     NotifyConfigKey = "show_cover"
	KeyShowLink                      NotifyConfigKey = "show_link"
	KeyShowLiveArea                  NotifyConfigKey = "show_area"
	KeyNotifyTitleChangeWhileLive    NotifyConfigKey = "title_change_live"
	KeyNotifyTitleChangeWhileOffline NotifyConfigKey = "title_change_offline"
)

// NotifyConfigKeys lists every toggle in display order.
var NotifyConfigKeys = []NotifyConfigKey{
	KeyNotifyStopStream,
	KeyShowStreamTime,
	KeyShowTitle,
	KeyShowCover,
	KeyShowLink,
	KeyShowLiveArea,
	KeyNotifyTitleChangeWhileLive,
	KeyNotifyTitleChangeWhileOffline,
}

// Get returns the value of the toggle named by key.
func (c GroupNotifyConfig) Get(key NotifyConfigKey) (bool, bool) {
	p := c.field(key)
	if p == nil {
		return false, false
	}
	return *p, true
}

// Set updates the toggle named by key; it reports false for unknown keys.
func (c *GroupNotifyConfig) Set(key NotifyConfigKey, v bool) bool {
	p := c.field(key)
	if p == nil {
		return false
	}
	*p = v
	return true
}

func (c *GroupNotifyConfig) field(key NotifyConfigKey) *bool {
	switch key {
	case KeyNotifyStopStream:
		return &c.NotifyStopStream
	case KeyShowStreamTime:
		return &c.ShowStreamTime
	case KeyShowTitle:
		return &c.ShowTitle
	case KeyShowCover:
		return &c.ShowCover
	case KeyShowLink:
		return &c.ShowLink
	case KeyShowLiveArea:
		return &c.ShowLiveArea
	case KeyNotifyTitleChangeWhileLive:
		return &c.NotifyTitleChangeWhileLive
	case KeyNotifyTitleChangeWhileOffline:
		return &c.NotifyTitleChangeWhileOffline
	}
	return nil
}
