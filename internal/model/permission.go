package model

// Permission is the bot-wide permission document.
type Permission struct {
	Admins            []string `json:"admin"`
	GroupBlackList    []string `json:"groupBlackList"`
	GroupDisabledList []string `json:"groupDisabledList"`
	MemberBlackList   []string `json:"memberBlackList"`
}

// FeatureSwitch records the features explicitly enabled or disabled in one group.
type FeatureSwitch struct {
	Enabled  []string `json:"enabled"`
	Disabled []string `json:"disabled"`
}

// FeatureLiveNotify is the feature id of live notifications.
const FeatureLiveNotify = "LiveNotify"

// Subscription caps.
const (
	PerGroupMax = 300
	GlobalMax   = 5000
)
