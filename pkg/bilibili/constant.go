package bilibili

import "time"

const (
	DefaultBaseURL = "https://api.live.bilibili.com"
	DefaultTimeout = 10 * time.Second
	UserAgent      = "Mozilla/5.0 (compatible; livenotify-srv/1.0)"

	statusInfoByUIDsPath = "/room/v1/Room/get_status_info_by_uids"
	maxResponseSize      = 16 << 20
)
