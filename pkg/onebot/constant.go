package onebot

import "time"

const (
	DefaultWriteTimeout   = 10 * time.Second
	DefaultRequestTimeout = 15 * time.Second
	DefaultMinBackoff     = time.Second
	DefaultMaxBackoff     = 30 * time.Second

	actionSendGroupMsg = "send_group_msg"
	actionGetLoginInfo = "get_login_info"

	postTypeMessage   = "message"
	postTypeNotice    = "notice"
	noticeGroupDecr   = "group_decrease"
	subTypeKickMe     = "kick_me"
	messageTypeGroup  = "group"
	statusOK          = "ok"
	statusAsync       = "async"
	segmentTypeText   = "text"
	segmentTypeImage  = "image"
	segmentTypeAt     = "at"
	maxMessageReadLen = 4 << 20
)
