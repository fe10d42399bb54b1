package moderation

// BanThreshold is the number of violations after which a group is banned.
const BanThreshold = 3

// BanNotice is sent once to a group when it gets banned.
const BanNotice = "该群由于多次触发敏感词已被Bot永久拉黑，请联系Bot管理员进行进一步操作"

// Violation attributes one sensitive event to a member and/or a group.
type Violation struct {
	MemberID string
	GroupID  string
}

// RecordResult tells what RecordViolation did.
type RecordResult struct {
	MemberBanned bool
	Count        int
	GroupBanned  bool
}

// InboundMessage is a chat message seen by the bot.
type InboundMessage struct {
	GroupID  string
	MemberID string
	Text     string
}
