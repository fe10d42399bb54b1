// Package safety decides whether a piece of user-visible text (a streamer
// name, a room title, a chat message) hits the sensitive word list.
package safety

// Checker is what the notification pipeline and the moderation hook depend on.
type Checker interface {
	IsSensitive(text string) bool
}
