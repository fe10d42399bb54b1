package onebot

import "strings"

// Segment is one element of an array-format message.
type Segment struct {
	Type string            `json:"type"`
	Data map[string]string `json:"data"`
}

// Message is an array-format message.
type Message []Segment

// Text returns a plain text segment.
func Text(s string) Segment {
	return Segment{Type: segmentTypeText, Data: map[string]string{"text": s}}
}

// Image returns an image segment fetched by the bot runtime from url.
func Image(url string) Segment {
	return Segment{Type: segmentTypeImage, Data: map[string]string{"file": url}}
}

// At returns a mention of qq.
func At(qq string) Segment {
	return Segment{Type: segmentTypeAt, Data: map[string]string{"qq": qq}}
}

// NewText is a message made of a single text segment.
func NewText(s string) Message {
	return Message{Text(s)}
}

// PlainText concatenates the text segments.
func (m Message) PlainText() string {
	var sb strings.Builder
	for _, seg := range m {
		if seg.Type == segmentTypeText {
			sb.WriteString(seg.Data["text"])
		}
	}
	return sb.String()
}
