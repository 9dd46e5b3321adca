// Package transcript turns a case channel's message history into an
// archival HTML document. Everything here is pure: the caller supplies the
// messages, evidence and resolved names.
package transcript

import "time"

// Message is one chat message as fetched from the platform.
type Message struct {
	ID          int64
	AuthorID    int64
	AuthorName  string // display name at export time
	AvatarURL   string
	AuthorBot   bool
	AuthorColor int // top role color as 0xRRGGBB, 0 when uncolored
	Content     string
	CreatedAt   time.Time
	Attachments []string
	Embeds      []Embed
}

// Embed is a rich embed attached to a message.
type Embed struct {
	Title       string
	Description string
	Fields      []EmbedField
}

// EmbedField is a name/value row in an embed.
type EmbedField struct {
	Name  string
	Value string
}
