package transcript

import (
	"fmt"
	"html/template"
	"time"
)

// GroupGap is the largest gap between consecutive messages of one author
// that still continues a visual group.
const GroupGap = 300 * time.Second

// DefaultAccent is the author color used when no role color applies.
const DefaultAccent = "#000000"

// Group is a run of consecutive messages from one author.
type Group struct {
	AuthorID  int64
	Author    string
	AvatarURL string
	Accent    string
	FirstAt   time.Time
	Entries   []Entry

	lastAt time.Time
}

// Entry is one rendered message inside a group.
type Entry struct {
	At          time.Time
	Text        template.HTML
	Attachments []string
	Embeds      []RenderedEmbed
}

// RenderedEmbed is an embed with its text converted to markup.
type RenderedEmbed struct {
	Title       template.HTML
	Description template.HTML
	Fields      []RenderedField
}

// RenderedField is an embed field with converted markup.
type RenderedField struct {
	Name  template.HTML
	Value template.HTML
}

// AccentColor returns the display color for an author. Bots and uncolored
// members get DefaultAccent.
func AccentColor(m Message) string {
	if m.AuthorBot || m.AuthorColor == 0 {
		return DefaultAccent
	}
	return fmt.Sprintf("#%06x", m.AuthorColor&0xffffff)
}

// GroupMessages groups consecutive messages that share an author where each
// message follows the previous one in the group by at most GroupGap. Input
// must be oldest-first.
func GroupMessages(msgs []Message) []Group {
	var groups []Group
	for _, m := range msgs {
		n := len(groups)
		if n == 0 || groups[n-1].AuthorID != m.AuthorID || m.CreatedAt.Sub(groups[n-1].lastAt) > GroupGap {
			groups = append(groups, Group{
				AuthorID:  m.AuthorID,
				Author:    m.AuthorName,
				AvatarURL: m.AvatarURL,
				Accent:    AccentColor(m),
				FirstAt:   m.CreatedAt,
			})
			n++
		}
		g := &groups[n-1]
		g.lastAt = m.CreatedAt
		g.Entries = append(g.Entries, renderEntry(m))
	}
	return groups
}

func renderEntry(m Message) Entry {
	e := Entry{
		At:          m.CreatedAt,
		Text:        Markup(m.Content),
		Attachments: m.Attachments,
	}
	for _, em := range m.Embeds {
		re := RenderedEmbed{
			Title:       Markup(em.Title),
			Description: Markup(em.Description),
		}
		for _, f := range em.Fields {
			re.Fields = append(re.Fields, RenderedField{Name: Markup(f.Name), Value: Markup(f.Value)})
		}
		e.Embeds = append(e.Embeds, re)
	}
	return e
}
