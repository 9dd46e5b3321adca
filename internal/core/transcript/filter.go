package transcript

import "strings"

// DefaultKeywords are embed-title keywords that mark a bot message as
// informative. Matching is case-insensitive substring.
var DefaultKeywords = []string{
	"tildelt", "lukket", "arkivert", "bevis",
	"assigned", "closed", "archived", "evidence",
}

// Filter drops automated noise from a transcript.
type Filter struct {
	Keywords []string
}

// NewFilter returns a filter over keywords, or DefaultKeywords when empty.
func NewFilter(keywords []string) Filter {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	lower := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			lower = append(lower, k)
		}
	}
	return Filter{Keywords: lower}
}

// Keep reports whether m belongs in the transcript. A message is dropped
// when it is authored by a bot, carries at least one embed, and the first
// embed's title contains none of the keywords.
func (f Filter) Keep(m Message) bool {
	if !m.AuthorBot || len(m.Embeds) == 0 {
		return true
	}
	title := strings.ToLower(m.Embeds[0].Title)
	if title == "" {
		return false
	}
	for _, k := range f.Keywords {
		if strings.Contains(title, k) {
			return true
		}
	}
	return false
}

// Apply returns the kept messages in their original order.
func (f Filter) Apply(msgs []Message) []Message {
	kept := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		if f.Keep(m) {
			kept = append(kept, m)
		}
	}
	return kept
}
