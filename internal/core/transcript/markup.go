package transcript

import (
	"html"
	"html/template"
	"strings"
)

// delimTags maps a delimiter character and the number of characters it
// consumes to the tag pair it renders as.
var delimTags = map[string][2]string{
	"**": {"<strong>", "</strong>"},
	"*":  {"<em>", "</em>"},
	"_":  {"<em>", "</em>"},
	"__": {"<u>", "</u>"},
	"~~": {"<del>", "</del>"},
	"||": {`<span class="spoiler">`, "</span>"},
}

// token is either literal text or a run of one delimiter character.
type token struct {
	text     string
	char     byte // 0 for text
	n        int  // delimiter characters not yet paired
	canOpen  bool
	canClose bool
	open     []string // opening tags, outermost first
	close    []string // closing tags, innermost first
}

func (t *token) render(b *strings.Builder) {
	if t.char == 0 {
		b.WriteString(t.text)
		return
	}
	for _, tag := range t.close {
		b.WriteString(tag)
	}
	b.WriteString(strings.Repeat(string(t.char), t.n))
	for _, tag := range t.open {
		b.WriteString(tag)
	}
}

// Markup converts chat-flavoured text to HTML. The text is escaped first,
// then delimiter runs are paired innermost first. Characters left unpaired
// are kept literally. Line breaks become <br>.
func Markup(raw string) template.HTML {
	tokens := tokenize(html.EscapeString(raw))
	pair(tokens)

	var b strings.Builder
	for i := range tokens {
		tokens[i].render(&b)
	}
	out := strings.ReplaceAll(b.String(), "\r\n", "\n")
	return template.HTML(strings.ReplaceAll(out, "\n", "<br>"))
}

func isDelim(c byte) bool {
	return c == '*' || c == '_' || c == '~' || c == '|'
}

func tokenize(s string) []token {
	var tokens []token
	textStart := 0
	for i := 0; i < len(s); {
		c := s[i]
		if !isDelim(c) {
			i++
			continue
		}
		run := 1
		for i+run < len(s) && s[i+run] == c {
			run++
		}
		if i > textStart {
			tokens = append(tokens, token{text: s[textStart:i]})
		}

		var before, after byte = ' ', ' '
		if i > 0 {
			before = s[i-1]
		}
		if i+run < len(s) {
			after = s[i+run]
		}
		t := token{char: c, n: run, canOpen: true, canClose: true}
		if c == '*' || c == '_' {
			t.canOpen = !isSpace(after)
			t.canClose = !isSpace(before)
		}
		if c == '_' {
			t.canOpen = t.canOpen && !isWordByte(before)
			t.canClose = t.canClose && !isWordByte(after)
		}
		tokens = append(tokens, t)

		i += run
		textStart = i
	}
	if textStart < len(s) {
		tokens = append(tokens, token{text: s[textStart:]})
	}
	return tokens
}

// minRun is the fewest characters a delimiter pair consumes on each side.
func minRun(c byte) int {
	if c == '~' || c == '|' {
		return 2
	}
	return 1
}

// pair matches every closing run with the nearest compatible opener. A pair
// takes two characters from each side when both have them, else one. Openers
// skipped over by a match can no longer pair, which keeps tags nested.
func pair(tokens []token) {
	var openers []int
	for i := range tokens {
		t := &tokens[i]
		if t.char == 0 {
			continue
		}
		need := minRun(t.char)

		if t.canClose {
			for t.n >= need {
				j := len(openers) - 1
				for ; j >= 0; j-- {
					o := &tokens[openers[j]]
					if o.char == t.char && o.n >= need {
						break
					}
				}
				if j < 0 {
					break
				}
				o := &tokens[openers[j]]
				use := need
				if o.n >= 2 && t.n >= 2 {
					use = 2
				}
				tags := delimTags[strings.Repeat(string(t.char), use)]
				o.open = append([]string{tags[0]}, o.open...)
				t.close = append(t.close, tags[1])
				o.n -= use
				t.n -= use

				if o.n >= need {
					openers = openers[:j+1]
				} else {
					openers = openers[:j]
				}
			}
		}
		if t.canOpen && t.n >= need {
			openers = append(openers, i)
		}
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isWordByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c >= 0x80
}
