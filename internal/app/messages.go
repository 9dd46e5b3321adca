package app

import (
	"bytes"
	"fmt"
	"sync"
	"text/template"

	"github.com/example/court/internal/templates"
)

var (
	messageMu    sync.Mutex
	messageCache = map[string]*template.Template{}
)

// renderMessage executes the embedded chat message template name.
func renderMessage(name string, data any) (string, error) {
	messageMu.Lock()
	tmpl, ok := messageCache[name]
	if !ok {
		src, err := templates.GetMessage(name)
		if err != nil {
			messageMu.Unlock()
			return "", fmt.Errorf("failed to load %s message: %w", name, err)
		}
		tmpl, err = template.New(name).Parse(src)
		if err != nil {
			messageMu.Unlock()
			return "", fmt.Errorf("failed to parse %s message: %w", name, err)
		}
		messageCache[name] = tmpl
	}
	messageMu.Unlock()

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s message: %w", name, err)
	}
	return buf.String(), nil
}

// mention formats a user mention.
func mention(userID int64) string {
	return fmt.Sprintf("<@%d>", userID)
}
