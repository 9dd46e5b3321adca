package transcript

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/example/court/internal/templates"
)

// TimestampLayout is how times appear in the document.
const TimestampLayout = "2006-01-02 15:04:05"

// Renderer renders documents to self-contained HTML.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded document template. Times are shown in loc.
func NewRenderer(loc *time.Location) (*Renderer, error) {
	if loc == nil {
		loc = time.UTC
	}
	src, err := templates.GetTranscript()
	if err != nil {
		return nil, fmt.Errorf("failed to load transcript template: %w", err)
	}
	css, err := templates.GetTranscriptStyle()
	if err != nil {
		return nil, fmt.Errorf("failed to load transcript style: %w", err)
	}

	funcs := template.FuncMap{
		"style": func() template.CSS { return template.CSS(css) },
		"ts": func(t time.Time) string {
			if t.IsZero() {
				return "-"
			}
			return t.In(loc).Format(TimestampLayout)
		},
	}
	tmpl, err := template.New("transcript").Funcs(funcs).Parse(src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse transcript template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render writes doc as HTML to w.
func (r *Renderer) Render(w io.Writer, doc Document) error {
	if err := r.tmpl.Execute(w, doc); err != nil {
		return fmt.Errorf("failed to render transcript: %w", err)
	}
	return nil
}

// RenderBytes renders doc into memory.
func (r *Renderer) RenderBytes(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
