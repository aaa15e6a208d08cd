// Package prompt loads LLM prompt templates. Templates use named
// placeholders like {ticket_text} substituted at render time.
package prompt

import (
	"fmt"
	"os"
	"strings"
)

// Template is an immutable prompt template.
type Template struct {
	text string
}

func New(text string) Template {
	return Template{text: text}
}

// Load reads a template from path, falling back to fallback when the path is
// empty or unreadable. The boolean reports whether the file was used.
func Load(path, fallback string) (Template, bool, error) {
	if path == "" {
		return Template{text: fallback}, false, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Template{text: fallback}, false, nil
		}
		return Template{}, false, fmt.Errorf("failed to read prompt template %s: %w", path, err)
	}
	return Template{text: string(data)}, true, nil
}

// Render substitutes each {key} placeholder with its value.
func (t Template) Render(vars map[string]string) string {
	out := t.text
	for key, value := range vars {
		out = strings.ReplaceAll(out, "{"+key+"}", value)
	}
	return out
}
