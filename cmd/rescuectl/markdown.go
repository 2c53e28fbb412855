package main

import (
	"encoding/json"

	"github.com/charmbracelet/glamour"
)

const markdownWidth = 100

// renderMarkdown renders md for a terminal. style is a glamour standard style
// name; "auto" adapts to the terminal background.
func renderMarkdown(md, style string) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(markdownWidth)}
	if style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}

// markdownField returns the markdown text carried by a flow result, if any.
// Report flows answer with a "report" field and receipts with "message".
func markdownField(result any) (string, bool) {
	raw, err := json.Marshal(result)
	if err != nil {
		return "", false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return "", false
	}
	for _, key := range []string{"report", "message"} {
		var s string
		if err := json.Unmarshal(fields[key], &s); err == nil && s != "" {
			return s, true
		}
	}
	return "", false
}
