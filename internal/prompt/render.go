package prompt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kiranshivaraju/rescueassist/pkg/models"
)

// Prompt is a rendered template: text interleaved with media attachments.
type Prompt struct {
	Parts []models.Part
}

// Text returns the concatenated text parts.
func (p Prompt) Text() string {
	var b strings.Builder
	for _, part := range p.Parts {
		if part.Media == nil {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}

// FieldError reports a template field whose value could not be rendered.
type FieldError struct {
	Path string
	Err  error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s: %v", e.Path, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

type renderer struct {
	parts []models.Part
	text  strings.Builder
}

// Render evaluates the template against input. The input is converted through its
// JSON representation, so field paths use JSON names.
func (t *Template) Render(input any) (Prompt, error) {
	root, err := toValue(input)
	if err != nil {
		return Prompt{}, err
	}

	r := &renderer{}
	if err := r.render(t.nodes, []any{root}); err != nil {
		return Prompt{}, err
	}
	r.flush()
	return Prompt{Parts: r.parts}, nil
}

func toValue(input any) (any, error) {
	raw, ok := input.(json.RawMessage)
	if !ok {
		b, err := json.Marshal(input)
		if err != nil {
			return nil, fmt.Errorf("encoding template input: %w", err)
		}
		raw = b
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decoding template input: %w", err)
	}
	return v, nil
}

func (r *renderer) flush() {
	if r.text.Len() > 0 {
		r.parts = append(r.parts, models.Part{Text: r.text.String()})
		r.text.Reset()
	}
}

// scopes holds the root value first and the innermost loop element last.
func (r *renderer) render(nodes []node, scopes []any) error {
	for _, n := range nodes {
		switch n.kind {
		case textNode:
			r.text.WriteString(n.text)

		case fieldNode:
			v, _ := lookup(scopes, n.path)
			s, err := format(v)
			if err != nil {
				return &FieldError{Path: strings.Join(n.path, "."), Err: err}
			}
			r.text.WriteString(s)

		case jsonNode:
			v, _ := lookup(scopes, n.path)
			s, err := encodeJSON(v)
			if err != nil {
				return &FieldError{Path: strings.Join(n.path, "."), Err: err}
			}
			r.text.WriteString(s)

		case ifNode:
			v, _ := lookup(scopes, n.path)
			body := n.elseBody
			if truthy(v) {
				body = n.body
			}
			if err := r.render(body, scopes); err != nil {
				return err
			}

		case eachNode:
			v, _ := lookup(scopes, n.path)
			items, ok := v.([]any)
			if !ok {
				continue
			}
			for _, item := range items {
				if err := r.render(n.body, append(scopes[:len(scopes):len(scopes)], item)); err != nil {
					return err
				}
			}

		case mediaNode:
			v, _ := lookup(scopes, n.path)
			uri, _ := v.(string)
			media, err := ParseDataURI(uri)
			if err != nil {
				return &FieldError{Path: strings.Join(n.path, "."), Err: err}
			}
			r.flush()
			r.parts = append(r.parts, models.Part{Media: &media})
		}
	}
	return nil
}

// lookup resolves path against the innermost scope first, then outward to the root.
func lookup(scopes []any, path []string) (any, bool) {
	if path[0] == "this" {
		return walk(scopes[len(scopes)-1], path[1:])
	}
	for i := len(scopes) - 1; i >= 0; i-- {
		if v, ok := walk(scopes[i], path); ok {
			return v, true
		}
	}
	return nil, false
}

func walk(v any, path []string) (any, bool) {
	for _, key := range path {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, false
		}
		v, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return v, true
}

func format(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	case bool:
		if x {
			return "true", nil
		}
		return "false", nil
	default:
		return encodeJSON(x)
	}
}

func encodeJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case json.Number:
		f, err := x.Float64()
		return err != nil || f != 0
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	default:
		return true
	}
}
