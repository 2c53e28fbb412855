// Package prompt parses and renders the handlebars-style prompt templates used by flows.
//
// Supported syntax:
//
//	{{a.b}} and {{{a.b}}}     field value (never HTML-escaped)
//	{{#if a}}…{{else}}…{{/if}} conditional block
//	{{#each list}}…{{/each}}   loop; {{this}} is the current element
//	{{json a}}                 compact JSON dump of a value
//	{{media url=a}}            inline media attachment from a data URI
//	{{! comment }}             ignored
//
// Block tags that sit alone on a line are removed together with that line.
package prompt

import (
	"fmt"
	"strings"
)

type nodeKind int

const (
	textNode nodeKind = iota
	fieldNode
	ifNode
	eachNode
	jsonNode
	mediaNode
)

type node struct {
	kind     nodeKind
	text     string
	path     []string
	body     []node
	elseBody []node
}

// Template is a parsed prompt template. It is immutable and safe for concurrent use.
type Template struct {
	name  string
	nodes []node
}

// Name returns the template name given to Parse.
func (t *Template) Name() string { return t.name }

type tokenKind int

const (
	textToken tokenKind = iota
	tagToken
)

type token struct {
	kind tokenKind
	val  string
	pos  int
}

// Parse compiles src into a Template.
func Parse(name, src string) (*Template, error) {
	tokens, err := tokenize(src)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", name, err)
	}
	stripStandalone(tokens)

	nodes, err := build(tokens)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", name, err)
	}
	return &Template{name: name, nodes: nodes}, nil
}

// MustParse is like Parse but panics on error. Intended for package-level templates.
func MustParse(name, src string) *Template {
	t, err := Parse(name, src)
	if err != nil {
		panic(err)
	}
	return t
}

func tokenize(src string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(src) {
		start := strings.Index(src[i:], "{{")
		if start < 0 {
			tokens = append(tokens, token{kind: textToken, val: src[i:], pos: i})
			break
		}
		if start > 0 {
			tokens = append(tokens, token{kind: textToken, val: src[i : i+start], pos: i})
		}
		open := i + start
		closer := "}}"
		bodyStart := open + 2
		if strings.HasPrefix(src[open:], "{{{") {
			closer = "}}}"
			bodyStart = open + 3
		}
		end := strings.Index(src[bodyStart:], closer)
		if end < 0 {
			return nil, fmt.Errorf("unclosed tag at offset %d", open)
		}
		tag := strings.TrimSpace(src[bodyStart : bodyStart+end])
		if tag == "" {
			return nil, fmt.Errorf("empty tag at offset %d", open)
		}
		if !strings.HasPrefix(tag, "!") {
			tokens = append(tokens, token{kind: tagToken, val: tag, pos: open})
		}
		i = bodyStart + end + len(closer)
	}
	return tokens, nil
}

func isBlockTag(tag string) bool {
	return strings.HasPrefix(tag, "#") || strings.HasPrefix(tag, "/") || tag == "else"
}

// stripStandalone removes the surrounding whitespace and newline of block tags
// that occupy a line on their own.
func stripStandalone(tokens []token) {
	for i, tok := range tokens {
		if tok.kind != tagToken || !isBlockTag(tok.val) {
			continue
		}

		prevOK := i == 0
		var prevCut int
		if i > 0 && tokens[i-1].kind == textToken {
			prev := tokens[i-1].val
			nl := strings.LastIndexByte(prev, '\n')
			lineStart := nl >= 0 || i-1 == 0
			if lineStart && strings.TrimSpace(prev[nl+1:]) == "" {
				prevOK = true
				prevCut = nl + 1
			}
		}
		if !prevOK {
			continue
		}

		nextOK := i == len(tokens)-1
		var nextCut int
		if i+1 < len(tokens) && tokens[i+1].kind == textToken {
			next := tokens[i+1].val
			nl := strings.IndexByte(next, '\n')
			if nl >= 0 && strings.TrimSpace(next[:nl]) == "" {
				nextOK = true
				nextCut = nl + 1
			} else if nl < 0 && i+1 == len(tokens)-1 && strings.TrimSpace(next) == "" {
				nextOK = true
				nextCut = len(next)
			}
		}
		if !nextOK {
			continue
		}

		if i > 0 && tokens[i-1].kind == textToken {
			tokens[i-1].val = tokens[i-1].val[:prevCut]
		}
		if i+1 < len(tokens) && tokens[i+1].kind == textToken {
			tokens[i+1].val = tokens[i+1].val[nextCut:]
		}
	}
}

type frame struct {
	kind     nodeKind
	path     []string
	body     []node
	elseBody []node
	inElse   bool
	pos      int
}

func (f *frame) add(n node) {
	if f.inElse {
		f.elseBody = append(f.elseBody, n)
		return
	}
	f.body = append(f.body, n)
}

func build(tokens []token) ([]node, error) {
	root := &frame{kind: textNode}
	stack := []*frame{root}
	top := func() *frame { return stack[len(stack)-1] }

	for _, tok := range tokens {
		if tok.kind == textToken {
			if tok.val != "" {
				top().add(node{kind: textNode, text: tok.val})
			}
			continue
		}

		tag := tok.val
		switch {
		case strings.HasPrefix(tag, "#if "):
			stack = append(stack, &frame{kind: ifNode, path: splitPath(tag[len("#if "):]), pos: tok.pos})
		case strings.HasPrefix(tag, "#each "):
			stack = append(stack, &frame{kind: eachNode, path: splitPath(tag[len("#each "):]), pos: tok.pos})
		case tag == "else":
			f := top()
			if f.kind != ifNode || f.inElse {
				return nil, fmt.Errorf("unexpected {{else}} at offset %d", tok.pos)
			}
			f.inElse = true
		case tag == "/if" || tag == "/each":
			want := ifNode
			if tag == "/each" {
				want = eachNode
			}
			f := top()
			if len(stack) == 1 || f.kind != want {
				return nil, fmt.Errorf("unexpected {{%s}} at offset %d", tag, tok.pos)
			}
			stack = stack[:len(stack)-1]
			top().add(node{kind: f.kind, path: f.path, body: f.body, elseBody: f.elseBody})
		case strings.HasPrefix(tag, "#"):
			return nil, fmt.Errorf("unknown block helper %q at offset %d", tag, tok.pos)
		case strings.HasPrefix(tag, "json "):
			top().add(node{kind: jsonNode, path: splitPath(tag[len("json "):])})
		case strings.HasPrefix(tag, "media "):
			arg := strings.TrimSpace(tag[len("media "):])
			if !strings.HasPrefix(arg, "url=") {
				return nil, fmt.Errorf("media tag requires url= argument at offset %d", tok.pos)
			}
			top().add(node{kind: mediaNode, path: splitPath(arg[len("url="):])})
		default:
			if strings.ContainsAny(tag, " \t") {
				return nil, fmt.Errorf("unsupported expression %q at offset %d", tag, tok.pos)
			}
			top().add(node{kind: fieldNode, path: splitPath(tag)})
		}
	}

	if len(stack) > 1 {
		return nil, fmt.Errorf("unclosed block opened at offset %d", top().pos)
	}
	return root.body, nil
}

func splitPath(expr string) []string {
	expr = strings.TrimSpace(expr)
	if expr == "this" || expr == "." {
		return []string{"this"}
	}
	return strings.Split(expr, ".")
}

// Fields returns every dotted field path referenced by the template, in order of
// first appearance. Paths inside loops are reported relative to the loop element.
func (t *Template) Fields() []string {
	seen := make(map[string]bool)
	var out []string
	var walk func([]node)
	walk = func(nodes []node) {
		for _, n := range nodes {
			if n.kind != textNode {
				p := strings.Join(n.path, ".")
				if !seen[p] {
					seen[p] = true
					out = append(out, p)
				}
			}
			walk(n.body)
			walk(n.elseBody)
		}
	}
	walk(t.nodes)
	return out
}
