package prompt

import (
	"bytes"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// Definition is a prompt file: YAML front matter followed by a template body.
type Definition struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Config      struct {
		Temperature *float64 `yaml:"temperature"`
	} `yaml:"config"`

	Template *Template `yaml:"-"`
}

var frontMatterDelim = []byte("---")

// ParseDefinition parses a prompt file. The front matter is optional; without it
// the whole file is the template and the name defaults to fallbackName.
func ParseDefinition(fallbackName string, src []byte) (*Definition, error) {
	def := &Definition{}
	body := src

	if bytes.HasPrefix(src, frontMatterDelim) {
		rest := src[len(frontMatterDelim):]
		end := bytes.Index(rest, []byte("\n---"))
		if end < 0 {
			return nil, fmt.Errorf("prompt %s: unterminated front matter", fallbackName)
		}
		if err := yaml.Unmarshal(rest[:end], def); err != nil {
			return nil, fmt.Errorf("prompt %s: front matter: %w", fallbackName, err)
		}
		body = rest[end+len("\n---"):]
		body = bytes.TrimPrefix(bytes.TrimPrefix(body, []byte("\r")), []byte("\n"))
	}
	if def.Name == "" {
		def.Name = fallbackName
	}

	tmpl, err := Parse(def.Name, string(body))
	if err != nil {
		return nil, err
	}
	def.Template = tmpl
	return def, nil
}

// Load reads and parses a single prompt file from fsys.
func Load(fsys fs.FS, file string) (*Definition, error) {
	src, err := fs.ReadFile(fsys, file)
	if err != nil {
		return nil, fmt.Errorf("reading prompt %s: %w", file, err)
	}
	return ParseDefinition(strings.TrimSuffix(path.Base(file), ".prompt"), src)
}

// LoadDir parses every *.prompt file in dir, keyed by prompt name.
func LoadDir(fsys fs.FS, dir string) (map[string]*Definition, error) {
	matches, err := fs.Glob(fsys, path.Join(dir, "*.prompt"))
	if err != nil {
		return nil, err
	}
	defs := make(map[string]*Definition, len(matches))
	for _, m := range matches {
		def, err := Load(fsys, m)
		if err != nil {
			return nil, err
		}
		if _, dup := defs[def.Name]; dup {
			return nil, fmt.Errorf("duplicate prompt name %q in %s", def.Name, m)
		}
		defs[def.Name] = def
	}
	return defs, nil
}
