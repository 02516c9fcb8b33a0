// Package letter reads markdown letters with a YAML frontmatter block.
package letter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/felixhoffmnn/latex-templates/internal/model"
	"github.com/felixhoffmnn/latex-templates/internal/schema"
)

var (
	// ErrMissingFrontMatter indicates the document did not start with a YAML fence.
	ErrMissingFrontMatter = errors.New("letter: missing frontmatter")
	// ErrMalformedFrontMatter indicates the YAML block was not closed.
	ErrMalformedFrontMatter = errors.New("letter: malformed frontmatter")
)

const (
	DefaultOpening = "Sehr geehrte Damen und Herren,"
	DefaultClosing = "Mit freundlichen Grüßen,"
)

// Value is a location value; numbers are kept in their printed form.
type Value string

func (v *Value) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*v = Value(n.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*v = Value(s)
	return nil
}

// Location is one key/value line of the reference block, e.g. a customer number.
type Location struct {
	Key   string `json:"key"`
	Value Value  `json:"value"`
}

// Letter is the frontmatter of a letter.
type Letter struct {
	Recipient model.Address `json:"recipient"`
	Location  []Location    `json:"location"`
	Place     string        `json:"place"`
	Subject   string        `json:"subject"`
	Opening   string        `json:"opening"`
	Closing   string        `json:"closing"`
	Date      string        `json:"date"`
}

// Document is a parsed letter file.
type Document struct {
	Letter Letter
	Body   []byte
}

// Load reads a letter file from disk.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading letter: %w", err)
	}
	return Parse(path, data)
}

// Parse splits content into frontmatter and markdown body and validates the frontmatter.
func Parse(source string, content []byte) (*Document, error) {
	normalized := bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(normalized, []byte("---\n")) {
		return nil, ErrMissingFrontMatter
	}
	parts := bytes.SplitN(normalized[4:], []byte("\n---\n"), 2)
	if len(parts) < 2 {
		if bytes.HasSuffix(normalized, []byte("\n---")) {
			parts = [][]byte{bytes.TrimSuffix(normalized[4:], []byte("\n---")), nil}
		} else {
			return nil, ErrMalformedFrontMatter
		}
	}

	var meta any
	if err := yaml.Unmarshal(parts[0], &meta); err != nil {
		return nil, fmt.Errorf("letter: parse frontmatter: %w", err)
	}
	var l Letter
	if err := schema.Decode(schema.Letter(), source, meta, &l); err != nil {
		return nil, err
	}
	if l.Opening == "" {
		l.Opening = DefaultOpening
	}
	if l.Closing == "" {
		l.Closing = DefaultClosing
	}
	return &Document{Letter: l, Body: bytes.TrimLeft(parts[1], "\n")}, nil
}

// Reference returns the value of the location entry named key.
func (l Letter) Reference(key string) (string, bool) {
	for _, loc := range l.Location {
		if loc.Key == key {
			return string(loc.Value), true
		}
	}
	return "", false
}
