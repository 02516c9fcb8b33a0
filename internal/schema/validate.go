package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
)

// ErrValidation is matched by every *ValidationError.
var ErrValidation = errors.New("validation failed")

// Issue is one field-level violation.
type Issue struct {
	Path    string
	Message string
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// ValidationError lists every violation found in one document or record.
type ValidationError struct {
	Source string
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.String()
	}
	return fmt.Sprintf("%s: %s", e.Source, strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Normalize converts a decoded YAML or TOML tree into plain JSON values.
// Timestamps become ISO dates, or RFC 3339 when they carry a time of day.
func Normalize(doc any) (any, []byte, error) {
	data, err := json.Marshal(plain(doc))
	if err != nil {
		return nil, nil, fmt.Errorf("normalizing document: %w", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, nil, fmt.Errorf("normalizing document: %w", err)
	}
	return out, data, nil
}

func plain(v any) any {
	switch v := v.(type) {
	case time.Time:
		if h, m, sec := v.Clock(); h == 0 && m == 0 && sec == 0 && v.Nanosecond() == 0 {
			return v.Format(time.DateOnly)
		}
		return v.Format(time.RFC3339)
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = plain(e)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[fmt.Sprint(k)] = plain(e)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = plain(e)
		}
		return out
	}
	return v
}

// Validate checks doc against s and returns every violation.
func Validate(s *openapi3.Schema, doc any) []Issue {
	err := s.VisitJSON(doc, openapi3.MultiErrors())
	if err == nil {
		return nil
	}
	var issues []Issue
	collect(err, &issues)
	sort.SliceStable(issues, func(i, j int) bool { return issues[i].Path < issues[j].Path })
	return issues
}

func collect(err error, out *[]Issue) {
	switch e := err.(type) {
	case openapi3.MultiError:
		for _, inner := range e {
			collect(inner, out)
		}
	case *openapi3.SchemaError:
		if e.Origin != nil {
			if _, nested := e.Origin.(openapi3.MultiError); nested {
				collect(e.Origin, out)
				return
			}
		}
		path := strings.Join(e.JSONPointer(), "/")
		if path != "" {
			path = "/" + path
		}
		msg := e.Reason
		if msg == "" {
			msg = e.Error()
		}
		*out = append(*out, Issue{Path: path, Message: msg})
	default:
		*out = append(*out, Issue{Message: err.Error()})
	}
}

// Decode validates doc against s and unmarshals it into out.
func Decode(s *openapi3.Schema, source string, doc any, out any) error {
	normalized, data, err := Normalize(doc)
	if err != nil {
		return err
	}
	if issues := Validate(s, normalized); len(issues) > 0 {
		return &ValidationError{Source: source, Issues: issues}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &ValidationError{Source: source, Issues: []Issue{{Message: err.Error()}}}
	}
	return nil
}

// Export writes every document schema as <name>.json into dir.
func Export(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating schema dir: %w", err)
	}
	all := All()
	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)

	var written []string
	for _, name := range names {
		data, err := json.MarshalIndent(all[name], "", "  ")
		if err != nil {
			return written, fmt.Errorf("marshaling %s schema: %w", name, err)
		}
		path := filepath.Join(dir, name+".json")
		if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
			return written, fmt.Errorf("writing %s schema: %w", name, err)
		}
		written = append(written, path)
	}
	return written, nil
}
