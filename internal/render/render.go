// Package render turns document contexts into Typst or LaTeX markup using
// pongo2 templates. The built-in templates are embedded; a directory on disk can
// override them by name.
package render

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
)

//go:embed templates/*.tpl
var builtin embed.FS

// ErrUnresolvedField is returned when a template needs a field the context lacks.
var ErrUnresolvedField = errors.New("unresolved template field")

// Format selects the markup a template set produces.
type Format string

const (
	Typst Format = "typ"
	LaTeX Format = "tex"
)

// Ext is the source file extension of the format.
func (f Format) Ext() string { return "." + string(f) }

// Required lists the dotted context paths each built-in template needs.
var Required = map[string][]string{
	"invoice": {
		"config.sender.address.name",
		"config.sender.address.street",
		"config.sender.address.city",
		"config.sender.bank.iban",
		"config.sender.bank.bic",
		"config.sender.tax.number",
		"customer.address.name",
		"customer.address.city",
		"invoice.number",
		"invoice.date",
		"invoice.due_date",
		"invoice.items",
		"invoice.gross",
		"additional.purpose",
	},
	"letter": {
		"config.sender.address.name",
		"config.sender.address.city",
		"letter.recipient.name",
		"letter.subject",
		"letter.opening",
		"letter.closing",
	},
	"cv": {
		"config.sender.address.name",
		"cv.person.title",
	},
}

// Option configures an Engine.
type Option func(*options)

type options struct {
	baseDir  string
	format   Format
	required map[string][]string
}

// WithBaseDir loads templates from dir before falling back to the built-ins.
func WithBaseDir(dir string) Option {
	return func(o *options) { o.baseDir = strings.TrimSpace(dir) }
}

// WithFormat selects Typst or LaTeX templates.
func WithFormat(f Format) Option {
	return func(o *options) { o.format = f }
}

// Engine renders named templates.
type Engine struct {
	mu        sync.RWMutex
	set       *pongo2.TemplateSet
	templates map[string]*pongo2.Template
	format    Format
	required  map[string][]string
}

var registerOnce sync.Once

// New constructs an Engine.
func New(opts ...Option) (*Engine, error) {
	o := &options{format: Typst, required: make(map[string][]string, len(Required))}
	for name, fields := range Required {
		o.required[name] = fields
	}
	for _, opt := range opts {
		opt(o)
	}

	var loaders []pongo2.TemplateLoader
	if o.baseDir != "" {
		loader, err := pongo2.NewLocalFileSystemLoader(o.baseDir)
		if err != nil {
			return nil, fmt.Errorf("render: create local loader: %w", err)
		}
		loaders = append(loaders, loader)
	}
	sub, err := fs.Sub(builtin, "templates")
	if err != nil {
		return nil, fmt.Errorf("render: open built-in templates: %w", err)
	}
	loaders = append(loaders, pongo2.NewFSLoader(sub))

	registerOnce.Do(registerFilters)

	return &Engine{
		set:       pongo2.NewSet(string(o.format), loaders...),
		templates: make(map[string]*pongo2.Template),
		format:    o.format,
		required:  o.required,
	}, nil
}

// Render executes the named template against data.
func (e *Engine) Render(name string, data any) (string, error) {
	ctx, err := convertToContext(data)
	if err != nil {
		return "", fmt.Errorf("render: convert data: %w", err)
	}
	for _, path := range e.required[name] {
		if !resolved(ctx, path) {
			return "", fmt.Errorf("%w: %s in template %q", ErrUnresolvedField, path, name)
		}
	}

	tmpl, err := e.template(name + e.format.Ext() + ".tpl")
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(ctx, &buf); err != nil {
		return "", fmt.Errorf("render: execute template %q: %w", name, err)
	}
	return buf.String(), nil
}

// Format returns the markup the engine produces.
func (e *Engine) Format() Format { return e.format }

// Markdown converts a markdown body into the engine's markup.
func (e *Engine) Markdown(src []byte) string {
	if e.format == LaTeX {
		return MarkdownToLaTeX(src)
	}
	return MarkdownToTypst(src)
}

func (e *Engine) template(path string) (*pongo2.Template, error) {
	e.mu.RLock()
	if tmpl, ok := e.templates[path]; ok {
		e.mu.RUnlock()
		return tmpl, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.templates[path]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("render: load template %q: %w", path, err)
	}
	e.templates[path] = tmpl
	return tmpl, nil
}

func convertToContext(data any) (pongo2.Context, error) {
	switch v := data.(type) {
	case nil:
		return pongo2.Context{}, nil
	case pongo2.Context:
		return v, nil
	case map[string]any:
		return pongo2.Context(v), nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	// Numbers stay json.Number so pongo2 prints integers without a fraction.
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	return pongo2.Context(m), nil
}

// resolved reports whether a dotted path leads to a non-empty value.
func resolved(ctx map[string]any, path string) bool {
	var cur any = ctx
	for _, key := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			if c, isCtx := cur.(pongo2.Context); isCtx {
				m = c
			} else {
				return false
			}
		}
		cur, ok = m[key]
		if !ok || cur == nil {
			return false
		}
	}
	switch v := cur.(type) {
	case string:
		return v != ""
	case []any:
		return len(v) > 0
	}
	return true
}
