package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixhoffmnn/latex-templates/internal/assemble"
	"github.com/felixhoffmnn/latex-templates/internal/config"
	"github.com/felixhoffmnn/latex-templates/internal/model"
	"github.com/felixhoffmnn/latex-templates/internal/registry"
)

func assembled(t *testing.T) *assemble.Document {
	t.Helper()
	reg, err := registry.NewService([]model.Addressee{{
		CustomerID: 10001,
		Address:    model.Address{Name: "Müller & Söhne #1", Street: "Hauptstraße 5", Zip: "01067", City: "Dresden"},
		Email:      "info@mueller.de",
	}})
	require.NoError(t, err)

	item, err := model.NewLineItem("Beratung", "Workshop [remote]", 2, model.UnitHour, decimal.NewFromInt(50))
	require.NoError(t, err)

	doc, err := assemble.New(config.Default("Max Mustermann"), reg).Assemble(model.Invoice{
		CustomerID: 10001,
		Date:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Items:      []model.LineItem{item},
	}, 3)
	require.NoError(t, err)
	return doc
}

func TestRender_Invoice(t *testing.T) {
	engine, err := New()
	require.NoError(t, err)

	out, err := engine.Render("invoice", assembled(t).Context)
	require.NoError(t, err)

	assert.Contains(t, out, "Rechnung RE0003")
	assert.Contains(t, out, `Müller & Söhne \#1`)
	assert.Contains(t, out, `Workshop \[remote\]`)
	assert.Contains(t, out, "[2 Stunde]")
	assert.Contains(t, out, "[100,00 €]")
	assert.Contains(t, out, "*119,00 €*")
	assert.Contains(t, out, "15.01.2024")
	assert.Contains(t, out, "Rechnung RE0003 vom 01.01.2024")
	assert.Contains(t, out, "DE89 3704 0044 0532 0130 00")
	assert.NotContains(t, out, "&amp;")
	assert.NotContains(t, out, "{{")
}

func TestRender_UnresolvedField(t *testing.T) {
	engine, err := New()
	require.NoError(t, err)

	ctx := assembled(t).Context
	ctx.Invoice.DueDate = ""
	_, err = engine.Render("invoice", ctx)
	require.ErrorIs(t, err, ErrUnresolvedField)
	assert.Contains(t, err.Error(), "invoice.due_date")
}

func TestRender_BaseDirOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "invoice.typ.tpl"),
		[]byte("custom {{ invoice.number }}"), 0o644))

	engine, err := New(WithBaseDir(dir))
	require.NoError(t, err)
	out, err := engine.Render("invoice", assembled(t).Context)
	require.NoError(t, err)
	assert.Equal(t, "custom RE0003", out)
}

func TestRender_UnknownTemplate(t *testing.T) {
	engine, err := New()
	require.NoError(t, err)
	_, err = engine.Render("receipt", map[string]any{})
	assert.Error(t, err)
}

func TestEscapeMarkup(t *testing.T) {
	assert.Equal(t, `a\#b \$5 \*x\* \_y\_ \@ref`, EscapeMarkup("a#b $5 *x* _y_ @ref"))
	assert.Equal(t, `C:\\temp`, EscapeMarkup(`C:\temp`))
	assert.Equal(t, `say \"hi\"`, EscapeString(`say "hi"`))
}

func TestMarkdownToTypst(t *testing.T) {
	src := strings.Join([]string{
		"# Kündigung",
		"",
		"hiermit kündige ich den Vertrag **fristgerecht** zum *31.12.*",
		"",
		"- erster Punkt",
		"- zweiter Punkt",
		"",
		"1. eins",
		"2. zwei",
		"",
		"Siehe [Webseite](https://example.com).",
	}, "\n")

	out := MarkdownToTypst([]byte(src))
	assert.Contains(t, out, "= Kündigung\n")
	assert.Contains(t, out, "*fristgerecht*")
	assert.Contains(t, out, "_31.12._")
	assert.Contains(t, out, "- erster Punkt\n- zweiter Punkt\n")
	assert.Contains(t, out, "+ eins\n+ zwei\n")
	assert.Contains(t, out, `#link("https://example.com")[Webseite]`)
}

func TestRender_InvoiceLaTeX(t *testing.T) {
	engine, err := New(WithFormat(LaTeX))
	require.NoError(t, err)
	assert.Equal(t, ".tex", engine.Format().Ext())

	out, err := engine.Render("invoice", assembled(t).Context)
	require.NoError(t, err)
	assert.Contains(t, out, `\documentclass`)
	assert.Contains(t, out, `Müller \& Söhne \#1`)
	assert.Contains(t, out, `100,00 \euro`)
	assert.NotContains(t, out, "{{")
}

func TestMarkdownToLaTeX(t *testing.T) {
	out := MarkdownToLaTeX([]byte("Ein **wichtiger** Hinweis zu 100%.\n\n- a\n- b\n"))
	assert.Contains(t, out, `\textbf{wichtiger}`)
	assert.Contains(t, out, `100\%`)
	assert.Contains(t, out, "\\begin{itemize}\n\\item a\n\\item b\n\\end{itemize}")
}
