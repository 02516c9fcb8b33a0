package render

import (
	"strings"

	"github.com/flosch/pongo2/v6"
)

var markupEscaper = strings.NewReplacer(
	`\`, `\\`,
	`#`, `\#`,
	`$`, `\$`,
	`*`, `\*`,
	`_`, `\_`,
	"`", "\\`",
	`<`, `\<`,
	`>`, `\>`,
	`@`, `\@`,
	`[`, `\[`,
	`]`, `\]`,
	`~`, `\~`,
	`=`, `\=`,
	`/`, `\/`,
)

var latexEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`&`, `\&`,
	`%`, `\%`,
	`$`, `\$`,
	`#`, `\#`,
	`_`, `\_`,
	`{`, `\{`,
	`}`, `\}`,
	`~`, `\textasciitilde{}`,
	`^`, `\textasciicircum{}`,
)

var stringEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

// EscapeMarkup makes s safe to place in Typst markup.
func EscapeMarkup(s string) string { return markupEscaper.Replace(s) }

// EscapeLaTeX makes s safe to place in LaTeX text.
func EscapeLaTeX(s string) string { return latexEscaper.Replace(s) }

// EscapeString makes s safe to place inside a Typst string literal.
func EscapeString(s string) string { return stringEscaper.Replace(s) }

func registerFilters() {
	filters := map[string]func(string) string{
		"typst":        EscapeMarkup,
		"typst_string": EscapeString,
		"latex":        EscapeLaTeX,
	}
	for name, fn := range filters {
		if pongo2.FilterExists(name) {
			continue
		}
		fn := fn
		_ = pongo2.RegisterFilter(name, func(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
			return pongo2.AsSafeValue(fn(in.String())), nil
		})
	}
}
