package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"
)

// dialect describes how markdown constructs are spelled in a target markup.
type dialect struct {
	escape    func(string) string
	emph      [2]string
	strong    [2]string
	strike    [2]string
	quote     [2]string
	heading   func(level int) [2]string
	list      func(ordered bool) [2]string
	item      func(ordered bool, depth int) string
	link      func(dest string) [2]string
	code      func(text string, block bool) string
	hardbreak string
	rule      string
}

var typstDialect = dialect{
	escape: EscapeMarkup,
	emph:   [2]string{"_", "_"},
	strong: [2]string{"*", "*"},
	strike: [2]string{"#strike[", "]"},
	quote:  [2]string{"#quote(block: true)[\n", "]\n\n"},
	heading: func(level int) [2]string {
		return [2]string{strings.Repeat("=", level) + " ", "\n\n"}
	},
	list: func(bool) [2]string { return [2]string{"", ""} },
	item: func(ordered bool, depth int) string {
		marker := "- "
		if ordered {
			marker = "+ "
		}
		return strings.Repeat("  ", depth-1) + marker
	},
	link: func(dest string) [2]string {
		return [2]string{fmt.Sprintf("#link(\"%s\")[", EscapeString(dest)), "]"}
	},
	code: func(text string, block bool) string {
		if block {
			return fmt.Sprintf("#raw(block: true, \"%s\")\n\n", EscapeString(text))
		}
		return fmt.Sprintf("#raw(\"%s\")", EscapeString(text))
	},
	hardbreak: " \\\n",
	rule:      "#line(length: 100%)\n\n",
}

var latexDialect = dialect{
	escape: EscapeLaTeX,
	emph:   [2]string{`\emph{`, "}"},
	strong: [2]string{`\textbf{`, "}"},
	strike: [2]string{`\sout{`, "}"},
	quote:  [2]string{"\\begin{quote}\n", "\\end{quote}\n\n"},
	heading: func(level int) [2]string {
		cmd := []string{"section", "subsection", "subsubsection"}[min(max(level, 1), 3)-1]
		return [2]string{`\` + cmd + "*{", "}\n\n"}
	},
	list: func(ordered bool) [2]string {
		env := "itemize"
		if ordered {
			env = "enumerate"
		}
		return [2]string{`\begin{` + env + "}\n", `\end{` + env + "}\n"}
	},
	item: func(bool, int) string { return `\item ` },
	link: func(dest string) [2]string {
		return [2]string{`\href{` + strings.NewReplacer("%", `\%`, "#", `\#`).Replace(dest) + "}{", "}"}
	},
	code: func(text string, block bool) string {
		if block {
			return "\\begin{verbatim}\n" + text + "\n\\end{verbatim}\n\n"
		}
		return `\texttt{` + EscapeLaTeX(text) + "}"
	},
	hardbreak: "\\\\\n",
	rule:      "\\noindent\\rule{\\linewidth}{0.4pt}\n\n",
}

// MarkdownToTypst converts a markdown body into Typst markup.
func MarkdownToTypst(src []byte) string { return convert(src, typstDialect) }

// MarkdownToLaTeX converts a markdown body into LaTeX.
func MarkdownToLaTeX(src []byte) string { return convert(src, latexDialect) }

func convert(src []byte, d dialect) string {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	doc := markdown.Parse(src, p)
	out := markdown.Render(doc, &markupRenderer{d: d})
	return strings.TrimSpace(string(out)) + "\n"
}

// markupRenderer implements markdown.Renderer for a letter-sized subset of
// markdown: paragraphs, emphasis, headings, lists, links, code and quotes.
type markupRenderer struct {
	d   dialect
	bol bool // last write ended a line
}

func (r *markupRenderer) write(w io.Writer, s string) {
	if s == "" {
		return
	}
	io.WriteString(w, s)
	r.bol = strings.HasSuffix(s, "\n")
}

func (r *markupRenderer) newline(w io.Writer) {
	if !r.bol {
		r.write(w, "\n")
	}
}

func (r *markupRenderer) pair(w io.Writer, p [2]string, entering bool) {
	if entering {
		r.write(w, p[0])
	} else {
		r.write(w, p[1])
	}
}

func (r *markupRenderer) RenderHeader(io.Writer, ast.Node) {}

func (r *markupRenderer) RenderFooter(io.Writer, ast.Node) {}

func (r *markupRenderer) RenderNode(w io.Writer, node ast.Node, entering bool) ast.WalkStatus {
	switch n := node.(type) {
	case *ast.Text:
		r.write(w, r.d.escape(string(n.Literal)))
	case *ast.Softbreak:
		r.write(w, "\n")
	case *ast.Hardbreak:
		r.write(w, r.d.hardbreak)
	case *ast.Emph:
		r.pair(w, r.d.emph, entering)
	case *ast.Strong:
		r.pair(w, r.d.strong, entering)
	case *ast.Del:
		r.pair(w, r.d.strike, entering)
	case *ast.Paragraph:
		if !entering && !inList(n) {
			r.write(w, "\n\n")
		}
	case *ast.Heading:
		r.pair(w, r.d.heading(n.Level), entering)
	case *ast.List:
		r.newline(w)
		r.pair(w, r.d.list(n.ListFlags&ast.ListTypeOrdered != 0), entering)
		if !entering && !inList(n) {
			r.write(w, "\n")
		}
	case *ast.ListItem:
		r.newline(w)
		if entering {
			r.write(w, r.d.item(n.ListFlags&ast.ListTypeOrdered != 0, listDepth(n)))
		}
	case *ast.Link:
		r.pair(w, r.d.link(string(n.Destination)), entering)
	case *ast.Code:
		r.write(w, r.d.code(string(n.Literal), false))
	case *ast.CodeBlock:
		r.write(w, r.d.code(string(bytes.TrimRight(n.Literal, "\n")), true))
	case *ast.BlockQuote:
		r.pair(w, r.d.quote, entering)
	case *ast.HorizontalRule:
		r.write(w, r.d.rule)
	case *ast.HTMLSpan, *ast.HTMLBlock:
		return ast.SkipChildren
	}
	return ast.GoToNext
}

func inList(node ast.Node) bool {
	for p := node.GetParent(); p != nil; p = p.GetParent() {
		if _, ok := p.(*ast.ListItem); ok {
			return true
		}
	}
	return false
}

func listDepth(node ast.Node) int {
	depth := 0
	for p := node.GetParent(); p != nil; p = p.GetParent() {
		if _, ok := p.(*ast.List); ok {
			depth++
		}
	}
	return depth
}
