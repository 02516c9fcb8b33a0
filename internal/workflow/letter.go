package workflow

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/felixhoffmnn/latex-templates/internal/config"
	"github.com/felixhoffmnn/latex-templates/internal/letter"
)

const letterName = "letter"

// LetterContext is the data handed to the letter template.
type LetterContext struct {
	Config  *config.Config `json:"config"`
	Letter  letter.Letter  `json:"letter"`
	Content string         `json:"content"`
}

// Letter fills defaults that depend on the sender and the current date.
func (o *Orchestrator) Letter(doc *letter.Document) LetterContext {
	l := doc.Letter
	if l.Place == "" {
		l.Place = o.cfg.Sender.Address.City
	}
	if l.Date == "" {
		l.Date = o.now().Format("02.01.2006")
	}
	return LetterContext{
		Config:  o.cfg,
		Letter:  l,
		Content: o.deps.Renderer.Markdown(doc.Body),
	}
}

// RunLetter renders and compiles a letter. Letters are not numbered or
// archived; the outcome ends in RENDERED for dry runs and UNCONFIRMED otherwise.
func (o *Orchestrator) RunLetter(ctx context.Context, doc *letter.Document) (Outcome, error) {
	log := o.log.With().Str("subject", doc.Letter.Subject).Logger()
	return o.runSingle(ctx, log, letterName, o.Letter(doc))
}

// runSingle renders the named template into tmp/<name>/, compiles it into
// out/<name>/ and, in example mode, copies the PDF to <name>.example.pdf.
func (o *Orchestrator) runSingle(ctx context.Context, log zerolog.Logger, name string, data any) (Outcome, error) {
	out := Outcome{State: Pending}

	text, err := o.deps.Renderer.Render(name, data)
	if err != nil {
		return out, err
	}
	source, err := writeSource(filepath.Join(o.opts.TmpDir, name), name+o.deps.Compiler.SourceExt(), text)
	if err != nil {
		return out, err
	}
	out.State, out.Artifact = Rendered, source
	log.Debug().Str("path", source).Msgf("rendered %s", name)
	if o.opts.DryRun {
		return out, nil
	}

	pdf, err := o.deps.Compiler.Compile(ctx, source, filepath.Join(o.opts.OutDir, name))
	if err != nil {
		return out, fmt.Errorf("compile %s: %w", name, err)
	}
	out.State, out.Artifact = Compiled, pdf

	if o.opts.ExampleDir != "" {
		dst := filepath.Join(o.opts.ExampleDir, name+".example.pdf")
		if err := copyFile(pdf, dst); err != nil {
			return out, err
		}
		out.Artifact = dst
	}
	if o.opts.attended() && o.cfg.Settings.OpenPDFViewer {
		if err := o.deps.Launcher.OpenViewer(ctx, out.Artifact); err != nil {
			log.Warn().Err(err).Msg("could not open viewer")
		}
	}
	out.State = Unconfirmed
	log.Info().Str("path", out.Artifact).Msgf("%s compiled", name)
	return out, nil
}
