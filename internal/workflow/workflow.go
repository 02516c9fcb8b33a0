// Package workflow drives records through numbering, rendering, compilation,
// confirmation and archival.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/felixhoffmnn/latex-templates/internal/assemble"
	"github.com/felixhoffmnn/latex-templates/internal/config"
	"github.com/felixhoffmnn/latex-templates/internal/confirm"
	"github.com/felixhoffmnn/latex-templates/internal/documents"
	"github.com/felixhoffmnn/latex-templates/internal/history"
	"github.com/felixhoffmnn/latex-templates/internal/ledger"
	"github.com/felixhoffmnn/latex-templates/internal/mail"
	"github.com/felixhoffmnn/latex-templates/internal/model"
)

// State is the position of a record in the pipeline.
type State string

const (
	Pending     State = "PENDING"
	Skipped     State = "SKIPPED"
	Numbered    State = "NUMBERED"
	Assembled   State = "ASSEMBLED"
	Rendered    State = "RENDERED"
	Compiled    State = "COMPILED"
	Confirmed   State = "CONFIRMED"
	Archived    State = "ARCHIVED"
	Unconfirmed State = "UNCONFIRMED"
	Failed      State = "FAILED"
)

// Terminal reports whether no further transition follows s.
func (s State) Terminal() bool {
	switch s {
	case Skipped, Archived, Unconfirmed, Failed:
		return true
	}
	return false
}

// Ledger issues and records sequence ids.
type Ledger interface {
	NextIdentifier(ctx context.Context) (int, error)
	Record(ctx context.Context, e ledger.Entry) error
}

// History mirrors confirmed issuances.
type History interface {
	Append(entries ...history.Entry) error
}

// Assembler turns a record into a render context.
type Assembler interface {
	Assemble(inv model.Invoice, seq int) (*assemble.Document, error)
}

// Renderer executes a named template.
type Renderer interface {
	Render(name string, data any) (string, error)
	Markdown(src []byte) string
}

// Compiler turns rendered markup into an artifact.
type Compiler interface {
	SourceExt() string
	Compile(ctx context.Context, source, outDir string) (string, error)
}

// Archiver moves artifacts into year directories.
type Archiver interface {
	Move(src string, year int, replace bool) (string, error)
	Restore(dst, src string) error
}

// Launcher opens external programs for the operator.
type Launcher interface {
	OpenViewer(ctx context.Context, path string) error
	ComposeMail(ctx context.Context, d mail.Draft) error
}

// Mirror copies archived artifacts off-site.
type Mirror interface {
	Upload(ctx context.Context, year int, localPath string) (string, error)
}

// Deps are the collaborators of an Orchestrator. Mirror and Sender are optional.
type Deps struct {
	Ledger    Ledger
	History   History
	Assembler Assembler
	Renderer  Renderer
	Compiler  Compiler
	Archiver  Archiver
	Launcher  Launcher
	Confirmer confirm.Confirmer
	Mirror    Mirror
	Sender    mail.Sender
}

// Options control side effects of a run.
type Options struct {
	DryRun     bool
	Unattended bool
	// ExampleDir enables example mode: the artifact is copied here and
	// nothing is archived.
	ExampleDir string
	OutDir     string
	TmpDir     string
}

func (o Options) attended() bool {
	return !o.DryRun && !o.Unattended && o.ExampleDir == ""
}

// Outcome is the final state of one record.
type Outcome struct {
	Index      int
	CustomerID int
	Number     string
	State      State
	Artifact   string
	Err        error
}

// Report summarizes a run in record order.
type Report struct {
	RunID    string
	Outcomes []Outcome
}

// Count returns the number of outcomes in state s.
func (r *Report) Count(s State) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.State == s {
			n++
		}
	}
	return n
}

// Orchestrator runs batches sequentially.
type Orchestrator struct {
	cfg  *config.Config
	deps Deps
	opts Options
	log  zerolog.Logger
	now  func() time.Time
}

// New returns an Orchestrator.
func New(cfg *config.Config, deps Deps, opts Options, log zerolog.Logger) *Orchestrator {
	if opts.DryRun || opts.Unattended || opts.ExampleDir != "" || deps.Confirmer == nil {
		deps.Confirmer = confirm.Fixed(false)
	}
	return &Orchestrator{cfg: cfg, deps: deps, opts: opts, log: log, now: time.Now}
}

// Run processes the batch in file order. Per-record failures are reported
// in the outcome; a duplicate identifier stops the run with an error.
func (o *Orchestrator) Run(ctx context.Context, batch *documents.Batch) (*Report, error) {
	report := &Report{RunID: uuid.NewString()}
	log := o.log.With().Str("run_id", report.RunID).Str("source", batch.Source).Logger()
	log.Info().Int("records", len(batch.Entries)).Bool("dry_run", o.opts.DryRun).Msg("starting batch")

	for _, entry := range batch.Entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		rlog := log.With().Int("record", entry.Index+1).Int("customer_id", entry.CustomerID).Logger()
		out := o.process(ctx, rlog, entry)
		report.Outcomes = append(report.Outcomes, out)

		ev := rlog.Info()
		if out.State == Failed {
			ev = rlog.Error().Err(out.Err)
		}
		ev.Str("invoice_number", out.Number).Str("state", string(out.State)).Msg("record finished")

		if errors.Is(out.Err, ledger.ErrDuplicateIdentifier) {
			return report, fmt.Errorf("invoice %d: %w", entry.Index+1, out.Err)
		}
	}

	log.Info().
		Int("archived", report.Count(Archived)).
		Int("unconfirmed", report.Count(Unconfirmed)).
		Int("skipped", report.Count(Skipped)).
		Int("failed", report.Count(Failed)).
		Msg("batch finished")
	return report, nil
}

func (o *Orchestrator) process(ctx context.Context, log zerolog.Logger, entry documents.Entry) Outcome {
	inv := entry.Invoice
	out := Outcome{Index: entry.Index, CustomerID: entry.CustomerID, Number: inv.Number, State: Pending}
	fail := func(err error) Outcome {
		out.State, out.Err = Failed, err
		return out
	}

	if entry.Err != nil {
		return fail(entry.Err)
	}
	if inv.Status.Terminal() {
		log.Debug().Str("status", string(inv.Status)).Msg("already issued, skipping")
		out.State = Skipped
		return out
	}

	reissue := inv.Numbered()
	seq := inv.ID
	switch {
	case reissue:
		log.Debug().Int("invoice_id", seq).Msg("record is already numbered")
	case o.opts.DryRun:
		seq = 0
	default:
		next, err := o.deps.Ledger.NextIdentifier(ctx)
		if err != nil {
			return fail(fmt.Errorf("next identifier: %w", err))
		}
		seq = next
		out.State = Numbered
	}

	doc, err := o.deps.Assembler.Assemble(inv, seq)
	if err != nil {
		return fail(err)
	}
	out.Number, out.State = doc.Invoice.Number, Assembled

	text, err := o.deps.Renderer.Render("invoice", doc.Context)
	if err != nil {
		return fail(err)
	}
	source, err := writeSource(o.opts.TmpDir, doc.Filename+o.deps.Compiler.SourceExt(), text)
	if err != nil {
		return fail(err)
	}
	out.State, out.Artifact = Rendered, source
	log.Debug().Str("path", source).Msg("rendered invoice")

	if o.opts.DryRun {
		out.State = Unconfirmed
		return out
	}

	pdf, err := o.deps.Compiler.Compile(ctx, source, o.opts.OutDir)
	if err != nil {
		return fail(err)
	}
	out.State, out.Artifact = Compiled, pdf

	if o.opts.ExampleDir != "" {
		dst := filepath.Join(o.opts.ExampleDir, "invoice.example.pdf")
		if err := copyFile(pdf, dst); err != nil {
			return fail(err)
		}
		out.State, out.Artifact = Unconfirmed, dst
		return out
	}

	if o.opts.attended() && o.cfg.Settings.OpenPDFViewer {
		if err := o.deps.Launcher.OpenViewer(ctx, pdf); err != nil {
			log.Warn().Err(err).Msg("could not open viewer")
		}
	}

	ok, err := o.deps.Confirmer.Confirm(ctx, fmt.Sprintf("Is invoice %s correct?", doc.Invoice.Number))
	if err != nil {
		return fail(fmt.Errorf("confirmation: %w", err))
	}
	if !ok {
		out.State = Unconfirmed
		return out
	}
	out.State = Confirmed

	year := doc.Invoice.Date.Year()
	archived, err := o.deps.Archiver.Move(pdf, year, reissue)
	if err != nil {
		return fail(err)
	}
	out.Artifact = archived

	if !reissue {
		err := o.deps.Ledger.Record(ctx, ledger.Entry{
			SequenceID:       seq,
			SubjectReference: inv.CustomerID,
			IssueDate:        doc.Invoice.Date,
			Status:           model.StatusSent,
		})
		if err != nil {
			if rerr := o.deps.Archiver.Restore(archived, pdf); rerr != nil {
				log.Error().Err(rerr).Str("path", archived).Msg("could not restore artifact")
			}
			out.Artifact = pdf
			return fail(fmt.Errorf("record identifier %d: %w", seq, err))
		}

		if err := o.deps.History.Append(history.Entry{
			InvoiceID:  seq,
			CustomerID: inv.CustomerID,
			Date:       doc.Invoice.Date,
			Total:      doc.Invoice.Total,
			Status:     model.StatusSent,
		}); err != nil {
			log.Warn().Err(err).Msg("could not append history")
		}
	}
	out.State = Archived
	log.Info().Str("path", archived).Msg("archived invoice")

	o.afterArchive(ctx, log, doc, year, archived)
	return out
}

// afterArchive runs the best-effort steps that follow archival.
func (o *Orchestrator) afterArchive(ctx context.Context, log zerolog.Logger, doc *assemble.Document, year int, path string) {
	if o.deps.Mirror != nil {
		key, err := o.deps.Mirror.Upload(ctx, year, path)
		if err != nil {
			log.Warn().Err(err).Msg("could not mirror artifact")
		} else {
			log.Debug().Str("key", key).Msg("mirrored artifact")
		}
	}

	if !o.cfg.Settings.OpenMailClient {
		return
	}
	draft := mail.Compose(o.cfg, doc, path)
	var err error
	switch o.cfg.MailProvider() {
	case config.MailThunderbird:
		err = o.deps.Launcher.ComposeMail(ctx, draft)
	case config.MailSES:
		if o.deps.Sender == nil {
			err = errors.New("ses provider configured without a sender")
			break
		}
		err = o.deps.Sender.Send(ctx, draft)
	}
	if err != nil {
		log.Warn().Err(err).Msg("could not hand over mail")
	}
}

func writeSource(dir, name, text string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(dst), err)
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s: %w", src, err)
	}
	return out.Close()
}
