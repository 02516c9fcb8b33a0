package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/felixhoffmnn/latex-templates/internal/archive"
	"github.com/felixhoffmnn/latex-templates/internal/assemble"
	"github.com/felixhoffmnn/latex-templates/internal/compile"
	"github.com/felixhoffmnn/latex-templates/internal/config"
	"github.com/felixhoffmnn/latex-templates/internal/confirm"
	"github.com/felixhoffmnn/latex-templates/internal/documents"
	"github.com/felixhoffmnn/latex-templates/internal/history"
	"github.com/felixhoffmnn/latex-templates/internal/launch"
	"github.com/felixhoffmnn/latex-templates/internal/ledger"
	"github.com/felixhoffmnn/latex-templates/internal/logger"
	"github.com/felixhoffmnn/latex-templates/internal/mail"
	"github.com/felixhoffmnn/latex-templates/internal/registry"
	"github.com/felixhoffmnn/latex-templates/internal/render"
	"github.com/felixhoffmnn/latex-templates/internal/workflow"
)

const exampleDir = "example"

type generateFlags struct {
	input     string
	dryRun    bool
	config    string
	customers string
}

func newGenerateCommand(a *app) *cobra.Command {
	var f generateFlags

	cmd := &cobra.Command{
		Use:     "generate-documents",
		Aliases: []string{"invoice"},
		Short:   "Render, compile and archive the invoices of a data file",
		Long: "Render, compile and archive the invoices of a data file.\n\n" +
			"Without --input the bundled example files are used and nothing is archived.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, a, f)
		},
	}

	cmd.Flags().StringVarP(&f.input, "input", "i", "", "invoices file (yaml or toml)")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "render only, without numbering, compiling or archiving")
	cmd.Flags().StringVar(&f.config, "config", "", "config file (default $CONFIG_PATH)")
	cmd.Flags().StringVar(&f.customers, "customers", "", "customer registry (default $INVOICE_DIR/customer.csv)")

	return cmd
}

func runGenerate(cmd *cobra.Command, a *app, f generateFlags) error {
	ctx := cmd.Context()
	s := a.settings
	log := logger.WithComponent("generate")

	example := f.input == ""
	if example {
		log.Info().Msg("no --input given, running with example data")
		f.input = filepath.Join(exampleDir, "invoices.example.yml")
		if f.customers == "" {
			f.customers = filepath.Join(exampleDir, "customer.example.csv")
		}
		if f.config == "" {
			f.config = filepath.Join(exampleDir, "config.example.yml")
		}
	}
	if f.config == "" {
		f.config = s.ConfigPath
	}
	if f.customers == "" {
		f.customers = s.CustomersPath()
	}

	cfg, err := config.Load(f.config)
	if err != nil {
		return err
	}
	reg, err := registry.Load(f.customers)
	if err != nil {
		return err
	}
	batch, err := documents.NewLoader().Load(f.input)
	if err != nil {
		return err
	}
	log.Info().Int("records", len(batch.Entries)).Int("valid", batch.Valid()).Msg("loaded invoices")

	renderer, err := newRenderer(s)
	if err != nil {
		return err
	}

	deps := workflow.Deps{
		Ledger:    ledger.New(s.LedgerPath(), s.StartID),
		History:   history.New(s.HistoryPath()),
		Assembler: assemble.New(cfg, reg),
		Renderer:  renderer,
		Compiler:  newCompiler(s, a.verbose),
		Archiver:  archive.New(s.ArchiveDir()),
		Launcher:  launch.New(logger.WithComponent("launch")),
		Confirmer: confirm.ForTerminal(os.Stdin, cmd.OutOrStdout()),
	}
	opts := workflow.Options{
		DryRun:     f.dryRun,
		Unattended: s.Unattended,
		OutDir:     s.OutDir,
		TmpDir:     s.TmpDir,
	}
	if example {
		opts.ExampleDir = exampleDir
	}

	if !f.dryRun && !example {
		if err := wireDelivery(ctx, &deps, cfg, s); err != nil {
			return err
		}
	}

	report, err := workflow.New(cfg, deps, opts, logger.WithComponent("workflow")).Run(ctx, batch)
	if report != nil {
		printReport(cmd.OutOrStdout(), report)
	}
	return err
}

// wireDelivery adds the optional S3 mirror and SES sender.
func wireDelivery(ctx context.Context, deps *workflow.Deps, cfg *config.Config, s *config.Settings) error {
	if s.Archive.Bucket != "" {
		mirror, err := archive.NewS3Mirror(ctx, s.Archive)
		if err != nil {
			return fmt.Errorf("setting up archive mirror: %w", err)
		}
		deps.Mirror = mirror
	}
	if cfg.Settings.OpenMailClient && cfg.MailProvider() == config.MailSES {
		region := cfg.Mail.Region
		if region == "" {
			region = s.Archive.Region
		}
		sender, err := mail.NewSESSender(ctx, region)
		if err != nil {
			return fmt.Errorf("setting up mail sender: %w", err)
		}
		deps.Sender = sender
	}
	return nil
}

func newRenderer(s *config.Settings) (*render.Engine, error) {
	format := render.Typst
	if compile.Engine(s.Compiler.Engine) == compile.Latexmk {
		format = render.LaTeX
	}
	opts := []render.Option{render.WithFormat(format)}
	if info, err := os.Stat("templates"); err == nil && info.IsDir() {
		opts = append(opts, render.WithBaseDir("templates"))
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("checking template dir: %w", err)
	}
	return render.New(opts...)
}

func newCompiler(s *config.Settings, verbose bool) *compile.Runner {
	return compile.New(compile.Options{
		Engine:           compile.Engine(s.Compiler.Engine),
		ContainerRuntime: s.Compiler.ContainerRuntime,
		Root:             ".",
		Verbose:          verbose,
	})
}
