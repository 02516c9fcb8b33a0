package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixhoffmnn/latex-templates/internal/buildinfo"
	"github.com/felixhoffmnn/latex-templates/internal/config"
	"github.com/felixhoffmnn/latex-templates/internal/logger"
)

// app carries state shared by all subcommands once the root has run.
type app struct {
	verbose  bool
	settings *config.Settings
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:     "latex-templates",
		Short:   "Generate invoices, letters and CVs from structured data",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		newInitCommand(a),
		newGenerateCommand(a),
		newLetterCommand(a),
		newCVCommand(a),
		newListAddresseesCommand(a),
		newListInvoicesCommand(a),
		newExportSchemasCommand(),
	)

	return rootCmd
}

func (a *app) setup() error {
	settings, err := config.LoadSettings()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	a.settings = settings

	logCfg := logger.DefaultConfig()
	logCfg.Level = settings.Log.Level
	logCfg.Format = settings.Log.Format
	if a.verbose {
		logCfg.Level = "debug"
	}
	if err := logger.Setup(logCfg); err != nil {
		return fmt.Errorf("setting up logger: %w", err)
	}
	return nil
}
