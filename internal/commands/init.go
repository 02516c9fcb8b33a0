package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/felixhoffmnn/latex-templates/internal/config"
	"github.com/felixhoffmnn/latex-templates/internal/history"
	"github.com/felixhoffmnn/latex-templates/internal/ledger"
	"github.com/felixhoffmnn/latex-templates/internal/registry"
)

func newInitCommand(a *app) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a data directory with ledger, history and a starter config",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := a.settings.DataDir
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			s := *a.settings
			s.DataDir = absDir
			return runInit(cmd, &s, name)
		},
	}

	cmd.Flags().StringVar(&name, "name", "Max Mustermann", "sender name written to the starter config")

	return cmd
}

func runInit(cmd *cobra.Command, s *config.Settings, name string) error {
	if err := os.MkdirAll(s.ArchiveDir(), 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", s.ArchiveDir(), err)
	}

	// Customer registry with header only.
	if _, err := os.Stat(s.CustomersPath()); os.IsNotExist(err) {
		reg, err := registry.NewService(nil)
		if err != nil {
			return err
		}
		if err := reg.Save(s.CustomersPath()); err != nil {
			return fmt.Errorf("writing customer registry: %w", err)
		}
	}

	lg := ledger.New(s.LedgerPath(), s.StartID)
	if err := lg.Init(cmd.Context()); err != nil {
		return fmt.Errorf("initializing ledger: %w", err)
	}
	if err := history.New(s.HistoryPath()).Init(); err != nil {
		return fmt.Errorf("initializing history: %w", err)
	}

	// Starter config next to the data directory, never overwritten.
	cfgPath := filepath.Join(s.DataDir, filepath.Base(s.ConfigPath))
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		if err := config.Save(cfgPath, config.Default(name)); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized data directory at %s\n", s.DataDir)
	fmt.Fprintf(cmd.OutOrStdout(), "Ledger: %s\n", lg.Path())
	return nil
}
