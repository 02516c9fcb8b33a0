package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/felixhoffmnn/latex-templates/internal/config"
	"github.com/felixhoffmnn/latex-templates/internal/launch"
	"github.com/felixhoffmnn/latex-templates/internal/letter"
	"github.com/felixhoffmnn/latex-templates/internal/logger"
	"github.com/felixhoffmnn/latex-templates/internal/workflow"
)

func newLetterCommand(a *app) *cobra.Command {
	var input, cfgPath string
	var dryRun bool

	cmd := &cobra.Command{
		Use:     "generate-letter",
		Aliases: []string{"letter"},
		Short:   "Render and compile a markdown letter",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.settings
			opts := workflow.Options{
				DryRun:     dryRun,
				Unattended: s.Unattended,
				OutDir:     s.OutDir,
				TmpDir:     s.TmpDir,
			}
			if input == "" {
				log := logger.WithComponent("letter")
				log.Info().Msg("no --input given, running with example data")
				input = filepath.Join(exampleDir, "letter.example.md")
				if cfgPath == "" {
					cfgPath = filepath.Join(exampleDir, "config.example.yml")
				}
				opts.ExampleDir = exampleDir
			}
			if cfgPath == "" {
				cfgPath = s.ConfigPath
			}

			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			doc, err := letter.Load(input)
			if err != nil {
				return err
			}
			renderer, err := newRenderer(s)
			if err != nil {
				return err
			}

			deps := workflow.Deps{
				Renderer: renderer,
				Compiler: newCompiler(s, a.verbose),
				Launcher: launch.New(logger.WithComponent("launch")),
			}
			out, err := workflow.New(cfg, deps, opts, logger.WithComponent("workflow")).RunLetter(cmd.Context(), doc)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", styleForState(out.State).Render(string(out.State)), out.Artifact)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "markdown letter with frontmatter")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "render only, without compiling")
	cmd.Flags().StringVar(&cfgPath, "config", "", "config file (default $CONFIG_PATH)")

	return cmd
}
