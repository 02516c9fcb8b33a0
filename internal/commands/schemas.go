package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/felixhoffmnn/latex-templates/internal/schema"
)

func newExportSchemasCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:     "export-schemas",
		Aliases: []string{"generate-schemas"},
		Short:   "Write JSON schemas of all input documents",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			old, err := filepath.Glob(filepath.Join(dir, "*.json"))
			if err != nil {
				return err
			}
			for _, path := range old {
				if err := os.Remove(path); err != nil {
					return fmt.Errorf("removing %s: %w", path, err)
				}
			}

			written, err := schema.Export(dir)
			if err != nil {
				return err
			}
			for _, path := range written {
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "schema", "output directory")

	return cmd
}
