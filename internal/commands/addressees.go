package commands

import (
	"github.com/spf13/cobra"

	"github.com/felixhoffmnn/latex-templates/internal/registry"
)

func newListAddresseesCommand(a *app) *cobra.Command {
	var customers string

	cmd := &cobra.Command{
		Use:   "list-addressees",
		Short: "List the customer registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if customers == "" {
				customers = a.settings.CustomersPath()
			}
			reg, err := registry.Load(customers)
			if err != nil {
				return err
			}
			printAddressees(cmd.OutOrStdout(), reg.All())
			return nil
		},
	}

	cmd.Flags().StringVar(&customers, "customers", "", "customer registry (default $INVOICE_DIR/customer.csv)")

	return cmd
}
