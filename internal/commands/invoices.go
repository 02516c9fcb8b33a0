package commands

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/felixhoffmnn/latex-templates/internal/history"
	"github.com/felixhoffmnn/latex-templates/internal/id"
	"github.com/felixhoffmnn/latex-templates/internal/ledger"
)

func newListInvoicesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list-invoices",
		Short: "List issued invoice numbers with their recorded totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.settings
			lg := ledger.New(s.LedgerPath(), s.StartID)
			if !lg.Exists() {
				return fmt.Errorf("no ledger at %s, run init first", lg.Path())
			}
			entries, err := lg.Entries(cmd.Context())
			if err != nil {
				return err
			}
			hist, err := history.New(s.HistoryPath()).Read()
			if err != nil {
				return err
			}
			printInvoices(cmd.OutOrStdout(), entries, hist)
			return nil
		},
	}
}

// printInvoices writes one line per ledger entry, joined with the history
// total of the same invoice id where one was logged.
func printInvoices(w io.Writer, entries []ledger.Entry, hist []history.Entry) {
	totals := make(map[int]decimal.Decimal, len(hist))
	for _, h := range hist {
		totals[h.InvoiceID] = h.Total
	}
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%d invoices", len(entries))))
	for _, e := range entries {
		total := "-"
		if t, ok := totals[e.SequenceID]; ok {
			total = t.StringFixed(2) + " €"
		}
		fmt.Fprintf(w, "%-8s  %s  customer %-4d  %12s  %s\n",
			id.FormatNumber(e.SequenceID), e.IssueDate.Format("02.01.2006"), e.SubjectReference, total,
			refStyle.Render(string(e.Status)))
	}
}
