package commands

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/felixhoffmnn/latex-templates/internal/history"
	"github.com/felixhoffmnn/latex-templates/internal/ledger"
	"github.com/felixhoffmnn/latex-templates/internal/model"
)

func TestPrintInvoices(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := []ledger.Entry{
		{SequenceID: 1, SubjectReference: 1, IssueDate: day, Status: model.StatusSent},
		{SequenceID: 2, SubjectReference: 2, IssueDate: day, Status: model.StatusSent},
	}
	hist := []history.Entry{
		{InvoiceID: 1, CustomerID: 1, Date: day, Total: decimal.RequireFromString("595"), Status: model.StatusSent},
	}

	var buf bytes.Buffer
	printInvoices(&buf, entries, hist)
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if assert.Len(t, lines, 3) {
		assert.Contains(t, string(lines[0]), "2 invoices")
		assert.Contains(t, string(lines[1]), "RE0001")
		assert.Contains(t, string(lines[1]), "01.01.2024")
		assert.Contains(t, string(lines[1]), "595.00 €")
		assert.Contains(t, string(lines[2]), "RE0002")
		assert.Contains(t, string(lines[2]), "customer 2")
		assert.NotContains(t, string(lines[2]), "€")
	}
}
