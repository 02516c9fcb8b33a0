package documents

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixhoffmnn/latex-templates/internal/model"
	"github.com/felixhoffmnn/latex-templates/internal/schema"
)

func fixedLoader() *Loader {
	return &Loader{Now: func() time.Time { return time.Date(2024, 3, 15, 17, 30, 0, 0, time.UTC) }}
}

func TestParse(t *testing.T) {
	src := `
invoices:
  - customer_id: 1
    date: 2024-01-01
    items:
      - name: Beratung
        quantity: 2
        unit: Stunde
        price: 50
        total: 1
      - name: Lizenz
        quantity: 1
        unit: Stück
        price: 25
  - customer_id: 2
    status: paid
    items:
      - name: Wartung
        unit: Monat
        price: 80.5
`
	batch, err := fixedLoader().Parse("invoices.yml", []byte(src))
	require.NoError(t, err)
	require.Len(t, batch.Entries, 2)
	assert.Equal(t, 2, batch.Valid())

	first := batch.Entries[0].Invoice
	assert.Equal(t, 1, first.CustomerID)
	assert.Equal(t, model.StatusDraft, first.Status)
	assert.Equal(t, "2024-01-01", first.Date.Format(time.DateOnly))
	assert.Equal(t, "125.00", first.Total.StringFixed(2))
	assert.Equal(t, "100.00", first.Items[0].Total.StringFixed(2), "supplied item total is ignored")
	assert.False(t, first.Numbered())

	second := batch.Entries[1].Invoice
	assert.Equal(t, model.StatusPaid, second.Status)
	assert.Equal(t, "2024-03-15", second.Date.Format(time.DateOnly))
	assert.Equal(t, 1, second.Items[0].Quantity)
}

func TestParse_RecordErrorsAreIsolated(t *testing.T) {
	src := `
invoices:
  - customer_id: 1
    items: [{name: A, price: 10}]
  - customer_id: 2
    items: [{name: B, quantity: 0, price: 10}]
  - customer_id: 3
    date: 2024-02-30
    items: [{name: C, price: 10}]
  - customer_id: 4
    items: [{name: D, price: 10}]
`
	batch, err := fixedLoader().Parse("invoices.yml", []byte(src))
	require.NoError(t, err)
	require.Len(t, batch.Entries, 4)
	assert.Equal(t, 2, batch.Valid())

	assert.NoError(t, batch.Entries[0].Err)
	for i, e := range batch.Entries {
		assert.Equal(t, i+1, e.CustomerID, "record %d keeps its customer reference", i+1)
	}
	var recErr *RecordError
	require.ErrorAs(t, batch.Entries[1].Err, &recErr)
	assert.Equal(t, 1, recErr.Index)
	assert.ErrorIs(t, batch.Entries[1].Err, schema.ErrValidation)
	assert.Error(t, batch.Entries[2].Err)
	assert.NoError(t, batch.Entries[3].Err)
}

func TestParse_DocumentShape(t *testing.T) {
	_, err := fixedLoader().Parse("invoices.yml", []byte("records: []\n"))
	assert.ErrorIs(t, err, schema.ErrValidation)

	_, err = fixedLoader().Parse("invoices.yml", []byte("invoices: nope\n"))
	assert.ErrorIs(t, err, schema.ErrValidation)

	_, err = fixedLoader().Parse("invoices.yml", []byte("invoices: [\n"))
	assert.Error(t, err)
}

func TestParse_PreNumbered(t *testing.T) {
	src := `
invoices:
  - customer_id: 1
    invoice_id: 7
    invoice_number: RE0007
    items: [{name: A, price: 10}]
  - customer_id: 1
    invoice_number: RE0012
    items: [{name: A, price: 10}]
  - customer_id: 1
    invoice_id: 7
    invoice_number: RE0008
    items: [{name: A, price: 10}]
`
	batch, err := fixedLoader().Parse("invoices.yml", []byte(src))
	require.NoError(t, err)

	assert.Equal(t, 7, batch.Entries[0].Invoice.ID)
	assert.Equal(t, "RE0007", batch.Entries[0].Invoice.Number)
	assert.Equal(t, 12, batch.Entries[1].Invoice.ID)
	assert.ErrorIs(t, batch.Entries[2].Err, ErrNumberMismatch)
}

func TestParse_DateRange(t *testing.T) {
	src := `
invoices:
  - customer_id: 1
    start_date: 2024-01-31
    end_date: 2024-01-01
    items: [{name: A, price: 10}]
`
	batch, err := fixedLoader().Parse("invoices.yml", []byte(src))
	require.NoError(t, err)
	assert.Error(t, batch.Entries[0].Err)
}

func TestLoad_TOML(t *testing.T) {
	src := `
[[invoices]]
customer_id = 1
date = "2024-01-01"
due_date = "2024-01-31"

[[invoices.items]]
name = "Beratung"
quantity = 3
unit = "Stunde"
price = 90
`
	path := filepath.Join(t.TempDir(), "invoices.toml")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	batch, err := fixedLoader().Load(path)
	require.NoError(t, err)
	require.Len(t, batch.Entries, 1)
	require.NoError(t, batch.Entries[0].Err)
	inv := batch.Entries[0].Invoice
	require.NotNil(t, inv.DueDate)
	assert.Equal(t, "2024-01-31", inv.DueDate.Format(time.DateOnly))
	assert.Equal(t, "270.00", inv.Total.StringFixed(2))
}

func TestParse_UnquotedDates(t *testing.T) {
	src := `
invoices:
  - customer_id: 1
    date: 2024-01-01
    start_date: 2023-12-01
    end_date: 2023-12-31
    due_date: 2024-01-15
    items: [{name: Beratung, price: 50}]
`
	batch, err := fixedLoader().Parse("invoices.yml", []byte(src))
	require.NoError(t, err)
	require.NoError(t, batch.Entries[0].Err)

	inv := batch.Entries[0].Invoice
	assert.Equal(t, "2024-01-01", inv.Date.Format(time.DateOnly))
	require.NotNil(t, inv.StartDate)
	assert.Equal(t, "2023-12-01", inv.StartDate.Format(time.DateOnly))
	require.NotNil(t, inv.EndDate)
	assert.Equal(t, "2023-12-31", inv.EndDate.Format(time.DateOnly))
	require.NotNil(t, inv.DueDate)
	assert.Equal(t, "2024-01-15", inv.DueDate.Format(time.DateOnly))
}

func TestLoad_Example(t *testing.T) {
	batch, err := fixedLoader().Load("../../example/invoices.example.yml")
	require.NoError(t, err)
	require.Len(t, batch.Entries, 2)
	for _, e := range batch.Entries {
		assert.NoError(t, e.Err)
	}
}
