// Package documents loads invoice batches and turns each record into a
// validated model.Invoice, keeping per-record failures alongside the batch.
package documents

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/felixhoffmnn/latex-templates/internal/id"
	"github.com/felixhoffmnn/latex-templates/internal/model"
	"github.com/felixhoffmnn/latex-templates/internal/schema"
)

// ErrNumberMismatch is returned when invoice_id and invoice_number disagree.
var ErrNumberMismatch = errors.New("invoice_number does not match invoice_id")

// RecordError is a failure confined to one record of a batch.
type RecordError struct {
	Index int
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("invoice %d: %v", e.Index+1, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// Entry is one record of a batch. Err is set when the record is invalid;
// CustomerID is then taken from the raw record where possible.
type Entry struct {
	Index      int
	CustomerID int
	Invoice    model.Invoice
	Err        error
}

// Batch is an invoices document in file order.
type Batch struct {
	Source  string
	Entries []Entry
}

// Valid returns the number of records without errors.
func (b *Batch) Valid() int {
	n := 0
	for _, e := range b.Entries {
		if e.Err == nil {
			n++
		}
	}
	return n
}

type rawItem struct {
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Quantity    *int            `json:"quantity"`
	Unit        *string         `json:"unit"`
	Price       decimal.Decimal `json:"price"`
}

type rawInvoice struct {
	CustomerID    int       `json:"customer_id"`
	InvoiceID     *int      `json:"invoice_id"`
	InvoiceNumber *string   `json:"invoice_number"`
	Date          *string   `json:"date"`
	StartDate     *string   `json:"start_date"`
	EndDate       *string   `json:"end_date"`
	DueDate       *string   `json:"due_date"`
	Status        *string   `json:"status"`
	Items         []rawItem `json:"items"`
}

// Loader reads invoice documents. Now supplies the default invoice date.
type Loader struct {
	Now func() time.Time
}

// NewLoader returns a Loader using the wall clock.
func NewLoader() *Loader {
	return &Loader{Now: time.Now}
}

// Load reads a YAML, JSON or TOML invoices document.
func (l *Loader) Load(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading invoices: %w", err)
	}
	return l.Parse(path, data)
}

// Parse decodes an invoices document. Shape errors of the document itself
// are returned as an error; errors in a single record are kept on its Entry.
func (l *Loader) Parse(path string, data []byte) (*Batch, error) {
	var doc any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing invoices: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing invoices: %w", err)
		}
	}

	normalized, _, err := schema.Normalize(doc)
	if err != nil {
		return nil, err
	}
	if issues := schema.Validate(schema.Envelope(), normalized); len(issues) > 0 {
		return nil, &schema.ValidationError{Source: path, Issues: issues}
	}

	records := normalized.(map[string]any)["invoices"].([]any)
	batch := &Batch{Source: path, Entries: make([]Entry, len(records))}
	for i, rec := range records {
		inv, err := l.decode(rec)
		customerID := inv.CustomerID
		if err != nil {
			err = &RecordError{Index: i, Err: err}
			customerID = rawCustomerID(rec)
		}
		batch.Entries[i] = Entry{Index: i, CustomerID: customerID, Invoice: inv, Err: err}
	}
	return batch, nil
}

func rawCustomerID(rec any) int {
	m, ok := rec.(map[string]any)
	if !ok {
		return 0
	}
	if n, ok := m["customer_id"].(float64); ok {
		return int(n)
	}
	return 0
}

func (l *Loader) decode(rec any) (model.Invoice, error) {
	var raw rawInvoice
	if err := schema.Decode(schema.Invoice(), "record", rec, &raw); err != nil {
		return model.Invoice{}, err
	}
	return l.build(raw)
}

func (l *Loader) build(raw rawInvoice) (model.Invoice, error) {
	inv := model.Invoice{CustomerID: raw.CustomerID}

	var err error
	if inv.Status, err = model.ParseStatus(deref(raw.Status)); err != nil {
		return model.Invoice{}, err
	}

	if raw.Date != nil {
		if inv.Date, err = parseDate("date", *raw.Date); err != nil {
			return model.Invoice{}, err
		}
	} else {
		y, m, d := l.Now().Date()
		inv.Date = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	for _, opt := range []struct {
		field string
		raw   *string
		dst   **time.Time
	}{
		{"start_date", raw.StartDate, &inv.StartDate},
		{"end_date", raw.EndDate, &inv.EndDate},
		{"due_date", raw.DueDate, &inv.DueDate},
	} {
		if opt.raw == nil {
			continue
		}
		d, err := parseDate(opt.field, *opt.raw)
		if err != nil {
			return model.Invoice{}, err
		}
		*opt.dst = &d
	}
	if inv.StartDate != nil && inv.EndDate != nil && inv.EndDate.Before(*inv.StartDate) {
		return model.Invoice{}, fmt.Errorf("end_date %s is before start_date %s",
			inv.EndDate.Format(time.DateOnly), inv.StartDate.Format(time.DateOnly))
	}

	if err := assignNumber(&inv, raw.InvoiceID, raw.InvoiceNumber); err != nil {
		return model.Invoice{}, err
	}

	for i, ri := range raw.Items {
		unit, err := model.ParseUnit(deref(ri.Unit))
		if err != nil {
			return model.Invoice{}, fmt.Errorf("item %d: %w", i+1, err)
		}
		quantity := 1
		if ri.Quantity != nil {
			quantity = *ri.Quantity
		}
		item, err := model.NewLineItem(ri.Name, deref(ri.Description), quantity, unit, ri.Price)
		if err != nil {
			return model.Invoice{}, fmt.Errorf("item %d: %w", i+1, err)
		}
		inv.Items = append(inv.Items, item)
	}
	inv.Total = model.Sum(inv.Items)
	return inv, nil
}

// assignNumber fills ID and Number for pre-numbered records.
func assignNumber(inv *model.Invoice, invoiceID *int, number *string) error {
	switch {
	case invoiceID != nil && number != nil:
		if id.FormatNumber(*invoiceID) != *number {
			return fmt.Errorf("%w: %d vs %s", ErrNumberMismatch, *invoiceID, *number)
		}
		inv.ID = *invoiceID
	case invoiceID != nil:
		inv.ID = *invoiceID
	case number != nil:
		seq, err := id.ParseNumber(*number)
		if err != nil {
			return err
		}
		if seq < 1 {
			return fmt.Errorf("invoice_number %s has no valid sequence", *number)
		}
		inv.ID = seq
	default:
		return nil
	}
	inv.Number = id.FormatNumber(inv.ID)
	return nil
}

func parseDate(field, s string) (time.Time, error) {
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: invalid date %q", field, s)
	}
	return d, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
