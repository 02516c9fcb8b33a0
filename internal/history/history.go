// Package history keeps the human-readable log of archived invoices.
package history

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/felixhoffmnn/latex-templates/internal/model"
)

// Header is the CSV header for invoice.csv.
const Header = "invoice_id,customer_id,date,total,status"

const (
	numFields     = 5
	colInvoiceID  = 0
	colCustomerID = 1
	colDate       = 2
	colTotal      = 3
	colStatus     = 4
)

// Entry is one row in the history log.
type Entry struct {
	InvoiceID  int
	CustomerID int
	Date       time.Time
	Total      decimal.Decimal
	Status     model.Status
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colInvoiceID] = strconv.Itoa(e.InvoiceID)
	row[colCustomerID] = strconv.Itoa(e.CustomerID)
	row[colDate] = e.Date.Format(time.DateOnly)
	row[colTotal] = e.Total.StringFixed(2)
	row[colStatus] = string(e.Status)
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	invoiceID, err := strconv.Atoi(record[colInvoiceID])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing invoice_id %q: %w", record[colInvoiceID], err)
	}
	customerID, err := strconv.Atoi(record[colCustomerID])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing customer_id %q: %w", record[colCustomerID], err)
	}
	date, err := time.Parse(time.DateOnly, record[colDate])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}
	total, err := decimal.NewFromString(record[colTotal])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing total %q: %w", record[colTotal], err)
	}
	status, err := model.ParseStatus(record[colStatus])
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		InvoiceID:  invoiceID,
		CustomerID: customerID,
		Date:       date,
		Total:      total,
		Status:     status,
	}, nil
}

// Log is the history file at a fixed path.
type Log struct {
	path string
}

// New returns a Log writing to path.
func New(path string) *Log {
	return &Log{path: path}
}

// Path returns the file location.
func (l *Log) Path() string { return l.path }

// Init creates the file with its header if it does not exist.
func (l *Log) Init() error {
	return l.Append()
}

// Append writes entries, creating the file and header if needed.
func (l *Log) Append(entries ...Entry) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("creating history dir: %w", err)
	}

	needsHeader := false
	if _, err := os.Stat(l.path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns all entries. A missing file yields no entries.
func (l *Log) Read() ([]Entry, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening history: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading history CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
