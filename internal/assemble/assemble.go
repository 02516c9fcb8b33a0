// Package assemble derives every presentation field of an invoice from a
// validated record, the sender config and the registry.
package assemble

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/felixhoffmnn/latex-templates/internal/config"
	"github.com/felixhoffmnn/latex-templates/internal/id"
	"github.com/felixhoffmnn/latex-templates/internal/model"
)

// ErrInvalidTotal is returned for invoices without items or with a zero total.
var ErrInvalidTotal = errors.New("invoice total must be greater than zero")

const displayDate = "02.01.2006"

// Lookup resolves a customer reference.
type Lookup interface {
	Lookup(ref int) (model.Addressee, error)
}

// Document is an invoice ready for rendering.
type Document struct {
	Invoice  model.Invoice
	Customer model.Addressee
	Filename string
	Net      decimal.Decimal
	VAT      decimal.Decimal
	Gross    decimal.Decimal
	Context  Context
}

// Context is the data handed to the invoice template.
type Context struct {
	Config     *config.Config  `json:"config"`
	Customer   model.Addressee `json:"customer"`
	Invoice    InvoiceView     `json:"invoice"`
	Additional Additional      `json:"additional"`
}

// InvoiceView holds pre-formatted invoice fields.
type InvoiceView struct {
	ID        int        `json:"id"`
	Number    string     `json:"number"`
	Date      string     `json:"date"`
	StartDate string     `json:"start_date"`
	EndDate   string     `json:"end_date"`
	DueDate   string     `json:"due_date"`
	Status    string     `json:"status"`
	Items     []ItemView `json:"items"`
	Net       string     `json:"net"`
	VATRate   int        `json:"vat_rate"`
	VAT       string     `json:"vat"`
	Gross     string     `json:"gross"`
}

// ItemView holds pre-formatted line item fields.
type ItemView struct {
	Position    int    `json:"position"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	Unit        string `json:"unit"`
	Price       string `json:"price"`
	Total       string `json:"total"`
}

// Additional holds fields derived for the payment block.
type Additional struct {
	Purpose  string `json:"purpose"`
	Filename string `json:"filename"`
}

// Assembler builds documents.
type Assembler struct {
	cfg        *config.Config
	addressees Lookup
}

// New returns an Assembler.
func New(cfg *config.Config, addressees Lookup) *Assembler {
	return &Assembler{cfg: cfg, addressees: addressees}
}

// Assemble resolves the customer, recomputes totals and derives the number,
// due date, filename and render context. seq is the issued identifier, or
// zero for a placeholder.
func (a *Assembler) Assemble(inv model.Invoice, seq int) (*Document, error) {
	customer, err := a.addressees.Lookup(inv.CustomerID)
	if err != nil {
		return nil, err
	}
	if len(inv.Items) == 0 {
		return nil, fmt.Errorf("%w: no line items", ErrInvalidTotal)
	}

	items := make([]model.LineItem, len(inv.Items))
	for i, item := range inv.Items {
		item.Total = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		items[i] = item
	}
	inv.Items = items
	inv.Total = model.Sum(items)
	if !inv.Total.IsPositive() {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidTotal, inv.Total.StringFixed(2))
	}

	inv.ID = seq
	inv.Number = id.FormatNumber(seq)
	if inv.DueDate == nil {
		due := inv.Date.AddDate(0, 0, a.cfg.Invoice.DueDays)
		inv.DueDate = &due
	}

	rate := decimal.NewFromInt(int64(a.cfg.Invoice.VAT))
	net := inv.Total
	vat := net.Mul(rate).Div(decimal.NewFromInt(100)).Round(2)
	gross := net.Add(vat)
	filename := id.Filename(inv.Number, inv.Date, customer.CustomerID)

	doc := &Document{
		Invoice:  inv,
		Customer: customer,
		Filename: filename,
		Net:      net,
		VAT:      vat,
		Gross:    gross,
	}
	doc.Context = Context{
		Config:   a.cfg,
		Customer: customer,
		Invoice: InvoiceView{
			ID:        inv.ID,
			Number:    inv.Number,
			Date:      inv.Date.Format(displayDate),
			StartDate: formatOptional(inv.StartDate),
			EndDate:   formatOptional(inv.EndDate),
			DueDate:   inv.DueDate.Format(displayDate),
			Status:    string(inv.Status),
			Items:     itemViews(items),
			Net:       Money(net),
			VATRate:   int(a.cfg.Invoice.VAT),
			VAT:       Money(vat),
			Gross:     Money(gross),
		},
		Additional: Additional{
			Purpose:  Purpose(inv.Number, inv.Date),
			Filename: filename,
		},
	}
	return doc, nil
}

// Purpose is the payment reference printed on the invoice.
func Purpose(number string, date time.Time) string {
	return fmt.Sprintf("Rechnung %s vom %s", number, date.Format(displayDate))
}

// Money formats an amount the German way, e.g. 1.234,50.
func Money(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + "," + frac
}

func itemViews(items []model.LineItem) []ItemView {
	views := make([]ItemView, len(items))
	for i, item := range items {
		views[i] = ItemView{
			Position:    i + 1,
			Name:        item.Name,
			Description: item.Description,
			Quantity:    item.Quantity,
			Unit:        string(item.Unit),
			Price:       Money(item.UnitPrice),
			Total:       Money(item.Total),
		}
	}
	return views
}

func formatOptional(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(displayDate)
}
