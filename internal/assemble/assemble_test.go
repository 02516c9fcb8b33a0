package assemble

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixhoffmnn/latex-templates/internal/config"
	"github.com/felixhoffmnn/latex-templates/internal/model"
	"github.com/felixhoffmnn/latex-templates/internal/registry"
)

func date(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func item(t *testing.T, name string, qty int, unit model.Unit, price string) model.LineItem {
	t.Helper()
	li, err := model.NewLineItem(name, "", qty, unit, decimal.RequireFromString(price))
	require.NoError(t, err)
	return li
}

func newAssembler(t *testing.T) *Assembler {
	t.Helper()
	reg, err := registry.NewService([]model.Addressee{{
		CustomerID: 1,
		Address:    model.Address{Name: "Acme GmbH", Street: "Hauptstraße 5", Zip: "01067", City: "Dresden"},
		Email:      "info@acme.de",
	}})
	require.NoError(t, err)
	return New(config.Default("Max Mustermann"), reg)
}

func TestAssemble(t *testing.T) {
	inv := model.Invoice{
		CustomerID: 1,
		Date:       date("2024-01-01"),
		Status:     model.StatusDraft,
		Items: []model.LineItem{
			item(t, "Beratung", 2, model.UnitHour, "50"),
			item(t, "Lizenz", 1, model.UnitPiece, "25"),
		},
	}

	doc, err := newAssembler(t).Assemble(inv, 12)
	require.NoError(t, err)

	assert.Equal(t, "RE0012", doc.Invoice.Number)
	assert.Equal(t, "125.00", doc.Net.StringFixed(2))
	assert.Equal(t, "23.75", doc.VAT.StringFixed(2))
	assert.Equal(t, "148.75", doc.Gross.StringFixed(2))
	assert.Equal(t, "2024-01-15", doc.Invoice.DueDate.Format(time.DateOnly))
	assert.Equal(t, "RE0012_20240101_1", doc.Filename)

	want := InvoiceView{
		ID:      12,
		Number:  "RE0012",
		Date:    "01.01.2024",
		DueDate: "15.01.2024",
		Status:  "draft",
		Items: []ItemView{
			{Position: 1, Name: "Beratung", Quantity: 2, Unit: "Stunde", Price: "50,00", Total: "100,00"},
			{Position: 2, Name: "Lizenz", Quantity: 1, Unit: "Stück", Price: "25,00", Total: "25,00"},
		},
		Net:     "125,00",
		VATRate: 19,
		VAT:     "23,75",
		Gross:   "148,75",
	}
	if diff := cmp.Diff(want, doc.Context.Invoice); diff != "" {
		t.Errorf("invoice view mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Rechnung RE0012 vom 01.01.2024", doc.Context.Additional.Purpose)
	assert.Equal(t, "Acme GmbH", doc.Context.Customer.Name())
}

func TestAssemble_KeepsDueDate(t *testing.T) {
	due := date("2024-03-01")
	inv := model.Invoice{
		CustomerID: 1,
		Date:       date("2024-01-01"),
		DueDate:    &due,
		Items:      []model.LineItem{item(t, "A", 1, model.UnitHour, "10")},
	}
	doc, err := newAssembler(t).Assemble(inv, 1)
	require.NoError(t, err)
	assert.Equal(t, "01.03.2024", doc.Context.Invoice.DueDate)
}

func TestAssemble_Placeholder(t *testing.T) {
	inv := model.Invoice{CustomerID: 1, Date: date("2024-01-01"), Items: []model.LineItem{item(t, "A", 1, model.UnitHour, "10")}}
	doc, err := newAssembler(t).Assemble(inv, 0)
	require.NoError(t, err)
	assert.Equal(t, "RE0000", doc.Invoice.Number)
}

func TestAssemble_InvalidTotal(t *testing.T) {
	a := newAssembler(t)

	_, err := a.Assemble(model.Invoice{CustomerID: 1, Date: date("2024-01-01")}, 1)
	assert.ErrorIs(t, err, ErrInvalidTotal)

	zero := model.Invoice{CustomerID: 1, Date: date("2024-01-01"), Items: []model.LineItem{item(t, "Gratis", 3, model.UnitHour, "0")}}
	_, err = a.Assemble(zero, 1)
	assert.ErrorIs(t, err, ErrInvalidTotal)
}

func TestAssemble_UnknownCustomer(t *testing.T) {
	inv := model.Invoice{CustomerID: 99, Date: date("2024-01-01"), Items: []model.LineItem{item(t, "A", 1, model.UnitHour, "10")}}
	_, err := newAssembler(t).Assemble(inv, 1)
	assert.ErrorIs(t, err, registry.ErrNotFound)
}

func TestMoney(t *testing.T) {
	tests := []struct{ in, want string }{
		{"0", "0,00"},
		{"5.5", "5,50"},
		{"999.99", "999,99"},
		{"1234.5", "1.234,50"},
		{"1234567.891", "1.234.567,89"},
		{"-1500", "-1.500,00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Money(decimal.RequireFromString(tt.in)), tt.in)
	}
}
