package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrUnknownStatus   = errors.New("unknown invoice status")
	ErrUnknownUnit     = errors.New("unknown unit")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrNegativePrice   = errors.New("price must not be negative")
	ErrMissingName     = errors.New("item name is required")
)

// Status is the lifecycle state of an invoice record.
type Status string

const (
	StatusDraft Status = "draft"
	StatusSent  Status = "sent"
	StatusPaid  Status = "paid"
)

// ParseStatus maps a raw value to a Status. The empty string is a draft.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case "", StatusDraft:
		return StatusDraft, nil
	case StatusSent, StatusPaid:
		return Status(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// Terminal reports whether the record was already issued and must be skipped.
func (s Status) Terminal() bool {
	return s == StatusSent || s == StatusPaid
}

// Unit is the billing unit of a line item.
type Unit string

const (
	UnitHour  Unit = "Stunde"
	UnitPiece Unit = "Stück"
	UnitMonth Unit = "Monat"
)

// Units lists every accepted unit in display order.
var Units = []Unit{UnitHour, UnitPiece, UnitMonth}

// ParseUnit maps a raw value to a Unit. The empty string defaults to hours.
func ParseUnit(s string) (Unit, error) {
	if s == "" {
		return UnitHour, nil
	}
	for _, u := range Units {
		if string(u) == s {
			return u, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownUnit, s)
}

// LineItem is one billed position. Total is always UnitPrice times Quantity.
type LineItem struct {
	Name        string
	Description string
	Quantity    int
	Unit        Unit
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
}

// NewLineItem validates the item and derives its total.
func NewLineItem(name, description string, quantity int, unit Unit, price decimal.Decimal) (LineItem, error) {
	if name == "" {
		return LineItem{}, ErrMissingName
	}
	if quantity < 1 {
		return LineItem{}, fmt.Errorf("%w: got %d", ErrInvalidQuantity, quantity)
	}
	if price.IsNegative() {
		return LineItem{}, fmt.Errorf("%w: got %s", ErrNegativePrice, price)
	}
	if _, err := ParseUnit(string(unit)); err != nil {
		return LineItem{}, err
	}
	return LineItem{
		Name:        name,
		Description: description,
		Quantity:    quantity,
		Unit:        unit,
		UnitPrice:   price,
		Total:       price.Mul(decimal.NewFromInt(int64(quantity))),
	}, nil
}

// Invoice is a validated invoice record before numbering and assembly.
// ID is zero until an identifier has been issued.
type Invoice struct {
	CustomerID int
	ID         int
	Number     string
	Date       time.Time
	StartDate  *time.Time
	EndDate    *time.Time
	DueDate    *time.Time
	Status     Status
	Items      []LineItem
	Total      decimal.Decimal
}

// Numbered reports whether the record already carries an identifier.
func (inv Invoice) Numbered() bool {
	return inv.ID > 0
}

// Sum adds up the line totals.
func Sum(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Total)
	}
	return total
}
