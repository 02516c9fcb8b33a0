package model

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// PostalCode is a zip code. Numeric input is zero-padded to five digits.
type PostalCode string

func (p *PostalCode) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = ""
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*p = PostalCode(fmt.Sprintf("%05d", n))
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("postal code: %w", err)
	}
	*p = PostalCode(s)
	return nil
}

func (p PostalCode) String() string { return string(p) }

// Address is a postal address as printed in a letter window.
type Address struct {
	Name    string     `json:"name" yaml:"name"`
	Extra   string     `json:"extra,omitempty" yaml:"extra,omitempty"`
	Street  string     `json:"street" yaml:"street"`
	Zip     PostalCode `json:"zip" yaml:"zip"`
	City    string     `json:"city" yaml:"city"`
	Country string     `json:"country,omitempty" yaml:"country,omitempty"`
}

// Addressee is a registry entry keyed by CustomerID.
type Addressee struct {
	CustomerID int     `json:"customer_id"`
	Address    Address `json:"address"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone,omitempty"`
	Website    string  `json:"website,omitempty"`
}

// Name is the display name of the addressee.
func (a Addressee) Name() string { return a.Address.Name }

// VATRate is a German VAT percentage.
type VATRate int

const (
	VATZero     VATRate = 0
	VATReduced  VATRate = 7
	VATStandard VATRate = 19
)

// ParseVATRate accepts 0, 7 and 19.
func ParseVATRate(n int) (VATRate, error) {
	switch VATRate(n) {
	case VATZero, VATReduced, VATStandard:
		return VATRate(n), nil
	}
	return 0, fmt.Errorf("unsupported VAT rate %d", n)
}

func (r *VATRate) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("VAT rate: %w", err)
	}
	rate, err := ParseVATRate(n)
	if err != nil {
		return err
	}
	*r = rate
	return nil
}

func (r VATRate) String() string { return strconv.Itoa(int(r)) }
