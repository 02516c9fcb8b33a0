package registry

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/felixhoffmnn/latex-templates/internal/model"
	"github.com/felixhoffmnn/latex-templates/internal/schema"
)

// Columns is the registry header in file order.
var Columns = []string{"customer_id", "name", "extra", "street", "zip", "city", "country", "email", "phone", "website"}

// row is the decoded shape of one registry record.
type row struct {
	CustomerID int              `json:"customer_id"`
	Name       string           `json:"name"`
	Extra      string           `json:"extra"`
	Street     string           `json:"street"`
	Zip        model.PostalCode `json:"zip"`
	City       string           `json:"city"`
	Country    string           `json:"country"`
	Email      string           `json:"email"`
	Phone      string           `json:"phone"`
	Website    string           `json:"website"`
}

func (r row) addressee() model.Addressee {
	return model.Addressee{
		CustomerID: r.CustomerID,
		Address: model.Address{
			Name:    r.Name,
			Extra:   r.Extra,
			Street:  r.Street,
			Zip:     r.Zip,
			City:    r.City,
			Country: r.Country,
		},
		Email:   r.Email,
		Phone:   r.Phone,
		Website: r.Website,
	}
}

// ReadAddressees reads a header-led CSV registry.
func ReadAddressees(r io.Reader) ([]model.Addressee, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading customers CSV: %w", err)
	}
	return fromTable(records)
}

// fromTable converts a header row plus data rows into validated addressees.
// Empty cells are treated as absent.
func fromTable(records [][]string) ([]model.Addressee, error) {
	if len(records) == 0 {
		return nil, nil
	}
	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	docs := make([]map[string]any, 0, len(records)-1)
	for _, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		doc := make(map[string]any, len(header))
		for i, h := range header {
			if i >= len(rec) || h == "" {
				continue
			}
			cell := strings.TrimSpace(rec[i])
			if cell == "" {
				continue
			}
			doc[h] = cell
			if h == "customer_id" {
				if n, err := strconv.Atoi(cell); err == nil {
					doc[h] = n
				}
			}
		}
		docs = append(docs, doc)
	}
	return decodeRows(docs, 2)
}

func decodeRows(docs []map[string]any, firstRow int) ([]model.Addressee, error) {
	var out []model.Addressee
	for i, doc := range docs {
		var r row
		if err := schema.Decode(schema.Customer(), fmt.Sprintf("row %d", i+firstRow), doc, &r); err != nil {
			return nil, err
		}
		out = append(out, r.addressee())
	}
	return out, nil
}

func blank(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// WriteAddressees writes a header-led CSV registry.
func WriteAddressees(w io.Writer, addressees []model.Addressee) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, a := range addressees {
		if err := cw.Write(MarshalAddressee(a)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalAddressee converts an Addressee to a CSV row.
func MarshalAddressee(a model.Addressee) []string {
	return []string{
		strconv.Itoa(a.CustomerID),
		a.Address.Name,
		a.Address.Extra,
		a.Address.Street,
		a.Address.Zip.String(),
		a.Address.City,
		a.Address.Country,
		a.Email,
		a.Phone,
		a.Website,
	}
}
