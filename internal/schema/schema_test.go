package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func decodeYAML(t *testing.T, src string) any {
	t.Helper()
	var doc any
	require.NoError(t, yaml.Unmarshal([]byte(src), &doc))
	out, _, err := Normalize(doc)
	require.NoError(t, err)
	return out
}

func TestInvoice_Valid(t *testing.T) {
	doc := decodeYAML(t, `
customer_id: 1
date: 2024-01-01
items:
  - name: Beratung
    quantity: 2
    unit: Stunde
    price: 50
    total: 999
`)
	assert.Empty(t, Validate(Invoice(), doc))
}

func TestInvoice_Violations(t *testing.T) {
	doc := decodeYAML(t, `
customer_id: 1
date: 01.01.2024
status: void
unexpected: true
items:
  - name: Beratung
    quantity: 0
    unit: Tag
    price: -1
`)
	issues := Validate(Invoice(), doc)
	require.NotEmpty(t, issues)

	paths := make(map[string]bool)
	for _, issue := range issues {
		paths[issue.Path] = true
	}
	assert.True(t, paths["/date"], "date: %v", issues)
	assert.True(t, paths["/status"], "status: %v", issues)
	assert.True(t, paths["/items/0/quantity"], "quantity: %v", issues)
	assert.True(t, paths["/items/0/unit"], "unit: %v", issues)
	assert.True(t, paths["/items/0/price"], "price: %v", issues)
}

func TestConfig_IBANFormats(t *testing.T) {
	base := `
settings: {open_pdf_viewer: false, open_mail_client: false}
sender:
  address: {name: Max, street: Weg 1, zip: 10115, city: Berlin, country: DE}
  email: max@example.com
  tax: {number: "12/345/67890", office: Berlin}
  bank: {iban: "%s", bic: COBADEFFXXX, bank_name: Bank}
invoice: {VAT: 19, due_days: 14}
`
	for _, iban := range []string{"DE89370400440532013000", "DE89 3704 0044 0532 0130 00"} {
		doc := decodeYAML(t, fmt.Sprintf(base, iban))
		assert.Empty(t, Validate(Config(), doc), iban)
	}
	doc := decodeYAML(t, fmt.Sprintf(base, "DE89-3704"))
	assert.NotEmpty(t, Validate(Config(), doc))
}

func TestConfig_RejectsVAT(t *testing.T) {
	doc := decodeYAML(t, `
settings: {open_pdf_viewer: false, open_mail_client: false}
sender:
  address: {name: Max, street: Weg 1, zip: "10115", city: Berlin}
  email: max@example.com
  tax: {number: "12/345/67890", office: Berlin}
  bank: {iban: DE89370400440532013000, bic: COBADEFF, bank_name: Bank}
invoice: {VAT: 16, due_days: 14}
`)
	issues := Validate(Config(), doc)
	require.Len(t, issues, 1)
	assert.Equal(t, "/invoice/VAT", issues[0].Path)
}

func TestConfig_TaxNumber(t *testing.T) {
	tests := []struct {
		number string
		valid  bool
	}{
		{"12/345/67890", true},
		{"201/123/45678", true},
		{"2012345678901", true},
		{"DE123456789", true},
		{"1", false},
		{"12-345-67890", false},
	}
	for _, tt := range tests {
		t.Run(tt.number, func(t *testing.T) {
			doc := decodeYAML(t, fmt.Sprintf(`
settings: {open_pdf_viewer: false, open_mail_client: false}
sender:
  address: {name: Max, street: Weg 1, zip: "10115", city: Berlin}
  email: max@example.com
  tax: {number: %q, office: Berlin}
  bank: {iban: DE89370400440532013000, bic: COBADEFF, bank_name: Bank}
invoice: {VAT: 19, due_days: 14}
`, tt.number))
			issues := Validate(Config(), doc)
			if tt.valid {
				assert.Empty(t, issues)
				return
			}
			require.Len(t, issues, 1)
			assert.Equal(t, "/sender/tax/number", issues[0].Path)
		})
	}
}

func TestDecode(t *testing.T) {
	var out struct {
		CustomerID int    `json:"customer_id"`
		Name       string `json:"name"`
	}
	doc := map[string]any{"customer_id": 10001, "name": "Acme", "city": "Berlin", "email": "a@acme.de"}
	require.NoError(t, Decode(Customer(), "row 2", doc, &out))
	assert.Equal(t, 10001, out.CustomerID)

	err := Decode(Customer(), "row 3", map[string]any{"name": "Acme"}, &out)
	assert.ErrorIs(t, err, ErrValidation)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "row 3", verr.Source)
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	written, err := Export(dir)
	require.NoError(t, err)
	assert.Len(t, written, 5)

	data, err := os.ReadFile(filepath.Join(dir, "invoices.json"))
	require.NoError(t, err)
	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, "Invoices", parsed["title"])
}

func TestNormalize_Timestamps(t *testing.T) {
	doc := map[string]any{
		"date":  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		"items": []any{map[string]any{"at": time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)}},
		"meta":  map[any]any{1: "x"},
	}
	out, data, err := Normalize(doc)
	require.NoError(t, err)

	m := out.(map[string]any)
	assert.Equal(t, "2024-01-01", m["date"])
	assert.Equal(t, "2024-01-01T09:30:00Z", m["items"].([]any)[0].(map[string]any)["at"])
	assert.Equal(t, map[string]any{"1": "x"}, m["meta"])
	assert.Contains(t, string(data), `"date":"2024-01-01"`)
}

func TestInvoice_UnquotedDates(t *testing.T) {
	var doc any
	require.NoError(t, yaml.Unmarshal([]byte(`
customer_id: 1
date: 2024-01-01
start_date: 2023-12-01
end_date: 2023-12-31
due_date: 2024-01-15
items: [{name: Beratung, price: 50}]
`), &doc))
	out, _, err := Normalize(doc)
	require.NoError(t, err)
	assert.Empty(t, Validate(Invoice(), out))
}

func TestCV(t *testing.T) {
	doc := decodeYAML(t, `
person: {title: Softwareentwicklerin}
skills: [Go, Typst]
education:
  - title: B.Sc. Informatik
    start_date: 2016-10-01
    end_date: 2019-09-30
    institution: TU Dresden
    location: Dresden
    description: Schwerpunkt verteilte Systeme
experience:
  - title: Softwareentwicklerin
    start_date: 2019-10-01
    company: Beispiel GmbH
    location: Berlin
    description: Backend-Entwicklung
    tags: [Go, SQL]
`)
	assert.Empty(t, Validate(CV(), doc))

	bad := decodeYAML(t, `
person: {title: Erika}
education: [{title: X, start_date: 2016, institution: Y, location: Z, description: D}]
experience: [{title: X, start_date: 2019-10-01, institution: Y, location: Z, description: D}]
`)
	paths := map[string]bool{}
	for _, issue := range Validate(CV(), bad) {
		paths[issue.Path] = true
	}
	assert.True(t, paths["/education/0/start_date"], paths)
	assert.True(t, paths["/experience/0/company"] || paths["/experience/0"], paths)
}
