package registry

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/felixhoffmnn/latex-templates/internal/model"
	"github.com/felixhoffmnn/latex-templates/internal/schema"
)

const customersCSV = "\ufeffcustomer_id,name,extra,street,zip,city,country,email,phone,website\n" +
	"10001,Acme GmbH,z. Hd. Frau Muster,Hauptstraße 5,01067,Dresden,DE,info@acme.de,,https://acme.de\n" +
	"1,Muster AG,,Ring 2,10115,Berlin,,buchhaltung@muster.de,+49 301 2345678,\n"

func TestReadAddressees(t *testing.T) {
	list, err := ReadAddressees(strings.NewReader(customersCSV))
	require.NoError(t, err)
	require.Len(t, list, 2)

	acme := list[0]
	assert.Equal(t, 10001, acme.CustomerID)
	assert.Equal(t, "Acme GmbH", acme.Name())
	assert.Equal(t, "z. Hd. Frau Muster", acme.Address.Extra)
	assert.Equal(t, model.PostalCode("01067"), acme.Address.Zip)
	assert.Equal(t, "https://acme.de", acme.Website)

	assert.Equal(t, 1, list[1].CustomerID)
	assert.Empty(t, list[1].Address.Country)
}

func TestReadAddressees_InvalidRow(t *testing.T) {
	src := "customer_id,name,city,email\n10001,Acme,Dresden,info@acme.de\n10002,Beta,Berlin,not-an-email\n"
	_, err := ReadAddressees(strings.NewReader(src))
	require.ErrorIs(t, err, schema.ErrValidation)
	assert.Contains(t, err.Error(), "row 3")
}

func TestWriteReadRoundTrip(t *testing.T) {
	list, err := ReadAddressees(strings.NewReader(customersCSV))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteAddressees(&buf, list))

	got, err := ReadAddressees(&buf)
	require.NoError(t, err)
	assert.Equal(t, list, got)
}

func TestReadDocument(t *testing.T) {
	src := `
customers:
  - customer_id: 10001
    name: Acme GmbH
    street: Hauptstraße 5
    zip: 1067
    city: Dresden
    email: info@acme.de
`
	list, err := ReadDocument(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, model.PostalCode("01067"), list[0].Address.Zip)
}

func TestReadWorkbook(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"customer_id", "name", "street", "zip", "city", "email"},
		{"10001", "Acme GmbH", "Hauptstraße 5", "01067", "Dresden", "info@acme.de"},
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	list, err := ReadWorkbook(&buf)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Acme GmbH", list[0].Name())
	assert.Equal(t, 10001, list[0].CustomerID)
}

func TestService_Lookup(t *testing.T) {
	list, err := ReadAddressees(strings.NewReader(customersCSV))
	require.NoError(t, err)
	svc, err := NewService(list)
	require.NoError(t, err)

	a, err := svc.Lookup(1)
	require.NoError(t, err)
	assert.Equal(t, "Muster AG", a.Name())

	_, err = svc.Lookup(424242)
	assert.ErrorIs(t, err, ErrNotFound)

	dup := &Service{addressees: []model.Addressee{{CustomerID: 5}, {CustomerID: 5}}}
	_, err = dup.Lookup(5)
	assert.ErrorIs(t, err, ErrAmbiguousReference)
}

func TestNewService_Duplicate(t *testing.T) {
	_, err := NewService([]model.Addressee{{CustomerID: 7}, {CustomerID: 7}})
	assert.ErrorIs(t, err, ErrDuplicateReference)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "customer.csv")
	require.NoError(t, os.WriteFile(path, []byte(customersCSV), 0o644))

	svc, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, svc.All(), 2)

	out := filepath.Join(dir, "nested", "copy.csv")
	require.NoError(t, svc.Save(out))
	again, err := Load(out)
	require.NoError(t, err)
	assert.Equal(t, svc.All(), again.All())

	_, err = Load(filepath.Join(dir, "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
