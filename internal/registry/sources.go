package registry

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/felixhoffmnn/latex-templates/internal/model"
)

// ReadWorkbook reads the first sheet of an XLSX registry. The first row is the header.
func ReadWorkbook(r io.Reader) ([]model.Addressee, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening customers workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("customers workbook has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	return fromTable(rows)
}

// ReadDocument reads a YAML registry of the form {customers: [...]}.
func ReadDocument(r io.Reader) ([]model.Addressee, error) {
	var doc struct {
		Customers []map[string]any `yaml:"customers"`
	}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parsing customers document: %w", err)
	}
	return decodeRows(doc.Customers, 1)
}
