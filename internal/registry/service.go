package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/felixhoffmnn/latex-templates/internal/model"
)

var (
	ErrNotFound           = errors.New("addressee not found")
	ErrAmbiguousReference = errors.New("addressee reference is ambiguous")
	ErrDuplicateReference = errors.New("duplicate addressee reference")
)

// Service provides in-memory lookup over the customer registry.
type Service struct {
	addressees []model.Addressee
}

// NewService creates a Service, rejecting duplicate customer ids.
func NewService(addressees []model.Addressee) (*Service, error) {
	seen := make(map[int]bool, len(addressees))
	for _, a := range addressees {
		if seen[a.CustomerID] {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateReference, a.CustomerID)
		}
		seen[a.CustomerID] = true
	}
	return &Service{addressees: addressees}, nil
}

// Load reads a registry file. The format is chosen by extension:
// .csv, .xlsx, or .yml/.yaml.
func Load(path string) (*Service, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening customers: %w", err)
	}
	defer f.Close()

	var list []model.Addressee
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		list, err = ReadWorkbook(f)
	case ".yml", ".yaml":
		list, err = ReadDocument(f)
	default:
		list, err = ReadAddressees(f)
	}
	if err != nil {
		return nil, fmt.Errorf("reading customers %s: %w", path, err)
	}
	return NewService(list)
}

// All returns all addressees in file order.
func (s *Service) All() []model.Addressee {
	return s.addressees
}

// Lookup returns the single addressee with the given reference.
func (s *Service) Lookup(ref int) (model.Addressee, error) {
	var found []model.Addressee
	for _, a := range s.addressees {
		if a.CustomerID == ref {
			found = append(found, a)
		}
	}
	switch len(found) {
	case 0:
		return model.Addressee{}, fmt.Errorf("%w: %d", ErrNotFound, ref)
	case 1:
		return found[0], nil
	}
	return model.Addressee{}, fmt.Errorf("%w: %d matches %d entries", ErrAmbiguousReference, ref, len(found))
}

// Save writes the registry as CSV, creating parent directories.
func (s *Service) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating customers dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating customers file: %w", err)
	}
	defer f.Close()

	if err := WriteAddressees(f, s.addressees); err != nil {
		return fmt.Errorf("writing customers: %w", err)
	}
	return nil
}
