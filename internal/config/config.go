package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/felixhoffmnn/latex-templates/internal/model"
	"github.com/felixhoffmnn/latex-templates/internal/schema"
)

// Config represents the sender configuration document.
type Config struct {
	Settings LaunchSettings `json:"settings" yaml:"settings"`
	Sender   Sender         `json:"sender" yaml:"sender"`
	Invoice  InvoiceConfig  `json:"invoice" yaml:"invoice"`
	Mail     MailConfig     `json:"mail,omitempty" yaml:"mail,omitempty"`
}

// LaunchSettings controls which external programs open after compilation.
type LaunchSettings struct {
	OpenPDFViewer  bool `json:"open_pdf_viewer" yaml:"open_pdf_viewer"`
	OpenMailClient bool `json:"open_mail_client" yaml:"open_mail_client"`
}

// Sender identifies the issuing business.
type Sender struct {
	Address model.Address `json:"address" yaml:"address"`
	Email   string        `json:"email" yaml:"email"`
	Website string        `json:"website,omitempty" yaml:"website,omitempty"`
	Phone   string        `json:"phone,omitempty" yaml:"phone,omitempty"`
	Tax     Tax           `json:"tax" yaml:"tax"`
	Bank    Bank          `json:"bank" yaml:"bank"`
}

// Tax holds the tax registration printed in the footer.
type Tax struct {
	Number string `json:"number" yaml:"number"`
	Office string `json:"office" yaml:"office"`
}

// Bank holds the payment details. IBAN is stored in blocks of four.
type Bank struct {
	IBAN     string `json:"iban" yaml:"iban"`
	BIC      string `json:"bic" yaml:"bic"`
	BankName string `json:"bank_name" yaml:"bank_name"`
}

// InvoiceConfig holds invoice defaults.
type InvoiceConfig struct {
	VAT     model.VATRate `json:"VAT" yaml:"VAT"`
	DueDays int           `json:"due_days" yaml:"due_days"`
}

// MailConfig selects how a confirmed invoice reaches the customer.
type MailConfig struct {
	Provider string `json:"provider,omitempty" yaml:"provider,omitempty"` // thunderbird, ses, none
	Region   string `json:"region,omitempty" yaml:"region,omitempty"`
	BCC      string `json:"bcc,omitempty" yaml:"bcc,omitempty"`
}

const (
	MailThunderbird = "thunderbird"
	MailSES         = "ses"
	MailNone        = "none"
)

// MailProvider returns the configured provider, defaulting to thunderbird.
func (c *Config) MailProvider() string {
	if c.Mail.Provider == "" {
		return MailThunderbird
	}
	return c.Mail.Provider
}

// Load reads a YAML or TOML config file, validates it and normalizes the IBAN.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(path, data)
}

// Parse decodes config content. The format is chosen by the file extension.
func Parse(path string, data []byte) (*Config, error) {
	var doc any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	var cfg Config
	if err := schema.Decode(schema.Config(), path, doc, &cfg); err != nil {
		return nil, err
	}
	cfg.Sender.Bank.IBAN = NormalizeIBAN(cfg.Sender.Bank.IBAN)
	return &cfg, nil
}

// NormalizeIBAN strips whitespace and regroups the IBAN in blocks of four.
func NormalizeIBAN(iban string) string {
	compact := strings.Join(strings.Fields(iban), "")
	var b strings.Builder
	for i, r := range compact {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config that passes validation, for a new data directory.
func Default(name string) *Config {
	return &Config{
		Settings: LaunchSettings{
			OpenPDFViewer:  true,
			OpenMailClient: true,
		},
		Sender: Sender{
			Address: model.Address{
				Name:    name,
				Street:  "Musterstraße 1",
				Zip:     "10115",
				City:    "Berlin",
				Country: "Deutschland",
			},
			Email: "rechnung@example.com",
			Tax:   Tax{Number: "12/345/67890", Office: "Finanzamt Berlin"},
			Bank: Bank{
				IBAN:     "DE89 3704 0044 0532 0130 00",
				BIC:      "COBADEFFXXX",
				BankName: "Commerzbank",
			},
		},
		Invoice: InvoiceConfig{
			VAT:     model.VATStandard,
			DueDays: 14,
		},
	}
}
