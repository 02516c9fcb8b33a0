package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
)

// Settings are the runtime settings read from the environment.
type Settings struct {
	DataDir    string
	ConfigPath string
	OutDir     string
	TmpDir     string
	StartID    int
	Unattended bool
	Compiler   CompilerSettings
	Log        LogSettings
	Archive    ArchiveSettings
}

// CompilerSettings select the document toolchain.
type CompilerSettings struct {
	Engine           string // typst or latexmk
	ContainerRuntime string
}

// LogSettings configure the logger.
type LogSettings struct {
	Level  string
	Format string
}

// ArchiveSettings configure the optional S3 mirror of archived artifacts.
type ArchiveSettings struct {
	Bucket    string
	Prefix    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// LoadSettings reads the runtime settings from the environment.
func LoadSettings() (*Settings, error) {
	v := viper.New()

	v.SetDefault("data.dir", "data")
	v.SetDefault("data.last_invoice", 1)
	v.SetDefault("config.path", "config.yml")
	v.SetDefault("out.dir", "out")
	v.SetDefault("tmp.dir", "tmp")
	v.SetDefault("compiler.engine", "typst")
	v.SetDefault("compiler.container_runtime", "podman")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("archive.s3_prefix", "invoices")
	v.SetDefault("archive.s3_region", "eu-central-1")

	envBindings := map[string]string{
		"data.dir":                   "INVOICE_DIR",
		"data.last_invoice":          "LAST_INVOICE",
		"config.path":                "CONFIG_PATH",
		"out.dir":                    "OUT_DIR",
		"tmp.dir":                    "TMP_DIR",
		"compiler.engine":            "DOC_COMPILER",
		"compiler.container_runtime": "CONTAINER_RUNTIME",
		"log.level":                  "LOG_LEVEL",
		"log.format":                 "LOG_FORMAT",
		"ci":                         "CI",
		"github_actions":             "GITHUB_ACTIONS",
		"archive.s3_bucket":          "ARCHIVE_S3_BUCKET",
		"archive.s3_prefix":          "ARCHIVE_S3_PREFIX",
		"archive.s3_region":          "ARCHIVE_S3_REGION",
		"archive.s3_endpoint":        "ARCHIVE_S3_ENDPOINT",
		"archive.s3_access_key":      "ARCHIVE_S3_ACCESS_KEY",
		"archive.s3_secret_key":      "ARCHIVE_S3_SECRET_KEY",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	s := &Settings{
		DataDir:    v.GetString("data.dir"),
		ConfigPath: v.GetString("config.path"),
		OutDir:     v.GetString("out.dir"),
		TmpDir:     v.GetString("tmp.dir"),
		StartID:    v.GetInt("data.last_invoice"),
		Unattended: v.GetBool("ci") || v.GetBool("github_actions"),
		Compiler: CompilerSettings{
			Engine:           v.GetString("compiler.engine"),
			ContainerRuntime: v.GetString("compiler.container_runtime"),
		},
		Log: LogSettings{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Archive: ArchiveSettings{
			Bucket:    v.GetString("archive.s3_bucket"),
			Prefix:    v.GetString("archive.s3_prefix"),
			Region:    v.GetString("archive.s3_region"),
			Endpoint:  v.GetString("archive.s3_endpoint"),
			AccessKey: v.GetString("archive.s3_access_key"),
			SecretKey: v.GetString("archive.s3_secret_key"),
		},
	}

	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) validate() error {
	if s.StartID < 1 {
		return fmt.Errorf("LAST_INVOICE must be at least 1, got %d", s.StartID)
	}
	switch s.Compiler.Engine {
	case "typst", "latexmk":
	default:
		return fmt.Errorf("DOC_COMPILER must be typst or latexmk, got %q", s.Compiler.Engine)
	}
	return nil
}

// LedgerPath is the identifier ledger inside the data directory.
func (s *Settings) LedgerPath() string { return filepath.Join(s.DataDir, "ledger.db") }

// HistoryPath is the invoice history log inside the data directory.
func (s *Settings) HistoryPath() string { return filepath.Join(s.DataDir, "invoice.csv") }

// CustomersPath is the default customer registry.
func (s *Settings) CustomersPath() string { return filepath.Join(s.DataDir, "customer.csv") }

// ArchiveDir is the root of the per-year archive.
func (s *Settings) ArchiveDir() string { return filepath.Join(s.DataDir, "archive") }
