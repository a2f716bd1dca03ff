// Package config loads the TOML service configuration and selects the
// storage backend.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Backend kinds accepted in [store].
const (
	BackendFile     = "file"
	BackendGitHub   = "github"
	BackendSheets   = "sheets"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config is the full service configuration.
type Config struct {
	Server   Server   `toml:"server"`
	Store    Store    `toml:"store"`
	File     File     `toml:"file"`
	GitHub   GitHub   `toml:"github"`
	Sheets   Sheets   `toml:"sheets"`
	Postgres Postgres `toml:"postgres"`
}

type Server struct {
	Addr string `toml:"addr"`
}

type Store struct {
	Backend      string `toml:"backend"`
	CoercePolicy string `toml:"coerce_policy"` // zero | drop | strict
}

type File struct {
	Path string `toml:"path"`
}

type GitHub struct {
	Token    string `toml:"token"`
	Repo     string `toml:"repo"` // "owner/name"
	FilePath string `toml:"file_path"`
	Branch   string `toml:"branch"`
}

type Sheets struct {
	CredentialsFile string `toml:"credentials_file"`
	SpreadsheetID   string `toml:"spreadsheet_id"`
	SheetName       string `toml:"sheet_name"`
}

type Postgres struct {
	URL string `toml:"url"`
}

// Load reads and validates the configuration file.
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Store.Backend == "" {
		c.Store.Backend = BackendFile
	}
	if c.File.Path == "" {
		c.File.Path = "data.csv"
	}
	if c.GitHub.FilePath == "" {
		c.GitHub.FilePath = "data.csv"
	}
	if c.Sheets.SheetName == "" {
		c.Sheets.SheetName = "Sheet1"
	}
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case BackendFile, BackendMemory:
	case BackendGitHub:
		if c.GitHub.Token == "" || c.GitHub.Repo == "" {
			return fmt.Errorf("github backend requires token and repo")
		}
	case BackendSheets:
		if c.Sheets.CredentialsFile == "" || c.Sheets.SpreadsheetID == "" {
			return fmt.Errorf("sheets backend requires credentials_file and spreadsheet_id")
		}
	case BackendPostgres:
		if c.Postgres.URL == "" {
			return fmt.Errorf("postgres backend requires url")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	return nil
}
