package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"bookclub/pkg/sheets"
	"bookclub/pkg/xlsx"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

const (
	BackendSheets = "sheets"
	BackendXLSX   = "xlsx"
	BackendMemory = "memory"
)

type StoreConfig struct {
	// One of "sheets", "xlsx" or "memory".
	Backend string
	// Google Sheets backend.
	SpreadsheetID     string
	CredentialsFile   string
	RequestsPerMinute int
	// xlsx backend, and the seed data for the memory backend.
	WorkbookPath string
}

type ServerConfig struct {
	ListenAddress string
	// Front end files served at /. Empty disables static serving.
	StaticDir string
}

type Config struct {
	Server ServerConfig
	Store  StoreConfig
}

type Datastore struct {
	Filename string
	Config   Config
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			ListenAddress: ":3000",
			StaticDir:     "public",
		},
		Store: StoreConfig{
			Backend:           BackendSheets,
			RequestsPerMinute: 60,
			WorkbookPath:      "bookclub.xlsx",
		},
	}
}

// Write the current config out to a toml file.
func (c *Datastore) Save() error {
	b, err := toml.Marshal(c.Config)
	if err != nil {
		return err
	}
	return os.WriteFile(c.Filename, b, 0644)
}

// Load the current config from a toml file.
func (c *Datastore) Load() error {
	b, err := os.ReadFile(c.Filename)
	if err != nil {
		return err
	}
	return toml.Unmarshal(b, &c.Config)
}

// NewDatastore loads filename, writing a default config there if it does
// not exist yet. Variables from envFile (if present) and the process
// environment override the file.
func NewDatastore(filename, envFile string) (*Datastore, error) {
	c := &Datastore{
		Filename: filename,
		Config:   defaults(),
	}
	if err := c.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", filename, err)
		}
		if err := c.Save(); err != nil {
			return nil, err
		}
	}
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}
	if err := c.Config.LoadFromEnv(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadFromEnv applies environment overrides.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("SPREADSHEET_ID"); v != "" {
		c.Store.SpreadsheetID = v
	}
	if v := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); v != "" {
		c.Store.CredentialsFile = v
	}
	if v := os.Getenv("BOOKCLUB_STORE"); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv("BOOKCLUB_XLSX"); v != "" {
		c.Store.WorkbookPath = v
	}
	if v := os.Getenv("BOOKCLUB_REQUESTS_PER_MINUTE"); v != "" {
		rpm, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BOOKCLUB_REQUESTS_PER_MINUTE: %w", err)
		}
		c.Store.RequestsPerMinute = rpm
	}
	if v := os.Getenv("BOOKCLUB_LISTEN"); v != "" {
		c.Server.ListenAddress = v
	}
	if v, ok := os.LookupEnv("BOOKCLUB_STATIC_DIR"); ok {
		c.Server.StaticDir = v
	}
	return nil
}

func (c Config) Validate() error {
	switch c.Store.Backend {
	case BackendSheets:
		if c.Store.SpreadsheetID == "" {
			return errors.New("SpreadsheetID is required for the sheets backend")
		}
		if c.Store.CredentialsFile == "" {
			return errors.New("CredentialsFile is required for the sheets backend")
		}
	case BackendXLSX, BackendMemory:
		if c.Store.WorkbookPath == "" {
			return fmt.Errorf("WorkbookPath is required for the %s backend", c.Store.Backend)
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Store.RequestsPerMinute < 0 {
		return errors.New("RequestsPerMinute must not be negative")
	}
	return nil
}

// OpenStore builds the configured tabular store. The memory backend starts
// from a copy of the workbook's tabs and never writes back to it.
func (c Config) OpenStore(ctx context.Context) (sheets.Store, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	switch c.Store.Backend {
	case BackendXLSX:
		return xlsx.NewFileStore(c.Store.WorkbookPath), nil
	case BackendMemory:
		mem, err := openMemory(ctx, c.Store.WorkbookPath)
		if err != nil {
			return nil, err
		}
		return mem, nil
	default:
		client, err := sheets.NewSheetClient(ctx, c.Store.CredentialsFile, c.Store.SpreadsheetID, c.Store.RequestsPerMinute)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

func openMemory(ctx context.Context, workbook string) (*sheets.MemoryStore, error) {
	tabs, err := xlsx.NewFileStore(workbook).Tabs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to seed memory store: %w", err)
	}
	mem := sheets.NewMemoryStore()
	for name, rows := range tabs {
		mem.SetTab(name, rows)
	}
	return mem, nil
}
