// Package config reads the engine's coldb.toml configuration: chunk
// capacity, the default storage kind for schema-less CREATE TABLE, and the
// MySQL export connection settings. It follows the same decode-then-validate
// shape as the schema TOML reader this package is grounded on.
package config

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"coldb/internal/catalog"
)

// tomlConfig is the top-level coldb.toml document.
type tomlConfig struct {
	Engine tomlEngine `toml:"engine"`
	MySQL  tomlMySQL  `toml:"mysql_export"`
}

type tomlEngine struct {
	ChunkCapacity  int    `toml:"chunk_capacity"`
	DefaultStorage string `toml:"default_storage"`
}

type tomlMySQL struct {
	DSN      string `toml:"dsn"`
	Database string `toml:"database"`
}

// Config is the validated, defaulted engine configuration.
type Config struct {
	ChunkCapacity  int
	DefaultStorage catalog.StorageKind
	MySQLDSN       string
	MySQLDatabase  string
}

// Defaults returns the configuration used when no coldb.toml is present.
func Defaults() Config {
	return Config{
		ChunkCapacity:  2048,
		DefaultStorage: catalog.Columns,
	}
}

// LoadFile opens the file at path and parses it as a coldb.toml document.
func LoadFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: open file %q: %w", path, err)
	}
	defer f.Close()

	return Load(f)
}

// Load reads a coldb.toml document from r, applying defaults for any field
// left unset and validating the result.
func Load(r io.Reader) (Config, error) {
	var tc tomlConfig
	if _, err := toml.NewDecoder(r).Decode(&tc); err != nil {
		return Config{}, fmt.Errorf("config: decode error: %w", err)
	}
	return newConverter(&tc).convert()
}

type converter struct {
	tc *tomlConfig
}

func newConverter(tc *tomlConfig) *converter {
	return &converter{tc: tc}
}

func (c *converter) convert() (Config, error) {
	cfg := Defaults()

	if c.tc.Engine.ChunkCapacity != 0 {
		if c.tc.Engine.ChunkCapacity < 0 {
			return Config{}, fmt.Errorf("config: chunk_capacity must be positive, got %d", c.tc.Engine.ChunkCapacity)
		}
		cfg.ChunkCapacity = c.tc.Engine.ChunkCapacity
	}

	if c.tc.Engine.DefaultStorage != "" {
		storage, err := validateStorage(c.tc.Engine.DefaultStorage)
		if err != nil {
			return Config{}, err
		}
		cfg.DefaultStorage = storage
	}

	cfg.MySQLDSN = c.tc.MySQL.DSN
	cfg.MySQLDatabase = c.tc.MySQL.Database

	return cfg, nil
}

// validateStorage validates the raw default_storage string against the
// catalog's closed StorageKind set.
func validateStorage(raw string) (catalog.StorageKind, error) {
	switch catalog.StorageKind(raw) {
	case catalog.Documents, catalog.Columns, catalog.DocumentTable:
		return catalog.StorageKind(raw), nil
	default:
		return "", fmt.Errorf("config: unsupported default_storage %q; supported: documents, columns, document_table", raw)
	}
}
