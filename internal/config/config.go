//-------------------------------------------------------------------------
//
// pgEdge Cost Warehouse
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for pgedge-costdw.
// Configuration is loaded from config files and CLI flags (no environment variables).
// CLI flags take precedence over config file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/viper"
)

// Supported store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all configuration for pgedge-costdw.
type Config struct {
	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// DataDir is the directory holding the CSV and JSON source files.
	DataDir string `mapstructure:"data_dir"`

	// BatchSize is the number of rows per multi-row insert when loading
	// the warehouse.
	BatchSize int `mapstructure:"batch_size"`

	// Relational is the store holding the flat tables.
	Relational StoreConfig `mapstructure:"relational"`

	// Warehouse is the store holding the star schema.
	Warehouse StoreConfig `mapstructure:"warehouse"`

	// Documents configures the document store stage.
	Documents DocumentsConfig `mapstructure:"documents"`

	// MySQL configures the ddl stage.
	MySQL MySQLConfig `mapstructure:"mysql"`

	// Init holds configuration for the init subcommand.
	Init InitConfig `mapstructure:"init"`

	// Report holds configuration for the report subcommand.
	Report ReportConfig `mapstructure:"report"`

	// Generate holds configuration for the generate subcommand.
	Generate GenerateConfig `mapstructure:"generate"`
}

// StoreConfig identifies a relational store.
type StoreConfig struct {
	// Driver is "postgres" or "sqlite".
	Driver string `mapstructure:"driver"`

	// Connection is a PostgreSQL connection string or a SQLite file path.
	Connection string `mapstructure:"connection"`
}

// DocumentsConfig holds the document store settings.
type DocumentsConfig struct {
	// URI is the MongoDB connection URI.
	URI string `mapstructure:"uri"`

	// Database is the MongoDB database name.
	Database string `mapstructure:"database"`

	// Files are the JSON files loaded by the documents stage, relative to DataDir.
	Files []string `mapstructure:"files"`
}

// MySQLConfig holds the ddl stage settings.
type MySQLConfig struct {
	// DSN is the go-sql-driver/mysql data source name.
	DSN string `mapstructure:"dsn"`

	// Table is the destination table name.
	Table string `mapstructure:"table"`

	// Source is the CSV file to load, relative to DataDir.
	Source string `mapstructure:"source"`
}

// InitConfig holds configuration for schema initialization.
type InitConfig struct {
	// Generation selects the schema generation: flat, star or all.
	Generation string `mapstructure:"generation"`

	// DropExisting drops existing tables before creating them.
	DropExisting bool `mapstructure:"drop_existing"`
}

// ReportConfig holds configuration for report rendering.
type ReportConfig struct {
	// Format is text, yaml or json.
	Format string `mapstructure:"format"`

	// Names restricts the reports to run; all reports when empty.
	Names []string `mapstructure:"names"`
}

// GenerateConfig holds configuration for synthetic data generation.
type GenerateConfig struct {
	// Countries is the number of records to generate.
	Countries int `mapstructure:"countries"`

	// Seed makes the output reproducible; 0 picks a random seed.
	Seed uint64 `mapstructure:"seed"`

	// Output is the integrated CSV path, relative to DataDir.
	Output string `mapstructure:"output"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:  "info",
		DataDir:   ".",
		BatchSize: 200,
		Relational: StoreConfig{
			Driver:     DriverSQLite,
			Connection: "datos_paises.db",
		},
		Warehouse: StoreConfig{
			Driver:     DriverSQLite,
			Connection: "data_warehouse.db",
		},
		Documents: DocumentsConfig{
			URI:      "mongodb://localhost:27017",
			Database: "paisesDB",
			Files: []string{
				"paises_mundo_big_mac.json",
				"costos_turisticos_africa.json",
				"costos_turisticos_america.json",
				"costos_turisticos_asia.json",
				"costos_turisticos_europa.json",
			},
		},
		MySQL: MySQLConfig{
			Table:  "paisEnvejecimiento",
			Source: "pais_envejecimiento.csv",
		},
		Init: InitConfig{
			Generation:   "all",
			DropExisting: false,
		},
		Report: ReportConfig{
			Format: "text",
		},
		Generate: GenerateConfig{
			Countries: 60,
			Output:    "datos_integrados.csv",
		},
	}
}

// Load reads configuration from config files.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./pgedge-costdw.yaml
// 3. ~/.config/pgedge-costdw/config.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("pgedge-costdw")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "pgedge-costdw"))
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// Path joins name onto the data directory unless name is absolute.
func (c *Config) Path(name string) string {
	if filepath.IsAbs(name) || c.DataDir == "" {
		return name
	}
	return filepath.Join(c.DataDir, name)
}

// Validate checks that a store is usable.
func (s StoreConfig) Validate(role string) error {
	if s.Driver != DriverPostgres && s.Driver != DriverSQLite {
		return fmt.Errorf("%s driver must be '%s' or '%s'", role, DriverPostgres, DriverSQLite)
	}
	if s.Connection == "" {
		return fmt.Errorf("%s connection is required", role)
	}
	return nil
}

// ValidateInit checks configuration required for init command.
func (c *Config) ValidateInit() error {
	switch c.Init.Generation {
	case "flat":
		return c.Relational.Validate("relational")
	case "star":
		return c.Warehouse.Validate("warehouse")
	case "all":
		if err := c.Relational.Validate("relational"); err != nil {
			return err
		}
		return c.Warehouse.Validate("warehouse")
	default:
		return fmt.Errorf("generation must be 'flat', 'star' or 'all'")
	}
}

// ValidateDocuments checks configuration required for the documents stage.
func (c *Config) ValidateDocuments() error {
	if c.Documents.URI == "" {
		return fmt.Errorf("documents uri is required")
	}
	if c.Documents.Database == "" {
		return fmt.Errorf("documents database is required")
	}
	if len(c.Documents.Files) == 0 {
		return fmt.Errorf("at least one documents file is required")
	}
	return nil
}

// ValidateIntegrate checks configuration required for the integrate stage.
func (c *Config) ValidateIntegrate() error {
	if err := c.Relational.Validate("relational"); err != nil {
		return err
	}
	if c.Documents.URI == "" || c.Documents.Database == "" {
		return fmt.Errorf("documents uri and database are required")
	}
	return nil
}

// ValidateWarehouse checks configuration required for the warehouse stage.
func (c *Config) ValidateWarehouse() error {
	if err := c.Warehouse.Validate("warehouse"); err != nil {
		return err
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("batch size must be at least 1")
	}
	return nil
}

// ValidateMySQL checks configuration required for the ddl stage.
func (c *Config) ValidateMySQL() error {
	if c.MySQL.DSN == "" {
		return fmt.Errorf("mysql dsn is required")
	}
	if c.MySQL.Table == "" {
		return fmt.Errorf("mysql table is required")
	}
	if c.MySQL.Source == "" {
		return fmt.Errorf("mysql source file is required")
	}
	return nil
}

// ValidateReport checks configuration required for the report command.
func (c *Config) ValidateReport() error {
	if err := c.Warehouse.Validate("warehouse"); err != nil {
		return err
	}
	if !slices.Contains([]string{"text", "yaml", "json"}, c.Report.Format) {
		return fmt.Errorf("report format must be 'text', 'yaml' or 'json'")
	}
	return nil
}

// ValidateGenerate checks configuration required for the generate command.
func (c *Config) ValidateGenerate() error {
	if c.Generate.Countries < 1 {
		return fmt.Errorf("countries must be at least 1")
	}
	if c.Generate.Output == "" {
		return fmt.Errorf("generate output is required")
	}
	return nil
}
