//-------------------------------------------------------------------------
//
// pgEdge Cost Warehouse
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for pgedge-costdw.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pgEdge/pgedge-costdw/internal/config"
	"github.com/pgEdge/pgedge-costdw/internal/db"
	"github.com/pgEdge/pgedge-costdw/internal/logging"
	"github.com/pgEdge/pgedge-costdw/pkg/version"
)

var (
	// Global flags
	cfgFile          string
	logLevel         string
	dataDir          string
	relationalDriver string
	relationalConn   string
	warehouseDriver  string
	warehouseConn    string
	mongoURI         string
	mongoDatabase    string
	mysqlDSN         string

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "pgedge-costdw",
		Short: "Country cost-of-living data warehouse",
		Long: `pgedge-costdw builds a small country cost-of-living data warehouse.

It loads per-country demographic and cost figures into flat relational
tables and a MongoDB document store, integrates both into one record per
country, loads the records into a star schema (dim_pais, dim_costos,
dim_tiempo, fact_economicos) and runs analytical reports against it.

Pipeline:
  init        create the flat and/or star schema
  relational  load pais_envejecimiento.csv and pais_poblacion.csv
  documents   load the big-mac and tourist cost JSON files into MongoDB
  integrate   merge both stores into datos_integrados.csv
  warehouse   load datos_integrados.csv into the star schema
  report      run the analytical reports`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./pgedge-costdw.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "",
		"directory holding the CSV and JSON source files")
	rootCmd.PersistentFlags().StringVar(&relationalDriver, "relational-driver", "",
		"relational store driver (postgres, sqlite)")
	rootCmd.PersistentFlags().StringVar(&relationalConn, "relational", "",
		"relational store connection string or SQLite file")
	rootCmd.PersistentFlags().StringVar(&warehouseDriver, "warehouse-driver", "",
		"warehouse driver (postgres, sqlite)")
	rootCmd.PersistentFlags().StringVar(&warehouseConn, "warehouse", "",
		"warehouse connection string or SQLite file")
	rootCmd.PersistentFlags().StringVar(&mongoURI, "mongo-uri", "",
		"MongoDB connection URI")
	rootCmd.PersistentFlags().StringVar(&mongoDatabase, "mongo-database", "",
		"MongoDB database name")
	rootCmd.PersistentFlags().StringVar(&mysqlDSN, "mysql-dsn", "",
		"MySQL data source name for the ddl command")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(relationalCmd)
	rootCmd.AddCommand(documentsCmd)
	rootCmd.AddCommand(integrateCmd)
	rootCmd.AddCommand(warehouseCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(reportsCmd)
	rootCmd.AddCommand(ddlCmd)
	rootCmd.AddCommand(generateCmd)
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if relationalDriver != "" {
		cfg.Relational.Driver = relationalDriver
	}
	if relationalConn != "" {
		cfg.Relational.Connection = relationalConn
	}
	if warehouseDriver != "" {
		cfg.Warehouse.Driver = warehouseDriver
	}
	if warehouseConn != "" {
		cfg.Warehouse.Connection = warehouseConn
	}
	if mongoURI != "" {
		cfg.Documents.URI = mongoURI
	}
	if mongoDatabase != "" {
		cfg.Documents.Database = mongoDatabase
	}
	if mysqlDSN != "" {
		cfg.MySQL.DSN = mysqlDSN
	}

	// Reinitialize logger with config
	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Info())
	},
}

// commandContext returns a context cancelled on SIGINT or SIGTERM.
func commandContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigChan:
			logging.Warn().
				Str("signal", sig.String()).
				Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}

// trackStage logs the start of a pipeline stage; the returned function
// logs its completion and duration.
func trackStage(name string) func() {
	log := logging.Stage(name)
	log.Info().Msg("Stage started")
	start := time.Now()
	return func() {
		log.Info().Dur("elapsed", time.Since(start)).Msg("Stage finished")
	}
}

// openStore connects to a relational store; the SQLite file path is
// resolved against the data directory.
func openStore(ctx context.Context, store config.StoreConfig) (*db.DB, error) {
	if store.Driver == config.DriverSQLite {
		store.Connection = cfg.Path(store.Connection)
	}
	d, err := db.Open(ctx, store)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return d, nil
}

// recordStage stores stage metadata; failures are logged, not returned.
func recordStage(ctx context.Context, d *db.DB, stage string, values map[string]string) {
	if err := db.SaveMetadata(ctx, d, stage, values); err != nil {
		logging.Warn().Err(err).Str("stage", stage).Msg("Failed to save metadata")
	}
}

// printSummary writes a stage summary to w as YAML.
func printSummary(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	return enc.Close()
}
