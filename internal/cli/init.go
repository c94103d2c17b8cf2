package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-costdw/internal/config"
	"github.com/pgEdge/pgedge-costdw/internal/db"
	"github.com/pgEdge/pgedge-costdw/internal/logging"
	"github.com/pgEdge/pgedge-costdw/internal/schema"
)

var (
	initGeneration   string
	initDropExisting bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the flat and/or star schema",
	Long: `Create the tables of one or both schema generations. The flat
generation (pais_envejecimiento, pais_poblacion) is created in the
relational store and the star generation (dim_pais, dim_costos,
dim_tiempo, fact_economicos) in the warehouse.

Creating a table that already exists fails; use --drop-existing to drop
the generation's tables first.

Example:
  pgedge-costdw init --generation star --warehouse "postgres://..." --warehouse-driver postgres`,
	RunE: runInit,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the pipeline stages recorded in the relational store and warehouse",
	RunE:  runStatus,
}

func init() {
	initCmd.Flags().StringVar(&initGeneration, "generation", "",
		"schema generation: flat, star or all")
	initCmd.Flags().BoolVar(&initDropExisting, "drop-existing", false,
		"drop existing tables before creating them")
}

func runInit(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if initGeneration != "" {
		cfg.Init.Generation = initGeneration
	}
	if initDropExisting {
		cfg.Init.DropExisting = true
	}

	// Validate configuration
	if err := cfg.ValidateInit(); err != nil {
		return err
	}
	generations, err := schema.ParseGeneration(cfg.Init.Generation)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	for _, g := range generations {
		store := cfg.Relational
		if g == schema.Star {
			store = cfg.Warehouse
		}

		if err := initGenerationIn(ctx, cmd, store, g); err != nil {
			return err
		}
	}

	logging.Info().
		Str("generation", cfg.Init.Generation).
		Msg("Schema initialization complete")
	return nil
}

func initGenerationIn(ctx context.Context, cmd *cobra.Command, store config.StoreConfig, g schema.Generation) error {
	d, err := openStore(ctx, store)
	if err != nil {
		return err
	}
	defer d.Close()

	if cfg.Init.DropExisting {
		logging.Info().Str("generation", string(g)).Msg("Dropping existing schema")
		if err := schema.Drop(ctx, d, g); err != nil {
			return err
		}
	}

	if err := schema.Create(ctx, d, g); err != nil {
		return err
	}

	recordStage(ctx, d, "init."+string(g), map[string]string{
		"drop_existing": strconv.FormatBool(cfg.Init.DropExisting),
	})
	cmd.Printf("Created %s schema: %v\n", g, schema.Tables(g))
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	stores := []struct {
		role  string
		store config.StoreConfig
	}{
		{"relational", cfg.Relational},
		{"warehouse", cfg.Warehouse},
	}

	for _, s := range stores {
		if err := s.store.Validate(s.role); err != nil {
			cmd.Printf("%s: %v\n", s.role, err)
			continue
		}

		d, err := openStore(ctx, s.store)
		if err != nil {
			return err
		}

		cmd.Printf("%s (%s):\n", s.role, s.store.Driver)
		err = printStatus(ctx, cmd, d)
		_ = d.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func printStatus(ctx context.Context, cmd *cobra.Command, d *db.DB) error {
	for _, g := range []schema.Generation{schema.Flat, schema.Star} {
		exists, err := schema.Exists(ctx, d, g)
		if err != nil {
			return fmt.Errorf("failed to check %s schema: %w", g, err)
		}
		cmd.Printf("  %s schema: %v\n", g, exists)
	}

	exists, err := db.MetadataExists(ctx, d)
	if err != nil {
		return fmt.Errorf("failed to check metadata: %w", err)
	}
	if !exists {
		cmd.Println("  no stages recorded")
		return nil
	}

	metadata, err := db.GetAllMetadata(ctx, d)
	if err != nil {
		return fmt.Errorf("failed to read metadata: %w", err)
	}
	for _, key := range db.SortedKeys(metadata) {
		cmd.Printf("  %s: %s\n", key, metadata[key])
	}
	return nil
}
