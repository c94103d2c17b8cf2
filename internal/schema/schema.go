//-------------------------------------------------------------------------
//
// pgEdge Cost Warehouse
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package schema holds the DDL for the flat and star schema generations.
package schema

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/pgEdge/pgedge-costdw/internal/db"
	"github.com/pgEdge/pgedge-costdw/internal/logging"
)

// Generation selects one of the two schema generations.
type Generation string

const (
	// Flat is the pair of denormalized per-country tables.
	Flat Generation = "flat"

	// Star is the dimension/fact warehouse schema.
	Star Generation = "star"
)

// ParseGeneration converts a config value into the generations it names.
func ParseGeneration(s string) ([]Generation, error) {
	switch s {
	case "flat":
		return []Generation{Flat}, nil
	case "star":
		return []Generation{Star}, nil
	case "all":
		return []Generation{Flat, Star}, nil
	default:
		return nil, fmt.Errorf("unknown schema generation: %s", s)
	}
}

// Tables returns the generation's tables in creation order.
func Tables(g Generation) []string {
	switch g {
	case Flat:
		return slices.Clone(flatTables)
	case Star:
		return slices.Clone(starTables)
	default:
		return nil
	}
}

// Statements returns the CREATE statements for a generation in the given
// dialect, in execution order.
func Statements(d db.Dialect, g Generation) []string {
	switch {
	case g == Flat && d == db.Postgres:
		return []string{createPaisEnvejecimientoPostgres, createPaisPoblacionPostgres}
	case g == Flat:
		return []string{createPaisEnvejecimientoSQLite, createPaisPoblacionSQLite}
	case g == Star && d == db.Postgres:
		return append([]string{
			createDimPaisPostgres,
			createDimCostosPostgres,
			createDimTiempoPostgres,
			createFactEconomicosPostgres,
		}, starIndexes...)
	case g == Star:
		return append([]string{
			createDimPaisSQLite,
			createDimCostosSQLite,
			createDimTiempoSQLite,
			createFactEconomicosSQLite,
		}, starIndexes...)
	default:
		return nil
	}
}

// Create creates every table of a generation in a single transaction.
// It fails if any of the tables already exists.
func Create(ctx context.Context, d *db.DB, g Generation) error {
	stmts := Statements(d.Dialect, g)
	if len(stmts) == 0 {
		return fmt.Errorf("unknown schema generation: %s", g)
	}

	err := d.InTx(ctx, func(tx *sql.Tx) error {
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create %s schema: %w", g, err)
	}

	logging.Info().
		Str("generation", string(g)).
		Strs("tables", Tables(g)).
		Msg("Created schema")
	return nil
}

// Drop drops every table of a generation, fact table first.
func Drop(ctx context.Context, d *db.DB, g Generation) error {
	tables := Tables(g)
	if len(tables) == 0 {
		return fmt.Errorf("unknown schema generation: %s", g)
	}
	slices.Reverse(tables)

	err := d.InTx(ctx, func(tx *sql.Tx) error {
		for _, table := range tables {
			if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to drop %s schema: %w", g, err)
	}

	logging.Info().Str("generation", string(g)).Msg("Dropped schema")
	return nil
}

// Exists reports whether every table of a generation exists.
func Exists(ctx context.Context, d *db.DB, g Generation) (bool, error) {
	tables := Tables(g)
	if len(tables) == 0 {
		return false, fmt.Errorf("unknown schema generation: %s", g)
	}
	for _, table := range tables {
		ok, err := db.TableExists(ctx, d, table)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}
