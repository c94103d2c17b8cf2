//-------------------------------------------------------------------------
//
// pgEdge Cost Warehouse
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package ddlgen derives a MySQL table definition from a CSV file and loads
// the file into it.
package ddlgen

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pgEdge/pgedge-costdw/internal/datagen"
	"github.com/pgEdge/pgedge-costdw/internal/db"
	"github.com/pgEdge/pgedge-costdw/internal/ingest"
	"github.com/pgEdge/pgedge-costdw/internal/logging"
)

// Result summarizes a ddl stage run.
type Result struct {
	Table    string   `json:"table" yaml:"table"`
	Columns  []Column `json:"columns" yaml:"columns"`
	DDL      string   `json:"ddl" yaml:"ddl"`
	Inserted int64    `json:"inserted" yaml:"inserted"`
}

// QuoteIdent back-quotes a MySQL identifier.
func QuoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// CreateTableSQL renders a CREATE TABLE IF NOT EXISTS statement.
func CreateTableSQL(table string, cols []Column) string {
	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = QuoteIdent(c.Name) + " " + string(c.Type)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n)", QuoteIdent(table), strings.Join(defs, ",\n  "))
}

// Generate reads csvPath and returns the inferred columns and DDL without
// touching a database.
func Generate(table, csvPath string) (*ingest.Table, *Result, error) {
	t, err := ingest.ReadCSV(csvPath)
	if err != nil {
		return nil, nil, err
	}
	if len(t.Header) == 0 {
		return nil, nil, fmt.Errorf("%s has no columns", csvPath)
	}

	cols := InferColumns(t)
	return t, &Result{Table: table, Columns: cols, DDL: CreateTableSQL(table, cols)}, nil
}

// Run creates table from the header and values of csvPath and appends
// every row in one transaction.
func Run(ctx context.Context, d *db.DB, table, csvPath string) (*Result, error) {
	t, result, err := Generate(table, csvPath)
	if err != nil {
		return nil, err
	}
	logging.Info().Str("table", table).Msg("Generated DDL")
	logging.Debug().Msg(result.DDL)

	if _, err := d.ExecContext(ctx, result.DDL); err != nil {
		return nil, fmt.Errorf("failed to create table %s: %w", table, err)
	}

	names := make([]string, len(result.Columns))
	for i, c := range result.Columns {
		names[i] = QuoteIdent(c.Name)
	}
	rows := make([][]any, len(t.Rows))
	for i := range t.Rows {
		row := make([]any, len(result.Columns))
		for j, c := range result.Columns {
			row[j] = Convert(c.Type, t.Get(i, c.Name))
		}
		rows[i] = row
	}

	cfg := datagen.DefaultBatchConfig()
	progress := datagen.NewProgressReporter(table, int64(len(rows)), cfg.ProgressInterval)
	err = d.InTx(ctx, func(tx *sql.Tx) error {
		n, err := db.BatchInsert(ctx, tx, d.Dialect, QuoteIdent(table), names, rows, cfg.BatchSize, "",
			func(n int) { progress.Update(int64(n)) })
		result.Inserted = n
		return err
	})
	if err != nil {
		return nil, err
	}
	progress.Done()

	logging.Info().Str("table", table).Int64("rows", result.Inserted).Msg("Loaded CSV into mysql")
	return result, nil
}
