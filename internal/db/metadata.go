//-------------------------------------------------------------------------
//
// pgEdge Cost Warehouse
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pgEdge/pgedge-costdw/internal/logging"
	"github.com/pgEdge/pgedge-costdw/pkg/version"
)

const metadataTable = "costdw_metadata"

// createMetadataTableSQL creates the metadata table if it doesn't exist.
const createMetadataTableSQL = `
CREATE TABLE IF NOT EXISTS costdw_metadata (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
)`

const upsertMetadataSQL = `
INSERT INTO costdw_metadata (key, value) VALUES (?, ?)
ON CONFLICT (key) DO UPDATE SET value = excluded.value`

// SaveMetadata records the completion of a pipeline stage. Every key in
// values is stored as "<stage>.<key>", next to the tool version and the
// completion time.
func SaveMetadata(ctx context.Context, d *DB, stage string, values map[string]string) error {
	if _, err := d.ExecContext(ctx, createMetadataTableSQL); err != nil {
		return fmt.Errorf("failed to create metadata table: %w", err)
	}

	metadata := map[string]string{
		stage + ".version":      version.Short(),
		stage + ".completed_at": time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range values {
		metadata[stage+"."+k] = v
	}

	query := d.Dialect.Rebind(upsertMetadataSQL)
	for key, value := range metadata {
		if _, err := d.ExecContext(ctx, query, key, value); err != nil {
			return fmt.Errorf("failed to save metadata %s: %w", key, err)
		}
	}

	logging.Debug().
		Str("stage", stage).
		Int("keys", len(metadata)).
		Msg("Saved metadata")

	return nil
}

// GetMetadataValue retrieves a single metadata value by key.
func GetMetadataValue(ctx context.Context, d *DB, key string) (string, error) {
	var value string
	err := d.QueryRowContext(ctx, d.Dialect.Rebind(`
        SELECT value FROM costdw_metadata WHERE key = ?
    `), key).Scan(&value)
	if err != nil {
		return "", err
	}
	return value, nil
}

// GetAllMetadata retrieves all metadata as a map.
func GetAllMetadata(ctx context.Context, d *DB) (map[string]string, error) {
	rows, err := d.QueryContext(ctx, `SELECT key, value FROM costdw_metadata`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	metadata := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		metadata[key] = value
	}

	return metadata, rows.Err()
}

// SortedKeys returns the metadata keys in lexical order.
func SortedKeys(metadata map[string]string) []string {
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DropMetadata drops the metadata table.
func DropMetadata(ctx context.Context, d *DB) error {
	_, err := d.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", metadataTable))
	return err
}

// MetadataExists checks if the metadata table exists.
func MetadataExists(ctx context.Context, d *DB) (bool, error) {
	return TableExists(ctx, d, metadataTable)
}

// TableExists checks if a table with the given name exists.
func TableExists(ctx context.Context, d *DB, table string) (bool, error) {
	var exists bool
	err := d.QueryRowContext(ctx, d.Dialect.tableExistsSQL(), table).Scan(&exists)
	return exists, err
}
