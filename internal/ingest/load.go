package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/pgEdge/pgedge-costdw/internal/datagen"
	"github.com/pgEdge/pgedge-costdw/internal/db"
	"github.com/pgEdge/pgedge-costdw/internal/logging"
	"github.com/pgEdge/pgedge-costdw/internal/models"
	"github.com/pgEdge/pgedge-costdw/internal/schema"
)

// sampleSize is the number of rows shown per table after a load.
const sampleSize = 3

// Sample holds the first rows of a table.
type Sample struct {
	Table   string   `json:"table" yaml:"table"`
	Count   int64    `json:"count" yaml:"count"`
	Columns []string `json:"columns" yaml:"columns"`
	Rows    [][]any  `json:"rows" yaml:"rows"`
}

// Result summarizes a relational stage run.
type Result struct {
	Envejecimiento *CleanReport `json:"pais_envejecimiento" yaml:"pais_envejecimiento"`
	Poblacion      *CleanReport `json:"pais_poblacion" yaml:"pais_poblacion"`
	Samples        []Sample     `json:"samples" yaml:"samples"`
}

// Run reads and cleans both flat CSV files, recreates the flat tables,
// loads them in one transaction and reads back counts and samples.
func Run(ctx context.Context, d *db.DB, envejecimientoPath, poblacionPath string) (*Result, error) {
	envTable, err := ReadCSV(envejecimientoPath)
	if err != nil {
		return nil, err
	}
	pobTable, err := ReadCSV(poblacionPath)
	if err != nil {
		return nil, err
	}

	env, missingID, err := DecodeEnvejecimiento(envTable)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", envejecimientoPath, err)
	}
	pob, err := DecodePoblacion(pobTable)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", poblacionPath, err)
	}

	logging.Info().
		Int("pais_envejecimiento", len(env)).
		Int("pais_poblacion", len(pob)).
		Msg("Read CSV sources")

	result := &Result{
		Envejecimiento: CleanEnvejecimiento(env, missingID),
		Poblacion:      CleanPoblacion(pob),
	}
	result.Envejecimiento.Log()
	result.Poblacion.Log()

	if err := schema.Drop(ctx, d, schema.Flat); err != nil {
		return nil, err
	}
	if err := schema.Create(ctx, d, schema.Flat); err != nil {
		return nil, err
	}

	err = d.InTx(ctx, func(tx *sql.Tx) error {
		return LoadFlat(ctx, tx, d.Dialect, env, pob)
	})
	if err != nil {
		return nil, err
	}

	if result.Samples, err = VerifyFlat(ctx, d); err != nil {
		return nil, err
	}
	return result, nil
}

// LoadFlat inserts the cleaned rows into both flat tables.
func LoadFlat(ctx context.Context, q db.Querier, dialect db.Dialect,
	env []models.Envejecimiento, pob []models.Poblacion) error {
	cfg := datagen.DefaultBatchConfig()

	envRows := make([][]any, 0, len(env))
	for _, r := range env {
		envRows = append(envRows, []any{
			r.IDPais, r.NombrePais, r.Capital, r.Continente, r.Region,
			nullable(r.Poblacion), nullable(r.TasaDeEnvejecimiento),
		})
	}
	progress := datagen.NewProgressReporter("pais_envejecimiento", int64(len(envRows)), cfg.ProgressInterval)
	if _, err := db.BatchInsert(ctx, q, dialect, "pais_envejecimiento", EnvejecimientoColumns, envRows,
		cfg.BatchSize, "", func(n int) { progress.Update(int64(n)) }); err != nil {
		return err
	}
	progress.Done()

	pobRows := make([][]any, 0, len(pob))
	for _, r := range pob {
		var poblacion any
		if r.Poblacion.Valid {
			poblacion = int64(math.Round(r.Poblacion.Float64))
		}
		pobRows = append(pobRows, []any{
			r.ID, r.Continente, r.Pais, poblacion,
			nullable(r.CostoBajoHospedaje), nullable(r.CostoPromedioComida),
			nullable(r.CostoBajoTransporte), nullable(r.CostoPromedioEntretenimiento),
		})
	}
	progress = datagen.NewProgressReporter("pais_poblacion", int64(len(pobRows)), cfg.ProgressInterval)
	if _, err := db.BatchInsert(ctx, q, dialect, "pais_poblacion", PoblacionColumns, pobRows,
		cfg.BatchSize, "", func(n int) { progress.Update(int64(n)) }); err != nil {
		return err
	}
	progress.Done()

	return nil
}

// VerifyFlat returns the row count and first rows of each flat table.
func VerifyFlat(ctx context.Context, q db.Querier) ([]Sample, error) {
	var samples []Sample
	for _, table := range schema.Tables(schema.Flat) {
		s := Sample{Table: table}
		if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&s.Count); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}

		rows, err := q.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s ORDER BY 1 LIMIT %d", table, sampleSize))
		if err != nil {
			return nil, fmt.Errorf("failed to sample %s: %w", table, err)
		}
		s.Columns, s.Rows, err = scanAll(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to sample %s: %w", table, err)
		}

		logging.Info().Str("table", table).Int64("rows", s.Count).Msg("Verified flat table")
		samples = append(samples, s)
	}
	return samples, nil
}

func scanAll(rows *sql.Rows) ([]string, [][]any, error) {
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var out [][]any
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		out = append(out, values)
	}
	return cols, out, rows.Err()
}

func nullable(v sql.NullFloat64) any {
	if !v.Valid {
		return nil
	}
	return v.Float64
}
