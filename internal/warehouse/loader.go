//-------------------------------------------------------------------------
//
// pgEdge Cost Warehouse
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package warehouse loads integrated country records into the star schema.
package warehouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pgEdge/pgedge-costdw/internal/datagen"
	"github.com/pgEdge/pgedge-costdw/internal/db"
	"github.com/pgEdge/pgedge-costdw/internal/logging"
	"github.com/pgEdge/pgedge-costdw/internal/models"
)

// DateLayout is the format of dim_tiempo.fecha_carga.
const DateLayout = "2006-01-02"

var (
	costColumns    = []string{"id_costo", "tipo_costo", "descripcion"}
	countryColumns = []string{"id_pais", "pais", "capital", "continente", "region", "poblacion", "tasa_de_envejecimiento"}
	factColumns    = []string{"id_pais", "id_costo", "id_tiempo", "valor"}
)

// LoadResult summarizes one warehouse load.
type LoadResult struct {
	FechaCarga     string `json:"fecha_carga" yaml:"fecha_carga"`
	IDTiempo       int64  `json:"id_tiempo" yaml:"id_tiempo"`
	CostosInserted int64  `json:"dim_costos_inserted" yaml:"dim_costos_inserted"`
	PaisesInserted int64  `json:"dim_pais_inserted" yaml:"dim_pais_inserted"`
	HechosInserted int64  `json:"fact_economicos_inserted" yaml:"fact_economicos_inserted"`
}

// Loader writes dimensions and facts through a Querier, so the same code
// runs inside or outside a transaction.
type Loader struct {
	q       db.Querier
	dialect db.Dialect
	cfg     datagen.BatchInsertConfig
}

// NewLoader creates a loader writing through q.
func NewLoader(q db.Querier, dialect db.Dialect) *Loader {
	return &Loader{
		q:       q,
		dialect: dialect,
		cfg:     datagen.DefaultBatchConfig(),
	}
}

// WithBatchConfig overrides the batch insert configuration.
func (l *Loader) WithBatchConfig(cfg datagen.BatchInsertConfig) *Loader {
	l.cfg = cfg
	return l
}

// LoadCostDimension inserts the fixed dim_costos rows that are not present
// yet and returns how many were inserted.
func (l *Loader) LoadCostDimension(ctx context.Context) (int64, error) {
	rows := make([][]any, 0, len(models.CostTypes))
	for _, c := range models.CostTypes {
		rows = append(rows, []any{c.ID, c.Name, c.Description})
	}

	n, err := db.BatchInsert(ctx, l.q, l.dialect, "dim_costos", costColumns, rows,
		l.cfg.BatchSize, "ON CONFLICT (id_costo) DO NOTHING", nil)
	if err != nil {
		return 0, fmt.Errorf("failed to load dim_costos: %w", err)
	}

	logging.Info().Int64("inserted", n).Msg("Loaded cost dimension")
	return n, nil
}

// LoadTimeDimension returns the dim_tiempo id for date, inserting a row
// when the date has not been loaded before.
func (l *Loader) LoadTimeDimension(ctx context.Context, date time.Time) (int64, error) {
	fecha := date.Format(DateLayout)

	var id int64
	err := l.q.QueryRowContext(ctx, l.dialect.Rebind(
		`SELECT id_tiempo FROM dim_tiempo WHERE fecha_carga = ? ORDER BY id_tiempo LIMIT 1`), fecha).Scan(&id)
	switch {
	case err == nil:
		logging.Info().Str("fecha_carga", fecha).Int64("id_tiempo", id).Msg("Reusing time dimension row")
		return id, nil
	case !errors.Is(err, sql.ErrNoRows):
		return 0, fmt.Errorf("failed to look up dim_tiempo: %w", err)
	}

	if err := l.q.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(id_tiempo), 0) + 1 FROM dim_tiempo`).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to allocate dim_tiempo id: %w", err)
	}

	_, err = l.q.ExecContext(ctx, l.dialect.Rebind(
		`INSERT INTO dim_tiempo (id_tiempo, fecha_carga, anio, mes, dia) VALUES (?, ?, ?, ?, ?)`),
		id, fecha, date.Year(), int(date.Month()), date.Day())
	if err != nil {
		return 0, fmt.Errorf("failed to insert dim_tiempo: %w", err)
	}

	logging.Info().Str("fecha_carga", fecha).Int64("id_tiempo", id).Msg("Loaded time dimension")
	return id, nil
}

// LoadCountries inserts one dim_pais row per record, skipping ids that
// already exist, and returns how many were inserted.
func (l *Loader) LoadCountries(ctx context.Context, records []models.IntegratedRecord) (int64, error) {
	rows := make([][]any, 0, len(records))
	for _, r := range records {
		rows = append(rows, []any{
			r.IDPais, r.Pais, r.Capital, r.Continente, r.Region, r.Poblacion, r.TasaDeEnvejecimiento,
		})
	}

	progress := datagen.NewProgressReporter("dim_pais", int64(len(rows)), l.cfg.ProgressInterval)
	n, err := db.BatchInsert(ctx, l.q, l.dialect, "dim_pais", countryColumns, rows,
		l.cfg.BatchSize, "ON CONFLICT (id_pais) DO NOTHING",
		func(size int) { progress.Update(int64(size)) })
	if err != nil {
		return 0, fmt.Errorf("failed to load dim_pais: %w", err)
	}
	progress.Done()

	if skipped := int64(len(rows)) - n; skipped > 0 {
		logging.Debug().Int64("skipped", skipped).Msg("Countries already present in dim_pais")
	}
	return n, nil
}

// LoadFacts appends one fact_economicos row per present cost value of every
// record and returns how many were inserted. The referenced dimension rows
// must exist.
func (l *Loader) LoadFacts(ctx context.Context, records []models.IntegratedRecord, idTiempo int64) (int64, error) {
	rows := make([][]any, 0, len(records)*len(models.CostTypes))
	for _, r := range records {
		for _, v := range r.CostValues() {
			rows = append(rows, []any{r.IDPais, v.CostID, idTiempo, v.Valor})
		}
	}

	progress := datagen.NewProgressReporter("fact_economicos", int64(len(rows)), l.cfg.ProgressInterval)
	n, err := db.BatchInsert(ctx, l.q, l.dialect, "fact_economicos", factColumns, rows,
		l.cfg.BatchSize, "", func(size int) { progress.Update(int64(size)) })
	if err != nil {
		return 0, fmt.Errorf("failed to load fact_economicos: %w", err)
	}
	progress.Done()

	return n, nil
}

// Load runs a complete warehouse load for date in a single transaction.
// Nothing is written if any step fails.
func Load(ctx context.Context, d *db.DB, records []models.IntegratedRecord, date time.Time) (*LoadResult, error) {
	return LoadWithConfig(ctx, d, records, date, datagen.DefaultBatchConfig())
}

// LoadWithConfig is Load with an explicit batch insert configuration.
func LoadWithConfig(ctx context.Context, d *db.DB, records []models.IntegratedRecord, date time.Time,
	cfg datagen.BatchInsertConfig) (*LoadResult, error) {
	if cfg.BatchSize < 1 {
		return nil, fmt.Errorf("batch size must be at least 1, got %d", cfg.BatchSize)
	}
	result := &LoadResult{FechaCarga: date.Format(DateLayout)}

	err := d.InTx(ctx, func(tx *sql.Tx) error {
		l := NewLoader(tx, d.Dialect).WithBatchConfig(cfg)

		var err error
		if result.CostosInserted, err = l.LoadCostDimension(ctx); err != nil {
			return err
		}
		if result.IDTiempo, err = l.LoadTimeDimension(ctx, date); err != nil {
			return err
		}
		if result.PaisesInserted, err = l.LoadCountries(ctx, records); err != nil {
			return err
		}
		if result.HechosInserted, err = l.LoadFacts(ctx, records, result.IDTiempo); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logging.Info().
		Str("fecha_carga", result.FechaCarga).
		Int64("paises", result.PaisesInserted).
		Int64("hechos", result.HechosInserted).
		Msg("Warehouse load complete")

	return result, nil
}
