//-------------------------------------------------------------------------
//
// pgEdge Cost Warehouse
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package datagen

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/pgEdge/pgedge-costdw/internal/logging"
	"github.com/pgEdge/pgedge-costdw/internal/models"
)

// BatchInsertConfig configures batch insert behavior.
type BatchInsertConfig struct {
	// BatchSize is the number of rows per batch insert.
	BatchSize int

	// ProgressInterval is how often to log progress (in rows).
	ProgressInterval int64
}

// DefaultBatchConfig returns default batch insert configuration.
func DefaultBatchConfig() BatchInsertConfig {
	return BatchInsertConfig{
		BatchSize:        200,
		ProgressInterval: 1000,
	}
}

// ProgressReporter tracks and reports load progress for a table.
type ProgressReporter struct {
	tableName        string
	totalRows        int64
	currentRow       int64
	progressInterval int64
}

// NewProgressReporter creates a new progress reporter.
func NewProgressReporter(tableName string, totalRows int64, interval int64) *ProgressReporter {
	if interval < 1 {
		interval = 1
	}
	return &ProgressReporter{
		tableName:        tableName,
		totalRows:        totalRows,
		progressInterval: interval,
	}
}

// Update updates the progress and logs if necessary.
func (p *ProgressReporter) Update(rowsInserted int64) {
	oldRow := p.currentRow
	p.currentRow += rowsInserted

	// Check if we crossed a progress interval
	if p.currentRow/p.progressInterval > oldRow/p.progressInterval {
		pct := 100.0
		if p.totalRows > 0 {
			pct = float64(p.currentRow) / float64(p.totalRows) * 100
		}
		logging.Info().
			Str("table", p.tableName).
			Int64("rows", p.currentRow).
			Int64("total", p.totalRows).
			Float64("percent", pct).
			Msg("Loading rows")
	}
}

// Rows returns the number of rows reported so far.
func (p *ProgressReporter) Rows() int64 {
	return p.currentRow
}

// Done logs completion.
func (p *ProgressReporter) Done() {
	logging.Info().
		Str("table", p.tableName).
		Int64("rows", p.currentRow).
		Msg("Table complete")
}

// Continents are the continent labels used by the source data.
var Continents = []string{"América", "Europa", "Asia", "África", "Oceanía"}

var continentWeights = []int{25, 30, 25, 15, 5}

var regions = map[string][]string{
	"América": {"América del Norte", "América Central", "América del Sur", "Caribe"},
	"Europa":  {"Europa Occidental", "Europa Oriental", "Europa del Norte", "Europa del Sur"},
	"Asia":    {"Asia Oriental", "Sudeste Asiático", "Asia Meridional", "Oriente Medio"},
	"África":  {"África del Norte", "África Occidental", "África Oriental", "África Austral"},
	"Oceanía": {"Australasia", "Melanesia", "Polinesia"},
}

// RecordOptions controls synthetic record generation.
type RecordOptions struct {
	// Countries is the number of records to produce.
	Countries int

	// MissingPriceRate is the probability that a record has no big-mac price.
	MissingPriceRate float64

	// MissingCostRate is the probability that any single tourist cost is
	// missing.
	MissingCostRate float64
}

// DefaultRecordOptions returns options resembling the source data, where
// about a third of the countries have no big-mac price.
func DefaultRecordOptions(countries int) RecordOptions {
	return RecordOptions{
		Countries:        countries,
		MissingPriceRate: 0.3,
		MissingCostRate:  0.05,
	}
}

// RecordGenerator produces synthetic integrated records.
type RecordGenerator struct {
	faker *Faker
	opts  RecordOptions
}

// NewRecordGenerator creates a generator; seed 0 picks a random seed.
func NewRecordGenerator(seed uint64, opts RecordOptions) *RecordGenerator {
	f := NewFaker()
	if seed != 0 {
		f = NewFakerWithSeed(seed)
	}
	return &RecordGenerator{faker: f, opts: opts}
}

// Generate returns opts.Countries records with unique country names and
// ids 1..n.
func (g *RecordGenerator) Generate(ctx context.Context) ([]models.IntegratedRecord, error) {
	if g.opts.Countries < 1 {
		return nil, fmt.Errorf("countries must be at least 1")
	}

	records := make([]models.IntegratedRecord, 0, g.opts.Countries)
	seen := make(map[string]int, g.opts.Countries)
	progress := NewProgressReporter("datos_integrados", int64(g.opts.Countries), DefaultBatchConfig().ProgressInterval)

	for i := 0; i < g.opts.Countries; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records = append(records, g.record(int64(i+1), g.uniqueCountry(seen)))
		progress.Update(1)
	}

	logging.Info().
		Int64("countries", progress.Rows()).
		Msg("Generated integrated records")

	return records, nil
}

// uniqueCountry draws country names until an unused one appears, falling
// back to a numbered variant once the name pool runs dry.
func (g *RecordGenerator) uniqueCountry(seen map[string]int) string {
	for attempt := 0; attempt < 20; attempt++ {
		name := g.faker.Country()
		if _, ok := seen[name]; !ok {
			seen[name] = 1
			return name
		}
	}

	name := g.faker.Country()
	if _, ok := seen[name]; !ok {
		seen[name] = 1
		return name
	}
	seen[name]++
	return fmt.Sprintf("%s %d", name, seen[name])
}

func (g *RecordGenerator) record(id int64, country string) models.IntegratedRecord {
	f := g.faker
	continent := ChooseWeighted(f, Continents, continentWeights)

	r := models.IntegratedRecord{
		IDPais:               id,
		Pais:                 country,
		Capital:              f.City(),
		Continente:           continent,
		Region:               Choose(f, regions[continent]),
		Poblacion:            float64(f.Int(50_000, 300_000_000)),
		TasaDeEnvejecimiento: math.Round(f.Float64(1.5, 30)*100) / 100,
	}

	if !f.Chance(g.opts.MissingPriceRate) {
		r.PrecioBigMacUSD = models.Float(f.Price(1.5, 8))
	}
	r.CostoBajoHospedaje = g.cost(10, 150)
	r.CostoPromedioComida = g.cost(5, 60)
	r.CostoBajoTransporte = g.cost(1, 30)
	r.CostoPromedioEntretenimiento = g.cost(5, 80)

	return r
}

func (g *RecordGenerator) cost(min, max float64) sql.NullFloat64 {
	if g.faker.Chance(g.opts.MissingCostRate) {
		return sql.NullFloat64{}
	}
	return models.Float(g.faker.Price(min, max))
}
