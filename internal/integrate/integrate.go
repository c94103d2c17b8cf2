//-------------------------------------------------------------------------
//
// pgEdge Cost Warehouse
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package integrate merges the flat tables and the document collections
// into one consolidated record per country.
package integrate

import (
	"context"
	"fmt"

	"github.com/pgEdge/pgedge-costdw/internal/db"
	"github.com/pgEdge/pgedge-costdw/internal/documents"
	"github.com/pgEdge/pgedge-costdw/internal/ingest"
	"github.com/pgEdge/pgedge-costdw/internal/logging"
	"github.com/pgEdge/pgedge-costdw/internal/models"
)

// Result summarizes an integration run.
type Result struct {
	Sources    map[string]int            `json:"sources" yaml:"sources"`
	Duplicates map[string]int            `json:"duplicates,omitempty" yaml:"duplicates,omitempty"`
	Clean      *ingest.CleanReport       `json:"clean" yaml:"clean"`
	Stats      *Stats                    `json:"stats" yaml:"stats"`
	Output     string                    `json:"output,omitempty" yaml:"output,omitempty"`
	Records    []models.IntegratedRecord `json:"-" yaml:"-"`
}

// Extract reads the flat tables from q and both collections from docs.
func Extract(ctx context.Context, q db.Querier, docs documents.Source) (*Sources, error) {
	env, pob, err := ExtractRelational(ctx, q)
	if err != nil {
		return nil, err
	}

	bigMac, err := docs.BigMac(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to extract big mac documents: %w", err)
	}
	costos, err := docs.Costos(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to extract tourist cost documents: %w", err)
	}

	logging.Info().
		Int(SourceBigMac, len(bigMac)).
		Int(SourceCostos, len(costos)).
		Msg("Extracted documents")

	return &Sources{Envejecimiento: env, Poblacion: pob, BigMac: bigMac, Costos: costos}, nil
}

// Integrate merges, consolidates and cleans sources.
func Integrate(s *Sources) *Result {
	merged, duplicates := Merge(s)
	for source, n := range duplicates {
		logging.Warn().Str("source", source).Int("rows", n).Msg("Ignored rows with a repeated country name")
	}
	logging.Info().Int("records", len(merged)).Msg("Merged sources")

	candidates := make([]Candidate, 0, len(merged))
	for _, m := range merged {
		candidates = append(candidates, Consolidate(m))
	}

	records, report := Clean(candidates)
	report.Log()

	return &Result{
		Sources:    s.Counts(),
		Duplicates: duplicates,
		Clean:      report,
		Stats:      ComputeStats(records),
		Records:    records,
	}
}

// Run extracts both stores, integrates them and writes the records to
// outPath as CSV. An empty outPath skips the file.
func Run(ctx context.Context, q db.Querier, docs documents.Source, outPath string) (*Result, error) {
	sources, err := Extract(ctx, q, docs)
	if err != nil {
		return nil, err
	}

	result := Integrate(sources)

	if outPath != "" {
		if err := ingest.WriteIntegrated(outPath, result.Records); err != nil {
			return nil, err
		}
		result.Output = outPath
		logging.Info().Str("file", outPath).Int("records", len(result.Records)).Msg("Wrote integrated data")
	}
	return result, nil
}
