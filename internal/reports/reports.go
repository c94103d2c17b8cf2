//-------------------------------------------------------------------------
//
// pgEdge Cost Warehouse
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package reports runs the analytical queries over the star schema.
package reports

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pgEdge/pgedge-costdw/internal/db"
)

// Row is a typed report row that can be rendered as a table line.
type Row interface {
	Values() []any
}

// BigMacPrice is a row of the top big-mac report.
type BigMacPrice struct {
	Pais       string  `json:"pais" yaml:"pais"`
	Continente string  `json:"continente" yaml:"continente"`
	Valor      float64 `json:"valor" yaml:"valor"`
}

// Values implements Row.
func (r BigMacPrice) Values() []any { return []any{r.Pais, r.Continente, r.Valor} }

// ContinentAverage is a row of the average lodging report.
type ContinentAverage struct {
	Continente string  `json:"continente" yaml:"continente"`
	Promedio   float64 `json:"promedio" yaml:"promedio"`
}

// Values implements Row.
func (r ContinentAverage) Values() []any { return []any{r.Continente, r.Promedio} }

// BigMacAging is a row of the big-mac versus aging report.
type BigMacAging struct {
	Pais                 string   `json:"pais" yaml:"pais"`
	Continente           string   `json:"continente" yaml:"continente"`
	PrecioBigMac         float64  `json:"precio_big_mac" yaml:"precio_big_mac"`
	TasaDeEnvejecimiento *float64 `json:"tasa_de_envejecimiento" yaml:"tasa_de_envejecimiento"`
}

// Values implements Row.
func (r BigMacAging) Values() []any {
	return []any{r.Pais, r.Continente, r.PrecioBigMac, r.TasaDeEnvejecimiento}
}

// ContinentCosts is a row of the cost pivot. A nil average means the
// continent has no fact of that category.
type ContinentCosts struct {
	Continente         string   `json:"continente" yaml:"continente"`
	AvgHospedaje       *float64 `json:"avg_hospedaje" yaml:"avg_hospedaje"`
	AvgComida          *float64 `json:"avg_comida" yaml:"avg_comida"`
	AvgTransporte      *float64 `json:"avg_transporte" yaml:"avg_transporte"`
	AvgEntretenimiento *float64 `json:"avg_entretenimiento" yaml:"avg_entretenimiento"`
}

// Values implements Row.
func (r ContinentCosts) Values() []any {
	return []any{r.Continente, r.AvgHospedaje, r.AvgComida, r.AvgTransporte, r.AvgEntretenimiento}
}

// CountryCost is a row of the cheapest countries report.
type CountryCost struct {
	Pais       string  `json:"pais" yaml:"pais"`
	Continente string  `json:"continente" yaml:"continente"`
	CostoTotal float64 `json:"costo_total" yaml:"costo_total"`
}

// Values implements Row.
func (r CountryCost) Values() []any { return []any{r.Pais, r.Continente, r.CostoTotal} }

// PopulationBigMac is a row of the population versus big-mac report.
type PopulationBigMac struct {
	Pais         string  `json:"pais" yaml:"pais"`
	Poblacion    float64 `json:"poblacion" yaml:"poblacion"`
	PrecioBigMac float64 `json:"precio_big_mac" yaml:"precio_big_mac"`
}

// Values implements Row.
func (r PopulationBigMac) Values() []any { return []any{r.Pais, r.Poblacion, r.PrecioBigMac} }

// TopBigMac returns the five countries with the highest big-mac price.
func TopBigMac(ctx context.Context, q db.Querier) ([]BigMacPrice, error) {
	return query(ctx, q, TopBigMacSQL, func(rows *sql.Rows) (BigMacPrice, error) {
		var r BigMacPrice
		var continente sql.NullString
		err := rows.Scan(&r.Pais, &continente, &r.Valor)
		r.Continente = continente.String
		return r, err
	})
}

// AvgLodgingByContinent returns the average low lodging cost per continent.
func AvgLodgingByContinent(ctx context.Context, q db.Querier) ([]ContinentAverage, error) {
	return query(ctx, q, AvgLodgingByContinentSQL, func(rows *sql.Rows) (ContinentAverage, error) {
		var r ContinentAverage
		var continente sql.NullString
		err := rows.Scan(&continente, &r.Promedio)
		r.Continente = continente.String
		return r, err
	})
}

// BigMacVsAging returns the ten highest big-mac prices with the aging rate.
func BigMacVsAging(ctx context.Context, q db.Querier) ([]BigMacAging, error) {
	return query(ctx, q, BigMacVsAgingSQL, func(rows *sql.Rows) (BigMacAging, error) {
		var r BigMacAging
		var continente sql.NullString
		var tasa sql.NullFloat64
		err := rows.Scan(&r.Pais, &continente, &r.PrecioBigMac, &tasa)
		r.Continente = continente.String
		r.TasaDeEnvejecimiento = floatPtr(tasa)
		return r, err
	})
}

// CostPivot returns the per-continent average of each tourist category.
func CostPivot(ctx context.Context, q db.Querier) ([]ContinentCosts, error) {
	return query(ctx, q, CostPivotSQL, func(rows *sql.Rows) (ContinentCosts, error) {
		var r ContinentCosts
		var continente sql.NullString
		var hospedaje, comida, transporte, entretenimiento sql.NullFloat64
		err := rows.Scan(&continente, &hospedaje, &comida, &transporte, &entretenimiento)
		r.Continente = continente.String
		r.AvgHospedaje = floatPtr(hospedaje)
		r.AvgComida = floatPtr(comida)
		r.AvgTransporte = floatPtr(transporte)
		r.AvgEntretenimiento = floatPtr(entretenimiento)
		return r, err
	})
}

// CheapestCountries returns the ten countries with the lowest sum of the
// four tourist cost categories.
func CheapestCountries(ctx context.Context, q db.Querier) ([]CountryCost, error) {
	return query(ctx, q, CheapestCountriesSQL, func(rows *sql.Rows) (CountryCost, error) {
		var r CountryCost
		var continente sql.NullString
		err := rows.Scan(&r.Pais, &continente, &r.CostoTotal)
		r.Continente = continente.String
		return r, err
	})
}

// PopulationVsBigMac returns the big-mac price of the ten most populous
// countries.
func PopulationVsBigMac(ctx context.Context, q db.Querier) ([]PopulationBigMac, error) {
	return query(ctx, q, PopulationBigMacSQL, func(rows *sql.Rows) (PopulationBigMac, error) {
		var r PopulationBigMac
		err := rows.Scan(&r.Pais, &r.Poblacion, &r.PrecioBigMac)
		return r, err
	})
}

// query runs stmt and scans every row. An empty result is an empty,
// non-nil slice.
func query[T any](ctx context.Context, q db.Querier, stmt string, scan func(*sql.Rows) (T, error)) ([]T, error) {
	rows, err := q.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("failed to run report query: %w", err)
	}
	defer rows.Close()

	result := make([]T, 0)
	for rows.Next() {
		r, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report row: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating report rows: %w", err)
	}
	return result, nil
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
