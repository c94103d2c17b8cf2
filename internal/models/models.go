//-------------------------------------------------------------------------
//
// pgEdge Cost Warehouse
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package models defines the records that flow between pipeline stages.
package models

import (
	"database/sql"
	"math"
)

// Cost category labels stored in dim_costos.tipo_costo.
const (
	CostBigMac          = "big_mac"
	CostHospedaje       = "hospedaje"
	CostComida          = "comida"
	CostTransporte      = "transporte"
	CostEntretenimiento = "entretenimiento"
)

// Unknown replaces missing text values during cleaning.
const Unknown = "Desconocido"

// CostType is a row of dim_costos.
type CostType struct {
	ID          int
	Name        string
	Description string
}

// CostTypes is the fixed content of dim_costos.
var CostTypes = []CostType{
	{ID: 1, Name: CostBigMac, Description: "Precio del Big Mac en USD"},
	{ID: 2, Name: CostHospedaje, Description: "Costo bajo de hospedaje"},
	{ID: 3, Name: CostComida, Description: "Costo promedio de comida"},
	{ID: 4, Name: CostTransporte, Description: "Costo bajo de transporte"},
	{ID: 5, Name: CostEntretenimiento, Description: "Costo promedio de entretenimiento"},
}

// TouristCostTypes are the categories summed by the cheapest-countries report.
var TouristCostTypes = []string{CostHospedaje, CostComida, CostTransporte, CostEntretenimiento}

// CostTypeID returns the dim_costos id for a category label.
func CostTypeID(name string) (int, bool) {
	for _, c := range CostTypes {
		if c.Name == name {
			return c.ID, true
		}
	}
	return 0, false
}

// Envejecimiento is a row of pais_envejecimiento.
type Envejecimiento struct {
	IDPais               int64
	NombrePais           string
	Capital              string
	Continente           string
	Region               string
	Poblacion            sql.NullFloat64
	TasaDeEnvejecimiento sql.NullFloat64
}

// Poblacion is a row of pais_poblacion.
type Poblacion struct {
	ID                           string
	Continente                   string
	Pais                         string
	Poblacion                    sql.NullFloat64
	CostoBajoHospedaje           sql.NullFloat64
	CostoPromedioComida          sql.NullFloat64
	CostoBajoTransporte          sql.NullFloat64
	CostoPromedioEntretenimiento sql.NullFloat64
}

// BigMacDoc is a document of the big_mac_index collection.
type BigMacDoc struct {
	Pais            string  `bson:"pais" json:"pais"`
	Continente      string  `bson:"continente" json:"continente"`
	PrecioBigMacUSD float64 `bson:"precio_big_mac_usd" json:"precio_big_mac_usd"`
	TipoDato        string  `bson:"tipo_dato" json:"tipo_dato"`
}

// CostosDoc is a document of the costos_turisticos collection. Costos holds
// the flattened daily cost estimates keyed "<categoria>_<tipo>".
type CostosDoc struct {
	Pais       string             `bson:"pais" json:"pais"`
	Continente string             `bson:"continente" json:"continente"`
	Poblacion  float64            `bson:"poblacion" json:"poblacion"`
	Capital    string             `bson:"capital" json:"capital"`
	Region     string             `bson:"region" json:"region"`
	Costos     map[string]float64 `bson:"costos" json:"costos"`
	TipoDato   string             `bson:"tipo_dato" json:"tipo_dato"`
	Fuente     string             `bson:"fuente" json:"fuente"`
}

// IntegratedRecord is one consolidated country row produced by the
// integration stage and consumed by the warehouse loader.
type IntegratedRecord struct {
	IDPais               int64
	Pais                 string
	Capital              string
	Continente           string
	Region               string
	Poblacion            float64
	TasaDeEnvejecimiento float64

	PrecioBigMacUSD              sql.NullFloat64
	CostoBajoHospedaje           sql.NullFloat64
	CostoPromedioComida          sql.NullFloat64
	CostoBajoTransporte          sql.NullFloat64
	CostoPromedioEntretenimiento sql.NullFloat64
}

// CostValue is one measured value of a record.
type CostValue struct {
	CostID int
	Valor  float64
}

// CostValues returns the record's present values in dim_costos order.
func (r IntegratedRecord) CostValues() []CostValue {
	all := []sql.NullFloat64{
		r.PrecioBigMacUSD,
		r.CostoBajoHospedaje,
		r.CostoPromedioComida,
		r.CostoBajoTransporte,
		r.CostoPromedioEntretenimiento,
	}

	values := make([]CostValue, 0, len(all))
	for i, v := range all {
		if !v.Valid || math.IsNaN(v.Float64) {
			continue
		}
		values = append(values, CostValue{CostID: CostTypes[i].ID, Valor: v.Float64})
	}
	return values
}

// Float wraps v as a valid nullable float.
func Float(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: true}
}
