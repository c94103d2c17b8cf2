//-------------------------------------------------------------------------
//
// pgEdge Cost Warehouse
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package documents turns the big-mac and tourist cost JSON files into
// uniform documents and keeps them in MongoDB.
package documents

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pgEdge/pgedge-costdw/internal/logging"
	"github.com/pgEdge/pgedge-costdw/internal/models"
)

// Collection names.
const (
	BigMacCollection = "big_mac_index"
	CostosCollection = "costos_turisticos"
)

// BigMacFile is the source of the big_mac_index collection; every other
// file feeds costos_turisticos.
const BigMacFile = "paises_mundo_big_mac.json"

// Document type tags.
const (
	TipoBigMac = "big_mac"
	TipoCostos = "costos_turisticos"
)

// costosKey holds the nested daily cost estimates of a tourist cost item.
const costosKey = "costos_diarios_estimados_en_dólares"

// Item is one raw JSON object.
type Item map[string]any

// Analysis summarizes the structure of a source file.
type Analysis struct {
	File        string            `json:"file" yaml:"file"`
	Records     int               `json:"records" yaml:"records"`
	Fields      map[string]string `json:"fields" yaml:"fields"`
	Countries   int               `json:"countries" yaml:"countries"`
	Examples    []string          `json:"examples" yaml:"examples"`
	Continentes []string          `json:"continentes" yaml:"continentes"`
}

// Prepared holds the unified, cleaned documents of all source files.
type Prepared struct {
	Analyses    []Analysis         `json:"analyses" yaml:"analyses"`
	BigMac      []models.BigMacDoc `json:"-" yaml:"-"`
	Costos      []models.CostosDoc `json:"-" yaml:"-"`
	BigMacNulls map[string]int     `json:"big_mac_nulls" yaml:"big_mac_nulls"`
	CostosNulls map[string]int     `json:"costos_nulls" yaml:"costos_nulls"`
}

// ReadFile reads a JSON file holding an array of objects. A top-level
// object is turned into one item per key, the key stored under "clave".
func ReadFile(path string) ([]Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	items, err := ParseItems(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	logging.Debug().Str("file", path).Int("records", len(items)).Msg("Loaded JSON file")
	return items, nil
}

// ParseItems decodes a JSON array of objects, or an object of objects.
func ParseItems(data []byte) ([]Item, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	switch v := raw.(type) {
	case []any:
		items := make([]Item, 0, len(v))
		for i, e := range v {
			obj, ok := e.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("element %d is not an object", i)
			}
			items = append(items, Item(obj))
		}
		return items, nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		items := make([]Item, 0, len(v))
		for _, k := range keys {
			item := Item{"clave": k}
			if obj, ok := v[k].(map[string]any); ok {
				for ik, iv := range obj {
					item[ik] = iv
				}
			} else {
				item["valor"] = v[k]
			}
			items = append(items, item)
		}
		return items, nil
	default:
		return nil, fmt.Errorf("expected an array or object, got %T", raw)
	}
}

// Analyze describes the fields of the first item and the countries and
// continents present in items.
func Analyze(file string, items []Item) Analysis {
	a := Analysis{File: file, Records: len(items), Fields: make(map[string]string)}
	if len(items) == 0 {
		return a
	}

	for k, v := range items[0] {
		a.Fields[k] = kind(v)
	}

	countries := make(map[string]bool)
	continents := make(map[string]bool)
	for _, item := range items {
		if p, ok := text(item, "país", "pais"); ok {
			countries[p] = true
		}
		if c, ok := text(item, "continente"); ok {
			continents[c] = true
		}
	}

	a.Countries = len(countries)
	a.Examples = firstSorted(countries, 5)
	a.Continentes = firstSorted(continents, len(continents))
	return a
}

// UnifyBigMac maps big-mac items to documents. Missing text becomes
// models.Unknown and a missing price 0; nulls counts the replacements per
// field.
func UnifyBigMac(items []Item, nulls map[string]int) []models.BigMacDoc {
	docs := make([]models.BigMacDoc, 0, len(items))
	for _, item := range items {
		docs = append(docs, models.BigMacDoc{
			Pais:            textOrUnknown(item, nulls, "pais", "país", "pais"),
			Continente:      textOrUnknown(item, nulls, "continente", "continente"),
			PrecioBigMacUSD: numberOrZero(item, nulls, "precio_big_mac_usd", "precio_big_mac_usd"),
			TipoDato:        TipoBigMac,
		})
	}
	return docs
}

// UnifyCostos maps tourist cost items to documents, flattening the nested
// daily estimates into "<categoria>_<tipo>" keys.
func UnifyCostos(items []Item, fuente string, nulls map[string]int) []models.CostosDoc {
	docs := make([]models.CostosDoc, 0, len(items))
	for _, item := range items {
		docs = append(docs, models.CostosDoc{
			Pais:       textOrUnknown(item, nulls, "pais", "país", "pais"),
			Continente: textOrUnknown(item, nulls, "continente", "continente"),
			Poblacion:  numberOrZero(item, nulls, "poblacion", "población", "poblacion"),
			Capital:    textOrUnknown(item, nulls, "capital", "capital"),
			Region:     textOrUnknown(item, nulls, "region", "región", "region"),
			Costos:     FlattenCosts(item[costosKey]),
			TipoDato:   TipoCostos,
			Fuente:     fuente,
		})
	}
	return docs
}

// FlattenCosts flattens {"hospedaje": {"bajo": 20}} into
// {"hospedaje_bajo": 20}. Scalar categories keep their name; non-numeric
// values count as 0.
func FlattenCosts(v any) map[string]float64 {
	costs := make(map[string]float64)
	obj, ok := v.(map[string]any)
	if !ok {
		return costs
	}
	for categoria, valores := range obj {
		if nested, ok := valores.(map[string]any); ok {
			for tipo, valor := range nested {
				costs[categoria+"_"+tipo], _ = valor.(float64)
			}
			continue
		}
		costs[categoria], _ = valores.(float64)
	}
	return costs
}

// Prepare reads, analyzes, unifies and cleans every file.
func Prepare(paths []string) (*Prepared, error) {
	p := &Prepared{
		BigMacNulls: make(map[string]int),
		CostosNulls: make(map[string]int),
	}

	for _, path := range paths {
		items, err := ReadFile(path)
		if err != nil {
			return nil, err
		}

		name := filepath.Base(path)
		a := Analyze(name, items)
		p.Analyses = append(p.Analyses, a)

		if name == BigMacFile {
			p.BigMac = append(p.BigMac, UnifyBigMac(items, p.BigMacNulls)...)
		} else {
			p.Costos = append(p.Costos, UnifyCostos(items, name, p.CostosNulls)...)
		}

		logging.Info().
			Str("file", name).
			Int("records", a.Records).
			Int("countries", a.Countries).
			Msg("Unified document structure")
	}

	for field, n := range p.BigMacNulls {
		logging.Info().Str("collection", BigMacCollection).Str("field", field).Int("count", n).Msg("Filled null values")
	}
	for field, n := range p.CostosNulls {
		logging.Info().Str("collection", CostosCollection).Str("field", field).Int("count", n).Msg("Filled null values")
	}

	return p, nil
}

// text returns the first non-empty string stored under any of keys.
func text(item Item, keys ...string) (string, bool) {
	for _, k := range keys {
		if s, ok := item[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s), true
		}
	}
	return "", false
}

func textOrUnknown(item Item, nulls map[string]int, field string, keys ...string) string {
	if s, ok := text(item, keys...); ok {
		return s
	}
	nulls[field]++
	return models.Unknown
}

func numberOrZero(item Item, nulls map[string]int, field string, keys ...string) float64 {
	for _, k := range keys {
		if f, ok := item[k].(float64); ok {
			return f
		}
	}
	nulls[field]++
	return 0
}

func kind(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "bool"
	case []any:
		return "array"
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return "object{" + strings.Join(keys, ",") + "}"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func firstSorted(set map[string]bool, n int) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	if len(out) > n {
		out = out[:n]
	}
	return out
}
