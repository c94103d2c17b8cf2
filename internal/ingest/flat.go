package ingest

import (
	"database/sql"
	"fmt"
	"math"
	"strconv"

	"github.com/pgEdge/pgedge-costdw/internal/logging"
	"github.com/pgEdge/pgedge-costdw/internal/models"
)

// Source file names of the flat tables.
const (
	EnvejecimientoFile = "pais_envejecimiento.csv"
	PoblacionFile      = "pais_poblacion.csv"
)

// EnvejecimientoColumns are the columns of pais_envejecimiento.
var EnvejecimientoColumns = []string{
	"id_pais", "nombre_pais", "capital", "continente", "region", "poblacion", "tasa_de_envejecimiento",
}

// PoblacionColumns are the columns of pais_poblacion.
var PoblacionColumns = []string{
	"_id", "continente", "pais", "poblacion",
	"costo_bajo_hospedaje", "costo_promedio_comida", "costo_bajo_transporte", "costo_promedio_entretenimiento",
}

// Fill records how the nulls of one column were replaced.
type Fill struct {
	Column string `json:"column" yaml:"column"`
	Count  int    `json:"count" yaml:"count"`
	Value  string `json:"value" yaml:"value"`
}

// CleanReport describes the nulls found in a source and how they were
// cleaned.
type CleanReport struct {
	Table string         `json:"table" yaml:"table"`
	Rows  int            `json:"rows" yaml:"rows"`
	Nulls map[string]int `json:"nulls" yaml:"nulls"`
	Fills []Fill         `json:"fills" yaml:"fills"`
}

// TotalNulls returns the number of null cells across all columns.
func (r *CleanReport) TotalNulls() int {
	n := 0
	for _, c := range r.Nulls {
		n += c
	}
	return n
}

// Log writes the report to the global logger.
func (r *CleanReport) Log() {
	logging.Info().
		Str("table", r.Table).
		Int("rows", r.Rows).
		Int("nulls", r.TotalNulls()).
		Msg("Analyzed source")
	for _, f := range r.Fills {
		logging.Info().
			Str("table", r.Table).
			Str("column", f.Column).
			Int("count", f.Count).
			Str("value", f.Value).
			Msg("Filled null values")
	}
}

// DecodeEnvejecimiento converts a CSV table into pais_envejecimiento rows.
// Missing values are kept as "" or invalid floats.
func DecodeEnvejecimiento(t *Table) ([]models.Envejecimiento, []bool, error) {
	if err := t.Require(EnvejecimientoColumns...); err != nil {
		return nil, nil, err
	}

	rows := make([]models.Envejecimiento, len(t.Rows))
	missingID := make([]bool, len(t.Rows))
	for i := range t.Rows {
		r := &rows[i]
		if s := t.Get(i, "id_pais"); IsNull(s) {
			missingID[i] = true
		} else {
			id, err := parseID(s)
			if err != nil {
				return nil, nil, fmt.Errorf("row %d: invalid id_pais %q: %w", i+2, s, err)
			}
			r.IDPais = id
		}
		r.NombrePais = ParseText(t.Get(i, "nombre_pais"))
		r.Capital = ParseText(t.Get(i, "capital"))
		r.Continente = ParseText(t.Get(i, "continente"))
		r.Region = ParseText(t.Get(i, "region"))

		var err error
		if r.Poblacion, err = ParseFloat(t.Get(i, "poblacion")); err != nil {
			return nil, nil, fmt.Errorf("row %d: invalid poblacion: %w", i+2, err)
		}
		if r.TasaDeEnvejecimiento, err = ParseFloat(t.Get(i, "tasa_de_envejecimiento")); err != nil {
			return nil, nil, fmt.Errorf("row %d: invalid tasa_de_envejecimiento: %w", i+2, err)
		}
	}
	return rows, missingID, nil
}

// DecodePoblacion converts a CSV table into pais_poblacion rows.
func DecodePoblacion(t *Table) ([]models.Poblacion, error) {
	if err := t.Require(PoblacionColumns...); err != nil {
		return nil, err
	}

	rows := make([]models.Poblacion, len(t.Rows))
	for i := range t.Rows {
		r := &rows[i]
		r.ID = ParseText(t.Get(i, "_id"))
		r.Continente = ParseText(t.Get(i, "continente"))
		r.Pais = ParseText(t.Get(i, "pais"))

		numeric := []struct {
			col  string
			dest *sql.NullFloat64
		}{
			{"poblacion", &r.Poblacion},
			{"costo_bajo_hospedaje", &r.CostoBajoHospedaje},
			{"costo_promedio_comida", &r.CostoPromedioComida},
			{"costo_bajo_transporte", &r.CostoBajoTransporte},
			{"costo_promedio_entretenimiento", &r.CostoPromedioEntretenimiento},
		}
		for _, n := range numeric {
			v, err := ParseFloat(t.Get(i, n.col))
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid %s: %w", i+2, n.col, err)
			}
			*n.dest = v
		}
	}
	return rows, nil
}

// CleanEnvejecimiento fills missing text with models.Unknown, missing
// numerics with the column mean and missing ids with sequential ids after
// the current maximum.
func CleanEnvejecimiento(rows []models.Envejecimiento, missingID []bool) *CleanReport {
	report := &CleanReport{Table: "pais_envejecimiento", Rows: len(rows), Nulls: make(map[string]int)}

	var maxID int64
	ids := 0
	for i, r := range rows {
		if !missingID[i] {
			maxID = max(maxID, r.IDPais)
		} else {
			ids++
		}
	}
	if ids > 0 {
		report.Nulls["id_pais"] = ids
		next := maxID
		for i := range rows {
			if missingID[i] {
				next++
				rows[i].IDPais = next
			}
		}
		report.Fills = append(report.Fills, Fill{Column: "id_pais", Count: ids, Value: fmt.Sprintf("%d..%d", maxID+1, next)})
	}

	text := []struct {
		col string
		get func(*models.Envejecimiento) *string
	}{
		{"nombre_pais", func(r *models.Envejecimiento) *string { return &r.NombrePais }},
		{"capital", func(r *models.Envejecimiento) *string { return &r.Capital }},
		{"continente", func(r *models.Envejecimiento) *string { return &r.Continente }},
		{"region", func(r *models.Envejecimiento) *string { return &r.Region }},
	}
	for _, c := range text {
		fillText(report, c.col, len(rows), func(i int) *string { return c.get(&rows[i]) })
	}

	numeric := []struct {
		col string
		get func(*models.Envejecimiento) *sql.NullFloat64
	}{
		{"poblacion", func(r *models.Envejecimiento) *sql.NullFloat64 { return &r.Poblacion }},
		{"tasa_de_envejecimiento", func(r *models.Envejecimiento) *sql.NullFloat64 { return &r.TasaDeEnvejecimiento }},
	}
	for _, c := range numeric {
		fillMean(report, c.col, len(rows), func(i int) *sql.NullFloat64 { return c.get(&rows[i]) })
	}

	return report
}

// CleanPoblacion fills missing ids with unique generated ones, missing text
// with models.Unknown and missing numerics with the column mean.
func CleanPoblacion(rows []models.Poblacion) *CleanReport {
	report := &CleanReport{Table: "pais_poblacion", Rows: len(rows), Nulls: make(map[string]int)}

	fillIDs(report, rows)

	text := []struct {
		col string
		get func(*models.Poblacion) *string
	}{
		{"continente", func(r *models.Poblacion) *string { return &r.Continente }},
		{"pais", func(r *models.Poblacion) *string { return &r.Pais }},
	}
	for _, c := range text {
		fillText(report, c.col, len(rows), func(i int) *string { return c.get(&rows[i]) })
	}

	numeric := []struct {
		col string
		get func(*models.Poblacion) *sql.NullFloat64
	}{
		{"poblacion", func(r *models.Poblacion) *sql.NullFloat64 { return &r.Poblacion }},
		{"costo_bajo_hospedaje", func(r *models.Poblacion) *sql.NullFloat64 { return &r.CostoBajoHospedaje }},
		{"costo_promedio_comida", func(r *models.Poblacion) *sql.NullFloat64 { return &r.CostoPromedioComida }},
		{"costo_bajo_transporte", func(r *models.Poblacion) *sql.NullFloat64 { return &r.CostoBajoTransporte }},
		{"costo_promedio_entretenimiento", func(r *models.Poblacion) *sql.NullFloat64 { return &r.CostoPromedioEntretenimiento }},
	}
	for _, c := range numeric {
		fillMean(report, c.col, len(rows), func(i int) *sql.NullFloat64 { return c.get(&rows[i]) })
	}

	return report
}

// fillIDs gives every row without an _id the key "Desconocido_<row>", where
// row is the 1-based data row, suffixed further if a present id already uses
// it. _id is the primary key of pais_poblacion, so the generated keys must
// not repeat.
func fillIDs(report *CleanReport, rows []models.Poblacion) {
	taken := make(map[string]bool, len(rows))
	for _, r := range rows {
		if r.ID != "" {
			taken[r.ID] = true
		}
	}

	count := 0
	for i := range rows {
		if rows[i].ID != "" {
			continue
		}
		id := fmt.Sprintf("%s_%d", models.Unknown, i+1)
		for n := 2; taken[id]; n++ {
			id = fmt.Sprintf("%s_%d_%d", models.Unknown, i+1, n)
		}
		rows[i].ID = id
		taken[id] = true
		count++
	}

	report.Nulls["_id"] = count
	if count > 0 {
		report.Fills = append(report.Fills, Fill{Column: "_id", Count: count, Value: models.Unknown + "_<fila>"})
	}
}

func fillText(report *CleanReport, col string, n int, cell func(int) *string) {
	count := 0
	for i := 0; i < n; i++ {
		if p := cell(i); *p == "" {
			*p = models.Unknown
			count++
		}
	}
	report.Nulls[col] = count
	if count > 0 {
		report.Fills = append(report.Fills, Fill{Column: col, Count: count, Value: models.Unknown})
	}
}

// fillMean replaces missing values with the mean of the present ones. A
// column with no values at all is left untouched.
func fillMean(report *CleanReport, col string, n int, cell func(int) *sql.NullFloat64) {
	var sum float64
	present, missing := 0, 0
	for i := 0; i < n; i++ {
		if v := cell(i); v.Valid {
			sum += v.Float64
			present++
		} else {
			missing++
		}
	}
	report.Nulls[col] = missing
	if missing == 0 || present == 0 {
		return
	}

	mean := sum / float64(present)
	for i := 0; i < n; i++ {
		if v := cell(i); !v.Valid {
			*v = models.Float(mean)
		}
	}
	report.Fills = append(report.Fills, Fill{Column: col, Count: missing, Value: strconv.FormatFloat(mean, 'f', 2, 64)})
}

// parseID accepts integer ids written as floats ("12.0").
func parseID(s string) (int64, error) {
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return id, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("not an integer")
	}
	return int64(f), nil
}
