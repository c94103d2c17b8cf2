package integrate

import (
	"database/sql"
	"strconv"

	"github.com/pgEdge/pgedge-costdw/internal/ingest"
	"github.com/pgEdge/pgedge-costdw/internal/models"
)

// Keys of the flattened tourist cost estimates used when pais_poblacion
// has no value for a category.
const (
	docHospedaje       = "hospedaje_bajo"
	docComida          = "comida_promedio"
	docTransporte      = "transporte_bajo"
	docEntretenimiento = "entretenimiento_promedio"
)

// IntegratedTable names the integrated output in clean reports.
const IntegratedTable = "datos_integrados"

// Candidate is a consolidated row before cleaning. Empty text and invalid
// numbers are missing.
type Candidate struct {
	IDPais               sql.NullInt64
	Pais                 string
	Capital              string
	Continente           string
	Region               string
	Poblacion            sql.NullFloat64
	TasaDeEnvejecimiento sql.NullFloat64

	PrecioBigMacUSD              sql.NullFloat64
	CostoBajoHospedaje           sql.NullFloat64
	CostoPromedioComida          sql.NullFloat64
	CostoBajoTransporte          sql.NullFloat64
	CostoPromedioEntretenimiento sql.NullFloat64
}

// Consolidate picks one value per column from the sources of a merged row.
func Consolidate(m Merged) Candidate {
	var c Candidate
	env, pob, bm, doc := m.Envejecimiento, m.Poblacion, m.BigMac, m.Costos

	var envPais, envCapital, envContinente, envRegion string
	if env != nil {
		c.IDPais = sql.NullInt64{Int64: env.IDPais, Valid: true}
		envPais, envCapital, envContinente, envRegion = env.NombrePais, env.Capital, env.Continente, env.Region
		c.TasaDeEnvejecimiento = env.TasaDeEnvejecimiento
	}

	var pobPais, pobContinente string
	if pob != nil {
		pobPais, pobContinente = pob.Pais, pob.Continente
		c.CostoBajoHospedaje = pob.CostoBajoHospedaje
		c.CostoPromedioComida = pob.CostoPromedioComida
		c.CostoBajoTransporte = pob.CostoBajoTransporte
		c.CostoPromedioEntretenimiento = pob.CostoPromedioEntretenimiento
	}

	var bmPais, bmContinente string
	if bm != nil {
		bmPais, bmContinente = bm.Pais, bm.Continente
		if bm.PrecioBigMacUSD > 0 {
			c.PrecioBigMacUSD = models.Float(bm.PrecioBigMacUSD)
		}
	}

	var docPais, docContinente, docCapital, docRegion string
	if doc != nil {
		docPais, docContinente, docCapital, docRegion = doc.Pais, doc.Continente, doc.Capital, doc.Region
		fallback(&c.CostoBajoHospedaje, doc.Costos, docHospedaje)
		fallback(&c.CostoPromedioComida, doc.Costos, docComida)
		fallback(&c.CostoBajoTransporte, doc.Costos, docTransporte)
		fallback(&c.CostoPromedioEntretenimiento, doc.Costos, docEntretenimiento)
	}

	c.Pais = first(envPais, pobPais, bmPais, docPais)
	c.Continente = first(pobContinente, bmContinente, docContinente, envContinente)
	c.Capital = first(envCapital, docCapital)
	c.Region = first(envRegion, docRegion)

	var envPob, pobPob sql.NullFloat64
	if env != nil {
		envPob = env.Poblacion
	}
	if pob != nil {
		pobPob = pob.Poblacion
	}
	switch {
	case envPob.Valid && pobPob.Valid:
		c.Poblacion = models.Float((envPob.Float64 + pobPob.Float64) / 2)
	case envPob.Valid:
		c.Poblacion = envPob
	case pobPob.Valid:
		c.Poblacion = pobPob
	case doc != nil && doc.Poblacion > 0:
		c.Poblacion = models.Float(doc.Poblacion)
	}

	return c
}

// first returns the first value that is neither empty nor the unknown
// placeholder.
func first(values ...string) string {
	for _, v := range values {
		if v != "" && v != models.Unknown {
			return v
		}
	}
	return ""
}

func fallback(dst *sql.NullFloat64, costs map[string]float64, key string) {
	if dst.Valid {
		return
	}
	if v, ok := costs[key]; ok {
		*dst = models.Float(v)
	}
}

// Clean fills the missing values of candidates: text becomes
// models.Unknown, ids continue after the current maximum, prices, costs
// and rates take the column mean (0 when the column has no value at all)
// and population becomes 0.
func Clean(candidates []Candidate) ([]models.IntegratedRecord, *ingest.CleanReport) {
	report := &ingest.CleanReport{
		Table: IntegratedTable,
		Rows:  len(candidates),
		Nulls: make(map[string]int),
	}
	n := len(candidates)

	var maxID int64
	for _, c := range candidates {
		if c.IDPais.Valid && c.IDPais.Int64 > maxID {
			maxID = c.IDPais.Int64
		}
	}
	missing := 0
	for i := range candidates {
		if !candidates[i].IDPais.Valid {
			missing++
			candidates[i].IDPais = sql.NullInt64{Int64: maxID + int64(missing), Valid: true}
		}
	}
	report.Nulls["id_pais"] = missing
	if missing > 0 {
		report.Fills = append(report.Fills, ingest.Fill{
			Column: "id_pais",
			Count:  missing,
			Value:  strconv.FormatInt(maxID+1, 10) + ".." + strconv.FormatInt(maxID+int64(missing), 10),
		})
	}

	fillText(report, "pais", n, func(i int) *string { return &candidates[i].Pais })
	fillText(report, "capital", n, func(i int) *string { return &candidates[i].Capital })
	fillText(report, "continente", n, func(i int) *string { return &candidates[i].Continente })
	fillText(report, "region", n, func(i int) *string { return &candidates[i].Region })

	fillConst(report, "poblacion", n, 0, "0", func(i int) *sql.NullFloat64 { return &candidates[i].Poblacion })
	fillMean(report, "tasa_de_envejecimiento", n, func(i int) *sql.NullFloat64 { return &candidates[i].TasaDeEnvejecimiento })
	fillMean(report, "precio_big_mac_usd", n, func(i int) *sql.NullFloat64 { return &candidates[i].PrecioBigMacUSD })
	fillMean(report, "costo_bajo_hospedaje", n, func(i int) *sql.NullFloat64 { return &candidates[i].CostoBajoHospedaje })
	fillMean(report, "costo_promedio_comida", n, func(i int) *sql.NullFloat64 { return &candidates[i].CostoPromedioComida })
	fillMean(report, "costo_bajo_transporte", n, func(i int) *sql.NullFloat64 { return &candidates[i].CostoBajoTransporte })
	fillMean(report, "costo_promedio_entretenimiento", n, func(i int) *sql.NullFloat64 {
		return &candidates[i].CostoPromedioEntretenimiento
	})

	records := make([]models.IntegratedRecord, 0, n)
	for _, c := range candidates {
		records = append(records, models.IntegratedRecord{
			IDPais:                       c.IDPais.Int64,
			Pais:                         c.Pais,
			Capital:                      c.Capital,
			Continente:                   c.Continente,
			Region:                       c.Region,
			Poblacion:                    c.Poblacion.Float64,
			TasaDeEnvejecimiento:         c.TasaDeEnvejecimiento.Float64,
			PrecioBigMacUSD:              c.PrecioBigMacUSD,
			CostoBajoHospedaje:           c.CostoBajoHospedaje,
			CostoPromedioComida:          c.CostoPromedioComida,
			CostoBajoTransporte:          c.CostoBajoTransporte,
			CostoPromedioEntretenimiento: c.CostoPromedioEntretenimiento,
		})
	}
	return records, report
}

func fillText(report *ingest.CleanReport, col string, n int, cell func(int) *string) {
	count := 0
	for i := 0; i < n; i++ {
		if p := cell(i); *p == "" {
			*p = models.Unknown
			count++
		}
	}
	report.Nulls[col] = count
	if count > 0 {
		report.Fills = append(report.Fills, ingest.Fill{Column: col, Count: count, Value: models.Unknown})
	}
}

func fillConst(report *ingest.CleanReport, col string, n int, value float64, label string,
	cell func(int) *sql.NullFloat64) {
	count := 0
	for i := 0; i < n; i++ {
		if v := cell(i); !v.Valid {
			*v = models.Float(value)
			count++
		}
	}
	report.Nulls[col] = count
	if count > 0 {
		report.Fills = append(report.Fills, ingest.Fill{Column: col, Count: count, Value: label})
	}
}

func fillMean(report *ingest.CleanReport, col string, n int, cell func(int) *sql.NullFloat64) {
	var sum float64
	present := 0
	for i := 0; i < n; i++ {
		if v := cell(i); v.Valid {
			sum += v.Float64
			present++
		}
	}
	mean := 0.0
	if present > 0 {
		mean = sum / float64(present)
	}
	fillConst(report, col, n, mean, strconv.FormatFloat(mean, 'f', 2, 64), cell)
}
