package ingest

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/pgEdge/pgedge-costdw/internal/models"
)

// IntegratedFile is the default name of the integrated CSV.
const IntegratedFile = "datos_integrados.csv"

// IntegratedColumns is the column order of the integrated CSV.
var IntegratedColumns = []string{
	"id_pais", "pais", "capital", "continente", "region", "poblacion", "tasa_de_envejecimiento",
	"precio_big_mac_usd", "costo_bajo_hospedaje", "costo_promedio_comida",
	"costo_bajo_transporte", "costo_promedio_entretenimiento",
}

// ReadIntegrated reads integrated records from a CSV file. Missing cost
// values stay invalid; missing text becomes models.Unknown.
func ReadIntegrated(path string) ([]models.IntegratedRecord, error) {
	t, err := ReadCSV(path)
	if err != nil {
		return nil, err
	}
	records, err := DecodeIntegrated(t)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return records, nil
}

// DecodeIntegrated converts a CSV table into integrated records. Only
// id_pais and pais are required; other columns may be absent.
func DecodeIntegrated(t *Table) ([]models.IntegratedRecord, error) {
	if err := t.Require("id_pais", "pais"); err != nil {
		return nil, err
	}

	records := make([]models.IntegratedRecord, len(t.Rows))
	for i := range t.Rows {
		r := &records[i]
		line := i + 2

		id, err := parseID(t.Get(i, "id_pais"))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid id_pais: %w", line, err)
		}
		r.IDPais = id

		r.Pais = textOrUnknown(t.Get(i, "pais"))
		r.Capital = textOrUnknown(t.Get(i, "capital"))
		r.Continente = textOrUnknown(t.Get(i, "continente"))
		r.Region = textOrUnknown(t.Get(i, "region"))

		plain := []struct {
			col  string
			dest *float64
		}{
			{"poblacion", &r.Poblacion},
			{"tasa_de_envejecimiento", &r.TasaDeEnvejecimiento},
		}
		for _, p := range plain {
			v, err := ParseFloat(t.Get(i, p.col))
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid %s: %w", line, p.col, err)
			}
			*p.dest = v.Float64
		}

		costs := []struct {
			col  string
			dest *sql.NullFloat64
		}{
			{"precio_big_mac_usd", &r.PrecioBigMacUSD},
			{"costo_bajo_hospedaje", &r.CostoBajoHospedaje},
			{"costo_promedio_comida", &r.CostoPromedioComida},
			{"costo_bajo_transporte", &r.CostoBajoTransporte},
			{"costo_promedio_entretenimiento", &r.CostoPromedioEntretenimiento},
		}
		for _, c := range costs {
			v, err := ParseFloat(t.Get(i, c.col))
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid %s: %w", line, c.col, err)
			}
			*c.dest = v
		}
	}
	return records, nil
}

// WriteIntegrated writes records to a CSV file, replacing it.
func WriteIntegrated(path string, records []models.IntegratedRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := EncodeIntegrated(f, records); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// EncodeIntegrated writes records as CSV with a header line.
func EncodeIntegrated(w io.Writer, records []models.IntegratedRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(IntegratedColumns); err != nil {
		return err
	}
	for _, r := range records {
		err := cw.Write([]string{
			strconv.FormatInt(r.IDPais, 10),
			r.Pais,
			r.Capital,
			r.Continente,
			r.Region,
			strconv.FormatFloat(r.Poblacion, 'f', -1, 64),
			strconv.FormatFloat(r.TasaDeEnvejecimiento, 'f', -1, 64),
			FormatFloat(r.PrecioBigMacUSD),
			FormatFloat(r.CostoBajoHospedaje),
			FormatFloat(r.CostoPromedioComida),
			FormatFloat(r.CostoBajoTransporte),
			FormatFloat(r.CostoPromedioEntretenimiento),
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func textOrUnknown(s string) string {
	if IsNull(s) {
		return models.Unknown
	}
	return s
}
