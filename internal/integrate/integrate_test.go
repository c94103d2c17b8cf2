package integrate

import (
	"context"
	"database/sql"
	"math"
	"path/filepath"
	"testing"

	"github.com/pgEdge/pgedge-costdw/internal/documents"
	"github.com/pgEdge/pgedge-costdw/internal/ingest"
	"github.com/pgEdge/pgedge-costdw/internal/models"
	"github.com/pgEdge/pgedge-costdw/internal/schema"
	"github.com/pgEdge/pgedge-costdw/internal/testutil"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func fixtureSources() *Sources {
	return &Sources{
		Envejecimiento: []models.Envejecimiento{
			{IDPais: 1, NombrePais: "Japón", Capital: "Tokio", Continente: "Asia", Region: "Asia Oriental",
				Poblacion: models.Float(125e6), TasaDeEnvejecimiento: models.Float(29.1)},
			{IDPais: 2, NombrePais: "USA", Capital: "Washington", Continente: "América", Region: "América del Norte",
				Poblacion: models.Float(330e6), TasaDeEnvejecimiento: models.Float(17.0)},
			{IDPais: 3, NombrePais: "Chile", Capital: models.Unknown, Continente: "América", Region: "Sudamérica"},
		},
		Poblacion: []models.Poblacion{
			{ID: "a1", Continente: "Asia", Pais: "Japón", Poblacion: models.Float(124e6),
				CostoBajoHospedaje: models.Float(60), CostoPromedioComida: models.Float(25),
				CostoBajoTransporte: models.Float(10), CostoPromedioEntretenimiento: models.Float(30)},
			{ID: "a2", Continente: "América", Pais: "Estados Unidos", Poblacion: models.Float(332e6),
				CostoBajoHospedaje:  models.Float(90),
				CostoBajoTransporte: models.Float(20), CostoPromedioEntretenimiento: models.Float(50)},
			{ID: "a3", Continente: "Europa", Pais: "Francia", Poblacion: models.Float(68e6),
				CostoBajoHospedaje: models.Float(70), CostoPromedioComida: models.Float(30),
				CostoBajoTransporte: models.Float(12), CostoPromedioEntretenimiento: models.Float(40)},
		},
		BigMac: []models.BigMacDoc{
			{Pais: "Japón", Continente: "Asia", PrecioBigMacUSD: 3.5, TipoDato: documents.TipoBigMac},
			{Pais: "United States", Continente: "América", PrecioBigMacUSD: 5.7, TipoDato: documents.TipoBigMac},
			{Pais: "Suiza", Continente: "Europa", PrecioBigMacUSD: 7.1, TipoDato: documents.TipoBigMac},
		},
		Costos: []models.CostosDoc{
			{Pais: "Kenia", Continente: "África", Poblacion: 54e6, Capital: "Nairobi", Region: "África Oriental",
				Costos: map[string]float64{
					"hospedaje_bajo": 15, "comida_promedio": 12, "transporte_bajo": 5, "entretenimiento_promedio": 20,
				}, TipoDato: documents.TipoCostos},
			{Pais: "Estados Unidos", Continente: "América", Poblacion: 331e6, Capital: "Washington D.C.",
				Region: "América del Norte", Costos: map[string]float64{"hospedaje_bajo": 150, "comida_promedio": 40},
				TipoDato: documents.TipoCostos},
			{Pais: "Chile", Continente: "América", Poblacion: 19e6, Capital: "Santiago", Region: models.Unknown,
				Costos: map[string]float64{"hospedaje_bajo": 25}, TipoDato: documents.TipoCostos},
		},
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"United States", "estados unidos"},
		{"united states of america", "estados unidos"},
		{"USA", "estados unidos"},
		{"UK", "reino unido"},
		{"United Kingdom", "reino unido"},
		{"Czech Republic", "república checa"},
		{"Russia", "rusia"},
		{"Vatican City", "ciudad del vaticano"},
		{"  Japón ", "japón"},
		{"Estados Unidos", "estados unidos"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeName(tt.in); got != tt.want {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	s := fixtureSources()
	s.BigMac = append(s.BigMac, models.BigMacDoc{Pais: "usa", PrecioBigMacUSD: 9.9})

	merged, duplicates := Merge(s)

	keys := make([]string, len(merged))
	for i, m := range merged {
		keys[i] = m.Key
	}
	want := []string{"chile", "estados unidos", "francia", "japón", "kenia", "suiza"}
	if len(keys) != len(want) {
		t.Fatalf("Expected keys %v, got %v", want, keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("Key %d: got %q, want %q", i, keys[i], want[i])
		}
	}

	us := merged[1]
	if us.Envejecimiento == nil || us.Poblacion == nil || us.BigMac == nil || us.Costos == nil {
		t.Fatalf("Expected all four sources for estados unidos: %+v", us)
	}
	if us.BigMac.PrecioBigMacUSD != 5.7 {
		t.Errorf("Expected the first big mac document to win, got %v", us.BigMac.PrecioBigMacUSD)
	}
	if duplicates[SourceBigMac] != 1 || len(duplicates) != 1 {
		t.Errorf("Unexpected duplicates: %v", duplicates)
	}

	suiza := merged[5]
	if suiza.Envejecimiento != nil || suiza.Poblacion != nil || suiza.Costos != nil || suiza.BigMac == nil {
		t.Errorf("Suiza should only come from big_mac_index: %+v", suiza)
	}
}

func TestConsolidate(t *testing.T) {
	merged, _ := Merge(fixtureSources())

	us := Consolidate(merged[1])
	if us.Pais != "USA" || us.Continente != "América" || us.Capital != "Washington" {
		t.Errorf("Unexpected text columns: %+v", us)
	}
	if !us.IDPais.Valid || us.IDPais.Int64 != 2 {
		t.Errorf("Expected id 2, got %+v", us.IDPais)
	}
	if !approx(us.Poblacion.Float64, 331e6) {
		t.Errorf("Expected mean population 331e6, got %v", us.Poblacion.Float64)
	}
	if us.CostoBajoHospedaje.Float64 != 90 {
		t.Errorf("pais_poblacion cost should win over documents, got %v", us.CostoBajoHospedaje.Float64)
	}
	if !us.CostoPromedioComida.Valid || us.CostoPromedioComida.Float64 != 40 {
		t.Errorf("Missing relational cost should fall back to documents, got %+v", us.CostoPromedioComida)
	}
	if !us.PrecioBigMacUSD.Valid || us.PrecioBigMacUSD.Float64 != 5.7 {
		t.Errorf("Unexpected big mac price: %+v", us.PrecioBigMacUSD)
	}

	chile := Consolidate(merged[0])
	if chile.Capital != "Santiago" {
		t.Errorf("Unknown capital should fall back to documents, got %q", chile.Capital)
	}
	if chile.Region != "Sudamérica" {
		t.Errorf("Expected region from envejecimiento, got %q", chile.Region)
	}
	if chile.Continente != "América" {
		t.Errorf("Expected continente from documents, got %q", chile.Continente)
	}
	if !approx(chile.Poblacion.Float64, 19e6) {
		t.Errorf("Expected document population, got %+v", chile.Poblacion)
	}
	if chile.TasaDeEnvejecimiento.Valid || chile.PrecioBigMacUSD.Valid {
		t.Errorf("Expected missing rate and price: %+v", chile)
	}

	suiza := Consolidate(merged[5])
	if suiza.IDPais.Valid || suiza.Capital != "" || suiza.Poblacion.Valid {
		t.Errorf("Suiza should have no id, capital or population: %+v", suiza)
	}
	if suiza.Pais != "Suiza" || suiza.Continente != "Europa" {
		t.Errorf("Unexpected Suiza names: %+v", suiza)
	}
}

func TestClean(t *testing.T) {
	merged, _ := Merge(fixtureSources())
	candidates := make([]Candidate, 0, len(merged))
	for _, m := range merged {
		candidates = append(candidates, Consolidate(m))
	}

	records, report := Clean(candidates)
	if len(records) != 6 || report.Rows != 6 {
		t.Fatalf("Expected 6 records, got %d", len(records))
	}

	ids := make(map[int64]bool)
	for _, r := range records {
		if ids[r.IDPais] {
			t.Errorf("Duplicate id %d", r.IDPais)
		}
		ids[r.IDPais] = true
	}
	// francia, kenia and suiza are numbered after the highest existing id.
	if records[2].IDPais != 4 || records[4].IDPais != 5 || records[5].IDPais != 6 {
		t.Errorf("Unexpected generated ids: %d %d %d", records[2].IDPais, records[4].IDPais, records[5].IDPais)
	}
	if report.Nulls["id_pais"] != 3 {
		t.Errorf("Expected 3 missing ids, got %d", report.Nulls["id_pais"])
	}

	suiza := records[5]
	if suiza.Capital != models.Unknown || suiza.Region != models.Unknown {
		t.Errorf("Missing text should be %q: %+v", models.Unknown, suiza)
	}
	if suiza.Poblacion != 0 {
		t.Errorf("Missing population should be 0, got %v", suiza.Poblacion)
	}
	if !approx(suiza.TasaDeEnvejecimiento, 23.05) {
		t.Errorf("Missing rate should be the mean 23.05, got %v", suiza.TasaDeEnvejecimiento)
	}
	if !approx(suiza.CostoPromedioEntretenimiento.Float64, 35) {
		t.Errorf("Missing cost should be the mean 35, got %v", suiza.CostoPromedioEntretenimiento.Float64)
	}

	kenia := records[4]
	if !approx(kenia.PrecioBigMacUSD.Float64, (3.5+5.7+7.1)/3) {
		t.Errorf("Missing price should be the column mean, got %v", kenia.PrecioBigMacUSD.Float64)
	}

	for _, r := range records {
		if len(r.CostValues()) != 5 {
			t.Errorf("%s: expected all five values after cleaning, got %v", r.Pais, r.CostValues())
		}
	}
}

func TestCleanEntirelyMissingColumn(t *testing.T) {
	candidates := []Candidate{
		{Pais: "A", PrecioBigMacUSD: models.Float(4)},
		{Pais: "B"},
	}

	records, report := Clean(candidates)
	if records[0].IDPais != 1 || records[1].IDPais != 2 {
		t.Errorf("Expected ids from 1 with no existing ids, got %d %d", records[0].IDPais, records[1].IDPais)
	}
	if !records[1].CostoBajoHospedaje.Valid || records[1].CostoBajoHospedaje.Float64 != 0 {
		t.Errorf("Entirely missing cost column should be 0, got %+v", records[1].CostoBajoHospedaje)
	}
	if records[1].PrecioBigMacUSD.Float64 != 4 {
		t.Errorf("Expected price mean 4, got %v", records[1].PrecioBigMacUSD.Float64)
	}
	if report.Nulls["costo_bajo_hospedaje"] != 2 {
		t.Errorf("Unexpected null count: %v", report.Nulls)
	}

	empty, report := Clean(nil)
	if len(empty) != 0 || report.Rows != 0 {
		t.Errorf("Expected empty output, got %v", empty)
	}
}

func TestComputeStats(t *testing.T) {
	records := []models.IntegratedRecord{
		{Pais: "Japón", Continente: "Asia", Poblacion: 125e6, TasaDeEnvejecimiento: 29.1, PrecioBigMacUSD: models.Float(3.5)},
		{Pais: "Suiza", Continente: "Europa", Poblacion: 8.7e6, TasaDeEnvejecimiento: 19.1, PrecioBigMacUSD: models.Float(7.1)},
		{Pais: "Francia", Continente: "Europa", Poblacion: 68e6, TasaDeEnvejecimiento: 21.0},
		{Pais: "Kenia", Continente: "África", Poblacion: 54e6, TasaDeEnvejecimiento: 2.9, PrecioBigMacUSD: models.Float(2.6)},
	}

	s := ComputeStats(records)
	if s.Records != 4 {
		t.Errorf("Expected 4 records, got %d", s.Records)
	}

	wantContinents := []ContinentCount{{"Europa", 2}, {"Asia", 1}, {"África", 1}}
	if len(s.Continents) != len(wantContinents) {
		t.Fatalf("Unexpected continents: %+v", s.Continents)
	}
	for i, c := range wantContinents {
		if s.Continents[i] != c {
			t.Errorf("Continent %d: got %+v, want %+v", i, s.Continents[i], c)
		}
	}

	if !approx(s.Poblacion.Total, 255.7e6) || s.Poblacion.MaxPais != "Japón" || s.Poblacion.MinPais != "Suiza" {
		t.Errorf("Unexpected population summary: %+v", s.Poblacion)
	}
	if !approx(s.BigMac.Mean, (3.5+7.1+2.6)/3) || s.BigMac.MaxPais != "Suiza" || s.BigMac.MinPais != "Kenia" {
		t.Errorf("Unexpected big mac summary: %+v", s.BigMac)
	}
	if s.Envejecimiento.Max != 29.1 || s.Envejecimiento.Min != 2.9 {
		t.Errorf("Unexpected aging summary: %+v", s.Envejecimiento)
	}

	empty := ComputeStats(nil)
	if empty.Poblacion != nil || empty.BigMac != nil || len(empty.Continents) != 0 {
		t.Errorf("Expected empty stats, got %+v", empty)
	}
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	d := testutil.OpenSQLite(t)
	if err := schema.Create(ctx, d, schema.Flat); err != nil {
		t.Fatalf("Failed to create flat schema: %v", err)
	}

	s := fixtureSources()
	err := d.InTx(ctx, func(tx *sql.Tx) error {
		return ingest.LoadFlat(ctx, tx, d.Dialect, s.Envejecimiento, s.Poblacion)
	})
	if err != nil {
		t.Fatalf("Failed to load flat tables: %v", err)
	}

	docs := documents.NewPreparedSource(&documents.Prepared{BigMac: s.BigMac, Costos: s.Costos})
	out := filepath.Join(t.TempDir(), ingest.IntegratedFile)

	result, err := Run(ctx, d, docs, out)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Output != out || len(result.Records) != 6 {
		t.Errorf("Unexpected result: output %q, %d records", result.Output, len(result.Records))
	}
	if result.Sources[SourceEnvejecimiento] != 3 || result.Sources[SourceCostos] != 3 {
		t.Errorf("Unexpected source counts: %v", result.Sources)
	}

	written, err := ingest.ReadIntegrated(out)
	if err != nil {
		t.Fatalf("ReadIntegrated failed: %v", err)
	}
	if len(written) != 6 {
		t.Fatalf("Expected 6 written records, got %d", len(written))
	}
	japon := written[3]
	if japon.Pais != "Japón" || japon.IDPais != 1 || !approx(japon.Poblacion, 124.5e6) {
		t.Errorf("Unexpected Japón record: %+v", japon)
	}
	if japon.PrecioBigMacUSD.Float64 != 3.5 || japon.CostoBajoHospedaje.Float64 != 60 {
		t.Errorf("Unexpected Japón values: %+v", japon)
	}
}

func TestRunWithoutFlatTables(t *testing.T) {
	d := testutil.OpenSQLite(t)
	docs := documents.NewPreparedSource(&documents.Prepared{})
	if _, err := Run(context.Background(), d, docs, ""); err == nil {
		t.Error("Expected error when the flat tables do not exist")
	}
}
