package warehouse_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/pgEdge/pgedge-costdw/internal/datagen"
	"github.com/pgEdge/pgedge-costdw/internal/models"
	"github.com/pgEdge/pgedge-costdw/internal/schema"
	"github.com/pgEdge/pgedge-costdw/internal/testutil"
	"github.com/pgEdge/pgedge-costdw/internal/warehouse"
)

var loadDate = time.Date(2025, time.May, 14, 10, 30, 0, 0, time.UTC)

func sampleRecords() []models.IntegratedRecord {
	return []models.IntegratedRecord{
		{
			IDPais: 1, Pais: "Japan", Capital: "Tokyo", Continente: "Asia", Region: "Asia Oriental",
			Poblacion: 125_000_000, TasaDeEnvejecimiento: 29.1,
			PrecioBigMacUSD:              models.Float(3.5),
			CostoBajoHospedaje:           models.Float(60),
			CostoPromedioComida:          models.Float(25),
			CostoBajoTransporte:          models.Float(8),
			CostoPromedioEntretenimiento: models.Float(30),
		},
		{
			IDPais: 2, Pais: "Suiza", Capital: "Berna", Continente: "Europa", Region: "Europa Occidental",
			Poblacion: 8_700_000, TasaDeEnvejecimiento: 19.1,
			PrecioBigMacUSD:    models.Float(7.1),
			CostoBajoHospedaje: models.Float(120),
		},
		{
			IDPais: 3, Pais: "Perú", Capital: "Lima", Continente: "América", Region: "América del Sur",
			Poblacion: 33_000_000, TasaDeEnvejecimiento: 8.7,
			CostoBajoHospedaje:           models.Float(20),
			CostoPromedioComida:          models.Float(10),
			CostoBajoTransporte:          models.Float(3),
			CostoPromedioEntretenimiento: models.Float(12),
		},
	}
}

func TestLoadPopulatesStarSchema(t *testing.T) {
	ctx := context.Background()
	d := testutil.OpenSQLite(t)
	if err := schema.Create(ctx, d, schema.Star); err != nil {
		t.Fatalf("Failed to create star schema: %v", err)
	}

	result, err := warehouse.Load(ctx, d, sampleRecords(), loadDate)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if result.FechaCarga != "2025-05-14" {
		t.Errorf("Expected fecha_carga 2025-05-14, got %s", result.FechaCarga)
	}
	if result.CostosInserted != 5 {
		t.Errorf("Expected 5 cost rows, got %d", result.CostosInserted)
	}
	if result.PaisesInserted != 3 {
		t.Errorf("Expected 3 countries, got %d", result.PaisesInserted)
	}
	// 5 + 2 + 4 present values
	if result.HechosInserted != 11 {
		t.Errorf("Expected 11 facts, got %d", result.HechosInserted)
	}

	var anio, mes, dia int
	err = d.QueryRowContext(ctx, `SELECT anio, mes, dia FROM dim_tiempo WHERE id_tiempo = ?`,
		result.IDTiempo).Scan(&anio, &mes, &dia)
	if err != nil {
		t.Fatalf("Failed to read dim_tiempo: %v", err)
	}
	if anio != 2025 || mes != 5 || dia != 14 {
		t.Errorf("Unexpected date parts: %d-%d-%d", anio, mes, dia)
	}

	var desc string
	if err := d.QueryRowContext(ctx, `SELECT descripcion FROM dim_costos WHERE tipo_costo = 'big_mac'`).Scan(&desc); err != nil {
		t.Fatalf("Failed to read dim_costos: %v", err)
	}
	if desc != "Precio del Big Mac en USD" {
		t.Errorf("Unexpected big_mac description: %q", desc)
	}

	v, err := warehouse.Verify(ctx, d)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !v.OK() {
		t.Errorf("Expected no orphan facts, got %d", v.Orphans)
	}
	if v.Paises != 3 || v.Costos != 5 || v.Tiempos != 1 || v.Hechos != 11 {
		t.Errorf("Unexpected counts: %+v", v)
	}
	if v.PerCost[models.CostBigMac] != 2 || v.PerCost[models.CostHospedaje] != 3 {
		t.Errorf("Unexpected facts per cost: %v", v.PerCost)
	}
}

func TestLoadWithConfigBatchSizes(t *testing.T) {
	tests := []struct {
		name      string
		batchSize int
		wantError bool
	}{
		{"one row per insert", 1, false},
		{"partial last batch", 2, false},
		{"single batch", 1000, false},
		{"zero", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			d := testutil.OpenSQLite(t)
			if err := schema.Create(ctx, d, schema.Star); err != nil {
				t.Fatalf("Failed to create star schema: %v", err)
			}

			cfg := datagen.DefaultBatchConfig()
			cfg.BatchSize = tt.batchSize
			result, err := warehouse.LoadWithConfig(ctx, d, sampleRecords(), loadDate, cfg)
			if tt.wantError {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadWithConfig failed: %v", err)
			}
			if result.PaisesInserted != 3 || result.HechosInserted != 11 {
				t.Errorf("Unexpected load result: %+v", result)
			}

			v, err := warehouse.Verify(ctx, d)
			if err != nil {
				t.Fatalf("Verify failed: %v", err)
			}
			if v.Hechos != 11 || !v.OK() {
				t.Errorf("Unexpected verification: %+v", v)
			}
		})
	}
}

func TestLoadTwiceReusesDimensions(t *testing.T) {
	ctx := context.Background()
	d := testutil.OpenSQLite(t)
	if err := schema.Create(ctx, d, schema.Star); err != nil {
		t.Fatalf("Failed to create star schema: %v", err)
	}

	first, err := warehouse.Load(ctx, d, sampleRecords(), loadDate)
	if err != nil {
		t.Fatalf("First load failed: %v", err)
	}
	second, err := warehouse.Load(ctx, d, sampleRecords(), loadDate.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("Second load failed: %v", err)
	}

	if second.IDTiempo != first.IDTiempo {
		t.Errorf("Same date should reuse dim_tiempo row: %d != %d", second.IDTiempo, first.IDTiempo)
	}
	if second.CostosInserted != 0 || second.PaisesInserted != 0 {
		t.Errorf("Dimensions should not be re-inserted: %+v", second)
	}
	if second.HechosInserted != first.HechosInserted {
		t.Errorf("Facts are appended per batch: %d != %d", second.HechosInserted, first.HechosInserted)
	}

	third, err := warehouse.Load(ctx, d, sampleRecords(), loadDate.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("Third load failed: %v", err)
	}
	if third.IDTiempo != first.IDTiempo+1 {
		t.Errorf("New date should get the next id, got %d", third.IDTiempo)
	}

	v, err := warehouse.Verify(ctx, d)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if v.Tiempos != 2 || v.Paises != 3 || v.Hechos != 33 || !v.OK() {
		t.Errorf("Unexpected verification after three loads: %+v", v)
	}
}

func TestLoadFactsRejectsMissingDimension(t *testing.T) {
	ctx := context.Background()
	d := testutil.OpenSQLite(t)
	if err := schema.Create(ctx, d, schema.Star); err != nil {
		t.Fatalf("Failed to create star schema: %v", err)
	}

	l := warehouse.NewLoader(d, d.Dialect)
	if _, err := l.LoadCostDimension(ctx); err != nil {
		t.Fatalf("LoadCostDimension failed: %v", err)
	}
	idTiempo, err := l.LoadTimeDimension(ctx, loadDate)
	if err != nil {
		t.Fatalf("LoadTimeDimension failed: %v", err)
	}

	// dim_pais is empty, so every fact violates its foreign key.
	if _, err := l.LoadFacts(ctx, sampleRecords(), idTiempo); err == nil {
		t.Fatal("Expected foreign key violation for facts without countries")
	}

	var n int
	if err := d.QueryRowContext(ctx, `SELECT COUNT(*) FROM fact_economicos`).Scan(&n); err != nil {
		t.Fatalf("Failed to count facts: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected no facts, got %d", n)
	}
}

func TestLoadRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	d := testutil.OpenSQLite(t)
	if err := schema.Create(ctx, d, schema.Star); err != nil {
		t.Fatalf("Failed to create star schema: %v", err)
	}

	records := sampleRecords()
	if _, err := d.ExecContext(ctx, `DROP TABLE fact_economicos`); err != nil {
		t.Fatalf("Failed to drop fact table: %v", err)
	}

	if _, err := warehouse.Load(ctx, d, records, loadDate); err == nil {
		t.Fatal("Expected load to fail without fact table")
	}

	var n int
	if err := d.QueryRowContext(ctx, `SELECT COUNT(*) FROM dim_pais`).Scan(&n); err != nil {
		t.Fatalf("Failed to count countries: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected rollback to leave dim_pais empty, got %d rows", n)
	}
}

func TestLoadSkipsMissingValues(t *testing.T) {
	ctx := context.Background()
	d := testutil.OpenSQLite(t)
	if err := schema.Create(ctx, d, schema.Star); err != nil {
		t.Fatalf("Failed to create star schema: %v", err)
	}

	records := []models.IntegratedRecord{{
		IDPais: 7, Pais: "Atlantis", Capital: models.Unknown, Continente: models.Unknown, Region: models.Unknown,
		PrecioBigMacUSD: sql.NullFloat64{},
	}}

	result, err := warehouse.Load(ctx, d, records, loadDate)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if result.PaisesInserted != 1 || result.HechosInserted != 0 {
		t.Errorf("Expected one country and no facts, got %+v", result)
	}
}

func TestVerifyCountsOrphans(t *testing.T) {
	ctx := context.Background()
	d := testutil.OpenSQLite(t)
	if err := schema.Create(ctx, d, schema.Star); err != nil {
		t.Fatalf("Failed to create star schema: %v", err)
	}
	if _, err := warehouse.Load(ctx, d, sampleRecords(), loadDate); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Bypass enforcement to plant an orphan the way a store without
	// foreign keys could hold one.
	if _, err := d.ExecContext(ctx, `PRAGMA foreign_keys = OFF`); err != nil {
		t.Fatalf("Failed to disable foreign keys: %v", err)
	}
	if _, err := d.ExecContext(ctx,
		`INSERT INTO fact_economicos (id_pais, id_costo, id_tiempo, valor) VALUES (99, 1, 1, 1.0)`); err != nil {
		t.Fatalf("Failed to insert orphan: %v", err)
	}

	v, err := warehouse.Verify(ctx, d)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if v.Orphans != 1 || v.OK() {
		t.Errorf("Expected one orphan fact, got %d", v.Orphans)
	}
}
