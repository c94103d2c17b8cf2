//go:build integration

// Runs the relational and integration stages against PostgreSQL.
// Run with: go test -tags=integration ./internal/integrate/...

package integrate

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pgEdge/pgedge-costdw/internal/documents"
	"github.com/pgEdge/pgedge-costdw/internal/ingest"
	"github.com/pgEdge/pgedge-costdw/internal/testutil"
)

const pgEnvejecimientoCSV = `id_pais,nombre_pais,capital,continente,region,poblacion,tasa_de_envejecimiento
1,Japón,Tokio,Asia,Asia Oriental,125000000,29.1
2,USA,Washington,América,América del Norte,330000000,17.0
3,Chile,,América,Sudamérica,,
`

const pgPoblacionCSV = `_id,continente,pais,poblacion,costo_bajo_hospedaje,costo_promedio_comida,costo_bajo_transporte,costo_promedio_entretenimiento
a1,Asia,Japón,124000000,60,25,10,30
a2,América,Estados Unidos,332000000,90,,20,50
`

func TestPostgresRelationalAndIntegrate(t *testing.T) {
	d := testutil.OpenPostgres(t, "integrate")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dir := t.TempDir()
	envPath := filepath.Join(dir, ingest.EnvejecimientoFile)
	pobPath := filepath.Join(dir, ingest.PoblacionFile)
	for path, content := range map[string]string{envPath: pgEnvejecimientoCSV, pobPath: pgPoblacionCSV} {
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", path, err)
		}
	}

	if _, err := ingest.Run(ctx, d, envPath, pobPath); err != nil {
		t.Fatalf("Relational stage failed: %v", err)
	}

	fixture := fixtureSources()
	docs := documents.NewPreparedSource(&documents.Prepared{BigMac: fixture.BigMac, Costos: fixture.Costos})
	out := filepath.Join(dir, ingest.IntegratedFile)

	result, err := Run(ctx, d, docs, out)
	if err != nil {
		t.Fatalf("Integration stage failed: %v", err)
	}
	if len(result.Records) != 5 {
		t.Fatalf("Expected 5 integrated records, got %d", len(result.Records))
	}

	// The relational stage already filled the missing comida cost with
	// the column mean, so the document value is not used.
	us := result.Records[1]
	if us.Pais != "USA" || !approx(us.Poblacion, 331e6) || us.CostoPromedioComida.Float64 != 25 {
		t.Errorf("Unexpected merged record: %+v", us)
	}
}
