package warehouse

import (
	"context"
	"fmt"

	"github.com/pgEdge/pgedge-costdw/internal/db"
)

// orphanFactsSQL counts facts with at least one unresolved foreign key.
const orphanFactsSQL = `
SELECT COUNT(*)
FROM fact_economicos f
LEFT JOIN dim_pais p ON f.id_pais = p.id_pais
LEFT JOIN dim_costos c ON f.id_costo = c.id_costo
LEFT JOIN dim_tiempo t ON f.id_tiempo = t.id_tiempo
WHERE p.id_pais IS NULL OR c.id_costo IS NULL OR t.id_tiempo IS NULL`

const factsPerCostSQL = `
SELECT c.tipo_costo, COUNT(f.id_hecho)
FROM dim_costos c
LEFT JOIN fact_economicos f ON f.id_costo = c.id_costo
GROUP BY c.id_costo, c.tipo_costo
ORDER BY c.id_costo`

// Verification holds the post-load checks of the star schema.
type Verification struct {
	Paises  int64            `json:"dim_pais" yaml:"dim_pais"`
	Costos  int64            `json:"dim_costos" yaml:"dim_costos"`
	Tiempos int64            `json:"dim_tiempo" yaml:"dim_tiempo"`
	Hechos  int64            `json:"fact_economicos" yaml:"fact_economicos"`
	PerCost map[string]int64 `json:"facts_per_cost" yaml:"facts_per_cost"`

	// Orphans counts facts whose foreign keys do not resolve; it must be 0.
	Orphans int64 `json:"orphan_facts" yaml:"orphan_facts"`
}

// OK reports whether referential integrity holds.
func (v *Verification) OK() bool {
	return v.Orphans == 0
}

// Verify counts the rows of every star table and the orphan facts.
func Verify(ctx context.Context, q db.Querier) (*Verification, error) {
	v := &Verification{PerCost: make(map[string]int64)}

	counts := []struct {
		table string
		dest  *int64
	}{
		{"dim_pais", &v.Paises},
		{"dim_costos", &v.Costos},
		{"dim_tiempo", &v.Tiempos},
		{"fact_economicos", &v.Hechos},
	}
	for _, c := range counts {
		if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+c.table).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", c.table, err)
		}
	}

	if err := q.QueryRowContext(ctx, orphanFactsSQL).Scan(&v.Orphans); err != nil {
		return nil, fmt.Errorf("failed to count orphan facts: %w", err)
	}

	rows, err := q.QueryContext(ctx, factsPerCostSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to count facts per cost: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tipo string
		var n int64
		if err := rows.Scan(&tipo, &n); err != nil {
			return nil, fmt.Errorf("failed to scan facts per cost: %w", err)
		}
		v.PerCost[tipo] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating facts per cost: %w", err)
	}

	return v, nil
}
