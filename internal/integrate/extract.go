package integrate

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pgEdge/pgedge-costdw/internal/db"
	"github.com/pgEdge/pgedge-costdw/internal/logging"
	"github.com/pgEdge/pgedge-costdw/internal/models"
)

const (
	selectEnvejecimientoSQL = `SELECT id_pais, nombre_pais, capital, continente, region, poblacion, tasa_de_envejecimiento
FROM pais_envejecimiento
ORDER BY id_pais`

	selectPoblacionSQL = `SELECT _id, continente, pais, poblacion,
       costo_bajo_hospedaje, costo_promedio_comida, costo_bajo_transporte, costo_promedio_entretenimiento
FROM pais_poblacion
ORDER BY _id`
)

// ExtractRelational reads both flat tables.
func ExtractRelational(ctx context.Context, q db.Querier) ([]models.Envejecimiento, []models.Poblacion, error) {
	env, err := extractEnvejecimiento(ctx, q)
	if err != nil {
		return nil, nil, err
	}
	pob, err := extractPoblacion(ctx, q)
	if err != nil {
		return nil, nil, err
	}

	logging.Info().
		Int("pais_envejecimiento", len(env)).
		Int("pais_poblacion", len(pob)).
		Msg("Extracted relational data")
	return env, pob, nil
}

func extractEnvejecimiento(ctx context.Context, q db.Querier) ([]models.Envejecimiento, error) {
	rows, err := q.QueryContext(ctx, selectEnvejecimientoSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query pais_envejecimiento: %w", err)
	}
	defer rows.Close()

	out := []models.Envejecimiento{}
	for rows.Next() {
		var r models.Envejecimiento
		var nombre, capital, continente, region sql.NullString
		if err := rows.Scan(&r.IDPais, &nombre, &capital, &continente, &region,
			&r.Poblacion, &r.TasaDeEnvejecimiento); err != nil {
			return nil, fmt.Errorf("failed to scan pais_envejecimiento: %w", err)
		}
		r.NombrePais, r.Capital, r.Continente, r.Region = nombre.String, capital.String, continente.String, region.String
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read pais_envejecimiento: %w", err)
	}
	return out, nil
}

func extractPoblacion(ctx context.Context, q db.Querier) ([]models.Poblacion, error) {
	rows, err := q.QueryContext(ctx, selectPoblacionSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query pais_poblacion: %w", err)
	}
	defer rows.Close()

	out := []models.Poblacion{}
	for rows.Next() {
		var r models.Poblacion
		var continente, pais sql.NullString
		if err := rows.Scan(&r.ID, &continente, &pais, &r.Poblacion,
			&r.CostoBajoHospedaje, &r.CostoPromedioComida,
			&r.CostoBajoTransporte, &r.CostoPromedioEntretenimiento); err != nil {
			return nil, fmt.Errorf("failed to scan pais_poblacion: %w", err)
		}
		r.Continente, r.Pais = continente.String, pais.String
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read pais_poblacion: %w", err)
	}
	return out, nil
}
