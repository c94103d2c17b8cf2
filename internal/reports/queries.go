//-------------------------------------------------------------------------
//
// pgEdge Cost Warehouse
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package reports

// TopBigMacSQL lists the five highest big-mac prices.
const TopBigMacSQL = `
SELECT p.pais, p.continente, f.valor
FROM fact_economicos f
JOIN dim_pais p ON f.id_pais = p.id_pais
JOIN dim_costos c ON f.id_costo = c.id_costo
WHERE c.tipo_costo = 'big_mac'
ORDER BY f.valor DESC, p.pais ASC
LIMIT 5`

// AvgLodgingByContinentSQL averages the low lodging cost per continent.
const AvgLodgingByContinentSQL = `
SELECT p.continente, AVG(f.valor) AS promedio
FROM fact_economicos f
JOIN dim_pais p ON f.id_pais = p.id_pais
JOIN dim_costos c ON f.id_costo = c.id_costo
WHERE c.tipo_costo = 'hospedaje'
GROUP BY p.continente
ORDER BY promedio DESC, p.continente ASC`

// BigMacVsAgingSQL pairs the ten highest big-mac prices with the
// country's aging rate.
const BigMacVsAgingSQL = `
SELECT p.pais, p.continente, f.valor AS precio_big_mac, p.tasa_de_envejecimiento
FROM fact_economicos f
JOIN dim_pais p ON f.id_pais = p.id_pais
JOIN dim_costos c ON f.id_costo = c.id_costo
WHERE c.tipo_costo = 'big_mac'
ORDER BY f.valor DESC, p.pais ASC
LIMIT 10`

// CostPivotSQL averages each tourist cost category per continent, one
// column per category.
const CostPivotSQL = `
SELECT
    p.continente,
    AVG(CASE WHEN c.tipo_costo = 'hospedaje' THEN f.valor ELSE NULL END) AS avg_hospedaje,
    AVG(CASE WHEN c.tipo_costo = 'comida' THEN f.valor ELSE NULL END) AS avg_comida,
    AVG(CASE WHEN c.tipo_costo = 'transporte' THEN f.valor ELSE NULL END) AS avg_transporte,
    AVG(CASE WHEN c.tipo_costo = 'entretenimiento' THEN f.valor ELSE NULL END) AS avg_entretenimiento
FROM fact_economicos f
JOIN dim_pais p ON f.id_pais = p.id_pais
JOIN dim_costos c ON f.id_costo = c.id_costo
GROUP BY p.continente
ORDER BY avg_hospedaje DESC NULLS LAST, p.continente ASC`

// CheapestCountriesSQL sums the four tourist cost categories per country
// and lists the ten cheapest.
const CheapestCountriesSQL = `
SELECT p.pais, p.continente, SUM(f.valor) AS costo_total
FROM fact_economicos f
JOIN dim_pais p ON f.id_pais = p.id_pais
JOIN dim_costos c ON f.id_costo = c.id_costo
WHERE c.tipo_costo IN ('hospedaje', 'comida', 'transporte', 'entretenimiento')
GROUP BY p.pais, p.continente
ORDER BY costo_total ASC, p.pais ASC
LIMIT 10`

// PopulationBigMacSQL lists the big-mac price of the ten most populous
// countries with a known population.
const PopulationBigMacSQL = `
SELECT p.pais, p.poblacion, f.valor AS precio_big_mac
FROM fact_economicos f
JOIN dim_pais p ON f.id_pais = p.id_pais
JOIN dim_costos c ON f.id_costo = c.id_costo
WHERE c.tipo_costo = 'big_mac'
  AND p.poblacion > 0
ORDER BY p.poblacion DESC, p.pais ASC
LIMIT 10`
