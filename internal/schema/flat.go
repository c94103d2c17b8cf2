package schema

// Flat, denormalized tables loaded straight from the per-country CSV files.

const createPaisEnvejecimientoSQLite = `
CREATE TABLE pais_envejecimiento (
    id_pais                INTEGER PRIMARY KEY,
    nombre_pais            TEXT NOT NULL,
    capital                TEXT,
    continente             TEXT,
    region                 TEXT,
    poblacion              REAL,
    tasa_de_envejecimiento REAL
)`

const createPaisPoblacionSQLite = `
CREATE TABLE pais_poblacion (
    _id                            TEXT PRIMARY KEY,
    continente                     TEXT,
    pais                           TEXT NOT NULL,
    poblacion                      INTEGER,
    costo_bajo_hospedaje           REAL,
    costo_promedio_comida          REAL,
    costo_bajo_transporte          REAL,
    costo_promedio_entretenimiento REAL
)`

const createPaisEnvejecimientoPostgres = `
CREATE TABLE pais_envejecimiento (
    id_pais                INTEGER PRIMARY KEY,
    nombre_pais            TEXT NOT NULL,
    capital                TEXT,
    continente             TEXT,
    region                 TEXT,
    poblacion              DOUBLE PRECISION,
    tasa_de_envejecimiento DOUBLE PRECISION
)`

const createPaisPoblacionPostgres = `
CREATE TABLE pais_poblacion (
    _id                            TEXT PRIMARY KEY,
    continente                     TEXT,
    pais                           TEXT NOT NULL,
    poblacion                      BIGINT,
    costo_bajo_hospedaje           DOUBLE PRECISION,
    costo_promedio_comida          DOUBLE PRECISION,
    costo_bajo_transporte          DOUBLE PRECISION,
    costo_promedio_entretenimiento DOUBLE PRECISION
)`

var flatTables = []string{"pais_envejecimiento", "pais_poblacion"}
