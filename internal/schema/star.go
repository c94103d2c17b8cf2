package schema

// Star schema: country, cost category and load date dimensions referenced
// by a fact table of measured values.

const createDimPaisSQLite = `
CREATE TABLE dim_pais (
    id_pais                INTEGER PRIMARY KEY,
    pais                   TEXT NOT NULL,
    capital                TEXT,
    continente             TEXT,
    region                 TEXT,
    poblacion              REAL,
    tasa_de_envejecimiento REAL
)`

const createDimCostosSQLite = `
CREATE TABLE dim_costos (
    id_costo    INTEGER PRIMARY KEY,
    tipo_costo  TEXT NOT NULL,
    descripcion TEXT
)`

const createDimTiempoSQLite = `
CREATE TABLE dim_tiempo (
    id_tiempo   INTEGER PRIMARY KEY,
    fecha_carga TEXT NOT NULL,
    anio        INTEGER,
    mes         INTEGER,
    dia         INTEGER
)`

const createFactEconomicosSQLite = `
CREATE TABLE fact_economicos (
    id_hecho  INTEGER PRIMARY KEY AUTOINCREMENT,
    id_pais   INTEGER NOT NULL,
    id_costo  INTEGER NOT NULL,
    id_tiempo INTEGER NOT NULL,
    valor     REAL,
    FOREIGN KEY (id_pais) REFERENCES dim_pais (id_pais),
    FOREIGN KEY (id_costo) REFERENCES dim_costos (id_costo),
    FOREIGN KEY (id_tiempo) REFERENCES dim_tiempo (id_tiempo)
)`

const createDimPaisPostgres = `
CREATE TABLE dim_pais (
    id_pais                INTEGER PRIMARY KEY,
    pais                   TEXT NOT NULL,
    capital                TEXT,
    continente             TEXT,
    region                 TEXT,
    poblacion              DOUBLE PRECISION,
    tasa_de_envejecimiento DOUBLE PRECISION
)`

const createDimCostosPostgres = `
CREATE TABLE dim_costos (
    id_costo    INTEGER PRIMARY KEY,
    tipo_costo  TEXT NOT NULL,
    descripcion TEXT
)`

const createDimTiempoPostgres = `
CREATE TABLE dim_tiempo (
    id_tiempo   INTEGER PRIMARY KEY,
    fecha_carga TEXT NOT NULL,
    anio        INTEGER,
    mes         INTEGER,
    dia         INTEGER
)`

const createFactEconomicosPostgres = `
CREATE TABLE fact_economicos (
    id_hecho  BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    id_pais   INTEGER NOT NULL REFERENCES dim_pais (id_pais),
    id_costo  INTEGER NOT NULL REFERENCES dim_costos (id_costo),
    id_tiempo INTEGER NOT NULL REFERENCES dim_tiempo (id_tiempo),
    valor     DOUBLE PRECISION
)`

// Indexes for the report joins; valid on both dialects.
var starIndexes = []string{
	`CREATE INDEX idx_fact_economicos_pais ON fact_economicos (id_pais)`,
	`CREATE INDEX idx_fact_economicos_costo ON fact_economicos (id_costo)`,
	`CREATE INDEX idx_dim_costos_tipo ON dim_costos (tipo_costo)`,
}

// Dependency order: dimensions before the fact table.
var starTables = []string{"dim_pais", "dim_costos", "dim_tiempo", "fact_economicos"}
