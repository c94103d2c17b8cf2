package reports

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/pgEdge/pgedge-costdw/internal/db"
)

// Definition describes a registered report.
type Definition struct {
	Name        string
	Title       string
	Description string
	SQL         string
	Columns     []string

	// Run executes the report and returns its rows.
	Run func(ctx context.Context, q db.Querier) (*Result, error)

	order int
}

// Result is the output of one report run. Rows holds the table cells in
// Columns order; Data holds the typed rows for structured output.
type Result struct {
	Name    string   `json:"name" yaml:"name"`
	Title   string   `json:"title" yaml:"title"`
	Columns []string `json:"columns" yaml:"columns"`
	Rows    [][]any  `json:"-" yaml:"-"`
	Data    any      `json:"rows" yaml:"rows"`
}

var (
	registry = make(map[string]Definition)
	mu       sync.RWMutex
)

// Register adds a report to the registry. Reports are listed in
// registration order.
func Register(def Definition) {
	mu.Lock()
	defer mu.Unlock()
	if existing, ok := registry[def.Name]; ok {
		def.order = existing.order
	} else {
		def.order = len(registry)
	}
	registry[def.Name] = def
}

// Get retrieves a report by name.
func Get(name string) (Definition, error) {
	mu.RLock()
	defer mu.RUnlock()

	def, ok := registry[name]
	if !ok {
		return Definition{}, fmt.Errorf("unknown report: %s", name)
	}
	return def, nil
}

// List returns all registered report names in registration order.
func List() []string {
	all := All()
	names := make([]string, 0, len(all))
	for _, def := range all {
		names = append(names, def.Name)
	}
	return names
}

// All returns all registered reports in registration order.
func All() []Definition {
	mu.RLock()
	defer mu.RUnlock()

	defs := make([]Definition, 0, len(registry))
	for _, def := range registry {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].order < defs[j].order })
	return defs
}

// Select resolves names to definitions, returning every report when names
// is empty.
func Select(names []string) ([]Definition, error) {
	if len(names) == 0 {
		return All(), nil
	}
	defs := make([]Definition, 0, len(names))
	for _, name := range names {
		def, err := Get(name)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// define builds a Definition around a typed report function.
func define[T Row](name, title, description, stmt string, columns []string,
	fn func(context.Context, db.Querier) ([]T, error)) Definition {
	return Definition{
		Name:        name,
		Title:       title,
		Description: description,
		SQL:         stmt,
		Columns:     columns,
		Run: func(ctx context.Context, q db.Querier) (*Result, error) {
			rows, err := fn(ctx, q)
			if err != nil {
				return nil, fmt.Errorf("report %s: %w", name, err)
			}
			cells := make([][]any, 0, len(rows))
			for _, r := range rows {
				cells = append(cells, r.Values())
			}
			return &Result{
				Name:    name,
				Title:   title,
				Columns: columns,
				Rows:    cells,
				Data:    rows,
			}, nil
		},
	}
}

func init() {
	Register(define("top_big_mac",
		"Top 5 países con precio de Big Mac más alto",
		"Five highest big-mac prices",
		TopBigMacSQL,
		[]string{"pais", "continente", "valor"},
		TopBigMac))

	Register(define("avg_lodging_by_continent",
		"Promedio de costos de hospedaje por continente",
		"Average low lodging cost per continent",
		AvgLodgingByContinentSQL,
		[]string{"continente", "promedio"},
		AvgLodgingByContinent))

	Register(define("big_mac_vs_aging",
		"Países con alto precio de Big Mac y su tasa de envejecimiento",
		"Ten highest big-mac prices with the country's aging rate",
		BigMacVsAgingSQL,
		[]string{"pais", "continente", "precio_big_mac", "tasa_de_envejecimiento"},
		BigMacVsAging))

	Register(define("cost_pivot_by_continent",
		"Comparativa de costos turísticos por continente",
		"Average of each tourist cost category per continent",
		CostPivotSQL,
		[]string{"continente", "avg_hospedaje", "avg_comida", "avg_transporte", "avg_entretenimiento"},
		CostPivot))

	Register(define("cheapest_countries",
		"Países más económicos para turistas",
		"Ten countries with the lowest total tourist cost",
		CheapestCountriesSQL,
		[]string{"pais", "continente", "costo_total"},
		CheapestCountries))

	Register(define("population_vs_big_mac",
		"Relación entre población y precio de Big Mac",
		"Big-mac price of the ten most populous countries",
		PopulationBigMacSQL,
		[]string{"pais", "poblacion", "precio_big_mac"},
		PopulationVsBigMac))
}
