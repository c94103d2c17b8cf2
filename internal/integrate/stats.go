package integrate

import (
	"sort"

	"github.com/pgEdge/pgedge-costdw/internal/models"
)

// ContinentCount is the number of countries of one continent.
type ContinentCount struct {
	Continente string `json:"continente" yaml:"continente"`
	Paises     int    `json:"paises" yaml:"paises"`
}

// Summary describes one numeric column.
type Summary struct {
	Total   float64 `json:"total" yaml:"total"`
	Mean    float64 `json:"mean" yaml:"mean"`
	Max     float64 `json:"max" yaml:"max"`
	MaxPais string  `json:"max_pais" yaml:"max_pais"`
	Min     float64 `json:"min" yaml:"min"`
	MinPais string  `json:"min_pais" yaml:"min_pais"`
}

// Stats summarizes integrated records.
type Stats struct {
	Records        int              `json:"records" yaml:"records"`
	Continents     []ContinentCount `json:"continents" yaml:"continents"`
	Poblacion      *Summary         `json:"poblacion,omitempty" yaml:"poblacion,omitempty"`
	BigMac         *Summary         `json:"precio_big_mac_usd,omitempty" yaml:"precio_big_mac_usd,omitempty"`
	Envejecimiento *Summary         `json:"tasa_de_envejecimiento,omitempty" yaml:"tasa_de_envejecimiento,omitempty"`
}

// ComputeStats returns the continent distribution and the population,
// big-mac price and aging rate summaries of records. Summaries are nil
// when no record has a value.
func ComputeStats(records []models.IntegratedRecord) *Stats {
	s := &Stats{Records: len(records), Continents: []ContinentCount{}}

	counts := make(map[string]int)
	for _, r := range records {
		counts[r.Continente]++
	}
	for c, n := range counts {
		s.Continents = append(s.Continents, ContinentCount{Continente: c, Paises: n})
	}
	sort.Slice(s.Continents, func(i, j int) bool {
		if s.Continents[i].Paises != s.Continents[j].Paises {
			return s.Continents[i].Paises > s.Continents[j].Paises
		}
		return s.Continents[i].Continente < s.Continents[j].Continente
	})

	s.Poblacion = summarize(records, func(r models.IntegratedRecord) (float64, bool) {
		return r.Poblacion, true
	})
	s.BigMac = summarize(records, func(r models.IntegratedRecord) (float64, bool) {
		return r.PrecioBigMacUSD.Float64, r.PrecioBigMacUSD.Valid
	})
	s.Envejecimiento = summarize(records, func(r models.IntegratedRecord) (float64, bool) {
		return r.TasaDeEnvejecimiento, true
	})
	return s
}

// summarize keeps the first country on ties.
func summarize(records []models.IntegratedRecord, value func(models.IntegratedRecord) (float64, bool)) *Summary {
	var s *Summary
	n := 0
	for _, r := range records {
		v, ok := value(r)
		if !ok {
			continue
		}
		if s == nil {
			s = &Summary{Max: v, MaxPais: r.Pais, Min: v, MinPais: r.Pais}
		}
		if v > s.Max {
			s.Max, s.MaxPais = v, r.Pais
		}
		if v < s.Min {
			s.Min, s.MinPais = v, r.Pais
		}
		s.Total += v
		n++
	}
	if s != nil {
		s.Mean = s.Total / float64(n)
	}
	return s
}
