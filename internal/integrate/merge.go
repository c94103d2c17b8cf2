package integrate

import (
	"sort"

	"github.com/pgEdge/pgedge-costdw/internal/models"
)

// Source names used in merge statistics.
const (
	SourceEnvejecimiento = "pais_envejecimiento"
	SourcePoblacion      = "pais_poblacion"
	SourceBigMac         = "big_mac_index"
	SourceCostos         = "costos_turisticos"
)

// Sources holds the extracted input of the integration stage.
type Sources struct {
	Envejecimiento []models.Envejecimiento
	Poblacion      []models.Poblacion
	BigMac         []models.BigMacDoc
	Costos         []models.CostosDoc
}

// Counts returns the number of rows per source.
func (s *Sources) Counts() map[string]int {
	return map[string]int{
		SourceEnvejecimiento: len(s.Envejecimiento),
		SourcePoblacion:      len(s.Poblacion),
		SourceBigMac:         len(s.BigMac),
		SourceCostos:         len(s.Costos),
	}
}

// Merged is one row of the outer merge. A nil source means the country
// was absent from it.
type Merged struct {
	Key            string
	Envejecimiento *models.Envejecimiento
	Poblacion      *models.Poblacion
	BigMac         *models.BigMacDoc
	Costos         *models.CostosDoc
}

// Merge full-outer joins the four sources on the normalized country name.
// Rows come back ordered by key. When a source holds a name twice only the
// first row is used; the number of ignored rows per source is returned.
func Merge(s *Sources) ([]Merged, map[string]int) {
	index := make(map[string]int)
	var merged []Merged
	duplicates := make(map[string]int)

	slot := func(name string) *Merged {
		key := NormalizeName(name)
		i, ok := index[key]
		if !ok {
			i = len(merged)
			index[key] = i
			merged = append(merged, Merged{Key: key})
		}
		return &merged[i]
	}

	for i := range s.Envejecimiento {
		m := slot(s.Envejecimiento[i].NombrePais)
		if m.Envejecimiento != nil {
			duplicates[SourceEnvejecimiento]++
			continue
		}
		m.Envejecimiento = &s.Envejecimiento[i]
	}
	for i := range s.Poblacion {
		m := slot(s.Poblacion[i].Pais)
		if m.Poblacion != nil {
			duplicates[SourcePoblacion]++
			continue
		}
		m.Poblacion = &s.Poblacion[i]
	}
	for i := range s.BigMac {
		m := slot(s.BigMac[i].Pais)
		if m.BigMac != nil {
			duplicates[SourceBigMac]++
			continue
		}
		m.BigMac = &s.BigMac[i]
	}
	for i := range s.Costos {
		m := slot(s.Costos[i].Pais)
		if m.Costos != nil {
			duplicates[SourceCostos]++
			continue
		}
		m.Costos = &s.Costos[i]
	}

	sort.Slice(merged, func(i, j int) bool { return merged[i].Key < merged[j].Key })
	return merged, duplicates
}
