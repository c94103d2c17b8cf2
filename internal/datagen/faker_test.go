//-------------------------------------------------------------------------
//
// pgEdge Cost Warehouse
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package datagen

import (
	"math"
	"testing"
)

func TestNewFaker(t *testing.T) {
	f := NewFaker()
	if f == nil {
		t.Fatal("NewFaker returned nil")
	}
	if f.faker == nil {
		t.Fatal("faker field is nil")
	}
}

func TestNewFakerWithSeed(t *testing.T) {
	seed := uint64(12345)
	f1 := NewFakerWithSeed(seed)
	f2 := NewFakerWithSeed(seed)

	// Same seed should produce same sequence
	for i := 0; i < 10; i++ {
		v1 := f1.Int(0, 1000)
		v2 := f2.Int(0, 1000)
		if v1 != v2 {
			t.Errorf("Same seed produced different values: %d != %d", v1, v2)
		}
	}
}

func TestFakerCountryAndCity(t *testing.T) {
	f := NewFaker()
	if f.Country() == "" {
		t.Error("Country returned empty string")
	}
	if f.City() == "" {
		t.Error("City returned empty string")
	}
}

func TestFakerPrice(t *testing.T) {
	f := NewFakerWithSeed(7)
	for i := 0; i < 100; i++ {
		p := f.Price(1.5, 8)
		if p < 1.5 || p > 8 {
			t.Fatalf("Price out of range: %f", p)
		}
		if math.Abs(p*100-math.Round(p*100)) > 1e-6 {
			t.Fatalf("Price not rounded to cents: %f", p)
		}
	}
}

func TestFakerChance(t *testing.T) {
	f := NewFakerWithSeed(3)
	for i := 0; i < 50; i++ {
		if f.Chance(0) {
			t.Fatal("Chance(0) returned true")
		}
		if !f.Chance(1.01) {
			t.Fatal("Chance above 1 returned false")
		}
	}
}

func TestChoose(t *testing.T) {
	f := NewFaker()
	items := []string{"a", "b", "c", "d", "e"}

	for i := 0; i < 100; i++ {
		chosen := Choose(f, items)
		found := false
		for _, item := range items {
			if item == chosen {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Choose returned item not in slice: %s", chosen)
		}
	}
}

func TestChooseEmpty(t *testing.T) {
	f := NewFaker()
	var items []string

	chosen := Choose(f, items)
	if chosen != "" {
		t.Errorf("Choose on empty slice should return zero value, got: %s", chosen)
	}
}

func TestChooseWeighted(t *testing.T) {
	f := NewFakerWithSeed(42)
	items := []string{"a", "b", "c"}
	weights := []int{1, 2, 7} // c should be chosen ~70% of the time

	counts := make(map[string]int)
	iterations := 1000

	for i := 0; i < iterations; i++ {
		chosen := ChooseWeighted(f, items, weights)
		counts[chosen]++
	}

	// c should be most common
	if counts["c"] < counts["a"] || counts["c"] < counts["b"] {
		t.Errorf("Weighted choice distribution unexpected: %v", counts)
	}
}

func TestChooseWeightedEmpty(t *testing.T) {
	f := NewFaker()
	var items []string
	var weights []int

	chosen := ChooseWeighted(f, items, weights)
	if chosen != "" {
		t.Errorf("ChooseWeighted on empty slices should return zero value, got: %s", chosen)
	}
}

func BenchmarkChooseWeighted(b *testing.B) {
	f := NewFaker()
	weights := []int{25, 30, 25, 15, 5}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ChooseWeighted(f, Continents, weights)
	}
}
