package models

import (
	"database/sql"
	"testing"
)

func TestCostTypeID(t *testing.T) {
	tests := []struct {
		name string
		id   int
		ok   bool
	}{
		{CostBigMac, 1, true},
		{CostHospedaje, 2, true},
		{CostComida, 3, true},
		{CostTransporte, 4, true},
		{CostEntretenimiento, 5, true},
		{"Big_Mac", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		id, ok := CostTypeID(tt.name)
		if id != tt.id || ok != tt.ok {
			t.Errorf("CostTypeID(%q) = (%d, %v), want (%d, %v)", tt.name, id, ok, tt.id, tt.ok)
		}
	}
}

func TestCostValuesSkipsMissing(t *testing.T) {
	r := IntegratedRecord{
		PrecioBigMacUSD:     Float(5.5),
		CostoPromedioComida: Float(20),
		CostoBajoTransporte: sql.NullFloat64{},
	}

	values := r.CostValues()
	if len(values) != 2 {
		t.Fatalf("Expected 2 values, got %d: %+v", len(values), values)
	}
	if values[0].CostID != 1 || values[0].Valor != 5.5 {
		t.Errorf("Unexpected first value: %+v", values[0])
	}
	if values[1].CostID != 3 || values[1].Valor != 20 {
		t.Errorf("Unexpected second value: %+v", values[1])
	}
}

func TestTouristCostTypesExcludeBigMac(t *testing.T) {
	if len(TouristCostTypes) != 4 {
		t.Fatalf("Expected 4 tourist categories, got %d", len(TouristCostTypes))
	}
	for _, c := range TouristCostTypes {
		if c == CostBigMac {
			t.Error("big_mac must not be a tourist category")
		}
		if _, ok := CostTypeID(c); !ok {
			t.Errorf("Tourist category %s missing from CostTypes", c)
		}
	}
}
