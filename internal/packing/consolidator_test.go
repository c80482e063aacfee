package packing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestConsolidateTotals(t *testing.T) {
	items := []Item{
		{UnitPrice: decimal.RequireFromString("25.00"), Quantity: 2, WeightKg: 1.5},
		{UnitPrice: decimal.RequireFromString("9.99"), Quantity: 1, WeightKg: 0.25, LengthCm: 30, WidthCm: 20, HeightCm: 10},
	}
	pkg, err := Consolidator{}.Consolidate(items)
	if err != nil {
		t.Fatalf("consolidate: %v", err)
	}
	if pkg.TotalWeightKg != 3.25 {
		t.Fatalf("expected total weight 3.25, got %f", pkg.TotalWeightKg)
	}
	// 30*20*10 = 6000 cm³ / 5000 = 1.2 kg volumetric.
	if pkg.VolumetricWeightKg != 1.2 {
		t.Fatalf("expected volumetric weight 1.2, got %f", pkg.VolumetricWeightKg)
	}
	if pkg.BillableWeightKg != 3.25 {
		t.Fatalf("expected billable weight 3.25, got %f", pkg.BillableWeightKg)
	}
	if pkg.DeclaredValue.String() != "59.99" {
		t.Fatalf("expected declared value 59.99, got %s", pkg.DeclaredValue)
	}
	if pkg.ItemCount != 3 {
		t.Fatalf("expected item count 3, got %d", pkg.ItemCount)
	}
}

func TestConsolidateVolumetricDominates(t *testing.T) {
	items := []Item{
		{UnitPrice: decimal.NewFromInt(10), Quantity: 1, WeightKg: 0.5, LengthCm: 50, WidthCm: 50, HeightCm: 40},
	}
	pkg, err := Consolidator{}.Consolidate(items)
	if err != nil {
		t.Fatalf("consolidate: %v", err)
	}
	// 100000 cm³ / 5000 = 20 kg volumetric beats 0.5 kg actual.
	if pkg.BillableWeightKg != 20 {
		t.Fatalf("expected billable weight 20, got %f", pkg.BillableWeightKg)
	}
}

func TestConsolidateCustomDivisor(t *testing.T) {
	items := []Item{
		{UnitPrice: decimal.NewFromInt(1), Quantity: 1, LengthCm: 10, WidthCm: 10, HeightCm: 60},
	}
	pkg, err := Consolidator{DimensionalDivisor: 6000}.Consolidate(items)
	if err != nil {
		t.Fatalf("consolidate: %v", err)
	}
	if pkg.VolumetricWeightKg != 1 {
		t.Fatalf("expected volumetric weight 1 with divisor 6000, got %f", pkg.VolumetricWeightKg)
	}
}

func TestConsolidateDeclaredValueIsExact(t *testing.T) {
	items := []Item{
		{UnitPrice: decimal.RequireFromString("0.1"), Quantity: 3},
	}
	pkg, err := Consolidator{}.Consolidate(items)
	if err != nil {
		t.Fatalf("consolidate: %v", err)
	}
	if !pkg.DeclaredValue.Equal(decimal.RequireFromString("0.3")) {
		t.Fatalf("expected exact declared value 0.3, got %s", pkg.DeclaredValue)
	}
}

func TestConsolidateBillableCoversEachItem(t *testing.T) {
	items := []Item{
		{UnitPrice: decimal.NewFromInt(5), Quantity: 4, WeightKg: 0.75},
		{UnitPrice: decimal.NewFromInt(2), Quantity: 2, WeightKg: 1.1},
	}
	pkg, err := Consolidator{}.Consolidate(items)
	if err != nil {
		t.Fatalf("consolidate: %v", err)
	}
	for i, it := range items {
		if pkg.BillableWeightKg < it.WeightKg*float64(it.Quantity) {
			t.Fatalf("billable weight %f below item %d contribution", pkg.BillableWeightKg, i)
		}
	}
}

func TestConsolidateValidation(t *testing.T) {
	cases := []struct {
		name  string
		items []Item
		want  error
	}{
		{"empty", nil, ErrEmptyCart},
		{"zero quantity", []Item{{UnitPrice: decimal.NewFromInt(1), Quantity: 0}}, ErrInvalidQuantity},
		{"negative price", []Item{{UnitPrice: decimal.NewFromInt(-1), Quantity: 1}}, ErrNegativePrice},
		{"negative weight", []Item{{UnitPrice: decimal.NewFromInt(1), Quantity: 1, WeightKg: -2}}, ErrNegativeWeight},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Consolidator{}.Consolidate(tc.items)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}
