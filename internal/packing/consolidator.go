package packing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrEmptyCart is returned when there are no line items to consolidate.
	ErrEmptyCart = errors.New("cart has no items")
	// ErrInvalidQuantity is returned for a line with quantity below 1.
	ErrInvalidQuantity = errors.New("item quantity must be at least 1")
	// ErrNegativePrice is returned for a line with a negative unit price.
	ErrNegativePrice = errors.New("item price cannot be negative")
	// ErrNegativeWeight is returned for a line with negative weight or dimensions.
	ErrNegativeWeight = errors.New("item weight and dimensions cannot be negative")
)

// DefaultDimensionalDivisor is the carrier-style volumetric divisor for cm³/kg.
const DefaultDimensionalDivisor = 5000.0

// Item is one cart line eligible for consolidation.
type Item struct {
	ID            string
	UnitPrice     decimal.Decimal
	Quantity      int
	WeightKg      float64
	LengthCm      float64
	WidthCm       float64
	HeightCm      float64
	ShippingClass string
}

// Package is the consolidated shippable description of a cart. It is a value
// object: built once per calculation, never mutated.
type Package struct {
	TotalWeightKg      float64
	VolumetricWeightKg float64
	BillableWeightKg   float64
	DeclaredValue      decimal.Decimal
	ItemCount          int
}

// Consolidator aggregates cart lines into a single package description.
type Consolidator struct {
	DimensionalDivisor float64
}

// Consolidate validates the lines and derives totals. Billable weight is the
// greater of actual and volumetric weight; declared value is the exact sum of
// price×quantity with no rounding applied.
func (c Consolidator) Consolidate(items []Item) (Package, error) {
	if len(items) == 0 {
		return Package{}, ErrEmptyCart
	}
	divisor := c.DimensionalDivisor
	if divisor <= 0 {
		divisor = DefaultDimensionalDivisor
	}

	var (
		totalWeight float64
		totalVolume float64
		declared    = decimal.Zero
		count       int
	)
	for i, it := range items {
		if it.Quantity < 1 {
			return Package{}, fmt.Errorf("%w (item %d)", ErrInvalidQuantity, i)
		}
		if it.UnitPrice.IsNegative() {
			return Package{}, fmt.Errorf("%w (item %d)", ErrNegativePrice, i)
		}
		if it.WeightKg < 0 || it.LengthCm < 0 || it.WidthCm < 0 || it.HeightCm < 0 {
			return Package{}, fmt.Errorf("%w (item %d)", ErrNegativeWeight, i)
		}
		qty := float64(it.Quantity)
		totalWeight += it.WeightKg * qty
		totalVolume += it.LengthCm * it.WidthCm * it.HeightCm * qty
		declared = declared.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
		count += it.Quantity
	}

	volumetric := totalVolume / divisor
	billable := totalWeight
	if volumetric > billable {
		billable = volumetric
	}
	return Package{
		TotalWeightKg:      totalWeight,
		VolumetricWeightKg: volumetric,
		BillableWeightKg:   billable,
		DeclaredValue:      declared,
		ItemCount:          count,
	}, nil
}
