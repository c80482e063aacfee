package tax

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/shipcalc/internal/refdata"
)

// ErrNegativeSubtotal is returned when the taxable amount is below zero.
var ErrNegativeSubtotal = errors.New("taxable subtotal cannot be negative")

// Rule sources reported on a result, so callers can tell an untaxed
// jurisdiction from a configured zero rate.
const (
	SourceState   = "state"
	SourceCountry = "country"
	SourceNone    = "none"
)

// Result describes the computed tax liability.
type Result struct {
	TaxableAmount decimal.Decimal
	Rate          decimal.Decimal
	Amount        decimal.Decimal
	Jurisdiction  string
	RuleSource    string
}

// Calculate resolves the most specific rule for the jurisdiction and applies
// it to the subtotal. A missing rule is a success with zero tax, reported as
// SourceNone.
//
// Layered rules are non-cascading: every layer applies to the pre-tax
// subtotal and the layer amounts are summed. The final amount rounds to 2
// decimal places, half away from zero.
func Calculate(snap *refdata.Snapshot, subtotal decimal.Decimal, country, state string) (Result, error) {
	if subtotal.IsNegative() {
		return Result{}, ErrNegativeSubtotal
	}
	country = strings.ToUpper(strings.TrimSpace(country))
	state = strings.ToUpper(strings.TrimSpace(state))

	rule, ok := snap.TaxRule(country, state)
	if !ok {
		return Result{
			TaxableAmount: subtotal,
			Rate:          decimal.Zero,
			Amount:        decimal.Zero,
			Jurisdiction:  fmt.Sprintf("%s (no rule configured)", jurisdictionLabel(country, state)),
			RuleSource:    SourceNone,
		}, nil
	}

	amount := decimal.Zero
	for _, layer := range rule.Layers {
		amount = amount.Add(subtotal.Mul(layer.Rate))
	}

	source := SourceCountry
	if rule.StateCode != "" {
		source = SourceState
	}
	return Result{
		TaxableAmount: subtotal,
		Rate:          rule.Rate(),
		Amount:        amount.Round(2),
		Jurisdiction:  jurisdictionLabel(rule.CountryCode, rule.StateCode),
		RuleSource:    source,
	}, nil
}

func jurisdictionLabel(country, state string) string {
	if state != "" {
		return country + "/" + state
	}
	return country
}
