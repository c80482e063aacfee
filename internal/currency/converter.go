package currency

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/shipcalc/internal/refdata"
)

// ErrRateUnavailable is returned when no reference rate exists for the
// requested pair. Callers decide whether that degrades or fails the request.
var ErrRateUnavailable = errors.New("no exchange rate configured for currency pair")

// DefaultBase is the currency every calculation is denominated in.
const DefaultBase = "USD"

// Conversion is a resolved exchange for one currency pair. Converted is
// false when no conversion was requested or needed.
type Conversion struct {
	From      string
	To        string
	Rate      decimal.Decimal
	Converted bool
}

// Converter resolves conversions against a reference snapshot.
type Converter struct {
	Base string
}

func (c Converter) base() string {
	if strings.TrimSpace(c.Base) == "" {
		return DefaultBase
	}
	return strings.ToUpper(strings.TrimSpace(c.Base))
}

// For resolves the conversion for the requested target currency. An empty
// target or the base currency itself is a no-op conversion, not an error.
func (c Converter) For(snap *refdata.Snapshot, target string) (Conversion, error) {
	base := c.base()
	target = strings.ToUpper(strings.TrimSpace(target))
	if target == "" || target == base {
		return Conversion{From: base, To: base}, nil
	}
	rate, ok := snap.Rate(base, target)
	if !ok {
		return Conversion{}, fmt.Errorf("%w: %s/%s", ErrRateUnavailable, base, target)
	}
	return Conversion{From: base, To: target, Rate: rate, Converted: true}, nil
}

// Apply converts a single monetary amount, rounding to 2 decimal places half
// away from zero. Every field converts independently so rounding error never
// propagates between fields. A no-op conversion returns the amount unchanged.
func (cv Conversion) Apply(amount decimal.Decimal) decimal.Decimal {
	if !cv.Converted {
		return amount
	}
	return amount.Mul(cv.Rate).Round(2)
}
