package rates

import (
	"errors"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/shipcalc/internal/refdata"
)

// ErrNoRatesAvailable is returned when no configured tier can serve the
// package, either because nothing matches or because filtering removed every
// candidate.
var ErrNoRatesAvailable = errors.New("no shipping rates available for this destination")

// Input carries the package and destination facts a quote depends on.
type Input struct {
	BillableWeightKg float64
	DistanceKm       int
	Remote           bool
}

// Options filter the configured tiers before evaluation.
type Options struct {
	ExpeditedOnly bool
	Carriers      []string
}

// Option is one priced shipping choice.
type Option struct {
	Service           string
	Carrier           string
	Expedited         bool
	BaseCost          decimal.Decimal
	DistanceSurcharge decimal.Decimal
	RemoteSurcharge   decimal.Decimal
	TotalCost         decimal.Decimal
	TransitMinDays    int
	TransitMaxDays    int
}

// Engine prices a package against the snapshot's tier configuration.
type Engine struct{}

// Quote evaluates every qualifying tier independently and returns all of
// them ordered by ascending total cost, ties broken by ascending transit
// days. An empty result is always ErrNoRatesAvailable, never a success.
func (Engine) Quote(tiers []refdata.RateTier, in Input, opts Options) ([]Option, error) {
	result := make([]Option, 0, len(tiers))
	for _, tier := range tiers {
		if opts.ExpeditedOnly && !tier.Expedited {
			continue
		}
		if len(opts.Carriers) > 0 && !carrierAllowed(tier.Carrier, opts.Carriers) {
			continue
		}
		option, ok := price(tier, in)
		if !ok {
			continue
		}
		result = append(result, option)
	}
	if len(result) == 0 {
		return nil, ErrNoRatesAvailable
	}

	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].TotalCost.Equal(result[j].TotalCost) {
			return result[i].TotalCost.LessThan(result[j].TotalCost)
		}
		if result[i].TransitMinDays != result[j].TransitMinDays {
			return result[i].TransitMinDays < result[j].TransitMinDays
		}
		return result[i].TransitMaxDays < result[j].TransitMaxDays
	})
	return result, nil
}

func price(tier refdata.RateTier, in Input) (Option, bool) {
	if tier.MaxDistanceKm > 0 && in.DistanceKm > tier.MaxDistanceKm {
		return Option{}, false
	}
	base, ok := bracketCost(tier.Brackets, in.BillableWeightKg)
	if !ok {
		return Option{}, false
	}

	distance := decimal.Zero
	if extra := in.DistanceKm - tier.FreeDistanceKm; extra > 0 {
		distance = tier.PerKmRate.Mul(decimal.NewFromInt(int64(extra)))
	}
	remote := decimal.Zero
	if in.Remote {
		remote = tier.RemoteSurcharge
	}

	total := base.Add(distance).Add(remote).Round(2)
	return Option{
		Service:           tier.Service,
		Carrier:           tier.Carrier,
		Expedited:         tier.Expedited,
		BaseCost:          base.Round(2),
		DistanceSurcharge: distance.Round(2),
		RemoteSurcharge:   remote.Round(2),
		TotalCost:         total,
		TransitMinDays:    tier.TransitMinDays,
		TransitMaxDays:    tier.TransitMaxDays,
	}, true
}

// bracketCost picks the first bracket whose bound covers the billable
// weight. A weight above the last bound means the tier cannot carry the
// package.
func bracketCost(brackets []refdata.WeightBracket, weightKg float64) (decimal.Decimal, bool) {
	for _, b := range brackets {
		if weightKg <= b.MaxWeightKg {
			return b.Cost, true
		}
	}
	return decimal.Zero, false
}

func carrierAllowed(carrier string, allowed []string) bool {
	for _, c := range allowed {
		if strings.EqualFold(strings.TrimSpace(c), carrier) {
			return true
		}
	}
	return false
}
