package refdata

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Country describes a destination country as maintained in reference data.
type Country struct {
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	CurrencyCode   string          `json:"currencyCode"`
	CurrencySymbol string          `json:"currencySymbol"`
	BaseTaxRate    decimal.Decimal `json:"baseTaxRate"`
	Timezone       string          `json:"timezone"`
	Latitude       float64         `json:"latitude"`
	Longitude      float64         `json:"longitude"`
}

// Location refines a country coordinate at state or city granularity.
type Location struct {
	CountryCode string  `json:"countryCode"`
	StateCode   string  `json:"stateCode"`
	City        string  `json:"city"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// CurrencyRate is a multiplicative exchange rate between two currencies.
type CurrencyRate struct {
	From string          `json:"from"`
	To   string          `json:"to"`
	Rate decimal.Decimal `json:"rate"`
}

// TaxLayer is one component of a tax rule, e.g. a national VAT or a local levy.
type TaxLayer struct {
	Name string          `json:"name"`
	Rate decimal.Decimal `json:"rate"`
}

// TaxRule binds one or more tax layers to a jurisdiction. A flat rule has a
// single layer. StateCode is empty for country-level rules.
type TaxRule struct {
	CountryCode string     `json:"countryCode"`
	StateCode   string     `json:"stateCode"`
	Layers      []TaxLayer `json:"layers"`
}

// Rate returns the combined rate of all layers.
func (r TaxRule) Rate() decimal.Decimal {
	total := decimal.Zero
	for _, layer := range r.Layers {
		total = total.Add(layer.Rate)
	}
	return total
}

// WeightBracket maps an upper weight bound to a base shipping cost.
type WeightBracket struct {
	MaxWeightKg float64         `json:"maxWeightKg"`
	Cost        decimal.Decimal `json:"cost"`
}

// RateTier is a configured shipping service level with its cost table and
// distance thresholds. Brackets are ordered by ascending MaxWeightKg; the
// last bracket's bound is the tier's weight cap.
type RateTier struct {
	Service         string          `json:"service"`
	Carrier         string          `json:"carrier"`
	Expedited       bool            `json:"expedited"`
	Brackets        []WeightBracket `json:"brackets"`
	FreeDistanceKm  int             `json:"freeDistanceKm"`
	PerKmRate       decimal.Decimal `json:"perKmRate"`
	MaxDistanceKm   int             `json:"maxDistanceKm"`
	RemoteSurcharge decimal.Decimal `json:"remoteSurcharge"`
	TransitMinDays  int             `json:"transitMinDays"`
	TransitMaxDays  int             `json:"transitMaxDays"`
}

// Snapshot is an immutable point-in-time copy of all reference data consumed
// by a calculation. Snapshots are never mutated after construction; reloads
// build a fresh snapshot and swap it into the Store.
type Snapshot struct {
	Countries   map[string]Country `json:"countries"`
	Locations   []Location         `json:"locations"`
	Rates       []CurrencyRate     `json:"rates"`
	TaxRules    []TaxRule          `json:"taxRules"`
	Tiers       []RateTier         `json:"tiers"`
	RemoteAreas []string           `json:"remoteAreas"`
	LoadedAt    time.Time          `json:"loadedAt"`
}

// Country looks up a country record by ISO-3166 alpha-2 code.
func (s *Snapshot) Country(code string) (Country, bool) {
	c, ok := s.Countries[strings.ToUpper(strings.TrimSpace(code))]
	return c, ok
}

// LookupLocation resolves the most specific coordinate for the given address
// parts: country+state+city, then country+state, then the country record.
func (s *Snapshot) LookupLocation(country, state, city string) (float64, float64, bool) {
	country = strings.ToUpper(strings.TrimSpace(country))
	state = strings.ToUpper(strings.TrimSpace(state))
	city = strings.TrimSpace(city)

	if state != "" && city != "" {
		for _, loc := range s.Locations {
			if loc.CountryCode == country && loc.StateCode == state && strings.EqualFold(loc.City, city) {
				return loc.Latitude, loc.Longitude, true
			}
		}
	}
	if state != "" {
		for _, loc := range s.Locations {
			if loc.CountryCode == country && loc.StateCode == state && loc.City == "" {
				return loc.Latitude, loc.Longitude, true
			}
		}
	}
	if c, ok := s.Countries[country]; ok {
		return c.Latitude, c.Longitude, true
	}
	return 0, 0, false
}

// Rate returns the exchange rate for the from/to pair.
func (s *Snapshot) Rate(from, to string) (decimal.Decimal, bool) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	for _, r := range s.Rates {
		if r.From == from && r.To == to {
			return r.Rate, true
		}
	}
	return decimal.Zero, false
}

// TaxRule resolves the most specific tax rule for the jurisdiction: a
// state-level rule overrides a country-level one when both exist.
func (s *Snapshot) TaxRule(country, state string) (TaxRule, bool) {
	country = strings.ToUpper(strings.TrimSpace(country))
	state = strings.ToUpper(strings.TrimSpace(state))

	if state != "" {
		for _, rule := range s.TaxRules {
			if rule.CountryCode == country && rule.StateCode == state {
				return rule, true
			}
		}
	}
	for _, rule := range s.TaxRules {
		if rule.CountryCode == country && rule.StateCode == "" {
			return rule, true
		}
	}
	return TaxRule{}, false
}

// IsRemote reports whether the jurisdiction is flagged as a remote area.
// Remote flags are keyed either "CC" or "CC/ST".
func (s *Snapshot) IsRemote(country, state string) bool {
	country = strings.ToUpper(strings.TrimSpace(country))
	state = strings.ToUpper(strings.TrimSpace(state))
	for _, area := range s.RemoteAreas {
		if area == country {
			return true
		}
		if state != "" && area == country+"/"+state {
			return true
		}
	}
	return false
}
