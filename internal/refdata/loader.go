package refdata

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Loader builds reference snapshots from Postgres, with a Redis cache in
// front so restarts and the refresh worker share one copy.
type Loader struct {
	Pool   *pgxpool.Pool
	Cache  *Cache
	Logger zerolog.Logger
}

// Load returns the cached snapshot when present, otherwise queries the
// database and primes the cache.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	if snap, ok, err := l.Cache.GetSnapshot(ctx); err != nil {
		l.Logger.Warn().Err(err).Msg("read snapshot cache")
	} else if ok {
		return snap, nil
	}
	return l.Reload(ctx)
}

// Reload always queries the database and refreshes the cache. It is the
// entrypoint for scheduled refreshes.
func (l *Loader) Reload(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{
		Countries: map[string]Country{},
		LoadedAt:  time.Now().UTC(),
	}

	if err := l.loadCountries(ctx, snap); err != nil {
		return nil, fmt.Errorf("load countries: %w", err)
	}
	if err := l.loadLocations(ctx, snap); err != nil {
		return nil, fmt.Errorf("load locations: %w", err)
	}
	if err := l.loadCurrencyRates(ctx, snap); err != nil {
		return nil, fmt.Errorf("load currency rates: %w", err)
	}
	if err := l.loadTaxRules(ctx, snap); err != nil {
		return nil, fmt.Errorf("load tax rules: %w", err)
	}
	if err := l.loadTiers(ctx, snap); err != nil {
		return nil, fmt.Errorf("load rate tiers: %w", err)
	}
	if err := l.loadRemoteAreas(ctx, snap); err != nil {
		return nil, fmt.Errorf("load remote areas: %w", err)
	}

	if err := l.Cache.SetSnapshot(ctx, snap); err != nil {
		l.Logger.Warn().Err(err).Msg("prime snapshot cache")
	}
	return snap, nil
}

func (l *Loader) loadCountries(ctx context.Context, snap *Snapshot) error {
	rows, err := l.Pool.Query(ctx, `
		SELECT code, name, currency_code, currency_symbol, base_tax_rate::text, timezone, latitude, longitude
		FROM countries`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var c Country
		var rate string
		if err := rows.Scan(&c.Code, &c.Name, &c.CurrencyCode, &c.CurrencySymbol, &rate, &c.Timezone, &c.Latitude, &c.Longitude); err != nil {
			return err
		}
		c.BaseTaxRate, err = decimal.NewFromString(rate)
		if err != nil {
			return fmt.Errorf("country %s base tax rate: %w", c.Code, err)
		}
		snap.Countries[c.Code] = c
	}
	return rows.Err()
}

func (l *Loader) loadLocations(ctx context.Context, snap *Snapshot) error {
	rows, err := l.Pool.Query(ctx, `
		SELECT country_code, state_code, city, latitude, longitude
		FROM locations`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var loc Location
		if err := rows.Scan(&loc.CountryCode, &loc.StateCode, &loc.City, &loc.Latitude, &loc.Longitude); err != nil {
			return err
		}
		snap.Locations = append(snap.Locations, loc)
	}
	return rows.Err()
}

func (l *Loader) loadCurrencyRates(ctx context.Context, snap *Snapshot) error {
	rows, err := l.Pool.Query(ctx, `
		SELECT from_currency, to_currency, rate::text
		FROM currency_rates`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var r CurrencyRate
		var rate string
		if err := rows.Scan(&r.From, &r.To, &rate); err != nil {
			return err
		}
		r.Rate, err = decimal.NewFromString(rate)
		if err != nil {
			return fmt.Errorf("rate %s/%s: %w", r.From, r.To, err)
		}
		snap.Rates = append(snap.Rates, r)
	}
	return rows.Err()
}

func (l *Loader) loadTaxRules(ctx context.Context, snap *Snapshot) error {
	rows, err := l.Pool.Query(ctx, `
		SELECT country_code, state_code, name, rate::text
		FROM tax_rule_layers
		ORDER BY country_code, state_code, position`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var country, state, name, rate string
		if err := rows.Scan(&country, &state, &name, &rate); err != nil {
			return err
		}
		layerRate, err := decimal.NewFromString(rate)
		if err != nil {
			return fmt.Errorf("tax layer %s/%s %s: %w", country, state, name, err)
		}
		layer := TaxLayer{Name: name, Rate: layerRate}
		if n := len(snap.TaxRules); n > 0 && snap.TaxRules[n-1].CountryCode == country && snap.TaxRules[n-1].StateCode == state {
			snap.TaxRules[n-1].Layers = append(snap.TaxRules[n-1].Layers, layer)
			continue
		}
		snap.TaxRules = append(snap.TaxRules, TaxRule{CountryCode: country, StateCode: state, Layers: []TaxLayer{layer}})
	}
	return rows.Err()
}

func (l *Loader) loadTiers(ctx context.Context, snap *Snapshot) error {
	rows, err := l.Pool.Query(ctx, `
		SELECT id, service, carrier, expedited, free_distance_km, per_km_rate::text, max_distance_km,
		       remote_surcharge::text, transit_min_days, transit_max_days
		FROM rate_tiers
		ORDER BY id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	byID := map[int64]int{}
	for rows.Next() {
		var (
			id                 int64
			tier               RateTier
			perKm, remoteSurch string
		)
		if err := rows.Scan(&id, &tier.Service, &tier.Carrier, &tier.Expedited, &tier.FreeDistanceKm, &perKm,
			&tier.MaxDistanceKm, &remoteSurch, &tier.TransitMinDays, &tier.TransitMaxDays); err != nil {
			return err
		}
		if tier.PerKmRate, err = decimal.NewFromString(perKm); err != nil {
			return fmt.Errorf("tier %s per-km rate: %w", tier.Service, err)
		}
		if tier.RemoteSurcharge, err = decimal.NewFromString(remoteSurch); err != nil {
			return fmt.Errorf("tier %s remote surcharge: %w", tier.Service, err)
		}
		byID[id] = len(snap.Tiers)
		snap.Tiers = append(snap.Tiers, tier)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	brackets, err := l.Pool.Query(ctx, `
		SELECT tier_id, max_weight_kg, cost::text
		FROM rate_tier_brackets
		ORDER BY tier_id, max_weight_kg`)
	if err != nil {
		return err
	}
	defer brackets.Close()
	for brackets.Next() {
		var (
			tierID int64
			b      WeightBracket
			cost   string
		)
		if err := brackets.Scan(&tierID, &b.MaxWeightKg, &cost); err != nil {
			return err
		}
		if b.Cost, err = decimal.NewFromString(cost); err != nil {
			return fmt.Errorf("bracket for tier %d: %w", tierID, err)
		}
		idx, ok := byID[tierID]
		if !ok {
			continue
		}
		snap.Tiers[idx].Brackets = append(snap.Tiers[idx].Brackets, b)
	}
	return brackets.Err()
}

func (l *Loader) loadRemoteAreas(ctx context.Context, snap *Snapshot) error {
	rows, err := l.Pool.Query(ctx, `SELECT area FROM remote_areas`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var area string
		if err := rows.Scan(&area); err != nil {
			return err
		}
		snap.RemoteAreas = append(snap.RemoteAreas, area)
	}
	return rows.Err()
}
