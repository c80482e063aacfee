package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/noah-isme/shipcalc/internal/refdata"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	snap := refdata.Seed()
	seedCountries(ctx, pool, snap)
	seedLocations(ctx, pool, snap)
	seedCurrencyRates(ctx, pool, snap)
	seedTaxRules(ctx, pool, snap)
	seedTiers(ctx, pool, snap)
	seedRemoteAreas(ctx, pool, snap)

	log.Println("Seeding completed successfully!")
}

func seedCountries(ctx context.Context, pool *pgxpool.Pool, snap *refdata.Snapshot) {
	fmt.Println("Seeding Countries...")
	for _, c := range snap.Countries {
		_, err := pool.Exec(ctx, `
			INSERT INTO countries (code, name, currency_code, currency_symbol, base_tax_rate, timezone, latitude, longitude)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (code) DO UPDATE SET
				name = EXCLUDED.name,
				currency_code = EXCLUDED.currency_code,
				currency_symbol = EXCLUDED.currency_symbol,
				base_tax_rate = EXCLUDED.base_tax_rate,
				timezone = EXCLUDED.timezone,
				latitude = EXCLUDED.latitude,
				longitude = EXCLUDED.longitude;
		`, c.Code, c.Name, c.CurrencyCode, c.CurrencySymbol, c.BaseTaxRate.String(), c.Timezone, c.Latitude, c.Longitude)
		if err != nil {
			log.Printf("Failed to seed country %s: %v", c.Code, err)
		}
	}
}

func seedLocations(ctx context.Context, pool *pgxpool.Pool, snap *refdata.Snapshot) {
	fmt.Println("Seeding Locations...")
	for _, loc := range snap.Locations {
		_, err := pool.Exec(ctx, `
			INSERT INTO locations (country_code, state_code, city, latitude, longitude)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (country_code, state_code, city) DO UPDATE SET
				latitude = EXCLUDED.latitude,
				longitude = EXCLUDED.longitude;
		`, loc.CountryCode, loc.StateCode, loc.City, loc.Latitude, loc.Longitude)
		if err != nil {
			log.Printf("Failed to seed location %s/%s/%s: %v", loc.CountryCode, loc.StateCode, loc.City, err)
		}
	}
}

func seedCurrencyRates(ctx context.Context, pool *pgxpool.Pool, snap *refdata.Snapshot) {
	fmt.Println("Seeding Currency Rates...")
	for _, r := range snap.Rates {
		_, err := pool.Exec(ctx, `
			INSERT INTO currency_rates (from_currency, to_currency, rate)
			VALUES ($1, $2, $3)
			ON CONFLICT (from_currency, to_currency) DO UPDATE SET rate = EXCLUDED.rate;
		`, r.From, r.To, r.Rate.String())
		if err != nil {
			log.Printf("Failed to seed rate %s/%s: %v", r.From, r.To, err)
		}
	}
}

func seedTaxRules(ctx context.Context, pool *pgxpool.Pool, snap *refdata.Snapshot) {
	fmt.Println("Seeding Tax Rules...")
	for _, rule := range snap.TaxRules {
		for i, layer := range rule.Layers {
			_, err := pool.Exec(ctx, `
				INSERT INTO tax_rule_layers (country_code, state_code, position, name, rate)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (country_code, state_code, position) DO UPDATE SET
					name = EXCLUDED.name,
					rate = EXCLUDED.rate;
			`, rule.CountryCode, rule.StateCode, i, layer.Name, layer.Rate.String())
			if err != nil {
				log.Printf("Failed to seed tax layer %s/%s #%d: %v", rule.CountryCode, rule.StateCode, i, err)
			}
		}
	}
}

func seedTiers(ctx context.Context, pool *pgxpool.Pool, snap *refdata.Snapshot) {
	fmt.Println("Seeding Rate Tiers...")
	for _, tier := range snap.Tiers {
		var tierID int64
		err := pool.QueryRow(ctx, `
			INSERT INTO rate_tiers (service, carrier, expedited, free_distance_km, per_km_rate, max_distance_km, remote_surcharge, transit_min_days, transit_max_days)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (service) DO UPDATE SET
				carrier = EXCLUDED.carrier,
				expedited = EXCLUDED.expedited,
				free_distance_km = EXCLUDED.free_distance_km,
				per_km_rate = EXCLUDED.per_km_rate,
				max_distance_km = EXCLUDED.max_distance_km,
				remote_surcharge = EXCLUDED.remote_surcharge,
				transit_min_days = EXCLUDED.transit_min_days,
				transit_max_days = EXCLUDED.transit_max_days
			RETURNING id;
		`, tier.Service, tier.Carrier, tier.Expedited, tier.FreeDistanceKm, tier.PerKmRate.String(),
			tier.MaxDistanceKm, tier.RemoteSurcharge.String(), tier.TransitMinDays, tier.TransitMaxDays).Scan(&tierID)
		if err != nil {
			log.Printf("Failed to seed tier %s: %v", tier.Service, err)
			continue
		}

		for _, b := range tier.Brackets {
			_, err := pool.Exec(ctx, `
				INSERT INTO rate_tier_brackets (tier_id, max_weight_kg, cost)
				VALUES ($1, $2, $3)
				ON CONFLICT (tier_id, max_weight_kg) DO UPDATE SET cost = EXCLUDED.cost;
			`, tierID, b.MaxWeightKg, b.Cost.String())
			if err != nil {
				log.Printf("Failed to seed bracket for %s (<= %.1fkg): %v", tier.Service, b.MaxWeightKg, err)
			}
		}
	}
}

func seedRemoteAreas(ctx context.Context, pool *pgxpool.Pool, snap *refdata.Snapshot) {
	fmt.Println("Seeding Remote Areas...")
	for _, area := range snap.RemoteAreas {
		_, err := pool.Exec(ctx, `
			INSERT INTO remote_areas (area) VALUES ($1) ON CONFLICT (area) DO NOTHING;
		`, area)
		if err != nil {
			log.Printf("Failed to seed remote area %s: %v", area, err)
		}
	}
}
