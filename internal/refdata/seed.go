package refdata

import (
	"time"

	"github.com/shopspring/decimal"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

// Seed returns the built-in reference snapshot. It backs the seeder tool, the
// startup fallback path and the engine tests, so it must stay deterministic.
func Seed() *Snapshot {
	return &Snapshot{
		Countries: map[string]Country{
			"US": {Code: "US", Name: "United States", CurrencyCode: "USD", CurrencySymbol: "$", BaseTaxRate: dec("0"), Timezone: "America/New_York", Latitude: 39.8283, Longitude: -98.5795},
			"CA": {Code: "CA", Name: "Canada", CurrencyCode: "CAD", CurrencySymbol: "$", BaseTaxRate: dec("0.05"), Timezone: "America/Toronto", Latitude: 56.1304, Longitude: -106.3468},
			"GB": {Code: "GB", Name: "United Kingdom", CurrencyCode: "GBP", CurrencySymbol: "£", BaseTaxRate: dec("0.20"), Timezone: "Europe/London", Latitude: 55.3781, Longitude: -3.4360},
			"DE": {Code: "DE", Name: "Germany", CurrencyCode: "EUR", CurrencySymbol: "€", BaseTaxRate: dec("0.19"), Timezone: "Europe/Berlin", Latitude: 51.1657, Longitude: 10.4515},
			"FR": {Code: "FR", Name: "France", CurrencyCode: "EUR", CurrencySymbol: "€", BaseTaxRate: dec("0.20"), Timezone: "Europe/Paris", Latitude: 46.6034, Longitude: 2.2137},
			"JP": {Code: "JP", Name: "Japan", CurrencyCode: "JPY", CurrencySymbol: "¥", BaseTaxRate: dec("0.10"), Timezone: "Asia/Tokyo", Latitude: 36.2048, Longitude: 138.2529},
			"AU": {Code: "AU", Name: "Australia", CurrencyCode: "AUD", CurrencySymbol: "$", BaseTaxRate: dec("0.10"), Timezone: "Australia/Sydney", Latitude: -25.2744, Longitude: 133.7751},
			"SG": {Code: "SG", Name: "Singapore", CurrencyCode: "SGD", CurrencySymbol: "$", BaseTaxRate: dec("0.09"), Timezone: "Asia/Singapore", Latitude: 1.3521, Longitude: 103.8198},
			"ID": {Code: "ID", Name: "Indonesia", CurrencyCode: "IDR", CurrencySymbol: "Rp", BaseTaxRate: dec("0.11"), Timezone: "Asia/Jakarta", Latitude: -6.1751, Longitude: 106.8650},
			"BR": {Code: "BR", Name: "Brazil", CurrencyCode: "BRL", CurrencySymbol: "R$", BaseTaxRate: dec("0.17"), Timezone: "America/Sao_Paulo", Latitude: -14.2350, Longitude: -51.9253},
			"MX": {Code: "MX", Name: "Mexico", CurrencyCode: "MXN", CurrencySymbol: "$", BaseTaxRate: dec("0.16"), Timezone: "America/Mexico_City", Latitude: 23.6345, Longitude: -102.5528},
		},
		Locations: []Location{
			{CountryCode: "US", StateCode: "CA", Latitude: 36.7783, Longitude: -119.4179},
			{CountryCode: "US", StateCode: "NY", Latitude: 43.0000, Longitude: -75.0000},
			{CountryCode: "US", StateCode: "TX", Latitude: 31.0000, Longitude: -100.0000},
			{CountryCode: "US", StateCode: "AK", Latitude: 64.2008, Longitude: -149.4937},
			{CountryCode: "US", StateCode: "NY", City: "New York", Latitude: 40.7128, Longitude: -74.0060},
			{CountryCode: "CA", StateCode: "ON", Latitude: 51.2538, Longitude: -85.3232},
			{CountryCode: "CA", StateCode: "BC", Latitude: 53.7267, Longitude: -127.6476},
			{CountryCode: "CA", StateCode: "QC", Latitude: 52.9399, Longitude: -73.5491},
			{CountryCode: "AU", StateCode: "WA", Latitude: -27.6728, Longitude: 121.6283},
			{CountryCode: "AU", StateCode: "NSW", City: "Sydney", Latitude: -33.8688, Longitude: 151.2093},
		},
		Rates: []CurrencyRate{
			{From: "USD", To: "CAD", Rate: dec("1.36")},
			{From: "CAD", To: "USD", Rate: dec("0.7353")},
			{From: "USD", To: "EUR", Rate: dec("0.92")},
			{From: "EUR", To: "USD", Rate: dec("1.0870")},
			{From: "USD", To: "GBP", Rate: dec("0.79")},
			{From: "GBP", To: "USD", Rate: dec("1.2658")},
			{From: "USD", To: "JPY", Rate: dec("148.27")},
			{From: "JPY", To: "USD", Rate: dec("0.006744")},
			{From: "USD", To: "AUD", Rate: dec("1.52")},
			{From: "AUD", To: "USD", Rate: dec("0.6579")},
			{From: "USD", To: "SGD", Rate: dec("1.34")},
			{From: "SGD", To: "USD", Rate: dec("0.7463")},
			{From: "USD", To: "BRL", Rate: dec("5.12")},
			{From: "BRL", To: "USD", Rate: dec("0.1953")},
			{From: "USD", To: "MXN", Rate: dec("17.08")},
			{From: "MXN", To: "USD", Rate: dec("0.05855")},
		},
		TaxRules: []TaxRule{
			{CountryCode: "US", StateCode: "CA", Layers: []TaxLayer{{Name: "California sales tax", Rate: dec("0.0725")}}},
			{CountryCode: "US", StateCode: "NY", Layers: []TaxLayer{{Name: "New York sales tax", Rate: dec("0.04")}, {Name: "NYC local tax", Rate: dec("0.04875")}}},
			{CountryCode: "US", StateCode: "TX", Layers: []TaxLayer{{Name: "Texas sales tax", Rate: dec("0.0625")}}},
			{CountryCode: "CA", Layers: []TaxLayer{{Name: "GST", Rate: dec("0.05")}}},
			{CountryCode: "CA", StateCode: "ON", Layers: []TaxLayer{{Name: "GST", Rate: dec("0.05")}, {Name: "Ontario PST", Rate: dec("0.08")}}},
			{CountryCode: "CA", StateCode: "BC", Layers: []TaxLayer{{Name: "GST", Rate: dec("0.05")}, {Name: "BC PST", Rate: dec("0.07")}}},
			{CountryCode: "CA", StateCode: "QC", Layers: []TaxLayer{{Name: "GST", Rate: dec("0.05")}, {Name: "QST", Rate: dec("0.09975")}}},
			{CountryCode: "GB", Layers: []TaxLayer{{Name: "VAT", Rate: dec("0.20")}}},
			{CountryCode: "DE", Layers: []TaxLayer{{Name: "VAT", Rate: dec("0.19")}}},
			{CountryCode: "FR", Layers: []TaxLayer{{Name: "VAT", Rate: dec("0.20")}}},
			{CountryCode: "JP", Layers: []TaxLayer{{Name: "Consumption tax", Rate: dec("0.10")}}},
			{CountryCode: "AU", Layers: []TaxLayer{{Name: "GST", Rate: dec("0.10")}}},
			{CountryCode: "SG", Layers: []TaxLayer{{Name: "GST", Rate: dec("0.09")}}},
			{CountryCode: "ID", Layers: []TaxLayer{{Name: "PPN", Rate: dec("0.11")}}},
			{CountryCode: "MX", Layers: []TaxLayer{{Name: "IVA", Rate: dec("0.16")}}},
		},
		Tiers: []RateTier{
			{
				Service: "economy", Carrier: "GlobalPost",
				Brackets: []WeightBracket{
					{MaxWeightKg: 1, Cost: dec("4.99")},
					{MaxWeightKg: 5, Cost: dec("9.99")},
					{MaxWeightKg: 10, Cost: dec("16.99")},
					{MaxWeightKg: 20, Cost: dec("27.99")},
					{MaxWeightKg: 30, Cost: dec("39.99")},
				},
				FreeDistanceKm: 500, PerKmRate: dec("0.004"),
				RemoteSurcharge: dec("7.50"),
				TransitMinDays:  7, TransitMaxDays: 14,
			},
			{
				Service: "standard", Carrier: "SwiftShip",
				Brackets: []WeightBracket{
					{MaxWeightKg: 1, Cost: dec("7.49")},
					{MaxWeightKg: 5, Cost: dec("13.99")},
					{MaxWeightKg: 10, Cost: dec("22.49")},
					{MaxWeightKg: 20, Cost: dec("36.99")},
					{MaxWeightKg: 30, Cost: dec("52.99")},
				},
				FreeDistanceKm: 300, PerKmRate: dec("0.006"),
				RemoteSurcharge: dec("9.00"),
				TransitMinDays:  4, TransitMaxDays: 8,
			},
			{
				Service: "expedited", Carrier: "SwiftShip", Expedited: true,
				Brackets: []WeightBracket{
					{MaxWeightKg: 1, Cost: dec("14.99")},
					{MaxWeightKg: 5, Cost: dec("24.99")},
					{MaxWeightKg: 10, Cost: dec("39.99")},
					{MaxWeightKg: 20, Cost: dec("64.99")},
				},
				FreeDistanceKm: 150, PerKmRate: dec("0.012"),
				MaxDistanceKm:   12000,
				RemoteSurcharge: dec("15.00"),
				TransitMinDays:  2, TransitMaxDays: 4,
			},
			{
				Service: "priority", Carrier: "AeroExpress", Expedited: true,
				Brackets: []WeightBracket{
					{MaxWeightKg: 1, Cost: dec("24.99")},
					{MaxWeightKg: 5, Cost: dec("42.99")},
					{MaxWeightKg: 10, Cost: dec("69.99")},
				},
				FreeDistanceKm: 100, PerKmRate: dec("0.02"),
				MaxDistanceKm:   9000,
				RemoteSurcharge: dec("22.50"),
				TransitMinDays:  1, TransitMaxDays: 2,
			},
		},
		RemoteAreas: []string{"US/AK", "US/HI", "CA/NU", "CA/YT", "CA/NT", "AU/WA", "AU/NT"},
		LoadedAt:    time.Now().UTC(),
	}
}
