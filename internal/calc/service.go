package calc

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/noah-isme/shipcalc/internal/common"
	"github.com/noah-isme/shipcalc/internal/currency"
	"github.com/noah-isme/shipcalc/internal/geo"
	"github.com/noah-isme/shipcalc/internal/obs"
	"github.com/noah-isme/shipcalc/internal/packing"
	"github.com/noah-isme/shipcalc/internal/rates"
	"github.com/noah-isme/shipcalc/internal/refdata"
	"github.com/noah-isme/shipcalc/internal/tax"
)

// Warning codes set on a result when an enrichment was skipped or degraded.
const (
	WarningTaxUnavailable      = "tax_unavailable"
	WarningCurrencyUnavailable = "currency_unavailable"
)

// Options are the caller's knobs for one calculation.
type Options struct {
	CalculateTaxes bool
	TargetCurrency string
	ExpeditedOnly  bool
	Carriers       []string
}

// Result is the immutable aggregate produced by one calculation. It is
// assembled once and never mutated afterwards.
type Result struct {
	ID           uuid.UUID
	Package      packing.Package
	DistanceKm   int
	Destination  geo.Coordinates
	Country      *refdata.Country
	RateOptions  []rates.Option
	Tax          *tax.Result
	Conversion   *currency.Conversion
	Warnings     []string
	BaseCurrency string
	Origin       geo.Coordinates
	OriginLabel  string
	CalculatedAt time.Time
}

// Service composes the calculation pipeline: consolidate the package,
// resolve geography, price the tiers, then enrich with tax and currency.
// Package and geography failures abort the calculation; tax and currency
// failures are contained and reported as warnings, because shipping cost is
// the calculation's primary purpose and the rest is display enrichment.
type Service struct {
	Ref      *refdata.Store
	Geo      geo.Resolver
	Packer   packing.Consolidator
	Rates    rates.Engine
	Currency currency.Converter
	Logger   zerolog.Logger
}

// Calculate runs the full pipeline for one request. Errors carry the
// taxonomy code and HTTP status via common.AppError.
func (s *Service) Calculate(ctx context.Context, items []packing.Item, addr geo.Address, opts Options) (*Result, error) {
	start := time.Now()
	_, span := otel.Tracer("calc").Start(ctx, "calc.Calculate")
	defer span.End()

	res, err := s.calculate(items, addr, opts)
	elapsed := time.Since(start)
	if obs.CalculationDuration != nil {
		obs.CalculationDuration.Observe(obs.DurationMillis(elapsed))
	}
	if err != nil {
		outcome := "internal"
		if appErr, ok := common.AsAppError(err); ok {
			outcome = appErr.Code
		}
		countCalculation(outcome)
		span.SetAttributes(attribute.String("calc.outcome", outcome))
		s.Logger.Warn().Err(err).Str("outcome", outcome).Msg("calculation rejected")
		return nil, err
	}
	countCalculation("ok")
	span.SetAttributes(
		attribute.String("calc.outcome", "ok"),
		attribute.Int("calc.rate_options", len(res.RateOptions)),
		attribute.Int("calc.distance_km", res.DistanceKm),
	)
	s.Logger.Debug().
		Str("calculation_id", res.ID.String()).
		Int("distance_km", res.DistanceKm).
		Int("rate_options", len(res.RateOptions)).
		Strs("warnings", res.Warnings).
		Dur("elapsed", elapsed).
		Msg("calculation completed")
	return res, nil
}

func (s *Service) calculate(items []packing.Item, addr geo.Address, opts Options) (*Result, error) {
	// Fail fast on the request shape before touching any engine.
	if len(items) == 0 {
		return nil, common.InvalidInput("cart_items is required and must not be empty", packing.ErrEmptyCart)
	}
	if addr.CountryCode == "" && (addr.Latitude == nil || addr.Longitude == nil) {
		return nil, common.InvalidInput("destination_address.country_code is required", geo.ErrUnresolvableAddress)
	}

	snap, err := s.Ref.Current()
	if err != nil {
		return nil, common.NewAppError("INTERNAL", "reference data not loaded", http.StatusServiceUnavailable, err)
	}

	pkg, err := s.Packer.Consolidate(items)
	if err != nil {
		return nil, common.InvalidInput(err.Error(), err)
	}

	resolution, err := s.Geo.Resolve(addr, snap)
	if err != nil {
		return nil, common.NewAppError(common.CodeUnresolvableAddress, err.Error(), http.StatusBadRequest, err)
	}

	options, err := s.Rates.Quote(snap.Tiers, rates.Input{
		BillableWeightKg: pkg.BillableWeightKg,
		DistanceKm:       resolution.DistanceKm,
		Remote:           resolution.Remote,
	}, rates.Options{ExpeditedOnly: opts.ExpeditedOnly, Carriers: opts.Carriers})
	if err != nil {
		return nil, common.NewAppError(common.CodeNoRatesAvailable, err.Error(), http.StatusBadRequest, err)
	}

	res := &Result{
		ID:           uuid.New(),
		Package:      pkg,
		DistanceKm:   resolution.DistanceKm,
		Destination:  resolution.Coordinates,
		Country:      resolution.Country,
		RateOptions:  options,
		BaseCurrency: baseCurrency(s.Currency.Base),
		Origin:       s.Geo.Origin,
		OriginLabel:  s.Geo.OriginLabel,
		CalculatedAt: time.Now().UTC(),
	}

	if opts.CalculateTaxes {
		taxRes, err := tax.Calculate(snap, pkg.DeclaredValue, resolution.CountryCode, resolution.StateCode)
		if err != nil {
			// Contained: the shipping quote stands on its own.
			res.Warnings = append(res.Warnings, WarningTaxUnavailable)
			countDegraded("tax")
			s.Logger.Warn().Err(err).Msg("tax enrichment degraded")
		} else {
			res.Tax = &taxRes
		}
	}

	if opts.TargetCurrency != "" {
		conv, err := s.Currency.For(snap, opts.TargetCurrency)
		if err != nil {
			res.Warnings = append(res.Warnings, WarningCurrencyUnavailable)
			countDegraded("currency")
			s.Logger.Warn().Err(err).Str("target", opts.TargetCurrency).Msg("currency enrichment degraded")
		} else if conv.Converted {
			res.Conversion = &conv
		}
	}

	return res, nil
}

func baseCurrency(base string) string {
	if base == "" {
		return currency.DefaultBase
	}
	return base
}

func countCalculation(result string) {
	if obs.CalculationsTotal != nil {
		obs.CalculationsTotal.WithLabelValues(result).Inc()
	}
}

func countDegraded(kind string) {
	if obs.EnrichmentDegradedTotal != nil {
		obs.EnrichmentDegradedTotal.WithLabelValues(kind).Inc()
	}
}
