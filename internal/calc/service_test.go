package calc

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/shipcalc/internal/common"
	"github.com/noah-isme/shipcalc/internal/geo"
	"github.com/noah-isme/shipcalc/internal/packing"
	"github.com/noah-isme/shipcalc/internal/refdata"
	"github.com/noah-isme/shipcalc/internal/tax"
)

func newTestService() *Service {
	return &Service{
		Ref:    refdata.NewStore(refdata.Seed()),
		Geo:    geo.Resolver{Origin: geo.Coordinates{Latitude: 34.0522, Longitude: -118.2437}, OriginLabel: "Los Angeles, CA"},
		Logger: zerolog.Nop(),
	}
}

func standardCart() []packing.Item {
	return []packing.Item{{UnitPrice: decimal.RequireFromString("25.00"), Quantity: 2, WeightKg: 1.5}}
}

func TestCalculateCanadaWithTaxes(t *testing.T) {
	svc := newTestService()

	res, err := svc.Calculate(context.Background(), standardCart(), geo.Address{CountryCode: "CA"}, Options{CalculateTaxes: true})
	require.NoError(t, err)

	require.True(t, res.Package.DeclaredValue.Equal(decimal.RequireFromString("50.00")))
	require.GreaterOrEqual(t, res.Package.BillableWeightKg, 3.0)
	require.Equal(t, 2618, res.DistanceKm)
	require.NotEmpty(t, res.RateOptions)

	// Options come back sorted by ascending total cost.
	for i := 1; i < len(res.RateOptions); i++ {
		require.False(t, res.RateOptions[i].TotalCost.LessThan(res.RateOptions[i-1].TotalCost))
	}
	require.Equal(t, "economy", res.RateOptions[0].Service)

	require.NotNil(t, res.Tax)
	require.Equal(t, tax.SourceCountry, res.Tax.RuleSource)
	require.True(t, res.Tax.Amount.Equal(decimal.RequireFromString("2.50")), "got %s", res.Tax.Amount)
	require.True(t, res.Tax.TaxableAmount.Equal(decimal.RequireFromString("50.00")))

	require.Empty(t, res.Warnings)
	require.Nil(t, res.Conversion)
	require.Equal(t, "USD", res.BaseCurrency)
	require.NotEqual(t, "", res.ID.String())

	require.NotNil(t, res.Country)
	require.Equal(t, "Canada", res.Country.Name)
}

func TestCalculateMissingCountry(t *testing.T) {
	svc := newTestService()

	_, err := svc.Calculate(context.Background(), standardCart(), geo.Address{}, Options{})
	require.Error(t, err)

	appErr, ok := common.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, common.CodeInvalidInput, appErr.Code)
	require.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
	require.Contains(t, strings.ToLower(appErr.Message), "country")
}

func TestCalculateUnknownCountry(t *testing.T) {
	svc := newTestService()

	_, err := svc.Calculate(context.Background(), standardCart(), geo.Address{CountryCode: "ZZ"}, Options{})
	appErr, ok := common.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, common.CodeUnresolvableAddress, appErr.Code)
	require.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
}

func TestCalculateEmptyCart(t *testing.T) {
	svc := newTestService()

	_, err := svc.Calculate(context.Background(), nil, geo.Address{CountryCode: "CA"}, Options{})
	appErr, ok := common.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, common.CodeInvalidInput, appErr.Code)
}

func TestCalculateOverweightCart(t *testing.T) {
	svc := newTestService()
	items := []packing.Item{{UnitPrice: decimal.RequireFromString("10.00"), Quantity: 1, WeightKg: 45}}

	_, err := svc.Calculate(context.Background(), items, geo.Address{CountryCode: "CA"}, Options{})
	appErr, ok := common.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, common.CodeNoRatesAvailable, appErr.Code)
}

func TestCalculateNoSnapshotLoaded(t *testing.T) {
	svc := newTestService()
	svc.Ref = refdata.NewStore(nil)

	_, err := svc.Calculate(context.Background(), standardCart(), geo.Address{CountryCode: "CA"}, Options{})
	appErr, ok := common.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, http.StatusServiceUnavailable, appErr.HTTPStatus)
}

func TestCalculateCurrencyConversion(t *testing.T) {
	svc := newTestService()

	res, err := svc.Calculate(context.Background(), standardCart(), geo.Address{CountryCode: "CA"}, Options{
		CalculateTaxes: true,
		TargetCurrency: "CAD",
	})
	require.NoError(t, err)
	require.NotNil(t, res.Conversion)
	require.Equal(t, "USD", res.Conversion.From)
	require.Equal(t, "CAD", res.Conversion.To)
	require.True(t, res.Conversion.Rate.Equal(decimal.RequireFromString("1.36")))
	require.Empty(t, res.Warnings)
}

func TestCalculateCurrencyUnavailableIsContained(t *testing.T) {
	svc := newTestService()

	res, err := svc.Calculate(context.Background(), standardCart(), geo.Address{CountryCode: "CA"}, Options{
		CalculateTaxes: true,
		TargetCurrency: "CHF",
	})
	require.NoError(t, err)
	require.Nil(t, res.Conversion)
	require.Contains(t, res.Warnings, WarningCurrencyUnavailable)

	// The shipping quote and tax are unaffected by the degraded enrichment.
	require.NotEmpty(t, res.RateOptions)
	require.NotNil(t, res.Tax)
}

func TestCalculateBaseCurrencyTargetIsNoop(t *testing.T) {
	svc := newTestService()

	res, err := svc.Calculate(context.Background(), standardCart(), geo.Address{CountryCode: "CA"}, Options{TargetCurrency: "usd"})
	require.NoError(t, err)
	require.Nil(t, res.Conversion)
	require.Empty(t, res.Warnings)
}

func TestCalculateExpeditedOnly(t *testing.T) {
	svc := newTestService()

	res, err := svc.Calculate(context.Background(), standardCart(), geo.Address{CountryCode: "CA"}, Options{ExpeditedOnly: true})
	require.NoError(t, err)
	require.NotEmpty(t, res.RateOptions)
	for _, opt := range res.RateOptions {
		require.True(t, opt.Expedited, "service %s", opt.Service)
	}
}
