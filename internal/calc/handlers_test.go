package calc

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/shipcalc/internal/geo"
	"github.com/noah-isme/shipcalc/internal/refdata"
)

func newTestRouter() http.Handler {
	svc := &Service{
		Ref:    refdata.NewStore(refdata.Seed()),
		Geo:    geo.Resolver{Origin: geo.Coordinates{Latitude: 34.0522, Longitude: -118.2437}, OriginLabel: "Los Angeles, CA"},
		Logger: zerolog.Nop(),
	}
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.MethodNotAllowed(h.MethodNotAllowed)
	r.Route("/api/v1/shipping", func(r chi.Router) {
		r.Post("/calculate", h.Calculate)
		r.Options("/calculate", h.Preflight)
	})
	return r
}

func postCalculate(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/shipping/calculate", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

const standardBody = `{
	"cart_items": [{"price": 25.00, "quantity": 2, "weight": 1.5}],
	"destination_address": {"country_code": "CA"},
	"options": {"calculate_taxes": true}
}`

func TestCalculateEndpointSuccess(t *testing.T) {
	router := newTestRouter()
	rr := postCalculate(t, router, standardBody)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Success       bool   `json:"success"`
		CalculationID string `json:"calculation_id"`
		ShippingRates []struct {
			Service   string          `json:"service"`
			Carrier   string          `json:"carrier"`
			TotalCost decimal.Decimal `json:"total_cost"`
			Currency  string          `json:"currency"`
		} `json:"shipping_rates"`
		PackageDetails struct {
			BillableWeightKg float64         `json:"billable_weight_kg"`
			DeclaredValue    decimal.Decimal `json:"declared_value"`
			ItemCount        int             `json:"item_count"`
		} `json:"package_details"`
		DistanceKm             int `json:"distance_km"`
		DestinationCoordinates struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"destination_coordinates"`
		CountryInfo *struct {
			Code     string `json:"code"`
			Currency string `json:"currency"`
		} `json:"country_info"`
		TaxInfo *struct {
			Amount       decimal.Decimal `json:"amount"`
			Jurisdiction string          `json:"jurisdiction"`
		} `json:"tax_info"`
		CurrencyRates   *json.RawMessage `json:"currency_rates"`
		Warnings        []string         `json:"warnings"`
		CalculationTime string           `json:"calculation_time"`
		BaseLocation    struct {
			Label string `json:"label"`
		} `json:"base_location"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	require.True(t, resp.Success)
	require.NotEmpty(t, resp.CalculationID)
	require.Len(t, resp.ShippingRates, 4)
	require.Equal(t, "economy", resp.ShippingRates[0].Service)
	require.Equal(t, "USD", resp.ShippingRates[0].Currency)
	require.True(t, resp.ShippingRates[0].TotalCost.Equal(decimal.RequireFromString("18.46")))
	require.Equal(t, 3.0, resp.PackageDetails.BillableWeightKg)
	require.True(t, resp.PackageDetails.DeclaredValue.Equal(decimal.RequireFromString("50.00")))
	require.Equal(t, 2, resp.PackageDetails.ItemCount)
	require.Equal(t, 2618, resp.DistanceKm)
	require.NotNil(t, resp.CountryInfo)
	require.Equal(t, "CA", resp.CountryInfo.Code)
	require.Equal(t, "CAD", resp.CountryInfo.Currency)
	require.NotNil(t, resp.TaxInfo)
	require.True(t, resp.TaxInfo.Amount.Equal(decimal.RequireFromString("2.50")))
	require.Nil(t, resp.CurrencyRates)
	require.Empty(t, resp.Warnings)
	require.NotEmpty(t, resp.CalculationTime)
	require.Equal(t, "Los Angeles, CA", resp.BaseLocation.Label)
}

func TestCalculateEndpointMissingCountry(t *testing.T) {
	router := newTestRouter()
	rr := postCalculate(t, router, `{
		"cart_items": [{"price": 25.00, "quantity": 2, "weight": 1.5}],
		"destination_address": {}
	}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	var resp struct {
		Success   bool   `json:"success"`
		Error     string `json:"error"`
		Timestamp string `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.False(t, resp.Success)
	require.Contains(t, strings.ToLower(resp.Error), "country")
	require.NotEmpty(t, resp.Timestamp)
}

func TestCalculateEndpointCurrencyUnavailable(t *testing.T) {
	router := newTestRouter()
	rr := postCalculate(t, router, `{
		"cart_items": [{"price": 25.00, "quantity": 2, "weight": 1.5}],
		"destination_address": {"country_code": "CA"},
		"options": {"calculate_taxes": true, "target_currency": "CHF"}
	}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Success       bool              `json:"success"`
		ShippingRates []json.RawMessage `json:"shipping_rates"`
		TaxInfo       *json.RawMessage  `json:"tax_info"`
		CurrencyRates *json.RawMessage  `json:"currency_rates"`
		Warnings      []string          `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.NotEmpty(t, resp.ShippingRates)
	require.NotNil(t, resp.TaxInfo)
	require.Nil(t, resp.CurrencyRates)
	require.Contains(t, resp.Warnings, WarningCurrencyUnavailable)
}

func TestCalculateEndpointCurrencyConversion(t *testing.T) {
	router := newTestRouter()
	rr := postCalculate(t, router, `{
		"cart_items": [{"price": 25.00, "quantity": 2, "weight": 1.5}],
		"destination_address": {"country_code": "CA"},
		"options": {"calculate_taxes": true, "target_currency": "CAD"}
	}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		CurrencyRates *struct {
			BaseCurrency   string          `json:"base_currency"`
			TargetCurrency string          `json:"target_currency"`
			Rate           decimal.Decimal `json:"rate"`
			DeclaredValue  decimal.Decimal `json:"declared_value"`
			TaxAmount      decimal.Decimal `json:"tax_amount"`
			ShippingRates  []struct {
				Service   string          `json:"service"`
				TotalCost decimal.Decimal `json:"total_cost"`
			} `json:"shipping_rates"`
		} `json:"currency_rates"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotNil(t, resp.CurrencyRates)
	require.Equal(t, "USD", resp.CurrencyRates.BaseCurrency)
	require.Equal(t, "CAD", resp.CurrencyRates.TargetCurrency)
	require.True(t, resp.CurrencyRates.Rate.Equal(decimal.RequireFromString("1.36")))
	// 50.00 * 1.36 and 2.50 * 1.36, each rounded independently.
	require.True(t, resp.CurrencyRates.DeclaredValue.Equal(decimal.RequireFromString("68.00")))
	require.True(t, resp.CurrencyRates.TaxAmount.Equal(decimal.RequireFromString("3.40")))
	require.Len(t, resp.CurrencyRates.ShippingRates, 4)
	// economy: 18.46 * 1.36 = 25.1056 -> 25.11
	require.True(t, resp.CurrencyRates.ShippingRates[0].TotalCost.Equal(decimal.RequireFromString("25.11")))
}

func TestCalculateEndpointInvalidJSON(t *testing.T) {
	router := newTestRouter()
	rr := postCalculate(t, router, `{"cart_items": [`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCalculateEndpointValidation(t *testing.T) {
	router := newTestRouter()
	rr := postCalculate(t, router, `{
		"cart_items": [{"price": 25.00, "quantity": 0}],
		"destination_address": {"country_code": "CA"}
	}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCalculateEndpointMethodNotAllowed(t *testing.T) {
	router := newTestRouter()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/shipping/calculate", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	var resp struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.False(t, resp.Success)
	require.Equal(t, "Method not allowed", resp.Error)
}

func TestCalculateEndpointPreflight(t *testing.T) {
	router := newTestRouter()
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/shipping/calculate", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
}
