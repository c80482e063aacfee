package calc

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/shipcalc/internal/common"
	"github.com/noah-isme/shipcalc/internal/geo"
	"github.com/noah-isme/shipcalc/internal/packing"
)

type dimensionsPayload struct {
	LengthCm float64 `json:"length_cm" validate:"omitempty,gte=0"`
	WidthCm  float64 `json:"width_cm" validate:"omitempty,gte=0"`
	HeightCm float64 `json:"height_cm" validate:"omitempty,gte=0"`
}

type cartItemPayload struct {
	Price      decimal.Decimal    `json:"price"`
	Quantity   int                `json:"quantity" validate:"required,gt=0"`
	WeightKg   float64            `json:"weight" validate:"omitempty,gte=0"`
	Dimensions *dimensionsPayload `json:"dimensions" validate:"omitempty"`
}

type addressPayload struct {
	CountryCode string   `json:"country_code" validate:"omitempty,len=2,alpha"`
	StateCode   string   `json:"state_code" validate:"omitempty,max=8"`
	City        string   `json:"city" validate:"omitempty,max=128"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
}

type optionsPayload struct {
	CalculateTaxes bool     `json:"calculate_taxes"`
	TargetCurrency string   `json:"target_currency" validate:"omitempty,len=3,alpha"`
	ExpeditedOnly  bool     `json:"expedited_only"`
	Carriers       []string `json:"carriers" validate:"omitempty,dive,min=1"`
}

type calculateRequest struct {
	CartItems          []cartItemPayload `json:"cart_items" validate:"required,min=1,dive"`
	DestinationAddress addressPayload    `json:"destination_address"`
	Options            optionsPayload    `json:"options"`
}

type ratePayload struct {
	Service           string          `json:"service"`
	Carrier           string          `json:"carrier"`
	Expedited         bool            `json:"expedited"`
	BaseCost          decimal.Decimal `json:"base_cost"`
	DistanceSurcharge decimal.Decimal `json:"distance_surcharge"`
	RemoteSurcharge   decimal.Decimal `json:"remote_surcharge"`
	TotalCost         decimal.Decimal `json:"total_cost"`
	Currency          string          `json:"currency"`
	TransitMinDays    int             `json:"transit_min_days"`
	TransitMaxDays    int             `json:"transit_max_days"`
}

type packagePayload struct {
	TotalWeightKg      float64         `json:"total_weight_kg"`
	VolumetricWeightKg float64         `json:"volumetric_weight_kg"`
	BillableWeightKg   float64         `json:"billable_weight_kg"`
	DeclaredValue      decimal.Decimal `json:"declared_value"`
	ItemCount          int             `json:"item_count"`
}

type coordinatesPayload struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type countryPayload struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Currency string `json:"currency"`
	Timezone string `json:"timezone,omitempty"`
}

type taxPayload struct {
	TaxableAmount decimal.Decimal `json:"taxable_amount"`
	Rate          decimal.Decimal `json:"rate"`
	Amount        decimal.Decimal `json:"amount"`
	Jurisdiction  string          `json:"jurisdiction"`
	RuleSource    string          `json:"rule_source"`
}

type convertedRatePayload struct {
	Service   string          `json:"service"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

type currencyPayload struct {
	BaseCurrency   string                 `json:"base_currency"`
	TargetCurrency string                 `json:"target_currency"`
	Rate           decimal.Decimal        `json:"rate"`
	DeclaredValue  decimal.Decimal        `json:"declared_value"`
	TaxAmount      *decimal.Decimal       `json:"tax_amount,omitempty"`
	ShippingRates  []convertedRatePayload `json:"shipping_rates"`
}

type baseLocationPayload struct {
	Label     string  `json:"label"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type calculateResponse struct {
	Success                bool                `json:"success"`
	CalculationID          string              `json:"calculation_id"`
	ShippingRates          []ratePayload       `json:"shipping_rates"`
	PackageDetails         packagePayload      `json:"package_details"`
	DistanceKm             int                 `json:"distance_km"`
	DestinationCoordinates coordinatesPayload  `json:"destination_coordinates"`
	CountryInfo            *countryPayload     `json:"country_info"`
	TaxInfo                *taxPayload         `json:"tax_info"`
	CurrencyRates          *currencyPayload    `json:"currency_rates"`
	Warnings               []string            `json:"warnings"`
	CalculationTime        string              `json:"calculation_time"`
	BaseLocation           baseLocationPayload `json:"base_location"`
}

// Handler exposes the shipping calculation endpoint.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

// NewHandler wires a handler with a ready validator instance.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc, Validate: validator.New()}
}

// Calculate handles POST /api/v1/shipping/calculate.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONFailure(w, http.StatusInternalServerError, "calculation service not configured")
		return
	}
	var req calculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONFailure(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(req); err != nil {
			common.JSONFailure(w, http.StatusBadRequest, validationMessage(err))
			return
		}
	}

	items := make([]packing.Item, 0, len(req.CartItems))
	for _, it := range req.CartItems {
		item := packing.Item{
			UnitPrice: it.Price,
			Quantity:  it.Quantity,
			WeightKg:  it.WeightKg,
		}
		if it.Dimensions != nil {
			item.LengthCm = it.Dimensions.LengthCm
			item.WidthCm = it.Dimensions.WidthCm
			item.HeightCm = it.Dimensions.HeightCm
		}
		items = append(items, item)
	}

	addr := geo.Address{
		CountryCode: req.DestinationAddress.CountryCode,
		StateCode:   req.DestinationAddress.StateCode,
		City:        req.DestinationAddress.City,
		Latitude:    req.DestinationAddress.Latitude,
		Longitude:   req.DestinationAddress.Longitude,
	}

	res, err := h.Svc.Calculate(r.Context(), items, addr, Options{
		CalculateTaxes: req.Options.CalculateTaxes,
		TargetCurrency: req.Options.TargetCurrency,
		ExpeditedOnly:  req.Options.ExpeditedOnly,
		Carriers:       req.Options.Carriers,
	})
	if err != nil {
		status := http.StatusBadRequest
		message := "calculation failed"
		if appErr, ok := common.AsAppError(err); ok {
			status = appErr.HTTPStatus
			message = appErr.Message
		}
		common.JSONFailure(w, status, message)
		return
	}

	common.JSON(w, http.StatusOK, buildResponse(res))
}

// Preflight answers CORS pre-flight requests on the calculation path.
func (h *Handler) Preflight(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// MethodNotAllowed rejects unsupported verbs on the calculation path.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	common.JSONFailure(w, http.StatusMethodNotAllowed, "Method not allowed")
}

func buildResponse(res *Result) calculateResponse {
	out := calculateResponse{
		Success:       true,
		CalculationID: res.ID.String(),
		ShippingRates: make([]ratePayload, 0, len(res.RateOptions)),
		PackageDetails: packagePayload{
			TotalWeightKg:      res.Package.TotalWeightKg,
			VolumetricWeightKg: res.Package.VolumetricWeightKg,
			BillableWeightKg:   res.Package.BillableWeightKg,
			DeclaredValue:      res.Package.DeclaredValue,
			ItemCount:          res.Package.ItemCount,
		},
		DistanceKm: res.DistanceKm,
		DestinationCoordinates: coordinatesPayload{
			Latitude:  res.Destination.Latitude,
			Longitude: res.Destination.Longitude,
		},
		Warnings:        warningsOrEmpty(res.Warnings),
		CalculationTime: res.CalculatedAt.Format(time.RFC3339),
		BaseLocation: baseLocationPayload{
			Label:     res.OriginLabel,
			Latitude:  res.Origin.Latitude,
			Longitude: res.Origin.Longitude,
		},
	}

	if res.Country != nil {
		out.CountryInfo = &countryPayload{
			Code:     res.Country.Code,
			Name:     res.Country.Name,
			Currency: res.Country.CurrencyCode,
			Timezone: res.Country.Timezone,
		}
	}
	for _, opt := range res.RateOptions {
		out.ShippingRates = append(out.ShippingRates, ratePayload{
			Service:           opt.Service,
			Carrier:           opt.Carrier,
			Expedited:         opt.Expedited,
			BaseCost:          opt.BaseCost,
			DistanceSurcharge: opt.DistanceSurcharge,
			RemoteSurcharge:   opt.RemoteSurcharge,
			TotalCost:         opt.TotalCost,
			Currency:          res.BaseCurrency,
			TransitMinDays:    opt.TransitMinDays,
			TransitMaxDays:    opt.TransitMaxDays,
		})
	}

	if res.Tax != nil {
		out.TaxInfo = &taxPayload{
			TaxableAmount: res.Tax.TaxableAmount,
			Rate:          res.Tax.Rate,
			Amount:        res.Tax.Amount,
			Jurisdiction:  res.Tax.Jurisdiction,
			RuleSource:    res.Tax.RuleSource,
		}
	}

	if res.Conversion != nil {
		conv := currencyPayload{
			BaseCurrency:   res.Conversion.From,
			TargetCurrency: res.Conversion.To,
			Rate:           res.Conversion.Rate,
			DeclaredValue:  res.Conversion.Apply(res.Package.DeclaredValue),
			ShippingRates:  make([]convertedRatePayload, 0, len(res.RateOptions)),
		}
		if res.Tax != nil {
			converted := res.Conversion.Apply(res.Tax.Amount)
			conv.TaxAmount = &converted
		}
		for _, opt := range res.RateOptions {
			conv.ShippingRates = append(conv.ShippingRates, convertedRatePayload{
				Service:   opt.Service,
				TotalCost: res.Conversion.Apply(opt.TotalCost),
			})
		}
		out.CurrencyRates = &conv
	}

	return out
}

func warningsOrEmpty(warnings []string) []string {
	if warnings == nil {
		return []string{}
	}
	return warnings
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return "invalid field " + verrs[0].Namespace()
	}
	return "invalid request payload"
}
