package geo

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/noah-isme/shipcalc/internal/refdata"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distance.
const EarthRadiusKm = 6371.0

var (
	// ErrUnresolvableAddress is returned when the destination cannot be
	// geo-resolved from the supplied fields and reference data.
	ErrUnresolvableAddress = errors.New("destination address cannot be resolved")
	// ErrInvalidCoordinates is returned for out-of-range explicit coordinates.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

// Coordinates is a geographic point.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Address is the destination as supplied by the caller. Explicit coordinates
// take precedence over reference lookup.
type Address struct {
	CountryCode string
	StateCode   string
	City        string
	Latitude    *float64
	Longitude   *float64
}

// Resolution is the outcome of resolving an address against a snapshot.
type Resolution struct {
	Coordinates Coordinates
	CountryCode string
	StateCode   string
	Country     *refdata.Country
	DistanceKm  int
	Remote      bool
}

// Resolver resolves destinations and computes distance from a fixed origin.
type Resolver struct {
	Origin      Coordinates
	OriginLabel string
}

// Resolve determines the destination coordinate and jurisdiction, then
// computes the great-circle distance from the configured origin. The result
// is deterministic for a given address and snapshot.
func (r Resolver) Resolve(addr Address, snap *refdata.Snapshot) (Resolution, error) {
	country := strings.ToUpper(strings.TrimSpace(addr.CountryCode))
	state := strings.ToUpper(strings.TrimSpace(addr.StateCode))

	res := Resolution{CountryCode: country, StateCode: state}
	if c, ok := snap.Country(country); ok {
		res.Country = &c
	}

	switch {
	case addr.Latitude != nil && addr.Longitude != nil:
		if err := validateCoordinates(*addr.Latitude, *addr.Longitude); err != nil {
			return Resolution{}, err
		}
		res.Coordinates = Coordinates{Latitude: *addr.Latitude, Longitude: *addr.Longitude}
	case res.Country == nil:
		if country == "" {
			return Resolution{}, fmt.Errorf("%w: country code is required", ErrUnresolvableAddress)
		}
		return Resolution{}, fmt.Errorf("%w: unknown country code %q", ErrUnresolvableAddress, country)
	default:
		lat, lon, ok := snap.LookupLocation(country, state, addr.City)
		if !ok {
			return Resolution{}, fmt.Errorf("%w: no coordinates for %q", ErrUnresolvableAddress, country)
		}
		res.Coordinates = Coordinates{Latitude: lat, Longitude: lon}
	}

	res.DistanceKm = int(math.Round(Haversine(r.Origin, res.Coordinates)))
	res.Remote = snap.IsRemote(country, state)
	return res, nil
}

// Haversine computes the great-circle distance between two points in
// kilometers.
func Haversine(a, b Coordinates) float64 {
	lat1 := radians(a.Latitude)
	lat2 := radians(b.Latitude)
	dLat := radians(b.Latitude - a.Latitude)
	dLon := radians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

func validateCoordinates(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude must be between -90 and 90", ErrInvalidCoordinates)
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("%w: longitude must be between -180 and 180", ErrInvalidCoordinates)
	}
	return nil
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
