package valueobject

import (
	"fmt"
	"math"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// EarthRadiusKm is the mean earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0

// Location is a WGS84 point.
type Location struct {
	latitude  float64
	longitude float64
}

// NewLocation validates latitude in [-90, 90] and longitude in [-180, 180].
func NewLocation(latitude, longitude float64) (Location, error) {
	if math.IsNaN(latitude) || math.IsNaN(longitude) {
		return Location{}, fmt.Errorf("%w: coordinates must be numbers", ErrInvalidLocation)
	}

	if err := validation.Validate(latitude,
		validation.Min(-90.0).Error("latitude must be >= -90"),
		validation.Max(90.0).Error("latitude must be <= 90"),
	); err != nil {
		return Location{}, fmt.Errorf("%w: %v", ErrInvalidLocation, err)
	}
	if err := validation.Validate(longitude,
		validation.Min(-180.0).Error("longitude must be >= -180"),
		validation.Max(180.0).Error("longitude must be <= 180"),
	); err != nil {
		return Location{}, fmt.Errorf("%w: %v", ErrInvalidLocation, err)
	}

	return Location{latitude: latitude, longitude: longitude}, nil
}

// MustLocation panics on invalid coordinates. Intended for fixtures.
func MustLocation(latitude, longitude float64) Location {
	l, err := NewLocation(latitude, longitude)
	if err != nil {
		panic(err)
	}
	return l
}

func (l Location) Latitude() float64 {
	return l.latitude
}

func (l Location) Longitude() float64 {
	return l.longitude
}

// DistanceTo returns the haversine great-circle distance in kilometres.
func (l Location) DistanceTo(other Location) float64 {
	lat1 := toRadians(l.latitude)
	lat2 := toRadians(other.latitude)
	dLat := lat2 - lat1
	dLon := toRadians(other.longitude - l.longitude)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	a = math.Min(1, math.Max(0, a))

	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(a))
}

// Equals compares coordinates exactly.
func (l Location) Equals(other Location) bool {
	return l.latitude == other.latitude && l.longitude == other.longitude
}

func (l Location) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", l.latitude, l.longitude)
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
