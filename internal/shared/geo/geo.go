package geo

import (
	"fmt"
	"math"
)

const earthRadiusKm = 6371

// DefaultRadiusKm is the check-in geofence radius (100 meters). Every screen
// flow checks against this one constant; do not duplicate the literal.
const DefaultRadiusKm = 0.1

type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Verdict is a geofence decision. A nil DistanceKm means the device or target
// location was unknown, which callers must surface as "location unavailable"
// rather than "too far away"; WithinRange is always false in that case.
type Verdict struct {
	DistanceKm  *float64 `json:"distance_km"`
	WithinRange bool     `json:"within_range"`
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// HaversineKm returns the great-circle distance between two points in km.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLng := radians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Evaluate decides whether device is within radiusKm of target. Either point
// being nil (location unknown) degrades to the nil-distance verdict.
func Evaluate(device, target *Point, radiusKm float64) Verdict {
	if device == nil || target == nil {
		return Verdict{}
	}
	d := HaversineKm(device.Lat, device.Lng, target.Lat, target.Lng)
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return Verdict{}
	}
	return Verdict{DistanceKm: &d, WithinRange: d <= radiusKm}
}

// PointFrom builds a Point from two coerced coordinates, or nil when either
// is unknown.
func PointFrom(lat, lng Coord) *Point {
	latV, ok := lat.Value()
	if !ok {
		return nil
	}
	lngV, ok := lng.Value()
	if !ok {
		return nil
	}
	return &Point{Lat: latV, Lng: lngV}
}

// FormatDistance renders a distance for display: meters under 1 km, otherwise
// km with two decimals.
func FormatDistance(distanceKm float64) string {
	if distanceKm < 1 {
		return fmt.Sprintf("%dm", int(math.Round(distanceKm*1000)))
	}
	return fmt.Sprintf("%.2fkm", distanceKm)
}
