// Package geo provides the great-circle arithmetic used by the matcher and
// the pickup-distance checks. Pure functions, no state.
package geo

import "math"

const earthRadiusKm = 6371.0

// DistanceKm returns the haversine distance between two points in kilometers.
func DistanceKm(aLat, aLng, bLat, bLng float64) float64 {
	dLat := toRad(bLat - aLat)
	dLng := toRad(bLng - aLng)
	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	h := sinLat*sinLat + math.Cos(toRad(aLat))*math.Cos(toRad(bLat))*sinLng*sinLng
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

// ETAMinutes converts a distance at a flat assumed speed into minutes.
// Returns +Inf when the speed is non-positive or either input is not finite,
// so callers can treat "unreachable" uniformly without an error path.
func ETAMinutes(distanceKm, speedKmh float64) float64 {
	if speedKmh <= 0 || !isFinite(distanceKm) || !isFinite(speedKmh) {
		return math.Inf(1)
	}
	return distanceKm / speedKmh * 60
}

func toRad(deg float64) float64 { return deg * math.Pi / 180 }

func isFinite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
