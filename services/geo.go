package services

import (
	"math"
)

const (
	// EarthRadiusKm is the mean Earth radius used for great-circle distances.
	EarthRadiusKm = 6371.0

	// SearchRadiusKm is the largest distance at which an event still matches a location search.
	SearchRadiusKm = 20.0

	// nearbyBoxDegrees is the half side of the square used to find nearby clubs.
	nearbyBoxDegrees = 0.02
)

// HaversineKm returns the great-circle distance in kilometers between two
// points given in decimal degrees. The result is not rounded.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
