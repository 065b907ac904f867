package utils

import (
	"math"
)

const EarthRadiusKM = 6371.0

// CalculateDistance returns the great-circle distance between two points in
// kilometers using the spherical law of cosines. Identical points return 0
// exactly, and the cosine argument is clamped to [-1, 1] so floating-point
// overshoot never feeds acos a value outside its domain.
func CalculateDistance(lat1, lon1, lat2, lon2 float64) float64 {
	if lat1 == lat2 && lon1 == lon2 {
		return 0
	}

	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	dLonRad := (lon2 - lon1) * math.Pi / 180

	cosine := math.Sin(lat1Rad)*math.Sin(lat2Rad) + math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Cos(dLonRad)
	if cosine > 1 {
		cosine = 1
	} else if cosine < -1 {
		cosine = -1
	}

	return math.Acos(cosine) * EarthRadiusKM
}

func CalculateDistanceInMiles(lat1, lon1, lat2, lon2 float64) float64 {
	return CalculateDistance(lat1, lon1, lat2, lon2) * 0.621371
}

func IsWithinRadius(centerLat, centerLon, pointLat, pointLon, radiusKM float64) bool {
	return CalculateDistance(centerLat, centerLon, pointLat, pointLon) <= radiusKM
}
