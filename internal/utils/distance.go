package utils

import (
	"math"
)

// CalculateDistance returns the great-circle distance between two coordinates
// in kilometers.
func CalculateDistance(lat1, lon1, lat2, lon2 float64) float64 {
	return haversineDistance(lat1, lon1, lat2, lon2)
}

func haversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lon1Rad := lon1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	lon2Rad := lon2 * math.Pi / 180

	dLat := lat2Rad - lat1Rad
	dLon := lon2Rad - lon1Rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKM * c
}

// RoundDistance rounds a distance to two decimal places for display and
// radius comparisons.
func RoundDistance(km float64) float64 {
	return math.Round(km*100) / 100
}

// ValidCoordinates reports whether a lat/lon pair is on the globe.
func ValidCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

func IsWithinRadius(centerLat, centerLon, pointLat, pointLon, radiusKM float64) bool {
	return RoundDistance(CalculateDistance(centerLat, centerLon, pointLat, pointLon)) <= radiusKM
}

// EstimateETAMinutes estimates travel time at an average city speed.
func EstimateETAMinutes(distanceKM float64, averageSpeedKMH float64) int {
	if averageSpeedKMH <= 0 {
		averageSpeedKMH = 30
	}
	return int(math.Ceil(distanceKM / averageSpeedKMH * 60))
}
