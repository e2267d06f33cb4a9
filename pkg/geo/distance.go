package geo

import (
	"math"
)

const earthRadiusKm = 6371.0

// DistanceKm Haversine 거리 (km)
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad, lat2Rad := toRad(lat1), toRad(lat2)
	dLat := lat2Rad - lat1Rad
	dLon := toRad(lon2) - toRad(lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// Center 좌표 목록의 평균 (비어 있으면 기본 좌표)
func Center(points [][2]float64, defaultLat, defaultLon float64) (float64, float64) {
	if len(points) == 0 {
		return defaultLat, defaultLon
	}
	var sumLat, sumLon float64
	for _, p := range points {
		sumLat += p[0]
		sumLon += p[1]
	}
	n := float64(len(points))
	return sumLat / n, sumLon / n
}
