package geo

import "github.com/umahmood/haversine"

// DistanceMeters returns the great-circle distance between two coordinates
// over the Earth's mean radius (6371 km).
func DistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	_, km := haversine.Distance(
		haversine.Coord{Lat: lat1, Lon: lng1},
		haversine.Coord{Lat: lat2, Lon: lng2},
	)
	return km * 1000
}
