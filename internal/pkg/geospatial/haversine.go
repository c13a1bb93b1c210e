package geospatial

import "math"

const earthRadiusKm = 6371.0

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c * 1000 // meters
}

// ProjectPlanar maps a WGS 84 point onto a local ground plane centred on the origin.
// x grows east and z grows north, both in meters. Accurate at campus scale only.
func ProjectPlanar(lat, lon, originLat, originLon float64) (x, z float64) {
	x = Haversine(originLat, originLon, originLat, lon)
	if lon < originLon {
		x = -x
	}
	z = Haversine(originLat, originLon, lat, originLon)
	if lat < originLat {
		z = -z
	}
	return x, z
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
