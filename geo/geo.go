package geo

import "math"

// EarthRadiusKM is the mean Earth radius used by the haversine formula
const EarthRadiusKM = 6371.0

// zeroSnapKM is the threshold under which a computed distance is treated as
// zero, so coincident points don't come back as float noise
const zeroSnapKM = 0.1

// Haversine returns the great-circle distance in kilometers between two
// coordinates given in decimal degrees. Inputs are not range-validated here,
// that is the caller's job.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	if lat1 == lat2 && lon1 == lon2 {
		return 0
	}

	phi1 := radians(lat1)
	phi2 := radians(lat2)
	dPhi := radians(lat2 - lat1)
	dLambda := radians(lon2 - lon1)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	d := EarthRadiusKM * c
	if d < zeroSnapKM {
		return 0
	}
	return d
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
