package utils

// feetPerKilometre as used by the source datasets' station distance columns.
const feetPerKilometre = 3280.4

// GeoDegreesToFeet converts a distance in degrees of latitude to feet,
// taking one degree as 1000/9 km.
func GeoDegreesToFeet(d float64) float64 {
	return d * 1000 / 9 * feetPerKilometre
}
