package geospatial

import (
	"math"
	"strconv"
)

// Round rounds x to prec decimal places, ties to even. The tie is decided on
// the exact binary value of x, so 2.675 (stored just below) rounds to 2.67.
func Round(x float64, prec int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', prec, 64), 64)
	if err != nil {
		return x
	}
	return r
}

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
