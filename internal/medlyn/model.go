package medlyn

import "math"

// Model returns predicted stomatal conductance for a single observation.
func Model(vpd, assim, co2, g0, g1 float64) float64 {
	return g0 + 1.6*(1.0+g1/math.Sqrt(vpd))*(assim/co2)
}

// Predict applies Model elementwise. The three inputs must have equal length.
func Predict(vpd, assim, co2 []float64, g0, g1 float64) []float64 {
	out := make([]float64, len(vpd))
	predictInto(out, vpd, assim, co2, g0, g1)
	return out
}

func predictInto(dst, vpd, assim, co2 []float64, g0, g1 float64) {
	for i := range dst {
		dst[i] = Model(vpd[i], assim[i], co2[i], g0, g1)
	}
}
