package interp

// Linear interpolates between a (frac = 0) and b (frac = 1).
func Linear(frac, a, b float64) float64 {
	return a + frac*(b-a)
}
