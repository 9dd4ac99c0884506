package echo

import "math"

// Saturate soft-clips x after driving it by drive (linear gain).
// The result is odd-symmetric, monotonic and bounded in (-1, 1).
func Saturate(x, drive float64) float64 {
	return math.Tanh(x * drive)
}

// EqualPowerGains returns the dry and wet gains for mix in [0, 1] using a
// quarter-cycle sine/cosine crossfade, so dry² + wet² = 1.
func EqualPowerGains(mix float64) (dry, wet float64) {
	wet, dry = math.Sincos(mix * math.Pi / 2)
	return dry, wet
}
