package biquad

import "math"

// Gain returns |H(f)|, the linear magnitude of the section at freqHz.
func (c Coefficients) Gain(freqHz, sampleRate float64) float64 {
	w := 2 * math.Pi * freqHz / sampleRate
	s1, c1 := math.Sincos(w)
	s2, c2 := math.Sincos(2 * w)

	num := math.Hypot(c.B0+c.B1*c1+c.B2*c2, c.B1*s1+c.B2*s2)
	den := math.Hypot(1+c.A1*c1+c.A2*c2, c.A1*s1+c.A2*s2)
	return num / den
}

// MagnitudeDB returns the magnitude of the section at freqHz in dB.
func (c Coefficients) MagnitudeDB(freqHz, sampleRate float64) float64 {
	return CascadeDB(freqHz, sampleRate, c)
}

// CascadeDB returns the magnitude in dB of sections run in series at freqHz.
// A zero of any section gives -Inf.
func CascadeDB(freqHz, sampleRate float64, sections ...Coefficients) float64 {
	g := 1.0
	for _, c := range sections {
		g *= c.Gain(freqHz, sampleRate)
	}
	return 20 * math.Log10(g)
}
