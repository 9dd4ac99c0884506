package design

import (
	"math"

	"github.com/cwbudde/algo-echo/dsp/filter/biquad"
)

// ButterworthQ is the quality factor of a maximally flat second-order section.
const ButterworthQ = 1 / math.Sqrt2

// maxNyquistRatio keeps cutoffs strictly below Nyquist, where the bilinear
// transform degenerates.
const maxNyquistRatio = 0.499

// Lowpass designs an RBJ lowpass biquad at freq (Hz) with quality factor q.
//
// Cutoffs at or above Nyquist are pulled just below it, so a high-cut of
// 20 kHz at a 32 kHz rate still produces a working filter.
func Lowpass(freq, q, sampleRate float64) biquad.Coefficients {
	w0, ok := clampedW0(freq, sampleRate)
	if !ok {
		return biquad.Coefficients{B0: 1}
	}

	q = normalizedQ(q)
	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)

	b1 := 1 - cw
	b0 := b1 / 2
	b2 := b0
	a0 := 1 + alpha
	a1 := -2 * cw
	a2 := 1 - alpha

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

// Highpass designs an RBJ highpass biquad at freq (Hz) with quality factor q.
func Highpass(freq, q, sampleRate float64) biquad.Coefficients {
	w0, ok := clampedW0(freq, sampleRate)
	if !ok {
		return biquad.Coefficients{B0: 1}
	}

	q = normalizedQ(q)
	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)

	b0 := (1 + cw) / 2
	b1 := -(1 + cw)
	b2 := b0
	a0 := 1 + alpha
	a1 := -2 * cw
	a2 := 1 - alpha

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

// clampedW0 returns the normalized angular cutoff. An unusable sample rate or
// a non-positive frequency reports false; callers fall back to passthrough.
func clampedW0(freq, sampleRate float64) (float64, bool) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return 0, false
	}
	if freq <= 0 || math.IsNaN(freq) {
		return 0, false
	}

	if limit := sampleRate * maxNyquistRatio; freq > limit {
		freq = limit
	}

	return 2 * math.Pi * freq / sampleRate, true
}

func normalizedQ(q float64) float64 {
	if q <= 0 || math.IsNaN(q) || math.IsInf(q, 0) {
		return ButterworthQ
	}

	return q
}

func normalizeBiquad(b0, b1, b2, a0, a1, a2 float64) biquad.Coefficients {
	if a0 == 0 || math.IsNaN(a0) || math.IsInf(a0, 0) {
		return biquad.Coefficients{B0: 1}
	}

	return biquad.Coefficients{
		B0: b0 / a0,
		B1: b1 / a0,
		B2: b2 / a0,
		A1: a1 / a0,
		A2: a2 / a0,
	}
}
