// Package testutil holds deterministic signals and assertions shared by tests.
package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Impulse generates a unit impulse at pos.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// Stereo allocates a two-channel block of the given length.
func Stereo(length int) [][]float64 {
	return [][]float64{make([]float64, length), make([]float64, length)}
}

// Blocks splits signal into consecutive views of at most size samples.
func Blocks(signal []float64, size int) [][]float64 {
	if size <= 0 {
		return nil
	}
	var out [][]float64
	for start := 0; start < len(signal); start += size {
		end := start + size
		if end > len(signal) {
			end = len(signal)
		}
		out = append(out, signal[start:end])
	}
	return out
}

// Energy returns the sum of squares of data[from:to], clamped to its bounds.
func Energy(data []float64, from, to int) float64 {
	if from < 0 {
		from = 0
	}
	if to > len(data) {
		to = len(data)
	}
	e := 0.0
	for i := from; i < to; i++ {
		e += data[i] * data[i]
	}
	return e
}

// PeakIndex returns the index of the largest absolute value in data[from:to].
func PeakIndex(data []float64, from, to int) int {
	if from < 0 {
		from = 0
	}
	if to > len(data) {
		to = len(data)
	}
	best, bestAbs := -1, -1.0
	for i := from; i < to; i++ {
		if a := math.Abs(data[i]); a > bestAbs {
			best, bestAbs = i, a
		}
	}
	return best
}
