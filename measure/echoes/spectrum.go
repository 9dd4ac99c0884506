package echoes

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
	"github.com/meko-christian/algo-approx"
)

// floorDB is reported for bins with no measurable power.
const floorDB = -200.0

const ln10 = 2.302585092994045684017991454684

// Spectrum is the power spectrum of a response, bins 0..fftSize/2.
type Spectrum struct {
	BinHz   float64
	PowerDB []float64
}

// At returns the power in dB of the bin nearest to freqHz.
func (s Spectrum) At(freqHz float64) float64 {
	if len(s.PowerDB) == 0 || s.BinHz <= 0 {
		return floorDB
	}
	bin := int(math.Round(freqHz / s.BinHz))
	bin = max(0, min(bin, len(s.PowerDB)-1))
	return s.PowerDB[bin]
}

// ResponseSpectrum returns the power spectrum of the first fftSize samples of
// resp, zero-padded if shorter. The last quarter of the frame is faded out
// with a half-cosine so a truncated tail does not smear the result.
func ResponseSpectrum(resp []float64, sampleRate float64, fftSize int) (Spectrum, error) {
	if len(resp) == 0 {
		return Spectrum{}, ErrEmptyResponse
	}
	if sampleRate <= 0 {
		return Spectrum{}, ErrInvalidSampleRate
	}
	if fftSize < 2 || fftSize&(fftSize-1) != 0 {
		return Spectrum{}, fmt.Errorf("%w: %d", ErrInvalidFFTSize, fftSize)
	}

	frame := make([]float64, fftSize)
	copy(frame, resp)
	vecmath.MulBlockInPlace(frame, fadeOut(fftSize))

	in := make([]complex128, fftSize)
	for i, v := range frame {
		in[i] = complex(v, 0)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return Spectrum{}, fmt.Errorf("echoes: fft plan: %w", err)
	}
	out := make([]complex128, fftSize)
	if err := plan.Forward(out, in); err != nil {
		return Spectrum{}, fmt.Errorf("echoes: fft: %w", err)
	}

	bins := fftSize/2 + 1
	re := make([]float64, bins)
	im := make([]float64, bins)
	for k := range bins {
		re[k] = real(out[k])
		im[k] = imag(out[k])
	}

	power := make([]float64, bins)
	vecmath.Power(power, re, im)
	for k, p := range power {
		power[k] = powerToDB(p)
	}

	return Spectrum{BinHz: sampleRate / float64(fftSize), PowerDB: power}, nil
}

// fadeOut returns unit gain over the first three quarters of n samples and a
// half-cosine taper to zero over the rest.
func fadeOut(n int) []float64 {
	coeffs := make([]float64, n)
	start := n - n/4
	taper := n - start
	for i := range coeffs {
		if i < start {
			coeffs[i] = 1
			continue
		}
		x := float64(i-start) / float64(taper)
		coeffs[i] = 0.5 * (1 + math.Cos(math.Pi*x))
	}
	return coeffs
}

func powerToDB(p float64) float64 {
	if p <= 1e-20 {
		return floorDB
	}
	return 10 * approx.FastLog(p) / ln10
}
