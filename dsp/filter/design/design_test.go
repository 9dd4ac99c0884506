package design

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-echo/dsp/filter/biquad"
)

func TestLowpassResponse(t *testing.T) {
	c := Lowpass(8000, ButterworthQ, 48000)

	if db := c.MagnitudeDB(100, 48000); math.Abs(db) > 0.01 {
		t.Fatalf("passband at 100 Hz: %v dB, want ~0", db)
	}
	if db := c.MagnitudeDB(8000, 48000); math.Abs(db+3.0103) > 0.05 {
		t.Fatalf("cutoff: %v dB, want ~-3", db)
	}
	if db := c.MagnitudeDB(20000, 48000); db > -15 {
		t.Fatalf("stopband at 20 kHz: %v dB, want < -15", db)
	}
}

func TestHighpassResponse(t *testing.T) {
	c := Highpass(120, ButterworthQ, 48000)

	if db := c.MagnitudeDB(5000, 48000); math.Abs(db) > 0.01 {
		t.Fatalf("passband at 5 kHz: %v dB, want ~0", db)
	}
	if db := c.MagnitudeDB(120, 48000); math.Abs(db+3.0103) > 0.05 {
		t.Fatalf("cutoff: %v dB, want ~-3", db)
	}
	if db := c.MagnitudeDB(20, 48000); db > -25 {
		t.Fatalf("stopband at 20 Hz: %v dB, want < -25", db)
	}
}

func TestCutoffAboveNyquistIsClamped(t *testing.T) {
	c := Lowpass(20000, ButterworthQ, 32000)
	if c == (biquad.Coefficients{B0: 1}) {
		t.Fatal("expected a real filter, got passthrough")
	}
	for _, v := range []float64{c.B0, c.B1, c.B2, c.A1, c.A2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("non-finite coefficient in %+v", c)
		}
	}
	if db := c.MagnitudeDB(1000, 32000); math.Abs(db) > 0.1 {
		t.Fatalf("passband: %v dB, want ~0", db)
	}
}

func TestInvalidInputsPassThrough(t *testing.T) {
	pass := biquad.Coefficients{B0: 1}
	tests := []struct {
		name string
		got  biquad.Coefficients
	}{
		{name: "zero rate", got: Lowpass(1000, ButterworthQ, 0)},
		{name: "negative rate", got: Highpass(1000, ButterworthQ, -1)},
		{name: "zero freq", got: Highpass(0, ButterworthQ, 48000)},
		{name: "nan freq", got: Lowpass(math.NaN(), ButterworthQ, 48000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != pass {
				t.Fatalf("got %+v, want passthrough", tt.got)
			}
		})
	}
}

func TestInvalidQFallsBackToButterworth(t *testing.T) {
	if Lowpass(1000, 0, 48000) != Lowpass(1000, ButterworthQ, 48000) {
		t.Fatal("q=0 did not fall back to ButterworthQ")
	}
}
