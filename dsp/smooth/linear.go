package smooth

import "math"

// DefaultDuration is the ramp length used when none is configured.
const DefaultDuration = 0.05

// Linear ramps linearly from the current value to the target.
type Linear struct {
	current float64
	target  float64
	step    float64

	rampSamples int
	remaining   int
}

// NewLinear returns a smoother ramping over durationSeconds at sampleRate.
func NewLinear(sampleRate, durationSeconds float64) *Linear {
	s := &Linear{}
	s.Reset(sampleRate, durationSeconds)
	return s
}

// Reset changes the ramp length and snaps the value to the current target.
// Non-positive rates or durations disable ramping.
func (s *Linear) Reset(sampleRate, durationSeconds float64) {
	s.rampSamples = 0
	if sampleRate > 0 && durationSeconds > 0 {
		n := math.Floor(sampleRate*durationSeconds + 0.5)
		if n > math.MaxInt32 {
			n = math.MaxInt32
		}
		s.rampSamples = int(n)
	}
	s.SetImmediate(s.target)
}

// SetImmediate sets both the current value and the target, skipping the ramp.
func (s *Linear) SetImmediate(value float64) {
	s.current = value
	s.target = value
	s.step = 0
	s.remaining = 0
}

// SetTarget starts a ramp from the current value towards value.
// Setting the same target again does not restart the ramp.
func (s *Linear) SetTarget(value float64) {
	if value == s.target {
		return
	}
	if s.rampSamples <= 0 {
		s.SetImmediate(value)
		return
	}

	s.target = value
	s.remaining = s.rampSamples
	s.step = (s.target - s.current) / float64(s.rampSamples)
}

// Next advances one sample and returns the new value.
func (s *Linear) Next() float64 {
	if s.remaining == 0 {
		return s.target
	}

	s.remaining--
	if s.remaining == 0 {
		s.current = s.target
	} else {
		s.current += s.step
	}
	return s.current
}

// Skip advances n samples at once.
func (s *Linear) Skip(n int) float64 {
	if n >= s.remaining {
		s.current = s.target
		s.remaining = 0
		return s.current
	}

	s.remaining -= n
	s.current += s.step * float64(n)
	return s.current
}

// Current returns the most recent value without advancing.
func (s *Linear) Current() float64 { return s.current }

// Target returns the value being ramped towards.
func (s *Linear) Target() float64 { return s.target }

// IsSmoothing reports whether a ramp is in progress.
func (s *Linear) IsSmoothing() bool { return s.remaining > 0 }

// RampSamples returns the ramp length in samples.
func (s *Linear) RampSamples() int { return s.rampSamples }
