package echo

import (
	"github.com/cwbudde/algo-echo/dsp/core"
	"github.com/cwbudde/algo-echo/dsp/filter/biquad"
	"github.com/cwbudde/algo-echo/dsp/filter/design"
)

// feedbackFilter shapes the signal re-entering the delay line: a highpass
// (low-cut) followed by a lowpass (high-cut), one pair per channel.
type feedbackFilter struct {
	lowCut  [core.MaxChannels]biquad.Section
	highCut [core.MaxChannels]biquad.Section
}

// update retunes every channel. State is kept so retuning mid-stream does
// not click.
func (f *feedbackFilter) update(lowCutHz, highCutHz, sampleRate float64) {
	hp, lp := feedbackCoefficients(lowCutHz, highCutHz, sampleRate)
	for ch := range f.lowCut {
		f.lowCut[ch].SetCoefficients(hp)
		f.highCut[ch].SetCoefficients(lp)
	}
}

func (f *feedbackFilter) processSample(ch int, x float64) float64 {
	return f.highCut[ch].ProcessSample(f.lowCut[ch].ProcessSample(x))
}

func (f *feedbackFilter) reset() {
	for ch := range f.lowCut {
		f.lowCut[ch].Reset()
		f.highCut[ch].Reset()
	}
}

func feedbackCoefficients(lowCutHz, highCutHz, sampleRate float64) (hp, lp biquad.Coefficients) {
	hp = design.Highpass(lowCutHz, design.ButterworthQ, sampleRate)
	lp = design.Lowpass(highCutHz, design.ButterworthQ, sampleRate)
	return hp, lp
}

// FeedbackResponseDB returns the magnitude in dB that one pass through the
// feedback filters applies at freqHz for the clamped settings of p.
func FeedbackResponseDB(p Params, sampleRate, freqHz float64) float64 {
	p = p.Clamped()
	hp, lp := feedbackCoefficients(p.LowCutHz, p.HighCutHz, sampleRate)
	return biquad.CascadeDB(freqHz, sampleRate, hp, lp)
}
