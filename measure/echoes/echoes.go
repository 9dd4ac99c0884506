package echoes

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-echo/dsp/core"
	"github.com/cwbudde/algo-echo/dsp/effects/echo"
)

// Errors returned by the analysis functions.
var (
	ErrEmptyResponse     = errors.New("echoes: response is empty")
	ErrInvalidSampleRate = errors.New("echoes: sample rate must be positive")
	ErrInvalidDuration   = errors.New("echoes: duration must be positive")
	ErrInvalidFFTSize    = errors.New("echoes: fft size must be a power of two >= 2")
)

// DefaultThresholdDB is the quietest repeat, relative to the unit impulse,
// that the analyzer still counts.
const DefaultThresholdDB = -60.0

// Echo is one detected repeat.
type Echo struct {
	Index   int     // sample index of the repeat's peak
	Seconds float64 // arrival time after the impulse
	Level   float64 // peak absolute amplitude
	LevelDB float64 // Level in dB relative to the impulse
}

// Metrics holds echo analysis results.
type Metrics struct {
	EchoCount          int
	FirstEchoSeconds   float64 // arrival of the first repeat, 0 if none
	MeanSpacingSeconds float64 // mean gap between consecutive repeats
	DecayPerRepeatDB   float64 // mean level drop per repeat, positive when decaying
	PeakIndex          int     // sample index of the absolute maximum
	Echoes             []Echo
}

// Render prepares e with cfg and p, feeds a unit impulse into the first
// channel and returns seconds of output per channel. Audio is processed in
// cfg.BlockSize chunks exactly as a host would.
func Render(e *echo.Engine, cfg core.ProcessorConfig, p echo.Params, tr echo.Transport, seconds float64) ([][]float64, error) {
	if !(seconds > 0) || math.IsInf(seconds, 0) {
		return nil, fmt.Errorf("%w: %f", ErrInvalidDuration, seconds)
	}
	if err := e.Prepare(cfg, p); err != nil {
		return nil, fmt.Errorf("echoes: render: %w", err)
	}

	n := int(math.Ceil(seconds * cfg.SampleRate))
	out := make([][]float64, cfg.Channels)
	for ch := range out {
		out[ch] = make([]float64, n)
	}
	out[0][0] = 1

	view := make([][]float64, cfg.Channels)
	for start := 0; start < n; start += cfg.BlockSize {
		end := min(start+cfg.BlockSize, n)
		for ch := range out {
			view[ch] = out[ch][start:end]
		}
		e.Process(view, p, tr)
	}

	return out, nil
}

// FindEchoes returns the repeats in resp. Sample 0 is the direct sound and
// is never reported. A repeat is the largest local peak of |resp| at or above
// thresholdDB within a 1 ms cluster.
func FindEchoes(resp []float64, sampleRate, thresholdDB float64) ([]Echo, error) {
	if len(resp) == 0 {
		return nil, ErrEmptyResponse
	}
	if sampleRate <= 0 {
		return nil, ErrInvalidSampleRate
	}

	threshold := core.DBToLinear(thresholdDB)
	guard := max(1, int(math.Round(core.MsToSamples(echo.MinDelayMs, sampleRate))))

	var (
		found []Echo
		best  = -1
	)
	flush := func() {
		if best < 0 {
			return
		}
		level := math.Abs(resp[best])
		found = append(found, Echo{
			Index:   best,
			Seconds: float64(best) / sampleRate,
			Level:   level,
			LevelDB: core.LinearToDB(level),
		})
		best = -1
	}

	for i := 1; i < len(resp); i++ {
		v := math.Abs(resp[i])
		if v < threshold || !isLocalPeak(resp, i) {
			continue
		}
		switch {
		case best < 0:
			best = i
		case i-best >= guard:
			flush()
			best = i
		case v > math.Abs(resp[best]):
			best = i
		}
	}
	flush()

	return found, nil
}

func isLocalPeak(x []float64, i int) bool {
	v := math.Abs(x[i])
	if i > 0 && math.Abs(x[i-1]) > v {
		return false
	}
	if i+1 < len(x) && math.Abs(x[i+1]) >= v {
		return false
	}
	return true
}

// Analyzer computes echo metrics from rendered responses.
type Analyzer struct {
	SampleRate  float64
	ThresholdDB float64
}

// NewAnalyzer creates an analyzer using DefaultThresholdDB.
func NewAnalyzer(sampleRate float64) *Analyzer {
	return &Analyzer{SampleRate: sampleRate, ThresholdDB: DefaultThresholdDB}
}

// Analyze computes all metrics for one channel of a response.
func (a *Analyzer) Analyze(resp []float64) (Metrics, error) {
	found, err := FindEchoes(resp, a.SampleRate, a.ThresholdDB)
	if err != nil {
		return Metrics{}, err
	}

	m := Metrics{
		EchoCount: len(found),
		PeakIndex: peakIndex(resp),
		Echoes:    found,
	}
	if len(found) == 0 {
		return m, nil
	}

	m.FirstEchoSeconds = found[0].Seconds
	if len(found) > 1 {
		last := found[len(found)-1]
		repeats := float64(len(found) - 1)
		m.MeanSpacingSeconds = (last.Seconds - found[0].Seconds) / repeats
		m.DecayPerRepeatDB = (found[0].LevelDB - last.LevelDB) / repeats
	}

	return m, nil
}

func peakIndex(x []float64) int {
	idx := 0
	peak := 0.0
	for i, v := range x {
		if a := math.Abs(v); a > peak {
			peak = a
			idx = i
		}
	}
	return idx
}
