package echo

import (
	"fmt"

	"github.com/cwbudde/algo-echo/dsp/core"
	"github.com/cwbudde/algo-echo/dsp/delay"
	"github.com/cwbudde/algo-echo/dsp/smooth"
)

const (
	// MaxDelaySeconds is the longest delay the line is sized for.
	MaxDelaySeconds = MaxDelayMs / 1000

	// SmoothingSeconds is the ramp time of the smoothed controls.
	SmoothingSeconds = smooth.DefaultDuration

	// TailSeconds is how long the effect keeps ringing after input stops.
	TailSeconds = 2.5
)

// Sentinel errors returned by Prepare.
var (
	ErrInvalidSampleRate = core.ErrInvalidSampleRate
	ErrInvalidBlockSize  = core.ErrInvalidBlockSize
	ErrInvalidChannels   = core.ErrInvalidChannels
)

// Engine is a stereo feedback echo with tempo sync, ping-pong routing,
// filtered and saturated repeats, and an equal-power dry/wet mix.
//
// Prepare, Process and Release must be called from one goroutine in
// sequence. Process never allocates, blocks or fails.
type Engine struct {
	cfg      core.ProcessorConfig
	prepared bool

	line   *delay.Line
	filter feedbackFilter

	delayMs  smooth.Linear
	feedback smooth.Linear
	mix      smooth.Linear
	output   smooth.Linear

	stereo [core.MaxChannels][]float64
}

// New returns an engine that is not yet prepared.
func New() *Engine {
	return &Engine{}
}

// Prepare allocates the delay line for cfg and primes the smoothers and
// filters from p. Any previous audio history is discarded.
func (e *Engine) Prepare(cfg core.ProcessorConfig, p Params) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("echo prepare: %w", err)
	}

	size, err := delay.BufferLength(cfg.SampleRate, MaxDelaySeconds, cfg.BlockSize)
	if err != nil {
		return fmt.Errorf("echo prepare: %w", err)
	}
	line, err := delay.New(cfg.Channels, size)
	if err != nil {
		return fmt.Errorf("echo prepare: %w", err)
	}

	e.cfg = cfg
	e.line = line

	p = p.Clamped()
	for _, s := range []*smooth.Linear{&e.delayMs, &e.feedback, &e.mix, &e.output} {
		s.Reset(cfg.SampleRate, SmoothingSeconds)
	}
	e.delayMs.SetImmediate(p.DelayMs)
	e.feedback.SetImmediate(p.feedbackAmount())
	e.mix.SetImmediate(p.mixAmount())
	e.output.SetImmediate(core.DBToLinear(p.OutputDB))

	e.filter.update(p.LowCutHz, p.HighCutHz, cfg.SampleRate)
	e.filter.reset()

	e.prepared = true
	return nil
}

// Release drops the delay line. The engine must be prepared again before
// it processes audio.
func (e *Engine) Release() {
	e.line = nil
	e.prepared = false
	e.stereo = [core.MaxChannels][]float64{}
}

// Prepared reports whether Process will run the effect.
func (e *Engine) Prepared() bool { return e.prepared }

// Config returns the stream configuration from the last Prepare.
func (e *Engine) Config() core.ProcessorConfig { return e.cfg }

// BufferLength returns the delay line length in samples, or 0 when released.
func (e *Engine) BufferLength() int {
	if e.line == nil {
		return 0
	}
	return e.line.Len()
}

// TailSeconds reports how long output continues after silence.
func (e *Engine) TailSeconds() float64 { return TailSeconds }

// LatencySamples reports the processing latency, which is always zero.
func (e *Engine) LatencySamples() int { return 0 }

// Process runs one block in place. buf holds one slice per channel; only
// the channels present in both buf and the prepared configuration are
// processed, over the shortest of their lengths. An unprepared engine
// leaves buf untouched.
//
// Ping-pong crosses the feedback only when exactly two channels are
// processed. A stereo engine handed a single row keeps feeding that row back
// into itself instead of swapping with a silent second channel, so its
// repeats continue.
func (e *Engine) Process(buf [][]float64, p Params, tr Transport) {
	if !e.prepared || len(buf) == 0 {
		return
	}

	channels := len(buf)
	if channels > e.line.Channels() {
		channels = e.line.Channels()
	}
	n := len(buf[0])
	for ch := 1; ch < channels; ch++ {
		if len(buf[ch]) < n {
			n = len(buf[ch])
		}
	}

	p = p.Clamped()
	e.delayMs.SetTarget(p.DelayMs)
	e.feedback.SetTarget(p.feedbackAmount())
	e.mix.SetTarget(p.mixAmount())
	e.output.SetTarget(core.DBToLinear(p.OutputDB))

	sampleRate := e.cfg.SampleRate
	e.filter.update(p.LowCutHz, p.HighCutHz, sampleRate)

	bpm, synced := tr.Tempo(p.Sync)
	var syncMs float64
	if synced {
		syncMs = SyncSeconds(p.Division, bpm) * 1000
	}
	drive := core.DBToLinear(p.DriveDB)
	swap := p.PingPong && channels == core.MaxChannels

	var delayed, feedIn [core.MaxChannels]float64

	for i := 0; i < n; i++ {
		delayMs := syncMs
		if !synced {
			delayMs = e.delayMs.Next()
		}
		delaySamples := e.line.ClampDelay(core.MsToSamples(delayMs, sampleRate))

		for ch := 0; ch < channels; ch++ {
			delayed[ch] = e.line.Read(ch, delaySamples)
		}

		feedback := e.feedback.Next()
		dry, wet := EqualPowerGains(e.mix.Next())
		gain := e.output.Next()

		feedIn = delayed
		if swap {
			feedIn[0], feedIn[1] = delayed[1], delayed[0]
		}

		for ch := 0; ch < channels; ch++ {
			in := buf[ch][i]

			shaped := Saturate(e.filter.processSample(ch, feedIn[ch]), drive)
			e.line.Write(ch, core.FlushDenormals(in+shaped*feedback))

			buf[ch][i] = (in*dry + delayed[ch]*wet) * gain
		}

		e.line.Advance()
	}
}

// ProcessMonoToStereo duplicates a mono input into left and right and
// processes them as a stereo block. left and right must be at least as long
// as in.
func (e *Engine) ProcessMonoToStereo(in, left, right []float64, p Params, tr Transport) {
	n := copy(left, in)
	copy(right[:n], in)

	e.stereo[0] = left[:n]
	e.stereo[1] = right[:n]
	e.Process(e.stereo[:], p, tr)
	e.stereo[0], e.stereo[1] = nil, nil
}
