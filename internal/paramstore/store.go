// Package paramstore hands parameter changes from a control goroutine to the
// audio goroutine without locks.
package paramstore

import (
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-echo/dsp/core"
	"github.com/cwbudde/algo-echo/dsp/effects/echo"
)

// Store holds every echo control as its own atomic word. Writers clamp into
// the valid ranges; readers take a Snapshot once per block. Each field is
// tear-free, but a Snapshot taken during a multi-field update may mix old
// and new values.
type Store struct {
	delayMs  atomic.Uint64
	feedback atomic.Uint64
	mix      atomic.Uint64
	lowCut   atomic.Uint64
	highCut  atomic.Uint64
	drive    atomic.Uint64
	output   atomic.Uint64

	sync     atomic.Bool
	pingPong atomic.Bool
	division atomic.Int32

	bpm        atomic.Uint64
	tempoValid atomic.Bool
}

// New returns a store initialized from p. The tempo starts unreported.
func New(p echo.Params) *Store {
	s := &Store{}
	s.Load(p)
	return s
}

// Load replaces every control with the clamped values of p.
func (s *Store) Load(p echo.Params) {
	p = p.Clamped()
	storeFloat(&s.delayMs, p.DelayMs)
	storeFloat(&s.feedback, p.FeedbackPercent)
	storeFloat(&s.mix, p.MixPercent)
	storeFloat(&s.lowCut, p.LowCutHz)
	storeFloat(&s.highCut, p.HighCutHz)
	storeFloat(&s.drive, p.DriveDB)
	storeFloat(&s.output, p.OutputDB)
	s.sync.Store(p.Sync)
	s.pingPong.Store(p.PingPong)
	s.division.Store(int32(p.Division))
}

// Snapshot returns the current controls.
func (s *Store) Snapshot() echo.Params {
	return echo.Params{
		DelayMs:         loadFloat(&s.delayMs),
		Sync:            s.sync.Load(),
		Division:        echo.Division(s.division.Load()),
		FeedbackPercent: loadFloat(&s.feedback),
		MixPercent:      loadFloat(&s.mix),
		LowCutHz:        loadFloat(&s.lowCut),
		HighCutHz:       loadFloat(&s.highCut),
		PingPong:        s.pingPong.Load(),
		DriveDB:         loadFloat(&s.drive),
		OutputDB:        loadFloat(&s.output),
	}
}

func (s *Store) SetDelayMs(v float64) {
	storeFloat(&s.delayMs, core.Clamp(v, echo.MinDelayMs, echo.MaxDelayMs))
}

func (s *Store) SetFeedbackPercent(v float64) {
	storeFloat(&s.feedback, core.Clamp(v, echo.MinFeedbackPercent, echo.MaxFeedbackPercent))
}

func (s *Store) SetMixPercent(v float64) {
	storeFloat(&s.mix, core.Clamp(v, echo.MinMixPercent, echo.MaxMixPercent))
}

func (s *Store) SetLowCutHz(v float64) {
	storeFloat(&s.lowCut, core.Clamp(v, echo.MinLowCutHz, echo.MaxLowCutHz))
}

func (s *Store) SetHighCutHz(v float64) {
	storeFloat(&s.highCut, core.Clamp(v, echo.MinHighCutHz, echo.MaxHighCutHz))
}

func (s *Store) SetDriveDB(v float64) {
	storeFloat(&s.drive, core.Clamp(v, echo.MinDriveDB, echo.MaxDriveDB))
}

func (s *Store) SetOutputDB(v float64) {
	storeFloat(&s.output, core.Clamp(v, echo.MinOutputDB, echo.MaxOutputDB))
}

func (s *Store) SetSync(on bool)     { s.sync.Store(on) }
func (s *Store) SetPingPong(on bool) { s.pingPong.Store(on) }

// SetDivision stores d, replacing an unknown division with a quarter note.
func (s *Store) SetDivision(d echo.Division) {
	if !d.Valid() {
		d = echo.DivisionQuarter
	}
	s.division.Store(int32(d))
}

// ToggleSync flips tempo sync and returns the new state.
func (s *Store) ToggleSync() bool {
	for {
		old := s.sync.Load()
		if s.sync.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// TogglePingPong flips ping-pong routing and returns the new state.
func (s *Store) TogglePingPong() bool {
	for {
		old := s.pingPong.Load()
		if s.pingPong.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// Set assigns a control by its parameter id, using the numeric encoding of
// echo.Params.Value. Unknown ids report false.
func (s *Store) Set(id string, v float64) bool {
	switch id {
	case echo.ParamTimeMs:
		s.SetDelayMs(v)
	case echo.ParamSync:
		s.SetSync(v > 0.5)
	case echo.ParamSyncDivision:
		var p echo.Params
		p.Set(id, v)
		s.SetDivision(p.Division)
	case echo.ParamFeedback:
		s.SetFeedbackPercent(v)
	case echo.ParamMix:
		s.SetMixPercent(v)
	case echo.ParamLowCut:
		s.SetLowCutHz(v)
	case echo.ParamHighCut:
		s.SetHighCutHz(v)
	case echo.ParamPingPong:
		s.SetPingPong(v > 0.5)
	case echo.ParamDrive:
		s.SetDriveDB(v)
	case echo.ParamOutput:
		s.SetOutputDB(v)
	default:
		return false
	}
	return true
}

// Nudge adds delta to a continuous control and returns the clamped result.
func (s *Store) Nudge(id string, delta float64) (float64, bool) {
	cur, ok := s.Snapshot().Value(id)
	if !ok {
		return 0, false
	}
	s.Set(id, cur+delta)
	v, _ := s.Snapshot().Value(id)
	return v, true
}

// SetTempo records a host tempo in BPM. Non-positive or non-finite values
// clear it instead.
func (s *Store) SetTempo(bpm float64) {
	if !(bpm > 0) || !core.IsFinite(bpm) {
		s.ClearTempo()
		return
	}
	storeFloat(&s.bpm, bpm)
	s.tempoValid.Store(true)
}

// ClearTempo marks the host tempo as unavailable.
func (s *Store) ClearTempo() {
	s.tempoValid.Store(false)
}

// Transport returns the tempo for the next block.
func (s *Store) Transport() echo.Transport {
	if !s.tempoValid.Load() {
		return echo.Transport{}
	}
	return echo.Transport{BPM: loadFloat(&s.bpm), Valid: true}
}

func storeFloat(w *atomic.Uint64, v float64) { w.Store(math.Float64bits(v)) }
func loadFloat(w *atomic.Uint64) float64     { return math.Float64frombits(w.Load()) }
