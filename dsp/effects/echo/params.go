package echo

import (
	"math"

	"github.com/cwbudde/algo-echo/dsp/core"
)

// Parameter ranges. Every value read by the engine is clamped into these.
const (
	MinDelayMs = 1.0
	MaxDelayMs = 2000.0

	MinFeedbackPercent = 0.0
	MaxFeedbackPercent = 95.0

	MinMixPercent = 0.0
	MaxMixPercent = 100.0

	MinLowCutHz = 20.0
	MaxLowCutHz = 1000.0

	MinHighCutHz = 1000.0
	MaxHighCutHz = 20000.0

	MinDriveDB = 0.0
	MaxDriveDB = 24.0

	MinOutputDB = -24.0
	MaxOutputDB = 6.0

	// MaxFeedback is the normalized feedback ceiling.
	MaxFeedback = MaxFeedbackPercent / 100
)

// Parameter identifiers, stable across hosts and presets.
const (
	ParamTimeMs       = "timeMs"
	ParamSync         = "sync"
	ParamSyncDivision = "syncDivision"
	ParamFeedback     = "feedback"
	ParamMix          = "mix"
	ParamLowCut       = "lowCut"
	ParamHighCut      = "highCut"
	ParamPingPong     = "pingPong"
	ParamDrive        = "drive"
	ParamOutput       = "output"
)

// Params is a per-block snapshot of the user-facing controls.
// The engine reads it once per block and never retains references into it.
type Params struct {
	DelayMs         float64
	Sync            bool
	Division        Division
	FeedbackPercent float64
	MixPercent      float64
	LowCutHz        float64
	HighCutHz       float64
	PingPong        bool
	DriveDB         float64
	OutputDB        float64
}

// DefaultParams returns the factory settings.
func DefaultParams() Params {
	return Params{
		DelayMs:         400,
		Sync:            false,
		Division:        DivisionQuarter,
		FeedbackPercent: 35,
		MixPercent:      35,
		LowCutHz:        120,
		HighCutHz:       8000,
		PingPong:        false,
		DriveDB:         6,
		OutputDB:        0,
	}
}

// Clamped returns p with every field forced into its valid range.
// An unknown division becomes a quarter note.
func (p Params) Clamped() Params {
	p.DelayMs = core.Clamp(p.DelayMs, MinDelayMs, MaxDelayMs)
	p.FeedbackPercent = core.Clamp(p.FeedbackPercent, MinFeedbackPercent, MaxFeedbackPercent)
	p.MixPercent = core.Clamp(p.MixPercent, MinMixPercent, MaxMixPercent)
	p.LowCutHz = core.Clamp(p.LowCutHz, MinLowCutHz, MaxLowCutHz)
	p.HighCutHz = core.Clamp(p.HighCutHz, MinHighCutHz, MaxHighCutHz)
	p.DriveDB = core.Clamp(p.DriveDB, MinDriveDB, MaxDriveDB)
	p.OutputDB = core.Clamp(p.OutputDB, MinOutputDB, MaxOutputDB)
	if !p.Division.Valid() {
		p.Division = DivisionQuarter
	}
	return p
}

// feedbackAmount is the normalized feedback gain in [0, MaxFeedback].
func (p Params) feedbackAmount() float64 {
	return core.Clamp(p.FeedbackPercent/100, 0, MaxFeedback)
}

// mixAmount is the normalized wet amount in [0, 1].
func (p Params) mixAmount() float64 {
	return core.Clamp(p.MixPercent/100, 0, 1)
}

// ParamSpec describes one control for tooling and hosts.
type ParamSpec struct {
	ID      string
	Name    string
	Min     float64
	Max     float64
	Default float64
	Unit    string
	Choices []string
}

// ParamSpecs lists every control in display order.
func ParamSpecs() []ParamSpec {
	def := DefaultParams()
	return []ParamSpec{
		{ID: ParamTimeMs, Name: "Time", Min: MinDelayMs, Max: MaxDelayMs, Default: def.DelayMs, Unit: "ms"},
		{ID: ParamSync, Name: "Sync", Min: 0, Max: 1, Default: boolValue(def.Sync)},
		{
			ID: ParamSyncDivision, Name: "Sync Division", Min: 0, Max: float64(divisionCount - 1),
			Default: float64(def.Division), Choices: DivisionLabels(),
		},
		{ID: ParamFeedback, Name: "Feedback", Min: MinFeedbackPercent, Max: MaxFeedbackPercent, Default: def.FeedbackPercent, Unit: "%"},
		{ID: ParamMix, Name: "Mix", Min: MinMixPercent, Max: MaxMixPercent, Default: def.MixPercent, Unit: "%"},
		{ID: ParamLowCut, Name: "LowCut", Min: MinLowCutHz, Max: MaxLowCutHz, Default: def.LowCutHz, Unit: "Hz"},
		{ID: ParamHighCut, Name: "HighCut", Min: MinHighCutHz, Max: MaxHighCutHz, Default: def.HighCutHz, Unit: "Hz"},
		{ID: ParamPingPong, Name: "PingPong", Min: 0, Max: 1, Default: boolValue(def.PingPong)},
		{ID: ParamDrive, Name: "Drive", Min: MinDriveDB, Max: MaxDriveDB, Default: def.DriveDB, Unit: "dB"},
		{ID: ParamOutput, Name: "Output", Min: MinOutputDB, Max: MaxOutputDB, Default: def.OutputDB, Unit: "dB"},
	}
}

// Value returns the numeric value of the control with the given id.
// Booleans read as 0 or 1, the division as its index.
func (p Params) Value(id string) (float64, bool) {
	switch id {
	case ParamTimeMs:
		return p.DelayMs, true
	case ParamSync:
		return boolValue(p.Sync), true
	case ParamSyncDivision:
		return float64(p.Division), true
	case ParamFeedback:
		return p.FeedbackPercent, true
	case ParamMix:
		return p.MixPercent, true
	case ParamLowCut:
		return p.LowCutHz, true
	case ParamHighCut:
		return p.HighCutHz, true
	case ParamPingPong:
		return boolValue(p.PingPong), true
	case ParamDrive:
		return p.DriveDB, true
	case ParamOutput:
		return p.OutputDB, true
	default:
		return 0, false
	}
}

// Set assigns the control with the given id from a numeric value using the
// same encoding as Value. Unknown ids report false.
func (p *Params) Set(id string, v float64) bool {
	switch id {
	case ParamTimeMs:
		p.DelayMs = v
	case ParamSync:
		p.Sync = v > 0.5
	case ParamSyncDivision:
		p.Division = divisionFromFloat(v)
	case ParamFeedback:
		p.FeedbackPercent = v
	case ParamMix:
		p.MixPercent = v
	case ParamLowCut:
		p.LowCutHz = v
	case ParamHighCut:
		p.HighCutHz = v
	case ParamPingPong:
		p.PingPong = v > 0.5
	case ParamDrive:
		p.DriveDB = v
	case ParamOutput:
		p.OutputDB = v
	default:
		return false
	}
	return true
}

func divisionFromFloat(v float64) Division {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return DivisionQuarter
	}
	d := Division(math.Round(v))
	if !d.Valid() {
		return DivisionQuarter
	}
	return d
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
