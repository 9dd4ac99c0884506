package echo

import "github.com/cwbudde/algo-echo/dsp/core"

// Division is a musical note value used for tempo-synced delay times.
type Division int

// Note divisions in selector order.
const (
	DivisionWhole Division = iota
	DivisionHalf
	DivisionQuarter
	DivisionEighth
	DivisionSixteenth
	DivisionEighthTriplet
	DivisionSixteenthTriplet
	DivisionEighthDotted
	DivisionSixteenthDotted

	divisionCount = 9
)

// Fractions of a whole note. Triplets scale the straight value by 2/3,
// dotted values by 3/2.
var divisionMultipliers = [divisionCount]float64{
	1,
	0.5,
	0.25,
	0.125,
	0.0625,
	1.0 / 6,
	1.0 / 12,
	0.75,
	0.375,
}

var divisionLabels = [divisionCount]string{
	"1/1", "1/2", "1/4", "1/8", "1/16", "1/8T", "1/16T", "1/8D", "1/16D",
}

// Valid reports whether d is one of the nine known divisions.
func (d Division) Valid() bool {
	return d >= 0 && d < divisionCount
}

// Multiplier returns the length of d as a fraction of a whole note.
// Unknown divisions fall back to a quarter note.
func (d Division) Multiplier() float64 {
	if !d.Valid() {
		return divisionMultipliers[DivisionQuarter]
	}
	return divisionMultipliers[d]
}

// String returns the selector label, e.g. "1/8T".
func (d Division) String() string {
	if !d.Valid() {
		return "unknown"
	}
	return divisionLabels[d]
}

// DivisionLabels returns the selector labels in order.
func DivisionLabels() []string {
	out := make([]string, divisionCount)
	copy(out, divisionLabels[:])
	return out
}

// ParseDivision looks up a division by its label.
func ParseDivision(label string) (Division, bool) {
	for i, l := range divisionLabels {
		if l == label {
			return Division(i), true
		}
	}
	return DivisionQuarter, false
}

// SyncSeconds returns the delay time of division d at bpm quarter notes per
// minute: (60/bpm) * 4 * multiplier. bpm must be positive; callers fall back
// to the manual time otherwise.
func SyncSeconds(d Division, bpm float64) float64 {
	quarterNote := 60 / bpm
	return quarterNote * 4 * d.Multiplier()
}

// Transport is the host tempo as last reported.
type Transport struct {
	BPM   float64
	Valid bool
}

// Tempo returns the tempo to sync to. ok is false when sync is disabled,
// the host reported nothing, or the tempo is not a positive finite number.
func (t Transport) Tempo(syncEnabled bool) (bpm float64, ok bool) {
	if !syncEnabled || !t.Valid {
		return 0, false
	}
	if !(t.BPM > 0) || !core.IsFinite(t.BPM) {
		return 0, false
	}
	return t.BPM, true
}
