// Package echo implements a stereo feedback echo.
//
// Signal flow per sample:
//
//	in ──┬──────────────────────────────(dry)──┐
//	     │                                     ├─ × output gain ─> out
//	     └─(+)─> delay line ──┬──────────(wet)──┘
//	          ^               │
//	          │          [ping-pong swap]
//	          │               │
//	          └─ × feedback ─ tanh(drive·) ─ lowpass ─ highpass
//
// The delay time comes either from the smoothed manual time or, when sync is
// on and the host reports a tempo, from a note [Division] at that tempo.
// Feedback, mix, output gain and manual time are ramped over
// [SmoothingSeconds]; filter coefficients follow the controls once per
// block.
//
// [Params] are read once per [Engine.Process] call. Anything out of range is
// clamped, so processing has no error path.
package echo
