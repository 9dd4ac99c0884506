// Package biquad provides second-order IIR filter runtime primitives.
//
// A [Section] implements Direct Form II Transposed processing for a single
// second-order section defined by [Coefficients]. The section owns its two
// state words; replacing the coefficients leaves the state untouched, which
// lets feedback-loop filters retune once per block without clicks.
//
// Coefficient design lives in dsp/filter/design.
package biquad
