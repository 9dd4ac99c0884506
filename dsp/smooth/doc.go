// Package smooth provides per-sample parameter smoothing.
//
// A [Linear] smoother ramps from its current value to a target over a fixed
// duration. Call [Linear.Next] exactly once per sample, in sample order.
package smooth
