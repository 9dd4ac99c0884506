// Package interp provides fractional-position interpolation primitives used by
// delay lines.
package interp
