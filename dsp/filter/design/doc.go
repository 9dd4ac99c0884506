// Package design computes biquad coefficients from musical parameters.
//
// Only the RBJ "Audio EQ Cookbook" highpass and lowpass prototypes are
// provided; they are what the echo feedback path needs to keep low-end
// rumble and harsh top end from building up over repeats.
package design
