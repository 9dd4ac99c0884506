// Package delay provides a multi-channel circular delay line with a single
// shared write cursor and linearly interpolated fractional reads.
//
// All channels of a [Line] advance together: write every channel for a sample
// index, then call [Line.Advance] once. Reads address positions strictly
// behind the cursor, so a delay of one sample returns the most recent write.
package delay
