package delay

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-echo/dsp/interp"
)

// Line is a circular delay line with one row per channel.
type Line struct {
	rows     [][]float64
	size     int
	writePos int
}

// New returns a zeroed delay line with the given channel count and row length.
func New(channels, size int) (*Line, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("delay channels must be > 0: %d", channels)
	}
	if size <= 1 {
		return nil, fmt.Errorf("delay size must be > 1: %d", size)
	}

	rows := make([][]float64, channels)
	backing := make([]float64, channels*size)
	for ch := range rows {
		rows[ch] = backing[ch*size : (ch+1)*size : (ch+1)*size]
	}

	return &Line{rows: rows, size: size}, nil
}

// BufferLength returns the row length needed to hold maxDelaySeconds of audio
// plus one block of headroom: ceil(sampleRate*maxDelaySeconds) + blockSize.
func BufferLength(sampleRate, maxDelaySeconds float64, blockSize int) (int, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return 0, fmt.Errorf("delay sample rate must be > 0: %f", sampleRate)
	}
	if maxDelaySeconds <= 0 || math.IsNaN(maxDelaySeconds) || math.IsInf(maxDelaySeconds, 0) {
		return 0, fmt.Errorf("delay max time must be > 0: %f", maxDelaySeconds)
	}

	n := int(math.Ceil(sampleRate*maxDelaySeconds)) + blockSize
	if n <= 1 {
		return 0, fmt.Errorf("delay buffer length must be > 1: %d", n)
	}
	return n, nil
}

// Len returns the row length.
func (d *Line) Len() int {
	return d.size
}

// Channels returns the number of rows.
func (d *Line) Channels() int {
	return len(d.rows)
}

// Cursor returns the index that the next Write overwrites.
func (d *Line) Cursor() int {
	return d.writePos
}

// Write stores one sample for channel ch at the cursor. It does not advance.
func (d *Line) Write(ch int, sample float64) {
	d.rows[ch][d.writePos] = sample
}

// Advance moves the shared cursor forward by one sample with wraparound.
func (d *Line) Advance() {
	d.writePos++
	if d.writePos >= d.size {
		d.writePos = 0
	}
}

// ReadInt reads channel ch delay samples behind the cursor.
func (d *Line) ReadInt(ch, delay int) float64 {
	pos := (d.writePos - delay) % d.size
	if pos < 0 {
		pos += d.size
	}
	return d.rows[ch][pos]
}

// Read reads channel ch a fractional delay behind the cursor.
//
// delay is clamped to [1, Len()-1]. With d = floor(delay) and f its fraction
// the result moves from the sample d behind the cursor towards the older
// sample d+1 behind it as f grows.
func (d *Line) Read(ch int, delay float64) float64 {
	delay = d.ClampDelay(delay)

	whole := int(delay)
	frac := delay - float64(whole)

	a := (d.writePos - whole) % d.size
	if a < 0 {
		a += d.size
	}
	b := a - 1
	if b < 0 {
		b += d.size
	}

	row := d.rows[ch]
	return interp.Linear(frac, row[a], row[b])
}

// ClampDelay limits delay to the readable range [1, Len()-1].
func (d *Line) ClampDelay(delay float64) float64 {
	maxDelay := float64(d.size - 1)
	if delay < 1 || math.IsNaN(delay) {
		return 1
	}
	if delay > maxDelay {
		return maxDelay
	}
	return delay
}

// Reset clears every row and rewinds the cursor.
func (d *Line) Reset() {
	for _, row := range d.rows {
		for i := range row {
			row[i] = 0
		}
	}
	d.writePos = 0
}
