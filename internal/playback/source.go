// Package playback turns the echo engine into a pull stream for a real-time
// audio device and maps key presses onto parameter changes.
package playback

import (
	"math"

	"github.com/cwbudde/algo-echo/dsp/effects/echo"
	"github.com/cwbudde/algo-echo/internal/audiofile"
)

// Source produces the dry signal, one block at a time.
type Source interface {
	Fill(left, right []float64, tr echo.Transport)
}

const (
	defaultBPM     = 120.0
	clickFreqHz    = 1000.0
	clickSeconds   = 0.01
	clickAmplitude = 0.5
)

// Click is a metronome: a short decaying tone on every beat of the host
// tempo, or of 120 BPM when no tempo is set.
type Click struct {
	sampleRate float64
	sinceBeat  float64
}

// NewClick returns a metronome starting on a beat.
func NewClick(sampleRate float64) *Click {
	return &Click{sampleRate: sampleRate}
}

func (c *Click) Fill(left, right []float64, tr echo.Transport) {
	bpm := defaultBPM
	if b, ok := tr.Tempo(true); ok {
		bpm = b
	}
	interval := 60 / bpm * c.sampleRate
	clickLen := clickSeconds * c.sampleRate
	step := 2 * math.Pi * clickFreqHz / c.sampleRate

	for i := range left {
		if c.sinceBeat >= interval {
			c.sinceBeat -= interval
		}
		v := 0.0
		if c.sinceBeat < clickLen {
			env := 1 - c.sinceBeat/clickLen
			v = clickAmplitude * env * env * math.Sin(step*c.sinceBeat)
		}
		left[i] = v
		right[i] = v
		c.sinceBeat++
	}
}

// Loop repeats a decoded file forever.
type Loop struct {
	buf *audiofile.Buffer
	pos int
}

// NewLoop returns a looping source over buf, which must hold at least one
// frame in one or two channels.
func NewLoop(buf *audiofile.Buffer) *Loop {
	return &Loop{buf: buf}
}

func (l *Loop) Fill(left, right []float64, _ echo.Transport) {
	frames := l.buf.Frames()
	if frames == 0 {
		clear(left)
		clear(right)
		return
	}
	src := l.buf.Channels
	for i := range left {
		left[i] = src[0][l.pos]
		right[i] = src[len(src)-1][l.pos]
		l.pos++
		if l.pos >= frames {
			l.pos = 0
		}
	}
}
