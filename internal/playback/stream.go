package playback

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cwbudde/algo-echo/dsp/effects/echo"
	"github.com/cwbudde/algo-echo/internal/paramstore"
)

// BytesPerFrame is the size of one interleaved stereo float32 frame.
const BytesPerFrame = 2 * 4

// Stream renders interleaved little-endian float32 stereo on demand. Read
// runs the engine one block at a time with a fresh parameter snapshot, so it
// must be the only caller of the engine once playback starts.
type Stream struct {
	engine *echo.Engine
	store  *paramstore.Store
	source Source

	left, right []float64
	view        [2][]float64

	pending []byte
	off     int
}

// NewStream wraps a prepared stereo engine.
func NewStream(e *echo.Engine, store *paramstore.Store, src Source) (*Stream, error) {
	cfg := e.Config()
	if !e.Prepared() || cfg.Channels != 2 {
		return nil, fmt.Errorf("playback: engine must be prepared for stereo (prepared=%v channels=%d)", e.Prepared(), cfg.Channels)
	}
	n := cfg.BlockSize
	s := &Stream{
		engine:  e,
		store:   store,
		source:  src,
		left:    make([]float64, n),
		right:   make([]float64, n),
		pending: make([]byte, n*BytesPerFrame),
	}
	s.off = len(s.pending)
	return s, nil
}

// Read fills p completely. It never fails.
func (s *Stream) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if s.off == len(s.pending) {
			s.renderBlock()
		}
		c := copy(p[n:], s.pending[s.off:])
		n += c
		s.off += c
	}
	return n, nil
}

func (s *Stream) renderBlock() {
	p, tr := s.store.Snapshot(), s.store.Transport()

	s.source.Fill(s.left, s.right, tr)
	s.view[0], s.view[1] = s.left, s.right
	s.engine.Process(s.view[:], p, tr)

	for i := range s.left {
		binary.LittleEndian.PutUint32(s.pending[i*BytesPerFrame:], math.Float32bits(float32(s.left[i])))
		binary.LittleEndian.PutUint32(s.pending[i*BytesPerFrame+4:], math.Float32bits(float32(s.right[i])))
	}
	s.off = 0
}
