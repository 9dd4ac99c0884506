// Package audiofile loads and stores the audio rendered by the command line
// tools. WAV is read and written; MP3 is read only.
package audiofile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/mitchellh/go-homedir"
)

var (
	ErrUnsupportedFormat   = errors.New("audiofile: unsupported file type")
	ErrInvalidWAV          = errors.New("audiofile: invalid WAV file")
	ErrUnsupportedBitDepth = errors.New("audiofile: bit depth must be 8, 16, 24 or 32")
	ErrEmptyBuffer         = errors.New("audiofile: buffer has no audio")
)

// Buffer is decoded audio, one slice per channel, in [-1, 1].
type Buffer struct {
	SampleRate int
	Channels   [][]float64
}

// NewBuffer allocates a silent buffer.
func NewBuffer(sampleRate, channels, frames int) *Buffer {
	b := &Buffer{SampleRate: sampleRate, Channels: make([][]float64, channels)}
	for ch := range b.Channels {
		b.Channels[ch] = make([]float64, frames)
	}
	return b
}

// Frames returns the length of the shortest channel.
func (b *Buffer) Frames() int {
	if len(b.Channels) == 0 {
		return 0
	}
	n := len(b.Channels[0])
	for _, c := range b.Channels[1:] {
		n = min(n, len(c))
	}
	return n
}

// Seconds returns the buffer duration.
func (b *Buffer) Seconds() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(b.Frames()) / float64(b.SampleRate)
}

// Option configures Read and WriteWAV.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger routes decode details to l at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func applyOptions(opts []Option) options {
	o := options{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// ExpandPath resolves a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	p, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("audiofile: expand %q: %w", path, err)
	}
	return p, nil
}

// Read decodes a .wav or .mp3 file.
func Read(path string, opts ...Option) (*Buffer, error) {
	o := applyOptions(opts)

	path, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("audiofile: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return decodeWAV(f, path, o.logger)
	case ".mp3":
		return decodeMP3(f, path, o.logger)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

func decodeWAV(r io.ReadSeeker, path string, logger *slog.Logger) (*Buffer, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidWAV, path)
	}
	if err := decoder.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("audiofile: %s: %w", path, err)
	}

	format := decoder.Format()
	bitDepth := int(decoder.SampleBitDepth())
	if bitDepth == 0 || format == nil || format.NumChannels <= 0 {
		return nil, fmt.Errorf("%w: %s: missing format", ErrInvalidWAV, path)
	}

	bytesPerSample := (bitDepth-1)/8 + 1
	nsamples := int(decoder.PCMLen()) / bytesPerSample
	nchannels := format.NumChannels
	logger.Debug("decoding wav file",
		"path", path,
		"sampleRate", format.SampleRate,
		"nchannels", nchannels,
		"bitDepth", bitDepth,
		"nsamples", nsamples,
	)

	buf := &audio.IntBuffer{
		Format:         format,
		Data:           make([]int, nsamples),
		SourceBitDepth: bitDepth,
	}
	n, err := decoder.PCMBuffer(buf)
	if err != nil {
		return nil, fmt.Errorf("audiofile: %s: %w", path, err)
	}

	floatBuf := buf.AsFloatBuffer()
	scale := 1 / math.Pow(2, float64(bitDepth-1))
	// 8-bit PCM is unsigned with silence at 128.
	var bias float64
	if bitDepth == 8 {
		bias = 128
	}
	frames := n / nchannels

	out := NewBuffer(format.SampleRate, nchannels, frames)
	for i := range frames * nchannels {
		out.Channels[i%nchannels][i/nchannels] = (floatBuf.Data[i] - bias) * scale
	}
	logger.Debug("decoded wav file", "path", path, "frames", frames)

	return out, nil
}

// MP3 decodes to interleaved 16-bit little-endian stereo.
func decodeMP3(r io.Reader, path string, logger *slog.Logger) (*Buffer, error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("audiofile: %s: %w", path, err)
	}

	var pcm bytes.Buffer
	if n := decoder.Length(); n > 0 {
		pcm.Grow(int(n))
	}
	if _, err := pcm.ReadFrom(decoder); err != nil {
		return nil, fmt.Errorf("audiofile: %s: %w", path, err)
	}

	const nchannels = 2
	data := pcm.Bytes()
	frames := len(data) / (2 * nchannels)
	logger.Debug("decoded mp3 file", "path", path, "sampleRate", decoder.SampleRate(), "frames", frames)

	out := NewBuffer(decoder.SampleRate(), nchannels, frames)
	for i := range frames * nchannels {
		sample := int16(binary.LittleEndian.Uint16(data[2*i:]))
		out.Channels[i%nchannels][i/nchannels] = float64(sample) / 32768
	}

	return out, nil
}

// WriteWAV encodes b as 8, 16, 24 or 32 bit integer PCM. Samples outside
// [-1, 1] are clipped and NaN is written as silence.
func WriteWAV(path string, b *Buffer, bitDepth int, opts ...Option) error {
	o := applyOptions(opts)

	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}
	nchannels := len(b.Channels)
	frames := b.Frames()
	if nchannels == 0 || b.SampleRate <= 0 {
		return ErrEmptyBuffer
	}

	path, err := ExpandPath(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("audiofile: %w", err)
	}
	defer f.Close()

	peak := math.Pow(2, float64(bitDepth-1)) - 1
	intBuf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: nchannels,
			SampleRate:  b.SampleRate,
		},
		Data:           make([]int, frames*nchannels),
		SourceBitDepth: bitDepth,
	}
	for i := range intBuf.Data {
		v := b.Channels[i%nchannels][i/nchannels]
		if math.IsNaN(v) {
			v = 0
		}
		v = math.Max(-1, math.Min(1, v))
		intBuf.Data[i] = int(math.Round(v * peak))
		if bitDepth == 8 {
			intBuf.Data[i] += 128
		}
	}

	enc := wav.NewEncoder(f, b.SampleRate, bitDepth, nchannels, 1)
	if err := enc.Write(intBuf); err != nil {
		return fmt.Errorf("audiofile: %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("audiofile: %s: %w", path, err)
	}
	o.logger.Debug("wrote wav file", "path", path, "frames", frames, "bitDepth", bitDepth)

	return f.Close()
}
