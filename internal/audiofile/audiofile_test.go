package audiofile

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mitchellh/go-homedir"

	"github.com/cwbudde/algo-echo/internal/testutil"
)

func TestWAVRoundTrip(t *testing.T) {
	tests := []struct {
		bitDepth int
		eps      float64
	}{
		{8, 0.013},
		{16, 1e-4},
		{24, 1e-6},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%dbit", tt.bitDepth), func(t *testing.T) {
			in := &Buffer{
				SampleRate: 44100,
				Channels: [][]float64{
					testutil.DeterministicSine(440, 44100, 0.8, 1000),
					testutil.DeterministicNoise(1, 0.5, 1000),
				},
			}
			path := filepath.Join(t.TempDir(), "out.wav")
			if err := WriteWAV(path, in, tt.bitDepth); err != nil {
				t.Fatal(err)
			}

			got, err := Read(path)
			if err != nil {
				t.Fatal(err)
			}
			if got.SampleRate != 44100 || len(got.Channels) != 2 || got.Frames() != 1000 {
				t.Fatalf("rate=%d channels=%d frames=%d", got.SampleRate, len(got.Channels), got.Frames())
			}
			for ch := range in.Channels {
				testutil.RequireSliceNearlyEqual(t, got.Channels[ch], in.Channels[ch], tt.eps)
			}
		})
	}
}

func TestWriteWAVClips(t *testing.T) {
	in := &Buffer{SampleRate: 8000, Channels: [][]float64{{2, -3, math.NaN(), 0.5}}}
	path := filepath.Join(t.TempDir(), "clip.wav")
	if err := WriteWAV(path, in, 16); err != nil {
		t.Fatal(err)
	}
	got, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{32767.0 / 32768, -32767.0 / 32768, 0, 16384.0 / 32768}
	testutil.RequireSliceNearlyEqual(t, got.Channels[0], want, 1e-12)
}

func TestEightBitIsUnsigned(t *testing.T) {
	in := &Buffer{SampleRate: 8000, Channels: [][]float64{{2, -3, math.NaN(), 0.5, 0, 0}}}
	path := filepath.Join(t.TempDir(), "u8.wav")
	if err := WriteWAV(path, in, 8); err != nil {
		t.Fatal(err)
	}

	// Samples are stored as 255, 1, 128, 192, 128, 128.
	got, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{127.0 / 128, -127.0 / 128, 0, 64.0 / 128, 0, 0}
	testutil.RequireSliceNearlyEqual(t, got.Channels[0], want, 1e-12)
}

func TestWriteWAVErrors(t *testing.T) {
	dir := t.TempDir()
	b := NewBuffer(48000, 2, 10)

	if err := WriteWAV(filepath.Join(dir, "a.wav"), b, 12); !errors.Is(err, ErrUnsupportedBitDepth) {
		t.Fatalf("bit depth: %v", err)
	}
	if err := WriteWAV(filepath.Join(dir, "b.wav"), &Buffer{SampleRate: 48000}, 16); !errors.Is(err, ErrEmptyBuffer) {
		t.Fatalf("empty: %v", err)
	}
}

func TestReadErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Read(filepath.Join(dir, "missing.wav")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing file: %v", err)
	}

	txt := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(txt, []byte("hello"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Read(txt); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("txt: %v", err)
	}

	bogus := filepath.Join(dir, "bogus.wav")
	if err := os.WriteFile(bogus, []byte("definitely not RIFF data"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Read(bogus); !errors.Is(err, ErrInvalidWAV) {
		t.Fatalf("bogus wav: %v", err)
	}
}

func TestHomeExpansion(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })

	b := NewBuffer(22050, 1, 64)
	if err := WriteWAV("~/tilde.wav", b, 16); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(home, "tilde.wav")); err != nil {
		t.Fatalf("file not written under home: %v", err)
	}
	if _, err := Read("~/tilde.wav"); err != nil {
		t.Fatal(err)
	}
}

func TestReadLogsAtDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.wav")
	if err := WriteWAV(path, NewBuffer(8000, 1, 8), 16); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	if _, err := Read(path, WithLogger(logger)); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "decoded wav file") {
		t.Fatalf("missing debug record: %q", out.String())
	}
}

func TestBufferHelpers(t *testing.T) {
	b := NewBuffer(100, 2, 10)
	if len(b.Channels) != 2 || b.Frames() != 10 {
		t.Fatalf("NewBuffer: channels=%d frames=%d", len(b.Channels), b.Frames())
	}
	if b.Seconds() != 0.1 {
		t.Fatalf("Seconds() = %v", b.Seconds())
	}
	if (&Buffer{}).Frames() != 0 || (&Buffer{}).Seconds() != 0 {
		t.Fatal("empty buffer should report zero length")
	}
}
