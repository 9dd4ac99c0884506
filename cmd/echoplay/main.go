//go:build !headless

// Command echoplay runs the echo live on the default audio device.
//
// Usage:
//
//	echoplay [flags]
//
// Without -in the dry signal is a metronome click at the host tempo. Keys
// change parameters while playing:
//
//	p ping-pong  s sync  d division  +/- feedback  [/] mix  ,/. time  q quit
//
// Examples:
//
//	echoplay -bpm 100 -sync -division 1/8D
//	echoplay -in ~/loops/drums.wav -feedback 60 -pingpong
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/ebitengine/oto/v3"
	"golang.org/x/term"

	"github.com/cwbudde/algo-echo/dsp/core"
	"github.com/cwbudde/algo-echo/dsp/effects/echo"
	"github.com/cwbudde/algo-echo/internal/audiofile"
	"github.com/cwbudde/algo-echo/internal/paramstore"
	"github.com/cwbudde/algo-echo/internal/playback"
)

func main() {
	def := echo.DefaultParams()

	rate := flag.Int("rate", 48000, "device sample rate in Hz (ignored with -in)")
	block := flag.Int("block", 256, "processing block size in samples")
	bpm := flag.Float64("bpm", 120, "host tempo in BPM (0 = none)")
	in := flag.String("in", "", "WAV or MP3 file to loop instead of the click")

	timeMs := flag.Float64("time", def.DelayMs, "delay time in milliseconds")
	sync := flag.Bool("sync", def.Sync, "sync the delay time to -bpm")
	division := flag.String("division", def.Division.String(), "note value when synced")
	feedback := flag.Float64("feedback", def.FeedbackPercent, "feedback in percent")
	mix := flag.Float64("mix", def.MixPercent, "wet amount in percent")
	pingPong := flag.Bool("pingpong", def.PingPong, "alternate repeats between channels")
	verbose := flag.Bool("v", false, "log debug details")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: echoplay [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Plays a click or a looped file through the echo.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nKeys:\n  %s\n", playback.KeyHelp)
	}
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	div, ok := echo.ParseDivision(*division)
	if !ok {
		fmt.Fprintf(os.Stderr, "error: unknown division %q\n", *division)
		os.Exit(2)
	}

	p := def
	p.DelayMs = *timeMs
	p.Sync = *sync
	p.Division = div
	p.FeedbackPercent = *feedback
	p.MixPercent = *mix
	p.PingPong = *pingPong

	if err := play(*rate, *block, *bpm, *in, p, logger); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func play(rate, block int, bpm float64, in string, p echo.Params, logger *slog.Logger) error {
	var src playback.Source
	if in != "" {
		buf, err := audiofile.Read(in, audiofile.WithLogger(logger))
		if err != nil {
			return err
		}
		rate = buf.SampleRate
		src = playback.NewLoop(buf)
	} else {
		src = playback.NewClick(float64(rate))
	}

	cfg := core.ProcessorConfig{SampleRate: float64(rate), BlockSize: block, Channels: 2}
	engine := echo.New()
	if err := engine.Prepare(cfg, p); err != nil {
		return err
	}
	defer engine.Release()

	store := paramstore.New(p)
	store.SetTempo(bpm)

	stream, err := playback.NewStream(engine, store, src)
	if err != nil {
		return err
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   rate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return fmt.Errorf("open audio device: %w", err)
	}
	<-ready

	player := ctx.NewPlayer(stream)
	defer player.Close()
	player.Play()
	logger.Debug("playing", "rate", rate, "block", block, "bpm", bpm, "buffer", engine.BufferLength())

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return fmt.Errorf("stdin is not a terminal")
	}
	old, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("raw mode: %w", err)
	}
	defer func() { _ = term.Restore(fd, old) }()

	keys := make(chan byte)
	go func() {
		b := make([]byte, 1)
		for {
			if n, err := os.Stdin.Read(b); err != nil {
				close(keys)
				return
			} else if n == 1 {
				keys <- b[0]
			}
		}
	}()

	fmt.Printf("%s\r\n", playback.KeyHelp)
	fmt.Printf("\r\033[K%s", playback.Status(store))
	for k := range keys {
		if playback.HandleKey(store, k) {
			break
		}
		fmt.Printf("\r\033[K%s", playback.Status(store))
		if err := player.Err(); err != nil {
			fmt.Print("\r\n")
			return err
		}
	}
	fmt.Print("\r\n")
	return nil
}
