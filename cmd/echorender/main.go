// Command echorender runs an audio file through the echo offline.
//
// Usage:
//
//	echorender [flags] input.{wav,mp3} output.wav
//
// Mono input is spread to both channels; the output is always stereo and
// carries the echo tail after the input ends.
//
// Examples:
//
//	echorender -time 350 -feedback 60 -pingpong in.wav out.wav
//	echorender -sync -division 1/8D -bpm 128 loop.mp3 out.wav
//	echorender -script ~/sweeps/feedback.lua -analyze in.wav out.wav
//	echorender -params
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/cwbudde/algo-echo/dsp/effects/echo"
	"github.com/cwbudde/algo-echo/internal/audiofile"
	"github.com/cwbudde/algo-echo/internal/automation"
)

func main() {
	def := echo.DefaultParams()

	timeMs := flag.Float64("time", def.DelayMs, "delay time in milliseconds")
	sync := flag.Bool("sync", def.Sync, "sync the delay time to -bpm")
	division := flag.String("division", def.Division.String(), "note value when synced (1/1 1/2 1/4 1/8 1/16 1/8T 1/16T 1/8D 1/16D)")
	feedback := flag.Float64("feedback", def.FeedbackPercent, "feedback in percent")
	mix := flag.Float64("mix", def.MixPercent, "wet amount in percent")
	lowCut := flag.Float64("lowcut", def.LowCutHz, "feedback high-pass cutoff in Hz")
	highCut := flag.Float64("highcut", def.HighCutHz, "feedback low-pass cutoff in Hz")
	pingPong := flag.Bool("pingpong", def.PingPong, "alternate repeats between channels")
	drive := flag.Float64("drive", def.DriveDB, "feedback saturation drive in dB")
	gain := flag.Float64("gain", def.OutputDB, "output gain in dB")

	block := flag.Int("block", 512, "processing block size in samples")
	bpm := flag.Float64("bpm", 0, "host tempo in BPM (0 = none)")
	script := flag.String("script", "", "Lua automation script")
	bits := flag.Int("bits", 16, "output bit depth (8, 16, 24, 32)")
	analyze := flag.Bool("analyze", false, "print echo metrics and a spectrum of the settings")
	params := flag.Bool("params", false, "list parameters and exit")
	verbose := flag.Bool("v", false, "log debug details")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: echorender [flags] input.{wav,mp3} output.wav\n\n")
		fmt.Fprintf(os.Stderr, "Runs an audio file through a stereo feedback echo.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  echorender -time 350 -feedback 60 -pingpong in.wav out.wav\n")
		fmt.Fprintf(os.Stderr, "  echorender -sync -division 1/8D -bpm 128 loop.mp3 out.wav\n")
		fmt.Fprintf(os.Stderr, "  echorender -params\n")
	}
	flag.Parse()

	if *params {
		printParams()
		return
	}

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

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(2)
	}

	p := echo.Params{
		DelayMs:         *timeMs,
		Sync:            *sync,
		Division:        div,
		FeedbackPercent: *feedback,
		MixPercent:      *mix,
		LowCutHz:        *lowCut,
		HighCutHz:       *highCut,
		PingPong:        *pingPong,
		DriveDB:         *drive,
		OutputDB:        *gain,
	}

	cfg := jobConfig{
		input:     flag.Arg(0),
		output:    flag.Arg(1),
		params:    p,
		blockSize: *block,
		bpm:       *bpm,
		script:    *script,
		bitDepth:  *bits,
		analyze:   *analyze,
	}

	if err := run(cfg, logger, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type jobConfig struct {
	input     string
	output    string
	params    echo.Params
	blockSize int
	bpm       float64
	script    string
	bitDepth  int
	analyze   bool
}

func run(cfg jobConfig, logger *slog.Logger, stdout io.Writer) error {
	in, err := audiofile.Read(cfg.input, audiofile.WithLogger(logger))
	if err != nil {
		return err
	}
	if !echo.SupportsLayout(len(in.Channels), 2) {
		return fmt.Errorf("%s: %d channels, want mono or stereo", cfg.input, len(in.Channels))
	}

	var auto *automation.Script
	if cfg.script != "" {
		auto, err = automation.Load(cfg.script)
		if err != nil {
			return err
		}
		defer auto.Close()
	}

	out, err := render(in, renderOptions{
		params:    cfg.params,
		blockSize: cfg.blockSize,
		bpm:       cfg.bpm,
		script:    auto,
	})
	if err != nil {
		return err
	}
	logger.Info("rendered",
		"input", cfg.input,
		"sampleRate", in.SampleRate,
		"inputChannels", len(in.Channels),
		"seconds", out.Seconds(),
	)

	if err := audiofile.WriteWAV(cfg.output, out, cfg.bitDepth, audiofile.WithLogger(logger)); err != nil {
		return err
	}

	if cfg.analyze {
		return printAnalysis(stdout, float64(in.SampleRate), cfg.params, cfg.bpm)
	}
	return nil
}

func printParams() {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tName\tMin\tMax\tDefault\tUnit")
	fmt.Fprintln(tw, "--\t----\t---\t---\t-------\t----")
	for _, s := range echo.ParamSpecs() {
		unit := s.Unit
		if len(s.Choices) > 0 {
			unit = fmt.Sprint(s.Choices)
		}
		fmt.Fprintf(tw, "%s\t%s\t%g\t%g\t%g\t%s\n", s.ID, s.Name, s.Min, s.Max, s.Default, unit)
	}
	if err := tw.Flush(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: failed to flush output: %v\n", err)
	}
}
