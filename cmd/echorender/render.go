package main

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"github.com/cwbudde/algo-echo/dsp/core"
	"github.com/cwbudde/algo-echo/dsp/effects/echo"
	"github.com/cwbudde/algo-echo/internal/audiofile"
	"github.com/cwbudde/algo-echo/internal/automation"
	"github.com/cwbudde/algo-echo/internal/paramstore"
	"github.com/cwbudde/algo-echo/measure/echoes"
)

type renderOptions struct {
	params    echo.Params
	blockSize int
	bpm       float64
	script    *automation.Script
}

// render processes in through a fresh engine and returns a stereo buffer
// extended by the engine tail. in is not modified.
func render(in *audiofile.Buffer, opts renderOptions) (*audiofile.Buffer, error) {
	if in.SampleRate <= 0 {
		return nil, fmt.Errorf("render: %w: %d", echo.ErrInvalidSampleRate, in.SampleRate)
	}
	sampleRate := float64(in.SampleRate)

	cfg := core.ApplyProcessorOptions(
		core.WithSampleRate(sampleRate),
		core.WithBlockSize(opts.blockSize),
		core.WithChannels(2),
	)

	e := echo.New()
	if err := e.Prepare(cfg, opts.params); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	store := paramstore.New(opts.params)
	store.SetTempo(opts.bpm)

	frames := in.Frames()
	tail := int(math.Ceil(e.TailSeconds() * sampleRate))
	out := audiofile.NewBuffer(in.SampleRate, 2, frames+tail)

	mono := len(in.Channels) == 1
	if !mono {
		copy(out.Channels[0], in.Channels[0][:frames])
		copy(out.Channels[1], in.Channels[1][:frames])
	}

	view := make([][]float64, 2)
	for start := 0; start < frames+tail; start += cfg.BlockSize {
		end := min(start+cfg.BlockSize, frames+tail)

		if opts.script != nil {
			if err := opts.script.Apply(float64(start)/sampleRate, store); err != nil {
				return nil, fmt.Errorf("render: at %.3fs: %w", float64(start)/sampleRate, err)
			}
		}
		p, tr := store.Snapshot(), store.Transport()

		left, right := out.Channels[0][start:end], out.Channels[1][start:end]
		if mono && start < frames {
			e.ProcessMonoToStereo(in.Channels[0][start:min(end, frames)], left, right, p, tr)
			if end > frames {
				// The block straddles the end of the input; finish it as silence.
				view[0], view[1] = left[frames-start:], right[frames-start:]
				e.Process(view, p, tr)
			}
			continue
		}

		view[0], view[1] = left, right
		e.Process(view, p, tr)
	}

	return out, nil
}

// analysisSeconds covers the longest delay plus the tail.
const analysisSeconds = echo.MaxDelaySeconds + echo.TailSeconds

// printAnalysis renders the impulse response of p and prints its echo
// metrics, the first repeats and a coarse spectrum next to the response of
// the feedback filters.
func printAnalysis(w io.Writer, sampleRate float64, p echo.Params, bpm float64) error {
	cfg := core.ProcessorConfig{SampleRate: sampleRate, BlockSize: 512, Channels: 2}

	store := paramstore.New(p)
	store.SetTempo(bpm)

	resp, err := echoes.Render(echo.New(), cfg, p, store.Transport(), analysisSeconds)
	if err != nil {
		return err
	}

	analyzer := echoes.NewAnalyzer(sampleRate)
	left, err := analyzer.Analyze(resp[0])
	if err != nil {
		return err
	}
	right, err := analyzer.Analyze(resp[1])
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Channel\tRepeats\tFirst [ms]\tSpacing [ms]\tDecay [dB/repeat]\n")
	fmt.Fprintf(tw, "-------\t-------\t----------\t------------\t-----------------\n")
	for _, row := range []struct {
		name string
		m    echoes.Metrics
	}{{"left", left}, {"right", right}} {
		fmt.Fprintf(tw, "%s\t%d\t%.2f\t%.2f\t%.2f\n",
			row.name,
			row.m.EchoCount,
			row.m.FirstEchoSeconds*1000,
			row.m.MeanSpacingSeconds*1000,
			row.m.DecayPerRepeatDB,
		)
	}
	fmt.Fprintln(tw)

	fmt.Fprintf(tw, "Repeat\tChannel\tTime [ms]\tLevel [dB]\n")
	fmt.Fprintf(tw, "------\t-------\t---------\t----------\n")
	for i, e := range mergeEchoes(left.Echoes, right.Echoes, 8) {
		fmt.Fprintf(tw, "%d\t%s\t%.2f\t%.1f\n", i+1, e.channel, e.Seconds*1000, e.LevelDB)
	}
	fmt.Fprintln(tw)

	spec, err := echoes.ResponseSpectrum(resp[0], sampleRate, spectrumSize(sampleRate))
	if err != nil {
		return err
	}
	fmt.Fprintf(tw, "Freq [Hz]\tLeft [dB]\tFeedback filter [dB]\n")
	fmt.Fprintf(tw, "---------\t---------\t--------------------\n")
	for f := 31.25; f < sampleRate/2; f *= 2 {
		fmt.Fprintf(tw, "%.0f\t%.1f\t%.1f\n", f, spec.At(f), echo.FeedbackResponseDB(p, sampleRate, f))
	}

	return tw.Flush()
}

type channelEcho struct {
	echoes.Echo
	channel string
}

// mergeEchoes interleaves both channels' repeats by arrival, up to limit.
func mergeEchoes(left, right []echoes.Echo, limit int) []channelEcho {
	out := make([]channelEcho, 0, limit)
	i, j := 0, 0
	for len(out) < limit && (i < len(left) || j < len(right)) {
		if j >= len(right) || (i < len(left) && left[i].Index <= right[j].Index) {
			out = append(out, channelEcho{left[i], "left"})
			i++
			continue
		}
		out = append(out, channelEcho{right[j], "right"})
		j++
	}
	return out
}

// spectrumSize returns the largest power of two not above one second.
func spectrumSize(sampleRate float64) int {
	n := 2
	for float64(n*2) <= sampleRate {
		n *= 2
	}
	return n
}
