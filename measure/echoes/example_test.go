package echoes_test

import (
	"fmt"

	"github.com/cwbudde/algo-echo/dsp/core"
	"github.com/cwbudde/algo-echo/dsp/effects/echo"
	"github.com/cwbudde/algo-echo/measure/echoes"
)

func ExampleAnalyzer_Analyze() {
	cfg := core.ProcessorConfig{SampleRate: 48000, BlockSize: 512, Channels: 2}

	p := echo.DefaultParams()
	p.DelayMs = 250
	p.FeedbackPercent = 0
	p.MixPercent = 100

	resp, err := echoes.Render(echo.New(), cfg, p, echo.Transport{}, 1)
	if err != nil {
		panic(err)
	}

	metrics, err := echoes.NewAnalyzer(cfg.SampleRate).Analyze(resp[0])
	if err != nil {
		panic(err)
	}

	fmt.Printf("repeats: %d\n", metrics.EchoCount)
	fmt.Printf("first:   %.0f ms\n", metrics.FirstEchoSeconds*1000)

	// Output:
	// repeats: 1
	// first:   250 ms
}
