package echo_test

import (
	"fmt"

	"github.com/cwbudde/algo-echo/dsp/core"
	"github.com/cwbudde/algo-echo/dsp/effects/echo"
)

func ExampleSyncSeconds() {
	fmt.Println(echo.SyncSeconds(echo.DivisionQuarter, 120))
	fmt.Println(echo.SyncSeconds(echo.DivisionWhole, 120))
	fmt.Println(echo.SyncSeconds(echo.DivisionEighth, 60))
	// Output:
	// 0.5
	// 2
	// 0.5
}

func ExampleEngine_Process() {
	e := echo.New()
	cfg := core.ProcessorConfig{SampleRate: 8000, BlockSize: 32, Channels: 2}

	p := echo.DefaultParams()
	p.DelayMs = 2
	p.FeedbackPercent = 0
	p.MixPercent = 100

	if err := e.Prepare(cfg, p); err != nil {
		fmt.Println(err)
		return
	}

	left := make([]float64, 32)
	right := make([]float64, 32)
	left[0] = 1
	e.Process([][]float64{left, right}, p, echo.Transport{})

	for i, v := range left {
		if v > 0.5 {
			fmt.Printf("echo at sample %d (%.1f ms)\n", i, float64(i)/cfg.SampleRate*1000)
		}
	}
	// Output:
	// echo at sample 16 (2.0 ms)
}
