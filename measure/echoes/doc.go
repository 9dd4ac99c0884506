// Package echoes measures the impulse response of the echo engine.
//
// A unit impulse is rendered through a prepared engine and the result is
// inspected for discrete repeats:
//
//   - Echo arrivals: local peaks above a level threshold, clustered so the
//     smear of the feedback filters counts as one repeat
//   - First echo time and mean spacing between repeats
//   - Decay per repeat in dB, the audible effect of feedback and filtering
//   - Power spectrum of the response, which shows the comb of a mixed echo
//
// # Usage
//
//	e := echo.New()
//	resp, err := echoes.Render(e, cfg, params, echo.Transport{}, 2)
//	metrics, err := echoes.NewAnalyzer(cfg.SampleRate).Analyze(resp[0])
//	fmt.Printf("first echo %.1f ms, %d repeats\n", metrics.FirstEchoSeconds*1000, metrics.EchoCount)
package echoes
