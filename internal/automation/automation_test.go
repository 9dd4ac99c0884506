package automation

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-echo/dsp/effects/echo"
	"github.com/cwbudde/algo-echo/internal/paramstore"
)

const sweep = `
function automate(t, p)
  return {
    feedback = 10 * t,
    mix = p.mix + 1,
    pingPong = t >= 2,
    syncDivision = "1/8T",
    bpm = 90,
    wobble = 3,
  }
end
`

func mustParse(t *testing.T, src string) *Script {
	t.Helper()
	s, err := Parse(src, "test")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestEvaluate(t *testing.T) {
	s := mustParse(t, sweep)
	p := echo.DefaultParams()

	res, err := s.Evaluate(1.5, p)
	if err != nil {
		t.Fatal(err)
	}

	want := p
	want.FeedbackPercent = 15
	want.MixPercent = p.MixPercent + 1
	want.Division = echo.DivisionEighthTriplet
	if res.Params != want {
		t.Fatalf("Params = %+v, want %+v", res.Params, want)
	}
	if !res.TempoSet || res.Tempo != 90 {
		t.Fatalf("tempo = %v, %v", res.Tempo, res.TempoSet)
	}

	res, err = s.Evaluate(3, p)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Params.PingPong || res.Params.FeedbackPercent != 30 {
		t.Fatalf("at t=3: %+v", res.Params)
	}
}

func TestEvaluateSeesCurrentParams(t *testing.T) {
	s := mustParse(t, `
function automate(t, p)
  if p.sync then
    return { timeMs = p.timeMs * 2, syncDivision = p.syncDivision + 1 }
  end
  return nil
end`)

	p := echo.DefaultParams()
	res, err := s.Evaluate(0, p)
	if err != nil {
		t.Fatal(err)
	}
	if res.Params != p || res.TempoSet {
		t.Fatalf("nil return changed params: %+v", res)
	}

	p.Sync = true
	res, err = s.Evaluate(0, p)
	if err != nil {
		t.Fatal(err)
	}
	if res.Params.DelayMs != 800 || res.Params.Division != echo.DivisionEighth {
		t.Fatalf("got %+v", res.Params)
	}
}

func TestEvaluateBadValues(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "string for number", src: `function automate() return { feedback = "lots" } end`},
		{name: "table for bool", src: `function automate() return { sync = {} } end`},
		{name: "unknown division", src: `function automate() return { syncDivision = "1/3" } end`},
		{name: "string tempo", src: `function automate() return { bpm = "fast" } end`},
		{name: "non-table result", src: `function automate() return 4 end`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustParse(t, tt.src)
			p := echo.DefaultParams()
			res, err := s.Evaluate(0, p)
			if !errors.Is(err, ErrBadValue) {
				t.Fatalf("err = %v, want ErrBadValue", err)
			}
			if res.Params != p {
				t.Fatalf("params changed on error: %+v", res.Params)
			}
		})
	}
}

func TestRuntimeError(t *testing.T) {
	s := mustParse(t, `function automate(t) error("boom") end`)
	if _, err := s.Evaluate(0, echo.DefaultParams()); err == nil {
		t.Fatal("expected runtime error")
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse("function automate(", "broken"); err == nil {
		t.Fatal("expected syntax error")
	}
	if _, err := Parse("x = 1", "nofunc"); !errors.Is(err, ErrNoAutomate) {
		t.Fatalf("err = %v, want ErrNoAutomate", err)
	}
}

func TestSandbox(t *testing.T) {
	s := mustParse(t, `function automate() os.execute("true") return nil end`)
	if _, err := s.Evaluate(0, echo.DefaultParams()); err == nil {
		t.Fatal("os library should not be available")
	}

	s = mustParse(t, `function automate() dofile("/etc/hostname") return nil end`)
	if _, err := s.Evaluate(0, echo.DefaultParams()); err == nil {
		t.Fatal("dofile should not be available")
	}

	s = mustParse(t, `function automate(t) return { mix = math.floor(string.len("abc") * 10) } end`)
	res, err := s.Evaluate(0, echo.DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	if res.Params.MixPercent != 30 {
		t.Fatalf("mix = %v", res.Params.MixPercent)
	}
}

func TestLoadAndApply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auto.lua")
	src := `
function automate(t, p)
  return { feedback = 200, drive = 12, bpm = 140 }
end`
	if err := os.WriteFile(path, []byte(src), 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	store := paramstore.New(echo.DefaultParams())
	if err := s.Apply(0.5, store); err != nil {
		t.Fatal(err)
	}

	got := store.Snapshot()
	if got.FeedbackPercent != echo.MaxFeedbackPercent || got.DriveDB != 12 {
		t.Fatalf("store = %+v", got)
	}
	if tr := store.Transport(); !tr.Valid || tr.BPM != 140 {
		t.Fatalf("transport = %+v", tr)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.lua")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestApplyBadScriptKeepsStore(t *testing.T) {
	s := mustParse(t, `function automate() return { mix = true } end`)
	store := paramstore.New(echo.DefaultParams())
	if err := s.Apply(0, store); err == nil {
		t.Fatal("expected error")
	}
	if store.Snapshot() != echo.DefaultParams() {
		t.Fatal("store changed after failed evaluation")
	}
}

func BenchmarkEvaluate(b *testing.B) {
	s, err := Parse(`function automate(t, p) return { feedback = 40 + 20 * math.sin(t) } end`, "bench")
	if err != nil {
		b.Fatal(err)
	}
	defer s.Close()
	p := echo.DefaultParams()

	t := 0.0
	for b.Loop() {
		res, err := s.Evaluate(t, p)
		if err != nil || math.IsNaN(res.Params.FeedbackPercent) {
			b.Fatal(err)
		}
		t += 0.01
	}
}
