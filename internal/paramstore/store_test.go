package paramstore

import (
	"math"
	"sync"
	"testing"

	"github.com/cwbudde/algo-echo/dsp/effects/echo"
)

func TestNewRoundTrip(t *testing.T) {
	p := echo.DefaultParams()
	p.PingPong = true
	p.Division = echo.DivisionEighthDotted
	p.DelayMs = 123.5

	s := New(p)
	if got := s.Snapshot(); got != p {
		t.Fatalf("Snapshot() = %+v, want %+v", got, p)
	}
	if tr := s.Transport(); tr.Valid {
		t.Fatalf("tempo should start unreported: %+v", tr)
	}
}

func TestSettersClamp(t *testing.T) {
	s := New(echo.DefaultParams())
	s.SetDelayMs(5000)
	s.SetFeedbackPercent(120)
	s.SetMixPercent(-1)
	s.SetLowCutHz(1)
	s.SetHighCutHz(1e6)
	s.SetDriveDB(100)
	s.SetOutputDB(math.NaN())
	s.SetDivision(echo.Division(-4))

	got := s.Snapshot()
	if got.DelayMs != echo.MaxDelayMs || got.FeedbackPercent != echo.MaxFeedbackPercent ||
		got.MixPercent != echo.MinMixPercent || got.LowCutHz != echo.MinLowCutHz ||
		got.HighCutHz != echo.MaxHighCutHz || got.DriveDB != echo.MaxDriveDB ||
		got.OutputDB != echo.MinOutputDB || got.Division != echo.DivisionQuarter {
		t.Fatalf("unclamped snapshot: %+v", got)
	}
}

func TestSetByID(t *testing.T) {
	s := New(echo.DefaultParams())
	for _, spec := range echo.ParamSpecs() {
		if !s.Set(spec.ID, spec.Max) {
			t.Fatalf("Set(%q) rejected", spec.ID)
		}
		if v, _ := s.Snapshot().Value(spec.ID); v != spec.Max {
			t.Fatalf("%s = %v, want %v", spec.ID, v, spec.Max)
		}
	}
	if s.Set("tape", 1) {
		t.Fatal("unknown id accepted")
	}
}

func TestNudge(t *testing.T) {
	s := New(echo.DefaultParams())

	v, ok := s.Nudge(echo.ParamFeedback, 10)
	if !ok || v != 45 {
		t.Fatalf("Nudge = %v, %v; want 45", v, ok)
	}
	v, _ = s.Nudge(echo.ParamFeedback, 100)
	if v != echo.MaxFeedbackPercent {
		t.Fatalf("Nudge past max = %v", v)
	}
	if _, ok := s.Nudge("tape", 1); ok {
		t.Fatal("unknown id accepted")
	}
}

func TestToggles(t *testing.T) {
	s := New(echo.DefaultParams())
	if !s.TogglePingPong() || !s.Snapshot().PingPong {
		t.Fatal("ping-pong should be on")
	}
	if s.TogglePingPong() || s.Snapshot().PingPong {
		t.Fatal("ping-pong should be off")
	}
	if !s.ToggleSync() || !s.Snapshot().Sync {
		t.Fatal("sync should be on")
	}
}

func TestTempo(t *testing.T) {
	s := New(echo.DefaultParams())

	s.SetTempo(128)
	if tr := s.Transport(); !tr.Valid || tr.BPM != 128 {
		t.Fatalf("Transport() = %+v", tr)
	}

	s.SetTempo(0)
	if tr := s.Transport(); tr.Valid {
		t.Fatalf("zero tempo should clear: %+v", tr)
	}

	s.SetTempo(90)
	s.ClearTempo()
	if tr := s.Transport(); tr.Valid {
		t.Fatalf("ClearTempo did not clear: %+v", tr)
	}

	s.SetTempo(math.Inf(1))
	if tr := s.Transport(); tr.Valid {
		t.Fatalf("infinite tempo accepted: %+v", tr)
	}
}

func TestConcurrentWritersAndReader(t *testing.T) {
	s := New(echo.DefaultParams())

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 2000; i++ {
			s.SetFeedbackPercent(float64(i % 100))
			s.SetTempo(float64(60 + i%120))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 2000; i++ {
			s.TogglePingPong()
			s.SetMixPercent(float64(i % 101))
		}
	}()

	for i := 0; i < 2000; i++ {
		p := s.Snapshot()
		if p != p.Clamped() {
			t.Errorf("snapshot out of range: %+v", p)
			break
		}
	}
	wg.Wait()
}

func BenchmarkSnapshot(b *testing.B) {
	s := New(echo.DefaultParams())
	for i := 0; i < b.N; i++ {
		_ = s.Snapshot()
	}
}
