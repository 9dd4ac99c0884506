package playback

import (
	"fmt"

	"github.com/cwbudde/algo-echo/dsp/effects/echo"
	"github.com/cwbudde/algo-echo/internal/paramstore"
)

const (
	feedbackStep = 5.0
	mixStep      = 5.0
	timeStep     = 25.0
)

// KeyHelp describes the key bindings handled by HandleKey.
const KeyHelp = "p ping-pong  s sync  d division  +/- feedback  [/] mix  ,/. time  q quit"

// HandleKey applies one key press to store and reports whether the player
// should stop.
func HandleKey(store *paramstore.Store, key byte) (quit bool) {
	switch key {
	case 'q', 'Q', 0x03, 0x1b: // Ctrl-C and Esc arrive as bytes in raw mode
		return true
	case 'p':
		store.TogglePingPong()
	case 's':
		store.ToggleSync()
	case 'd':
		d := store.Snapshot().Division + 1
		if !d.Valid() {
			d = echo.DivisionWhole
		}
		store.SetDivision(d)
	case '+', '=':
		store.Nudge(echo.ParamFeedback, feedbackStep)
	case '-', '_':
		store.Nudge(echo.ParamFeedback, -feedbackStep)
	case ']':
		store.Nudge(echo.ParamMix, mixStep)
	case '[':
		store.Nudge(echo.ParamMix, -mixStep)
	case '.':
		store.Nudge(echo.ParamTimeMs, timeStep)
	case ',':
		store.Nudge(echo.ParamTimeMs, -timeStep)
	}
	return false
}

// Status renders the current settings on one line.
func Status(store *paramstore.Store) string {
	p := store.Snapshot()
	timing := fmt.Sprintf("%4.0f ms", p.DelayMs)
	if p.Sync {
		timing = "sync " + p.Division.String()
		if tr := store.Transport(); tr.Valid {
			timing += fmt.Sprintf(" @ %.0f BPM", tr.BPM)
		}
	}
	return fmt.Sprintf("time %s  feedback %2.0f%%  mix %3.0f%%  ping-pong %s",
		timing, p.FeedbackPercent, p.MixPercent, onOff(p.PingPong))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
