package instruments

import (
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/Ranveer112/valens/internal/models"
)

func formatSeconds(v int64) string {
	return strconv.FormatInt(v, 10)
}

func parseSeconds(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

// Timer counts down to an absolute deadline and announces the last four
// integer seconds with scheduled tones. The announce-on-value-change rule
// guarantees exactly one tone per threshold crossing regardless of how often
// Update is polled, as long as no whole second is skipped.
type Timer struct {
	input     string
	parsed    *int64
	resetTime int64
	deadline  *time.Time
	beepTime  float64
	volume    int
	log       *slog.Logger
}

// NewTimer returns an unset timer beeping at the given volume percent.
func NewTimer(volume int, log *slog.Logger) *Timer {
	return &Timer{volume: volume, log: log}
}

// IsSet reports whether a duration has been confirmed.
func (t *Timer) IsSet() bool {
	return t.resetTime > 0
}

// IsActive reports whether the timer is counting down.
func (t *Timer) IsActive() bool {
	return t.deadline != nil
}

// Input returns the editable duration text.
func (t *Timer) Input() string {
	return t.input
}

// Remaining returns the last displayed remaining seconds, or false when no
// value is displayed.
func (t *Timer) Remaining() (int64, bool) {
	if t.parsed == nil {
		return 0, false
	}
	return *t.parsed, true
}

// Set stores a new duration. A live edit while the timer is active
// reschedules the deadline without restarting the countdown cadence.
func (t *Timer) Set(seconds int64, now time.Time) {
	t.input = formatSeconds(seconds)
	t.parsed = &seconds
	t.resetTime = seconds
	if t.deadline != nil {
		deadline := now.Add(time.Duration(seconds) * time.Second)
		t.deadline = &deadline
	}
}

// SetInput records raw duration text from the dialog, keeping invalid text
// visible without a parsed value.
func (t *Timer) SetInput(raw string) {
	t.input = raw
	if seconds, err := parseSeconds(raw); err == nil {
		t.parsed = &seconds
		t.resetTime = seconds
	} else {
		t.parsed = nil
	}
}

// Start arms the deadline from the last displayed value.
func (t *Timer) Start(now time.Time) {
	if t.parsed == nil {
		return
	}
	deadline := now.Add(time.Duration(*t.parsed) * time.Second)
	t.deadline = &deadline
}

// Pause clears the deadline; the last displayed remaining time stays as the
// editable value.
func (t *Timer) Pause() {
	t.deadline = nil
}

// StartPause toggles between counting and paused.
func (t *Timer) StartPause(now time.Time) {
	if t.deadline != nil {
		t.Pause()
	} else {
		t.Start(now)
	}
}

// Reset re-applies the last confirmed duration.
func (t *Timer) Reset(now time.Time) {
	t.Set(t.resetTime, now)
}

// ClearDuration drops the confirmed duration so IsSet reports false, without
// touching the deadline or displayed value.
func (t *Timer) ClearDuration() {
	t.resetTime = 0
}

// Unset clears the duration, deadline, and beep bookkeeping. Used when a
// section has no timed component.
func (t *Timer) Unset() {
	t.input = ""
	t.parsed = nil
	t.resetTime = 0
	t.deadline = nil
	t.beepTime = 0
}

// Update recomputes the displayed remaining time and schedules the countdown
// tones. The tone for three seconds remaining anchors the cadence on the
// audio clock; each following tone is exactly one audio-clock second later,
// so the cadence stays steady even when update ticks are irregular.
func (t *Timer) Update(now time.Time, player Player) {
	if t.deadline == nil {
		return
	}
	remaining := int64(math.Round(float64(t.deadline.Sub(now).Milliseconds()) / 1000))
	if remaining >= 0 && remaining <= 3 && (t.parsed == nil || *t.parsed != remaining) && player != nil {
		if remaining == 3 {
			t.beepTime = player.Now() + 0.01
		} else {
			t.beepTime += 1.0
		}
		duration := 0.15
		if remaining == 0 {
			duration = 0.5
		}
		if err := player.ScheduleTone(2000, t.beepTime, duration, t.volume); err != nil {
			t.log.Error("failed to schedule countdown tone", "error", err)
		}
	}
	t.input = formatSeconds(remaining)
	t.parsed = &remaining
}

// State exports the timer for the ongoing-session record.
func (t *Timer) State() models.TimerState {
	switch {
	case t.deadline != nil:
		return models.ActiveTimer(*t.deadline)
	case t.IsSet():
		remaining := int64(0)
		if t.parsed != nil {
			remaining = *t.parsed
		}
		return models.PausedTimer(remaining)
	default:
		return models.UnsetTimer()
	}
}

// Restore rebuilds the timer from a persisted state. An active state keeps
// its absolute deadline, so the remaining time reflects real elapsed time
// rather than the original duration.
func (t *Timer) Restore(state models.TimerState, now time.Time) {
	switch state.Kind {
	case models.TimerActive:
		target := now
		if state.TargetTime != nil {
			target = *state.TargetTime
		}
		t.Set(int64(target.Sub(now).Round(time.Second)/time.Second), now)
		t.Start(now)
	case models.TimerPaused:
		t.Set(state.RemainingSeconds, now)
		t.Pause()
	default:
		t.Unset()
	}
}
