package guide

import (
	"log/slog"
	"sync"
	"time"

	"github.com/Ranveer112/valens/internal/instruments"
)

// Panel is the stopwatch/metronome/timer dialog. A single 100ms tick task
// exists exactly while any one of the three instruments is active; it is
// re-derived on every control operation rather than left running.
type Panel struct {
	player instruments.Player
	log    *slog.Logger

	mu        sync.Mutex
	now       func() time.Time
	stopwatch instruments.Stopwatch
	metronome *instruments.Metronome
	timer     *instruments.Timer
	tick      *tickTask
}

// NewPanel creates a panel with all instruments idle. The timer starts with
// a conventional 60-second duration.
func NewPanel(player instruments.Player, volume int, log *slog.Logger) *Panel {
	p := &Panel{
		player:    player,
		log:       log,
		now:       time.Now,
		metronome: instruments.NewMetronome(volume, log),
		timer:     instruments.NewTimer(volume, log),
	}
	p.timer.Set(60, p.now())
	return p
}

// PanelStatus is a snapshot of all three instruments.
type PanelStatus struct {
	StopwatchMillis int64  `json:"stopwatch_ms"`
	StopwatchActive bool   `json:"stopwatch_active"`
	MetronomeActive bool   `json:"metronome_active"`
	Interval        int    `json:"metronome_interval"`
	StressedBeat    int    `json:"metronome_stressed_beat"`
	TimerInput      string `json:"timer_input"`
	TimerActive     bool   `json:"timer_active"`
}

// Status returns the current instrument snapshot.
func (p *Panel) Status() PanelStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PanelStatus{
		StopwatchMillis: p.stopwatch.Elapsed().Milliseconds(),
		StopwatchActive: p.stopwatch.IsActive(),
		MetronomeActive: p.metronome.IsActive(),
		Interval:        p.metronome.Interval,
		StressedBeat:    p.metronome.StressedBeat,
		TimerInput:      p.timer.Input(),
		TimerActive:     p.timer.IsActive(),
	}
}

// StartPauseStopwatch toggles the stopwatch between running and paused.
func (p *Panel) StartPauseStopwatch() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopwatch.StartPause(p.now())
	p.updateTicks()
}

// ResetStopwatch zeroes the stopwatch.
func (p *Panel) ResetStopwatch() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopwatch.Reset(p.now())
}

// ToggleStopwatch is the single-control stopwatch action.
func (p *Panel) ToggleStopwatch() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopwatch.Toggle(p.now())
	p.updateTicks()
}

// ConfigureMetronome sets interval (1-60 s) and stress (accent every Nth
// beat, 1-12), clamping out-of-range values.
func (p *Panel) ConfigureMetronome(interval, stressedBeat int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.metronome.Interval = clamp(interval, 1, 60)
	p.metronome.StressedBeat = clamp(stressedBeat, 1, 12)
}

// StartPauseMetronome toggles the metronome.
func (p *Panel) StartPauseMetronome() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.metronome.StartPause(p.player)
	p.updateTicks()
}

// SetTimer records raw duration text for the countdown timer.
func (p *Panel) SetTimer(raw string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.timer.SetInput(raw)
}

// StartPauseTimer toggles the countdown timer.
func (p *Panel) StartPauseTimer() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.timer.StartPause(p.now())
	p.updateTicks()
}

// ResetTimer re-applies the last confirmed duration.
func (p *Panel) ResetTimer() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.timer.Reset(p.now())
}

// Update advances all three instruments. Driven by the tick task.
func (p *Panel) Update() {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.now()
	p.stopwatch.Update(now)
	p.metronome.Update(p.player)
	p.timer.Update(now, p.player)
}

// Teardown cancels the tick task and pauses the metronome.
func (p *Panel) Teardown() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tick.cancel()
	p.tick = nil
	p.metronome.Pause()
}

func (p *Panel) updateTicks() {
	active := p.stopwatch.IsActive() || p.metronome.IsActive() || p.timer.IsActive()
	switch {
	case active && p.tick == nil:
		p.tick = startTickTask(100*time.Millisecond, p.Update)
	case !active && p.tick != nil:
		p.tick.cancel()
		p.tick = nil
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
