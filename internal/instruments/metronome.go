package instruments

import "log/slog"

// Metronome schedules evenly spaced beats ahead of the audio clock. Polling
// at ~100ms cannot place audio precisely, so every update pre-schedules all
// beats falling inside a half-second lookahead window instead of scheduling
// one beat per tick. Every Nth beat is accented.
type Metronome struct {
	Interval     int // seconds between beats, 1-60
	StressedBeat int // accent every Nth beat, 1-12

	active       bool
	beatNumber   int
	nextBeatTime float64
	volume       int
	log          *slog.Logger
}

// NewMetronome returns a paused metronome with a one-second interval.
func NewMetronome(volume int, log *slog.Logger) *Metronome {
	return &Metronome{Interval: 1, StressedBeat: 1, volume: volume, log: log}
}

// IsActive reports whether the metronome is running.
func (m *Metronome) IsActive() bool {
	return m.active
}

// Start begins beating with a half-second head start to absorb scheduling
// latency.
func (m *Metronome) Start(player Player) {
	m.active = true
	if player != nil {
		m.beatNumber = 0
		m.nextBeatTime = player.Now() + 0.5
	}
}

// Pause stops scheduling new beats. Beats already handed to the audio
// backend still play; scheduled audio is fire-and-forget.
func (m *Metronome) Pause() {
	m.active = false
}

// StartPause toggles between running and paused.
func (m *Metronome) StartPause(player Player) {
	if m.active {
		m.Pause()
	} else {
		m.Start(player)
	}
}

// Update schedules every beat that falls inside the lookahead window.
func (m *Metronome) Update(player Player) {
	if !m.active || player == nil {
		return
	}
	for m.nextBeatTime < player.Now()+0.5 {
		frequency := 500.0
		if m.beatNumber%m.StressedBeat == 0 {
			frequency = 1000.0
		}
		if err := player.ScheduleTone(frequency, m.nextBeatTime, 0.05, m.volume); err != nil {
			m.log.Error("failed to schedule metronome beat", "error", err)
		}
		m.nextBeatTime += float64(m.Interval)
		m.beatNumber++
	}
}
