// Package instruments implements the three timing instruments of a guided
// training session: a stopwatch, a countdown timer with audible cues, and a
// metronome. All beep scheduling is done against the audio backend's own
// monotonic clock so that coarse polling ticks cannot introduce audible
// jitter.
package instruments

import (
	"log/slog"
	"time"
)

// Player is the audio backend contract. Now returns the backend's own
// monotonic clock in seconds, distinct from wall-clock time. A nil Player
// degrades all instruments to silent operation.
type Player interface {
	Now() float64
	ScheduleTone(frequencyHz float64, startTime float64, duration float64, volumePercent int) error
}

// ClockPlayer is a silent Player backed by the process monotonic clock.
// Scheduled tones are logged at debug level instead of being rendered.
type ClockPlayer struct {
	epoch time.Time
	log   *slog.Logger
}

// NewClockPlayer returns a ClockPlayer whose clock starts at zero.
func NewClockPlayer(log *slog.Logger) *ClockPlayer {
	return &ClockPlayer{epoch: time.Now(), log: log}
}

func (p *ClockPlayer) Now() float64 {
	return time.Since(p.epoch).Seconds()
}

func (p *ClockPlayer) ScheduleTone(frequencyHz float64, startTime float64, duration float64, volumePercent int) error {
	p.log.Debug("tone scheduled",
		"frequency_hz", frequencyHz,
		"start", startTime,
		"duration", duration,
		"volume", volumePercent,
	)
	return nil
}
