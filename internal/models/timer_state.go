package models

import "time"

// TimerStateKind discriminates the persisted countdown timer variants.
type TimerStateKind string

const (
	TimerUnset  TimerStateKind = "unset"
	TimerActive TimerStateKind = "active"
	TimerPaused TimerStateKind = "paused"
)

// TimerState is the persisted state of the guide's countdown timer.
// Active keeps the absolute deadline so a resumed session reflects real
// elapsed time; Paused keeps only the remaining seconds.
type TimerState struct {
	Kind             TimerStateKind `json:"kind"`
	TargetTime       *time.Time     `json:"target_time,omitempty"`
	RemainingSeconds int64          `json:"remaining_seconds,omitempty"`
}

// UnsetTimer returns the Unset variant.
func UnsetTimer() TimerState {
	return TimerState{Kind: TimerUnset}
}

// ActiveTimer returns the Active variant with the given deadline.
func ActiveTimer(targetTime time.Time) TimerState {
	return TimerState{Kind: TimerActive, TargetTime: &targetTime}
}

// PausedTimer returns the Paused variant with the given remaining seconds.
func PausedTimer(remaining int64) TimerState {
	return TimerState{Kind: TimerPaused, RemainingSeconds: remaining}
}

// OngoingSession is the single persisted resumability record for the one
// session currently being guided.
type OngoingSession struct {
	SessionID    uint32     `json:"session_id"`
	SectionIndex int        `json:"section_index"`
	SectionStart time.Time  `json:"section_start"`
	Timer        TimerState `json:"timer"`
}
