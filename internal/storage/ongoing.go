package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Ranveer112/valens/internal/models"
)

// StartSession records that a guide began for the given session. Any
// previous record is overwritten; the newest guide wins the singleton.
func (db *DB) StartSession(ctx context.Context, sessionID uint32, rec models.OngoingSession) error {
	rec.SessionID = sessionID
	return db.upsertOngoing(ctx, rec)
}

// UpdateSession replaces the ongoing-session record with the current state.
func (db *DB) UpdateSession(ctx context.Context, rec models.OngoingSession) error {
	return db.upsertOngoing(ctx, rec)
}

// EndSession clears the ongoing-session record. Clearing an already empty
// record is not an error.
func (db *DB) EndSession(ctx context.Context) error {
	if _, err := db.exec(ctx, `DELETE FROM ongoing_session WHERE id = 1`); err != nil {
		return fmt.Errorf("deleting ongoing session: %w", err)
	}
	return nil
}

// OngoingSession returns the persisted record, or nil when none exists.
func (db *DB) OngoingSession(ctx context.Context) (*models.OngoingSession, error) {
	var (
		rec            models.OngoingSession
		sectionStart   string
		timerKind      string
		timerTarget    sql.NullString
		timerRemaining sql.NullInt64
	)
	err := db.queryRow(ctx,
		`SELECT session_id, section_index, section_start, timer_kind, timer_target, timer_remaining
		 FROM ongoing_session WHERE id = 1`).
		Scan(&rec.SessionID, &rec.SectionIndex, &sectionStart, &timerKind, &timerTarget, &timerRemaining)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying ongoing session: %w", err)
	}

	rec.SectionStart, err = time.Parse(time.RFC3339, sectionStart)
	if err != nil {
		return nil, fmt.Errorf("parsing section start: %w", err)
	}
	switch models.TimerStateKind(timerKind) {
	case models.TimerActive:
		if !timerTarget.Valid {
			return nil, fmt.Errorf("parsing ongoing session: active timer without target")
		}
		target, err := time.Parse(time.RFC3339, timerTarget.String)
		if err != nil {
			return nil, fmt.Errorf("parsing timer target: %w", err)
		}
		rec.Timer = models.ActiveTimer(target)
	case models.TimerPaused:
		rec.Timer = models.PausedTimer(timerRemaining.Int64)
	default:
		rec.Timer = models.UnsetTimer()
	}
	return &rec, nil
}

func (db *DB) upsertOngoing(ctx context.Context, rec models.OngoingSession) error {
	var timerTarget any
	if rec.Timer.TargetTime != nil {
		timerTarget = rec.Timer.TargetTime.Format(time.RFC3339)
	}
	var timerRemaining any
	if rec.Timer.Kind == models.TimerPaused {
		timerRemaining = rec.Timer.RemainingSeconds
	}
	_, err := db.exec(ctx,
		`INSERT INTO ongoing_session (id, session_id, section_index, section_start, timer_kind, timer_target, timer_remaining)
		 VALUES (1, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   session_id = excluded.session_id,
		   section_index = excluded.section_index,
		   section_start = excluded.section_start,
		   timer_kind = excluded.timer_kind,
		   timer_target = excluded.timer_target,
		   timer_remaining = excluded.timer_remaining`,
		rec.SessionID, rec.SectionIndex, rec.SectionStart.Format(time.RFC3339),
		string(rec.Timer.Kind), timerTarget, timerRemaining)
	if err != nil {
		return fmt.Errorf("upserting ongoing session: %w", err)
	}
	return nil
}
