package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Ranveer112/valens/internal/forms"
	"github.com/Ranveer112/valens/internal/models"
)

const elementColumns = `session_id, position, kind, exercise_id, reps, time, weight, rpe,
	 target_reps, target_time, target_weight, target_rpe, automatic`

// ListTrainingSessions retrieves all training sessions with their elements,
// most recent first.
func (db *DB) ListTrainingSessions(ctx context.Context) ([]models.TrainingSession, error) {
	rows, err := db.query(ctx,
		`SELECT id, routine_id, date, notes FROM training_session ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying training sessions: %w", err)
	}
	defer rows.Close()

	var result []models.TrainingSession
	for rows.Next() {
		var t models.TrainingSession
		if err := rows.Scan(&t.ID, &t.RoutineID, &t.Date, &t.Notes); err != nil {
			return nil, fmt.Errorf("scanning training session: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	elements, err := db.sessionElements(ctx, 0)
	if err != nil {
		return nil, err
	}
	for i := range result {
		result[i].Elements = elements[result[i].ID]
	}
	return result, nil
}

// GetTrainingSession retrieves a single training session with its elements.
func (db *DB) GetTrainingSession(ctx context.Context, id uint32) (*models.TrainingSession, error) {
	var t models.TrainingSession
	err := db.queryRow(ctx,
		`SELECT id, routine_id, date, notes FROM training_session WHERE id = ?`, id).
		Scan(&t.ID, &t.RoutineID, &t.Date, &t.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying training session: %w", err)
	}

	elements, err := db.sessionElements(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Elements = elements[id]
	return &t, nil
}

// CreateTrainingSession inserts a session and its elements in one transaction
// and returns the session with its assigned ID.
func (db *DB) CreateTrainingSession(ctx context.Context, t models.TrainingSession) (*models.TrainingSession, error) {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	id, err := db.nextID(ctx, tx, "training_session")
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx,
		db.rebind(`INSERT INTO training_session (id, routine_id, date, notes) VALUES (?, ?, ?, ?)`),
		id, t.RoutineID, t.Date, t.Notes); err != nil {
		return nil, fmt.Errorf("inserting training session: %w", err)
	}
	if err := db.insertElements(ctx, tx, id, t.Elements); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	t.ID = id
	return &t, nil
}

// UpdateTrainingSession replaces a session's date, routine, notes, and
// element list.
func (db *DB) UpdateTrainingSession(ctx context.Context, t models.TrainingSession) error {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		db.rebind(`UPDATE training_session SET routine_id = ?, date = ?, notes = ? WHERE id = ?`),
		t.RoutineID, t.Date, t.Notes, t.ID)
	if err != nil {
		return fmt.Errorf("updating training session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating training session: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	if _, err := tx.ExecContext(ctx,
		db.rebind(`DELETE FROM training_session_element WHERE session_id = ?`), t.ID); err != nil {
		return fmt.Errorf("deleting session elements: %w", err)
	}
	if err := db.insertElements(ctx, tx, t.ID, t.Elements); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// DeleteTrainingSession removes a session and its elements.
func (db *DB) DeleteTrainingSession(ctx context.Context, id uint32) error {
	res, err := db.exec(ctx, `DELETE FROM training_session WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting training session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting training session: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ModifySession saves edited notes and elements for a session, leaving the
// date and routine untouched. A nil notes pointer keeps the stored notes.
func (db *DB) ModifySession(ctx context.Context, sessionID uint32, notes *string, elements []models.SessionElement) error {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if notes != nil {
		res, err := tx.ExecContext(ctx,
			db.rebind(`UPDATE training_session SET notes = ? WHERE id = ?`), *notes, sessionID)
		if err != nil {
			return fmt.Errorf("updating session notes: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("updating session notes: %w", err)
		}
		if n == 0 {
			return ErrNotFound
		}
	}
	if elements != nil {
		if _, err := tx.ExecContext(ctx,
			db.rebind(`DELETE FROM training_session_element WHERE session_id = ?`), sessionID); err != nil {
			return fmt.Errorf("deleting session elements: %w", err)
		}
		if err := db.insertElements(ctx, tx, sessionID, elements); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// SessionForm rebuilds the editable form for a session from stored data.
func (db *DB) SessionForm(ctx context.Context, sessionID uint32) (forms.Form, error) {
	session, err := db.GetTrainingSession(ctx, sessionID)
	if err != nil {
		return forms.Form{}, err
	}
	others, err := db.ListTrainingSessions(ctx)
	if err != nil {
		return forms.Form{}, err
	}
	names, err := db.ExerciseNames(ctx)
	if err != nil {
		return forms.Form{}, err
	}
	return forms.Build(session, others, names), nil
}

func (db *DB) insertElements(ctx context.Context, tx *sql.Tx, sessionID uint32, elements []models.SessionElement) error {
	query := db.rebind(`INSERT INTO training_session_element
		 (session_id, position, kind, exercise_id, reps, time, weight, rpe,
		  target_reps, target_time, target_weight, target_rpe, automatic)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	for i, e := range elements {
		var exerciseID any
		if e.Kind == models.ElementSet {
			exerciseID = e.ExerciseID
		}
		if _, err := tx.ExecContext(ctx, query,
			sessionID, i, string(e.Kind), exerciseID,
			e.Reps, e.Time, e.Weight, e.RPE,
			e.TargetReps, e.TargetTime, e.TargetWeight, e.TargetRPE,
			e.Automatic); err != nil {
			return fmt.Errorf("inserting session element %d: %w", i, err)
		}
	}
	return nil
}

// sessionElements loads elements ordered by position, grouped by session.
// A zero sessionID loads elements for all sessions.
func (db *DB) sessionElements(ctx context.Context, sessionID uint32) (map[uint32][]models.SessionElement, error) {
	query := `SELECT ` + elementColumns + `
		 FROM training_session_element ORDER BY session_id, position`
	args := []any{}
	if sessionID != 0 {
		query = `SELECT ` + elementColumns + `
		 FROM training_session_element WHERE session_id = ? ORDER BY position`
		args = append(args, sessionID)
	}
	rows, err := db.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying session elements: %w", err)
	}
	defer rows.Close()

	result := make(map[uint32][]models.SessionElement)
	for rows.Next() {
		var sid uint32
		var position int
		var kind string
		var exerciseID sql.NullInt64
		var e models.SessionElement
		if err := rows.Scan(&sid, &position, &kind, &exerciseID,
			&e.Reps, &e.Time, &e.Weight, &e.RPE,
			&e.TargetReps, &e.TargetTime, &e.TargetWeight, &e.TargetRPE,
			&e.Automatic); err != nil {
			return nil, fmt.Errorf("scanning session element: %w", err)
		}
		e.Kind = models.ElementKind(kind)
		if exerciseID.Valid {
			e.ExerciseID = uint32(exerciseID.Int64)
		}
		result[sid] = append(result[sid], e)
	}
	return result, rows.Err()
}
