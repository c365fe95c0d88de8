package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Ranveer112/valens/internal/models"
)

// ListExercises retrieves all exercises ordered by name.
func (db *DB) ListExercises(ctx context.Context) ([]models.Exercise, error) {
	rows, err := db.query(ctx, `SELECT id, name FROM exercise ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	var result []models.Exercise
	for rows.Next() {
		var e models.Exercise
		if err := rows.Scan(&e.ID, &e.Name); err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// GetExercise retrieves a single exercise by ID.
func (db *DB) GetExercise(ctx context.Context, id uint32) (*models.Exercise, error) {
	var e models.Exercise
	err := db.queryRow(ctx, `SELECT id, name FROM exercise WHERE id = ?`, id).
		Scan(&e.ID, &e.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying exercise: %w", err)
	}
	return &e, nil
}

// CreateExercise inserts a new exercise and returns it with its assigned ID.
func (db *DB) CreateExercise(ctx context.Context, name string) (*models.Exercise, error) {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	id, err := db.nextID(ctx, tx, "exercise")
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx,
		db.rebind(`INSERT INTO exercise (id, name) VALUES (?, ?)`), id, name); err != nil {
		return nil, fmt.Errorf("inserting exercise: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return &models.Exercise{ID: id, Name: name}, nil
}

// UpdateExercise renames an exercise.
func (db *DB) UpdateExercise(ctx context.Context, e models.Exercise) error {
	res, err := db.exec(ctx, `UPDATE exercise SET name = ? WHERE id = ?`, e.Name, e.ID)
	if err != nil {
		return fmt.Errorf("updating exercise: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating exercise: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteExercise removes an exercise.
func (db *DB) DeleteExercise(ctx context.Context, id uint32) error {
	res, err := db.exec(ctx, `DELETE FROM exercise WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting exercise: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting exercise: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ExerciseNames returns a map of exercise IDs to names for form building.
func (db *DB) ExerciseNames(ctx context.Context) (map[uint32]string, error) {
	rows, err := db.query(ctx, `SELECT id, name FROM exercise`)
	if err != nil {
		return nil, fmt.Errorf("querying exercise names: %w", err)
	}
	defer rows.Close()

	names := make(map[uint32]string)
	for rows.Next() {
		var id uint32
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scanning exercise name: %w", err)
		}
		names[id] = name
	}
	return names, rows.Err()
}
