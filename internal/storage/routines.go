package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Ranveer112/valens/internal/models"
)

// ListRoutines retrieves all routines ordered by name.
func (db *DB) ListRoutines(ctx context.Context) ([]models.Routine, error) {
	rows, err := db.query(ctx, `SELECT id, name, notes FROM routine ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying routines: %w", err)
	}
	defer rows.Close()

	var result []models.Routine
	for rows.Next() {
		var r models.Routine
		if err := rows.Scan(&r.ID, &r.Name, &r.Notes); err != nil {
			return nil, fmt.Errorf("scanning routine: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// GetRoutine retrieves a single routine by ID.
func (db *DB) GetRoutine(ctx context.Context, id uint32) (*models.Routine, error) {
	var r models.Routine
	err := db.queryRow(ctx, `SELECT id, name, notes FROM routine WHERE id = ?`, id).
		Scan(&r.ID, &r.Name, &r.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying routine: %w", err)
	}
	return &r, nil
}

// CreateRoutine inserts a new routine and returns it with its assigned ID.
func (db *DB) CreateRoutine(ctx context.Context, name, notes string) (*models.Routine, error) {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	id, err := db.nextID(ctx, tx, "routine")
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx,
		db.rebind(`INSERT INTO routine (id, name, notes) VALUES (?, ?, ?)`), id, name, notes); err != nil {
		return nil, fmt.Errorf("inserting routine: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return &models.Routine{ID: id, Name: name, Notes: notes}, nil
}

// UpdateRoutine updates a routine's name and notes.
func (db *DB) UpdateRoutine(ctx context.Context, r models.Routine) error {
	res, err := db.exec(ctx, `UPDATE routine SET name = ?, notes = ? WHERE id = ?`,
		r.Name, r.Notes, r.ID)
	if err != nil {
		return fmt.Errorf("updating routine: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating routine: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteRoutine removes a routine. The delete fails while training sessions
// still reference it.
func (db *DB) DeleteRoutine(ctx context.Context, id uint32) error {
	res, err := db.exec(ctx, `DELETE FROM routine WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting routine: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting routine: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
