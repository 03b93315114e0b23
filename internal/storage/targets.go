package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/claude/liftlog/internal/models"
)

const targetColumns = `program_id, exercise_id, rep_min, rep_max, target_sets, increment_kg, updated_at`

// GetTarget returns the target row for one (program, exercise) pair, or nil
// when none exists.
func (db *DB) GetTarget(ctx context.Context, programID, exerciseID string) (*models.ExerciseTarget, error) {
	var t models.ExerciseTarget
	err := db.sql.QueryRowContext(ctx,
		`SELECT `+targetColumns+` FROM exercise_targets WHERE program_id = ? AND exercise_id = ?`,
		programID, exerciseID).
		Scan(&t.ProgramID, &t.ExerciseID, &t.RepMin, &t.RepMax, &t.TargetSets, &t.IncrementKg, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting target: %w", err)
	}
	return &t, nil
}

// ListTargets returns all targets of one program.
func (db *DB) ListTargets(ctx context.Context, programID string) ([]models.ExerciseTarget, error) {
	rows, err := db.sql.QueryContext(ctx,
		`SELECT `+targetColumns+` FROM exercise_targets WHERE program_id = ? ORDER BY exercise_id ASC`,
		programID)
	if err != nil {
		return nil, fmt.Errorf("querying targets: %w", err)
	}
	defer rows.Close()

	var result []models.ExerciseTarget
	for rows.Next() {
		var t models.ExerciseTarget
		if err := rows.Scan(&t.ProgramID, &t.ExerciseID, &t.RepMin, &t.RepMax,
			&t.TargetSets, &t.IncrementKg, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning target: %w", err)
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// InsertTargetIfMissing inserts a target row unless one already exists for the
// (program, exercise) key. Existing user-customized rows are never overwritten.
func (db *DB) InsertTargetIfMissing(ctx context.Context, t models.ExerciseTarget) error {
	_, err := db.sql.ExecContext(ctx,
		`INSERT OR IGNORE INTO exercise_targets (`+targetColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ProgramID, t.ExerciseID, t.RepMin, t.RepMax, t.TargetSets, t.IncrementKg, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting target: %w", err)
	}
	return nil
}

// UpsertTarget overwrites (or creates) the target row for one
// (program, exercise) key.
func (db *DB) UpsertTarget(ctx context.Context, t models.ExerciseTarget) error {
	_, err := db.sql.ExecContext(ctx,
		`INSERT INTO exercise_targets (`+targetColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (program_id, exercise_id) DO UPDATE SET
			rep_min = excluded.rep_min,
			rep_max = excluded.rep_max,
			target_sets = excluded.target_sets,
			increment_kg = excluded.increment_kg,
			updated_at = excluded.updated_at`,
		t.ProgramID, t.ExerciseID, t.RepMin, t.RepMax, t.TargetSets, t.IncrementKg, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting target: %w", err)
	}
	return nil
}

// DeleteTargetsForProgram removes every target of a program.
func (db *DB) DeleteTargetsForProgram(ctx context.Context, programID string) error {
	if _, err := db.sql.ExecContext(ctx,
		`DELETE FROM exercise_targets WHERE program_id = ?`, programID); err != nil {
		return fmt.Errorf("deleting targets: %w", err)
	}
	return nil
}
