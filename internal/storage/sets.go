package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/claude/liftlog/internal/models"
)

// InsertSet stores one logged set.
func (db *DB) InsertSet(ctx context.Context, s models.Set) error {
	_, err := db.sql.ExecContext(ctx,
		`INSERT INTO sets (id, workout_id, exercise_id, exercise_name, set_index,
			weight_kg, reps, rpe, is_warmup, external_load_kg,
			bodyweight_kg_used, bodyweight_factor, est_total_load_kg, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.WorkoutID, s.ExerciseID, s.ExerciseName, s.SetIndex,
		s.WeightKg, s.Reps, s.RPE, s.IsWarmup, s.ExternalLoadKg,
		s.BodyweightKgUsed, s.BodyweightFactor, s.EstTotalLoadKg, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting set: %w", err)
	}
	return nil
}

// UpdateSet overwrites the user-editable fields of a set (weight, reps, rpe,
// warmup flag) plus the load columns derived from them. The bodyweight
// snapshot columns are never touched: the snapshot is an immutable fact of
// the original logging.
func (db *DB) UpdateSet(ctx context.Context, s models.Set) error {
	res, err := db.sql.ExecContext(ctx,
		`UPDATE sets SET weight_kg = ?, reps = ?, rpe = ?, is_warmup = ?,
			external_load_kg = ?, est_total_load_kg = ?
		 WHERE id = ?`,
		s.WeightKg, s.Reps, s.RPE, s.IsWarmup,
		s.ExternalLoadKg, s.EstTotalLoadKg, s.ID)
	if err != nil {
		return fmt.Errorf("updating set: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating set: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("set %s not found", s.ID)
	}
	return nil
}

// DeleteSet removes one set.
func (db *DB) DeleteSet(ctx context.Context, id string) error {
	_, err := db.sql.ExecContext(ctx, `DELETE FROM sets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting set: %w", err)
	}
	return nil
}

const setColumns = `id, workout_id, exercise_id, exercise_name, set_index,
	weight_kg, reps, rpe, is_warmup, external_load_kg,
	bodyweight_kg_used, bodyweight_factor, est_total_load_kg, created_at`

func scanSet(row interface{ Scan(...any) error }) (models.Set, error) {
	var s models.Set
	err := row.Scan(&s.ID, &s.WorkoutID, &s.ExerciseID, &s.ExerciseName, &s.SetIndex,
		&s.WeightKg, &s.Reps, &s.RPE, &s.IsWarmup, &s.ExternalLoadKg,
		&s.BodyweightKgUsed, &s.BodyweightFactor, &s.EstTotalLoadKg, &s.CreatedAt)
	return s, err
}

// GetSet returns one set by id. Returns (nil, nil) when the set does not exist.
func (db *DB) GetSet(ctx context.Context, id string) (*models.Set, error) {
	row := db.sql.QueryRowContext(ctx, `SELECT `+setColumns+` FROM sets WHERE id = ?`, id)
	s, err := scanSet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting set: %w", err)
	}
	return &s, nil
}

// QuerySetsByWorkout returns all sets of one workout in logging order.
func (db *DB) QuerySetsByWorkout(ctx context.Context, workoutID string) ([]models.Set, error) {
	rows, err := db.sql.QueryContext(ctx,
		`SELECT `+setColumns+` FROM sets WHERE workout_id = ? ORDER BY created_at ASC, set_index ASC`,
		workoutID)
	if err != nil {
		return nil, fmt.Errorf("querying workout sets: %w", err)
	}
	defer rows.Close()

	var result []models.Set
	for rows.Next() {
		s, err := scanSet(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning set: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// SetHistoryRow is one non-warmup set joined to its workout date, as consumed
// by the PR recompute.
type SetHistoryRow struct {
	SetID          string   `json:"set_id"`
	WeightKg       float64  `json:"weight_kg"`
	Reps           int      `json:"reps"`
	EstTotalLoadKg *float64 `json:"est_total_load_kg,omitempty"`
	Date           string   `json:"date"` // YYYY-MM-DD
}

// QuerySetHistory returns every non-warmup set for an exercise within a
// program, oldest first.
func (db *DB) QuerySetHistory(ctx context.Context, exerciseID, programID string) ([]SetHistoryRow, error) {
	rows, err := db.sql.QueryContext(ctx,
		`SELECT s.id, s.weight_kg, s.reps, s.est_total_load_kg, w.workout_date
		 FROM sets s
		 JOIN workouts w ON w.id = s.workout_id
		 WHERE s.exercise_id = ? AND w.program_id = ? AND NOT s.is_warmup
		 ORDER BY s.created_at ASC`,
		exerciseID, programID)
	if err != nil {
		return nil, fmt.Errorf("querying set history: %w", err)
	}
	defer rows.Close()

	var result []SetHistoryRow
	for rows.Next() {
		var r SetHistoryRow
		if err := rows.Scan(&r.SetID, &r.WeightKg, &r.Reps, &r.EstTotalLoadKg, &r.Date); err != nil {
			return nil, fmt.Errorf("scanning set history: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// CountNonWarmupSetsElsewhere counts non-warmup sets for an exercise in the
// program's other workouts. Zero means the current workout is the exercise's
// baseline session. Both the per-set and the session-volume PR checks use
// this one query, so their baseline semantics agree by construction.
func (db *DB) CountNonWarmupSetsElsewhere(ctx context.Context, exerciseID, programID, excludeWorkoutID string) (int, error) {
	var count int
	err := db.sql.QueryRowContext(ctx,
		`SELECT COUNT(*)
		 FROM sets s
		 JOIN workouts w ON w.id = s.workout_id
		 WHERE s.exercise_id = ? AND w.program_id = ? AND s.workout_id != ? AND NOT s.is_warmup`,
		exerciseID, programID, excludeWorkoutID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting prior sets: %w", err)
	}
	return count, nil
}

// GetLastWorkingSet returns the most recently logged non-warmup set for an
// exercise within a program, or nil when none exists.
func (db *DB) GetLastWorkingSet(ctx context.Context, exerciseID, programID string) (*models.Set, error) {
	row := db.sql.QueryRowContext(ctx,
		`SELECT `+sqlPrefixSetColumns+`
		 FROM sets s
		 JOIN workouts w ON w.id = s.workout_id
		 WHERE s.exercise_id = ? AND w.program_id = ? AND NOT s.is_warmup
		 ORDER BY s.created_at DESC LIMIT 1`,
		exerciseID, programID)
	s, err := scanSet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting last working set: %w", err)
	}
	return &s, nil
}

const sqlPrefixSetColumns = `s.id, s.workout_id, s.exercise_id, s.exercise_name, s.set_index,
	s.weight_kg, s.reps, s.rpe, s.is_warmup, s.external_load_kg,
	s.bodyweight_kg_used, s.bodyweight_factor, s.est_total_load_kg, s.created_at`
