package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/claude/liftlog/internal/models"
)

// CreateWorkout stores a new workout session.
func (db *DB) CreateWorkout(ctx context.Context, w models.Workout) error {
	_, err := db.sql.ExecContext(ctx,
		`INSERT INTO workouts (id, program_id, workout_date, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?)`,
		w.ID, w.ProgramID, w.Date, w.StartedAt, w.FinishedAt)
	if err != nil {
		return fmt.Errorf("creating workout: %w", err)
	}
	return nil
}

// FinishWorkout stamps the workout's finish time.
func (db *DB) FinishWorkout(ctx context.Context, id string, finishedAt time.Time) error {
	res, err := db.sql.ExecContext(ctx,
		`UPDATE workouts SET finished_at = ? WHERE id = ?`, finishedAt, id)
	if err != nil {
		return fmt.Errorf("finishing workout: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finishing workout: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("workout %s not found", id)
	}
	return nil
}

// GetWorkout returns one workout by id, or nil when it does not exist.
func (db *DB) GetWorkout(ctx context.Context, id string) (*models.Workout, error) {
	var w models.Workout
	err := db.sql.QueryRowContext(ctx,
		`SELECT id, program_id, workout_date, started_at, finished_at FROM workouts WHERE id = ?`,
		id).Scan(&w.ID, &w.ProgramID, &w.Date, &w.StartedAt, &w.FinishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting workout: %w", err)
	}
	return &w, nil
}

// ListWorkouts returns a program's workouts, newest first.
func (db *DB) ListWorkouts(ctx context.Context, programID string, limit int) ([]models.Workout, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.sql.QueryContext(ctx,
		`SELECT id, program_id, workout_date, started_at, finished_at
		 FROM workouts WHERE program_id = ?
		 ORDER BY workout_date DESC, started_at DESC LIMIT ?`,
		programID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var result []models.Workout
	for rows.Next() {
		var w models.Workout
		if err := rows.Scan(&w.ID, &w.ProgramID, &w.Date, &w.StartedAt, &w.FinishedAt); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		result = append(result, w)
	}
	return result, rows.Err()
}
