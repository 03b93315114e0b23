package storage

import (
	"context"
	"fmt"

	"github.com/claude/liftlog/internal/models"
)

// CreateProgram stores a new training program.
func (db *DB) CreateProgram(ctx context.Context, p models.Program) error {
	_, err := db.sql.ExecContext(ctx,
		`INSERT INTO programs (id, name, created_at) VALUES (?, ?, ?)`,
		p.ID, p.Name, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating program: %w", err)
	}
	return nil
}

// ListPrograms returns all programs, newest first.
func (db *DB) ListPrograms(ctx context.Context) ([]models.Program, error) {
	rows, err := db.sql.QueryContext(ctx,
		`SELECT id, name, created_at FROM programs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying programs: %w", err)
	}
	defer rows.Close()

	var result []models.Program
	for rows.Next() {
		var p models.Program
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning program: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// DeleteProgram removes a program together with its exercise targets.
// Workout history and PR records are kept: the sets remain the system of
// record even after a program is retired.
func (db *DB) DeleteProgram(ctx context.Context, id string) error {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM exercise_targets WHERE program_id = ?`, id); err != nil {
		return fmt.Errorf("deleting program targets: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM programs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting program: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing program delete: %w", err)
	}
	return nil
}
