package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/claude/liftlog/internal/models"
)

const prColumns = `exercise_id, type, program_id, value, reps, weight_kg, set_id, date`

// GetPRRecords returns the stored records for one exercise within a program,
// keyed by record type. Missing types are simply absent from the map.
func (db *DB) GetPRRecords(ctx context.Context, exerciseID, programID string) (map[string]models.PRRecord, error) {
	rows, err := db.sql.QueryContext(ctx,
		`SELECT `+prColumns+` FROM pr_records WHERE exercise_id = ? AND program_id = ?`,
		exerciseID, programID)
	if err != nil {
		return nil, fmt.Errorf("querying pr records: %w", err)
	}
	defer rows.Close()

	result := make(map[string]models.PRRecord)
	for rows.Next() {
		var r models.PRRecord
		if err := rows.Scan(&r.ExerciseID, &r.Type, &r.ProgramID, &r.Value,
			&r.Reps, &r.WeightKg, &r.SetID, &r.Date); err != nil {
			return nil, fmt.Errorf("scanning pr record: %w", err)
		}
		result[r.Type] = r
	}
	return result, rows.Err()
}

// GetPRRecordsForExercises bulk-loads the records of several exercises at
// once, keyed by exercise id then record type.
func (db *DB) GetPRRecordsForExercises(ctx context.Context, programID string, exerciseIDs []string) (map[string]map[string]models.PRRecord, error) {
	result := make(map[string]map[string]models.PRRecord)
	if len(exerciseIDs) == 0 {
		return result, nil
	}

	placeholders := strings.Repeat("?,", len(exerciseIDs))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, 0, len(exerciseIDs)+1)
	args = append(args, programID)
	for _, id := range exerciseIDs {
		args = append(args, id)
	}

	rows, err := db.sql.QueryContext(ctx,
		`SELECT `+prColumns+` FROM pr_records WHERE program_id = ? AND exercise_id IN (`+placeholders+`)`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("querying pr records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r models.PRRecord
		if err := rows.Scan(&r.ExerciseID, &r.Type, &r.ProgramID, &r.Value,
			&r.Reps, &r.WeightKg, &r.SetID, &r.Date); err != nil {
			return nil, fmt.Errorf("scanning pr record: %w", err)
		}
		if result[r.ExerciseID] == nil {
			result[r.ExerciseID] = make(map[string]models.PRRecord)
		}
		result[r.ExerciseID][r.Type] = r
	}
	return result, rows.Err()
}

// ListPRRecords returns every record in a program, keyed by exercise id then
// record type.
func (db *DB) ListPRRecords(ctx context.Context, programID string) (map[string]map[string]models.PRRecord, error) {
	rows, err := db.sql.QueryContext(ctx,
		`SELECT `+prColumns+` FROM pr_records WHERE program_id = ? ORDER BY exercise_id ASC`,
		programID)
	if err != nil {
		return nil, fmt.Errorf("querying pr records: %w", err)
	}
	defer rows.Close()

	result := make(map[string]map[string]models.PRRecord)
	for rows.Next() {
		var r models.PRRecord
		if err := rows.Scan(&r.ExerciseID, &r.Type, &r.ProgramID, &r.Value,
			&r.Reps, &r.WeightKg, &r.SetID, &r.Date); err != nil {
			return nil, fmt.Errorf("scanning pr record: %w", err)
		}
		if result[r.ExerciseID] == nil {
			result[r.ExerciseID] = make(map[string]models.PRRecord)
		}
		result[r.ExerciseID][r.Type] = r
	}
	return result, rows.Err()
}

// UpsertPRRecord inserts a record or overwrites the existing row for the same
// (exercise, type, program) key.
func (db *DB) UpsertPRRecord(ctx context.Context, r models.PRRecord) error {
	_, err := db.sql.ExecContext(ctx,
		`INSERT INTO pr_records (exercise_id, type, program_id, value, reps, weight_kg, set_id, date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (exercise_id, type, program_id) DO UPDATE SET
			value = excluded.value,
			reps = excluded.reps,
			weight_kg = excluded.weight_kg,
			set_id = excluded.set_id,
			date = excluded.date`,
		r.ExerciseID, r.Type, r.ProgramID, r.Value, r.Reps, r.WeightKg, r.SetID, r.Date)
	if err != nil {
		return fmt.Errorf("upserting pr record: %w", err)
	}
	return nil
}

// DeletePRRecords removes the given record types for one exercise/program.
// With no types it removes all of them.
func (db *DB) DeletePRRecords(ctx context.Context, exerciseID, programID string, types ...string) error {
	query := `DELETE FROM pr_records WHERE exercise_id = ? AND program_id = ?`
	args := []any{exerciseID, programID}
	if len(types) > 0 {
		placeholders := strings.Repeat("?,", len(types))
		query += ` AND type IN (` + placeholders[:len(placeholders)-1] + `)`
		for _, t := range types {
			args = append(args, t)
		}
	}
	if _, err := db.sql.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("deleting pr records: %w", err)
	}
	return nil
}
