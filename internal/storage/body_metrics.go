package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/claude/liftlog/internal/models"
)

// InsertBodyMetric stores one body-weight measurement.
func (db *DB) InsertBodyMetric(ctx context.Context, m models.BodyMetric) error {
	_, err := db.sql.ExecContext(ctx,
		`INSERT INTO body_metrics (id, date, weight_kg) VALUES (?, ?, ?)`,
		m.ID, m.Date, m.WeightKg)
	if err != nil {
		return fmt.Errorf("inserting body metric: %w", err)
	}
	return nil
}

// LatestBodyweightOnOrBefore returns the body weight from the most recent
// measurement dated on or before the given day (same-day entries win over
// earlier ones). Future-dated entries are never selected. Returns nil when no
// qualifying measurement exists.
func (db *DB) LatestBodyweightOnOrBefore(ctx context.Context, date string) (*float64, error) {
	var weight float64
	err := db.sql.QueryRowContext(ctx,
		`SELECT weight_kg FROM body_metrics WHERE date <= ? ORDER BY date DESC, rowid DESC LIMIT 1`,
		date).Scan(&weight)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying body weight: %w", err)
	}
	return &weight, nil
}

// ListBodyMetrics returns the most recent measurements, newest first.
func (db *DB) ListBodyMetrics(ctx context.Context, limit int) ([]models.BodyMetric, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.sql.QueryContext(ctx,
		`SELECT id, date, weight_kg FROM body_metrics ORDER BY date DESC, rowid DESC LIMIT ?`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("querying body metrics: %w", err)
	}
	defer rows.Close()

	var result []models.BodyMetric
	for rows.Next() {
		var m models.BodyMetric
		if err := rows.Scan(&m.ID, &m.Date, &m.WeightKg); err != nil {
			return nil, fmt.Errorf("scanning body metric: %w", err)
		}
		result = append(result, m)
	}
	return result, rows.Err()
}
