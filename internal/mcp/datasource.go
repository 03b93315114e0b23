package mcp

import (
	"context"

	"github.com/claude/liftlog/internal/catalog"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/progression"
	"github.com/claude/liftlog/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. Both LocalData (embedded
// database) and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	ListPRs(ctx context.Context, programID string) (map[string]map[string]models.PRRecord, error)
	GetPRs(ctx context.Context, programID, exerciseID string) (map[string]models.PRRecord, error)
	ExerciseHistory(ctx context.Context, programID, exerciseID string) ([]storage.SetHistoryRow, error)
	Suggestion(ctx context.Context, programID, exerciseID string) (*progression.Suggestion, error)
	Exercises(ctx context.Context) ([]catalog.Exercise, error)
	RecentWorkouts(ctx context.Context, programID string, limit int) ([]models.Workout, error)
}

// LocalData implements DataSource over the embedded database.
type LocalData struct {
	db   *storage.DB
	prog *progression.Store
	cat  *catalog.Catalog
}

// Compile-time check: LocalData satisfies DataSource.
var _ DataSource = (*LocalData)(nil)

// NewLocalData creates a LocalData source.
func NewLocalData(db *storage.DB, prog *progression.Store, cat *catalog.Catalog) *LocalData {
	return &LocalData{db: db, prog: prog, cat: cat}
}

func (l *LocalData) ListPRs(ctx context.Context, programID string) (map[string]map[string]models.PRRecord, error) {
	return l.db.ListPRRecords(ctx, programID)
}

func (l *LocalData) GetPRs(ctx context.Context, programID, exerciseID string) (map[string]models.PRRecord, error) {
	return l.db.GetPRRecords(ctx, exerciseID, programID)
}

func (l *LocalData) ExerciseHistory(ctx context.Context, programID, exerciseID string) ([]storage.SetHistoryRow, error) {
	return l.db.QuerySetHistory(ctx, exerciseID, programID)
}

func (l *LocalData) Suggestion(ctx context.Context, programID, exerciseID string) (*progression.Suggestion, error) {
	return l.prog.SuggestionFor(ctx, programID, exerciseID), nil
}

func (l *LocalData) Exercises(ctx context.Context) ([]catalog.Exercise, error) {
	return l.cat.List(), nil
}

func (l *LocalData) RecentWorkouts(ctx context.Context, programID string, limit int) ([]models.Workout, error) {
	return l.db.ListWorkouts(ctx, programID, limit)
}
