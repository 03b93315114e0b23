// Package prengine detects personal records: per-set heaviest-weight and
// estimated-1RM checks, session-end volume checks, and the full recompute
// that rebuilds record state from raw set history.
//
// Every public method is fail-silent: storage errors are logged and the
// method degrades to a benign empty result. A missed PR banner is a minor UX
// defect; the sets table stays intact and a recompute restores correct state.
package prengine

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/claude/liftlog/internal/catalog"
	"github.com/claude/liftlog/internal/metrics"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
)

// Engine holds the PR detection dependencies.
type Engine struct {
	db  *storage.DB
	cat *catalog.Catalog
	log *slog.Logger
	now func() time.Time
}

// New creates an Engine.
func New(db *storage.DB, cat *catalog.Catalog, log *slog.Logger) *Engine {
	return &Engine{db: db, cat: cat, log: log, now: time.Now}
}

// SetCheck describes one freshly logged set.
type SetCheck struct {
	ExerciseID     string
	ProgramID      string
	WorkoutID      string
	SetID          string
	WeightKg       float64
	Reps           int
	IsBodyweight   bool
	EstTotalLoadKg *float64
	// CurrentVolume is passed through untouched; volume records are written
	// only at session end.
	CurrentVolume *models.PRRecord
}

// SetCheckResult is the record state after a per-set check plus the
// user-facing notification messages (empty on baseline sessions).
type SetCheckResult struct {
	Records  map[string]models.PRRecord `json:"records"`
	Messages []string                   `json:"messages"`
}

// formatValue renders the value exactly as stored so the message always
// matches the record it announces.
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// CheckSetPRs classifies one logged set against the stored heaviest and e1rm
// records. Records are re-read from the store here; any caller-held copy is
// deliberately ignored, since the store is the only state multiple callers
// agree on. New records are written on strictly greater values only, and
// messages are suppressed when this is the exercise's baseline session.
func (e *Engine) CheckSetPRs(ctx context.Context, in SetCheck) SetCheckResult {
	result := SetCheckResult{Records: make(map[string]models.PRRecord)}
	if in.ExerciseID == "" || in.ProgramID == "" {
		return result
	}

	prWeight := in.WeightKg
	if in.IsBodyweight && in.EstTotalLoadKg != nil {
		prWeight = *in.EstTotalLoadKg
	}
	e1rm := metrics.Round1(metrics.Epley1RM(prWeight, in.Reps))

	current, err := e.db.GetPRRecords(ctx, in.ExerciseID, in.ProgramID)
	if err != nil {
		e.log.Warn("pr check: reading records failed", "exercise", in.ExerciseID, "error", err)
		return result
	}

	baseline := false
	_, hasHeaviest := current[models.PRHeaviest]
	_, hasE1RM := current[models.PRE1RM]
	if !hasHeaviest && !hasE1RM {
		prior, err := e.db.CountNonWarmupSetsElsewhere(ctx, in.ExerciseID, in.ProgramID, in.WorkoutID)
		if err != nil {
			e.log.Warn("pr check: baseline lookup failed", "exercise", in.ExerciseID, "error", err)
			return result
		}
		baseline = prior == 0
	}

	today := e.now().Format("2006-01-02")
	reps := in.Reps
	weight := prWeight
	setID := in.SetID

	checks := []struct {
		typ     string
		value   float64
		message string
	}{
		{models.PRHeaviest, prWeight, "heaviest:" + formatValue(prWeight)},
		{models.PRE1RM, e1rm, "e1rm:" + formatValue(e1rm)},
	}

	for _, c := range checks {
		old, exists := current[c.typ]
		if exists && c.value <= old.Value {
			result.Records[c.typ] = old
			continue
		}
		rec := models.PRRecord{
			ExerciseID: in.ExerciseID,
			Type:       c.typ,
			ProgramID:  in.ProgramID,
			Value:      c.value,
			Reps:       &reps,
			WeightKg:   &weight,
			SetID:      &setID,
			Date:       today,
		}
		if err := e.db.UpsertPRRecord(ctx, rec); err != nil {
			e.log.Warn("pr check: upsert failed", "exercise", in.ExerciseID, "type", c.typ, "error", err)
			if exists {
				result.Records[c.typ] = old
			}
			continue
		}
		result.Records[c.typ] = rec
		if !baseline {
			result.Messages = append(result.Messages, c.message)
		}
	}

	if in.CurrentVolume != nil {
		result.Records[models.PRVolume] = *in.CurrentVolume
	}
	return result
}

// VolumeCheckResult is the record state after a session-end volume check.
// Records holds the full current map for every exercise touched in the
// session, whether or not anything new was set.
type VolumeCheckResult struct {
	Records  map[string]map[string]models.PRRecord `json:"records"`
	Messages []string                              `json:"messages"`
}

// CheckSessionVolumePRs tallies per-exercise session volume (effective load ×
// reps, doubled for per-side exercises, warmups excluded) and writes a volume
// record wherever the session strictly beat the stored one.
func (e *Engine) CheckSessionVolumePRs(ctx context.Context, workoutID, programID string) VolumeCheckResult {
	result := VolumeCheckResult{Records: make(map[string]map[string]models.PRRecord)}
	if workoutID == "" || programID == "" {
		return result
	}

	sets, err := e.db.QuerySetsByWorkout(ctx, workoutID)
	if err != nil {
		e.log.Warn("volume check: reading sets failed", "workout", workoutID, "error", err)
		return result
	}

	volumes := make(map[string]float64)
	var order []string
	for _, s := range sets {
		if s.IsWarmup || s.ExerciseID == "" {
			continue
		}
		mult := 1.0
		if e.cat.IsPerSideExercise(s.ExerciseID) {
			mult = 2.0
		}
		if _, seen := volumes[s.ExerciseID]; !seen {
			order = append(order, s.ExerciseID)
		}
		volumes[s.ExerciseID] += s.EffectiveLoad() * float64(s.Reps) * mult
	}
	if len(order) == 0 {
		return result
	}

	current, err := e.db.GetPRRecordsForExercises(ctx, programID, order)
	if err != nil {
		e.log.Warn("volume check: reading records failed", "workout", workoutID, "error", err)
		return result
	}
	for ex, recs := range current {
		result.Records[ex] = recs
	}

	today := e.now().Format("2006-01-02")
	for _, ex := range order {
		volume := metrics.Round1(volumes[ex])
		recs := result.Records[ex]
		if recs == nil {
			recs = make(map[string]models.PRRecord)
			result.Records[ex] = recs
		}

		old, exists := recs[models.PRVolume]
		if exists && volume <= old.Value {
			continue
		}

		baseline := false
		_, hasHeaviest := recs[models.PRHeaviest]
		_, hasE1RM := recs[models.PRE1RM]
		if !hasHeaviest && !hasE1RM {
			prior, err := e.db.CountNonWarmupSetsElsewhere(ctx, ex, programID, workoutID)
			if err != nil {
				e.log.Warn("volume check: baseline lookup failed", "exercise", ex, "error", err)
				continue
			}
			baseline = prior == 0
		}

		rec := models.PRRecord{
			ExerciseID: ex,
			Type:       models.PRVolume,
			ProgramID:  programID,
			Value:      volume,
			Date:       today,
		}
		if err := e.db.UpsertPRRecord(ctx, rec); err != nil {
			e.log.Warn("volume check: upsert failed", "exercise", ex, "error", err)
			continue
		}
		recs[models.PRVolume] = rec
		if !baseline {
			result.Messages = append(result.Messages, "volume:"+ex+":"+formatValue(volume))
		}
	}
	return result
}

// RecomputePRForExercise rebuilds the heaviest and e1rm records for one
// exercise/program from the full non-warmup set history. The two winners are
// tracked independently: the heaviest set need not produce the best e1rm.
// The rebuild overwrites unconditionally; it is ground truth, not an
// incremental update. Running it twice on unchanged history is a no-op.
// Volume records are out of scope here: they are session facts that cannot be
// rebuilt from set rows without re-deriving session groupings.
func (e *Engine) RecomputePRForExercise(ctx context.Context, exerciseID, programID string) map[string]models.PRRecord {
	result := make(map[string]models.PRRecord)
	if exerciseID == "" || programID == "" {
		return result
	}

	history, err := e.db.QuerySetHistory(ctx, exerciseID, programID)
	if err != nil {
		e.log.Warn("recompute: reading history failed", "exercise", exerciseID, "error", err)
		return result
	}

	if len(history) == 0 {
		if err := e.db.DeletePRRecords(ctx, exerciseID, programID, models.PRHeaviest, models.PRE1RM); err != nil {
			e.log.Warn("recompute: deleting stale records failed", "exercise", exerciseID, "error", err)
		}
		return result
	}

	effective := func(r storage.SetHistoryRow) float64 {
		if r.EstTotalLoadKg != nil {
			return *r.EstTotalLoadKg
		}
		return r.WeightKg
	}

	bestHeaviest := history[0]
	bestE1RM := history[0]
	for _, r := range history[1:] {
		if effective(r) > effective(bestHeaviest) {
			bestHeaviest = r
		}
		if metrics.Epley1RM(effective(r), r.Reps) > metrics.Epley1RM(effective(bestE1RM), bestE1RM.Reps) {
			bestE1RM = r
		}
	}

	build := func(typ string, row storage.SetHistoryRow, value float64) models.PRRecord {
		weight := effective(row)
		reps := row.Reps
		setID := row.SetID
		return models.PRRecord{
			ExerciseID: exerciseID,
			Type:       typ,
			ProgramID:  programID,
			Value:      value,
			Reps:       &reps,
			WeightKg:   &weight,
			SetID:      &setID,
			Date:       row.Date,
		}
	}

	records := []models.PRRecord{
		build(models.PRHeaviest, bestHeaviest, effective(bestHeaviest)),
		build(models.PRE1RM, bestE1RM, metrics.Round1(metrics.Epley1RM(effective(bestE1RM), bestE1RM.Reps))),
	}
	for _, rec := range records {
		if err := e.db.UpsertPRRecord(ctx, rec); err != nil {
			e.log.Warn("recompute: upsert failed", "exercise", exerciseID, "type", rec.Type, "error", err)
			continue
		}
		result[rec.Type] = rec
	}
	return result
}
