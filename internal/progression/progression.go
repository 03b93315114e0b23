// Package progression manages per-program exercise targets (rep range, set
// count, load increment) and builds next-set suggestions from the last
// logged set.
package progression

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/claude/liftlog/internal/catalog"
	"github.com/claude/liftlog/internal/metrics"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
)

// Target defaults. Isolation exercises train higher rep ranges.
const (
	defaultRepMin     = 6
	defaultRepMax     = 10
	isolationRepMin   = 10
	isolationRepMax   = 15
	defaultTargetSets = 3
	tagIsolation      = "isolation"
)

// Store reads and writes exercise targets.
type Store struct {
	db  *storage.DB
	cat *catalog.Catalog
	log *slog.Logger
	now func() time.Time
}

// New creates a Store.
func New(db *storage.DB, cat *catalog.Catalog, log *slog.Logger) *Store {
	return &Store{db: db, cat: cat, log: log, now: time.Now}
}

// DefaultTargetForExercise derives a target from the exercise's catalog
// metadata: isolation-tagged exercises get 10-15 reps, everything else 6-10,
// three sets, and the catalog increment (2.5 kg when unset).
func (s *Store) DefaultTargetForExercise(exerciseID string) models.ExerciseTarget {
	t := models.ExerciseTarget{
		ExerciseID:  exerciseID,
		RepMin:      defaultRepMin,
		RepMax:      defaultRepMax,
		TargetSets:  defaultTargetSets,
		IncrementKg: metrics.DefaultIncrementKg,
	}
	if s.cat.HasTag(exerciseID, tagIsolation) {
		t.RepMin = isolationRepMin
		t.RepMax = isolationRepMax
	}
	if inc := s.cat.DefaultIncrementFor(exerciseID); inc > 0 {
		t.IncrementKg = inc
	}
	return t
}

// EnsureTargets inserts default target rows for any of the given exercises
// that have none yet in this program. Existing rows are left untouched.
func (s *Store) EnsureTargets(ctx context.Context, programID string, exerciseIDs []string) error {
	for _, ex := range exerciseIDs {
		t := s.DefaultTargetForExercise(ex)
		t.ProgramID = programID
		t.UpdatedAt = s.now()
		if err := s.db.InsertTargetIfMissing(ctx, t); err != nil {
			return fmt.Errorf("ensuring target for %s: %w", ex, err)
		}
	}
	return nil
}

// TargetFor returns the stored target for one (program, exercise) pair,
// creating the default row when missing. Storage failures degrade to the
// computed default so callers always get a usable target.
func (s *Store) TargetFor(ctx context.Context, programID, exerciseID string) models.ExerciseTarget {
	stored, err := s.db.GetTarget(ctx, programID, exerciseID)
	if err != nil {
		s.log.Warn("target lookup failed", "program", programID, "exercise", exerciseID, "error", err)
	} else if stored != nil {
		return *stored
	}

	t := s.DefaultTargetForExercise(exerciseID)
	t.ProgramID = programID
	t.UpdatedAt = s.now()
	if err == nil {
		if insErr := s.db.InsertTargetIfMissing(ctx, t); insErr != nil {
			s.log.Warn("target auto-create failed", "program", programID, "exercise", exerciseID, "error", insErr)
		}
	}
	return t
}

// UpsertTarget overwrites a target with user-chosen values.
func (s *Store) UpsertTarget(ctx context.Context, t models.ExerciseTarget) error {
	if t.ProgramID == "" || t.ExerciseID == "" {
		return fmt.Errorf("program and exercise ids are required")
	}
	if t.RepMin <= 0 || t.RepMax < t.RepMin {
		return fmt.Errorf("invalid rep range %d-%d", t.RepMin, t.RepMax)
	}
	if t.TargetSets <= 0 {
		return fmt.Errorf("target sets must be positive")
	}
	if t.IncrementKg < 0 {
		return fmt.Errorf("increment must not be negative")
	}
	t.UpdatedAt = s.now()
	return s.db.UpsertTarget(ctx, t)
}

// Suggestion is the recommended next set.
type Suggestion struct {
	WeightKg float64 `json:"weight_kg"`
	Reps     int     `json:"reps"`
	Reason   string  `json:"reason"`
}

// BuildSuggestion applies the progression rules to the last logged set.
// Returns nil when there is no set to base a suggestion on. A zero increment
// is honored: the load stays frozen and only reps progress. Rule order:
// near-maximal RPE holds the load; a topped-out rep range adds load and
// resets reps; missing the range by two or more reps drops load; missing by
// exactly one holds load at the bottom of the range; otherwise build reps
// before adding load.
func BuildSuggestion(lastSet *models.Set, repMin, repMax int, incrementKg float64) *Suggestion {
	if lastSet == nil {
		return nil
	}
	if incrementKg < 0 {
		incrementKg = metrics.DefaultIncrementKg
	}
	weight := lastSet.WeightKg
	reps := lastSet.Reps

	switch {
	case lastSet.RPE != nil && *lastSet.RPE >= 9:
		return &Suggestion{WeightKg: weight, Reps: clamp(reps, repMin, repMax), Reason: "hold_high_rpe"}
	case reps >= repMax:
		return &Suggestion{WeightKg: weight + incrementKg, Reps: repMin, Reason: "add_load"}
	case reps <= repMin-2:
		return &Suggestion{WeightKg: math.Max(0, weight-incrementKg), Reps: repMin, Reason: "reduce_load"}
	case reps == repMin-1:
		return &Suggestion{WeightKg: weight, Reps: repMin, Reason: "hold_load"}
	default:
		return &Suggestion{WeightKg: weight, Reps: min(reps+1, repMax), Reason: "build_reps"}
	}
}

// SuggestionFor builds a suggestion for an exercise from its last non-warmup
// set and its target. Returns nil when no set has been logged yet or the
// lookup fails.
func (s *Store) SuggestionFor(ctx context.Context, programID, exerciseID string) *Suggestion {
	last, err := s.db.GetLastWorkingSet(ctx, exerciseID, programID)
	if err != nil {
		s.log.Warn("last set lookup failed", "program", programID, "exercise", exerciseID, "error", err)
		return nil
	}
	if last == nil {
		return nil
	}
	t := s.TargetFor(ctx, programID, exerciseID)
	return BuildSuggestion(last, t.RepMin, t.RepMax, t.IncrementKg)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
