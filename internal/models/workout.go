package models

import "time"

// Program is a multi-day training plan. Targets and PR records are scoped to
// one program.
type Program struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Workout is one training session.
type Workout struct {
	ID         string     `json:"id"`
	ProgramID  string     `json:"program_id"`
	Date       string     `json:"date"` // YYYY-MM-DD
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Set is one performed set within a workout. Weight is the externally applied
// load in kg (0 for unweighted bodyweight reps). For bodyweight exercises the
// bodyweight snapshot columns record the total-load computation made at logging
// time; EstTotalLoadKg is treated as an immutable fact of the set afterwards.
type Set struct {
	ID               string    `json:"id"`
	WorkoutID        string    `json:"workout_id"`
	ExerciseID       string    `json:"exercise_id"`
	ExerciseName     string    `json:"exercise_name,omitempty"` // free-text fallback when unresolved
	SetIndex         int       `json:"set_index"`
	WeightKg         float64   `json:"weight_kg"`
	Reps             int       `json:"reps"`
	RPE              *float64  `json:"rpe,omitempty"`
	IsWarmup         bool      `json:"is_warmup"`
	ExternalLoadKg   float64   `json:"external_load_kg"`
	BodyweightKgUsed *float64  `json:"bodyweight_kg_used,omitempty"`
	BodyweightFactor *float64  `json:"bodyweight_factor,omitempty"`
	EstTotalLoadKg   *float64  `json:"est_total_load_kg,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// EffectiveLoad returns the load used for PR comparison: the bodyweight-
// adjusted total when known, otherwise the raw external weight.
func (s Set) EffectiveLoad() float64 {
	if s.EstTotalLoadKg != nil {
		return *s.EstTotalLoadKg
	}
	return s.WeightKg
}

// PR record types.
const (
	PRHeaviest = "heaviest"
	PRE1RM     = "e1rm"
	PRVolume   = "volume"
)

// PRRecord is the best known value of one metric for an exercise within a
// program. At most one row exists per (exercise, type, program).
type PRRecord struct {
	ExerciseID string   `json:"exercise_id"`
	Type       string   `json:"type"`
	ProgramID  string   `json:"program_id"`
	Value      float64  `json:"value"`           // kg for heaviest/e1rm, kg·reps for volume
	Reps       *int     `json:"reps,omitempty"`  // unset for volume
	WeightKg   *float64 `json:"weight_kg,omitempty"`
	SetID      *string  `json:"set_id,omitempty"` // unset for volume
	Date       string   `json:"date"`             // YYYY-MM-DD
}

// ExerciseTarget is the per-program rep-range/set-count/increment
// configuration for one exercise.
type ExerciseTarget struct {
	ProgramID   string    `json:"program_id"`
	ExerciseID  string    `json:"exercise_id"`
	RepMin      int       `json:"rep_min"`
	RepMax      int       `json:"rep_max"`
	TargetSets  int       `json:"target_sets"`
	IncrementKg float64   `json:"increment_kg"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BodyMetric is one logged body-weight measurement.
type BodyMetric struct {
	ID       string  `json:"id"`
	Date     string  `json:"date"` // YYYY-MM-DD
	WeightKg float64 `json:"weight_kg"`
}
