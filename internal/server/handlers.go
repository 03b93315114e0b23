package server

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/claude/liftlog/internal/bodyweight"
	"github.com/claude/liftlog/internal/catalog"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/prengine"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cat.List())
}

func (s *Server) handleResolveExercise(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name parameter required"})
		return
	}
	id, ok := s.cat.Resolve(name)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown exercise"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"exercise_id": id})
}

func (s *Server) handleListPrograms(w http.ResponseWriter, r *http.Request) {
	programs, err := s.db.ListPrograms(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, programs)
}

func (s *Server) handleCreateProgram(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	p := models.Program{ID: uuid.NewString(), Name: req.Name, CreatedAt: time.Now()}
	if err := s.db.CreateProgram(r.Context(), p); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleDeleteProgram(w http.ResponseWriter, r *http.Request) {
	if err := s.db.DeleteProgram(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStartWorkout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProgramID string `json:"program_id"`
		Date      string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProgramID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "program_id is required"})
		return
	}
	if req.Date == "" {
		req.Date = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
		return
	}

	wk := models.Workout{
		ID:        uuid.NewString(),
		ProgramID: req.ProgramID,
		Date:      req.Date,
		StartedAt: time.Now(),
	}
	if err := s.db.CreateWorkout(r.Context(), wk); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, wk)
}

// handleFinishWorkout stamps the session's end and runs the session-volume PR
// check across everything logged in it.
func (s *Server) handleFinishWorkout(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	wk, err := s.db.GetWorkout(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if wk == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		return
	}
	if err := s.db.FinishWorkout(r.Context(), id, time.Now()); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	result := s.engine.CheckSessionVolumePRs(r.Context(), id, wk.ProgramID)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	programID := r.URL.Query().Get("program_id")
	if programID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "program_id parameter required"})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	workouts, err := s.db.ListWorkouts(r.Context(), programID, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	wk, err := s.db.GetWorkout(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if wk == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		return
	}
	sets, err := s.db.QuerySetsByWorkout(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"workout": wk, "sets": sets})
}

type logSetRequest struct {
	WorkoutID    string   `json:"workout_id"`
	ExerciseID   string   `json:"exercise_id"`
	ExerciseName string   `json:"exercise_name"`
	SetIndex     int      `json:"set_index"`
	WeightKg     float64  `json:"weight_kg"`
	Reps         int      `json:"reps"`
	RPE          *float64 `json:"rpe"`
	IsWarmup     bool     `json:"is_warmup"`
}

// handleLogSet commits one set: it resolves the exercise, snapshots the
// bodyweight load, stores the row, and runs the per-set PR check.
func (s *Server) handleLogSet(w http.ResponseWriter, r *http.Request) {
	var req logSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Reps <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reps must be positive"})
		return
	}
	if math.IsNaN(req.WeightKg) || math.IsInf(req.WeightKg, 0) || req.WeightKg < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid weight"})
		return
	}
	if req.RPE != nil && (*req.RPE < 0 || *req.RPE > 10) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "rpe must be between 0 and 10"})
		return
	}

	wk, err := s.db.GetWorkout(r.Context(), req.WorkoutID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if wk == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		return
	}

	exerciseID := req.ExerciseID
	if exerciseID == "" {
		if req.ExerciseName == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "exercise_id or exercise_name required"})
			return
		}
		// Unresolved free-text names get a stable synthetic id so PR records
		// still key consistently across sessions.
		if id, ok := s.cat.Resolve(req.ExerciseName); ok {
			exerciseID = id
		} else {
			exerciseID = catalog.Normalize(req.ExerciseName)
		}
	}

	load := s.bw.ComputeLoad(r.Context(), exerciseID, wk.Date, req.WeightKg)
	set := models.Set{
		ID:               uuid.NewString(),
		WorkoutID:        req.WorkoutID,
		ExerciseID:       exerciseID,
		ExerciseName:     req.ExerciseName,
		SetIndex:         req.SetIndex,
		WeightKg:         req.WeightKg,
		Reps:             req.Reps,
		RPE:              req.RPE,
		IsWarmup:         req.IsWarmup,
		ExternalLoadKg:   load.ExternalLoadKg,
		BodyweightKgUsed: load.BodyweightKgUsed,
		BodyweightFactor: load.BodyweightFactor,
		EstTotalLoadKg:   load.EstTotalLoadKg,
		CreatedAt:        time.Now(),
	}
	if err := s.db.InsertSet(r.Context(), set); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	var pr prengine.SetCheckResult
	if !set.IsWarmup {
		pr = s.engine.CheckSetPRs(r.Context(), prengine.SetCheck{
			ExerciseID:     exerciseID,
			ProgramID:      wk.ProgramID,
			WorkoutID:      wk.ID,
			SetID:          set.ID,
			WeightKg:       set.WeightKg,
			Reps:           set.Reps,
			IsBodyweight:   s.cat.IsBodyweight(exerciseID),
			EstTotalLoadKg: set.EstTotalLoadKg,
		})
	}

	writeJSON(w, http.StatusCreated, map[string]any{"set": set, "pr": pr})
}

type editSetRequest struct {
	WeightKg *float64 `json:"weight_kg"`
	Reps     *int     `json:"reps"`
	RPE      *float64 `json:"rpe"`
	IsWarmup *bool    `json:"is_warmup"`
}

// handleEditSet overwrites a set's user-editable fields and rebuilds the
// exercise's records from history. The set's bodyweight snapshot is kept; a
// new external load is combined with the snapshot, never with current body
// metrics.
func (s *Server) handleEditSet(w http.ResponseWriter, r *http.Request) {
	var req editSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	set, err := s.db.GetSet(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if set == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "set not found"})
		return
	}

	if req.WeightKg != nil {
		if math.IsNaN(*req.WeightKg) || math.IsInf(*req.WeightKg, 0) || *req.WeightKg < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid weight"})
			return
		}
		set.WeightKg = *req.WeightKg
		set.ExternalLoadKg = *req.WeightKg
		if set.BodyweightKgUsed != nil && set.BodyweightFactor != nil {
			total := bodyweight.CalcTotal(*set.BodyweightKgUsed, *set.BodyweightFactor, set.ExternalLoadKg)
			set.EstTotalLoadKg = &total
		}
	}
	if req.Reps != nil {
		if *req.Reps <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reps must be positive"})
			return
		}
		set.Reps = *req.Reps
	}
	if req.RPE != nil {
		set.RPE = req.RPE
	}
	if req.IsWarmup != nil {
		set.IsWarmup = *req.IsWarmup
	}

	if err := s.db.UpdateSet(r.Context(), *set); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	records := s.recomputeForSet(r, set)
	writeJSON(w, http.StatusOK, map[string]any{"set": set, "records": records})
}

func (s *Server) handleDeleteSet(w http.ResponseWriter, r *http.Request) {
	set, err := s.db.GetSet(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if set == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "set not found"})
		return
	}
	if err := s.db.DeleteSet(r.Context(), set.ID); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	records := s.recomputeForSet(r, set)
	writeJSON(w, http.StatusOK, map[string]any{"records": records})
}

// recomputeForSet rebuilds the records of the set's exercise, the documented
// repair path after edits and deletes.
func (s *Server) recomputeForSet(r *http.Request, set *models.Set) map[string]models.PRRecord {
	wk, err := s.db.GetWorkout(r.Context(), set.WorkoutID)
	if err != nil || wk == nil {
		s.log.Warn("recompute skipped: workout lookup failed", "workout", set.WorkoutID, "error", err)
		return map[string]models.PRRecord{}
	}
	return s.engine.RecomputePRForExercise(r.Context(), set.ExerciseID, wk.ProgramID)
}

func (s *Server) handleSetHistory(w http.ResponseWriter, r *http.Request) {
	programID := r.URL.Query().Get("program_id")
	exerciseID := r.URL.Query().Get("exercise_id")
	if programID == "" || exerciseID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "program_id and exercise_id parameters required"})
		return
	}
	rows, err := s.db.QuerySetHistory(r.Context(), exerciseID, programID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleGetPRs(w http.ResponseWriter, r *http.Request) {
	programID := r.URL.Query().Get("program_id")
	if programID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "program_id parameter required"})
		return
	}
	if exerciseID := r.URL.Query().Get("exercise_id"); exerciseID != "" {
		records, err := s.db.GetPRRecords(r.Context(), exerciseID, programID)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, records)
		return
	}
	records, err := s.db.ListPRRecords(r.Context(), programID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleRecompute(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProgramID  string `json:"program_id"`
		ExerciseID string `json:"exercise_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	records := s.engine.RecomputePRForExercise(r.Context(), req.ExerciseID, req.ProgramID)
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleListTargets(w http.ResponseWriter, r *http.Request) {
	programID := r.URL.Query().Get("program_id")
	if programID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "program_id parameter required"})
		return
	}
	targets, err := s.db.ListTargets(r.Context(), programID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, targets)
}

func (s *Server) handleEnsureTargets(w http.ResponseWriter, r *http.Request) {
	programID := chi.URLParam(r, "id")
	var req struct {
		ExerciseIDs []string `json:"exercise_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.ExerciseIDs) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "exercise_ids is required"})
		return
	}
	if err := s.prog.EnsureTargets(r.Context(), programID, req.ExerciseIDs); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	targets, err := s.db.ListTargets(r.Context(), programID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, targets)
}

func (s *Server) handleUpsertTarget(w http.ResponseWriter, r *http.Request) {
	var t models.ExerciseTarget
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if err := s.prog.UpsertTarget(r.Context(), t); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	stored, err := s.db.GetTarget(r.Context(), t.ProgramID, t.ExerciseID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

func (s *Server) handleGetSuggestion(w http.ResponseWriter, r *http.Request) {
	programID := r.URL.Query().Get("program_id")
	exerciseID := r.URL.Query().Get("exercise_id")
	if programID == "" || exerciseID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "program_id and exercise_id parameters required"})
		return
	}
	suggestion := s.prog.SuggestionFor(r.Context(), programID, exerciseID)
	writeJSON(w, http.StatusOK, map[string]any{"suggestion": suggestion})
}

func (s *Server) handleLogBodyMetric(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date     string  `json:"date"`
		WeightKg float64 `json:"weight_kg"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if math.IsNaN(req.WeightKg) || math.IsInf(req.WeightKg, 0) || req.WeightKg <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "weight_kg must be positive"})
		return
	}
	if req.Date == "" {
		req.Date = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
		return
	}

	m := models.BodyMetric{ID: uuid.NewString(), Date: req.Date, WeightKg: req.WeightKg}
	if err := s.db.InsertBodyMetric(r.Context(), m); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleListBodyMetrics(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	rows, err := s.db.ListBodyMetrics(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
