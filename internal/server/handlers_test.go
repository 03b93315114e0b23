package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/bodyweight"
	"github.com/claude/liftlog/internal/catalog"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/prengine"
	"github.com/claude/liftlog/internal/progression"
	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/storage/storagetest"
)

const testAPIKey = "test-key"

func newTestServer(t *testing.T) (*Server, *storage.DB) {
	t.Helper()
	db := storagetest.New(t)
	cat, err := catalog.Load("")
	if err != nil {
		t.Fatalf("loading catalog: %v", err)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := prengine.New(db, cat, log)
	prog := progression.New(db, cat, log)
	bw := bodyweight.NewCalculator(db, cat, log)
	return New(db, engine, prog, bw, cat, testAPIKey, log), db
}

func doJSON(t *testing.T, srv *Server, method, path, body string, auth bool) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if auth {
		req.Header.Set("X-API-Key", testAPIKey)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func seedSession(t *testing.T, db *storage.DB) {
	t.Helper()
	ctx := context.Background()
	if err := db.CreateProgram(ctx, models.Program{ID: "p1", Name: "Block", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("creating program: %v", err)
	}
	if err := db.CreateWorkout(ctx, models.Workout{ID: "w1", ProgramID: "p1", Date: "2026-03-01", StartedAt: time.Now()}); err != nil {
		t.Fatalf("creating workout: %v", err)
	}
}

// TestMutatingRoutesRequireAPIKey verifies writes are rejected without a key
// while reads stay open.
func TestMutatingRoutesRequireAPIKey(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/programs", `{"name":"Block"}`, false)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated POST status = %d, want 401", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/exercises", "", false)
	if rec.Code != http.StatusOK {
		t.Errorf("unauthenticated GET status = %d, want 200", rec.Code)
	}
}

// TestLogSetReturnsPRResult verifies the full log-set path: exercise
// resolution, persistence, and the per-set PR check in the response.
func TestLogSetReturnsPRResult(t *testing.T) {
	srv, db := newTestServer(t)
	seedSession(t, db)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/sets",
		`{"workout_id":"w1","exercise_name":"Bench Press","weight_kg":100,"reps":5}`, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Set models.Set              `json:"set"`
		PR  prengine.SetCheckResult `json:"pr"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Set.ExerciseID != "bench_press" {
		t.Errorf("exercise id = %q, want bench_press (resolved from name)", resp.Set.ExerciseID)
	}
	if got := resp.PR.Records[models.PRHeaviest].Value; got != 100 {
		t.Errorf("heaviest = %v, want 100", got)
	}
	if len(resp.PR.Messages) != 0 {
		t.Errorf("messages = %v, want none on baseline session", resp.PR.Messages)
	}
}

// TestLogSetUnknownNameGetsSyntheticID verifies free-text exercises key
// consistently.
func TestLogSetUnknownNameGetsSyntheticID(t *testing.T) {
	srv, db := newTestServer(t)
	seedSession(t, db)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/sets",
		`{"workout_id":"w1","exercise_name":"Zercher Squat!","weight_kg":80,"reps":5}`, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Set models.Set `json:"set"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Set.ExerciseID != "zerchersquat" {
		t.Errorf("exercise id = %q, want normalized zerchersquat", resp.Set.ExerciseID)
	}
}

// TestLogSetValidation verifies malformed sets are rejected.
func TestLogSetValidation(t *testing.T) {
	srv, db := newTestServer(t)
	seedSession(t, db)

	cases := []struct {
		name string
		body string
	}{
		{"zero reps", `{"workout_id":"w1","exercise_id":"squat","weight_kg":100,"reps":0}`},
		{"negative weight", `{"workout_id":"w1","exercise_id":"squat","weight_kg":-5,"reps":5}`},
		{"rpe out of range", `{"workout_id":"w1","exercise_id":"squat","weight_kg":100,"reps":5,"rpe":11}`},
		{"no exercise", `{"workout_id":"w1","weight_kg":100,"reps":5}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, srv, http.MethodPost, "/api/v1/sets", tc.body, true)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

// TestWarmupSetSkipsPRCheck verifies warmups are stored but never checked.
func TestWarmupSetSkipsPRCheck(t *testing.T) {
	srv, db := newTestServer(t)
	seedSession(t, db)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/sets",
		`{"workout_id":"w1","exercise_id":"squat","weight_kg":60,"reps":10,"is_warmup":true}`, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	records, err := db.GetPRRecords(context.Background(), "squat", "p1")
	if err != nil {
		t.Fatalf("reading records: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("records = %+v, want none after a warmup", records)
	}
}

// TestFinishWorkoutRunsVolumeCheck verifies session end stamps the workout
// and returns the volume check result.
func TestFinishWorkoutRunsVolumeCheck(t *testing.T) {
	srv, db := newTestServer(t)
	seedSession(t, db)

	doJSON(t, srv, http.MethodPost, "/api/v1/sets",
		`{"workout_id":"w1","exercise_id":"squat","weight_kg":100,"reps":5}`, true)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/workouts/w1/finish", "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var result prengine.VolumeCheckResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if got := result.Records["squat"][models.PRVolume].Value; got != 500 {
		t.Errorf("volume = %v, want 500", got)
	}

	wk, err := db.GetWorkout(context.Background(), "w1")
	if err != nil || wk == nil {
		t.Fatalf("reading workout: %v", err)
	}
	if wk.FinishedAt == nil {
		t.Error("finished_at not set")
	}
}

// TestEditSetRecombinesSnapshot verifies an edited external load is combined
// with the stored bodyweight snapshot, not recomputed from current metrics.
func TestEditSetRecombinesSnapshot(t *testing.T) {
	srv, db := newTestServer(t)
	seedSession(t, db)
	ctx := context.Background()

	bw, factor, est := 80.0, 1.0, 90.0
	if err := db.InsertSet(ctx, models.Set{
		ID: "s1", WorkoutID: "w1", ExerciseID: "pull_up",
		WeightKg: 10, Reps: 8, ExternalLoadKg: 10,
		BodyweightKgUsed: &bw, BodyweightFactor: &factor, EstTotalLoadKg: &est,
		CreatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("inserting set: %v", err)
	}
	// A newer body weight must not affect the edit.
	if err := db.InsertBodyMetric(ctx, models.BodyMetric{ID: "m1", Date: "2026-03-02", WeightKg: 95}); err != nil {
		t.Fatalf("inserting metric: %v", err)
	}

	rec := doJSON(t, srv, http.MethodPatch, "/api/v1/sets/s1", `{"weight_kg":20}`, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	got, err := db.GetSet(ctx, "s1")
	if err != nil || got == nil {
		t.Fatalf("reading set: %v", err)
	}
	if got.EstTotalLoadKg == nil || *got.EstTotalLoadKg != 100 {
		t.Errorf("est total = %v, want 100 (80kg snapshot x 1.0 + 20kg)", got.EstTotalLoadKg)
	}
}

// TestDeleteSetRecomputesRecords verifies deleting the record-holding set
// clears the stored records.
func TestDeleteSetRecomputesRecords(t *testing.T) {
	srv, db := newTestServer(t)
	seedSession(t, db)

	doJSON(t, srv, http.MethodPost, "/api/v1/sets",
		`{"workout_id":"w1","exercise_id":"deadlift","weight_kg":180,"reps":5}`, true)

	sets, err := db.QuerySetsByWorkout(context.Background(), "w1")
	if err != nil || len(sets) != 1 {
		t.Fatalf("reading sets: %v (%d sets)", err, len(sets))
	}

	rec := doJSON(t, srv, http.MethodDelete, "/api/v1/sets/"+sets[0].ID, "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	records, err := db.GetPRRecords(context.Background(), "deadlift", "p1")
	if err != nil {
		t.Fatalf("reading records: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("records = %+v, want cleared after deleting only set", records)
	}
}

// TestResolveExercise verifies alias lookup over HTTP.
func TestResolveExercise(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/exercises/resolve?name=OHP", "", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp["exercise_id"] != "overhead_press" {
		t.Errorf("exercise_id = %q, want overhead_press", resp["exercise_id"])
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/exercises/resolve?name=nope", "", false)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown name status = %d, want 404", rec.Code)
	}
}

// TestSuggestionEndpoint verifies the suggestion flow over HTTP, including
// the null suggestion for unlogged exercises.
func TestSuggestionEndpoint(t *testing.T) {
	srv, db := newTestServer(t)
	seedSession(t, db)

	doJSON(t, srv, http.MethodPost, "/api/v1/sets",
		`{"workout_id":"w1","exercise_id":"bench_press","weight_kg":100,"reps":10}`, true)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/suggestions?program_id=p1&exercise_id=bench_press", "", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Suggestion *progression.Suggestion `json:"suggestion"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Suggestion == nil {
		t.Fatal("suggestion = nil, want a value")
	}
	if resp.Suggestion.WeightKg != 102.5 || resp.Suggestion.Reason != "add_load" {
		t.Errorf("suggestion = %+v, want 102.5 add_load", resp.Suggestion)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/suggestions?program_id=p1&exercise_id=squat", "", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp.Suggestion = nil
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Suggestion != nil {
		t.Errorf("suggestion = %+v, want null without history", resp.Suggestion)
	}
}

// TestEnsureTargetsEndpoint verifies bulk default-target creation.
func TestEnsureTargetsEndpoint(t *testing.T) {
	srv, db := newTestServer(t)
	seedSession(t, db)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/programs/p1/targets/ensure",
		`{"exercise_ids":["squat","bicep_curl"]}`, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	targets, err := db.ListTargets(context.Background(), "p1")
	if err != nil {
		t.Fatalf("listing targets: %v", err)
	}
	if len(targets) != 2 {
		t.Fatalf("targets = %d, want 2", len(targets))
	}
}

// TestLogBodyMetric verifies body-weight logging and validation.
func TestLogBodyMetric(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/bodyweight", `{"date":"2026-03-01","weight_kg":80}`, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/bodyweight", `{"date":"2026-03-01","weight_kg":0}`, true)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("zero weight status = %d, want 400", rec.Code)
	}
	rec = doJSON(t, srv, http.MethodPost, "/api/v1/bodyweight", `{"date":"bad","weight_kg":80}`, true)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad date status = %d, want 400", rec.Code)
	}
}
