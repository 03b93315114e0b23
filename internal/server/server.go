package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/liftlog/internal/bodyweight"
	"github.com/claude/liftlog/internal/catalog"
	"github.com/claude/liftlog/internal/prengine"
	"github.com/claude/liftlog/internal/progression"
	"github.com/claude/liftlog/internal/storage"
	"github.com/go-chi/chi/v5"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db     *storage.DB
	engine *prengine.Engine
	prog   *progression.Store
	bw     *bodyweight.Calculator
	cat    *catalog.Catalog
	log    *slog.Logger
	apiKey string
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(db *storage.DB, engine *prengine.Engine, prog *progression.Store, bw *bodyweight.Calculator, cat *catalog.Catalog, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		db:     db,
		engine: engine,
		prog:   prog,
		bw:     bw,
		cat:    cat,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Read endpoints
		r.Get("/exercises", s.handleListExercises)
		r.Get("/exercises/resolve", s.handleResolveExercise)
		r.Get("/programs", s.handleListPrograms)
		r.Get("/workouts", s.handleListWorkouts)
		r.Get("/workouts/{id}", s.handleGetWorkout)
		r.Get("/sets/history", s.handleSetHistory)
		r.Get("/prs", s.handleGetPRs)
		r.Get("/targets", s.handleListTargets)
		r.Get("/suggestions", s.handleGetSuggestion)
		r.Get("/bodyweight", s.handleListBodyMetrics)

		// Mutating endpoints (API key required)
		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(s.apiKey, s.log))
			r.Post("/programs", s.handleCreateProgram)
			r.Delete("/programs/{id}", s.handleDeleteProgram)
			r.Post("/programs/{id}/targets/ensure", s.handleEnsureTargets)
			r.Put("/targets", s.handleUpsertTarget)
			r.Post("/workouts", s.handleStartWorkout)
			r.Post("/workouts/{id}/finish", s.handleFinishWorkout)
			r.Post("/sets", s.handleLogSet)
			r.Patch("/sets/{id}", s.handleEditSet)
			r.Delete("/sets/{id}", s.handleDeleteSet)
			r.Post("/prs/recompute", s.handleRecompute)
			r.Post("/bodyweight", s.handleLogBodyMetric)
		})
	})
}
