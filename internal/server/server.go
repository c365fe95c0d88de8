package server

import (
	"log/slog"
	"net/http"

	"github.com/Ranveer112/valens/internal/guide"
	"github.com/Ranveer112/valens/internal/ingest"
	"github.com/Ranveer112/valens/internal/storage"
	"github.com/go-chi/chi/v5"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db       *storage.DB
	engine   *guide.Engine
	panel    *guide.Panel
	importer *ingest.Provider
	log      *slog.Logger
	apiKey   string
	router   chi.Router
}

// New creates a new Server with all routes configured.
func New(db *storage.DB, engine *guide.Engine, panel *guide.Panel, importer *ingest.Provider, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		db:       db,
		engine:   engine,
		panel:    panel,
		importer: importer,
		log:      log,
		apiKey:   apiKey,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// MountMCP exposes the MCP transport under /mcp.
func (s *Server) MountMCP(h http.Handler) {
	s.router.Mount("/mcp", h)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestID)
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Read endpoints (no auth — tsnet handles access)
	s.router.Get("/api/v1/exercises", s.handleListExercises)
	s.router.Get("/api/v1/exercises/{id}", s.handleGetExercise)
	s.router.Get("/api/v1/routines", s.handleListRoutines)
	s.router.Get("/api/v1/routines/{id}", s.handleGetRoutine)
	s.router.Get("/api/v1/sessions", s.handleListSessions)
	s.router.Get("/api/v1/sessions/{id}", s.handleGetSession)
	s.router.Get("/api/v1/guide", s.handleGuideStatus)
	s.router.Get("/api/v1/instruments", s.handleInstrumentStatus)

	// Write endpoints (API key required)
	s.router.Group(func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))

		r.Post("/api/v1/exercises", s.handleCreateExercise)
		r.Put("/api/v1/exercises/{id}", s.handleUpdateExercise)
		r.Delete("/api/v1/exercises/{id}", s.handleDeleteExercise)

		r.Post("/api/v1/routines", s.handleCreateRoutine)
		r.Put("/api/v1/routines/{id}", s.handleUpdateRoutine)
		r.Delete("/api/v1/routines/{id}", s.handleDeleteRoutine)

		r.Post("/api/v1/import", s.handleImport)

		r.Post("/api/v1/sessions", s.handleCreateSession)
		r.Put("/api/v1/sessions/{id}", s.handleUpdateSession)
		r.Delete("/api/v1/sessions/{id}", s.handleDeleteSession)

		r.Post("/api/v1/sessions/{id}/guide", s.handleGuideStart)
		r.Post("/api/v1/guide/next", s.handleGuideNext)
		r.Post("/api/v1/guide/previous", s.handleGuidePrevious)
		r.Post("/api/v1/guide/timer", s.handleGuideTimer)
		r.Delete("/api/v1/guide", s.handleGuideExit)

		r.Post("/api/v1/instruments/stopwatch", s.handleStopwatch)
		r.Post("/api/v1/instruments/metronome", s.handleMetronome)
		r.Post("/api/v1/instruments/timer", s.handleTimer)
	})
}
