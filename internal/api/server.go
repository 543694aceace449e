// Package api exposes the progression engine over a JSON HTTP interface.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/alexanderramin/rapport/internal/catalog"
	"github.com/alexanderramin/rapport/internal/service"
)

// Services are the use cases the HTTP adapter drives.
type Services struct {
	Progression  service.ProgressionService
	Outreach     service.OutreachService
	Interactions service.InteractionService
}

// Server represents the HTTP API server
type Server struct {
	router   *chi.Mux
	catalog  *catalog.Catalog
	services Services
	logger   *slog.Logger
	now      func() time.Time
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithClock overrides the clock used to derive outreach display statuses.
func WithClock(now func() time.Time) ServerOption {
	return func(s *Server) { s.now = now }
}

// NewServer creates a new API server
func NewServer(cat *catalog.Catalog, services Services, logger *slog.Logger, opts ...ServerOption) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{catalog: cat, services: services, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/levels", s.handleListLevels)
		r.Get("/paths", s.handleListPaths)

		r.Route("/contacts", func(r chi.Router) {
			r.Get("/", s.handleListRelationships)
			r.Post("/", s.handleEnroll)

			r.Route("/{contactID}", func(r chi.Router) {
				r.Get("/", s.handleGetRelationship)
				r.Get("/levels", s.handleLevelOverview)
				r.Get("/levels/{level}", s.handleLevelStatus)
				r.Post("/level", s.handleSwitchLevel)

				r.Get("/paths", s.handleListPathInstances)
				r.Post("/paths", s.handleStartPath)
				r.Post("/paths/current/steps/{index}", s.handleCompleteStep)
				r.Post("/paths/current/end", s.handleEndPath)
				r.Post("/paths/current/skip", s.handleSkipPath)

				r.Get("/timeline", s.handleTimeline)

				r.Get("/outreaches", s.handleListOutreaches)
				r.Post("/outreaches", s.handleScheduleOutreach)
				r.Get("/interactions", s.handleListInteractions)
				r.Post("/interactions", s.handleLogInteraction)
			})
		})

		r.Post("/outreaches/{outreachID}/complete", s.handleCompleteOutreach)
		r.Delete("/interactions/{interactionID}", s.handleDeleteInteraction)
	})

	s.router = r
}

// loggingMiddleware logs HTTP requests using slog
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			s.logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
