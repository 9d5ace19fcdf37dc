package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/sentinelcore/inehss/internal/api/handler"
	mw "github.com/sentinelcore/inehss/internal/api/middleware"
	"github.com/sentinelcore/inehss/internal/config"
	"github.com/sentinelcore/inehss/internal/core"
	"github.com/sentinelcore/inehss/internal/media"
	"github.com/sentinelcore/inehss/internal/realtime"
)

type Server struct {
	router      chi.Router
	logger      zerolog.Logger
	services    *core.Services
	pool        *pgxpool.Pool
	hub         *realtime.Hub
	mediaStore  *media.Store
	cfg         *config.Config
	auditLogger *mw.AuditLogger
}

func NewServer(logger zerolog.Logger, pool *pgxpool.Pool, hub *realtime.Hub, cfg *config.Config) *Server {
	services := core.NewServices(pool, cfg.TrackingPrefix, hub)
	auditLogger := mw.NewAuditLogger(pool, logger)
	mediaStore := media.NewStore(logger, cfg.MediaEndpoint, cfg.MediaBucket, cfg.MediaAccessKey, cfg.MediaSecretKey)

	s := &Server{
		router:      chi.NewRouter(),
		logger:      logger,
		services:    services,
		pool:        pool,
		hub:         hub,
		mediaStore:  mediaStore,
		cfg:         cfg,
		auditLogger: auditLogger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Close releases server-owned background workers.
func (s *Server) Close() {
	s.auditLogger.Close()
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.Metrics)
}

func (s *Server) setupRoutes() {
	// Prometheus metrics endpoint
	s.router.Handle("/metrics", promhttp.Handler())

	// Health check endpoints
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)

	report := handler.NewReport(s.services.Report, s.services.Propagator)
	template := handler.NewFormTemplate(s.services.FormTemplate)
	event := handler.NewEvent(s.services.Event)
	live := handler.NewLive(s.hub)

	// Public surface: report intake and tracking, active public form
	// definitions, the map feed, and the live WebSocket.
	s.router.Route("/api/v1/public", func(r chi.Router) {
		r.Post("/reports", report.Create)
		r.Get("/reports/track/{code}", report.Track)
		r.Get("/forms", template.List)
		r.Get("/events", event.List)
		r.Get("/events/{id}", event.Get)
		r.Get("/events/{id}/media", event.ListMedia)
		r.Get("/events/live", live.Connect)
	})

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.Auth(s.pool))
		r.Use(s.auditLogger.Middleware)

		// Audit logs
		audit := handler.NewAudit(s.pool)
		r.Get("/audit-logs", audit.List)

		// Form templates
		r.Get("/form-templates", template.List)
		r.Post("/form-templates", template.Create)
		r.Get("/form-templates/{id}", template.Get)
		r.Put("/form-templates/{id}", template.Update)
		r.Delete("/form-templates/{id}", template.Delete)

		// Reports
		r.Get("/reports", report.List)
		r.Get("/reports/{id}", report.Get)
		r.Put("/reports/{id}/status", report.UpdateStatus)
		r.Delete("/reports/{id}", report.Delete)

		// Assignments
		assignment := handler.NewAssignment(s.services.Assignment)
		r.Get("/assignments", assignment.List)
		r.Post("/assignments", assignment.Create)
		r.Get("/assignments/{id}", assignment.Get)
		r.Post("/assignments/{id}/accept", assignment.Accept)
		r.Post("/assignments/{id}/start", assignment.Start)
		r.Post("/assignments/{id}/submit-review", assignment.SubmitReview)
		r.Post("/assignments/{id}/request-revision", assignment.RequestRevision)
		r.Post("/assignments/{id}/approve", assignment.Approve)
		r.Post("/assignments/{id}/decline", assignment.Decline)
		r.Post("/assignments/{id}/escalate", assignment.Escalate)
		r.Post("/assignments/{id}/reassign", assignment.Reassign)
		r.Post("/assignments/{id}/complete", assignment.Complete)

		// Submissions
		submission := handler.NewSubmission(s.services.Submission)
		r.Get("/assignments/{id}/submissions", submission.ListByAssignment)
		r.Post("/assignments/{id}/submissions", submission.Create)
		r.Get("/submissions/{id}", submission.Get)

		// Attachments
		attachment := handler.NewAttachment(s.services.Attachment, s.mediaStore)
		r.Get("/reports/{id}/attachments", attachment.ListByReport)
		r.Post("/reports/{id}/attachments", attachment.UploadToReport)
		r.Get("/submissions/{id}/attachments", attachment.ListBySubmission)
		r.Post("/submissions/{id}/attachments", attachment.UploadToSubmission)

		// Events (full detail for staff tooling)
		r.Get("/events", event.List)
		r.Get("/events/{id}", event.Get)
		r.Get("/events/{id}/media", event.ListMedia)

		// Officers
		officer := handler.NewOfficer(s.services.User)
		r.Get("/officers", officer.List)

		// Cross-resource search for the staff console
		search := handler.NewSearch(s.services.Search)
		r.Get("/search", search.Search)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if err := s.pool.Ping(ctx); err != nil {
		checks["db"] = err.Error()
		healthy = false
	} else {
		checks["db"] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(checks)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
