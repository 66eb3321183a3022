// Package web serves the study pages and actions over HTTP.
package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/pedrovi35/EduSync-Pro/internal/ai"
	"github.com/pedrovi35/EduSync-Pro/internal/metrics"
	"github.com/pedrovi35/EduSync-Pro/internal/session"
)

// Deps are the collaborators of a Server.
type Deps struct {
	Session        *session.Session
	Generator      ai.Generator
	Health         *ai.Health
	FlashcardModel string
	Logger         *zap.Logger
	Metrics        *metrics.Metrics
}

// Server owns one session and serialises every request against it.
type Server struct {
	mu   sync.Mutex
	sess *session.Session

	gen            ai.Generator
	health         *ai.Health
	flashcardModel string
	logger         *zap.Logger
	metrics        *metrics.Metrics
	validate       *validator.Validate
}

// New returns a Server for deps.
func New(deps Deps) *Server {
	s := &Server{
		sess:           deps.Session,
		gen:            deps.Generator,
		health:         deps.Health,
		flashcardModel: deps.FlashcardModel,
		logger:         deps.Logger,
		metrics:        deps.Metrics,
		validate:       newValidator(),
	}
	if s.gen == nil {
		s.gen = ai.Disabled{}
	}
	if s.flashcardModel == "" {
		s.flashcardModel = "mistral"
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.accessLog)

	r.Get("/healthz", s.healthz)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Get("/pages/{page}", s.locked(s.getPage))
	r.Post("/profile", s.locked(s.postProfile))

	r.Route("/tasks", func(r chi.Router) {
		r.Post("/", s.locked(s.postTask))
		r.Post("/{id}/move", s.locked(s.moveTask))
		r.Delete("/{id}", s.locked(s.deleteTask))
	})
	r.Route("/flashcards", func(r chi.Router) {
		r.Post("/", s.locked(s.postFlashcard))
		r.Post("/generate", s.locked(s.generateFlashcards))
		r.Delete("/{id}", s.locked(s.deleteFlashcard))
	})
	r.Post("/pomodoro/complete", s.locked(s.completePomodoro))
	r.Put("/notes", s.locked(s.putNotes))
	r.Route("/calendar", func(r chi.Router) {
		r.Post("/", s.locked(s.postEvent))
		r.Delete("/{id}", s.locked(s.deleteEvent))
	})
	r.Route("/ai", func(r chi.Router) {
		r.Post("/chat", s.locked(s.chat))
		r.Get("/status", s.aiStatus)
	})
	r.Post("/reset", s.locked(s.reset))
	return r
}

// locked runs h while holding the session mutex, so each interaction,
// including its save, completes before the next one starts.
func (s *Server) locked(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		h(w, r)
	}
}

// accessLog records method, route, status, size and latency of each request.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		s.metrics.ObserveHTTP(r.Method, route, status, elapsed)

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", elapsed),
			zap.String("request_id", chimiddleware.GetReqID(r.Context())),
		}
		switch {
		case status >= 500:
			s.logger.Error("request failed", fields...)
		case status >= 400:
			s.logger.Warn("request rejected", fields...)
		default:
			s.logger.Debug("request", fields...)
		}
	})
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
