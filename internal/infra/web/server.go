package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"asklaw-backend/internal/infra/logging"
	"asklaw-backend/internal/infra/metrics"
	"asklaw-backend/internal/usecase"
)

// Server exposes the two core endpoints (submit + poll), the auth token
// endpoint, health, and /metrics.
type Server struct {
	askUC usecase.AskUseCase
	auth  *AuthManager
	log   *zerolog.Logger
}

// NewServer wires the HTTP surface. auth may be nil, in which case /api/ask
// is open (dev mode or private deployments behind a gateway).
func NewServer(askUC usecase.AskUseCase, auth *AuthManager, logger *zerolog.Logger) *Server {
	return &Server{askUC: askUC, auth: auth, log: logger}
}

func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(metrics.HTTPMiddleware(routePattern))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "AskLaw API is running"})
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	if s.auth != nil {
		r.Post("/api/auth", s.auth.TokenHandler())
	}

	r.Route("/api/ask", func(r chi.Router) {
		if s.auth != nil {
			r.Use(s.auth.Middleware)
		}
		r.Post("/", askSubmitHandler(s.askUC))
		r.Get("/task/{jobID}", askStatusHandler(s.askUC, s.log))
	})

	return r
}

// requestID tags every request with a trace ID for log correlation.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(logging.WithTraceID(r.Context(), id)))
	})
}

// routePattern reports the matched chi pattern so metric cardinality stays
// bounded by routes, not by raw paths.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
