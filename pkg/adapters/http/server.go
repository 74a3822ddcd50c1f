package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/formflow/internal/logging"
	"github.com/aretw0/formflow/internal/ratelimit"
	"github.com/aretw0/formflow/internal/runtime"
	"github.com/aretw0/formflow/internal/sanitize"
	"github.com/aretw0/formflow/pkg/domain"
	"github.com/aretw0/formflow/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Headers carrying flow metadata next to the descriptor body.
const (
	HeaderState     = "X-Formflow-State"
	HeaderNode      = "X-Formflow-Node"
	HeaderRequestID = "X-Request-Id"
)

// Server serves the action API for a FlowEngine.
type Server struct {
	engine   ports.FlowEngine
	basePath string
	limiter  *ratelimit.Limiter
	metrics  http.Handler
	maxInput int
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures the Server.
type Option func(*Server)

// WithBasePath mounts the form routes under path. It must match the renderer's base path.
func WithBasePath(path string) Option {
	return func(s *Server) {
		if path != "" {
			s.basePath = strings.TrimSuffix(path, "/")
		}
	}
}

// WithLimiter throttles form routes per participant.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(s *Server) {
		s.limiter = l
	}
}

// WithMetricsHandler serves h on /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithMaxInputSize caps the byte length of submitted answers.
func WithMaxInputSize(n int) Option {
	return func(s *Server) {
		s.maxInput = n
	}
}

// WithLogger configures request logging.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine ports.FlowEngine, opts ...Option) http.Handler {
	s := &Server{
		engine:   engine,
		basePath: runtime.DefaultBasePath,
		maxInput: sanitize.DefaultMaxInputSize,
		logger:   logging.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(s.requestLogger)

	r.Get("/health", s.health)
	r.Get("/actions.json", s.actionsJSON)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	r.Get("/api/forms/{formID}", s.getForm)
	r.Route(s.basePath+"/{formID}", func(r chi.Router) {
		r.With(s.rateLimit).Get("/", s.render)
		r.Post("/", s.submit)
		r.With(s.rateLimit).Post("/complete", s.complete)
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept-Encoding")
		w.Header().Set("Access-Control-Expose-Headers", HeaderState+", "+HeaderNode+", "+HeaderRequestID)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := s.now()
		next.ServeHTTP(ww, r)

		s.logger.Debug("request",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", s.now().Sub(start),
		)
	})
}

// rateLimit throttles routes whose participant travels in the query string.
// Submissions carry it in the body and call allow themselves.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.allow(w, r, r.URL.Query().Get("account")) {
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) allow(w http.ResponseWriter, r *http.Request, account string) bool {
	if s.limiter.Allow(ratelimit.Key(r, account), s.now()) {
		return true
	}
	w.Header().Set("Retry-After", "1")
	writeMessage(w, http.StatusTooManyRequests, "rate limit exceeded")
	return false
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type actionRule struct {
	PathPattern string `json:"pathPattern"`
	APIPath     string `json:"apiPath"`
}

func (s *Server) actionsJSON(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]actionRule{
		"rules": {{PathPattern: "/forms/*", APIPath: s.basePath + "/*"}},
	})
}

func (s *Server) getForm(w http.ResponseWriter, r *http.Request) {
	form, err := s.engine.Inspect(r.Context(), chi.URLParam(r, "formID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, form)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp, err := s.engine.Handle(r.Context(), domain.Request{
		FormID:        chi.URLParam(r, "formID"),
		ParticipantID: q.Get("account"),
		NodeID:        q.Get("node"),
	})
	s.writeResponse(w, r, resp, err)
}

type submitBody struct {
	Account string  `json:"account"`
	Input   *string `json:"input"`
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	var body submitBody
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			s.logger.Warn("submit: invalid request body", "error", err)
			writeMessage(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	q := r.URL.Query()
	if body.Account == "" {
		body.Account = q.Get("account")
	}
	if !s.allow(w, r, body.Account) {
		return
	}
	if body.Input == nil && q.Has("choice") {
		choice := q.Get("choice")
		body.Input = &choice
	}
	if body.Input != nil {
		clean, err := sanitize.Input(*body.Input, s.maxInput)
		if err != nil {
			s.logger.Warn("submit: input rejected", "error", err, "size", len(*body.Input))
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		body.Input = &clean
	}

	resp, err := s.engine.Handle(r.Context(), domain.Request{
		FormID:        chi.URLParam(r, "formID"),
		ParticipantID: body.Account,
		Submit:        true,
		Input:         body.Input,
		NodeID:        q.Get("node"),
	})
	s.writeResponse(w, r, resp, err)
}

func (s *Server) complete(w http.ResponseWriter, r *http.Request) {
	resp, err := s.engine.Complete(r.Context(), chi.URLParam(r, "formID"))
	s.writeResponse(w, r, resp, err)
}

func (s *Server) writeResponse(w http.ResponseWriter, r *http.Request, resp *domain.Response, err error) {
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set(HeaderState, string(resp.State))
	if resp.NodeID != "" {
		w.Header().Set(HeaderNode, resp.NodeID)
	}
	writeJSON(w, http.StatusOK, resp.Descriptor)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	s.logger.Error("request failed",
		"request_id", w.Header().Get(HeaderRequestID),
		"path", r.URL.Path,
		"status", status,
		"error", err,
	)
	writeMessage(w, status, msg)
}

// StatusFor maps engine errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrFormNotFound), errors.Is(err, domain.ErrNodeNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	// hrefs carry query strings; keep '&' readable.
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		slog.Error("response encode failed", "error", err, "status", status)
	}
}
