package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/docket/internal/logging"
	"github.com/aretw0/docket/pkg/catalog"
	"github.com/aretw0/docket/pkg/conversation"
	"github.com/aretw0/docket/pkg/domain"
	"github.com/aretw0/docket/pkg/ports"
	"github.com/aretw0/docket/pkg/runner"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Server exposes an orchestrator over JSON HTTP.
type Server struct {
	orch    *conversation.Orchestrator
	inspect ports.SessionStore
	metrics http.Handler
	version string
	logger  *slog.Logger
	Streams *StreamManager
}

// Option configures a Server.
type Option func(*Server)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithVersion sets the version reported by /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// WithInspectStore makes GET /sessions/{id} read from store, typically a
// redacting view, instead of the session manager.
func WithInspectStore(store ports.SessionStore) Option {
	return func(s *Server) {
		s.inspect = store
	}
}

// NewServer creates the server state. Use Handler to obtain the routes.
func NewServer(orch *conversation.Orchestrator, opts ...Option) *Server {
	s := &Server{
		orch:    orch,
		version: "dev",
		logger:  logging.NewNop(),
		Streams: NewStreamManager(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewHandler creates the HTTP handler for an orchestrator.
func NewHandler(orch *conversation.Orchestrator, opts ...Option) http.Handler {
	return NewServer(orch, opts...).Handler()
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/catalog", s.GetCatalog)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Post("/", s.CreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Post("/reset", s.ResetSession)
			r.Post("/messages", s.PostMessage)
			r.Get("/events", s.SubscribeEvents)
		})
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// MessageRequest is the body of POST /sessions/{id}/messages.
type MessageRequest struct {
	Text string `json:"text"`
}

// TurnResponse reports one handled turn.
type TurnResponse struct {
	Outcome   conversation.OutcomeKind `json:"outcome"`
	Field     string                   `json:"field,omitempty"`
	Replies   []string                 `json:"replies"`
	Artifacts []domain.Artifact        `json:"artifacts,omitempty"`
	Failure   string                   `json:"failure,omitempty"`
	Error     string                   `json:"error,omitempty"`
	Session   *domain.Session          `json:"session,omitempty"`
}

// KindInfo is one entry of GET /catalog.
type KindInfo struct {
	Number   int                 `json:"number"`
	Kind     domain.DocumentKind `json:"kind"`
	Label    string              `json:"label"`
	Required []string            `json:"required"`
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, s.logger)
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":      "docket-http",
		"version":  strings.TrimSpace(s.version),
		"strategy": s.orch.Machine().Strategy().Name(),
	}, s.logger)
}

// GetCatalog handles GET /catalog.
func (s *Server) GetCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, kindInfos(s.orch.Machine().Catalog()), s.logger)
}

func kindInfos(cat *catalog.Catalog) []KindInfo {
	kinds := cat.Kinds()
	out := make([]KindInfo, 0, len(kinds))
	for i, k := range kinds {
		out = append(out, KindInfo{
			Number:   i + 1,
			Kind:     k,
			Label:    cat.Label(k),
			Required: cat.RequiredFields(k),
		})
	}
	return out
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.orch.Sessions().List(r.Context())
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "list sessions", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids}, s.logger)
}

// CreateSession handles POST /sessions. The server picks the id.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	sess, err := s.orch.Sessions().Create(r.Context(), id)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "create session", err)
		return
	}
	w.Header().Set("Location", "/sessions/"+id)
	writeJSON(w, http.StatusCreated, sess, s.logger)
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var (
		sess *domain.Session
		err  error
	)
	if s.inspect != nil {
		sess, err = s.inspect.Load(r.Context(), id)
	} else {
		sess, err = s.orch.Sessions().Load(r.Context(), id)
	}
	if errors.Is(err, domain.ErrSessionNotFound) {
		s.fail(w, http.StatusNotFound, "load session", err)
		return
	}
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "load session", err)
		return
	}
	writeJSON(w, http.StatusOK, sess, s.logger)
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.orch.Sessions().Destroy(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, http.StatusInternalServerError, "delete session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ResetSession handles POST /sessions/{id}/reset. It behaves like /menu.
func (s *Server) ResetSession(w http.ResponseWriter, r *http.Request) {
	s.turn(w, r, "/menu")
}

// PostMessage handles POST /sessions/{id}/messages.
func (s *Server) PostMessage(w http.ResponseWriter, r *http.Request) {
	var body MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.fail(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	clean, err := runner.SanitizeInput(strings.TrimSpace(body.Text))
	if err != nil {
		s.logger.Warn("input rejected", "err", err, "size", len(body.Text))
		s.fail(w, http.StatusBadRequest, "invalid input", err)
		return
	}
	if clean == "" {
		s.fail(w, http.StatusBadRequest, "invalid input", errors.New("text is required"))
		return
	}
	s.turn(w, r, clean)
}

func (s *Server) turn(w http.ResponseWriter, r *http.Request, text string) {
	id := chi.URLParam(r, "id")
	rec := &recorder{streams: s.Streams}
	out, err := s.orch.HandleTurn(r.Context(), conversation.Turn{SessionID: id, Text: text}, rec)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, conversation.ErrEmptySessionID) {
			status = http.StatusBadRequest
		}
		s.fail(w, status, "handle turn", err)
		return
	}

	resp := TurnResponse{
		Outcome: out.Kind,
		Field:   out.Field,
		Replies: rec.texts(),
		Session: out.Session,
	}
	resp.Artifacts = rec.artifacts()
	if out.Failure != nil {
		resp.Failure = string(out.Failure.Kind)
		resp.Error = out.Failure.Error()
	}
	writeJSON(w, http.StatusOK, resp, s.logger)
}

func (s *Server) fail(w http.ResponseWriter, status int, msg string, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error(msg, "err", err)
	}
	writeJSON(w, status, map[string]string{"error": fmt.Sprintf("%s: %v", msg, err)}, s.logger)
}

func writeJSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encode failed", "err", err)
	}
}
