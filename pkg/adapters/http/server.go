package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aretw0/writ"
	"github.com/aretw0/writ/internal/logging"
	"github.com/aretw0/writ/pkg/domain"
	"github.com/aretw0/writ/pkg/observability"
	"github.com/aretw0/writ/pkg/ports"
	"github.com/aretw0/writ/pkg/runner"
	"github.com/aretw0/writ/pkg/session"
)

// Engine is the part of the writ facade the HTTP API drives.
type Engine interface {
	List(ctx context.Context) ([]writ.Summary, error)
	Definition(ctx context.Context, wizardID string) (*domain.Definition, error)
	Geo() ports.GeoProvider
	Start(ctx context.Context, wizardID, sessionID string) (*domain.State, error)
	Render(ctx context.Context, state *domain.State) (*domain.SectionView, error)
	RecordAnswer(ctx context.Context, state *domain.State, questionID, value string) (*domain.State, error)
	SetField(ctx context.Context, state *domain.State, questionID, field, value string) (*domain.State, error)
	AddRow(ctx context.Context, state *domain.State, questionID string) (*domain.State, error)
	RemoveRow(ctx context.Context, state *domain.State, questionID string, index int) (*domain.State, error)
	UpdateRow(ctx context.Context, state *domain.State, questionID string, index int, field, value string) (*domain.State, error)
	Advance(ctx context.Context, state *domain.State) (*domain.State, error)
	Retreat(ctx context.Context, state *domain.State) (*domain.State, error)
	Reset(ctx context.Context, state *domain.State) (*domain.State, error)
	Compose(ctx context.Context, state *domain.State) (*domain.Document, error)
	Submit(ctx context.Context, state *domain.State, contact domain.Contact) (*domain.GeneratedDocument, *domain.State, error)
	Watch(ctx context.Context) (<-chan string, error)
}

var _ Engine = (*writ.Engine)(nil)

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	Engine   Engine
	Sessions *session.Manager
	Metrics  *observability.Metrics
	Logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// WithMetrics records request metrics and mounts /metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) {
		s.Metrics = m
	}
}

// SessionResponse pairs a session state with its rendered section.
type SessionResponse struct {
	State *domain.State       `json:"state"`
	View  *domain.SectionView `json:"view"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type valueRequest struct {
	Value string `json:"value"`
}

type startRequest struct {
	WizardID  string `json:"wizard_id"`
	SessionID string `json:"session_id,omitempty"`
}

type submitRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// NewHandler creates the HTTP handler for the engine.
func NewHandler(engine Engine, sessions *session.Manager, opts ...Option) http.Handler {
	s := &Server{
		Engine:   engine,
		Sessions: sessions,
		Logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)
	if s.Metrics != nil {
		r.Use(s.observe)
		r.Get("/metrics", s.GetMetrics)
	}

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/events", s.SubscribeReload)

	r.Route("/wizards", func(r chi.Router) {
		r.Get("/", s.ListWizards)
		r.Get("/{wizardID}", s.GetWizard)
		r.Get("/{wizardID}/graph", s.GetGraph)
	})

	r.Route("/geo/countries", func(r chi.Router) {
		r.Get("/", s.ListCountries)
		r.Get("/{countryID}/subdivisions", s.ListSubdivisions)
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Post("/", s.StartSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Put("/answers/{questionID}", s.RecordAnswer)
			r.Put("/parties/{questionID}/{field}", s.SetField)
			r.Post("/rows/{questionID}", s.AddRow)
			r.Put("/rows/{questionID}/{index}/{field}", s.UpdateRow)
			r.Delete("/rows/{questionID}/{index}", s.RemoveRow)
			r.Post("/advance", s.Advance)
			r.Post("/retreat", s.Retreat)
			r.Post("/reset", s.Reset)
			r.Get("/preview", s.Preview)
			r.Post("/submit", s.Submit)
			r.Get("/events", s.SubscribeEvents)
		})
	})

	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// observe records the matched route pattern so ids do not explode label cardinality.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		s.Metrics.ObserveHTTP(r.Method, route, code, time.Since(start))
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "writ-http",
		"version": writ.Version,
	})
}

// ListWizards handles GET /wizards.
func (s *Server) ListWizards(w http.ResponseWriter, r *http.Request) {
	list, err := s.Engine.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, list)
}

// GetWizard handles GET /wizards/{wizardID}.
func (s *Server) GetWizard(w http.ResponseWriter, r *http.Request) {
	def, err := s.Engine.Definition(r.Context(), chi.URLParam(r, "wizardID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, def)
}

// ListCountries handles GET /geo/countries.
func (s *Server) ListCountries(w http.ResponseWriter, r *http.Request) {
	countries, err := s.Engine.Geo().ListCountries(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, countries)
}

// ListSubdivisions handles GET /geo/countries/{countryID}/subdivisions.
func (s *Server) ListSubdivisions(w http.ResponseWriter, r *http.Request) {
	countryID := chi.URLParam(r, "countryID")
	if _, ok := s.Engine.Geo().Country(r.Context(), countryID); !ok {
		s.writeJSON(w, http.StatusNotFound, ErrorResponse{Error: fmt.Sprintf("country %q not found", countryID)})
		return
	}
	subs, err := s.Engine.Geo().ListSubdivisions(r.Context(), countryID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if subs == nil {
		subs = []domain.Subdivision{}
	}
	s.writeJSON(w, http.StatusOK, subs)
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, ids)
}

// StartSession handles POST /sessions.
func (s *Server) StartSession(w http.ResponseWriter, r *http.Request) {
	var body startRequest
	if !s.decode(w, r, &body) {
		return
	}
	if body.WizardID == "" {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "wizard_id is required"})
		return
	}

	started, err := s.Engine.Start(r.Context(), body.WizardID, body.SessionID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	state, err := s.Sessions.LoadOrStart(r.Context(), started.SessionID, func(context.Context) (*domain.State, error) {
		return started, nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if state.WizardID != body.WizardID {
		s.writeJSON(w, http.StatusConflict, ErrorResponse{
			Error: fmt.Sprintf("session %q belongs to wizard %q", state.SessionID, state.WizardID),
		})
		return
	}
	s.respond(w, r, http.StatusCreated, state)
}

// GetMetrics handles GET /metrics. The session gauge is read from the store
// on every scrape so deletes and expiries are both reflected.
func (s *Server) GetMetrics(w http.ResponseWriter, r *http.Request) {
	if ids, err := s.Sessions.List(r.Context()); err != nil {
		s.Logger.Warn("failed to count sessions", "err", err)
	} else {
		s.Metrics.ActiveSessions.Set(float64(len(ids)))
	}
	s.Metrics.Handler().ServeHTTP(w, r)
}

// GetSession handles GET /sessions/{sessionID}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	state, err := s.Sessions.Load(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, state)
}

// DeleteSession handles DELETE /sessions/{sessionID}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecordAnswer handles PUT /sessions/{sessionID}/answers/{questionID}.
func (s *Server) RecordAnswer(w http.ResponseWriter, r *http.Request) {
	var body valueRequest
	if !s.decode(w, r, &body) {
		return
	}
	questionID := chi.URLParam(r, "questionID")
	s.update(w, r, func(ctx context.Context, state *domain.State) (*domain.State, error) {
		return s.Engine.RecordAnswer(ctx, state, questionID, body.Value)
	})
}

// SetField handles PUT /sessions/{sessionID}/parties/{questionID}/{field}.
func (s *Server) SetField(w http.ResponseWriter, r *http.Request) {
	var body valueRequest
	if !s.decode(w, r, &body) {
		return
	}
	questionID, field := chi.URLParam(r, "questionID"), chi.URLParam(r, "field")
	s.update(w, r, func(ctx context.Context, state *domain.State) (*domain.State, error) {
		return s.Engine.SetField(ctx, state, questionID, field, body.Value)
	})
}

// AddRow handles POST /sessions/{sessionID}/rows/{questionID}.
func (s *Server) AddRow(w http.ResponseWriter, r *http.Request) {
	questionID := chi.URLParam(r, "questionID")
	s.update(w, r, func(ctx context.Context, state *domain.State) (*domain.State, error) {
		return s.Engine.AddRow(ctx, state, questionID)
	})
}

// UpdateRow handles PUT /sessions/{sessionID}/rows/{questionID}/{index}/{field}.
func (s *Server) UpdateRow(w http.ResponseWriter, r *http.Request) {
	index, ok := s.rowIndex(w, r)
	if !ok {
		return
	}
	var body valueRequest
	if !s.decode(w, r, &body) {
		return
	}
	questionID, field := chi.URLParam(r, "questionID"), chi.URLParam(r, "field")
	s.update(w, r, func(ctx context.Context, state *domain.State) (*domain.State, error) {
		return s.Engine.UpdateRow(ctx, state, questionID, index, field, body.Value)
	})
}

// RemoveRow handles DELETE /sessions/{sessionID}/rows/{questionID}/{index}.
func (s *Server) RemoveRow(w http.ResponseWriter, r *http.Request) {
	index, ok := s.rowIndex(w, r)
	if !ok {
		return
	}
	questionID := chi.URLParam(r, "questionID")
	s.update(w, r, func(ctx context.Context, state *domain.State) (*domain.State, error) {
		return s.Engine.RemoveRow(ctx, state, questionID, index)
	})
}

// Advance handles POST /sessions/{sessionID}/advance.
func (s *Server) Advance(w http.ResponseWriter, r *http.Request) {
	s.update(w, r, s.Engine.Advance)
}

// Retreat handles POST /sessions/{sessionID}/retreat.
func (s *Server) Retreat(w http.ResponseWriter, r *http.Request) {
	s.update(w, r, s.Engine.Retreat)
}

// Reset handles POST /sessions/{sessionID}/reset.
func (s *Server) Reset(w http.ResponseWriter, r *http.Request) {
	s.update(w, r, s.Engine.Reset)
}

// Preview handles GET /sessions/{sessionID}/preview.
func (s *Server) Preview(w http.ResponseWriter, r *http.Request) {
	state, err := s.Sessions.Load(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	doc, err := s.Engine.Compose(r.Context(), state)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

// Submit handles POST /sessions/{sessionID}/submit and answers with the PDF.
func (s *Server) Submit(w http.ResponseWriter, r *http.Request) {
	var body submitRequest
	if !s.decode(w, r, &body) {
		return
	}
	contact := domain.Contact{
		FullName:  body.FullName,
		Email:     body.Email,
		UserAgent: r.UserAgent(),
	}

	var doc *domain.GeneratedDocument
	_, err := s.Sessions.Update(r.Context(), chi.URLParam(r, "sessionID"), func(ctx context.Context, state *domain.State) (*domain.State, error) {
		generated, next, err := s.Engine.Submit(ctx, state, contact)
		if err != nil {
			return state, err
		}
		doc = generated
		return next, nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc.Data); err != nil {
		s.Logger.Warn("failed to write document", "err", err)
	}
}

// update applies a mutation through the session manager and answers with
// the resulting state. A pending validator answers 409 with the unchanged view.
func (s *Server) update(w http.ResponseWriter, r *http.Request, fn session.Mutation) {
	state, err := s.Sessions.Update(r.Context(), chi.URLParam(r, "sessionID"), fn)
	if err != nil {
		if errors.Is(err, domain.ErrValidationPending) && state != nil {
			s.respond(w, r, http.StatusConflict, state)
			return
		}
		s.writeError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, state)
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, code int, state *domain.State) {
	view, err := s.Engine.Render(r.Context(), state)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, code, SessionResponse{State: state, View: view})
}

func (s *Server) rowIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "row index must be an integer"})
		return 0, false
	}
	return index, true
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.Logger.Warn("invalid request body", "path", r.URL.Path, "err", err)
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

// StatusOf maps an engine error to an HTTP status code.
func StatusOf(err error) int {
	var (
		navErr     *domain.NavigationError
		persistErr *domain.PersistenceError
		genErr     *domain.GenerationError
		contactErr *domain.ContactError
	)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrWizardNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrValidationPending),
		errors.Is(err, domain.ErrNotComplete),
		errors.Is(err, domain.ErrWizardComplete):
		return http.StatusConflict
	case errors.As(err, &persistErr):
		return http.StatusBadGateway
	case errors.As(err, &navErr), errors.As(err, &genErr):
		return http.StatusInternalServerError
	case errors.As(err, &contactErr),
		errors.Is(err, domain.ErrUnknownQuestion),
		errors.Is(err, domain.ErrUnknownField),
		errors.Is(err, domain.ErrNotInSection),
		errors.Is(err, domain.ErrCompositeQuestion),
		errors.Is(err, domain.ErrMinimumRows),
		errors.Is(err, domain.ErrRowIndex),
		errors.Is(err, runner.ErrInputTooLarge),
		errors.Is(err, runner.ErrInvalidUTF8):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := StatusOf(err)
	resp := ErrorResponse{Error: err.Error()}

	var contactErr *domain.ContactError
	if errors.As(err, &contactErr) {
		resp.Fields = contactErr.Fields
	}
	if code >= http.StatusInternalServerError {
		s.Logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", code, "err", err)
	} else {
		s.Logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", code, "err", err)
	}
	s.writeJSON(w, code, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("response encode failed", "err", err)
	}
}
