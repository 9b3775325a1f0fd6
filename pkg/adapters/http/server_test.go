package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/writ"
	"github.com/aretw0/writ/pkg/adapters/memory"
	"github.com/aretw0/writ/pkg/domain"
	"github.com/aretw0/writ/pkg/observability"
	"github.com/aretw0/writ/pkg/runner"
	"github.com/aretw0/writ/pkg/session"
	"github.com/aretw0/writ/pkg/wizard"
)

func quickDefinition() domain.Definition {
	b := wizard.NewBuilder("quick").Title("Quick Letter").
		Template("# Letter\n\nDear {{ answer \"name\" }}.")
	b.Question("name", domain.KindText).Prompt("Recipient")
	b.Question("note", domain.KindText).Prompt("Note")
	b.Section("main").Title("Recipient").Ask("name").Require("name").Next("extra")
	b.Section("extra").Title("Extra").Ask("note")
	return b.Definition()
}

type fixture struct {
	handler  http.Handler
	sessions *session.Manager
	sink     *memory.ContactSink
	metrics  *observability.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		sessions: session.NewManager(memory.NewStore()),
		sink:     memory.NewContactSink(),
		metrics:  observability.NewMetrics("test"),
	}
	eng, err := writ.New(
		writ.WithoutBuiltins(),
		writ.WithLoader(memory.NewLoader(quickDefinition())),
		writ.WithContactSink(f.sink),
	)
	require.NoError(t, err)
	f.handler = NewHandler(eng, f.sessions, WithMetrics(f.metrics))
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func decodeSession(t *testing.T, w *httptest.ResponseRecorder) SessionResponse {
	t.Helper()
	var resp SessionResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.NotNil(t, resp.State)
	require.NotNil(t, resp.View)
	return resp
}

func TestHealthAndInfo(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = f.do(t, http.MethodGet, "/info", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), writ.Version)
}

func TestWizards(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/wizards", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []writ.Summary
	require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, "quick", list[0].ID)
	assert.Equal(t, 2, list[0].Sections)

	w = f.do(t, http.MethodGet, "/wizards/quick", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var def domain.Definition
	require.NoError(t, json.NewDecoder(w.Body).Decode(&def))
	assert.Equal(t, "main", def.Entry)

	w = f.do(t, http.MethodGet, "/wizards/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodGet, "/wizards/quick/graph", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "main --> extra")
}

func TestGeo(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/geo/countries", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var countries []domain.Country
	require.NoError(t, json.NewDecoder(w.Body).Decode(&countries))
	require.NotEmpty(t, countries)

	w = f.do(t, http.MethodGet, "/geo/countries/"+countries[0].ID+"/subdivisions", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/geo/countries/atlantis/subdivisions", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionLifecycle(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/sessions", map[string]string{"wizard_id": "quick", "session_id": "s1"})
	require.Equal(t, http.StatusCreated, w.Code)
	resp := decodeSession(t, w)
	assert.Equal(t, "main", resp.State.CurrentSectionID)
	assert.False(t, resp.View.CanAdvance)

	// Pending validator: 409 and the view is unchanged.
	w = f.do(t, http.MethodPost, "/sessions/s1/advance", nil)
	require.Equal(t, http.StatusConflict, w.Code)
	resp = decodeSession(t, w)
	assert.Equal(t, "main", resp.View.SectionID)

	w = f.do(t, http.MethodPut, "/sessions/s1/answers/name", map[string]string{"value": "Ann"})
	require.Equal(t, http.StatusOK, w.Code)
	resp = decodeSession(t, w)
	assert.True(t, resp.View.CanAdvance)

	w = f.do(t, http.MethodPost, "/sessions/s1/advance", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decodeSession(t, w)
	assert.Equal(t, "extra", resp.State.CurrentSectionID)
	assert.True(t, resp.View.Terminal)

	w = f.do(t, http.MethodPost, "/sessions/s1/retreat", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "main", decodeSession(t, w).State.CurrentSectionID)

	w = f.do(t, http.MethodGet, "/sessions/s1/preview", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Dear Ann.")

	w = f.do(t, http.MethodDelete, "/sessions/s1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = f.do(t, http.MethodGet, "/sessions/s1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmit(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/sessions", map[string]string{"wizard_id": "quick", "session_id": "s1"})

	w := f.do(t, http.MethodPost, "/sessions/s1/submit", map[string]string{"full_name": "Ann", "email": "ann@example.com"})
	assert.Equal(t, http.StatusConflict, w.Code, "incomplete wizard")

	f.do(t, http.MethodPut, "/sessions/s1/answers/name", map[string]string{"value": "Ann"})
	f.do(t, http.MethodPost, "/sessions/s1/advance", nil)
	w = f.do(t, http.MethodPost, "/sessions/s1/advance", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, decodeSession(t, w).State.Complete)

	w = f.do(t, http.MethodPut, "/sessions/s1/answers/note", map[string]string{"value": "late"})
	assert.Equal(t, http.StatusConflict, w.Code, "a complete wizard is read-only")

	w = f.do(t, http.MethodPost, "/sessions/s1/submit", map[string]string{"full_name": "Ann", "email": "not-an-email"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	var errResp ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&errResp))
	assert.Contains(t, errResp.Fields, "email")

	w = f.do(t, http.MethodPost, "/sessions/s1/submit", map[string]string{"full_name": "Ann Lee", "email": "ann@example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `attachment; filename="quick_`)
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))
	require.Len(t, f.sink.Contacts(), 1)
	assert.Equal(t, "quick", f.sink.Contacts()[0].DocumentType)

	saved, err := f.sessions.Load(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSubmitted, saved.Status)
}

func TestSubmit_PersistenceFailure(t *testing.T) {
	f := newFixture(t)
	f.sink.Err = errors.New("db down")
	f.do(t, http.MethodPost, "/sessions", map[string]string{"wizard_id": "quick", "session_id": "s1"})
	f.do(t, http.MethodPut, "/sessions/s1/answers/name", map[string]string{"value": "Ann"})
	f.do(t, http.MethodPost, "/sessions/s1/advance", nil)
	f.do(t, http.MethodPost, "/sessions/s1/advance", nil)

	w := f.do(t, http.MethodPost, "/sessions/s1/submit", map[string]string{"full_name": "Ann Lee", "email": "ann@example.com"})
	assert.Equal(t, http.StatusBadGateway, w.Code)

	saved, err := f.sessions.Load(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusComplete, saved.Status)
}

func TestBadInput(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/sessions", map[string]string{"wizard_id": "quick", "session_id": "s1"})

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		code   int
	}{
		{"Unknown Wizard", http.MethodPost, "/sessions", map[string]string{"wizard_id": "nope"}, http.StatusNotFound},
		{"Missing Wizard", http.MethodPost, "/sessions", map[string]string{}, http.StatusBadRequest},
		{"Unknown Question", http.MethodPut, "/sessions/s1/answers/ghost", map[string]string{"value": "x"}, http.StatusBadRequest},
		{"Question Of Another Section", http.MethodPut, "/sessions/s1/answers/note", map[string]string{"value": "x"}, http.StatusBadRequest},
		{"Bad Row Index", http.MethodDelete, "/sessions/s1/rows/name/first", nil, http.StatusBadRequest},
		{"Unknown Session", http.MethodPost, "/sessions/nope/advance", nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.code, w.Code, w.Body.String())
		})
	}

	req := httptest.NewRequest(http.MethodPut, "/sessions/s1/answers/name", strings.NewReader("{"))
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusOf(domain.ErrSessionNotFound))
	assert.Equal(t, http.StatusConflict, StatusOf(domain.ErrValidationPending))
	assert.Equal(t, http.StatusConflict, StatusOf(domain.ErrWizardComplete))
	assert.Equal(t, http.StatusBadRequest, StatusOf(domain.ErrNotInSection))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(&domain.NavigationError{WizardID: "w", From: "a", To: "b"}))
	assert.Equal(t, http.StatusBadGateway, StatusOf(&domain.PersistenceError{Err: errors.New("x")}))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(&domain.GenerationError{Err: errors.New("x")}))
	assert.Equal(t, http.StatusBadRequest, StatusOf(runner.ErrInputTooLarge))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("boom")))
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodGet, "/health", nil)

	w := f.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `route="/health"`)
	assert.Contains(t, w.Body.String(), "test_active_sessions 0")
}

func TestMetrics_ActiveSessionsFollowStore(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/sessions", map[string]string{"wizard_id": "quick", "session_id": "s1"})
	f.do(t, http.MethodPost, "/sessions", map[string]string{"wizard_id": "quick", "session_id": "s1"})
	f.do(t, http.MethodPost, "/sessions", map[string]string{"wizard_id": "quick", "session_id": "s2"})

	w := f.do(t, http.MethodGet, "/metrics", nil)
	assert.Contains(t, w.Body.String(), "test_active_sessions 2")

	f.do(t, http.MethodDelete, "/sessions/s1", nil)
	f.do(t, http.MethodDelete, "/sessions/s1", nil)
	f.do(t, http.MethodDelete, "/sessions/ghost", nil)

	w = f.do(t, http.MethodGet, "/metrics", nil)
	assert.Contains(t, w.Body.String(), "test_active_sessions 1", "repeated and unknown deletes do not drift")
}

func TestSubscribeEvents(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.handler)
	defer srv.Close()

	f.do(t, http.MethodPost, "/sessions", map[string]string{"wizard_id": "quick", "session_id": "s1"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/sessions/s1/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: ping\n", line)

	f.do(t, http.MethodPut, "/sessions/s1/answers/name", map[string]string{"value": "Ann"})

	for {
		line, err = reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "data: {") {
			break
		}
	}
	var diff domain.StateDiff
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &diff))
	assert.Equal(t, "s1", diff.SessionID)
	require.NotNil(t, diff.Answers["name"])
	assert.Equal(t, "Ann", *diff.Answers["name"])
}

func TestSubscribeEvents_UnknownSession(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/sessions/nope/events", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
