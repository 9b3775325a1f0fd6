package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// SubscribeEvents handles GET /sessions/{sessionID}/events (SSE). Each
// message is a JSON StateDiff produced by a change to the session.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	if _, err := s.Sessions.Load(r.Context(), sessionID); err != nil {
		s.writeError(w, r, err)
		return
	}

	diffs, cancel := s.Sessions.Watch(sessionID)
	defer cancel()

	streamHeaders(w)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
	s.Logger.Debug("sse client connected", "session_id", sessionID)

	for {
		select {
		case <-r.Context().Done():
			s.Logger.Debug("sse client disconnected", "session_id", sessionID)
			return
		case diff, ok := <-diffs:
			if !ok {
				return
			}
			data, err := json.Marshal(diff)
			if err != nil {
				s.Logger.Error("failed to encode state diff", "err", err)
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}

// SubscribeReload handles GET /events (SSE): one "reload" event per bundle
// changed on disk.
func (s *Server) SubscribeReload(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	events, err := s.Engine.Watch(r.Context())
	if err != nil {
		s.writeJSON(w, http.StatusNotImplemented, ErrorResponse{Error: err.Error()})
		return
	}

	streamHeaders(w)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case id, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: reload\ndata: %s\n\n", id)
			flusher.Flush()
		}
	}
}

func streamHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
}
