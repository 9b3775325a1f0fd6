package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/writ/internal/presentation/graph"
	"github.com/aretw0/writ/pkg/domain"
)

// GetGraph handles GET /wizards/{wizardID}/graph. With ?session= the diagram
// highlights the sections that session visited.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	def, err := s.Engine.Definition(r.Context(), chi.URLParam(r, "wizardID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var overlay *graph.GraphOverlay
	if id := r.URL.Query().Get("session"); id != "" {
		var state *domain.State
		state, err = s.Sessions.Load(r.Context(), id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if state.WizardID == def.ID {
			overlay = graph.OverlayFor(state)
		}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(graph.GenerateMermaid(def.Entry, def.Sections, overlay)))
}
