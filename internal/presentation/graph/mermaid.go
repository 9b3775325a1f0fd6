package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/writ/pkg/domain"
)

// GraphOverlay contains session data to visualize on the graph.
type GraphOverlay struct {
	Visited []string
	Current string
}

// OverlayFor builds an overlay from a session's navigation history.
func OverlayFor(state *domain.State) *GraphOverlay {
	if state == nil {
		return nil
	}
	return &GraphOverlay{
		Visited: append([]string(nil), state.History...),
		Current: state.CurrentSectionID,
	}
}

// GenerateMermaid produces a Mermaid flowchart of a wizard's sections.
// It applies semantic styling:
// - Entry: ((Circle))
// - Terminal: ([Stadium])
// - Section with variants: {{Hexagon}}
// - Default: [Rectangle]
// Links to sections that do not exist are drawn dotted.
func GenerateMermaid(entry string, sections []domain.Section, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	known := make(map[string]bool, len(sections))
	for _, s := range sections {
		known[s.ID] = true
	}

	for _, s := range sections {
		safeID := sanitizeMermaidID(s.ID)

		opener, closer := "[", "]"
		switch {
		case s.ID == entry:
			opener, closer = "((", "))"
		case s.IsTerminal():
			opener, closer = "([", "])"
		case len(s.Variants) > 0:
			opener, closer = "{{", "}}"
		}

		label := s.ID
		if s.Title != "" && s.Title != s.ID {
			label = fmt.Sprintf("%s <br/> %s", s.ID, escapeLabel(s.Title))
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, label, closer)

		if s.IsTerminal() {
			continue
		}
		arrow := "-->"
		if !known[s.NextSectionID] {
			arrow = "-. missing .->"
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", safeID, arrow, sanitizeMermaidID(s.NextSectionID))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text for contrast on both light and dark themes.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.Visited {
			safeID := sanitizeMermaidID(id)
			if safeID == "" || seen[safeID] || !known[id] || id == overlay.Current {
				continue
			}
			seen[safeID] = true
			fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
		}

		if overlay.Current != "" && known[overlay.Current] {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.Current))
		}
	}

	return sb.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
