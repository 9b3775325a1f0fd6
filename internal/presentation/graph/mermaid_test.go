package graph_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/writ/internal/presentation/graph"
	"github.com/aretw0/writ/pkg/domain"
)

func sections() []domain.Section {
	return []domain.Section{
		{ID: "parties", Title: "Parties", NextSectionID: "terms"},
		{ID: "terms", Title: "Terms", NextSectionID: "sign", Variants: []domain.Variant{{QuestionIDs: []string{"x"}}}},
		{ID: "sign", Title: "Sign \"here\""},
	}
}

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		sections []domain.Section
		contains []string
	}{
		{
			name:     "Shapes",
			sections: sections(),
			contains: []string{
				`parties(("parties <br/> Parties"))`,
				`terms{{"terms <br/> Terms"}}`,
				`sign(["sign <br/> Sign 'here'"])`,
			},
		},
		{
			name:     "Links",
			sections: sections(),
			contains: []string{
				"parties --> terms",
				"terms --> sign",
			},
		},
		{
			name: "Missing Target",
			sections: []domain.Section{
				{ID: "parties", NextSectionID: "ghost"},
			},
			contains: []string{
				"parties -. missing .-> ghost",
			},
		},
		{
			name: "Sanitized IDs",
			sections: []domain.Section{
				{ID: "parties", NextSectionID: "step-2.final"},
				{ID: "step-2.final"},
			},
			contains: []string{
				"parties --> step_2_final",
				`step_2_final(["step-2.final"])`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid("parties", tt.sections, nil)
			assert.True(t, strings.HasPrefix(got, "graph TD\n"))
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
			assert.NotContains(t, got, "classDef")
		})
	}
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	state := domain.NewState("s1", "nda", "parties")
	state.History = []string{"parties", "terms", "parties"}
	state.CurrentSectionID = "terms"

	got := graph.GenerateMermaid("parties", sections(), graph.OverlayFor(state))

	assert.Contains(t, got, "classDef visited")
	assert.Equal(t, 1, strings.Count(got, "class parties visited;"))
	assert.Contains(t, got, "class terms current;")
	assert.NotContains(t, got, "class terms visited;")
	assert.NotContains(t, got, "class sign")
}

func TestOverlayFor_Nil(t *testing.T) {
	assert.Nil(t, graph.OverlayFor(nil))
}
