package wizard

import (
	"context"
	"slices"
	"strings"

	"github.com/aretw0/writ/pkg/domain"
)

// Eval reports whether every clause of the condition holds for the state.
func (b *Bundle) Eval(ctx context.Context, c domain.Condition, state *domain.State) bool {
	if c.Answer != "" {
		v := state.Answer(c.Answer)
		if c.Equals != "" && v != c.Equals {
			return false
		}
		if c.NotEquals != "" && v == c.NotEquals {
			return false
		}
		if len(c.In) > 0 && !slices.Contains(c.In, v) {
			return false
		}
	}
	if c.Answered != "" && strings.TrimSpace(state.Answer(c.Answered)) == "" {
		return false
	}
	if c.HasSubdivisions != "" && !b.hasSubdivisions(ctx, state.Answer(c.HasSubdivisions)) {
		return false
	}
	return true
}

func (b *Bundle) hasSubdivisions(ctx context.Context, countryID string) bool {
	if b.geo == nil || countryID == "" {
		return false
	}
	subs, err := b.geo.ListSubdivisions(ctx, countryID)
	return err == nil && len(subs) > 0
}

// ResolveQuestions returns the ordered ids of the questions shown in a section
// for the given answers. The first variant whose condition holds replaces the
// section's own list; questions whose VisibleWhen fails are dropped.
// The shared definition is never modified.
func (b *Bundle) ResolveQuestions(ctx context.Context, sectionID string, state *domain.State) []string {
	s, ok := b.sections[sectionID]
	if !ok {
		return nil
	}
	return b.resolve(ctx, s, state)
}

func (b *Bundle) resolve(ctx context.Context, s *domain.Section, state *domain.State) []string {
	ids := s.QuestionIDs
	for _, v := range s.Variants {
		if b.Eval(ctx, v.When, state) {
			ids = v.QuestionIDs
			break
		}
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if b.IsVisible(ctx, id, state) {
			out = append(out, id)
		}
	}
	return out
}

// IsVisible evaluates a question's own VisibleWhen condition.
func (b *Bundle) IsVisible(ctx context.Context, questionID string, state *domain.State) bool {
	q, ok := b.questions[questionID]
	if !ok {
		return false
	}
	return q.VisibleWhen == nil || b.Eval(ctx, *q.VisibleWhen, state)
}

func (b *Bundle) visibleSet(ctx context.Context, s *domain.Section, state *domain.State) map[string]bool {
	ids := b.resolve(ctx, s, state)
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
