package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/writ/pkg/domain"
)

// Render binds the current section's resolved questions to the state.
func (e *Engine) Render(ctx context.Context, state *domain.State) (*domain.SectionView, error) {
	sec, err := e.section(state)
	if err != nil {
		return nil, err
	}

	ids := e.bundle.ResolveQuestions(ctx, sec.ID, state)
	views := make([]domain.QuestionView, 0, len(ids))
	for _, id := range ids {
		q, _ := e.bundle.Question(id)
		view, err := e.renderQuestion(ctx, q, state)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}

	return &domain.SectionView{
		WizardID:    e.bundle.ID(),
		SectionID:   sec.ID,
		Title:       sec.Title,
		Description: sec.Description,
		Questions:   views,
		CanAdvance:  !state.Complete && e.CanAdvance(ctx, state),
		CanRetreat:  state.CanRetreat(),
		Terminal:    sec.IsTerminal(),
		Complete:    state.Complete,
		Step:        len(state.History),
		Total:       len(e.bundle.Sections()),
	}, nil
}

// renderQuestion dispatches on the question kind.
func (e *Engine) renderQuestion(ctx context.Context, q domain.Question, state *domain.State) (domain.QuestionView, error) {
	view := domain.QuestionView{Question: q}
	switch q.Kind {
	case domain.KindCompositeParty:
		view.Party = state.Parties[q.ID].Clone()
		if view.Party == nil {
			view.Party = q.NewRecord()
		}
	case domain.KindCompositeList:
		for _, row := range state.Lists[q.ID] {
			view.Rows = append(view.Rows, row.Clone())
		}
	case domain.KindSelect, domain.KindRadio:
		view.Value = state.Answer(q.ID)
		choices, err := e.Choices(ctx, q, state)
		if err != nil {
			return view, err
		}
		view.Choices = choices
	default:
		view.Value = state.Answer(q.ID)
	}
	return view, nil
}

// Choices computes the option set of a select or radio question. Location
// selects read the geographic provider; a subdivision list follows the
// country currently chosen in the parent question.
func (e *Engine) Choices(ctx context.Context, q domain.Question, state *domain.State) ([]domain.Option, error) {
	g := e.bundle.Geo()
	if q.Source == "" || g == nil {
		out := make([]domain.Option, len(q.Options))
		for i, o := range q.Options {
			out[i] = domain.Option{Value: o, Label: o}
		}
		return out, nil
	}

	switch q.Source {
	case domain.SourceCountries:
		countries, err := g.ListCountries(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list countries: %w", err)
		}
		out := make([]domain.Option, len(countries))
		for i, c := range countries {
			out[i] = domain.Option{Value: c.ID, Label: c.Name}
		}
		return out, nil
	case domain.SourceSubdivisions:
		country := state.Answer(q.DependsOn)
		if country == "" {
			return []domain.Option{}, nil
		}
		subs, err := g.ListSubdivisions(ctx, country)
		if err != nil {
			return nil, fmt.Errorf("failed to list subdivisions of %q: %w", country, err)
		}
		out := make([]domain.Option, len(subs))
		for i, s := range subs {
			out[i] = domain.Option{Value: s.ID, Label: s.Name}
		}
		return out, nil
	}
	return nil, nil
}
