package runtime

import (
	"context"
	"fmt"
	"slices"

	"github.com/aretw0/writ/pkg/domain"
	"github.com/aretw0/writ/pkg/runner"
)

// RecordAnswer overwrites the answer of a scalar question shown by the current
// section. When the value changes, every question declared as depending on it
// is cleared. A complete wizard rejects every write until it is retreated.
func (e *Engine) RecordAnswer(ctx context.Context, state *domain.State, questionID, value string) (*domain.State, error) {
	q, err := e.question(questionID)
	if err != nil {
		return state, err
	}
	if q.Kind.IsComposite() {
		return state, fmt.Errorf("%w: %q is a %s question", domain.ErrCompositeQuestion, q.ID, q.Kind)
	}
	if err := e.editable(ctx, state, q.ID); err != nil {
		return state, err
	}
	clean, err := runner.SanitizeInput(value)
	if err != nil {
		return state, fmt.Errorf("answer to %q: %w", q.ID, err)
	}

	next := state.Clone()
	old, had := next.Answers[q.ID]
	next.Answers[q.ID] = clean
	if !had || old != clean {
		for _, dep := range e.bundle.Dependents(q.ID) {
			e.clearAnswer(next, dep)
		}
	}
	e.touch(next)
	return next, nil
}

func (e *Engine) clearAnswer(state *domain.State, questionID string) {
	q, ok := e.bundle.Question(questionID)
	if !ok {
		return
	}
	switch q.Kind {
	case domain.KindCompositeParty:
		state.Parties[q.ID] = q.NewRecord()
	case domain.KindCompositeList:
		state.Lists[q.ID] = []domain.Record{q.NewRecord()}
	default:
		delete(state.Answers, q.ID)
	}
	e.logger.Debug("cascade cleared answer", "session_id", state.SessionID, "question", q.ID)
}

// SetField writes one field of a compositeParty record.
func (e *Engine) SetField(ctx context.Context, state *domain.State, questionID, field, value string) (*domain.State, error) {
	q, err := e.composite(questionID, domain.KindCompositeParty, field)
	if err != nil {
		return state, err
	}
	if err := e.editable(ctx, state, q.ID); err != nil {
		return state, err
	}
	clean, err := runner.SanitizeInput(value)
	if err != nil {
		return state, fmt.Errorf("%s.%s: %w", q.ID, field, err)
	}

	next := state.Clone()
	rec := next.Parties[q.ID]
	if rec == nil {
		rec = q.NewRecord()
		next.Parties[q.ID] = rec
	}
	rec[field] = clean
	e.touch(next)
	return next, nil
}

// AddRow appends a default-valued row to a compositeList.
func (e *Engine) AddRow(ctx context.Context, state *domain.State, questionID string) (*domain.State, error) {
	q, err := e.composite(questionID, domain.KindCompositeList, "")
	if err != nil {
		return state, err
	}
	if err := e.editable(ctx, state, q.ID); err != nil {
		return state, err
	}
	next := state.Clone()
	next.Lists[q.ID] = append(next.Lists[q.ID], q.NewRecord())
	e.touch(next)
	return next, nil
}

// RemoveRow deletes a row from a compositeList. The last row cannot be removed.
func (e *Engine) RemoveRow(ctx context.Context, state *domain.State, questionID string, index int) (*domain.State, error) {
	q, err := e.composite(questionID, domain.KindCompositeList, "")
	if err != nil {
		return state, err
	}
	if err := e.editable(ctx, state, q.ID); err != nil {
		return state, err
	}
	rows := state.Lists[q.ID]
	if len(rows) <= 1 {
		return state, fmt.Errorf("%q: %w", q.ID, domain.ErrMinimumRows)
	}
	if index < 0 || index >= len(rows) {
		return state, fmt.Errorf("%q[%d]: %w", q.ID, index, domain.ErrRowIndex)
	}
	next := state.Clone()
	next.Lists[q.ID] = append(next.Lists[q.ID][:index], next.Lists[q.ID][index+1:]...)
	e.touch(next)
	return next, nil
}

// UpdateRow writes one field of one row of a compositeList.
func (e *Engine) UpdateRow(ctx context.Context, state *domain.State, questionID string, index int, field, value string) (*domain.State, error) {
	q, err := e.composite(questionID, domain.KindCompositeList, field)
	if err != nil {
		return state, err
	}
	if err := e.editable(ctx, state, q.ID); err != nil {
		return state, err
	}
	if index < 0 || index >= len(state.Lists[q.ID]) {
		return state, fmt.Errorf("%q[%d]: %w", q.ID, index, domain.ErrRowIndex)
	}
	clean, err := runner.SanitizeInput(value)
	if err != nil {
		return state, fmt.Errorf("%s[%d].%s: %w", q.ID, index, field, err)
	}
	next := state.Clone()
	if next.Lists[q.ID][index] == nil {
		next.Lists[q.ID][index] = q.NewRecord()
	}
	next.Lists[q.ID][index][field] = clean
	e.touch(next)
	return next, nil
}

// editable rejects writes once the wizard is complete and writes to questions
// the current section does not show.
func (e *Engine) editable(ctx context.Context, state *domain.State, questionID string) error {
	if state.Complete {
		return fmt.Errorf("answer to %q: %w", questionID, domain.ErrWizardComplete)
	}
	if slices.Contains(e.bundle.ResolveQuestions(ctx, state.CurrentSectionID, state), questionID) {
		return nil
	}
	if owner, ok := e.bundle.SectionOf(questionID); ok && owner != state.CurrentSectionID {
		return fmt.Errorf("%w: %q belongs to section %q, current is %q", domain.ErrNotInSection, questionID, owner, state.CurrentSectionID)
	}
	return fmt.Errorf("%w: %q is not shown in section %q", domain.ErrNotInSection, questionID, state.CurrentSectionID)
}

func (e *Engine) question(questionID string) (domain.Question, error) {
	q, ok := e.bundle.Question(questionID)
	if !ok {
		return domain.Question{}, fmt.Errorf("%w: %q", domain.ErrUnknownQuestion, questionID)
	}
	return q, nil
}

// composite resolves a composite question of the given kind and, when field
// is set, checks the question declares it.
func (e *Engine) composite(questionID string, kind domain.QuestionKind, field string) (domain.Question, error) {
	q, err := e.question(questionID)
	if err != nil {
		return q, err
	}
	if q.Kind != kind {
		return q, fmt.Errorf("%w: %q is a %s question, not %s", domain.ErrCompositeQuestion, q.ID, q.Kind, kind)
	}
	if field == "" {
		return q, nil
	}
	for _, f := range q.Fields {
		if f.Key == field {
			return q, nil
		}
	}
	return q, fmt.Errorf("%w: %q has no field %q", domain.ErrUnknownField, q.ID, field)
}
