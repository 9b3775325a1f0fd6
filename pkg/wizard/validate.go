package wizard

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/writ/pkg/domain"
	"github.com/aretw0/writ/pkg/schema"
)

// Validator decides whether a section may be left.
type Validator func(ctx context.Context, in Input) bool

// Input is what a section validator sees.
type Input struct {
	Bundle  *Bundle
	Section domain.Section
	State   *domain.State
	// Visible holds the ids ResolveQuestions returned for the section.
	Visible map[string]bool
}

// Satisfied reports whether a question holds an acceptable answer. Hidden
// questions are vacuously satisfied.
func (in Input) Satisfied(ctx context.Context, questionID string) bool {
	if !in.Visible[questionID] {
		return true
	}
	return in.Bundle.Answered(ctx, questionID, in.State)
}

// Answered reports whether a question holds an acceptable answer,
// regardless of visibility.
//
// Composite questions need every declared field filled (and at least one row
// for lists). Location selects must name a known country or subdivision; a
// subdivision question is satisfied when the chosen country has none.
func (b *Bundle) Answered(ctx context.Context, questionID string, state *domain.State) bool {
	q, ok := b.questions[questionID]
	if !ok {
		return false
	}
	switch q.Kind {
	case domain.KindCompositeParty:
		return recordFilled(q, state.Parties[q.ID], fieldKeys(q))
	case domain.KindCompositeList:
		return rowsFilled(q, state.Lists[q.ID], fieldKeys(q))
	}

	value := state.Answer(q.ID)
	if b.geo != nil {
		switch q.Source {
		case domain.SourceCountries:
			_, ok := b.geo.Country(ctx, value)
			return ok
		case domain.SourceSubdivisions:
			country := state.Answer(q.DependsOn)
			if _, ok := b.geo.Country(ctx, country); !ok {
				return false
			}
			if !b.hasSubdivisions(ctx, country) {
				return true
			}
			_, ok := b.geo.Subdivision(ctx, country, value)
			return ok
		}
	}
	return schema.Validate(schema.Schema{q.ID: TypeOf(q.Kind, q.Options)}, state.Answers) == nil
}

// TypeOf maps a question kind to the schema type its answers must satisfy.
func TypeOf(kind domain.QuestionKind, options []string) schema.Type {
	switch kind {
	case domain.KindNumber:
		return schema.Number()
	case domain.KindDate:
		return schema.Date()
	case domain.KindEmail:
		return schema.Email()
	case domain.KindPhone:
		return schema.Phone()
	case domain.KindSelect, domain.KindRadio:
		return schema.OneOf(options...)
	case domain.KindConfirmation:
		return schema.Confirmation()
	default:
		return schema.Text()
	}
}

func fieldKeys(q *domain.Question) []string {
	keys := make([]string, len(q.Fields))
	for i, f := range q.Fields {
		keys[i] = f.Key
	}
	return keys
}

func fieldSchema(q *domain.Question, keys []string) schema.Schema {
	s := make(schema.Schema, len(keys))
	for _, k := range keys {
		kind := domain.KindText
		for _, f := range q.Fields {
			if f.Key == k && f.Kind != "" {
				kind = f.Kind
			}
		}
		s[k] = TypeOf(kind, nil)
	}
	return s
}

func recordFilled(q *domain.Question, rec domain.Record, keys []string) bool {
	return schema.ValidateFields(fieldSchema(q, keys), rec, keys...) == nil
}

func rowsFilled(q *domain.Question, rows []domain.Record, keys []string) bool {
	if len(rows) == 0 {
		return false
	}
	s := fieldSchema(q, keys)
	for _, row := range rows {
		if schema.ValidateFields(s, row, keys...) != nil {
			return false
		}
	}
	return true
}

// compileSection turns a section's rules into one validator closure.
func compileSection(b *Bundle, s domain.Section, cfg *config) (Validator, error) {
	checks := make([]Validator, 0, len(s.Rules)+len(cfg.sections[s.ID]))
	for i, r := range s.Rules {
		v, err := compileRule(b, s, r, cfg)
		if err != nil {
			return nil, fmt.Errorf("rule #%d: %w", i+1, err)
		}
		checks = append(checks, v)
	}
	checks = append(checks, cfg.sections[s.ID]...)

	if len(checks) == 0 {
		return func(context.Context, Input) bool { return true }, nil
	}
	return func(ctx context.Context, in Input) bool {
		for _, check := range checks {
			if !check(ctx, in) {
				return false
			}
		}
		return true
	}, nil
}

func compileRule(b *Bundle, s domain.Section, r domain.Rule, cfg *config) (Validator, error) {
	var checks []Validator

	inSection := func(qid string) error {
		if b.questions[qid] == nil {
			return fmt.Errorf("unknown question %q", qid)
		}
		if b.owner[qid] != s.ID {
			return fmt.Errorf("question %q is not asked in this section", qid)
		}
		return nil
	}

	for _, qid := range r.Required {
		if err := inSection(qid); err != nil {
			return nil, err
		}
		checks = append(checks, func(ctx context.Context, in Input) bool {
			return in.Satisfied(ctx, qid)
		})
	}

	if r.Party != "" {
		if err := inSection(r.Party); err != nil {
			return nil, err
		}
		q := b.questions[r.Party]
		if q.Kind != domain.KindCompositeParty {
			return nil, fmt.Errorf("party %q is a %s question", q.ID, q.Kind)
		}
		keys, err := ruleFields(q, r.Fields)
		if err != nil {
			return nil, err
		}
		checks = append(checks, func(ctx context.Context, in Input) bool {
			return !in.Visible[q.ID] || recordFilled(q, in.State.Parties[q.ID], keys)
		})
	}

	if r.Rows != "" {
		if err := inSection(r.Rows); err != nil {
			return nil, err
		}
		q := b.questions[r.Rows]
		if q.Kind != domain.KindCompositeList {
			return nil, fmt.Errorf("rows %q is a %s question", q.ID, q.Kind)
		}
		keys, err := ruleFields(q, r.Fields)
		if err != nil {
			return nil, err
		}
		checks = append(checks, func(ctx context.Context, in Input) bool {
			return !in.Visible[q.ID] || rowsFilled(q, in.State.Lists[q.ID], keys)
		})
	}

	if r.Party == "" && r.Rows == "" && len(r.Fields) > 0 {
		return nil, fmt.Errorf("fields given without party or rows")
	}

	if r.Acknowledge != "" {
		if err := inSection(r.Acknowledge); err != nil {
			return nil, err
		}
		qid := r.Acknowledge
		checks = append(checks, func(ctx context.Context, in Input) bool {
			return !in.Visible[qid] || schema.IsAffirmative(in.State.Answer(qid))
		})
	}

	if r.Validator != "" {
		fn, ok := cfg.validators[r.Validator]
		if !ok {
			return nil, fmt.Errorf("validator %q is not registered", r.Validator)
		}
		checks = append(checks, fn)
	}

	if len(checks) == 0 {
		return nil, fmt.Errorf("rule has no requirement")
	}

	var when *domain.Condition
	if r.When != nil {
		c := *r.When
		when = &c
		errs := &BundleError{}
		checkCondition(b, c, "when", errs)
		if len(errs.Problems) > 0 {
			return nil, fmt.Errorf("%s", strings.Join(errs.Problems, "; "))
		}
	}

	return func(ctx context.Context, in Input) bool {
		if when != nil && !in.Bundle.Eval(ctx, *when, in.State) {
			return true
		}
		for _, check := range checks {
			if !check(ctx, in) {
				return false
			}
		}
		return true
	}, nil
}

func ruleFields(q *domain.Question, fields []string) ([]string, error) {
	if len(fields) == 0 {
		return fieldKeys(q), nil
	}
	known := make(map[string]bool, len(q.Fields))
	for _, f := range q.Fields {
		known[f.Key] = true
	}
	for _, f := range fields {
		if !known[f] {
			return nil, fmt.Errorf("question %q has no field %q", q.ID, f)
		}
	}
	return fields, nil
}
