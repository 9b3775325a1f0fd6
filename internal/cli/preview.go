package cli

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/writ"
	"github.com/aretw0/writ/pkg/domain"
	"github.com/aretw0/writ/pkg/runner"
	"github.com/aretw0/writ/pkg/schema"
)

// Answers is a canned answer set keyed by question id. Scalar questions take
// a scalar, party questions a map of fields and list questions a list of maps.
type Answers map[string]any

// LoadAnswers reads an answer set from a YAML file.
func LoadAnswers(path string) (Answers, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read answers: %w", err)
	}
	var answers Answers
	if err := yaml.Unmarshal(data, &answers); err != nil {
		return nil, fmt.Errorf("failed to parse answers %s: %w", path, err)
	}
	return answers, nil
}

// ApplyAnswers writes answers straight into a copy of state. A preview never
// navigates, so section gating and cascades do not apply; question kinds,
// declared fields and input limits are still enforced.
func ApplyAnswers(ctx context.Context, eng *writ.Engine, state *domain.State, answers Answers) (*domain.State, error) {
	def, err := eng.Definition(ctx, state.WizardID)
	if err != nil {
		return state, err
	}

	known := make(map[string]bool, len(def.Questions))
	for _, q := range def.Questions {
		known[q.ID] = true
	}
	for id := range answers {
		if !known[id] {
			return state, fmt.Errorf("%w: %q", domain.ErrUnknownQuestion, id)
		}
	}

	next := state.Clone()
	for _, q := range def.Questions {
		v, ok := answers[q.ID]
		if !ok {
			continue
		}
		switch q.Kind {
		case domain.KindCompositeParty:
			fields, ok := v.(map[string]any)
			if !ok {
				return state, fmt.Errorf("answer to %q: expected a map of fields", q.ID)
			}
			rec := next.Parties[q.ID]
			if rec == nil {
				rec = q.NewRecord()
				next.Parties[q.ID] = rec
			}
			if err := fillRecord(q, rec, fields); err != nil {
				return state, err
			}
		case domain.KindCompositeList:
			rows, ok := v.([]any)
			if !ok {
				return state, fmt.Errorf("answer to %q: expected a list of rows", q.ID)
			}
			records := make([]domain.Record, 0, len(rows))
			for i, raw := range rows {
				fields, ok := raw.(map[string]any)
				if !ok {
					return state, fmt.Errorf("answer to %q: row %d is not a map", q.ID, i)
				}
				rec := q.NewRecord()
				if err := fillRecord(q, rec, fields); err != nil {
					return state, err
				}
				records = append(records, rec)
			}
			if len(records) > 0 {
				next.Lists[q.ID] = records
			}
		default:
			clean, err := runner.SanitizeInput(scalar(v))
			if err != nil {
				return state, fmt.Errorf("answer to %q: %w", q.ID, err)
			}
			next.Answers[q.ID] = clean
		}
	}
	return next, nil
}

func fillRecord(q domain.Question, rec domain.Record, fields map[string]any) error {
	for _, key := range sortedKeys(fields) {
		declared := slices.ContainsFunc(q.Fields, func(f domain.Field) bool { return f.Key == key })
		if !declared {
			return fmt.Errorf("%w: %q has no field %q", domain.ErrUnknownField, q.ID, key)
		}
		clean, err := runner.SanitizeInput(scalar(fields[key]))
		if err != nil {
			return fmt.Errorf("%s.%s: %w", q.ID, key, err)
		}
		rec[key] = clean
	}
	return nil
}

// scalar renders a YAML value the way the wizard stores answers.
func scalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return domain.AnswerYes
		}
		return domain.AnswerNo
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case time.Time:
		return t.Format(schema.DateLayout)
	default:
		return fmt.Sprint(t)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Preview composes the document text for wizardID after applying answers.
// The result is the marked-up text, ready for a terminal renderer.
func Preview(ctx context.Context, eng *writ.Engine, wizardID string, answers Answers) (string, error) {
	state, err := eng.Start(ctx, wizardID, "preview")
	if err != nil {
		return "", err
	}
	state, err = ApplyAnswers(ctx, eng, state, answers)
	if err != nil {
		return "", err
	}
	return eng.Text(ctx, state)
}
