// Package validator lints bundle definitions beyond what compilation
// rejects: section links that point nowhere, sections the entry never reaches,
// link cycles, questions no section asks, and templates that do not parse.
package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/writ/pkg/compose"
	"github.com/aretw0/writ/pkg/domain"
	"github.com/aretw0/writ/pkg/wizard"
)

// Report collects the findings for one definition. Errors make the wizard
// unusable or unfinishable; warnings flag dead declarations.
type Report struct {
	WizardID string
	Errors   []string
	Warnings []string
}

// OK reports whether no errors were found.
func (r *Report) OK() bool {
	return len(r.Errors) == 0
}

// Err returns the errors as a single error, or nil.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}
	return fmt.Errorf("found %d errors:\n- %s", len(r.Errors), strings.Join(r.Errors, "\n- "))
}

func (r *Report) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Report) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Validate compiles def with opts and walks its section graph from the entry.
func Validate(def domain.Definition, opts ...wizard.Option) *Report {
	report := &Report{WizardID: def.ID}

	bundle, err := wizard.Compile(def, opts...)
	if err != nil {
		var berr *wizard.BundleError
		if errors.As(err, &berr) {
			report.Errors = append(report.Errors, berr.Problems...)
		} else {
			report.errorf("%v", err)
		}
		return report
	}

	walk(bundle, report)

	asked := make(map[string]bool)
	for _, s := range bundle.Sections() {
		for _, qid := range s.QuestionIDs {
			asked[qid] = true
		}
		for _, v := range s.Variants {
			for _, qid := range v.QuestionIDs {
				asked[qid] = true
			}
		}
	}
	for _, q := range bundle.Questions() {
		if !asked[q.ID] {
			report.warnf("question %q is not asked by any section", q.ID)
		}
	}

	if _, err := compose.New(bundle); err != nil {
		report.errorf("template: %v", err)
	}
	return report
}

// walk follows next links from the entry section.
func walk(b *wizard.Bundle, report *Report) {
	visited := make(map[string]bool)
	current := b.Entry()
	terminal := false

	for current != "" {
		if visited[current] {
			report.errorf("section %q: next links form a cycle, the wizard cannot finish", current)
			break
		}
		visited[current] = true

		s, ok := b.Section(current)
		if !ok {
			break
		}
		if s.IsTerminal() {
			terminal = true
			break
		}
		if _, ok := b.Section(s.NextSectionID); !ok {
			report.errorf("section %q: next section %q does not exist", s.ID, s.NextSectionID)
			break
		}
		current = s.NextSectionID
	}

	if !terminal && len(report.Errors) == 0 {
		report.errorf("no terminal section is reachable from %q", b.Entry())
	}
	for _, s := range b.Sections() {
		if !visited[s.ID] {
			report.warnf("section %q is unreachable from %q", s.ID, b.Entry())
		}
	}
}
