package wizard

import (
	"context"
	"slices"

	"github.com/aretw0/writ/pkg/domain"
	"github.com/aretw0/writ/pkg/ports"
)

// Bundle is a compiled, immutable wizard definition.
type Bundle struct {
	def        domain.Definition
	sections   map[string]*domain.Section
	questions  map[string]*domain.Question
	owner      map[string]string   // question id -> declaring section id
	children   map[string][]string // parent question id -> dependent question ids
	validators map[string]Validator
	geo        ports.GeoProvider
}

// Compile checks the structure of def and builds its indexes and validator table.
//
// Links between sections are not checked here: a section pointing at a missing
// section is reported by the runtime as a navigation error, and by
// internal/validator when bundles are linted.
func Compile(def domain.Definition, opts ...Option) (*Bundle, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	errs := &BundleError{WizardID: def.ID}
	if def.ID == "" {
		errs.add("missing id")
	}
	if def.Slug == "" {
		def.Slug = def.ID
	}

	b := &Bundle{
		def:        def,
		sections:   make(map[string]*domain.Section, len(def.Sections)),
		questions:  make(map[string]*domain.Question, len(def.Questions)),
		owner:      make(map[string]string),
		children:   make(map[string][]string),
		validators: make(map[string]Validator),
		geo:        cfg.geo,
	}

	for i := range def.Questions {
		q := &b.def.Questions[i]
		switch {
		case q.ID == "":
			errs.add("question #%d: missing id", i+1)
			continue
		case b.questions[q.ID] != nil:
			errs.add("question %q: declared twice", q.ID)
			continue
		}
		b.questions[q.ID] = q
	}
	for i := range b.def.Questions {
		if q := &b.def.Questions[i]; b.questions[q.ID] == q {
			checkQuestion(b, q, errs)
		}
	}
	checkCascadeCycles(b, errs)

	if len(def.Sections) == 0 {
		errs.add("no sections")
	}
	for i := range b.def.Sections {
		s := &b.def.Sections[i]
		if s.ID == "" {
			errs.add("section #%d: missing id", i+1)
			continue
		}
		if b.sections[s.ID] != nil {
			errs.add("section %q: declared twice", s.ID)
			continue
		}
		b.sections[s.ID] = s
		checkSection(b, s, errs)
	}

	if def.Entry == "" {
		if len(def.Sections) > 0 {
			b.def.Entry = def.Sections[0].ID
		}
	} else if b.sections[def.Entry] == nil {
		errs.add("entry section %q does not exist", def.Entry)
	}

	for _, s := range b.def.Sections {
		if b.sections[s.ID] == nil {
			continue
		}
		v, err := compileSection(b, s, cfg)
		if err != nil {
			errs.add("section %q: %v", s.ID, err)
			continue
		}
		b.validators[s.ID] = v
	}

	if len(errs.Problems) > 0 {
		return nil, errs
	}
	return b, nil
}

func checkQuestion(b *Bundle, q *domain.Question, errs *BundleError) {
	if !q.Kind.Valid() {
		errs.add("question %q: unknown kind %q", q.ID, q.Kind)
	}
	switch q.Source {
	case "", domain.SourceCountries:
	case domain.SourceSubdivisions:
		if q.DependsOn == "" {
			errs.add("question %q: subdivisions source needs depends_on", q.ID)
		}
	default:
		errs.add("question %q: unknown source %q", q.ID, q.Source)
	}
	if (q.Kind == domain.KindSelect || q.Kind == domain.KindRadio) && q.Source == "" && len(q.Options) == 0 {
		errs.add("question %q: %s without options", q.ID, q.Kind)
	}
	if q.Kind.IsComposite() && len(q.Fields) == 0 {
		errs.add("question %q: %s without fields", q.ID, q.Kind)
	}
	if q.DependsOn != "" {
		switch {
		case q.DependsOn == q.ID:
			errs.add("question %q: depends on itself", q.ID)
		case b.questions[q.DependsOn] == nil:
			errs.add("question %q: depends on unknown question %q", q.ID, q.DependsOn)
		default:
			b.children[q.DependsOn] = append(b.children[q.DependsOn], q.ID)
		}
	}
	if q.VisibleWhen != nil {
		checkCondition(b, *q.VisibleWhen, "question "+q.ID, errs)
	}
}

func checkCascadeCycles(b *Bundle, errs *BundleError) {
	for _, q := range b.def.Questions {
		id := q.ID
		if b.questions[id] == nil {
			continue
		}
		seen := map[string]bool{id: true}
		for cur := b.questions[id].DependsOn; cur != ""; {
			if seen[cur] {
				errs.add("question %q: cascade cycle through %q", id, cur)
				break
			}
			seen[cur] = true
			parent := b.questions[cur]
			if parent == nil {
				break
			}
			cur = parent.DependsOn
		}
	}
	for parent := range b.children {
		slices.Sort(b.children[parent])
	}
}

func checkSection(b *Bundle, s *domain.Section, errs *BundleError) {
	if len(s.QuestionIDs) == 0 && len(s.Variants) == 0 {
		errs.add("section %q: no questions", s.ID)
	}
	declare := func(qid string) {
		if b.questions[qid] == nil {
			errs.add("section %q: unknown question %q", s.ID, qid)
			return
		}
		if owner, ok := b.owner[qid]; ok && owner != s.ID {
			errs.add("question %q: asked in both %q and %q", qid, owner, s.ID)
			return
		}
		b.owner[qid] = s.ID
	}
	for _, qid := range s.QuestionIDs {
		declare(qid)
	}
	for i, v := range s.Variants {
		checkCondition(b, v.When, "section "+s.ID+" variant", errs)
		if len(v.QuestionIDs) == 0 {
			errs.add("section %q: variant #%d has no questions", s.ID, i+1)
		}
		for _, qid := range v.QuestionIDs {
			declare(qid)
		}
	}
}

func checkCondition(b *Bundle, c domain.Condition, where string, errs *BundleError) {
	for _, ref := range []string{c.Answer, c.Answered, c.HasSubdivisions} {
		if ref != "" && b.questions[ref] == nil {
			errs.add("%s: condition references unknown question %q", where, ref)
		}
	}
	if c.Answer == "" && (c.Equals != "" || c.NotEquals != "" || len(c.In) > 0) {
		errs.add("%s: comparison without answer", where)
	}
}

// ID returns the wizard id.
func (b *Bundle) ID() string { return b.def.ID }

// Title returns the human-readable document title.
func (b *Bundle) Title() string { return b.def.Title }

// Slug returns the download filename stem.
func (b *Bundle) Slug() string { return b.def.Slug }

// Entry returns the first section id.
func (b *Bundle) Entry() string { return b.def.Entry }

// Template returns the document body template.
func (b *Bundle) Template() string { return b.def.Template }

// Geo returns the injected geographic provider, possibly nil.
func (b *Bundle) Geo() ports.GeoProvider { return b.geo }

// Definition returns a copy of the compiled definition.
func (b *Bundle) Definition() domain.Definition {
	def := b.def
	def.Sections = slices.Clone(b.def.Sections)
	def.Questions = slices.Clone(b.def.Questions)
	return def
}

// Section looks up a section by id.
func (b *Bundle) Section(id string) (domain.Section, bool) {
	s, ok := b.sections[id]
	if !ok {
		return domain.Section{}, false
	}
	return *s, true
}

// Question looks up a question by id.
func (b *Bundle) Question(id string) (domain.Question, bool) {
	q, ok := b.questions[id]
	if !ok {
		return domain.Question{}, false
	}
	return *q, true
}

// Sections returns the sections in declaration order.
func (b *Bundle) Sections() []domain.Section {
	return slices.Clone(b.def.Sections)
}

// Questions returns the questions in declaration order.
func (b *Bundle) Questions() []domain.Question {
	return slices.Clone(b.def.Questions)
}

// SectionOf returns the section that asks a question.
func (b *Bundle) SectionOf(questionID string) (string, bool) {
	id, ok := b.owner[questionID]
	return id, ok
}

// Dependents returns every question cleared when questionID changes,
// transitively, in breadth-first order.
func (b *Bundle) Dependents(questionID string) []string {
	var out []string
	seen := map[string]bool{questionID: true}
	queue := []string{questionID}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, child := range b.children[cur] {
			if seen[child] {
				continue
			}
			seen[child] = true
			out = append(out, child)
			queue = append(queue, child)
		}
	}
	return out
}

// Validate runs the validator of a section against the state.
// Unknown sections never validate.
func (b *Bundle) Validate(ctx context.Context, sectionID string, state *domain.State) bool {
	v, ok := b.validators[sectionID]
	if !ok {
		return false
	}
	s := b.sections[sectionID]
	return v(ctx, Input{
		Bundle:  b,
		Section: *s,
		State:   state,
		Visible: b.visibleSet(ctx, s, state),
	})
}
