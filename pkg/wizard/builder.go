package wizard

import "github.com/aretw0/writ/pkg/domain"

// Builder assembles a Definition in Go code.
// Sections and questions keep the order in which they are first added.
type Builder struct {
	def       domain.Definition
	sections  []*SectionBuilder
	questions []*QuestionBuilder
	index     map[string]any
}

// NewBuilder creates a builder for the wizard id.
func NewBuilder(id string) *Builder {
	return &Builder{
		def:   domain.Definition{ID: id},
		index: make(map[string]any),
	}
}

// Title sets the document title.
func (b *Builder) Title(title string) *Builder {
	b.def.Title = title
	return b
}

// Slug sets the download filename stem. Defaults to the id.
func (b *Builder) Slug(slug string) *Builder {
	b.def.Slug = slug
	return b
}

// Description sets the catalog description.
func (b *Builder) Description(d string) *Builder {
	b.def.Description = d
	return b
}

// Entry overrides the entry section. Defaults to the first section added.
func (b *Builder) Entry(sectionID string) *Builder {
	b.def.Entry = sectionID
	return b
}

// Template sets the document body.
func (b *Builder) Template(tpl string) *Builder {
	b.def.Template = tpl
	return b
}

// Section adds a section, or returns the existing builder for that id.
func (b *Builder) Section(id string) *SectionBuilder {
	if sb, ok := b.index["s:"+id].(*SectionBuilder); ok {
		return sb
	}
	sb := &SectionBuilder{section: domain.Section{ID: id}}
	b.index["s:"+id] = sb
	b.sections = append(b.sections, sb)
	return sb
}

// Question adds a question, or returns the existing builder for that id.
func (b *Builder) Question(id string, kind domain.QuestionKind) *QuestionBuilder {
	if qb, ok := b.index["q:"+id].(*QuestionBuilder); ok {
		return qb
	}
	qb := &QuestionBuilder{question: domain.Question{ID: id, Kind: kind}}
	b.index["q:"+id] = qb
	b.questions = append(b.questions, qb)
	return qb
}

// Definition returns the assembled definition without compiling it.
func (b *Builder) Definition() domain.Definition {
	def := b.def
	def.Sections = make([]domain.Section, len(b.sections))
	for i, sb := range b.sections {
		def.Sections[i] = sb.section
	}
	def.Questions = make([]domain.Question, len(b.questions))
	for i, qb := range b.questions {
		def.Questions[i] = qb.question
	}
	return def
}

// Build compiles the assembled definition.
func (b *Builder) Build(opts ...Option) (*Bundle, error) {
	return Compile(b.Definition(), opts...)
}

// SectionBuilder provides a fluent API for configuring a section.
type SectionBuilder struct {
	section domain.Section
}

func (s *SectionBuilder) Title(title string) *SectionBuilder {
	s.section.Title = title
	return s
}

func (s *SectionBuilder) Description(d string) *SectionBuilder {
	s.section.Description = d
	return s
}

// Ask appends questions to the section.
func (s *SectionBuilder) Ask(questionIDs ...string) *SectionBuilder {
	s.section.QuestionIDs = append(s.section.QuestionIDs, questionIDs...)
	return s
}

// Next links the section to the following one.
func (s *SectionBuilder) Next(sectionID string) *SectionBuilder {
	s.section.NextSectionID = sectionID
	return s
}

// Terminal marks the section as the end of the wizard.
func (s *SectionBuilder) Terminal() *SectionBuilder {
	s.section.NextSectionID = ""
	return s
}

// Variant asks a different question list while the condition holds.
func (s *SectionBuilder) Variant(when domain.Condition, questionIDs ...string) *SectionBuilder {
	s.section.Variants = append(s.section.Variants, domain.Variant{When: when, QuestionIDs: questionIDs})
	return s
}

// Rule appends a raw rule.
func (s *SectionBuilder) Rule(r domain.Rule) *SectionBuilder {
	s.section.Rules = append(s.section.Rules, r)
	return s
}

// Require makes the questions mandatory while they are visible.
func (s *SectionBuilder) Require(questionIDs ...string) *SectionBuilder {
	return s.Rule(domain.Rule{Required: questionIDs})
}

// RequireWhen makes the questions mandatory only while the condition holds.
func (s *SectionBuilder) RequireWhen(when domain.Condition, questionIDs ...string) *SectionBuilder {
	return s.Rule(domain.Rule{Required: questionIDs, When: &when})
}

// Party requires the listed fields of a compositeParty question (all fields when none are given).
func (s *SectionBuilder) Party(questionID string, fields ...string) *SectionBuilder {
	return s.Rule(domain.Rule{Party: questionID, Fields: fields})
}

// Rows requires the listed fields on every row of a compositeList question.
func (s *SectionBuilder) Rows(questionID string, fields ...string) *SectionBuilder {
	return s.Rule(domain.Rule{Rows: questionID, Fields: fields})
}

// Acknowledge requires a confirmation question to be checked.
func (s *SectionBuilder) Acknowledge(questionID string) *SectionBuilder {
	return s.Rule(domain.Rule{Acknowledge: questionID})
}

// Validate references a validator registered with WithValidator.
func (s *SectionBuilder) Validate(name string) *SectionBuilder {
	return s.Rule(domain.Rule{Validator: name})
}

// QuestionBuilder provides a fluent API for configuring a question.
type QuestionBuilder struct {
	question domain.Question
}

func (q *QuestionBuilder) Prompt(p string) *QuestionBuilder {
	q.question.Prompt = p
	return q
}

func (q *QuestionBuilder) Help(h string) *QuestionBuilder {
	q.question.Help = h
	return q
}

func (q *QuestionBuilder) Placeholder(p string) *QuestionBuilder {
	q.question.Placeholder = p
	return q
}

// Options sets the static choices of a select or radio question.
func (q *QuestionBuilder) Options(options ...string) *QuestionBuilder {
	q.question.Options = options
	return q
}

// Source binds the question to geographic data.
func (q *QuestionBuilder) Source(source string) *QuestionBuilder {
	q.question.Source = source
	return q
}

// DependsOn declares the parent whose change clears this answer.
func (q *QuestionBuilder) DependsOn(parentID string) *QuestionBuilder {
	q.question.DependsOn = parentID
	return q
}

// VisibleWhen hides the question while the condition does not hold.
func (q *QuestionBuilder) VisibleWhen(c domain.Condition) *QuestionBuilder {
	q.question.VisibleWhen = &c
	return q
}

// Field appends a text field to a composite question.
func (q *QuestionBuilder) Field(key, label string) *QuestionBuilder {
	return q.FieldOf(domain.Field{Key: key, Label: label})
}

// FieldOf appends a fully specified field to a composite question.
func (q *QuestionBuilder) FieldOf(f domain.Field) *QuestionBuilder {
	q.question.Fields = append(q.question.Fields, f)
	return q
}

// Condition helpers.

// Equals holds when the answer to questionID is exactly value.
func Equals(questionID, value string) domain.Condition {
	return domain.Condition{Answer: questionID, Equals: value}
}

// NotEquals holds when the answer to questionID differs from value (including unanswered).
func NotEquals(questionID, value string) domain.Condition {
	return domain.Condition{Answer: questionID, NotEquals: value}
}

// In holds when the answer to questionID is one of values.
func In(questionID string, values ...string) domain.Condition {
	return domain.Condition{Answer: questionID, In: values}
}

// Answered holds when questionID has a non-blank answer.
func Answered(questionID string) domain.Condition {
	return domain.Condition{Answered: questionID}
}

// HasSubdivisions holds when the country chosen in questionID has subdivisions.
func HasSubdivisions(questionID string) domain.Condition {
	return domain.Condition{HasSubdivisions: questionID}
}
