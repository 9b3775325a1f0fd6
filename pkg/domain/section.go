package domain

// Section is a navigable screen grouping one or more Questions.
// A Section without NextSectionID is terminal: advancing past it completes the wizard.
type Section struct {
	ID            string   `json:"id" yaml:"id" mapstructure:"id"`
	Title         string   `json:"title" yaml:"title" mapstructure:"title"`
	Description   string   `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	QuestionIDs   []string `json:"questions" yaml:"questions" mapstructure:"questions"`
	NextSectionID string   `json:"next,omitempty" yaml:"next,omitempty" mapstructure:"next"`

	// Variants swap the question set based on earlier answers.
	// The first matching variant wins; QuestionIDs is the fallback.
	Variants []Variant `json:"variants,omitempty" yaml:"variants,omitempty" mapstructure:"variants"`

	// Rules gate the "Next" action. All applicable rules must pass.
	Rules []Rule `json:"rules,omitempty" yaml:"rules,omitempty" mapstructure:"rules"`
}

// IsTerminal reports whether the section ends the wizard.
func (s Section) IsTerminal() bool {
	return s.NextSectionID == ""
}

// Variant is an alternative question list selected by a condition.
type Variant struct {
	When        Condition `json:"when" yaml:"when" mapstructure:"when"`
	QuestionIDs []string  `json:"questions" yaml:"questions" mapstructure:"questions"`
}

// Condition is a predicate over the answer store. Every non-empty clause must hold.
type Condition struct {
	Answer    string   `json:"answer,omitempty" yaml:"answer,omitempty" mapstructure:"answer"`
	Equals    string   `json:"equals,omitempty" yaml:"equals,omitempty" mapstructure:"equals"`
	NotEquals string   `json:"not_equals,omitempty" yaml:"not_equals,omitempty" mapstructure:"not_equals"`
	In        []string `json:"in,omitempty" yaml:"in,omitempty" mapstructure:"in"`

	// Answered requires the named question to hold a non-blank value.
	Answered string `json:"answered,omitempty" yaml:"answered,omitempty" mapstructure:"answered"`

	// HasSubdivisions names a country question; it holds when the selected
	// country has at least one subdivision.
	HasSubdivisions string `json:"has_subdivisions,omitempty" yaml:"has_subdivisions,omitempty" mapstructure:"has_subdivisions"`
}

// Rule is one declarative requirement of a section validator.
type Rule struct {
	Required    []string   `json:"required,omitempty" yaml:"required,omitempty" mapstructure:"required"`
	Party       string     `json:"party,omitempty" yaml:"party,omitempty" mapstructure:"party"`
	Rows        string     `json:"rows,omitempty" yaml:"rows,omitempty" mapstructure:"rows"`
	Fields      []string   `json:"fields,omitempty" yaml:"fields,omitempty" mapstructure:"fields"`
	Acknowledge string     `json:"acknowledge,omitempty" yaml:"acknowledge,omitempty" mapstructure:"acknowledge"`
	Validator   string     `json:"validator,omitempty" yaml:"validator,omitempty" mapstructure:"validator"`
	When        *Condition `json:"when,omitempty" yaml:"when,omitempty" mapstructure:"when"`
}

// Definition is the declarative bundle describing one document type.
type Definition struct {
	ID          string     `json:"id" yaml:"id" mapstructure:"id"`
	Slug        string     `json:"slug,omitempty" yaml:"slug,omitempty" mapstructure:"slug"`
	Title       string     `json:"title" yaml:"title" mapstructure:"title"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	Entry       string     `json:"entry" yaml:"entry" mapstructure:"entry"`
	Sections    []Section  `json:"sections" yaml:"sections" mapstructure:"sections"`
	Questions   []Question `json:"questions" yaml:"questions" mapstructure:"questions"`

	// Template is the document body rendered by the composer.
	Template string `json:"template,omitempty" yaml:"template,omitempty" mapstructure:"template"`
}
