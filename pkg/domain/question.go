package domain

// QuestionKind selects the input widget a Question is rendered with.
type QuestionKind string

const (
	KindText           QuestionKind = "text"
	KindTextarea       QuestionKind = "textarea"
	KindNumber         QuestionKind = "number"
	KindDate           QuestionKind = "date"
	KindSelect         QuestionKind = "select"
	KindRadio          QuestionKind = "radio"
	KindEmail          QuestionKind = "email"
	KindPhone          QuestionKind = "phone"
	KindConfirmation   QuestionKind = "confirmation"
	KindCompositeParty QuestionKind = "compositeParty"
	KindCompositeList  QuestionKind = "compositeList"
)

// IsComposite reports whether answers of this kind live in a side record
// instead of the flat answer map.
func (k QuestionKind) IsComposite() bool {
	return k == KindCompositeParty || k == KindCompositeList
}

// Valid reports whether k is one of the known kinds.
func (k QuestionKind) Valid() bool {
	switch k {
	case KindText, KindTextarea, KindNumber, KindDate, KindSelect, KindRadio,
		KindEmail, KindPhone, KindConfirmation, KindCompositeParty, KindCompositeList:
		return true
	}
	return false
}

// Geographic option sources for select questions.
const (
	SourceCountries    = "countries"
	SourceSubdivisions = "subdivisions"
)

// Field describes one column of a composite record (party or list row).
type Field struct {
	Key     string       `json:"key" yaml:"key" mapstructure:"key"`
	Label   string       `json:"label" yaml:"label" mapstructure:"label"`
	Kind    QuestionKind `json:"kind,omitempty" yaml:"kind,omitempty" mapstructure:"kind"`
	Default string       `json:"default,omitempty" yaml:"default,omitempty" mapstructure:"default"`
}

// Question is a single prompt. It is static configuration and never mutated at runtime.
type Question struct {
	ID          string       `json:"id" yaml:"id" mapstructure:"id"`
	Kind        QuestionKind `json:"kind" yaml:"kind" mapstructure:"kind"`
	Prompt      string       `json:"prompt" yaml:"prompt" mapstructure:"prompt"`
	Help        string       `json:"help,omitempty" yaml:"help,omitempty" mapstructure:"help"`
	Options     []string     `json:"options,omitempty" yaml:"options,omitempty" mapstructure:"options"`
	Placeholder string       `json:"placeholder,omitempty" yaml:"placeholder,omitempty" mapstructure:"placeholder"`

	// DefaultNextID is carried from source data; traversal uses Section.NextSectionID.
	DefaultNextID string `json:"default_next_id,omitempty" yaml:"default_next_id,omitempty" mapstructure:"default_next_id"`

	// Source binds a select to geographic data (SourceCountries or SourceSubdivisions).
	Source string `json:"source,omitempty" yaml:"source,omitempty" mapstructure:"source"`

	// DependsOn names the parent question. Writing a new value into the parent
	// clears this question's answer.
	DependsOn string `json:"depends_on,omitempty" yaml:"depends_on,omitempty" mapstructure:"depends_on"`

	// VisibleWhen hides the question while the condition does not hold.
	VisibleWhen *Condition `json:"visible_when,omitempty" yaml:"visible_when,omitempty" mapstructure:"visible_when"`

	// Fields is the record shape for composite kinds.
	Fields []Field `json:"fields,omitempty" yaml:"fields,omitempty" mapstructure:"fields"`
}

// NewRecord returns a record populated with the declared field defaults.
func (q Question) NewRecord() Record {
	rec := make(Record, len(q.Fields))
	for _, f := range q.Fields {
		rec[f.Key] = f.Default
	}
	return rec
}
