package domain

// Option is a selectable choice. For geographic selects Value is the id and
// Label the display name; for static options both are the option text.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// QuestionView is a question bound to its current value.
type QuestionView struct {
	Question
	Value   string   `json:"value,omitempty"`
	Choices []Option `json:"choices,omitempty"`
	Party   Record   `json:"party,omitempty"`
	Rows    []Record `json:"rows,omitempty"`
}

// SectionView is everything a host needs to draw the current screen.
type SectionView struct {
	WizardID    string         `json:"wizard_id"`
	SectionID   string         `json:"section_id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Questions   []QuestionView `json:"questions"`
	CanAdvance  bool           `json:"can_advance"`
	CanRetreat  bool           `json:"can_retreat"`
	Terminal    bool           `json:"terminal"`
	Complete    bool           `json:"complete"`
	Step        int            `json:"step"`
	Total       int            `json:"total"`
}
