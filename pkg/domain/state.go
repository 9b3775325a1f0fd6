package domain

import "time"

// ExecutionStatus defines the lifecycle stage of a wizard session.
type ExecutionStatus string

const (
	StatusActive    ExecutionStatus = "active"    // Collecting answers
	StatusComplete  ExecutionStatus = "complete"  // Terminal section passed, awaiting contact capture
	StatusSubmitted ExecutionStatus = "submitted" // Contact persisted and document generated
)

// Record is a composite answer (a party or one row of a list) keyed by field.
type Record map[string]string

// Clone returns an independent copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// State represents the current snapshot of a wizard session.
type State struct {
	SessionID string `json:"session_id"`
	WizardID  string `json:"wizard_id"`

	// CurrentSectionID is the identifier of the active section.
	// It always equals the last element of History.
	CurrentSectionID string `json:"current_section_id"`

	// History is the back-stack of visited sections. It never empties.
	History []string `json:"history"`

	// Answers holds scalar answers keyed by question id.
	Answers map[string]string `json:"answers"`

	// Parties holds compositeParty answers keyed by question id.
	Parties map[string]Record `json:"parties,omitempty"`

	// Lists holds compositeList rows keyed by question id.
	Lists map[string][]Record `json:"lists,omitempty"`

	Status ExecutionStatus `json:"status"`

	// Complete is set once the terminal section has been passed.
	Complete bool `json:"complete"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewState creates a clean state positioned at the entry section.
func NewState(sessionID, wizardID, entrySectionID string) *State {
	return &State{
		SessionID:        sessionID,
		WizardID:         wizardID,
		CurrentSectionID: entrySectionID,
		History:          []string{entrySectionID},
		Answers:          make(map[string]string),
		Parties:          make(map[string]Record),
		Lists:            make(map[string][]Record),
		Status:           StatusActive,
	}
}

// Answer returns the scalar answer for a question, or "" when unset.
func (s *State) Answer(questionID string) string {
	if s == nil || s.Answers == nil {
		return ""
	}
	return s.Answers[questionID]
}

// CanRetreat reports whether a previous section exists on the back-stack.
func (s *State) CanRetreat() bool {
	return s != nil && len(s.History) > 1
}

// Clone returns a deep copy so callers can mutate the result safely.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	next := *s
	next.History = append([]string(nil), s.History...)
	next.Answers = make(map[string]string, len(s.Answers))
	for k, v := range s.Answers {
		next.Answers[k] = v
	}
	next.Parties = make(map[string]Record, len(s.Parties))
	for k, v := range s.Parties {
		next.Parties[k] = v.Clone()
	}
	next.Lists = make(map[string][]Record, len(s.Lists))
	for k, rows := range s.Lists {
		copied := make([]Record, len(rows))
		for i, r := range rows {
			copied[i] = r.Clone()
		}
		next.Lists[k] = copied
	}
	return &next
}
