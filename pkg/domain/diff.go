package domain

import "sort"

// StateDiff represents the changes between two states.
// It is designed to be serialized to JSON for partial updates on the client.
type StateDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	CurrentSectionID *string          `json:"current_section_id,omitempty"`
	Status           *ExecutionStatus `json:"status,omitempty"`
	Complete         *bool            `json:"complete,omitempty"`

	// Answers contains only changed, added or deleted keys.
	// For deletions, the key is present with a nil value.
	Answers map[string]*string `json:"answers,omitempty"`

	// Composite lists the composite question ids whose records changed.
	// Clients refetch the view for those.
	Composite []string `json:"composite,omitempty"`

	// History is the full back-stack whenever it changed. Retreat shrinks it,
	// so an append-only delta is not enough.
	History []string `json:"history,omitempty"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState (initial load).
func Diff(oldState, newState *State) *StateDiff {
	if newState == nil {
		return nil
	}

	diff := &StateDiff{
		SessionID: newState.SessionID,
	}

	if oldState == nil || oldState.CurrentSectionID != newState.CurrentSectionID {
		diff.CurrentSectionID = &newState.CurrentSectionID
	}
	if oldState == nil || oldState.Status != newState.Status {
		diff.Status = &newState.Status
	}
	if oldState == nil {
		if newState.Complete {
			diff.Complete = &newState.Complete
		}
	} else if oldState.Complete != newState.Complete {
		diff.Complete = &newState.Complete
	}

	diff.Answers = diffAnswers(oldState, newState)
	diff.Composite = diffComposite(oldState, newState)
	diff.History = diffHistory(oldState, newState)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffAnswers(old *State, new *State) map[string]*string {
	delta := make(map[string]*string)

	if old == nil {
		for k, v := range new.Answers {
			val := v
			delta[k] = &val
		}
	} else {
		for k, v := range new.Answers {
			if prev, ok := old.Answers[k]; !ok || prev != v {
				val := v
				delta[k] = &val
			}
		}
		for k := range old.Answers {
			if _, ok := new.Answers[k]; !ok {
				delta[k] = nil
			}
		}
	}

	if len(delta) == 0 {
		return nil
	}
	return delta
}

func diffComposite(old *State, new *State) []string {
	var changed []string
	seen := make(map[string]bool)

	mark := func(id string) {
		if !seen[id] {
			seen[id] = true
			changed = append(changed, id)
		}
	}

	for id, rec := range new.Parties {
		if old == nil || !recordsEqual(old.Parties[id], rec) {
			mark(id)
		}
	}
	for id, rows := range new.Lists {
		if old == nil {
			mark(id)
			continue
		}
		prev := old.Lists[id]
		if len(prev) != len(rows) {
			mark(id)
			continue
		}
		for i := range rows {
			if !recordsEqual(prev[i], rows[i]) {
				mark(id)
				break
			}
		}
	}
	sort.Strings(changed)
	return changed
}

func recordsEqual(a, b Record) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if w, ok := b[k]; !ok || w != v {
			return false
		}
	}
	return true
}

func diffHistory(old *State, new *State) []string {
	if len(new.History) == 0 {
		return nil
	}
	if old == nil || len(old.History) != len(new.History) {
		return new.History
	}
	for i := range new.History {
		if old.History[i] != new.History[i] {
			return new.History
		}
	}
	return nil
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return d.CurrentSectionID == nil &&
		d.Status == nil &&
		d.Complete == nil &&
		len(d.Answers) == 0 &&
		len(d.Composite) == 0 &&
		d.History == nil
}
