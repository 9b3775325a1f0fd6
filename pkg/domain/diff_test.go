package domain

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestDiff(t *testing.T) {
	active := StatusActive
	complete := StatusComplete

	tests := []struct {
		name     string
		old      *State
		new      *State
		wantDiff *StateDiff // nil means we expect no diff
	}{
		{
			name: "Initial Load (Old is Nil)",
			old:  nil,
			new: &State{
				SessionID:        "sess-1",
				CurrentSectionID: "start",
				Status:           StatusActive,
				Answers:          map[string]string{"a": "1"},
				History:          []string{"start"},
			},
			wantDiff: &StateDiff{
				SessionID:        "sess-1",
				CurrentSectionID: strPtr("start"),
				Status:           &active,
				Answers:          map[string]*string{"a": strPtr("1")},
				History:          []string{"start"},
			},
		},
		{
			name: "No Changes",
			old: &State{
				SessionID:        "sess-1",
				CurrentSectionID: "start",
				Status:           StatusActive,
				Answers:          map[string]string{"a": "1"},
				History:          []string{"start"},
			},
			new: &State{
				SessionID:        "sess-1",
				CurrentSectionID: "start",
				Status:           StatusActive,
				Answers:          map[string]string{"a": "1"},
				History:          []string{"start"},
			},
			wantDiff: nil,
		},
		{
			name: "Completion",
			old: &State{
				SessionID:        "sess-1",
				CurrentSectionID: "review",
				Status:           StatusActive,
			},
			new: &State{
				SessionID:        "sess-1",
				CurrentSectionID: "review",
				Status:           StatusComplete,
				Complete:         true,
			},
			wantDiff: &StateDiff{
				SessionID: "sess-1",
				Status:    &complete,
				Complete:  &[]bool{true}[0],
			},
		},
		{
			name: "Answer Added & Modified",
			old: &State{
				SessionID: "sess-1",
				Answers:   map[string]string{"a": "1", "b": "old"},
			},
			new: &State{
				SessionID: "sess-1",
				Answers:   map[string]string{"a": "1", "b": "new", "c": "yes"},
			},
			wantDiff: &StateDiff{
				SessionID: "sess-1",
				Answers:   map[string]*string{"b": strPtr("new"), "c": strPtr("yes")},
			},
		},
		{
			name: "History Retreat",
			old: &State{
				SessionID:        "sess-1",
				CurrentSectionID: "next",
				History:          []string{"start", "next"},
			},
			new: &State{
				SessionID:        "sess-1",
				CurrentSectionID: "start",
				History:          []string{"start"},
			},
			wantDiff: &StateDiff{
				SessionID:        "sess-1",
				CurrentSectionID: strPtr("start"),
				History:          []string{"start"},
			},
		},
		{
			name: "Row Added",
			old: &State{
				Lists: map[string][]Record{"items": {{"description": ""}}},
			},
			new: &State{
				Lists: map[string][]Record{"items": {{"description": ""}, {"description": ""}}},
			},
			wantDiff: &StateDiff{
				Composite: []string{"items"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.old, tt.new)

			if tt.wantDiff == nil {
				if got != nil {
					t.Errorf("Diff() = %v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatalf("Diff() = nil, want %v", tt.wantDiff)
			}

			if got.SessionID != tt.wantDiff.SessionID {
				t.Errorf("Diff().SessionID = %v, want %v", got.SessionID, tt.wantDiff.SessionID)
			}
			if !reflect.DeepEqual(got.Answers, tt.wantDiff.Answers) {
				t.Errorf("Diff().Answers = %v, want %v", got.Answers, tt.wantDiff.Answers)
			}
			if !reflect.DeepEqual(got.History, tt.wantDiff.History) {
				t.Errorf("Diff().History = %v, want %v", got.History, tt.wantDiff.History)
			}
			if !reflect.DeepEqual(got.Composite, tt.wantDiff.Composite) {
				t.Errorf("Diff().Composite = %v, want %v", got.Composite, tt.wantDiff.Composite)
			}
			if !equalPtr(got.CurrentSectionID, tt.wantDiff.CurrentSectionID) {
				t.Errorf("Diff().CurrentSectionID = %v, want %v", got.CurrentSectionID, tt.wantDiff.CurrentSectionID)
			}
			if !equalPtr(got.Complete, tt.wantDiff.Complete) {
				t.Errorf("Diff().Complete = %v, want %v", got.Complete, tt.wantDiff.Complete)
			}
		})
	}
}

func TestDiffJSONSerialization(t *testing.T) {
	t.Run("Empty Answers Omitted", func(t *testing.T) {
		s1 := &State{SessionID: "s", CurrentSectionID: "a", Answers: map[string]string{"a": "1"}}
		s2 := &State{SessionID: "s", CurrentSectionID: "b", Answers: map[string]string{"a": "1"}}

		diff := Diff(s1, s2)
		if diff == nil {
			t.Fatal("Expected diff, got nil")
		}
		bytes, _ := json.Marshal(diff)
		if strings.Contains(string(bytes), `"answers"`) {
			t.Errorf("JSON should not contain 'answers' when unchanged, got: %s", string(bytes))
		}
	})

	t.Run("Deletions as Null", func(t *testing.T) {
		s1 := &State{Answers: map[string]string{"country": "1", "state": "CA"}}
		s2 := &State{Answers: map[string]string{"country": "2"}}

		diff := Diff(s1, s2)
		if diff == nil {
			t.Fatal("Expected diff, got nil")
		}
		bytes, _ := json.Marshal(diff)
		if !strings.Contains(string(bytes), `"state":null`) {
			t.Errorf("JSON should contain 'state':null for deletion, got: %s", string(bytes))
		}
	})
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}
