package domain

import (
	"context"
	"time"
)

// EventType names a point in a session's life that hooks can observe.
type EventType string

const (
	EventSectionEnter EventType = "section_enter"
	EventSectionLeave EventType = "section_leave"
	EventComplete     EventType = "complete"
	EventSubmit       EventType = "submit"
)

// EventBase identifies the session an event belongs to.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
	WizardID  string    `json:"wizard_id"`
}

// SectionEvent carries the section being entered or left. For
// EventComplete it is the terminal section that finished the wizard.
type SectionEvent struct {
	EventBase
	SectionID string `json:"section_id"`
}

// SubmitEvent reports the outcome of contact capture and generation.
type SubmitEvent struct {
	EventBase
	Filename string `json:"filename,omitempty"`
	Stage    string `json:"stage,omitempty"` // "persist" or "generate" when failed
	IsError  bool   `json:"is_error,omitempty"`
}

// LifecycleHooks are optional callbacks fired synchronously by the engine.
// Nil fields are skipped. Hooks must not block.
type LifecycleHooks struct {
	OnSectionEnter func(context.Context, *SectionEvent)
	OnSectionLeave func(context.Context, *SectionEvent)
	OnComplete     func(context.Context, *SectionEvent)
	OnSubmit       func(context.Context, *SubmitEvent)
}
