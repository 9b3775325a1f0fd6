package domain

import "time"

// Contact is the record captured at the end of a wizard, before generation.
type Contact struct {
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	DocumentType string    `json:"document_type"`
	UserAgent    string    `json:"user_agent,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
