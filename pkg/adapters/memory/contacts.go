package memory

import (
	"context"
	"sync"

	"github.com/aretw0/writ/pkg/domain"
)

// ContactSink records contacts in memory. The zero value is ready to use.
type ContactSink struct {
	mu       sync.Mutex
	contacts []domain.Contact
	// Err, when set, is returned by Insert instead of recording.
	Err error
}

// NewContactSink creates an empty sink.
func NewContactSink() *ContactSink {
	return &ContactSink{}
}

func (s *ContactSink) Insert(ctx context.Context, c domain.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.contacts = append(s.contacts, c)
	return nil
}

// Contacts returns a copy of everything recorded so far.
func (s *ContactSink) Contacts() []domain.Contact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Contact(nil), s.contacts...)
}
