package writ

import (
	"context"
	"strings"

	"github.com/aretw0/writ/pkg/compose"
	"github.com/aretw0/writ/pkg/domain"
	"github.com/aretw0/writ/pkg/schema"
)

// Submit records the contact and generates the document of a completed
// wizard. The steps run in order and stop at the first failure:
//
//   - an incomplete state yields ErrNotComplete
//   - invalid contact details yield a *domain.ContactError
//   - a sink failure yields a *domain.PersistenceError and nothing is generated
//   - a composition or writer failure yields a *domain.GenerationError; the
//     state stays complete so the caller may retry
//
// On success the returned state is marked submitted.
func (e *Engine) Submit(ctx context.Context, state *domain.State, contact domain.Contact) (*domain.GeneratedDocument, *domain.State, error) {
	c, err := e.forState(ctx, state)
	if err != nil {
		return nil, state, err
	}
	if !state.Complete {
		return nil, state, domain.ErrNotComplete
	}

	contact.FullName = strings.TrimSpace(contact.FullName)
	contact.Email = strings.TrimSpace(contact.Email)
	if err := ValidateContact(contact); err != nil {
		return nil, state, err
	}

	log := e.logger.With("wizard", state.WizardID, "session_id", state.SessionID)
	now := e.clock()
	contact.DocumentType = state.WizardID
	contact.CreatedAt = now

	if err := e.contacts.Insert(ctx, contact); err != nil {
		log.Error("failed to persist contact", "err", err)
		e.emitSubmit(ctx, state, "", "persist")
		return nil, state, &domain.PersistenceError{Err: err}
	}

	doc, err := c.composer.Compose(ctx, state)
	if err != nil {
		log.Error("failed to compose document", "err", err)
		e.emitSubmit(ctx, state, "", "generate")
		return nil, state, &domain.GenerationError{Err: err}
	}
	data, err := e.writer.Write(ctx, doc)
	if err != nil {
		log.Error("failed to write document", "err", err)
		e.emitSubmit(ctx, state, "", "generate")
		return nil, state, &domain.GenerationError{Err: err}
	}

	slug := c.bundle.Slug()
	if slug == "" {
		slug = c.bundle.ID()
	}
	out := &domain.GeneratedDocument{
		Filename:    compose.Filename(slug, now),
		ContentType: e.writer.ContentType(),
		Data:        data,
		Pages:       len(doc.Pages),
	}

	next := state.Clone()
	next.Status = domain.StatusSubmitted
	next.UpdatedAt = now

	log.Info("document generated", "filename", out.Filename, "pages", out.Pages)
	e.emitSubmit(ctx, next, out.Filename, "")
	return out, next, nil
}

// ValidateContact checks the fields a user must supply before generation:
// a non-blank full name and a plausible email address.
func ValidateContact(c domain.Contact) error {
	fields := make(map[string]string)
	if strings.TrimSpace(c.FullName) == "" {
		fields["full_name"] = "is required"
	}
	if email := strings.TrimSpace(c.Email); email == "" {
		fields["email"] = "is required"
	} else if !schema.PlausibleEmail(email) {
		fields["email"] = "is not a valid address"
	}
	if len(fields) > 0 {
		return &domain.ContactError{Fields: fields}
	}
	return nil
}

func (e *Engine) emitSubmit(ctx context.Context, state *domain.State, filename, stage string) {
	if e.hooks.OnSubmit == nil {
		return
	}
	e.hooks.OnSubmit(ctx, &domain.SubmitEvent{
		EventBase: domain.EventBase{
			Timestamp: e.clock(),
			Type:      domain.EventSubmit,
			SessionID: state.SessionID,
			WizardID:  state.WizardID,
		},
		Filename: filename,
		Stage:    stage,
		IsError:  stage != "",
	})
}
