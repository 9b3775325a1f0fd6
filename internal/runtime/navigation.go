package runtime

import (
	"context"
	"errors"

	"github.com/aretw0/writ/pkg/domain"
)

// CanAdvance runs the current section's validator.
func (e *Engine) CanAdvance(ctx context.Context, state *domain.State) bool {
	return e.bundle.Validate(ctx, state.CurrentSectionID, state)
}

// Advance leaves the current section.
//
// While the section does not validate it returns the input state and
// ErrValidationPending. Past the terminal section it marks the state complete
// once; later calls return the state unchanged. A link to a missing section
// yields a *domain.NavigationError and no state change.
func (e *Engine) Advance(ctx context.Context, state *domain.State) (*domain.State, error) {
	sec, err := e.section(state)
	if err != nil {
		return state, err
	}

	if state.Complete {
		return state, nil
	}

	if !e.CanAdvance(ctx, state) {
		e.logger.Debug("advance blocked by validator", "session_id", state.SessionID, "section", sec.ID)
		return state, domain.ErrValidationPending
	}

	if sec.IsTerminal() {
		next := state.Clone()
		next.Complete = true
		next.Status = domain.StatusComplete
		e.touch(next)
		e.emitSection(ctx, e.hooks.OnComplete, domain.EventComplete, next, sec.ID)
		return next, nil
	}

	if _, ok := e.bundle.Section(sec.NextSectionID); !ok {
		navErr := &domain.NavigationError{WizardID: e.bundle.ID(), From: sec.ID, To: sec.NextSectionID}
		e.logger.Warn("navigation configuration error", "session_id", state.SessionID, "err", navErr)
		return state, navErr
	}

	return e.transitionTo(ctx, state, sec.NextSectionID, true), nil
}

// Retreat returns to the previous section on the back-stack and clears the
// completion flag. With a single entry in history the state is returned as is.
func (e *Engine) Retreat(ctx context.Context, state *domain.State) (*domain.State, error) {
	if !state.CanRetreat() {
		return state, nil
	}
	prev := state.History[len(state.History)-2]
	return e.transitionTo(ctx, state, prev, false), nil
}

// transitionTo moves the state to target, pushing onto or popping the history.
func (e *Engine) transitionTo(ctx context.Context, state *domain.State, target string, forward bool) *domain.State {
	e.emitSection(ctx, e.hooks.OnSectionLeave, domain.EventSectionLeave, state, state.CurrentSectionID)

	next := state.Clone()
	if forward {
		next.History = append(next.History, target)
	} else {
		next.History = next.History[:len(next.History)-1]
		next.Complete = false
		if next.Status == domain.StatusComplete {
			next.Status = domain.StatusActive
		}
	}
	next.CurrentSectionID = target
	e.touch(next)

	e.emitSectionEnter(ctx, next, target)
	return next
}

func (e *Engine) emitSectionEnter(ctx context.Context, state *domain.State, sectionID string) {
	e.emitSection(ctx, e.hooks.OnSectionEnter, domain.EventSectionEnter, state, sectionID)
}

func (e *Engine) emitSection(ctx context.Context, hook func(context.Context, *domain.SectionEvent), typ domain.EventType, state *domain.State, sectionID string) {
	if hook == nil {
		return
	}
	hook(ctx, &domain.SectionEvent{
		EventBase: domain.EventBase{
			Timestamp: e.clock(),
			Type:      typ,
			SessionID: state.SessionID,
			WizardID:  e.bundle.ID(),
		},
		SectionID: sectionID,
	})
}

// IsPending reports whether err only signals an unmet section requirement.
func IsPending(err error) bool {
	return errors.Is(err, domain.ErrValidationPending)
}
