package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/writ/pkg/domain"
)

// LogHooks writes every lifecycle event to the logger.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	section := func(msg string) func(context.Context, *domain.SectionEvent) {
		return func(ctx context.Context, e *domain.SectionEvent) {
			logger.InfoContext(ctx, msg,
				"wizard", e.WizardID,
				"session_id", e.SessionID,
				"section", e.SectionID,
			)
		}
	}
	return domain.LifecycleHooks{
		OnSectionEnter: section("section_enter"),
		OnSectionLeave: section("section_leave"),
		OnComplete:     section("wizard_complete"),
		OnSubmit: func(ctx context.Context, e *domain.SubmitEvent) {
			if e.IsError {
				logger.ErrorContext(ctx, "submit_failed",
					"wizard", e.WizardID,
					"session_id", e.SessionID,
					"stage", e.Stage,
				)
				return
			}
			logger.InfoContext(ctx, "document_generated",
				"wizard", e.WizardID,
				"session_id", e.SessionID,
				"filename", e.Filename,
			)
		},
	}
}

// Combine fans each event out to every hook set, in order. Nil callbacks are skipped.
func Combine(all ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range all {
		out.OnSectionEnter = chainSection(out.OnSectionEnter, h.OnSectionEnter)
		out.OnSectionLeave = chainSection(out.OnSectionLeave, h.OnSectionLeave)
		out.OnComplete = chainSection(out.OnComplete, h.OnComplete)
		out.OnSubmit = chainSubmit(out.OnSubmit, h.OnSubmit)
	}
	return out
}

func chainSection(a, b func(context.Context, *domain.SectionEvent)) func(context.Context, *domain.SectionEvent) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e *domain.SectionEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainSubmit(a, b func(context.Context, *domain.SubmitEvent)) func(context.Context, *domain.SubmitEvent) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e *domain.SubmitEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
