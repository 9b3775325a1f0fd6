package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/writ/internal/presentation/tui"
	"github.com/aretw0/writ/pkg/domain"
	"github.com/aretw0/writ/pkg/runner"
)

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	WizardID  string
	SessionID string
	Fresh     bool
	OutDir    string
	Plain     bool
	Banner    bool
	Version   string

	In  io.Reader
	Out io.Writer
}

// Run walks the user through a wizard in the terminal and writes the generated
// document into opts.OutDir. It returns the path of the written file, or ""
// when the user stopped before submitting.
func Run(ctx context.Context, res *Resources, logger *slog.Logger, opts RunOptions) (string, error) {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Banner {
		tui.PrintBanner(opts.Out, opts.Version)
	}

	state, loaded, err := hydrate(ctx, res, opts)
	if err != nil {
		return "", fmt.Errorf("failed to init session: %w", err)
	}
	logger = logger.With("session_id", state.SessionID, "wizard", state.WizardID)
	if loaded {
		logger.Info("session resumed", "section", state.CurrentSectionID)
		printSystemMessage(opts.Out, "Resuming '%s' at section '%s'.", state.SessionID, state.CurrentSectionID)
	} else {
		logger.Info("session created")
	}

	var handler runner.IOHandler
	if opts.Plain {
		handler = runner.NewTextHandler(opts.In, opts.Out, runner.WithTextHandlerRenderer(tui.NewPlainRenderer(80)))
	} else {
		handler = runner.NewFormHandler(opts.Out, tui.NewRenderer(80))
	}
	r := runner.NewRunner(
		runner.WithLogger(logger),
		runner.WithStore(res.Sessions),
		runner.WithInputHandler(handler),
	)

	state, err = r.Run(ctx, res.Engine, state)
	if err != nil {
		if isInterrupted(err) {
			printSystemMessage(opts.Out, "Progress saved. Resume with --session %s", state.SessionID)
			return "", nil
		}
		return "", err
	}

	doc, state, err := r.Finish(ctx, res.Engine, state)
	if err != nil {
		if isInterrupted(err) {
			printSystemMessage(opts.Out, "Progress saved. Resume with --session %s", state.SessionID)
			return "", nil
		}
		return "", err
	}

	path, err := writeDocument(opts.OutDir, doc)
	if err != nil {
		return "", err
	}
	printSystemMessage(opts.Out, "Wrote %s (%d pages).", path, doc.Pages)
	return path, nil
}

// hydrate loads the session or starts a new one. A session belonging to a
// different wizard is rejected.
func hydrate(ctx context.Context, res *Resources, opts RunOptions) (*domain.State, bool, error) {
	if opts.SessionID == "" {
		state, err := res.Engine.Start(ctx, opts.WizardID, "")
		return state, false, err
	}

	if opts.Fresh {
		if err := res.Sessions.Delete(ctx, opts.SessionID); err != nil {
			return nil, false, err
		}
	}

	loaded := true
	state, err := res.Sessions.LoadOrStart(ctx, opts.SessionID, func(ctx context.Context) (*domain.State, error) {
		loaded = false
		return res.Engine.Start(ctx, opts.WizardID, opts.SessionID)
	})
	if err != nil {
		return nil, false, err
	}
	if state.WizardID != opts.WizardID {
		return nil, false, fmt.Errorf("session %q belongs to wizard %q", opts.SessionID, state.WizardID)
	}
	if state.Status == domain.StatusSubmitted {
		state, err = res.Engine.Reset(ctx, state)
		if err != nil {
			return nil, false, err
		}
		loaded = false
	}
	return state, loaded, nil
}

func writeDocument(dir string, doc *domain.GeneratedDocument) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}
	path := filepath.Join(dir, doc.Filename)
	if err := os.WriteFile(path, doc.Data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write document: %w", err)
	}
	return path, nil
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

func isInterrupted(err error) bool {
	return errors.Is(err, runner.ErrAborted) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, io.EOF)
}
