// Package logging builds the slog loggers shared by the commands and adapters.
// Output goes to stderr so stdout stays free for documents, mermaid and MCP stdio.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

type options struct {
	format string
	w      io.Writer
	source bool
}

// Option tweaks the logger built by New.
type Option func(*options)

// WithFormat selects FormatText or FormatJSON.
func WithFormat(format string) Option {
	return func(o *options) { o.format = format }
}

// WithWriter redirects output away from stderr.
func WithWriter(w io.Writer) Option {
	return func(o *options) { o.w = w }
}

// WithSource adds the caller's file and line to every record.
func WithSource() Option {
	return func(o *options) { o.source = true }
}

// New creates the application logger at the given level.
// Error attributes are logged under "err".
func New(level slog.Level, opts ...Option) *slog.Logger {
	o := options{format: FormatText, w: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}

	ho := &slog.HandlerOptions{
		Level:       level,
		AddSource:   o.source,
		ReplaceAttr: renameError,
	}
	if o.format == FormatJSON {
		return slog.New(slog.NewJSONHandler(o.w, ho))
	}
	return slog.New(slog.NewTextHandler(o.w, ho))
}

func renameError(_ []string, a slog.Attr) slog.Attr {
	if a.Key == "error" {
		a.Key = "err"
	}
	return a
}

// NewNop returns a logger that drops everything.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// ParseLevel maps debug, info, warn or error to a slog.Level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

// ParseFormat validates a format name. Empty means text.
func ParseFormat(s string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("invalid log format %q (want text or json)", s)
	}
}
