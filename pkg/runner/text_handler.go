package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/aretw0/writ/pkg/domain"
)

// TextHandler implements a line-based interface. It serves pipes, scripts and
// terminals where forms are not available.
type TextHandler struct {
	Reader   *bufio.Reader
	Writer   io.Writer
	Renderer ContentRenderer

	inputChan chan inputResult
	startOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the content renderer.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Reader: bufio.NewReader(r),
		Writer: w,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *TextHandler) initPump() {
	h.startOnce.Do(func() {
		h.inputChan = make(chan inputResult)
		go h.pump()
	})
}

func (h *TextHandler) pump() {
	for {
		text, err := h.Reader.ReadString('\n')
		if text != "" {
			h.inputChan <- inputResult{text: text}
		}
		if err != nil {
			if err != io.EOF {
				h.inputChan <- inputResult{err: err}
			}
			close(h.inputChan)
			return
		}
	}
}

// readLine prints the prompt and waits for one sanitized line.
func (h *TextHandler) readLine(ctx context.Context, prompt string) (string, error) {
	h.initPump()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
			fmt.Fprint(h.Writer, prompt)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case res, ok := <-h.inputChan:
			if !ok {
				return "", io.EOF
			}
			if res.err != nil {
				return "", res.err
			}
			clean, err := SanitizeInput(strings.TrimSpace(res.text))
			if err != nil {
				fmt.Fprintf(h.Writer, "Error: %v. Please try again.\n", err)
				continue
			}
			return clean, nil
		}
	}
}

func (h *TextHandler) render(content string) string {
	if h.Renderer == nil {
		return content
	}
	rendered, err := h.Renderer(content)
	if err != nil {
		return content
	}
	return rendered
}

// Section prints the section title, progress and description.
func (h *TextHandler) Section(ctx context.Context, view *domain.SectionView) error {
	fmt.Fprintf(h.Writer, "\n== %s (%d/%d) ==\n", view.Title, view.Step, view.Total)
	if view.Description != "" {
		fmt.Fprintln(h.Writer, strings.TrimSpace(h.render(view.Description)))
	}
	return nil
}

// Ask prints the question and reads an answer. An empty line keeps the
// stored value. Choices may be picked by number, value or label.
func (h *TextHandler) Ask(ctx context.Context, q domain.QuestionView) (string, error) {
	fmt.Fprintln(h.Writer, q.Prompt)
	if q.Help != "" {
		fmt.Fprintf(h.Writer, "  %s\n", q.Help)
	}
	for i, c := range q.Choices {
		fmt.Fprintf(h.Writer, "  %d) %s\n", i+1, c.Label)
	}

	for {
		line, err := h.readLine(ctx, prompt(q.Kind, q.Value))
		if err != nil {
			return "", err
		}
		if line == "" {
			return q.Value, nil
		}
		switch {
		case q.Kind == domain.KindConfirmation:
			if v, ok := parseYesNo(line); ok {
				return v, nil
			}
			fmt.Fprintln(h.Writer, "Please answer yes or no.")
		case len(q.Choices) > 0:
			if v, ok := pickChoice(q.Choices, line); ok {
				return v, nil
			}
			fmt.Fprintln(h.Writer, "Please pick one of the listed options.")
		default:
			return line, nil
		}
	}
}

// AskField reads one field of a composite record.
func (h *TextHandler) AskField(ctx context.Context, q domain.QuestionView, f domain.Field, current string) (string, error) {
	line, err := h.readLine(ctx, fmt.Sprintf("%s › %s%s", q.Prompt, f.Label, prompt(f.Kind, current)))
	if err != nil {
		return "", err
	}
	if line == "" {
		return current, nil
	}
	return line, nil
}

// Confirm asks a yes/no question; the default is no.
func (h *TextHandler) Confirm(ctx context.Context, msg string) (bool, error) {
	for {
		line, err := h.readLine(ctx, msg+" [y/N] ")
		if err != nil {
			return false, err
		}
		if line == "" {
			return false, nil
		}
		if v, ok := parseYesNo(line); ok {
			return v == domain.AnswerYes, nil
		}
	}
}

// Navigate reads next, back or quit. The default is next.
func (h *TextHandler) Navigate(ctx context.Context, view *domain.SectionView) (Action, error) {
	label := "[n]ext"
	if view.Terminal {
		label = "[n]finish"
	}
	if view.CanRetreat {
		label += ", [b]ack"
	}
	for {
		line, err := h.readLine(ctx, label+", [q]uit: ")
		if err != nil {
			return ActionQuit, err
		}
		switch strings.ToLower(line) {
		case "", "n", "next", "finish":
			return ActionNext, nil
		case "b", "back":
			return ActionBack, nil
		case "q", "quit":
			return ActionQuit, nil
		}
	}
}

// Notify prints a system message.
func (h *TextHandler) Notify(ctx context.Context, msg string) error {
	_, err := fmt.Fprintf(h.Writer, "! %s\n", msg)
	return err
}

func prompt(kind domain.QuestionKind, current string) string {
	hint := ""
	if kind == domain.KindConfirmation {
		hint = " (yes/no)"
	}
	if current != "" {
		return fmt.Sprintf("%s [%s]> ", hint, current)
	}
	return hint + "> "
}

func parseYesNo(s string) (string, bool) {
	switch strings.ToLower(s) {
	case "y", "yes", "true":
		return domain.AnswerYes, true
	case "n", "no", "false":
		return domain.AnswerNo, true
	}
	return "", false
}

func pickChoice(choices []domain.Option, s string) (string, bool) {
	if n, err := strconv.Atoi(s); err == nil && n >= 1 && n <= len(choices) {
		return choices[n-1].Value, true
	}
	for _, c := range choices {
		if strings.EqualFold(c.Value, s) || strings.EqualFold(c.Label, s) {
			return c.Value, true
		}
	}
	return "", false
}
