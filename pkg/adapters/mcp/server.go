package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/writ"
	"github.com/aretw0/writ/internal/logging"
	"github.com/aretw0/writ/pkg/domain"
	"github.com/aretw0/writ/pkg/session"
)

// SectionResponse is the result of every session tool.
type SectionResponse struct {
	State   *domain.State       `json:"state" jsonschema_description:"The session state after the call"`
	View    *domain.SectionView `json:"view" jsonschema_description:"The current section with its visible questions"`
	Pending bool                `json:"pending,omitempty" jsonschema_description:"True when advance was refused because the section is incomplete"`
}

// Engine is the part of the writ facade the MCP server drives.
type Engine interface {
	List(ctx context.Context) ([]writ.Summary, error)
	Start(ctx context.Context, wizardID, sessionID string) (*domain.State, error)
	Render(ctx context.Context, state *domain.State) (*domain.SectionView, error)
	RecordAnswer(ctx context.Context, state *domain.State, questionID, value string) (*domain.State, error)
	SetField(ctx context.Context, state *domain.State, questionID, field, value string) (*domain.State, error)
	AddRow(ctx context.Context, state *domain.State, questionID string) (*domain.State, error)
	Advance(ctx context.Context, state *domain.State) (*domain.State, error)
	Retreat(ctx context.Context, state *domain.State) (*domain.State, error)
	Text(ctx context.Context, state *domain.State) (string, error)
}

var _ Engine = (*writ.Engine)(nil)

// Server exposes the wizards as MCP tools. Sessions live in the manager, so
// an agent only carries the session id between calls.
type Server struct {
	engine    Engine
	sessions  *session.Manager
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		sessions:  sessions,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("writ-mcp", writ.Version),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the MCP protocol over SSE until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(fmt.Sprintf("http://localhost:%d", port)))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())
	httpServer := &http.Server{Addr: addr, Handler: mux}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("mcp server listening (sse)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

type startArgs struct {
	WizardID  string `json:"wizard_id"`
	SessionID string `json:"session_id"`
}

type sessionArgs struct {
	SessionID string `json:"session_id"`
}

type answerArgs struct {
	SessionID  string `json:"session_id"`
	QuestionID string `json:"question_id"`
	Field      string `json:"field"`
	Value      string `json:"value"`
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_wizards",
		mcp.WithDescription("List the document wizards that can be started."),
	), s.handleListWizards)

	s.mcpServer.AddTool(mcp.NewTool("start_wizard",
		mcp.WithDescription("Start a wizard session, or resume it when the session id already exists."),
		mcp.WithString("wizard_id", mcp.Required(), mcp.Description("ID of the wizard, as returned by list_wizards")),
		mcp.WithString("session_id", mcp.Description("Session id to create or resume (optional)")),
		mcp.WithOutputSchema[SectionResponse](),
	), mcp.NewStructuredToolHandler(s.handleStart))

	s.mcpServer.AddTool(mcp.NewTool("render_section",
		mcp.WithDescription("Render the current section of a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
		mcp.WithOutputSchema[SectionResponse](),
	), mcp.NewStructuredToolHandler(s.handleRender))

	s.mcpServer.AddTool(mcp.NewTool("record_answer",
		mcp.WithDescription("Record an answer. With field set, updates one field of a party question."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
		mcp.WithString("question_id", mcp.Required(), mcp.Description("Question id")),
		mcp.WithString("value", mcp.Required(), mcp.Description("Answer value")),
		mcp.WithString("field", mcp.Description("Field key of a party question (optional)")),
		mcp.WithOutputSchema[SectionResponse](),
	), mcp.NewStructuredToolHandler(s.handleRecordAnswer))

	s.mcpServer.AddTool(mcp.NewTool("add_row",
		mcp.WithDescription("Append an empty row to a list question."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
		mcp.WithString("question_id", mcp.Required(), mcp.Description("List question id")),
		mcp.WithOutputSchema[SectionResponse](),
	), mcp.NewStructuredToolHandler(s.handleAddRow))

	s.mcpServer.AddTool(mcp.NewTool("advance",
		mcp.WithDescription("Move to the next section. Refused with pending=true while the section is incomplete."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
		mcp.WithOutputSchema[SectionResponse](),
	), mcp.NewStructuredToolHandler(s.handleAdvance))

	s.mcpServer.AddTool(mcp.NewTool("retreat",
		mcp.WithDescription("Go back to the previous section."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
		mcp.WithOutputSchema[SectionResponse](),
	), mcp.NewStructuredToolHandler(s.handleRetreat))

	s.mcpServer.AddTool(mcp.NewTool("preview_document",
		mcp.WithDescription("Compose the document text from the answers given so far."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
	), s.handlePreview)
}

func (s *Server) handleListWizards(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.engine.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	data, err := json.Marshal(list)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleStart(ctx context.Context, request mcp.CallToolRequest, args startArgs) (SectionResponse, error) {
	if args.WizardID == "" {
		return SectionResponse{}, errors.New("wizard_id is required")
	}
	started, err := s.engine.Start(ctx, args.WizardID, args.SessionID)
	if err != nil {
		return SectionResponse{}, fmt.Errorf("start failed: %w", err)
	}
	state, err := s.sessions.LoadOrStart(ctx, started.SessionID, func(context.Context) (*domain.State, error) {
		return started, nil
	})
	if err != nil {
		return SectionResponse{}, fmt.Errorf("start failed: %w", err)
	}
	if state.WizardID != args.WizardID {
		return SectionResponse{}, fmt.Errorf("session %q belongs to wizard %q", state.SessionID, state.WizardID)
	}
	return s.respond(ctx, state, false)
}

func (s *Server) handleRender(ctx context.Context, request mcp.CallToolRequest, args sessionArgs) (SectionResponse, error) {
	state, err := s.sessions.Load(ctx, args.SessionID)
	if err != nil {
		return SectionResponse{}, fmt.Errorf("render failed: %w", err)
	}
	return s.respond(ctx, state, false)
}

func (s *Server) handleRecordAnswer(ctx context.Context, request mcp.CallToolRequest, args answerArgs) (SectionResponse, error) {
	return s.update(ctx, args.SessionID, func(ctx context.Context, state *domain.State) (*domain.State, error) {
		if args.Field != "" {
			return s.engine.SetField(ctx, state, args.QuestionID, args.Field, args.Value)
		}
		return s.engine.RecordAnswer(ctx, state, args.QuestionID, args.Value)
	})
}

func (s *Server) handleAddRow(ctx context.Context, request mcp.CallToolRequest, args answerArgs) (SectionResponse, error) {
	return s.update(ctx, args.SessionID, func(ctx context.Context, state *domain.State) (*domain.State, error) {
		return s.engine.AddRow(ctx, state, args.QuestionID)
	})
}

func (s *Server) handleAdvance(ctx context.Context, request mcp.CallToolRequest, args sessionArgs) (SectionResponse, error) {
	return s.update(ctx, args.SessionID, s.engine.Advance)
}

func (s *Server) handleRetreat(ctx context.Context, request mcp.CallToolRequest, args sessionArgs) (SectionResponse, error) {
	return s.update(ctx, args.SessionID, s.engine.Retreat)
}

func (s *Server) handlePreview(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	state, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("preview failed: %v", err)), nil
	}
	text, err := s.engine.Text(ctx, state)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("preview failed: %v", err)), nil
	}
	return mcp.NewToolResultText(text), nil
}

// update runs fn through the session manager. A refused advance is not a
// tool failure: the agent gets the unchanged view with pending set.
func (s *Server) update(ctx context.Context, sessionID string, fn session.Mutation) (SectionResponse, error) {
	state, err := s.sessions.Update(ctx, sessionID, fn)
	if err != nil {
		if errors.Is(err, domain.ErrValidationPending) && state != nil {
			return s.respond(ctx, state, true)
		}
		s.logger.Warn("mcp tool failed", "session_id", sessionID, "err", err)
		return SectionResponse{}, err
	}
	return s.respond(ctx, state, false)
}

func (s *Server) respond(ctx context.Context, state *domain.State, pending bool) (SectionResponse, error) {
	view, err := s.engine.Render(ctx, state)
	if err != nil {
		return SectionResponse{}, fmt.Errorf("render failed: %w", err)
	}
	return SectionResponse{State: state, View: view, Pending: pending}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("writ://wizards", "Available wizards",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		list, err := s.engine.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list wizards: %w", err)
		}
		data, err := json.Marshal(list)
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "writ://wizards",
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}
