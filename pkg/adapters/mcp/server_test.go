package mcp

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/writ"
	"github.com/aretw0/writ/pkg/adapters/memory"
	"github.com/aretw0/writ/pkg/domain"
	"github.com/aretw0/writ/pkg/session"
	"github.com/aretw0/writ/pkg/wizard"
)

func newServer(t *testing.T) *Server {
	t.Helper()
	b := wizard.NewBuilder("quick").Title("Quick Letter").
		Template("# Letter\n\nDear {{ answer \"name\" }}.")
	b.Question("name", domain.KindText).Prompt("Recipient")
	b.Question("note", domain.KindText).Prompt("Note")
	b.Section("main").Ask("name").Require("name").Next("extra")
	b.Section("extra").Ask("note")

	eng, err := writ.New(writ.WithoutBuiltins(), writ.WithLoader(memory.NewLoader(b.Definition())))
	require.NoError(t, err)
	return NewServer(eng, session.NewManager(memory.NewStore()))
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestListWizards(t *testing.T) {
	s := newServer(t)
	res, err := s.handleListWizards(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, resultText(t, res), `"id":"quick"`)
}

func TestSessionTools(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	resp, err := s.handleStart(ctx, req, startArgs{WizardID: "quick", SessionID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, "main", resp.View.SectionID)

	resp, err = s.handleAdvance(ctx, req, sessionArgs{SessionID: "s1"})
	require.NoError(t, err)
	assert.True(t, resp.Pending)
	assert.Equal(t, "main", resp.View.SectionID)

	resp, err = s.handleRecordAnswer(ctx, req, answerArgs{SessionID: "s1", QuestionID: "name", Value: "Ann"})
	require.NoError(t, err)
	assert.True(t, resp.View.CanAdvance)

	resp, err = s.handleAdvance(ctx, req, sessionArgs{SessionID: "s1"})
	require.NoError(t, err)
	assert.False(t, resp.Pending)
	assert.Equal(t, "extra", resp.View.SectionID)

	resp, err = s.handleRetreat(ctx, req, sessionArgs{SessionID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, "main", resp.View.SectionID)

	resp, err = s.handleRender(ctx, req, sessionArgs{SessionID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, "Ann", resp.State.Answers["name"])

	// Resuming keeps the answers.
	resp, err = s.handleStart(ctx, req, startArgs{WizardID: "quick", SessionID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, "Ann", resp.State.Answers["name"])
}

func TestSessionTools_Errors(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	_, err := s.handleStart(ctx, req, startArgs{})
	assert.Error(t, err)

	_, err = s.handleStart(ctx, req, startArgs{WizardID: "missing"})
	assert.ErrorIs(t, err, domain.ErrWizardNotFound)

	_, err = s.handleRender(ctx, req, sessionArgs{SessionID: "nope"})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = s.handleStart(ctx, req, startArgs{WizardID: "quick", SessionID: "s1"})
	require.NoError(t, err)
	_, err = s.handleRecordAnswer(ctx, req, answerArgs{SessionID: "s1", QuestionID: "ghost", Value: "x"})
	assert.ErrorIs(t, err, domain.ErrUnknownQuestion)
}

func TestPreview(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()
	_, err := s.handleStart(ctx, mcp.CallToolRequest{}, startArgs{WizardID: "quick", SessionID: "s1"})
	require.NoError(t, err)
	_, err = s.handleRecordAnswer(ctx, mcp.CallToolRequest{}, answerArgs{SessionID: "s1", QuestionID: "name", Value: "Ann"})
	require.NoError(t, err)

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"session_id": "s1"}
	res, err := s.handlePreview(ctx, req)
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, resultText(t, res), "Dear Ann.")

	res, err = s.handlePreview(ctx, mcp.CallToolRequest{})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
