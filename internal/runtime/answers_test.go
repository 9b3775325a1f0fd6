package runtime_test

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/writ/pkg/domain"
	"github.com/aretw0/writ/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAnswer_CascadeScenario(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	st, _ := e.Start(ctx, "s1")

	st, err := e.RecordAnswer(ctx, st, "country", "1")
	require.NoError(t, err)

	view, err := e.Render(ctx, st)
	require.NoError(t, err)
	subs, _ := e.Bundle().Geo().ListSubdivisions(ctx, "1")
	require.Len(t, view.Questions, 2)
	require.Len(t, view.Questions[1].Choices, len(subs))
	for i, s := range subs {
		assert.Equal(t, domain.Option{Value: s.ID, Label: s.Name}, view.Questions[1].Choices[i])
	}

	st, err = e.RecordAnswer(ctx, st, "state", "101")
	require.NoError(t, err)
	assert.True(t, e.CanAdvance(ctx, st))

	// Re-recording the same parent value keeps the child.
	same, err := e.RecordAnswer(ctx, st, "country", "1")
	require.NoError(t, err)
	assert.Equal(t, "101", same.Answers["state"])

	st, err = e.RecordAnswer(ctx, st, "country", "2")
	require.NoError(t, err)
	_, stillSet := st.Answers["state"]
	assert.False(t, stillSet, "changing the country clears the state")
	assert.False(t, e.CanAdvance(ctx, st))

	st, _ = e.RecordAnswer(ctx, st, "state", "201")
	assert.True(t, e.CanAdvance(ctx, st))
}

func TestRecordAnswer_Errors(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	st, _ := e.Start(ctx, "s1")

	_, err := e.RecordAnswer(ctx, st, "nope", "x")
	assert.ErrorIs(t, err, domain.ErrUnknownQuestion)

	_, err = e.RecordAnswer(ctx, st, "landlord", "x")
	assert.ErrorIs(t, err, domain.ErrCompositeQuestion)

	_, err = e.RecordAnswer(ctx, st, "country", strings.Repeat("a", runner.DefaultMaxInputSize+1))
	assert.ErrorIs(t, err, runner.ErrInputTooLarge)
}

func TestRecordAnswer_Sanitizes(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	st, _ := e.Start(ctx, "s1")

	next, err := e.RecordAnswer(ctx, st, "country", "1\x1b[0m2")
	require.NoError(t, err)
	assert.Equal(t, "1[0m2", next.Answers["country"])
	assert.Empty(t, st.Answers, "input state is not mutated")
}

func TestSetField(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	st := startAt(t, e, "parties")

	next, err := e.SetField(ctx, st, "landlord", "name", "Ann")
	require.NoError(t, err)
	assert.Equal(t, "Ann", next.Parties["landlord"]["name"])
	assert.Equal(t, "", st.Parties["landlord"]["name"])

	_, err = e.SetField(ctx, st, "landlord", "phone", "1")
	assert.ErrorIs(t, err, domain.ErrUnknownField)

	_, err = e.SetField(ctx, st, "items", "description", "x")
	assert.ErrorIs(t, err, domain.ErrCompositeQuestion)
}

func TestRows(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	st := startAt(t, e, "items")

	_, err := e.RemoveRow(ctx, st, "items", 0)
	assert.ErrorIs(t, err, domain.ErrMinimumRows, "the only row cannot be removed")

	st, err = e.AddRow(ctx, st, "items")
	require.NoError(t, err)
	st, err = e.UpdateRow(ctx, st, "items", 1, "description", "Lamp")
	require.NoError(t, err)
	st, err = e.UpdateRow(ctx, st, "items", 0, "description", "Desk")
	require.NoError(t, err)
	require.Len(t, st.Lists["items"], 2)

	_, err = e.RemoveRow(ctx, st, "items", 2)
	assert.ErrorIs(t, err, domain.ErrRowIndex)
	_, err = e.UpdateRow(ctx, st, "items", -1, "description", "x")
	assert.ErrorIs(t, err, domain.ErrRowIndex)
	_, err = e.UpdateRow(ctx, st, "items", 0, "colour", "x")
	assert.ErrorIs(t, err, domain.ErrUnknownField)

	after, err := e.RemoveRow(ctx, st, "items", 0)
	require.NoError(t, err)
	require.Len(t, after.Lists["items"], 1)
	assert.Equal(t, "Lamp", after.Lists["items"][0]["description"])
	assert.Len(t, st.Lists["items"], 2, "input state is not mutated")

	_, err = e.AddRow(ctx, st, "landlord")
	assert.ErrorIs(t, err, domain.ErrCompositeQuestion)
}

func TestWrites_ScopedToCurrentSection(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	st, _ := e.Start(ctx, "s1")

	_, err := e.RecordAnswer(ctx, st, "pets", "no")
	assert.ErrorIs(t, err, domain.ErrNotInSection)
	_, err = e.SetField(ctx, st, "landlord", "name", "Ann")
	assert.ErrorIs(t, err, domain.ErrNotInSection)
	_, err = e.AddRow(ctx, st, "items")
	assert.ErrorIs(t, err, domain.ErrNotInSection)
	_, err = e.UpdateRow(ctx, st, "items", 0, "description", "Sofa")
	assert.ErrorIs(t, err, domain.ErrNotInSection)
	_, err = e.RemoveRow(ctx, st, "items", 0)
	assert.ErrorIs(t, err, domain.ErrNotInSection)

	st = completeLease(t, e)
	_, err = e.RecordAnswer(ctx, st, "country", "2")
	assert.ErrorIs(t, err, domain.ErrNotInSection, "earlier sections are read-only until retreated to")
	assert.Equal(t, "105", st.Answers["state"])
}

func TestWrites_RejectedOnceComplete(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	st := completeLease(t, e)
	st, err := e.RecordAnswer(ctx, st, "agree", "yes")
	require.NoError(t, err)
	done, err := e.Advance(ctx, st)
	require.NoError(t, err)
	require.True(t, done.Complete)

	after, err := e.RecordAnswer(ctx, done, "agree", "no")
	assert.ErrorIs(t, err, domain.ErrWizardComplete)
	assert.Same(t, done, after)
	_, err = e.SetField(ctx, done, "landlord", "name", "")
	assert.ErrorIs(t, err, domain.ErrWizardComplete)
	assert.True(t, e.Bundle().Validate(ctx, "location_selection", done))

	back, err := e.Retreat(ctx, done)
	require.NoError(t, err)
	back, err = e.RecordAnswer(ctx, back, "pets", "yes")
	require.NoError(t, err, "retreating reopens the section")
	assert.Equal(t, "yes", back.Answers["pets"])
}
