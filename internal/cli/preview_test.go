package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/writ"
	"github.com/aretw0/writ/pkg/adapters/memory"
	"github.com/aretw0/writ/pkg/domain"
	"github.com/aretw0/writ/pkg/wizard"
)

func invoiceEngine(t *testing.T) *writ.Engine {
	t.Helper()
	b := wizard.NewBuilder("invoice").Title("Invoice").Template(
		"# Invoice\n\nBilled to {{ party \"buyer\" \"name\" }} on {{ answer \"issued\" }}.\n\n" +
			"{{ range rows \"items\" }}- {{ .description }}\n{{ end }}\nPaid: {{ answer \"paid\" }}")
	b.Question("issued", domain.KindDate).Prompt("Issued on")
	b.Question("paid", domain.KindConfirmation).Prompt("Paid")
	b.Question("buyer", domain.KindCompositeParty).Prompt("Buyer").Field("name", "Name")
	b.Question("items", domain.KindCompositeList).Prompt("Items").Field("description", "Description")
	b.Section("main").Ask("issued", "paid", "buyer", "items")

	eng, err := writ.New(writ.WithoutBuiltins(), writ.WithLoader(memory.NewLoader(b.Definition())))
	require.NoError(t, err)
	return eng
}

func TestLoadAnswers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
issued: 2024-03-09
paid: true
buyer:
  name: Ann Lee
items:
  - description: Chairs
  - description: Tables
`), 0o600))

	answers, err := LoadAnswers(path)
	require.NoError(t, err)
	assert.Len(t, answers, 4)

	_, err = LoadAnswers(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestApplyAnswers(t *testing.T) {
	ctx := context.Background()
	eng := invoiceEngine(t)
	state, err := eng.Start(ctx, "invoice", "s1")
	require.NoError(t, err)

	state, err = ApplyAnswers(ctx, eng, state, Answers{
		"paid":  true,
		"buyer": map[string]any{"name": "Ann Lee"},
		"items": []any{
			map[string]any{"description": "Chairs"},
			map[string]any{"description": "Tables"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.AnswerYes, state.Answers["paid"])
	assert.Equal(t, "Ann Lee", state.Parties["buyer"]["name"])
	require.Len(t, state.Lists["items"], 2)
	assert.Equal(t, "Tables", state.Lists["items"][1]["description"])
}

func TestApplyAnswers_Errors(t *testing.T) {
	ctx := context.Background()
	eng := invoiceEngine(t)
	state, err := eng.Start(ctx, "invoice", "s1")
	require.NoError(t, err)

	_, err = ApplyAnswers(ctx, eng, state, Answers{"ghost": "x"})
	assert.ErrorIs(t, err, domain.ErrUnknownQuestion)

	_, err = ApplyAnswers(ctx, eng, state, Answers{"buyer": "Ann"})
	assert.ErrorContains(t, err, "expected a map")

	_, err = ApplyAnswers(ctx, eng, state, Answers{"items": []any{"Chairs"}})
	assert.ErrorContains(t, err, "row 0 is not a map")

	_, err = ApplyAnswers(ctx, eng, state, Answers{"buyer": map[string]any{"phone": "1"}})
	assert.ErrorIs(t, err, domain.ErrUnknownField)
}

func TestApplyAnswers_IgnoresSectionGates(t *testing.T) {
	b := wizard.NewBuilder("letter").Title("Letter").
		Template("Dear {{ answer \"name\" }}, {{ answer \"closing\" }}")
	b.Question("name", domain.KindText).Prompt("Name")
	b.Question("closing", domain.KindText).Prompt("Closing")
	b.Section("first").Ask("name").Require("name").Next("second")
	b.Section("second").Ask("closing")
	eng, err := writ.New(writ.WithoutBuiltins(), writ.WithLoader(memory.NewLoader(b.Definition())))
	require.NoError(t, err)

	text, err := Preview(context.Background(), eng, "letter", Answers{"closing": "Regards"})
	require.NoError(t, err)
	assert.Contains(t, text, "Regards", "later sections fill in although the first is blank")
	assert.Contains(t, text, domain.Placeholder)
}

func TestPreview(t *testing.T) {
	text, err := Preview(context.Background(), invoiceEngine(t), "invoice", Answers{
		"buyer": map[string]any{"name": "Ann Lee"},
		"items": []any{map[string]any{"description": "Chairs"}},
	})
	require.NoError(t, err)
	assert.Contains(t, text, "Billed to Ann Lee")
	assert.Contains(t, text, "- Chairs")
	assert.Contains(t, text, domain.Placeholder, "missing answers print the placeholder")
}
