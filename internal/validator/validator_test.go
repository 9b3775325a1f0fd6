package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/writ/pkg/documents"
	"github.com/aretw0/writ/pkg/domain"
	"github.com/aretw0/writ/pkg/wizard"
)

func base() *wizard.Builder {
	b := wizard.NewBuilder("letter").Title("Letter").Template("# Letter\n\n{{ answer \"name\" }}")
	b.Question("name", domain.KindText).Prompt("Name")
	b.Question("agree", domain.KindConfirmation).Prompt("Agree")
	return b
}

func TestValidate_Valid(t *testing.T) {
	b := base()
	b.Section("who").Ask("name").Next("sign")
	b.Section("sign").Ask("agree")

	report := Validate(b.Definition())
	assert.True(t, report.OK())
	assert.NoError(t, report.Err())
	assert.Empty(t, report.Warnings)
}

func TestValidate_DanglingNext(t *testing.T) {
	b := base()
	b.Section("who").Ask("name", "agree").Next("ghost")

	report := Validate(b.Definition())
	require.False(t, report.OK())
	assert.Contains(t, report.Errors[0], `next section "ghost" does not exist`)
}

func TestValidate_Cycle(t *testing.T) {
	b := base()
	b.Section("who").Ask("name").Next("sign")
	b.Section("sign").Ask("agree").Next("who")

	report := Validate(b.Definition())
	require.False(t, report.OK())
	assert.Contains(t, report.Errors[0], "cycle")
}

func TestValidate_Warnings(t *testing.T) {
	b := base()
	b.Question("unused", domain.KindText).Prompt("Unused")
	b.Section("who").Ask("name", "agree")
	b.Section("orphan").Ask("unused")

	report := Validate(b.Definition())
	assert.True(t, report.OK())
	assert.Contains(t, report.Warnings, `section "orphan" is unreachable from "who"`)
}

func TestValidate_UnaskedQuestion(t *testing.T) {
	b := base()
	b.Question("unused", domain.KindText).Prompt("Unused")
	b.Section("who").Ask("name", "agree")

	report := Validate(b.Definition())
	assert.Contains(t, report.Warnings, `question "unused" is not asked by any section`)
}

func TestValidate_CompileErrors(t *testing.T) {
	b := base()
	b.Section("who").Ask("name", "missing")

	report := Validate(b.Definition())
	require.False(t, report.OK())
	assert.Contains(t, report.Err().Error(), `unknown question "missing"`)
}

func TestValidate_BadTemplate(t *testing.T) {
	b := base().Template("{{ if }}")
	b.Section("who").Ask("name", "agree")

	report := Validate(b.Definition())
	require.False(t, report.OK())
	assert.Contains(t, report.Errors[0], "template")
}

func TestValidate_Builtins(t *testing.T) {
	loader, err := documents.Loader()
	require.NoError(t, err)
	ids, err := loader.ListBundles(t.Context())
	require.NoError(t, err)

	for _, id := range ids {
		def, err := loader.GetBundle(t.Context(), id)
		require.NoError(t, err)
		report := Validate(*def, documents.Options()...)
		assert.True(t, report.OK(), "%s: %v", id, report.Err())
	}
}
