package frontmatter_test

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/aretw0/writ/pkg/adapters/frontmatter"
	"github.com/aretw0/writ/pkg/domain"
	contract "github.com/aretw0/writ/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ndaFile = `---
id: nda
title: Non-Disclosure Agreement
entry: parties
questions:
  - id: kind
    kind: radio
    prompt: Is the agreement mutual?
    options: [mutual, unilateral]
  - id: discloser
    kind: compositeParty
    prompt: Disclosing party
    fields:
      - { key: name, label: Full name }
      - { key: term, label: Term in years, kind: number, default: 2 }
  - id: receiver_name
    kind: text
    prompt: Receiving party
    visible_when:
      answer: kind
      equals: mutual
sections:
  - id: parties
    title: Parties
    questions: [kind, discloser, receiver_name]
    next: review
    rules:
      - required: [kind]
      - party: discloser
        fields: [name]
  - id: review
    title: Review
    questions: []
---

# {{ upper .Title }}

Between {{ party "discloser" "name" }}.
`

func TestParse(t *testing.T) {
	def, err := frontmatter.Parse([]byte(ndaFile))
	require.NoError(t, err)

	assert.Equal(t, "nda", def.ID)
	assert.Equal(t, "parties", def.Entry)
	require.Len(t, def.Questions, 3)
	assert.Equal(t, domain.KindCompositeParty, def.Questions[1].Kind)
	assert.Equal(t, "2", def.Questions[1].Fields[1].Default, "numbers decode into strings")
	require.NotNil(t, def.Questions[2].VisibleWhen)
	assert.Equal(t, "mutual", def.Questions[2].VisibleWhen.Equals)

	require.Len(t, def.Sections, 2)
	assert.Equal(t, "review", def.Sections[0].NextSectionID)
	assert.Equal(t, []string{"name"}, def.Sections[0].Rules[1].Fields)
	assert.True(t, def.Sections[1].IsTerminal())

	assert.Equal(t, "# {{ upper .Title }}\n\nBetween {{ party \"discloser\" \"name\" }}.\n", def.Template)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"no fence", "title: x\n"},
		{"unterminated", "---\ntitle: x\n"},
		{"bad yaml", "---\ntitle: [x\n---\n"},
		{"unknown key", "---\nid: x\ntitel: typo\n---\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := frontmatter.Parse([]byte(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestSplit_CRLFAndBOM(t *testing.T) {
	meta, body, err := frontmatter.Split([]byte("\xef\xbb\xbf---\r\nid: x\r\n---\r\n\r\nHello\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "id: x\n", string(meta))
	assert.Equal(t, "Hello\n", body)
}

func TestParse_TemplateInFrontmatterWins(t *testing.T) {
	def, err := frontmatter.Parse([]byte("---\nid: x\ntemplate: inline\n---\nbody\n"))
	require.NoError(t, err)
	assert.Equal(t, "inline", def.Template)
}

func TestLoader(t *testing.T) {
	fsys := fstest.MapFS{
		"bundles/nda.md":       {Data: []byte(ndaFile)},
		"bundles/affidavit.md": {Data: []byte("---\ntitle: Affidavit\n---\nI swear.\n")},
		"bundles/README.md":    {Data: []byte("not a bundle")},
		"bundles/notes.txt":    {Data: []byte("ignored")},
	}
	loader, err := frontmatter.Load(fsys, "bundles")
	require.NoError(t, err)

	contract.BundleLoaderContractTest(t, loader, map[string]string{
		"nda":       "Non-Disclosure Agreement",
		"affidavit": "Affidavit",
	})

	ids, err := loader.ListBundles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"affidavit", "nda"}, ids)

	p, ok := loader.Path("affidavit")
	assert.True(t, ok)
	assert.Equal(t, "bundles/affidavit.md", p)
}

func TestLoader_Collision(t *testing.T) {
	fsys := fstest.MapFS{
		"a.md": {Data: []byte("---\nid: same\n---\n")},
		"b.md": {Data: []byte("---\nid: same\n---\n")},
	}
	_, err := frontmatter.Load(fsys, ".")
	assert.ErrorContains(t, err, "collision")
}

func TestLoader_BadFile(t *testing.T) {
	fsys := fstest.MapFS{"broken.md": {Data: []byte("no frontmatter")}}
	_, err := frontmatter.Load(fsys, "")
	assert.ErrorIs(t, err, frontmatter.ErrNoFrontmatter)
}
