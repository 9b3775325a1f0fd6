package compose

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/writ/pkg/domain"
	"github.com/aretw0/writ/pkg/geo"
	"github.com/aretw0/writ/pkg/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

const invoiceTemplate = `# {{ upper .Title }}

Issued {{ today }} by {{ party "seller" "name" }} of {{ subdivision "state" }}, {{ country "country" }}.

## Items
{{ range $i, $row := rows "items" }}
- {{ add1 $i }}. {{ field $row "description" "[ITEM]" }}: {{ field $row "qty" }} x {{ money (field $row "price") }}
{{ end }}
Total due: {{ money (sum (rows "items") "price" "qty") }} by {{ date "due" }}.
{{ if is "late_fee" "yes" }}
A late fee of {{ money (answer "fee") }} applies.
{{ end }}
Tax exempt: {{ yesno "exempt" "Yes" "No" }}.

~~~ Seller: {{ party "seller" "name" }}
`

func invoiceBundle(t *testing.T) *wizard.Bundle {
	t.Helper()
	b := wizard.NewBuilder("sales_invoice").Title("Sales Invoice").Template(invoiceTemplate)
	b.Question("country", domain.KindSelect).Source(domain.SourceCountries)
	b.Question("state", domain.KindSelect).Source(domain.SourceSubdivisions).DependsOn("country")
	b.Question("seller", domain.KindCompositeParty).Field("name", "Name")
	b.Question("items", domain.KindCompositeList).Field("description", "Description").Field("qty", "Qty").Field("price", "Price")
	b.Question("due", domain.KindDate)
	b.Question("late_fee", domain.KindRadio).Options("yes", "no")
	b.Question("fee", domain.KindNumber)
	b.Question("exempt", domain.KindConfirmation)
	b.Section("all").Ask("country", "state", "seller", "items", "due", "late_fee", "fee", "exempt")
	bundle, err := b.Build(wizard.WithGeo(geo.Default()))
	require.NoError(t, err)
	return bundle
}

func allText(doc *domain.Document) string {
	var sb strings.Builder
	for _, p := range doc.Pages {
		for _, b := range p.Blocks {
			sb.WriteString(b.Text)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func TestCompose_EmptyAnswersUsePlaceholders(t *testing.T) {
	c, err := New(invoiceBundle(t), WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	doc, err := c.Compose(context.Background(), domain.NewState("s", "sales_invoice", "all"))
	require.NoError(t, err)
	require.NotEmpty(t, doc.Pages)
	assert.Equal(t, "Sales Invoice", doc.Title)

	text := allText(doc)
	assert.Contains(t, text, "SALES INVOICE")
	assert.Contains(t, text, "Issued March 9, 2024 by _______ of _______, _______.")
	assert.Contains(t, text, "1. [ITEM]: _______ x _______", "rows fall back to one empty row")
	assert.Contains(t, text, "Total due: $0.00 by _______.")
	assert.Contains(t, text, "Tax exempt: _______.")
	assert.NotContains(t, text, "late fee")
	assert.NotContains(t, text, "<no value>")

	for _, p := range doc.Pages {
		assert.NotEmpty(t, p.Blocks)
	}
}

func TestCompose_Answers(t *testing.T) {
	c, err := New(invoiceBundle(t), WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	st := domain.NewState("s", "sales_invoice", "all")
	st.Answers["country"] = "1"
	st.Answers["state"] = "105"
	st.Answers["due"] = "2024-04-01"
	st.Answers["late_fee"] = "yes"
	st.Answers["fee"] = "1250"
	st.Answers["exempt"] = "no"
	st.Parties["seller"] = domain.Record{"name": "Acme LLC"}
	st.Lists["items"] = []domain.Record{
		{"description": "Widget", "qty": "3", "price": "10.50"},
		{"description": "Gadget", "qty": "1", "price": "1000"},
	}

	doc, err := c.Compose(context.Background(), st)
	require.NoError(t, err)
	text := allText(doc)

	assert.Contains(t, text, "Issued March 9, 2024 by Acme LLC of New York, United States.")
	assert.Contains(t, text, "1. Widget: 3 x $10.50")
	assert.Contains(t, text, "2. Gadget: 1 x $1,000.00")
	assert.Contains(t, text, "Total due: $1,031.50 by April 1, 2024.")
	assert.Contains(t, text, "A late fee of $1,250.00 applies.")
	assert.Contains(t, text, "Tax exempt: No.")
	assert.Contains(t, text, "Seller: Acme LLC")
}

func TestCompose_WithPlaceholder(t *testing.T) {
	c, err := New(invoiceBundle(t), WithPlaceholder("[INSERT]"))
	require.NoError(t, err)

	text, err := c.Text(context.Background(), domain.NewState("s", "sales_invoice", "all"))
	require.NoError(t, err)
	assert.Contains(t, text, "by [INSERT] of [INSERT]")
}

func TestCompose_EmptyTemplate(t *testing.T) {
	b := wizard.NewBuilder("blank").Title("Blank")
	b.Question("q", domain.KindText)
	b.Section("a").Ask("q")
	bundle, err := b.Build()
	require.NoError(t, err)

	c, err := New(bundle)
	require.NoError(t, err)
	doc, err := c.Compose(context.Background(), domain.NewState("s", "blank", "a"))
	require.NoError(t, err)
	require.Len(t, doc.Pages, 1)
	assert.Equal(t, domain.BlockTitle, doc.Pages[0].Blocks[0].Kind)
	assert.Equal(t, "Blank", doc.Pages[0].Blocks[0].Text)
}

func TestCompose_Errors(t *testing.T) {
	build := func(tpl string) *wizard.Bundle {
		b := wizard.NewBuilder("bad").Template(tpl)
		b.Question("q", domain.KindText)
		b.Section("a").Ask("q")
		bundle, err := b.Build()
		require.NoError(t, err)
		return bundle
	}

	_, err := New(build("{{ answer "))
	var ce *ComposeError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "parse", ce.Stage)

	c, err := New(build(`{{ field "not a row" "x" }}`))
	require.NoError(t, err)
	_, err = c.Compose(context.Background(), domain.NewState("s", "bad", "a"))
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "execute", ce.Stage)
	assert.Equal(t, "bad", ce.WizardID)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "residential_lease_20240309_140507.pdf", Filename("residential_lease", now))
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "$0.50", money("0.5"))
	assert.Equal(t, "$999.00", money("999"))
	assert.Equal(t, "$1,234,567.89", money("1234567.891"))
	assert.Equal(t, "-$12.00", money("-12"))
	assert.Equal(t, "_______", money("_______"))
}

func TestCompose_AnswersCannotAddStructure(t *testing.T) {
	b := wizard.NewBuilder("memo").Title("Memo").Template(
		"# Memo\n\n{{ answer \"notes\" }}\n\nFee: {{ money (answer \"fee\") }}\n\n~~~ {{ party \"author\" \"name\" }}\n")
	b.Question("notes", domain.KindTextarea)
	b.Question("fee", domain.KindNumber)
	b.Question("author", domain.KindCompositeParty).Field("name", "Name")
	b.Section("all").Ask("notes", "fee", "author")
	bundle, err := b.Build()
	require.NoError(t, err)
	c, err := New(bundle)
	require.NoError(t, err)

	st := domain.NewState("s", "memo", "all")
	st.Answers["notes"] = "## Secret heading\n- fake bullet\n~~~ forged\n\n---"
	st.Answers["fee"] = "-12"
	st.Parties["author"] = domain.Record{"name": "- Ann"}

	doc, err := c.Compose(context.Background(), st)
	require.NoError(t, err)

	var kinds []domain.BlockKind
	var texts []string
	for _, p := range doc.Pages {
		for _, blk := range p.Blocks {
			kinds = append(kinds, blk.Kind)
			texts = append(texts, blk.Text)
		}
	}
	assert.Equal(t, []domain.BlockKind{
		domain.BlockTitle, domain.BlockParagraph, domain.BlockParagraph, domain.BlockSignature,
	}, kinds)
	assert.Equal(t, []string{
		"Memo", "## Secret heading - fake bullet ~~~ forged ---", "Fee: -$12.00", "- Ann",
	}, texts)
}

func TestInline(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"plain\n\ntext", "plain text"},
		{"# title", `\# title`},
		{"~~~ sig", `\~~~ sig`},
		{"- item", `\- item`},
		{"---", `\---`},
		{"-", `\-`},
		{"-12", "-12"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, inline(tt.in), "%q", tt.in)
	}
}

func TestMoney_NonFinitePassesThrough(t *testing.T) {
	assert.Equal(t, "NaN", money("NaN"))
	assert.Equal(t, "Inf", money("Inf"))
}
