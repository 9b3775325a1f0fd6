package compose

import (
	"context"
	"math"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/aretw0/writ/pkg/domain"
	"github.com/aretw0/writ/pkg/schema"
	"github.com/aretw0/writ/pkg/wizard"
)

// DateLayout is how dates are spelled out in documents.
const DateLayout = "January 2, 2006"

// funcs binds the template helpers to one state. Every helper that reads an
// answer accepts an optional placeholder used when the answer is missing.
type funcs struct {
	ctx         context.Context
	bundle      *wizard.Bundle
	state       *domain.State
	now         time.Time
	placeholder string
}

func (f *funcs) ph(custom []string) string {
	if len(custom) > 0 && custom[0] != "" {
		return custom[0]
	}
	return f.placeholder
}

func (f *funcs) or(v string, custom []string) string {
	if strings.TrimSpace(v) == "" {
		return f.ph(custom)
	}
	return v
}

func (f *funcs) answer(id string, ph ...string) string {
	return f.or(inline(f.state.Answer(id)), ph)
}

// inline puts answer text on one line and escapes a leading block marker, so
// an answer can never start a heading, bullet, signature or spacer.
func inline(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return s
	}
	switch {
	case s[0] == '#', s[0] == '~':
		return `\` + s
	case s[0] == '-' && (len(s) == 1 || s[1] == '-' || s[1] == ' '):
		return `\` + s
	}
	return s
}

func (f *funcs) has(id string) bool {
	return strings.TrimSpace(f.state.Answer(id)) != ""
}

func (f *funcs) is(id, value string) bool {
	return f.state.Answer(id) == value
}

func (f *funcs) party(id, field string, ph ...string) string {
	return f.or(inline(f.state.Parties[id][field]), ph)
}

// rows always yields at least one row so list tables render their placeholders.
func (f *funcs) rows(id string) []domain.Record {
	rows := f.state.Lists[id]
	if len(rows) > 0 {
		return rows
	}
	if q, ok := f.bundle.Question(id); ok {
		return []domain.Record{q.NewRecord()}
	}
	return []domain.Record{{}}
}

func (f *funcs) field(row domain.Record, key string, ph ...string) string {
	return f.or(inline(row[key]), ph)
}

func (f *funcs) country(id string, ph ...string) string {
	v := f.state.Answer(id)
	if g := f.bundle.Geo(); g != nil && v != "" {
		if c, ok := g.Country(f.ctx, v); ok {
			return c.Name
		}
		return f.ph(ph)
	}
	return f.or(v, ph)
}

func (f *funcs) subdivision(id string, ph ...string) string {
	v := f.state.Answer(id)
	q, _ := f.bundle.Question(id)
	if g := f.bundle.Geo(); g != nil && v != "" {
		if s, ok := g.Subdivision(f.ctx, f.state.Answer(q.DependsOn), v); ok {
			return s.Name
		}
		return f.ph(ph)
	}
	return f.or(v, ph)
}

func (f *funcs) date(id string, ph ...string) string {
	v := strings.TrimSpace(f.state.Answer(id))
	if t, err := time.Parse(schema.DateLayout, v); err == nil {
		return t.Format(DateLayout)
	}
	return f.or(v, ph)
}

func (f *funcs) yesno(id, yes, no string, ph ...string) string {
	switch f.state.Answer(id) {
	case domain.AnswerYes, "true":
		return yes
	case domain.AnswerNo, "false":
		return no
	}
	return f.ph(ph)
}

func (f *funcs) today() string {
	return f.now.Format(DateLayout)
}

// money formats a numeric string as dollars; anything else passes through.
func money(v string) string {
	n, err := schema.ParseNumber(v)
	if err != nil {
		return v
	}
	if n < 0 {
		return "-$" + groupThousands(-n)
	}
	return "$" + groupThousands(n)
}

func groupThousands(n float64) string {
	s := strconv.FormatFloat(math.Abs(n), 'f', 2, 64)
	intPart, frac := s[:len(s)-3], s[len(s)-3:]
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String() + frac
}

func (f *funcs) mul(a, b string) string {
	x, errA := schema.ParseNumber(a)
	y, errB := schema.ParseNumber(b)
	if errA != nil || errB != nil {
		return f.placeholder
	}
	return strconv.FormatFloat(x*y, 'f', 2, 64)
}

// sum totals a numeric field over rows; a factor field multiplies each row.
func (f *funcs) sum(rows []domain.Record, key string, factor ...string) string {
	total := 0.0
	for _, row := range rows {
		n, err := schema.ParseNumber(row[key])
		if err != nil {
			continue
		}
		if len(factor) > 0 {
			m, err := schema.ParseNumber(row[factor[0]])
			if err != nil {
				continue
			}
			n *= m
		}
		total += n
	}
	return strconv.FormatFloat(total, 'f', 2, 64)
}

func (f *funcs) funcMap() template.FuncMap {
	return template.FuncMap{
		"answer":      f.answer,
		"has":         f.has,
		"is":          f.is,
		"party":       f.party,
		"rows":        f.rows,
		"field":       f.field,
		"country":     f.country,
		"subdivision": f.subdivision,
		"date":        f.date,
		"money":       money,
		"mul":         f.mul,
		"sum":         f.sum,
		"yesno":       f.yesno,
		"today":       f.today,
		"upper":       strings.ToUpper,
		"add1":        func(i int) int { return i + 1 },
	}
}

// placeholderFuncs has the same names bound to nothing; it is used to parse
// templates before any state exists.
func placeholderFuncs() template.FuncMap {
	f := &funcs{state: &domain.State{}}
	return f.funcMap()
}
