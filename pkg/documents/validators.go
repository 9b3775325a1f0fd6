package documents

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/aretw0/writ/pkg/schema"
	"github.com/aretw0/writ/pkg/wizard"
)

var validators = map[string]wizard.Validator{
	"lease_dates":     DateOrder("lease_start", "lease_end"),
	"poa_dates":       DateOrder("effective_date", "expiration_date"),
	"ownership_total": PercentTotal("members", "ownership"),
}

// DateOrder requires the date answered in later to fall after the one in
// earlier. It passes while either question is hidden or unanswered so it
// composes with required rules instead of duplicating them.
func DateOrder(earlier, later string) wizard.Validator {
	return func(ctx context.Context, in wizard.Input) bool {
		if !in.Visible[earlier] || !in.Visible[later] {
			return true
		}
		a, errA := time.Parse(schema.DateLayout, strings.TrimSpace(in.State.Answer(earlier)))
		b, errB := time.Parse(schema.DateLayout, strings.TrimSpace(in.State.Answer(later)))
		if errA != nil || errB != nil {
			return true
		}
		return b.After(a)
	}
}

// PercentTotal requires a numeric list column to add up to 100.
func PercentTotal(list, field string) wizard.Validator {
	return func(ctx context.Context, in wizard.Input) bool {
		if !in.Visible[list] {
			return true
		}
		total := 0.0
		for _, row := range in.State.Lists[list] {
			n, err := schema.ParseNumber(strings.TrimSuffix(strings.TrimSpace(row[field]), "%"))
			if err != nil {
				return false
			}
			total += n
		}
		return math.Abs(total-100) < 0.005
	}
}
