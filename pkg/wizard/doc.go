/*
Package wizard compiles declarative document bundles into navigable wizards.

A bundle is a domain.Definition: sections, questions, per-section rules and the
document template. Compile indexes it, checks its structure and turns the
rules of every section into a validator closure stored in a lookup table keyed
by section id. The resulting Bundle is immutable and safe to share between
sessions; all per-session data lives in domain.State.

Bundles can be written in YAML frontmatter (see pkg/adapters/frontmatter) or
assembled in Go with the fluent Builder:

	b := wizard.NewBuilder("lease").Title("Residential Lease")

	b.Question("country", domain.KindSelect).Prompt("Country").Source(domain.SourceCountries)
	b.Question("state", domain.KindSelect).Prompt("State").
		Source(domain.SourceSubdivisions).
		DependsOn("country")

	b.Section("location").Title("Property Location").
		Ask("country", "state").
		Require("country", "state").
		Next("review")

	b.Section("review").Title("Review")

	bundle, err := b.Build(wizard.WithGeo(geo.Default()))

Question sets that depend on earlier answers are declared as section
Variants and per-question VisibleWhen conditions; ResolveQuestions evaluates
them without touching the shared definition.
*/
package wizard
