package wizard

import "github.com/aretw0/writ/pkg/ports"

// Option configures Compile.
type Option func(*config)

type config struct {
	geo        ports.GeoProvider
	validators map[string]Validator
	sections   map[string][]Validator
}

// WithGeo injects the geographic data used by location selects and
// has_subdivisions conditions. Without it those questions validate as plain text.
func WithGeo(g ports.GeoProvider) Option {
	return func(c *config) {
		c.geo = g
	}
}

// WithValidator registers a named validator that rules can reference
// through their "validator" key.
func WithValidator(name string, fn Validator) Option {
	return func(c *config) {
		if c.validators == nil {
			c.validators = make(map[string]Validator)
		}
		c.validators[name] = fn
	}
}

// WithSectionValidator adds a Go predicate to a section's validator,
// in conjunction with its declared rules.
func WithSectionValidator(sectionID string, fn Validator) Option {
	return func(c *config) {
		if c.sections == nil {
			c.sections = make(map[string][]Validator)
		}
		c.sections[sectionID] = append(c.sections[sectionID], fn)
	}
}
