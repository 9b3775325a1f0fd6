package schema

import (
	"slices"
	"strings"
)

// Schema maps field names to their expected types.
type Schema map[string]Type

// Validate checks every field of the schema; all of them are required.
// Failures come back as FieldErrors ordered by field name. An empty schema
// accepts anything.
func Validate(s Schema, data map[string]string) error {
	if len(s) == 0 {
		return nil
	}
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return ValidateFields(s, data, keys...)
}

// ValidateFields checks only the named fields, in the order given. Blank
// values count as missing.
func ValidateFields(s Schema, data map[string]string, fields ...string) error {
	var errs FieldErrors
	for _, key := range fields {
		if e := check(s, key, data[key]); e != nil {
			errs = append(errs, e)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func check(s Schema, key, value string) *ValidationError {
	typ, ok := s[key]
	switch {
	case !ok:
		return &ValidationError{Key: key, Reason: "not defined in schema"}
	case strings.TrimSpace(value) == "":
		return &ValidationError{Key: key, Reason: "required"}
	}
	if err := typ.Validate(value); err != nil {
		return &ValidationError{Key: key, Reason: err.Error(), Value: value}
	}
	return nil
}
