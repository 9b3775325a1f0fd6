package domain

// Placeholder is the token the composer substitutes for a missing field when
// the template supplies none of its own.
const Placeholder = "_______"

// Truthy confirmation values stored by confirmation questions.
const (
	AnswerYes = "yes"
	AnswerNo  = "no"
)
