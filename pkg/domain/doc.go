/*
Package domain contains the core domain models of the writ wizard engine.

It defines the static configuration of a document wizard (Sections, Questions and the
Rules that gate navigation) and the runtime snapshot of a session (State). This package
is kept pure and free of external dependencies like I/O or persistence, following
Hexagonal Architecture principles.

# Key Entities

  - Section: A navigable screen grouping one or more Questions.
  - Question: A single prompt bound to one answer (or a composite record).
  - Definition: The declarative bundle describing one document type.
  - State: Captures the runtime snapshot of a session (Current Section, Answers, History).
  - Document: The paginated text produced by the composer.
*/
package domain
