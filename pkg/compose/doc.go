// Package compose turns a finished wizard state into a paginated document.
//
// A bundle's template is a text/template producing a light markdown dialect:
//
//	# Title
//	## Heading
//	Paragraph text, joined until a blank line.
//	- Bullet item
//	~~~ Signature label
//	---            (vertical space)
//
// Template functions never fail on missing data; any unanswered field renders
// as a placeholder so a document can always be produced. The laid-out text is
// wrapped for a monospace font and paginated with a running cursor.
package compose
