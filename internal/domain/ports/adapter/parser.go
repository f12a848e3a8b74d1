package adapter

import "context"

// DocumentParser is the boundary to the text-extraction routine for
// binary document formats (PDF, DOCX, ...). Plain text never goes
// through it.
type DocumentParser interface {
	// Supports reports whether the parser handles the extension
	// (lowercase, with leading dot).
	Supports(ext string) bool

	// Extract converts the document at path to plain text.
	Extract(ctx context.Context, path string) (string, error)
}
