package importer

import (
	"fmt"
	"strings"

	"github.com/storekeep/storekeep/internal/shared"
)

// MissingHeadersError aborts an import before any row is read.
type MissingHeadersError struct {
	Headers []string
}

func (e *MissingHeadersError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Headers, ", "))
}

func (e *MissingHeadersError) Unwrap() error { return shared.ErrValidation }

// RowError reports the first bad cell encountered. Row is 1-based with the
// header counted as row 1, so the first data row is row 2. Column and Value
// are set when a specific cell is at fault.
type RowError struct {
	Row    int
	Column string
	Value  string
	Reason string
}

func (e *RowError) Error() string {
	msg := fmt.Sprintf("row %d: %s", e.Row, e.Reason)
	if e.Column != "" {
		msg += fmt.Sprintf(" (column %q)", e.Column)
	}
	if e.Value != "" {
		msg += fmt.Sprintf(" (value %q)", e.Value)
	}
	return msg
}

func (e *RowError) Unwrap() error { return shared.ErrValidation }

// EmptyUploadError signals a product import that produced zero products.
// Price-level imports deliberately do not use it: an empty body there is a
// valid zero-count import.
type EmptyUploadError struct{}

func (e *EmptyUploadError) Error() string { return "upload contains no products" }

func (e *EmptyUploadError) Unwrap() error { return shared.ErrValidation }
