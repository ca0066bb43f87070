package document

import (
	"errors"
	"fmt"
)

var (
	// ErrNoFileUploaded is returned when a request carries no file.
	ErrNoFileUploaded = errors.New("no file uploaded")
	// ErrNoRowsExtracted is returned when every extractor came back empty.
	ErrNoRowsExtracted = errors.New("no rows extracted")
)

// ClassificationError reports a first page that is neither an invoice nor a proforma.
type ClassificationError struct {
	Snippet string
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("unrecognized document type: %q", e.Snippet)
}
