// Package services provides the OMDb and IMDb integrations.
package services

import (
	"context"
	"fmt"
)

// Acquirer is the cache-checked fetcher the services read through
type Acquirer interface {
	Acquire(ctx context.Context, base string, params map[string]string) (string, error)
	Scrape(ctx context.Context, pageURL string) (string, error)
}

// FieldMissingError means an expected structured field was absent. Callers skip
// the single record and carry on with the rest of the batch.
type FieldMissingError struct {
	Entity string
	Field  string
	Reason string // upstream error text, when the API supplied one
}

func (e *FieldMissingError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: missing field %q (%s)", e.Entity, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: missing field %q", e.Entity, e.Field)
}

// ExtractionStructureError means the markup a page was expected to contain is absent
type ExtractionStructureError struct {
	URL    string
	Marker string
}

func (e *ExtractionStructureError) Error() string {
	return fmt.Sprintf("%s: markup %q not found", e.URL, e.Marker)
}
