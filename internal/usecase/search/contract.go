package search

import (
	"context"

	domsearch "github.com/openfacet/searchfed/internal/domain/search"
	"github.com/openfacet/searchfed/internal/domain/synonym"
)

// Backend compiles a data context into its native request shape, executes
// the call and normalizes the response into the uniform result model.
type Backend interface {
	Name() string
	Search(ctx context.Context, dc *domsearch.Context) (domsearch.Results, error)
	// ValidateSortField verifies server-side that a field is sortable,
	// returning a field-level validation error when it is not.
	ValidateSortField(ctx context.Context, field string) error
}

// SynonymProvider supplies the synonym table.
type SynonymProvider interface {
	Table(ctx context.Context) ([]synonym.Entry, error)
}

// TermResolver maps taxonomy term IDs to display labels. Missing IDs are
// absent from the result, never an error.
type TermResolver interface {
	Resolve(ctx context.Context, termSetID string, ids []string) map[string]string
}
