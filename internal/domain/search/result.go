package search

import (
	"github.com/google/uuid"

	"github.com/openfacet/searchfed/internal/domain/filter"
)

// Item is one normalized search hit: a single-level field bag. When a
// backend nests fields under a sub-object the normalizer flattens them
// additively, so uniform field references work regardless of source while
// the original nested shape stays available.
type Item struct {
	Key    string         `json:"key"`
	Fields map[string]any `json:"fields"`
}

// FilterResult is one facet computed by the backend: the available values of
// a filter with their result counts. Bucket values carry the backend's
// opaque filter token with operator Contains.
type FilterResult struct {
	FilterName string         `json:"filterName"`
	Values     []filter.Value `json:"values"`
}

// Results is the uniform outcome of one compile/execute/normalize cycle.
type Results struct {
	Items []Item `json:"items"`
	// Filters holds one FilterResult per aggregation the backend returned.
	Filters []FilterResult `json:"filters"`
	// TotalCount sums the totals across all hit containers in the response.
	TotalCount int `json:"totalCount"`
	// QueryAlteration carries the backend's spell-corrected query, if any.
	QueryAlteration string `json:"queryAlteration,omitempty"`
}

// FilterUpdateEvent describes a filter whose selection state applies to the
// current results, fired toward the host UI as a structured payload.
type FilterUpdateEvent struct {
	FilterName   string         `json:"filterName"`
	FilterValues []filter.Value `json:"filterValues"`
	InstanceID   string         `json:"instanceId"`
}

// NewFilterUpdateEvent builds an event for one filter with a fresh instance
// identifier.
func NewFilterUpdateEvent(filterName string, values []filter.Value) FilterUpdateEvent {
	return FilterUpdateEvent{
		FilterName:   filterName,
		FilterValues: values,
		InstanceID:   uuid.NewString(),
	}
}
