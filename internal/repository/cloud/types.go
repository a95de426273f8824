package cloud

import "encoding/json"

// Wire shapes of the Graph-style search contract. Field names follow the
// backend's documented request schema.

// Unbounded range sentinels accepted by the aggregation API.
const (
	minDate = "0001-01-01T00:00:00Z"
	maxDate = "9999-12-31T23:59:59Z"
)

// SearchRequest is the POST body: one entity request per call.
type SearchRequest struct {
	Requests []EntityRequest `json:"requests"`
}

// EntityRequest is a multi-entity search request.
type EntityRequest struct {
	EntityTypes            []string                `json:"entityTypes"`
	Query                  Query                   `json:"query"`
	From                   int                     `json:"from"`
	Size                   int                     `json:"size"`
	Fields                 []string                `json:"fields,omitempty"`
	AggregationFilters     []string                `json:"aggregationFilters,omitempty"`
	Aggregations           []Aggregation           `json:"aggregations,omitempty"`
	SortProperties         []SortProperty          `json:"sortProperties,omitempty"`
	ContentSources         []string                `json:"contentSources,omitempty"`
	QueryAlterationOptions *QueryAlterationOptions `json:"queryAlterationOptions,omitempty"`
}

// Query carries the query string.
type Query struct {
	QueryString string `json:"queryString"`
}

// Aggregation requests one facet.
type Aggregation struct {
	Field            string           `json:"field"`
	Size             int              `json:"size"`
	BucketDefinition BucketDefinition `json:"bucketDefinition"`
}

// BucketDefinition controls bucket sorting and, for date fields, the
// explicit ranges.
type BucketDefinition struct {
	SortBy       string        `json:"sortBy"` // count | keyAsString
	IsDescending bool          `json:"isDescending"`
	MinimumCount int           `json:"minimumCount"`
	Ranges       []BucketRange `json:"ranges,omitempty"`
}

// BucketRange is one explicit aggregation range.
type BucketRange struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// SortProperty is one sort criterion.
type SortProperty struct {
	Name         string `json:"name"`
	IsDescending bool   `json:"isDescending"`
}

// QueryAlterationOptions enables spell correction; beta endpoint only.
type QueryAlterationOptions struct {
	EnableModification bool `json:"enableModification"`
	EnableSuggestion   bool `json:"enableSuggestion"`
}

// SearchResponse is the response envelope.
type SearchResponse struct {
	Value []ResponseValue `json:"value"`
}

// ResponseValue groups the hit containers of one entity request.
type ResponseValue struct {
	HitsContainers  []HitsContainer  `json:"hitsContainers"`
	QueryAlteration *QueryAlteration `json:"queryAlterationResponse,omitempty"`
}

// HitsContainer is one entity type's hits plus its aggregations. A response
// may carry several containers when multiple entity types were requested.
type HitsContainer struct {
	Hits                 []Hit               `json:"hits"`
	Total                int                 `json:"total"`
	MoreResultsAvailable bool                `json:"moreResultsAvailable"`
	Aggregations         []AggregationResult `json:"aggregations,omitempty"`
}

// Hit is one raw search hit.
type Hit struct {
	HitID    string          `json:"hitId"`
	Rank     int             `json:"rank"`
	Summary  string          `json:"summary"`
	Resource json.RawMessage `json:"resource"`
}

// AggregationResult is one computed facet.
type AggregationResult struct {
	Field   string   `json:"field"`
	Buckets []Bucket `json:"buckets"`
}

// Bucket is one facet value. AggregationFilterToken is opaque and passed
// back verbatim when the bucket is selected.
type Bucket struct {
	Key                    string `json:"key"`
	Count                  int    `json:"count"`
	AggregationFilterToken string `json:"aggregationFilterToken"`
}

// QueryAlteration carries the spell-corrected query.
type QueryAlteration struct {
	AlteredQueryString string `json:"alteredQueryString"`
}

// FieldInfo describes a schema field, used for sort validation.
type FieldInfo struct {
	Name       string `json:"name"`
	IsSortable bool   `json:"isSortable"`
}
