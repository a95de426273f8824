package cloud

import (
	"strings"
	"time"

	"github.com/openfacet/searchfed/internal/domain/filter"
	"github.com/openfacet/searchfed/internal/domain/interval"
	"github.com/openfacet/searchfed/internal/domain/refine"
	"github.com/openfacet/searchfed/internal/domain/search"
)

// Compile translates a data context into a Graph-style search request.
func Compile(dc *search.Context, opts Options, now time.Time) *SearchRequest {
	entity := EntityRequest{
		EntityTypes:    entityTypes(dc, opts),
		Query:          Query{QueryString: dc.QueryText()},
		From:           dc.Offset(),
		Size:           dc.ItemsPerPage(),
		Fields:         nonEmpty(opts.Fields),
		Aggregations:   aggregations(dc.Configurations(), now),
		SortProperties: sortProperties(dc.SortFields()),
		ContentSources: contentSources(opts.ContentSources),
	}

	fragments := refine.Build(dc.SelectedFilters(), dc.Configurations())
	switch len(fragments) {
	case 0:
	case 1:
		// Exactly one filter with selections attaches directly; wrapping a
		// single operand would produce a malformed boolean expression.
		entity.AggregationFilters = fragments
	default:
		entity.AggregationFilters = []string{refine.Combine(fragments, dc.FilterOperator())}
	}

	// Query alteration exists only on the beta endpoint; switching back to
	// the stable endpoint resets it.
	if opts.UseBeta && opts.EnableQueryAlteration {
		entity.QueryAlterationOptions = &QueryAlterationOptions{
			EnableModification: true,
			EnableSuggestion:   true,
		}
	}

	return &SearchRequest{Requests: []EntityRequest{entity}}
}

func entityTypes(dc *search.Context, opts Options) []string {
	if v := dc.Vertical(); v != nil && len(v.EntityTypes) > 0 {
		return v.EntityTypes
	}
	return opts.EntityTypes
}

// aggregations builds one facet request per configured filter name.
// Date-interval filters get the fixed set of seven bucket ranges, computed
// once per compile from the reference time.
func aggregations(configs []filter.Configuration, now time.Time) []Aggregation {
	var out []Aggregation
	for _, cfg := range configs {
		agg := Aggregation{
			Field: cfg.FilterName,
			Size:  cfg.MaxBuckets,
			BucketDefinition: BucketDefinition{
				SortBy:       bucketSortBy(cfg.SortBy),
				IsDescending: cfg.SortDirection == filter.Descending,
				MinimumCount: 0,
			},
		}
		if cfg.Template == filter.TemplateDateInterval {
			agg.BucketDefinition.Ranges = dateRanges(now)
		}
		out = append(out, agg)
	}
	return out
}

func bucketSortBy(s filter.SortBy) string {
	if s == filter.SortByName {
		return "keyAsString"
	}
	return "count"
}

func dateRanges(now time.Time) []BucketRange {
	ranges := interval.BucketRanges(now)
	out := make([]BucketRange, len(ranges))
	for i, r := range ranges {
		br := BucketRange{From: minDate, To: maxDate}
		if r.From != nil {
			br.From = r.From.UTC().Format(time.RFC3339)
		}
		if r.To != nil {
			br.To = r.To.UTC().Format(time.RFC3339)
		}
		out[i] = br
	}
	return out
}

func sortProperties(fields []search.SortField) []SortProperty {
	var out []SortProperty
	for _, f := range fields {
		if f.Field == "" {
			continue
		}
		out = append(out, SortProperty{Name: f.Field, IsDescending: f.Descending})
	}
	return out
}

// contentSources translates external connector IDs to connector path
// literals.
func contentSources(ids []string) []string {
	var out []string
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if strings.HasPrefix(id, "/external/connections/") {
			out = append(out, id)
			continue
		}
		out = append(out, "/external/connections/"+id)
	}
	return out
}

// nonEmpty drops null or empty entries from a field list.
func nonEmpty(fields []string) []string {
	var out []string
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			out = append(out, f)
		}
	}
	return out
}
