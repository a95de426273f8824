package portal

import (
	"fmt"
	"strings"
	"time"

	"github.com/openfacet/searchfed/internal/domain/filter"
	"github.com/openfacet/searchfed/internal/domain/interval"
	"github.com/openfacet/searchfed/internal/domain/refine"
	"github.com/openfacet/searchfed/internal/domain/search"
)

// refinerTimeFormat is the timestamp layout inside refiner specs.
const refinerTimeFormat = "2006-01-02T15:04:05Z"

// Compile translates a data context into a platform search request. The
// context is never mutated; every call produces a fresh request object.
func Compile(dc *search.Context, opts Options, now time.Time) *Request {
	req := &Request{
		QueryText:        dc.QueryText(),
		StartRow:         dc.Offset(),
		RowLimit:         dc.ItemsPerPage(),
		SelectProperties: nonEmpty(opts.SelectProperties),
		Refiners:         refinerSpec(dc.Configurations(), now),
		SortList:         sortList(dc.SortFields()),
		TrimDuplicates:   opts.TrimDuplicates,
		EnableQueryRules: opts.EnableQueryRules,
		SourceID:         opts.SourceID,
	}

	fragments := refine.Build(dc.SelectedFilters(), dc.Configurations())
	switch len(fragments) {
	case 0:
	case 1:
		// A single filter attaches directly, without the cross-filter
		// boolean wrapper.
		req.RefinementFilters = fragments
	default:
		req.RefinementFilters = []string{refine.Combine(fragments, dc.FilterOperator())}
	}

	return req
}

// refinerSpec builds the comma-separated refiner specification: one entry
// per configured filter name, with bucket sorting options, and manual
// discretization cut points for date-interval filters. The cut points are
// computed once per compile from the reference time.
func refinerSpec(configs []filter.Configuration, now time.Time) string {
	var specs []string
	for _, cfg := range configs {
		if cfg.Template == filter.TemplateDateInterval {
			specs = append(specs, discretizeSpec(cfg.FilterName, now))
			continue
		}
		specs = append(specs, bucketSpec(cfg))
	}
	return strings.Join(specs, ",")
}

func bucketSpec(cfg filter.Configuration) string {
	sortBy := "frequency"
	if cfg.SortBy == filter.SortByName {
		sortBy = "name"
	}
	direction := "descending"
	if cfg.SortDirection == filter.Ascending {
		direction = "ascending"
	}
	return fmt.Sprintf("%s(sort=%s/%s,maxbuckets=%d)",
		cfg.FilterName, sortBy, direction, cfg.MaxBuckets)
}

func discretizeSpec(name string, now time.Time) string {
	points := interval.CutPoints(now)
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = p.UTC().Format(refinerTimeFormat)
	}
	return fmt.Sprintf("%s(discretize=manual/%s)", name, strings.Join(parts, "/"))
}

func sortList(fields []search.SortField) []SortItem {
	var out []SortItem
	for _, f := range fields {
		if f.Field == "" {
			continue
		}
		direction := 0
		if f.Descending {
			direction = 1
		}
		out = append(out, SortItem{Property: f.Field, Direction: direction})
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
