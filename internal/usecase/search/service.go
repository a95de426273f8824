package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/openfacet/searchfed/internal/domain"
	"github.com/openfacet/searchfed/internal/domain/filter"
	domsearch "github.com/openfacet/searchfed/internal/domain/search"
	"github.com/openfacet/searchfed/internal/domain/synonym"
	"github.com/openfacet/searchfed/internal/logger"
)

// Service federates search across the registered backends: it expands the
// query through the synonym table, dispatches to the named backend, resolves
// taxonomy labels on the returned facets and reconciles the user's carried
// selections with the fresh buckets.
type Service struct {
	backends map[string]Backend
	synonyms SynonymProvider
	terms    TermResolver
}

// New creates a search service over the given backends.
func New(backends ...Backend) *Service {
	byName := make(map[string]Backend, len(backends))
	for _, b := range backends {
		byName[b.Name()] = b
	}
	return &Service{backends: byName}
}

// WithSynonyms enables query expansion from the given table provider.
func (s *Service) WithSynonyms(p SynonymProvider) *Service {
	s.synonyms = p
	return s
}

// WithTermResolver enables taxonomy label resolution on facet values.
func (s *Service) WithTermResolver(r TermResolver) *Service {
	s.terms = r
	return s
}

// Search runs one federated query against the named backend and returns the
// normalized results plus one filter-update event per filter that carries a
// selection. A failing synonym fetch degrades to the unexpanded query rather
// than failing the search.
func (s *Service) Search(
	ctx context.Context, backendName string, dc *domsearch.Context,
) (domsearch.Results, []domsearch.FilterUpdateEvent, error) {
	backend, ok := s.backends[backendName]
	if !ok {
		return domsearch.Results{}, nil, fmt.Errorf("%w: %s", domain.ErrUnknownBackend, backendName)
	}

	dc = s.expandQuery(ctx, dc)

	results, err := backend.Search(ctx, dc)
	if err != nil {
		return domsearch.Results{}, nil, fmt.Errorf("backend %s: %w", backendName, err)
	}

	s.resolveTaxonomyLabels(ctx, dc, &results)
	mergeSelections(dc, &results)

	var events []domsearch.FilterUpdateEvent
	for _, f := range dc.SelectedFilters() {
		events = append(events, domsearch.NewFilterUpdateEvent(f.FilterName, f.SelectedValues()))
	}

	return results, events, nil
}

// ValidateSortField asks the named backend whether a field is sortable.
func (s *Service) ValidateSortField(ctx context.Context, backendName, field string) error {
	backend, ok := s.backends[backendName]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownBackend, backendName)
	}
	return backend.ValidateSortField(ctx, field)
}

// expandQuery rewrites the input query through the synonym table. The
// original context is returned untouched when there is nothing to expand.
func (s *Service) expandQuery(ctx context.Context, dc *domsearch.Context) *domsearch.Context {
	if s.synonyms == nil || dc.InputQuery() == "" {
		return dc
	}
	table, err := s.synonyms.Table(ctx)
	if err != nil {
		logger.FromContext(ctx).Warn("synonym table unavailable, searching unexpanded",
			zap.Error(err))
		return dc
	}
	expanded := synonym.Expand(dc.InputQuery(), table)
	if expanded == dc.InputQuery() {
		return dc
	}
	out := dc.WithInputQuery(expanded)
	return &out
}

// resolveTaxonomyLabels swaps term IDs for display labels on facets backed
// by a taxonomy term set. Values whose ID cannot be resolved are dropped;
// the rest of the facet survives.
func (s *Service) resolveTaxonomyLabels(
	ctx context.Context, dc *domsearch.Context, results *domsearch.Results,
) {
	if s.terms == nil {
		return
	}
	for i, fr := range results.Filters {
		cfg, ok := filter.ConfigurationFor(dc.Configurations(), fr.FilterName)
		if !ok || cfg.Template != filter.TemplateTaxonomy || cfg.TermSetID == "" {
			continue
		}
		ids := make([]string, 0, len(fr.Values))
		for _, v := range fr.Values {
			ids = append(ids, v.Name)
		}
		labels := s.terms.Resolve(ctx, cfg.TermSetID, ids)

		resolved := make([]filter.Value, 0, len(fr.Values))
		for _, v := range fr.Values {
			label, ok := labels[v.Name]
			if !ok {
				continue
			}
			v.Name = label
			resolved = append(resolved, v)
		}
		results.Filters[i].Values = resolved
	}
}

// mergeSelections reconciles the user's selected filter values with the
// buckets the backend returned: returned buckets matching a selection are
// marked selected, and selections absent from the fresh buckets are carried
// over with a zero count so they stay visible and removable.
func mergeSelections(dc *domsearch.Context, results *domsearch.Results) {
	for _, f := range dc.SelectedFilters() {
		selected := f.SelectedValues()
		idx := filterResultIndex(results.Filters, f.FilterName)
		if idx < 0 {
			results.Filters = append(results.Filters, domsearch.FilterResult{
				FilterName: f.FilterName,
				Values:     carryOver(selected),
			})
			continue
		}
		fr := &results.Filters[idx]
		for _, sel := range selected {
			if !markSelected(fr.Values, sel) {
				fr.Values = append(fr.Values, carried(sel))
			}
		}
	}
}

func filterResultIndex(filters []domsearch.FilterResult, name string) int {
	for i, fr := range filters {
		if fr.FilterName == name {
			return i
		}
	}
	return -1
}

// markSelected flags the bucket matching a selection, trying the raw token
// first and the display name second.
func markSelected(values []filter.Value, sel filter.Value) bool {
	for i := range values {
		if values[i].Value == sel.Value || values[i].Name == sel.Name {
			values[i].Selected = true
			return true
		}
	}
	return false
}

func carryOver(selected []filter.Value) []filter.Value {
	out := make([]filter.Value, 0, len(selected))
	for _, sel := range selected {
		out = append(out, carried(sel))
	}
	return out
}

func carried(sel filter.Value) filter.Value {
	sel.Selected = true
	sel.Count = 0
	return sel
}
