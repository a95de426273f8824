package searchfed

import (
	"context"
	"errors"
	"fmt"

	"github.com/openfacet/searchfed/internal/domain/filter"
	domsearch "github.com/openfacet/searchfed/internal/domain/search"
)

// Response is one federated query outcome.
type Response struct {
	Items           []domsearch.Item
	Filters         []domsearch.FilterResult
	TotalCount      int
	QueryAlteration string
	Events          []domsearch.FilterUpdateEvent
}

// QueryBuilder is a fluent builder for federated queries.
type QueryBuilder struct {
	c       *Client
	backend string

	query    string
	page     int
	pageSize int

	filters  []filter.DataFilter
	operator filter.ConditionOperator
	sorts    []domsearch.SortField
	vertical string
	params   map[string]string
}

// Query starts a query against the named backend.
func (c *Client) Query(backend string) *QueryBuilder {
	return &QueryBuilder{c: c, backend: backend}
}

// Text sets the free-text query. Empty text searches everything.
func (b *QueryBuilder) Text(q string) *QueryBuilder {
	b.query = q
	return b
}

// Page sets the 1-based page number.
func (b *QueryBuilder) Page(n int) *QueryBuilder {
	b.page = n
	return b
}

// PageSize sets the number of items per page.
func (b *QueryBuilder) PageSize(n int) *QueryBuilder {
	b.pageSize = n
	return b
}

// Where adds a filter with equality conditions on the given values.
func (b *QueryBuilder) Where(filterName string, values ...string) *QueryBuilder {
	return b.WhereOp(filterName, filter.Eq, values...)
}

// WhereOp adds a filter applying one comparison operator to all values.
// Values within the filter combine with OR.
func (b *QueryBuilder) WhereOp(
	filterName string, op filter.ComparisonOperator, values ...string,
) *QueryBuilder {
	df := filter.DataFilter{FilterName: filterName, Operator: filter.Or}
	for _, v := range values {
		df.Values = append(df.Values, filter.Value{
			Name:     v,
			Value:    v,
			Operator: op,
			Selected: true,
		})
	}
	b.filters = append(b.filters, df)
	return b
}

// CombineWith sets how the filters combine across the query (default AND).
func (b *QueryBuilder) CombineWith(op filter.ConditionOperator) *QueryBuilder {
	b.operator = op
	return b
}

// SortBy adds a sort criterion.
func (b *QueryBuilder) SortBy(field string, descending bool) *QueryBuilder {
	b.sorts = append(b.sorts, domsearch.SortField{Field: field, Descending: descending})
	return b
}

// Vertical scopes the query to a configured vertical by key.
func (b *QueryBuilder) Vertical(key string) *QueryBuilder {
	b.vertical = key
	return b
}

// Param sets an arbitrary query-string parameter for template resolution.
func (b *QueryBuilder) Param(name, value string) *QueryBuilder {
	if b.params == nil {
		b.params = map[string]string{}
	}
	b.params[name] = value
	return b
}

// Do executes the query.
func (b *QueryBuilder) Do(ctx context.Context) (Response, error) {
	dc, err := b.build()
	if err != nil {
		return Response{}, err
	}

	results, events, err := b.c.svc.Search(ctx, b.backend, &dc)
	if err != nil {
		return Response{}, err
	}

	return Response{
		Items:           results.Items,
		Filters:         results.Filters,
		TotalCount:      results.TotalCount,
		QueryAlteration: results.QueryAlteration,
		Events:          events,
	}, nil
}

func (b *QueryBuilder) build() (domsearch.Context, error) {
	vertical, err := b.resolveVertical()
	if err != nil {
		return domsearch.Context{}, err
	}

	dc, err := domsearch.NewContext(
		b.query,
		b.page,
		b.pageSize,
		b.filters,
		b.c.configs,
		b.operator,
		b.sorts,
		vertical,
		b.params,
	)
	if err != nil {
		return domsearch.Context{}, fmt.Errorf("searchfed: build query: %w", err)
	}
	return dc, nil
}

func (b *QueryBuilder) resolveVertical() (*domsearch.Vertical, error) {
	if b.vertical == "" {
		return nil, nil
	}
	for i := range b.c.verticals {
		if b.c.verticals[i].Key == b.vertical {
			return &b.c.verticals[i], nil
		}
	}
	return nil, errors.New("searchfed: unknown vertical: " + b.vertical)
}
