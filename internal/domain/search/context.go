// Package search holds the uniform data context compilers consume and the
// uniform result model normalizers produce.
package search

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/openfacet/searchfed/internal/domain/filter"
)

// Paging limits.
const (
	DefaultPageSize = 10
	MaxPageSize     = 500
)

// WildcardQuery is sent when the input text is empty. Backends disagree on
// how a truly empty query string is treated, so one is never sent.
const WildcardQuery = "*"

// searchTermsToken matches the {searchTerms} placeholder, any case.
var searchTermsToken = regexp.MustCompile(`(?i)\{searchTerms\}`)

// SortField is one user-chosen sort criterion.
type SortField struct {
	Field      string `json:"field"`
	Descending bool   `json:"descending"`
}

// Vertical is a named result-set partition with its own query scoping.
type Vertical struct {
	Key           string   `yaml:"key" json:"key"`
	Name          string   `yaml:"name" json:"name"`
	QueryTemplate string   `yaml:"query_template" json:"queryTemplate"`
	EntityTypes   []string `yaml:"entity_types" json:"entityTypes,omitempty"`
}

// Context is the compiler input: one immutable snapshot of the UI state,
// rebuilt on every user interaction. Compilers never mutate it; they produce
// a new backend request object.
type Context struct {
	inputQuery     string
	pageNumber     int
	itemsPerPage   int
	filters        []filter.DataFilter
	configurations []filter.Configuration
	filterOperator filter.ConditionOperator
	sortFields     []SortField
	vertical       *Vertical
	queryParams    map[string]string
}

// NewContext validates and normalizes a data context.
// Defaults: page 1, page size 10, cross-filter operator AND.
func NewContext(
	inputQuery string,
	pageNumber, itemsPerPage int,
	filters []filter.DataFilter,
	configurations []filter.Configuration,
	filterOperator filter.ConditionOperator,
	sortFields []SortField,
	vertical *Vertical,
	queryParams map[string]string,
) (Context, error) {
	if pageNumber <= 0 {
		pageNumber = 1
	}
	if itemsPerPage <= 0 {
		itemsPerPage = DefaultPageSize
	}
	if itemsPerPage > MaxPageSize {
		itemsPerPage = MaxPageSize
	}
	if filterOperator == "" {
		filterOperator = filter.And
	}
	if !filterOperator.IsValid() {
		return Context{}, fmt.Errorf("invalid filter operator: %q", filterOperator)
	}
	for i := range configurations {
		if err := configurations[i].Normalize(); err != nil {
			return Context{}, err
		}
	}

	return Context{
		inputQuery:     inputQuery,
		pageNumber:     pageNumber,
		itemsPerPage:   itemsPerPage,
		filters:        filters,
		configurations: configurations,
		filterOperator: filterOperator,
		sortFields:     sortFields,
		vertical:       vertical,
		queryParams:    queryParams,
	}, nil
}

// WithInputQuery returns a copy of the context carrying a different query
// text. The receiver is unchanged.
func (c *Context) WithInputQuery(query string) Context {
	out := *c
	out.inputQuery = query
	return out
}

// InputQuery returns the raw free-text query.
func (c *Context) InputQuery() string { return c.inputQuery }

// PageNumber returns the 1-based page number.
func (c *Context) PageNumber() int { return c.pageNumber }

// ItemsPerPage returns the page size.
func (c *Context) ItemsPerPage() int { return c.itemsPerPage }

// Filters returns the active filter groups.
func (c *Context) Filters() []filter.DataFilter { return c.filters }

// Configurations returns the per-filter-name settings.
func (c *Context) Configurations() []filter.Configuration { return c.configurations }

// FilterOperator returns the cross-filter combination operator.
func (c *Context) FilterOperator() filter.ConditionOperator { return c.filterOperator }

// SortFields returns the user-chosen sort criteria.
func (c *Context) SortFields() []SortField { return c.sortFields }

// Vertical returns the selected vertical, or nil.
func (c *Context) Vertical() *Vertical { return c.vertical }

// QueryParam returns an arbitrary query-string parameter.
func (c *Context) QueryParam(name string) string { return c.queryParams[name] }

// Offset computes the item offset for the current page. Page numbers are
// 1-based; the offset never goes below zero.
func (c *Context) Offset() int {
	offset := (c.pageNumber - 1) * c.itemsPerPage
	if offset < 0 {
		return 0
	}
	return offset
}

// SelectedFilters returns the filters with at least one selected value.
func (c *Context) SelectedFilters() []filter.DataFilter {
	var out []filter.DataFilter
	for _, f := range c.filters {
		if f.HasSelection() {
			out = append(out, f)
		}
	}
	return out
}

// QueryText resolves the effective query text: the vertical's query template
// with {searchTerms} substituted, falling back to the wildcard query for
// empty input.
func (c *Context) QueryText() string {
	text := strings.TrimSpace(c.inputQuery)
	if text == "" {
		text = WildcardQuery
	}
	if c.vertical != nil && c.vertical.QueryTemplate != "" {
		return ResolveTokens(c.vertical.QueryTemplate, text)
	}
	return text
}

// ResolveTokens substitutes the {searchTerms} placeholder (any case) in a
// query template with the live query text.
func ResolveTokens(template, queryText string) string {
	return searchTermsToken.ReplaceAllString(template, queryText)
}
