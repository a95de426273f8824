// Package filter holds the canonical filter model shared by every backend:
// a single filter condition, the operator vocabulary, per-filter-name
// configuration, and the active filter groups a user has selected.
package filter

import "fmt"

// ComparisonOperator identifies how a single filter value compares against a
// field. Operator identity is fixed across the system: Geq always means
// "on or after", Lt always means "strictly before". Backends map identity to
// their own syntax at compile time.
type ComparisonOperator string

const (
	Eq         ComparisonOperator = "eq"
	Neq        ComparisonOperator = "neq"
	Gt         ComparisonOperator = "gt"
	Geq        ComparisonOperator = "geq"
	Lt         ComparisonOperator = "lt"
	Leq        ComparisonOperator = "leq"
	Contains   ComparisonOperator = "contains"
	StartsWith ComparisonOperator = "startsWith"
	NotNull    ComparisonOperator = "notNull"
)

// IsValid reports whether op is a known comparison operator.
func (op ComparisonOperator) IsValid() bool {
	switch op {
	case Eq, Neq, Gt, Geq, Lt, Leq, Contains, StartsWith, NotNull:
		return true
	}
	return false
}

// IsRange reports whether op is one of the four range boundary operators.
func (op ComparisonOperator) IsRange() bool {
	switch op {
	case Gt, Geq, Lt, Leq:
		return true
	}
	return false
}

// ConditionOperator combines multiple conditions: values within one filter,
// or fragments across filters.
type ConditionOperator string

const (
	And ConditionOperator = "and"
	Or  ConditionOperator = "or"
)

// IsValid reports whether op is a known condition operator.
func (op ConditionOperator) IsValid() bool {
	return op == And || op == Or
}

// Value is one filter condition: a raw backend token plus the label shown to
// the user. Count may legitimately be zero while Selected stays true (a
// carried-over selection after the result set narrowed); such values remain
// visible and removable.
type Value struct {
	Name     string             `json:"name"`
	Value    string             `json:"value"`
	Operator ComparisonOperator `json:"operator"`
	Selected bool               `json:"selected"`
	Count    int                `json:"count,omitempty"`
	Disabled bool               `json:"disabled,omitempty"`
}

// DataFilter is one active filter group as selected by the user. Operator
// governs how multiple selected values within this filter combine; how
// different filters combine across the query is the data context's concern.
type DataFilter struct {
	FilterName string            `json:"filterName"`
	Values     []Value           `json:"values"`
	Operator   ConditionOperator `json:"operator"`
}

// SelectedValues returns only the values included when compiling a query.
func (f DataFilter) SelectedValues() []Value {
	var out []Value
	for _, v := range f.Values {
		if v.Selected {
			out = append(out, v)
		}
	}
	return out
}

// HasSelection reports whether at least one value is selected.
func (f DataFilter) HasSelection() bool {
	for _, v := range f.Values {
		if v.Selected {
			return true
		}
	}
	return false
}

// Template identifies how a filter renders and, for date intervals, how its
// aggregation buckets are requested.
type Template string

const (
	TemplateCheckbox     Template = "CheckboxFilterTemplate"
	TemplateDateRange    Template = "DateRangeFilterTemplate"
	TemplateDateInterval Template = "DateIntervalFilterTemplate"
	TemplateTaxonomy     Template = "TaxonomyFilterTemplate"
	TemplateCombo        Template = "ComboFilterTemplate"
)

// SortBy orders facet buckets by result count or by bucket name.
type SortBy string

const (
	SortByCount SortBy = "count"
	SortByName  SortBy = "name"
)

// SortDirection orders facet buckets ascending or descending.
type SortDirection string

const (
	Ascending  SortDirection = "ascending"
	Descending SortDirection = "descending"
)

// DefaultMaxBuckets is the aggregation bucket count requested when a
// configuration does not set one.
const DefaultMaxBuckets = 10

// Configuration holds the per-filter-name settings supplied by configuration
// storage.
type Configuration struct {
	FilterName    string            `yaml:"filter_name" json:"filterName"`
	DisplayName   string            `yaml:"display_name" json:"displayName"`
	Template      Template          `yaml:"template" json:"template"`
	Operator      ConditionOperator `yaml:"operator" json:"operator"`
	SortBy        SortBy            `yaml:"sort_by" json:"sortBy"`
	SortDirection SortDirection     `yaml:"sort_direction" json:"sortDirection"`
	MaxBuckets    int               `yaml:"max_buckets" json:"maxBuckets"`
	// TermSetID resolves taxonomy value IDs to labels; only meaningful for
	// TemplateTaxonomy.
	TermSetID string `yaml:"term_set_id" json:"termSetId,omitempty"`
}

// Normalize fills defaulted configuration fields in place.
func (c *Configuration) Normalize() error {
	if c.FilterName == "" {
		return fmt.Errorf("filter configuration requires a filter name")
	}
	if c.Template == "" {
		c.Template = TemplateCheckbox
	}
	switch c.Template {
	case TemplateCheckbox, TemplateDateRange, TemplateDateInterval, TemplateTaxonomy, TemplateCombo:
	default:
		return fmt.Errorf("filter %q: unknown template %q", c.FilterName, c.Template)
	}
	if c.Operator == "" {
		c.Operator = Or
	}
	if !c.Operator.IsValid() {
		return fmt.Errorf("filter %q: invalid operator %q", c.FilterName, c.Operator)
	}
	if c.SortBy == "" {
		c.SortBy = SortByCount
	}
	if c.SortDirection == "" {
		c.SortDirection = Descending
	}
	if c.MaxBuckets <= 0 {
		c.MaxBuckets = DefaultMaxBuckets
	}
	return nil
}

// ConfigurationFor finds the configuration for a filter name.
func ConfigurationFor(configs []Configuration, filterName string) (Configuration, bool) {
	for _, c := range configs {
		if c.FilterName == filterName {
			return c, true
		}
	}
	return Configuration{}, false
}
