// Package refine serializes selected filters into backend refinement
// expression fragments.
//
// One fragment is produced per filter name, in the shape Field:token. Range
// operators collapse into a range(from,to) token, multiple non-range values
// combine under the filter's own AND/OR operator, and facet bucket tokens
// returned by a backend (operator Contains) pass through verbatim so a
// selected bucket round-trips unchanged.
package refine

import (
	"strconv"
	"strings"

	"github.com/openfacet/searchfed/internal/domain/filter"
)

// Unbounded range placeholders.
const (
	rangeMin = "min"
	rangeMax = "max"
)

// Build produces one refinement fragment per filter that has selected values
// and a known configuration. Filters whose configuration is missing (removed
// after selection) are skipped silently: a stale selection must never break
// the whole query. The caller combines the fragments with the cross-filter
// operator via Combine.
func Build(filters []filter.DataFilter, configs []filter.Configuration) []string {
	var fragments []string
	for _, f := range filters {
		cfg, ok := filter.ConfigurationFor(configs, f.FilterName)
		if !ok {
			continue
		}
		frag := buildFragment(f, cfg)
		if frag != "" {
			fragments = append(fragments, frag)
		}
	}
	return fragments
}

// Combine joins fragments with the cross-filter operator. A single fragment
// is returned bare: wrapping one operand in a boolean function produces a
// malformed expression on every backend.
func Combine(fragments []string, op filter.ConditionOperator) string {
	switch len(fragments) {
	case 0:
		return ""
	case 1:
		return fragments[0]
	}
	return wrap(op, fragments)
}

// buildFragment serializes one filter group. Range boundary values are
// assembled into a single range token; everything else becomes a value token
// combined under the filter's own operator.
func buildFragment(f filter.DataFilter, cfg filter.Configuration) string {
	selected := f.SelectedValues()
	if len(selected) == 0 {
		return ""
	}

	var lower, upper *filter.Value
	var tokens []string

	for i := range selected {
		v := selected[i]
		switch v.Operator {
		case filter.Gt, filter.Geq:
			lower = &selected[i]
		case filter.Lt, filter.Leq:
			upper = &selected[i]
		default:
			tokens = append(tokens, valueToken(v))
		}
	}

	if lower != nil || upper != nil {
		tokens = append(tokens, rangeToken(lower, upper))
	}

	op := f.Operator
	if op == "" {
		op = cfg.Operator
	}

	var token string
	if len(tokens) == 1 {
		token = tokens[0]
	} else {
		token = wrap(op, tokens)
	}
	return f.FilterName + ":" + token
}

// valueToken maps a non-range value to its token.
func valueToken(v filter.Value) string {
	switch v.Operator {
	case filter.Contains:
		// Facet bucket tokens are opaque backend filter tokens; never
		// re-quoted or wrapped.
		return v.Value
	case filter.Neq:
		return "not(" + quoteIfNeeded(v.Value) + ")"
	case filter.StartsWith:
		return v.Value + "*"
	case filter.NotNull:
		return "*"
	default:
		return quoteIfNeeded(v.Value)
	}
}

// rangeToken assembles the range(from,to) token, annotating strict bounds.
// Inclusive bounds are the range default, so Geq/Leq need no annotation.
func rangeToken(lower, upper *filter.Value) string {
	from, to := rangeMin, rangeMax
	var opts []string
	if lower != nil {
		from = lower.Value
		if lower.Operator == filter.Gt {
			opts = append(opts, `from="gt"`)
		}
	}
	if upper != nil {
		to = upper.Value
		if upper.Operator == filter.Lt {
			opts = append(opts, `to="lt"`)
		}
	}
	parts := append([]string{from, to}, opts...)
	return "range(" + strings.Join(parts, ",") + ")"
}

// wrap encloses operands in the uppercase boolean function for op.
func wrap(op filter.ConditionOperator, operands []string) string {
	name := "OR"
	if op == filter.And {
		name = "AND"
	}
	return name + "(" + strings.Join(operands, ",") + ")"
}

// quoteIfNeeded wraps string values containing whitespace in double quotes,
// doubling embedded quotes. Numeric and date tokens are never quoted.
func quoteIfNeeded(value string) string {
	if !strings.ContainsAny(value, " \t") {
		return value
	}
	if isNumeric(value) || isDate(value) {
		return value
	}
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

func isNumeric(value string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	return err == nil
}

func isDate(value string) bool {
	return timestampLike(strings.TrimSpace(value))
}

func timestampLike(value string) bool {
	if len(value) < 10 {
		return false
	}
	for i, r := range value[:10] {
		switch i {
		case 4, 7:
			if r != '-' {
				return false
			}
		default:
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}
