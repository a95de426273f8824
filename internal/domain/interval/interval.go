// Package interval maps timestamps into relative-time buckets and builds the
// concrete date-range boundaries for a chosen bucket.
package interval

import (
	"regexp"
	"strings"
	"time"

	"github.com/openfacet/searchfed/internal/domain/filter"
)

// Interval is a relative-time bucket over a document date field.
type Interval string

const (
	AnyTime        Interval = "anyTime"
	Past24         Interval = "past24"
	PastWeek       Interval = "pastWeek"
	PastMonth      Interval = "pastMonth"
	Past3Months    Interval = "past3Months"
	PastYear       Interval = "pastYear"
	OlderThanAYear Interval = "olderThanAYear"
)

// All lists every interval in menu order, most recent first.
func All() []Interval {
	return []Interval{
		AnyTime, Past24, PastWeek, PastMonth, Past3Months, PastYear, OlderThanAYear,
	}
}

// IsValid reports whether i is a known interval.
func (i Interval) IsValid() bool {
	switch i {
	case AnyTime, Past24, PastWeek, PastMonth, Past3Months, PastYear, OlderThanAYear:
		return true
	}
	return false
}

// boundaryBuffer tolerates clock skew between the moment a filter is selected
// client-side and the moment the backend evaluates it. Without it a document
// sitting exactly on a boundary can flip buckets between selection and fetch.
const boundaryBuffer = time.Minute

// timestampPattern matches an embedded ISO-8601 timestamp inside a raw value
// or a backend range(...) refiner expression.
var timestampPattern = regexp.MustCompile(
	`\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?(?:Z|[+-]\d{2}:?\d{2})?`,
)

// Boundaries holds the bucket cut-offs for one reference time, each already
// shifted back by the boundary buffer.
type Boundaries struct {
	Day         time.Time
	Week        time.Time
	Month       time.Time
	ThreeMonths time.Time
	Year        time.Time
}

// BoundariesAt computes the bucket cut-offs for a reference time. Month and
// year spans follow the calendar; day and week are fixed durations.
func BoundariesAt(now time.Time) Boundaries {
	return Boundaries{
		Day:         now.Add(-24 * time.Hour).Add(-boundaryBuffer),
		Week:        now.Add(-7 * 24 * time.Hour).Add(-boundaryBuffer),
		Month:       now.AddDate(0, -1, 0).Add(-boundaryBuffer),
		ThreeMonths: now.AddDate(0, -3, 0).Add(-boundaryBuffer),
		Year:        now.AddDate(-1, 0, 0).Add(-boundaryBuffer),
	}
}

// BucketFor resolves a raw date value to its interval. The value may be a
// plain ISO-8601 timestamp or a backend range(...) expression; for a range
// expression the last embedded timestamp is used (the document's most recent
// qualifying date). Empty or unparsable input resolves to AnyTime so facet
// menus always have a bucket to show.
func BucketFor(dateValue string, now time.Time) Interval {
	t, ok := parseLastTimestamp(dateValue)
	if !ok {
		return AnyTime
	}

	b := BoundariesAt(now)

	// Evaluated strictly in this order; first match wins.
	switch {
	case t.Before(b.Year):
		return OlderThanAYear
	case !t.Before(b.Day):
		return Past24
	case !t.Before(b.Week):
		return PastWeek
	case !t.Before(b.Month):
		return PastMonth
	case !t.Before(b.ThreeMonths):
		return Past3Months
	case !t.Before(b.Year):
		return PastYear
	}
	return AnyTime
}

// parseLastTimestamp extracts the last ISO timestamp embedded in value.
func parseLastTimestamp(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	matches := timestampPattern.FindAllString(value, -1)
	if len(matches) == 0 {
		return time.Time{}, false
	}
	raw := matches[len(matches)-1]
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	// Timestamps without a zone designator are treated as UTC.
	if t, err := time.Parse("2006-01-02T15:04:05", raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// Bound is one boundary of a resolved interval, carrying the comparison
// operator the refinement builder keys off.
type Bound struct {
	Operator filter.ComparisonOperator
	Time     time.Time
}

// Bounds is the pair of boundary values to attach to a query when the user
// picks an interval from the menu. Either side may be absent.
type Bounds struct {
	From *Bound
	To   *Bound
}

// BoundsFor produces the boundary pair for an interval. Bounded past
// intervals use the asymmetric pair Geq from / Leq now; OlderThanAYear has
// only an upper bound with Lt. The operator pairing is fixed: downstream
// refinement building keys off operator identity, not position.
func BoundsFor(i Interval, now time.Time) Bounds {
	switch i {
	case Past24:
		return boundedPast(now, now.Add(-24*time.Hour))
	case PastWeek:
		return boundedPast(now, now.Add(-7*24*time.Hour))
	case PastMonth:
		return boundedPast(now, now.AddDate(0, -1, 0))
	case Past3Months:
		return boundedPast(now, now.AddDate(0, -3, 0))
	case PastYear:
		return boundedPast(now, now.AddDate(-1, 0, 0))
	case OlderThanAYear:
		return Bounds{
			To: &Bound{Operator: filter.Lt, Time: now.AddDate(-1, 0, 0)},
		}
	}
	return Bounds{}
}

func boundedPast(now, from time.Time) Bounds {
	return Bounds{
		From: &Bound{Operator: filter.Geq, Time: from},
		To:   &Bound{Operator: filter.Leq, Time: now},
	}
}

// FilterValues converts resolved bounds into the filter values attached to a
// query for the given field.
func (b Bounds) FilterValues(fieldName string) []filter.Value {
	var out []filter.Value
	if b.From != nil {
		out = append(out, filter.Value{
			Name:     fieldName,
			Value:    b.From.Time.UTC().Format(time.RFC3339),
			Operator: b.From.Operator,
			Selected: true,
		})
	}
	if b.To != nil {
		out = append(out, filter.Value{
			Name:     fieldName,
			Value:    b.To.Time.UTC().Format(time.RFC3339),
			Operator: b.To.Operator,
			Selected: true,
		})
	}
	return out
}
