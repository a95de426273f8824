package interval

import "time"

// BucketRange is one aggregation range requested for a date-interval filter.
// A nil side is unbounded; backends substitute their own sentinel dates.
type BucketRange struct {
	Interval Interval
	From     *time.Time
	To       *time.Time
}

// BucketRanges returns the fixed set of seven aggregation ranges matching the
// bucket boundaries, computed once per compile call from the reference time.
// Order follows the interval menu, most recent first, with the unbounded
// any-time range last.
func BucketRanges(now time.Time) []BucketRange {
	b := BoundariesAt(now)
	return []BucketRange{
		{Interval: Past24, From: &b.Day},
		{Interval: PastWeek, From: &b.Week, To: &b.Day},
		{Interval: PastMonth, From: &b.Month, To: &b.Week},
		{Interval: Past3Months, From: &b.ThreeMonths, To: &b.Month},
		{Interval: PastYear, From: &b.Year, To: &b.ThreeMonths},
		{Interval: OlderThanAYear, To: &b.Year},
		{Interval: AnyTime},
	}
}

// CutPoints returns the five bucket boundaries in ascending order, as used by
// backends that discretize a date refiner from cut points instead of explicit
// ranges.
func CutPoints(now time.Time) []time.Time {
	b := BoundariesAt(now)
	return []time.Time{b.Year, b.ThreeMonths, b.Month, b.Week, b.Day}
}
