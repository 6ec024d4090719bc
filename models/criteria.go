package models

import "time"

// IntRange is an inclusive integer interval.
type IntRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Contains reports whether v lies in [Min, Max]. An inverted range contains nothing.
func (r IntRange) Contains(v int) bool {
	return r.Min <= v && v <= r.Max
}

// FloatRange is an inclusive floating-point interval.
type FloatRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies in [Min, Max]. An inverted range contains nothing.
func (r FloatRange) Contains(v float64) bool {
	return r.Min <= v && v <= r.Max
}

// DateRange is an inclusive calendar-day interval.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains compares at day granularity: both endpoints and t are truncated to
// midnight UTC before comparison.
func (r DateRange) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(Day(r.Start)) && !d.After(Day(r.End))
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FilterCriteria narrows the canonical table. All predicates combine with AND.
type FilterCriteria struct {
	Town       string     `json:"town"`
	FlatType   string     `json:"flat_type"`
	FlatModels []string   `json:"flat_models"`
	Storey     IntRange   `json:"storey"`
	FloorArea  FloatRange `json:"floor_area"`
	LeaseYears IntRange   `json:"lease_years"`
	Months     DateRange  `json:"months"`
}

// FilterOptions describes the values a UI may offer for each filter, taken from
// the canonical table.
type FilterOptions struct {
	Towns       []string   `json:"towns"`
	FlatTypes   []string   `json:"flat_types"`
	FlatModels  []string   `json:"flat_models"`
	Storey      IntRange   `json:"storey"`
	FloorArea   FloatRange `json:"floor_area"`
	LeaseYears  IntRange   `json:"lease_years"`
	FirstMonth  time.Time  `json:"first_month"`
	LatestMonth time.Time  `json:"latest_month"`
}
