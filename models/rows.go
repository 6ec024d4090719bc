package models

import "strings"

// FloorCategory buckets a storey into low, mid or high floors.
type FloorCategory string

const (
	FloorLow  FloorCategory = "Low"
	FloorMid  FloorCategory = "Mid"
	FloorHigh FloorCategory = "High"
)

// FloorCategories lists categories in the order charts present them.
var FloorCategories = []FloorCategory{FloorHigh, FloorMid, FloorLow}

// Label returns the chart heading for the category.
func (c FloorCategory) Label() string {
	switch c {
	case FloorLow:
		return "Low (<10)"
	case FloorMid:
		return "Mid (10-20)"
	case FloorHigh:
		return "High (>20)"
	}
	return string(c)
}

// LeaseBucket buckets remaining lease years.
type LeaseBucket string

const (
	LeaseShort  LeaseBucket = "0-60 yrs"
	LeaseMedium LeaseBucket = "61-80 yrs"
	LeaseLong   LeaseBucket = "81-99 yrs"
)

// LeaseBuckets lists buckets from shortest to longest lease.
var LeaseBuckets = []LeaseBucket{LeaseShort, LeaseMedium, LeaseLong}

// Colour is the chart colour used for the bucket.
func (b LeaseBucket) Colour() string {
	switch b {
	case LeaseShort:
		return "#FFA600"
	case LeaseMedium:
		return "#4ECDC4"
	case LeaseLong:
		return "#FF6B6B"
	}
	return "#999999"
}

// DerivedRow is a transaction with its grouping columns.
type DerivedRow struct {
	Transaction
	FloorCategory FloorCategory `json:"floor_category"`
	LeaseBucket   LeaseBucket   `json:"lease_bucket"`
	FloorBin      string        `json:"floor_bin"`
}

// ScoredRow is a derived row with its desirability score. Scores depend on the
// medians of the subset they were computed over, so they are only comparable
// within one filter state.
type ScoredRow struct {
	DerivedRow
	Score   float64  `json:"score"`
	Reasons []string `json:"reasons"`
}

// Rationale joins the reasons into one readable string.
func (r ScoredRow) Rationale() string {
	return strings.Join(r.Reasons, ", ")
}
