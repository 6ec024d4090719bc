package models

import "time"

// StreetStat is the mean resale price and transaction count for one street.
type StreetStat struct {
	StreetName string  `json:"street_name"`
	AvgPrice   float64 `json:"avg_price"`
	AvgPriceK  float64 `json:"avg_price_k"`
	Count      int     `json:"count"`
}

// TrendPoint is one transaction plotted on a floor-category trend chart.
type TrendPoint struct {
	Month               time.Time   `json:"month"`
	PriceK              float64     `json:"price_k"`
	ResalePrice         float64     `json:"resale_price"`
	LeaseBucket         LeaseBucket `json:"lease_bucket"`
	Block               string      `json:"block"`
	StreetName          string      `json:"street_name"`
	StoreyFloor         int         `json:"storey_floor"`
	RemainingLeaseYears int         `json:"remaining_lease_years"`
	FloorAreaSqm        float64     `json:"floor_area_sqm"`
}

// TrendLine is an ordinary least squares fit of price ($k) against month index
// (months since year 0) for one lease bucket.
type TrendLine struct {
	LeaseBucket LeaseBucket `json:"lease_bucket"`
	Colour      string      `json:"colour"`
	Points      int         `json:"points"`
	Slope       float64     `json:"slope"`
	Intercept   float64     `json:"intercept"`
}

// FloorTrend is the chart data for one floor category.
type FloorTrend struct {
	Category FloorCategory `json:"category"`
	Label    string        `json:"label"`
	Empty    bool          `json:"empty"`
	Points   []TrendPoint  `json:"points"`
	Lines    []TrendLine   `json:"lines"`
}

// BinBox holds box-plot statistics of resale price for one floor-area bin and
// lease bucket.
type BinBox struct {
	FloorBin    string      `json:"floor_bin"`
	LeaseBucket LeaseBucket `json:"lease_bucket"`
	Count       int         `json:"count"`
	Min         float64     `json:"min"`
	Q1          float64     `json:"q1"`
	Median      float64     `json:"median"`
	Q3          float64     `json:"q3"`
	Max         float64     `json:"max"`
}

// Recommendation is one display row of the top-N table.
type Recommendation struct {
	Rank              int     `json:"rank"`
	Month             string  `json:"month"`
	Town              string  `json:"town"`
	FlatType          string  `json:"flat_type"`
	Block             string  `json:"block"`
	StreetName        string  `json:"street_name"`
	StoreyRange       string  `json:"storey_range"`
	FloorAreaSqm      float64 `json:"floor_area_sqm"`
	FlatModel         string  `json:"flat_model"`
	LeaseCommenceDate int     `json:"lease_commence_date"`
	RemainingLease    string  `json:"remaining_lease"`
	ResalePrice       float64 `json:"resale_price"`
	Price             string  `json:"price"`
	Score             int     `json:"score"`
	Band              string  `json:"band"`
	Rationale         string  `json:"rationale"`
}

// Dashboard is everything a UI shell needs to draw one filter state.
type Dashboard struct {
	Criteria        FilterCriteria   `json:"criteria"`
	RowCount        int              `json:"row_count"`
	NoData          bool             `json:"no_data"`
	Warnings        []string         `json:"warnings,omitempty"`
	Rows            []DerivedRow     `json:"rows"`
	FloorBins       []string         `json:"floor_bins"`
	Trends          []FloorTrend     `json:"trends"`
	Distribution    []BinBox         `json:"distribution"`
	Streets         []StreetStat     `json:"streets"`
	Recommendations []Recommendation `json:"recommendations"`
	GeneratedAt     time.Time        `json:"generated_at"`
}
