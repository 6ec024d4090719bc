package services

import (
	"sort"

	"github.com/shopspring/decimal"

	"resale-explorer/models"
)

// DefaultTopN is the size of the recommendation table.
const DefaultTopN = 20

var (
	million  = decimal.NewFromInt(1_000_000)
	thousand = decimal.NewFromInt(1_000)
)

// TopN returns the n highest-scoring rows. Rows with equal scores keep their
// input order. rows is not modified.
func TopN(rows []models.ScoredRow, n int) []models.ScoredRow {
	if n <= 0 || len(rows) == 0 {
		return nil
	}
	sorted := make([]models.ScoredRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// FormatPrice abbreviates a price for display: "$1.23M" from one million up,
// "$456k" below. Digits past the shown precision are truncated, never rounded,
// so 999,999 is "$999k" and 1,239,999 is "$1.23M".
func FormatPrice(v float64) string {
	d := decimal.NewFromFloat(v)
	if d.GreaterThanOrEqual(million) {
		return "$" + d.Div(million).Truncate(2).StringFixed(2) + "M"
	}
	return "$" + d.Div(thousand).Truncate(0).StringFixed(0) + "k"
}

// ScoreBand labels a score for colouring: good, fair or poor.
func ScoreBand(score float64) string {
	switch {
	case score >= 75:
		return "good"
	case score >= 50:
		return "fair"
	default:
		return "poor"
	}
}

// Recommendations turns ranked rows into display rows numbered from 1.
func Recommendations(ranked []models.ScoredRow) []models.Recommendation {
	out := make([]models.Recommendation, 0, len(ranked))
	for i, r := range ranked {
		// the table shows the integer part; the band follows what is shown
		shown := int(r.Score)
		out = append(out, models.Recommendation{
			Rank:              i + 1,
			Month:             r.Month.Format("2006-01"),
			Town:              r.Town,
			FlatType:          r.FlatType,
			Block:             r.Block,
			StreetName:        r.StreetName,
			StoreyRange:       r.StoreyRange,
			FloorAreaSqm:      r.FloorAreaSqm,
			FlatModel:         r.FlatModel,
			LeaseCommenceDate: r.LeaseCommenceDate,
			RemainingLease:    r.RemainingLease,
			ResalePrice:       r.ResalePrice,
			Price:             FormatPrice(r.ResalePrice),
			Score:             shown,
			Band:              ScoreBand(float64(shown)),
			Rationale:         r.Rationale(),
		})
	}
	return out
}
