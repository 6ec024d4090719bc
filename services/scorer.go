package services

import (
	"math"
	"sort"

	"resale-explorer/models"
)

const (
	baseScore = 50.0

	highFloorBonus = 5.0
	midFloorBonus  = 3.0
	spaciousBonus  = 5.0
	goodValueBonus = 15.0
	valuePenalty   = 15.0

	shortLeasePenalty  = 25.0
	mediumLeasePenalty = 10.0
)

// Reasons, in the order they are reported.
const (
	ReasonHighFloor = "High floor"
	ReasonMidFloor  = "Mid floor"
	ReasonSpacious  = "Spacious"
	ReasonLowLease  = "Low remaining lease"
	ReasonGoodValue = "Good value $/sqm"
)

// Scorer rates rows against the medians of the subset it is given.
type Scorer struct{}

func NewScorer() *Scorer {
	return &Scorer{}
}

// Score computes a score in [0, 100] and its reasons for every row. Medians
// are taken over rows, so scores are only comparable within one call. An
// empty input returns nil.
func (s *Scorer) Score(rows []models.DerivedRow) []models.ScoredRow {
	if len(rows) == 0 {
		return nil
	}

	areas := make([]float64, len(rows))
	ppsqm := make([]float64, len(rows))
	for i, r := range rows {
		areas[i] = r.FloorAreaSqm
		ppsqm[i] = r.PricePerSqm
	}
	medianArea := Median(areas)
	medianPPSqm := Median(ppsqm)

	out := make([]models.ScoredRow, len(rows))
	for i, r := range rows {
		out[i] = scoreRow(r, medianArea, medianPPSqm)
	}
	return out
}

func scoreRow(r models.DerivedRow, medianArea, medianPPSqm float64) models.ScoredRow {
	score := baseScore
	var reasons []string

	switch {
	case r.StoreyFloor > 20:
		score += highFloorBonus
		reasons = append(reasons, ReasonHighFloor)
	case r.StoreyFloor >= 10:
		score += midFloorBonus
		reasons = append(reasons, ReasonMidFloor)
	}

	if r.FloorAreaSqm > medianArea {
		score += spaciousBonus
		reasons = append(reasons, ReasonSpacious)
	}

	goodValue := r.PricePerSqm < medianPPSqm
	if goodValue {
		score += goodValueBonus
	} else {
		// unbounded below; the clamp is the only floor
		score -= valuePenalty * (r.PricePerSqm - medianPPSqm) / medianPPSqm
	}

	switch {
	case r.RemainingLeaseYears < 60:
		score -= shortLeasePenalty
		reasons = append(reasons, ReasonLowLease)
	case r.RemainingLeaseYears < 80:
		score -= mediumLeasePenalty
	}

	if goodValue {
		reasons = append(reasons, ReasonGoodValue)
	}

	return models.ScoredRow{
		DerivedRow: r,
		Score:      clamp(score, 0, 100),
		Reasons:    reasons,
	}
}

// Median returns the middle value of values, or the mean of the two middle
// values for an even count. It does not modify values. Median(nil) is 0.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
