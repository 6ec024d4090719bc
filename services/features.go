package services

import (
	"fmt"
	"math"

	"resale-explorer/models"
)

const floorBinWidth = 10.0

// FloorCategoryOf maps a storey number to its floor category.
func FloorCategoryOf(storey int) models.FloorCategory {
	switch {
	case storey <= 9:
		return models.FloorLow
	case storey <= 20:
		return models.FloorMid
	default:
		return models.FloorHigh
	}
}

// LeaseBucketOf maps remaining lease years to a bucket, checking the longest
// bucket first.
func LeaseBucketOf(years int) models.LeaseBucket {
	switch {
	case years >= 81:
		return models.LeaseLong
	case years >= 61:
		return models.LeaseMedium
	default:
		return models.LeaseShort
	}
}

// Derive attaches floor category, lease bucket and floor-area bin to every
// row. Bins are 10 sqm wide starting at the floor of the smallest area in
// table, so they are only comparable within one call.
func Derive(table *models.Table) []models.DerivedRow {
	rows := table.Rows()
	if len(rows) == 0 {
		return nil
	}

	lo := math.Inf(1)
	for _, tx := range rows {
		lo = math.Min(lo, tx.FloorAreaSqm)
	}
	lo = math.Floor(lo)

	out := make([]models.DerivedRow, len(rows))
	for i, tx := range rows {
		out[i] = models.DerivedRow{
			Transaction:   tx,
			FloorCategory: FloorCategoryOf(tx.StoreyFloor),
			LeaseBucket:   LeaseBucketOf(tx.RemainingLeaseYears),
			FloorBin:      floorBin(tx.FloorAreaSqm, lo),
		}
	}
	return out
}

func floorBin(area, lo float64) string {
	k := math.Floor((area - lo) / floorBinWidth)
	start := lo + k*floorBinWidth
	return binLabel(start, start+floorBinWidth)
}

func binLabel(start, end float64) string {
	return fmt.Sprintf("[%g, %g)", start, end)
}

// FloorBins lists the bin labels present in rows, ordered by bin start.
func FloorBins(rows []models.DerivedRow) []string {
	if len(rows) == 0 {
		return nil
	}

	lo := math.Inf(1)
	for _, r := range rows {
		lo = math.Min(lo, r.FloorAreaSqm)
	}
	lo = math.Floor(lo)

	present := make(map[int]bool)
	maxK := 0
	for _, r := range rows {
		k := int(math.Floor((r.FloorAreaSqm - lo) / floorBinWidth))
		present[k] = true
		if k > maxK {
			maxK = k
		}
	}

	var labels []string
	for k := 0; k <= maxK; k++ {
		if present[k] {
			start := lo + float64(k)*floorBinWidth
			labels = append(labels, binLabel(start, start+floorBinWidth))
		}
	}
	return labels
}
