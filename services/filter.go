package services

import (
	"strings"

	"resale-explorer/models"
)

// Evaluate returns the rows of table that satisfy every predicate in c, in
// their original order. Town and flat type compare case-insensitively, flat
// model membership is exact, and all ranges are inclusive. An empty
// FlatModels set matches nothing.
func Evaluate(table *models.Table, c models.FilterCriteria) *models.Table {
	if len(c.FlatModels) == 0 {
		return models.NewTable(nil)
	}

	allowed := make(map[string]struct{}, len(c.FlatModels))
	for _, m := range c.FlatModels {
		allowed[m] = struct{}{}
	}

	var kept []models.Transaction
	table.Each(func(tx models.Transaction) {
		if !strings.EqualFold(tx.Town, c.Town) {
			return
		}
		if !strings.EqualFold(tx.FlatType, c.FlatType) {
			return
		}
		if _, ok := allowed[tx.FlatModel]; !ok {
			return
		}
		if !c.Storey.Contains(tx.StoreyFloor) ||
			!c.FloorArea.Contains(tx.FloorAreaSqm) ||
			!c.LeaseYears.Contains(tx.RemainingLeaseYears) ||
			!c.Months.Contains(tx.Month) {
			return
		}
		kept = append(kept, tx)
	})
	return models.NewTable(kept)
}
