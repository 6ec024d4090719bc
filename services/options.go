package services

import (
	"math"
	"sort"
	"strings"

	"resale-explorer/models"
)

// Defaults preselected on first load when the dataset contains them.
var (
	DefaultTown       = "BUKIT MERAH"
	DefaultFlatType   = "4 ROOM"
	DefaultFlatModels = []string{
		"Improved", "DBSS", "Standard", "S1", "S2", "Model A", "Model A2", "Simplified",
	}

	DefaultMonthWindow = 12
)

// CriteriaDefaults controls DefaultCriteria. Zero values fall back to the
// package defaults.
type CriteriaDefaults struct {
	Town        string
	FlatType    string
	FlatModels  []string
	MonthWindow int
}

// BuildOptions collects distinct categorical values and numeric and date
// bounds from table. Area bounds are widened to whole square metres.
func BuildOptions(table *models.Table) models.FilterOptions {
	var opts models.FilterOptions
	if table.Len() == 0 {
		return opts
	}

	towns := make(map[string]struct{})
	types := make(map[string]struct{})
	flatModels := make(map[string]struct{})

	first := true
	minArea, maxArea := 0.0, 0.0
	table.Each(func(tx models.Transaction) {
		towns[tx.Town] = struct{}{}
		types[tx.FlatType] = struct{}{}
		flatModels[tx.FlatModel] = struct{}{}

		if first {
			opts.Storey = models.IntRange{Min: tx.StoreyFloor, Max: tx.StoreyFloor}
			opts.LeaseYears = models.IntRange{Min: tx.RemainingLeaseYears, Max: tx.RemainingLeaseYears}
			minArea, maxArea = tx.FloorAreaSqm, tx.FloorAreaSqm
			opts.FirstMonth, opts.LatestMonth = tx.Month, tx.Month
			first = false
			return
		}
		opts.Storey.Min = min(opts.Storey.Min, tx.StoreyFloor)
		opts.Storey.Max = max(opts.Storey.Max, tx.StoreyFloor)
		opts.LeaseYears.Min = min(opts.LeaseYears.Min, tx.RemainingLeaseYears)
		opts.LeaseYears.Max = max(opts.LeaseYears.Max, tx.RemainingLeaseYears)
		minArea = math.Min(minArea, tx.FloorAreaSqm)
		maxArea = math.Max(maxArea, tx.FloorAreaSqm)
		if tx.Month.Before(opts.FirstMonth) {
			opts.FirstMonth = tx.Month
		}
		if tx.Month.After(opts.LatestMonth) {
			opts.LatestMonth = tx.Month
		}
	})

	opts.Towns = sortedKeys(towns)
	opts.FlatTypes = sortedKeys(types)
	opts.FlatModels = sortedKeys(flatModels)
	opts.FloorArea = models.FloatRange{Min: math.Floor(minArea), Max: math.Ceil(maxArea)}
	return opts
}

// DefaultCriteria is the filter state shown before the user changes anything:
// the preferred town and flat type if present (else the first option), the
// preferred flat models that exist, full numeric bounds, and the last
// MonthWindow months up to the latest sale.
func DefaultCriteria(opts models.FilterOptions, d CriteriaDefaults) models.FilterCriteria {
	if d.Town == "" {
		d.Town = DefaultTown
	}
	if d.FlatType == "" {
		d.FlatType = DefaultFlatType
	}
	if d.FlatModels == nil {
		d.FlatModels = DefaultFlatModels
	}
	if d.MonthWindow <= 0 {
		d.MonthWindow = DefaultMonthWindow
	}

	available := make(map[string]struct{}, len(opts.FlatModels))
	for _, m := range opts.FlatModels {
		available[m] = struct{}{}
	}
	flatModels := []string{}
	for _, m := range d.FlatModels {
		if _, ok := available[m]; ok {
			flatModels = append(flatModels, m)
		}
	}

	return models.FilterCriteria{
		Town:       pickOption(opts.Towns, d.Town),
		FlatType:   pickOption(opts.FlatTypes, d.FlatType),
		FlatModels: flatModels,
		Storey:     opts.Storey,
		FloorArea:  opts.FloorArea,
		LeaseYears: opts.LeaseYears,
		Months: models.DateRange{
			Start: opts.LatestMonth.AddDate(0, -d.MonthWindow, 0),
			End:   opts.LatestMonth,
		},
	}
}

func pickOption(options []string, preferred string) string {
	for _, o := range options {
		if strings.EqualFold(o, preferred) {
			return o
		}
	}
	if len(options) > 0 {
		return options[0]
	}
	return ""
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
