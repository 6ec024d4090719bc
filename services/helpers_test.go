package services

import (
	"time"

	"resale-explorer/models"
	"resale-explorer/utils"
)

func newTestLogger() *utils.Logger { return utils.NewNopLogger() }

func month(s string) time.Time {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		panic(err)
	}
	return t
}

type txOpt func(*models.Transaction)

func withTown(town string) txOpt      { return func(tx *models.Transaction) { tx.Town = town } }
func withFlatType(ft string) txOpt    { return func(tx *models.Transaction) { tx.FlatType = ft } }
func withModel(m string) txOpt        { return func(tx *models.Transaction) { tx.FlatModel = m } }
func withStorey(n int) txOpt          { return func(tx *models.Transaction) { tx.StoreyFloor = n } }
func withLease(n int) txOpt           { return func(tx *models.Transaction) { tx.RemainingLeaseYears = n } }
func withMonth(s string) txOpt        { return func(tx *models.Transaction) { tx.Month = month(s) } }
func withStreet(s string) txOpt       { return func(tx *models.Transaction) { tx.StreetName = s } }
func withBlock(s string) txOpt        { return func(tx *models.Transaction) { tx.Block = s } }
func withArea(a float64) txOpt        { return func(tx *models.Transaction) { tx.FloorAreaSqm = a } }
func withPrice(p float64) txOpt       { return func(tx *models.Transaction) { tx.ResalePrice = p } }
func withPricePerSqm(p float64) txOpt { return func(tx *models.Transaction) { tx.PricePerSqm = p } }

// newTx builds a valid 4 ROOM transaction in Bukit Merah and applies opts.
// PricePerSqm is derived from price and area unless set explicitly.
func newTx(opts ...txOpt) models.Transaction {
	tx := models.Transaction{
		Month:               month("2024-06"),
		Town:                "BUKIT MERAH",
		FlatType:            "4 ROOM",
		FlatModel:           "Model A",
		Block:               "101",
		StreetName:          "ALEXANDRA RD",
		StoreyRange:         "10 TO 12",
		StoreyFloor:         10,
		FloorAreaSqm:        90,
		RemainingLease:      "70 years 01 month",
		RemainingLeaseYears: 70,
		LeaseCommenceDate:   1995,
		ResalePrice:         450_000,
	}
	for _, opt := range opts {
		opt(&tx)
	}
	if tx.PricePerSqm == 0 {
		tx.PricePerSqm = tx.ResalePrice / tx.FloorAreaSqm
	}
	return tx
}

// allCriteria matches every transaction newTx can produce with default options.
func allCriteria() models.FilterCriteria {
	return models.FilterCriteria{
		Town:       "BUKIT MERAH",
		FlatType:   "4 ROOM",
		FlatModels: []string{"Model A", "Improved", "DBSS"},
		Storey:     models.IntRange{Min: 1, Max: 50},
		FloorArea:  models.FloatRange{Min: 0, Max: 500},
		LeaseYears: models.IntRange{Min: 0, Max: 99},
		Months:     models.DateRange{Start: month("2000-01"), End: month("2030-12")},
	}
}

func derive(txs ...models.Transaction) []models.DerivedRow {
	return Derive(models.NewTable(txs))
}
