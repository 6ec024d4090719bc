package services

import (
	"testing"

	"resale-explorer/models"
)

func optionsTable() *models.Table {
	return models.NewTable([]models.Transaction{
		newTx(withTown("QUEENSTOWN"), withModel("Improved"), withStorey(4), withArea(67.5), withLease(55), withMonth("2023-02")),
		newTx(withTown("BUKIT MERAH"), withModel("DBSS"), withStorey(40), withArea(110.2), withLease(93), withMonth("2024-06")),
		newTx(withTown("ANG MO KIO"), withFlatType("3 ROOM"), withModel("New Generation"), withMonth("2024-01")),
	})
}

func TestBuildOptions(t *testing.T) {
	opts := BuildOptions(optionsTable())

	wantTowns := []string{"ANG MO KIO", "BUKIT MERAH", "QUEENSTOWN"}
	if len(opts.Towns) != 3 {
		t.Fatalf("Towns: got %v", opts.Towns)
	}
	for i := range wantTowns {
		if opts.Towns[i] != wantTowns[i] {
			t.Errorf("Towns[%d]: got %q, want %q", i, opts.Towns[i], wantTowns[i])
		}
	}
	if len(opts.FlatTypes) != 2 || len(opts.FlatModels) != 3 {
		t.Errorf("FlatTypes %v, FlatModels %v", opts.FlatTypes, opts.FlatModels)
	}
	if opts.Storey != (models.IntRange{Min: 4, Max: 40}) {
		t.Errorf("Storey: got %+v", opts.Storey)
	}
	if opts.FloorArea != (models.FloatRange{Min: 67, Max: 111}) {
		t.Errorf("FloorArea: got %+v", opts.FloorArea)
	}
	if opts.LeaseYears != (models.IntRange{Min: 55, Max: 93}) {
		t.Errorf("LeaseYears: got %+v", opts.LeaseYears)
	}
	if !opts.FirstMonth.Equal(month("2023-02")) || !opts.LatestMonth.Equal(month("2024-06")) {
		t.Errorf("months: %v – %v", opts.FirstMonth, opts.LatestMonth)
	}
}

func TestBuildOptionsEmpty(t *testing.T) {
	opts := BuildOptions(models.NewTable(nil))
	if len(opts.Towns) != 0 || !opts.LatestMonth.IsZero() {
		t.Errorf("expected zero options, got %+v", opts)
	}
}

func TestDefaultCriteria(t *testing.T) {
	opts := BuildOptions(optionsTable())
	c := DefaultCriteria(opts, CriteriaDefaults{})

	if c.Town != "BUKIT MERAH" || c.FlatType != "4 ROOM" {
		t.Errorf("town/flat type: %q %q", c.Town, c.FlatType)
	}
	// defaults intersected with what the data has, in preference order
	if len(c.FlatModels) != 2 || c.FlatModels[0] != "Improved" || c.FlatModels[1] != "DBSS" {
		t.Errorf("FlatModels: got %v", c.FlatModels)
	}
	if !c.Months.Start.Equal(month("2023-06")) || !c.Months.End.Equal(month("2024-06")) {
		t.Errorf("Months: %v – %v", c.Months.Start, c.Months.End)
	}
	if c.Storey != opts.Storey || c.FloorArea != opts.FloorArea || c.LeaseYears != opts.LeaseYears {
		t.Errorf("numeric bounds should span the dataset: %+v", c)
	}
}

func TestDefaultCriteriaFallsBackToFirstOption(t *testing.T) {
	opts := models.FilterOptions{
		Towns:      []string{"TAMPINES", "YISHUN"},
		FlatTypes:  []string{"EXECUTIVE"},
		FlatModels: []string{"Maisonette"},
	}
	c := DefaultCriteria(opts, CriteriaDefaults{Town: "yishun", MonthWindow: 6})
	if c.Town != "YISHUN" {
		t.Errorf("Town: got %q, want YISHUN", c.Town)
	}
	if c.FlatType != "EXECUTIVE" {
		t.Errorf("FlatType: got %q, want EXECUTIVE", c.FlatType)
	}
	if c.FlatModels == nil || len(c.FlatModels) != 0 {
		t.Errorf("FlatModels: got %#v, want empty non-nil", c.FlatModels)
	}
}
