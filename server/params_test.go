package server

import (
	"errors"
	"net/url"
	"testing"
	"time"

	"resale-explorer/models"
)

func defaultCriteria() models.FilterCriteria {
	return models.FilterCriteria{
		Town:       "BUKIT MERAH",
		FlatType:   "4 ROOM",
		FlatModels: []string{"Improved", "Model A"},
		Storey:     models.IntRange{Min: 1, Max: 40},
		FloorArea:  models.FloatRange{Min: 60, Max: 140},
		LeaseYears: models.IntRange{Min: 40, Max: 99},
		Months:     models.DateRange{Start: month(2023, time.March), End: month(2024, time.March)},
	}
}

func TestParseCriteriaAbsentKeysKeepDefaults(t *testing.T) {
	got, err := ParseCriteria(url.Values{}, defaultCriteria())
	if err != nil {
		t.Fatalf("ParseCriteria: %v", err)
	}
	want := defaultCriteria()
	if got.Town != want.Town || len(got.FlatModels) != 2 || got.Storey != want.Storey ||
		got.FloorArea != want.FloorArea || !got.Months.End.Equal(want.Months.End) {
		t.Errorf("got %+v", got)
	}
}

func TestParseCriteriaOverrides(t *testing.T) {
	q := url.Values{
		"town":        {"queenstown"},
		"flat_model":  {"", "DBSS", " S1 "},
		"storey_min":  {"10"},
		"area_max":    {"95.5"},
		"lease_min":   {"61"},
		"month_start": {"2023-09"},
		"month_end":   {"2024-01-15"},
		"flat_type":   {""},
	}
	got, err := ParseCriteria(q, defaultCriteria())
	if err != nil {
		t.Fatalf("ParseCriteria: %v", err)
	}
	if got.Town != "queenstown" {
		t.Errorf("Town: got %q", got.Town)
	}
	if got.FlatType != "4 ROOM" {
		t.Errorf("blank flat_type should keep the default, got %q", got.FlatType)
	}
	if len(got.FlatModels) != 2 || got.FlatModels[0] != "DBSS" || got.FlatModels[1] != "S1" {
		t.Errorf("FlatModels: got %v", got.FlatModels)
	}
	if got.Storey.Min != 10 || got.Storey.Max != 40 {
		t.Errorf("Storey: got %+v", got.Storey)
	}
	if got.FloorArea.Max != 95.5 || got.LeaseYears.Min != 61 {
		t.Errorf("area/lease: %+v %+v", got.FloorArea, got.LeaseYears)
	}
	if !got.Months.Start.Equal(month(2023, time.September)) ||
		!got.Months.End.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Months: %v – %v", got.Months.Start, got.Months.End)
	}
}

func TestParseCriteriaEmptyFlatModel(t *testing.T) {
	got, err := ParseCriteria(url.Values{"flat_model": {""}}, defaultCriteria())
	if err != nil {
		t.Fatal(err)
	}
	if got.FlatModels == nil || len(got.FlatModels) != 0 {
		t.Errorf("FlatModels: got %#v, want explicit empty set", got.FlatModels)
	}
}

func TestParseCriteriaErrors(t *testing.T) {
	tests := []struct {
		key, val string
	}{
		{"storey_min", "ten"},
		{"storey_max", "1.5"},
		{"area_min", "NaN"},
		{"area_max", "Inf"},
		{"lease_max", "x"},
		{"month_start", "March"},
		{"month_end", "2024/03"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			_, err := ParseCriteria(url.Values{tt.key: {tt.val}}, defaultCriteria())
			var perr *ParamError
			if !errors.As(err, &perr) {
				t.Fatalf("expected *ParamError, got %v", err)
			}
			if perr.Param != tt.key {
				t.Errorf("Param: got %q, want %q", perr.Param, tt.key)
			}
		})
	}
}

func TestEncodeCriteriaRoundTrip(t *testing.T) {
	for _, c := range []models.FilterCriteria{defaultCriteria(), func() models.FilterCriteria {
		c := defaultCriteria()
		c.FlatModels = []string{}
		c.FloorArea.Min = 67.5
		return c
	}()} {
		// decode against unrelated defaults so every value must come from the query
		got, err := ParseCriteria(EncodeCriteria(c), models.FilterCriteria{FlatModels: []string{"Other"}})
		if err != nil {
			t.Fatalf("ParseCriteria: %v", err)
		}
		if got.Town != c.Town || got.FlatType != c.FlatType || len(got.FlatModels) != len(c.FlatModels) ||
			got.Storey != c.Storey || got.FloorArea != c.FloorArea || got.LeaseYears != c.LeaseYears ||
			!got.Months.Start.Equal(c.Months.Start) || !got.Months.End.Equal(c.Months.End) {
			t.Errorf("round trip:\n got %+v\nwant %+v", got, c)
		}
	}
}
