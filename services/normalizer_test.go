package services

import (
	"errors"
	"testing"
	"time"

	"resale-explorer/models"
)

func rawRow(line int) *models.RawTransaction {
	return &models.RawTransaction{
		Line:              line,
		Month:             "2017-01",
		Town:              "  ANG   MO KIO ",
		FlatType:          "3 ROOM",
		Block:             "406",
		StreetName:        "ANG MO KIO AVE 10",
		StoreyRange:       "10 TO 12",
		FloorAreaSqm:      "44",
		FlatModel:         "Improved",
		LeaseCommenceDate: "1979",
		RemainingLease:    "61 years 04 months",
		ResalePrice:       "232000",
	}
}

func TestNormalizerParsesRow(t *testing.T) {
	n := NewNormalizer(newTestLogger(), PolicyDrop)
	table, report, err := n.Normalize("test.csv", []*models.RawTransaction{rawRow(2)})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if table.Len() != 1 || report.RowsKept != 1 {
		t.Fatalf("got %d rows (report %d), want 1", table.Len(), report.RowsKept)
	}

	tx := table.Rows()[0]
	if !tx.Month.Equal(time.Date(2017, time.January, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Month: got %v", tx.Month)
	}
	if tx.Town != "ANG MO KIO" {
		t.Errorf("Town: got %q, want %q", tx.Town, "ANG MO KIO")
	}
	if tx.StoreyFloor != 10 {
		t.Errorf("StoreyFloor: got %d, want 10", tx.StoreyFloor)
	}
	if tx.RemainingLeaseYears != 61 {
		t.Errorf("RemainingLeaseYears: got %d, want 61", tx.RemainingLeaseYears)
	}
	if tx.LeaseCommenceDate != 1979 {
		t.Errorf("LeaseCommenceDate: got %d, want 1979", tx.LeaseCommenceDate)
	}
	if want := 232000.0 / 44; tx.PricePerSqm != want {
		t.Errorf("PricePerSqm: got %v, want %v", tx.PricePerSqm, want)
	}
}

func TestParseMonth(t *testing.T) {
	tests := []struct {
		raw     string
		want    time.Time
		wantErr bool
	}{
		{"2017-01", time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC), false},
		{" 2024-12 ", time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), false},
		{"2020-03-15", time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC), false},
		{"Jan 2017", time.Time{}, true},
		{"2017-13", time.Time{}, true},
		{"", time.Time{}, true},
	}

	for _, tt := range tests {
		got, err := parseMonth(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseMonth(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("parseMonth(%q) = %v; want %v", tt.raw, got, tt.want)
		}
	}
}

func TestLeadingInt(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"10 TO 12", 10, false},
		{"01 TO 03", 1, false},
		{"61 years 04 months", 61, false},
		{"95", 95, false},
		{"years", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := leadingInt(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("leadingInt(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("leadingInt(%q) = %d; want %d", tt.raw, got, tt.want)
		}
	}
}

func TestNormalizerDropPolicyCountsByField(t *testing.T) {
	badMonth := rawRow(3)
	badMonth.Month = "someday"
	badLease := rawRow(4)
	badLease.RemainingLease = "unknown"
	zeroArea := rawRow(5)
	zeroArea.FloorAreaSqm = "0"
	negArea := rawRow(6)
	negArea.FloorAreaSqm = "-12.5"
	badPrice := rawRow(7)
	badPrice.ResalePrice = "n/a"

	raw := []*models.RawTransaction{rawRow(2), badMonth, badLease, zeroArea, negArea, badPrice, rawRow(8)}

	n := NewNormalizer(newTestLogger(), PolicyDrop)
	table, report, err := n.Normalize("test.csv", raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if table.Len() != 2 {
		t.Errorf("kept rows: got %d, want 2", table.Len())
	}
	if report.RowsRead != 7 || report.RowsKept != 2 {
		t.Errorf("report: read %d kept %d; want 7 and 2", report.RowsRead, report.RowsKept)
	}
	want := map[string]int{"month": 1, "remaining_lease": 1, "floor_area_sqm": 2, "resale_price": 1}
	for field, count := range want {
		if report.Dropped[field] != count {
			t.Errorf("Dropped[%q]: got %d, want %d", field, report.Dropped[field], count)
		}
	}
	if report.DroppedTotal() != 5 {
		t.Errorf("DroppedTotal: got %d, want 5", report.DroppedTotal())
	}
}

func TestNormalizerRejectPolicy(t *testing.T) {
	bad := rawRow(3)
	bad.StoreyRange = "GROUND"

	n := NewNormalizer(newTestLogger(), PolicyReject)
	table, _, err := n.Normalize("test.csv", []*models.RawTransaction{rawRow(2), bad})
	if err == nil {
		t.Fatal("expected an error under the reject policy")
	}
	if table != nil {
		t.Error("expected no table under the reject policy")
	}

	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected *LoadError, got %T", err)
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected wrapped *ParseError, got %v", err)
	}
	if parseErr.Line != 3 || parseErr.Field != "storey_range" {
		t.Errorf("ParseError: got line %d field %q; want 3 and storey_range", parseErr.Line, parseErr.Field)
	}
}

func TestParseMalformedPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    MalformedPolicy
		wantErr bool
	}{
		{"", PolicyDrop, false},
		{"drop", PolicyDrop, false},
		{"REJECT", PolicyReject, false},
		{"ignore", "", true},
	}

	for _, tt := range tests {
		got, err := ParseMalformedPolicy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMalformedPolicy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMalformedPolicy(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}
