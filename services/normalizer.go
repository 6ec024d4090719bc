package services

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"resale-explorer/metrics"
	"resale-explorer/models"
	"resale-explorer/utils"
)

// MalformedPolicy decides what happens to rows that fail to parse.
type MalformedPolicy string

const (
	// PolicyDrop drops the row, counts it and logs a warning.
	PolicyDrop MalformedPolicy = "drop"
	// PolicyReject aborts the whole load on the first bad row.
	PolicyReject MalformedPolicy = "reject"
)

// ParseMalformedPolicy validates a policy name.
func ParseMalformedPolicy(s string) (MalformedPolicy, error) {
	switch MalformedPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case PolicyDrop, "":
		return PolicyDrop, nil
	case PolicyReject:
		return PolicyReject, nil
	}
	return "", fmt.Errorf("unknown malformed-row policy %q (want drop or reject)", s)
}

var (
	// leadingIntRegexp captures the first run of digits, e.g. "10 TO 12" or "61 years 04 months"
	leadingIntRegexp = regexp.MustCompile(`\d+`)

	errNoDigits    = errors.New("no digits found")
	errNotPositive = errors.New("must be greater than zero")
)

var monthLayouts = []string{"2006-01", "2006-01-02"}

// Normalizer turns RawTransactions into validated Transactions.
type Normalizer struct {
	logger *utils.Logger
	policy MalformedPolicy
}

// NewNormalizer creates a Normalizer with the given logger and policy.
func NewNormalizer(logger *utils.Logger, policy MalformedPolicy) *Normalizer {
	return &Normalizer{logger: logger, policy: policy}
}

// Normalize parses every raw row. Under PolicyDrop bad rows are skipped and
// counted in the report; under PolicyReject the first bad row is returned as
// an error and no table is produced.
func (n *Normalizer) Normalize(source string, raw []*models.RawTransaction) (*models.Table, *models.LoadReport, error) {
	report := &models.LoadReport{
		Source:   source,
		RowsRead: len(raw),
		Dropped:  make(map[string]int),
	}
	rows := make([]models.Transaction, 0, len(raw))

	for _, r := range raw {
		tx, perr := n.parse(r)
		if perr != nil {
			if n.policy == PolicyReject {
				return nil, report, &LoadError{Source: source, Err: perr}
			}
			report.Dropped[perr.Field]++
			metrics.RowsDropped.WithLabelValues(perr.Field).Inc()
			n.logger.Warn("[normalizer] Dropping row: %v", perr)
			continue
		}
		rows = append(rows, tx)
	}

	report.RowsKept = len(rows)
	metrics.RowsLoaded.Add(float64(len(rows)))

	if dropped := report.DroppedTotal(); dropped > 0 {
		n.logger.Warn("[normalizer] Dropped %d of %d rows as malformed: %v",
			dropped, len(raw), report.Dropped)
	}
	n.logger.Info("[normalizer] Normalized %d → %d rows", len(raw), len(rows))
	return models.NewTable(rows), report, nil
}

func (n *Normalizer) parse(r *models.RawTransaction) (models.Transaction, *ParseError) {
	month, err := parseMonth(r.Month)
	if err != nil {
		return models.Transaction{}, &ParseError{Line: r.Line, Field: "month", Value: r.Month, Err: err}
	}

	storey, err := leadingInt(r.StoreyRange)
	if err != nil {
		return models.Transaction{}, &ParseError{Line: r.Line, Field: "storey_range", Value: r.StoreyRange, Err: err}
	}

	lease, err := leadingInt(r.RemainingLease)
	if err != nil {
		return models.Transaction{}, &ParseError{Line: r.Line, Field: "remaining_lease", Value: r.RemainingLease, Err: err}
	}

	area, err := parsePositive(r.FloorAreaSqm)
	if err != nil {
		return models.Transaction{}, &ParseError{Line: r.Line, Field: "floor_area_sqm", Value: r.FloorAreaSqm, Err: err}
	}

	price, err := parsePositive(r.ResalePrice)
	if err != nil {
		return models.Transaction{}, &ParseError{Line: r.Line, Field: "resale_price", Value: r.ResalePrice, Err: err}
	}

	commence, err := strconv.Atoi(strings.TrimSpace(r.LeaseCommenceDate))
	if err != nil {
		return models.Transaction{}, &ParseError{Line: r.Line, Field: "lease_commence_date", Value: r.LeaseCommenceDate, Err: err}
	}

	return models.Transaction{
		Month:               month,
		Town:                normaliseText(r.Town),
		FlatType:            normaliseText(r.FlatType),
		FlatModel:           normaliseText(r.FlatModel),
		Block:               normaliseText(r.Block),
		StreetName:          normaliseText(r.StreetName),
		StoreyRange:         normaliseText(r.StoreyRange),
		StoreyFloor:         storey,
		FloorAreaSqm:        area,
		RemainingLease:      normaliseText(r.RemainingLease),
		RemainingLeaseYears: lease,
		LeaseCommenceDate:   commence,
		ResalePrice:         price,
		PricePerSqm:         price / area,
	}, nil
}

// parseMonth accepts "2017-01" and "2017-01-15"; the result is always the
// first day of the month in UTC.
func parseMonth(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	var lastErr error
	for _, layout := range monthLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// leadingInt extracts the first integer in s, e.g. "10 TO 12" → 10.
func leadingInt(s string) (int, error) {
	match := leadingIntRegexp.FindString(s)
	if match == "" {
		return 0, errNoDigits
	}
	return strconv.Atoi(match)
}

func parsePositive(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if !(v > 0) || math.IsInf(v, 1) {
		return 0, errNotPositive
	}
	return v, nil
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	fields := strings.FieldsFunc(s, unicode.IsSpace)
	return strings.Join(fields, " ")
}
