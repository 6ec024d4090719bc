package server

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"resale-explorer/models"
)

// Query parameter names understood by the dashboard endpoints.
const (
	paramTown       = "town"
	paramFlatType   = "flat_type"
	paramFlatModel  = "flat_model"
	paramStoreyMin  = "storey_min"
	paramStoreyMax  = "storey_max"
	paramAreaMin    = "area_min"
	paramAreaMax    = "area_max"
	paramLeaseMin   = "lease_min"
	paramLeaseMax   = "lease_max"
	paramMonthStart = "month_start"
	paramMonthEnd   = "month_end"
)

// ParamError reports a query parameter that could not be parsed.
type ParamError struct {
	Param string
	Value string
	Err   error
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Param, e.Value, e.Err)
}

func (e *ParamError) Unwrap() error { return e.Err }

// ParseCriteria overlays the query values on defaults. Absent keys keep the
// default. flat_model may repeat; a single empty flat_model selects no
// models at all, which matches nothing.
func ParseCriteria(q url.Values, defaults models.FilterCriteria) (models.FilterCriteria, error) {
	c := defaults
	c.FlatModels = append([]string(nil), defaults.FlatModels...)

	if v, ok := lookup(q, paramTown); ok {
		c.Town = v
	}
	if v, ok := lookup(q, paramFlatType); ok {
		c.FlatType = v
	}
	if values, ok := q[paramFlatModel]; ok {
		c.FlatModels = []string{}
		for _, m := range values {
			if m = strings.TrimSpace(m); m != "" {
				c.FlatModels = append(c.FlatModels, m)
			}
		}
	}

	var err error
	if c.Storey.Min, err = intParam(q, paramStoreyMin, c.Storey.Min); err != nil {
		return c, err
	}
	if c.Storey.Max, err = intParam(q, paramStoreyMax, c.Storey.Max); err != nil {
		return c, err
	}
	if c.FloorArea.Min, err = floatParam(q, paramAreaMin, c.FloorArea.Min); err != nil {
		return c, err
	}
	if c.FloorArea.Max, err = floatParam(q, paramAreaMax, c.FloorArea.Max); err != nil {
		return c, err
	}
	if c.LeaseYears.Min, err = intParam(q, paramLeaseMin, c.LeaseYears.Min); err != nil {
		return c, err
	}
	if c.LeaseYears.Max, err = intParam(q, paramLeaseMax, c.LeaseYears.Max); err != nil {
		return c, err
	}
	if c.Months.Start, err = monthParam(q, paramMonthStart, c.Months.Start); err != nil {
		return c, err
	}
	if c.Months.End, err = monthParam(q, paramMonthEnd, c.Months.End); err != nil {
		return c, err
	}
	return c, nil
}

// EncodeCriteria is the inverse of ParseCriteria.
func EncodeCriteria(c models.FilterCriteria) url.Values {
	q := url.Values{}
	q.Set(paramTown, c.Town)
	q.Set(paramFlatType, c.FlatType)
	if len(c.FlatModels) == 0 {
		q.Set(paramFlatModel, "")
	}
	for _, m := range c.FlatModels {
		q.Add(paramFlatModel, m)
	}
	q.Set(paramStoreyMin, strconv.Itoa(c.Storey.Min))
	q.Set(paramStoreyMax, strconv.Itoa(c.Storey.Max))
	q.Set(paramAreaMin, strconv.FormatFloat(c.FloorArea.Min, 'f', -1, 64))
	q.Set(paramAreaMax, strconv.FormatFloat(c.FloorArea.Max, 'f', -1, 64))
	q.Set(paramLeaseMin, strconv.Itoa(c.LeaseYears.Min))
	q.Set(paramLeaseMax, strconv.Itoa(c.LeaseYears.Max))
	q.Set(paramMonthStart, c.Months.Start.Format("2006-01-02"))
	q.Set(paramMonthEnd, c.Months.End.Format("2006-01-02"))
	return q
}

func lookup(q url.Values, key string) (string, bool) {
	if _, ok := q[key]; !ok {
		return "", false
	}
	v := strings.TrimSpace(q.Get(key))
	return v, v != ""
}

func intParam(q url.Values, key string, fallback int) (int, error) {
	v, ok := lookup(q, key)
	if !ok {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback, &ParamError{Param: key, Value: v, Err: err}
	}
	return n, nil
}

func floatParam(q url.Values, key string, fallback float64) (float64, error) {
	v, ok := lookup(q, key)
	if !ok {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err == nil && (math.IsNaN(f) || math.IsInf(f, 0)) {
		err = errors.New("not a finite number")
	}
	if err != nil {
		return fallback, &ParamError{Param: key, Value: v, Err: err}
	}
	return f, nil
}

func monthParam(q url.Values, key string, fallback time.Time) (time.Time, error) {
	v, ok := lookup(q, key)
	if !ok {
		return fallback, nil
	}
	for _, layout := range []string{"2006-01-02", "2006-01"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return fallback, &ParamError{Param: key, Value: v, Err: errors.New("want YYYY-MM or YYYY-MM-DD")}
}
