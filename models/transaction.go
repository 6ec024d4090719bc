package models

import "time"

// RequiredColumns lists the source columns every record source must provide.
var RequiredColumns = []string{
	"month",
	"town",
	"flat_type",
	"block",
	"street_name",
	"storey_range",
	"floor_area_sqm",
	"flat_model",
	"lease_commence_date",
	"remaining_lease",
	"resale_price",
}

// RawTransaction holds one unprocessed row exactly as read from the source.
// Nothing is parsed until the normalizer sees it.
type RawTransaction struct {
	Line              int
	Month             string
	Town              string
	FlatType          string
	Block             string
	StreetName        string
	StoreyRange       string
	FloorAreaSqm      string
	FlatModel         string
	LeaseCommenceDate string
	RemainingLease    string
	ResalePrice       string
}

// Transaction is one cleaned resale transaction.
type Transaction struct {
	Month               time.Time `json:"month"`
	Town                string    `json:"town"`
	FlatType            string    `json:"flat_type"`
	FlatModel           string    `json:"flat_model"`
	Block               string    `json:"block"`
	StreetName          string    `json:"street_name"`
	StoreyRange         string    `json:"storey_range"`
	StoreyFloor         int       `json:"storey_floor"`
	FloorAreaSqm        float64   `json:"floor_area_sqm"`
	RemainingLease      string    `json:"remaining_lease"`
	RemainingLeaseYears int       `json:"remaining_lease_years"`
	LeaseCommenceDate   int       `json:"lease_commence_date"`
	ResalePrice         float64   `json:"resale_price"`
	PricePerSqm         float64   `json:"price_per_sqm"`
}

// Table is an ordered, read-only collection of transactions. Every pipeline
// stage builds a new Table instead of changing the one it was given.
type Table struct {
	rows []Transaction
}

// NewTable copies rows into a new Table.
func NewTable(rows []Transaction) *Table {
	cp := make([]Transaction, len(rows))
	copy(cp, rows)
	return &Table{rows: cp}
}

// Rows returns a copy of the table's rows in order.
func (t *Table) Rows() []Transaction {
	if t == nil {
		return nil
	}
	cp := make([]Transaction, len(t.rows))
	copy(cp, t.rows)
	return cp
}

// Each calls fn for every row in order.
func (t *Table) Each(fn func(tx Transaction)) {
	if t == nil {
		return
	}
	for _, row := range t.rows {
		fn(row)
	}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// LoadReport summarises a dataset load.
type LoadReport struct {
	Source   string         `json:"source"`
	RowsRead int            `json:"rows_read"`
	RowsKept int            `json:"rows_kept"`
	Dropped  map[string]int `json:"dropped,omitempty"`
}

// DroppedTotal returns the number of rows rejected for any reason.
func (r *LoadReport) DroppedTotal() int {
	total := 0
	for _, n := range r.Dropped {
		total += n
	}
	return total
}
