package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"resale-explorer/models"
)

// MissingColumnsError reports required columns absent from a source.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return "missing required columns: " + strings.Join(e.Columns, ", ")
}

// CSVReader reads resale transactions from a delimited text file with a header row.
type CSVReader struct {
	path string
}

// NewCSVReader returns a reader for the CSV file at path. The file is not
// opened until Read.
func NewCSVReader(path string) *CSVReader {
	return &CSVReader{path: path}
}

func (c *CSVReader) Name() string { return c.path }

// Read parses the whole file. Columns are matched by header name, so their
// order in the file does not matter and extra columns are ignored.
func (c *CSVReader) Read(ctx context.Context) ([]*models.RawTransaction, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %q: %w", c.path, err)
	}
	defer f.Close()

	return readCSV(ctx, f)
}

func readCSV(ctx context.Context, r io.Reader) ([]*models.RawTransaction, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("csv: file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("csv: read header: %w", err)
	}

	index, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var rows []*models.RawTransaction
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: read row: %w", err)
		}

		line, _ := reader.FieldPos(0)
		get := func(col string) string {
			i := index[col]
			if i < len(record) {
				return record[i]
			}
			return ""
		}

		rows = append(rows, &models.RawTransaction{
			Line:              line,
			Month:             get("month"),
			Town:              get("town"),
			FlatType:          get("flat_type"),
			Block:             get("block"),
			StreetName:        get("street_name"),
			StoreyRange:       get("storey_range"),
			FloorAreaSqm:      get("floor_area_sqm"),
			FlatModel:         get("flat_model"),
			LeaseCommenceDate: get("lease_commence_date"),
			RemainingLease:    get("remaining_lease"),
			ResalePrice:       get("resale_price"),
		})
	}
	return rows, nil
}

// columnIndex maps each required column to its position in header.
func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		index[h] = i
	}

	var missing []string
	for _, col := range models.RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}
	return index, nil
}

// Close is a no-op; Read opens and closes the file itself.
func (c *CSVReader) Close() error {
	return nil
}
