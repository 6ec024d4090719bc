package storage

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"resale-explorer/models"
	"resale-explorer/utils"
)

// Supported database/sql driver names.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var identRegexp = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// SQLReader reads resale transactions from a database table that carries the
// required columns plus an integer id column that fixes row order.
type SQLReader struct {
	db     *sql.DB
	driver string
	table  string
}

// NewSQLReader opens a connection, waits for the database to answer a ping
// and returns a ready-to-use SQLReader.
func NewSQLReader(ctx context.Context, driver, dsn, table string, retry *utils.RetryConfig) (*SQLReader, error) {
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, fmt.Errorf("sql: unsupported driver %q", driver)
	}
	if !identRegexp.MatchString(table) {
		return nil, fmt.Errorf("sql: invalid table name %q", table)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sql: open: %w", err)
	}

	if err := retry.Do(ctx, "sql-ping", func() error {
		return db.PingContext(ctx)
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sql: ping: %w", err)
	}

	return NewSQLReaderFromDB(db, driver, table), nil
}

// NewSQLReaderFromDB wraps an already-open handle. The reader takes ownership
// and closes db on Close.
func NewSQLReaderFromDB(db *sql.DB, driver, table string) *SQLReader {
	return &SQLReader{db: db, driver: driver, table: table}
}

func (r *SQLReader) Name() string {
	return r.driver + ":" + r.table
}

// Read retrieves every row ordered by id.
func (r *SQLReader) Read(ctx context.Context) ([]*models.RawTransaction, error) {
	if err := r.checkColumns(ctx); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT id, %s FROM %s ORDER BY id`,
		strings.Join(models.RequiredColumns, ", "), r.table)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sql: fetch all: %w", err)
	}
	defer rows.Close()

	var out []*models.RawTransaction
	for rows.Next() {
		var (
			id   int64
			cols = make([]sql.NullString, len(models.RequiredColumns))
			dest = make([]any, 0, len(cols)+1)
		)
		dest = append(dest, &id)
		for i := range cols {
			dest = append(dest, &cols[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("sql: scan row: %w", err)
		}

		out = append(out, &models.RawTransaction{
			Line:              int(id),
			Month:             cols[0].String,
			Town:              cols[1].String,
			FlatType:          cols[2].String,
			Block:             cols[3].String,
			StreetName:        cols[4].String,
			StoreyRange:       cols[5].String,
			FloorAreaSqm:      cols[6].String,
			FlatModel:         cols[7].String,
			LeaseCommenceDate: cols[8].String,
			RemainingLease:    cols[9].String,
			ResalePrice:       cols[10].String,
		})
	}
	return out, rows.Err()
}

// checkColumns reports missing required columns the same way the CSV reader does.
func (r *SQLReader) checkColumns(ctx context.Context) error {
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`SELECT * FROM %s LIMIT 0`, r.table))
	if err != nil {
		return fmt.Errorf("sql: inspect %s: %w", r.table, err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("sql: columns: %w", err)
	}
	_, err = columnIndex(names)
	return err
}

func (r *SQLReader) Close() error {
	return r.db.Close()
}
