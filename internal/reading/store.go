package reading

import (
	"context"
	"database/sql"
	"fmt"
)

const (
	createReadingsSQL = `
		CREATE TABLE IF NOT EXISTS readings (
			date TEXT PRIMARY KEY,
			water_level DOUBLE NOT NULL,
			flow_rate DOUBLE NOT NULL,
			rainfall DOUBLE
		)
	`

	countReadingsSQL = `SELECT COUNT(*) FROM readings`

	selectReadingsSQL = `
		SELECT date, water_level, flow_rate, rainfall
		FROM readings ORDER BY date
	`

	insertReadingSQL = `
		INSERT INTO readings (date, water_level, flow_rate, rainfall)
		VALUES (?, ?, ?, ?)
	`
)

// Store reads and seeds readings in a SQL database. The same statements run
// on DuckDB and SQLite.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the readings table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createReadingsSQL); err != nil {
		return fmt.Errorf("create readings table: %w", err)
	}
	return nil
}

// Count returns the number of stored readings.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, countReadingsSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("count readings: %w", err)
	}
	return n, nil
}

// Seed inserts rs in one transaction when the table is empty. It reports
// whether anything was written.
func (s *Store) Seed(ctx context.Context, rs []Reading) (bool, error) {
	n, err := s.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 || len(rs) == 0 {
		return false, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin seed transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, r := range rs {
		var rain sql.NullFloat64
		if r.Rainfall != nil {
			rain = sql.NullFloat64{Float64: *r.Rainfall, Valid: true}
		}
		if _, err := tx.ExecContext(ctx, insertReadingSQL, r.Date, r.WaterLevel, r.FlowRate, rain); err != nil {
			return false, fmt.Errorf("insert reading %s: %w", r.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit seed transaction: %w", err)
	}
	return true, nil
}

// List returns all readings ordered by date.
func (s *Store) List(ctx context.Context) ([]Reading, error) {
	rows, err := s.db.QueryContext(ctx, selectReadingsSQL)
	if err != nil {
		return nil, fmt.Errorf("query readings: %w", err)
	}
	defer rows.Close()

	var out []Reading
	for rows.Next() {
		var (
			r    Reading
			rain sql.NullFloat64
		)
		if err := rows.Scan(&r.Date, &r.WaterLevel, &r.FlowRate, &rain); err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		if rain.Valid {
			v := rain.Float64
			r.Rainfall = &v
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate readings: %w", err)
	}
	return out, nil
}

// Load returns the stored readings as a Dataset.
func (s *Store) Load(ctx context.Context) (Dataset, error) {
	rs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return FromReadings(rs), nil
}
