package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/joeblew999/plat-irrigation/internal/reading"
)

func TestDSN(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"duckdb memory", Config{Driver: DriverDuckDB}, ""},
		{"sqlite memory", Config{Driver: DriverSQLite}, ":memory:"},
		{"duckdb file", Config{Driver: DriverDuckDB, DataDir: dir, DBName: "gauges"}, filepath.Join(dir, "duckdb", "gauges.duckdb")},
		{"sqlite default name", Config{Driver: DriverSQLite, DataDir: dir}, filepath.Join(dir, "sqlite", "irrigation.db")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DSN(tt.cfg)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Fatalf("DSN()=%q, want %q", got, tt.want)
			}
		})
	}
}

func TestDSN_UnknownDriver(t *testing.T) {
	if _, err := DSN(Config{Driver: "postgres"}); !errors.Is(err, ErrUnknownDriver) {
		t.Fatalf("err=%v, want ErrUnknownDriver", err)
	}
}

func TestOpen_SQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	conn, err := Open(ctx, Config{Driver: DriverSQLite, DataDir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	store := reading.NewStore(conn)
	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatal(err)
	}
	seeded, err := store.Seed(ctx, reading.SampleReadings())
	if err != nil || !seeded {
		t.Fatalf("Seed() = %v, %v", seeded, err)
	}
	if seeded, _ := store.Seed(ctx, reading.SampleReadings()); seeded {
		t.Fatal("second Seed() wrote rows")
	}

	ds, err := store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(ds) != 13 {
		t.Fatalf("len=%d, want 13", len(ds))
	}
	if got := ds[0].Text(reading.FieldDate); got != "2023-01-01" {
		t.Fatalf("first date=%q", got)
	}
	if _, ok := ds[3].Get(reading.FieldRainfall); ok {
		t.Fatal("NULL rainfall should leave the field out")
	}
}
