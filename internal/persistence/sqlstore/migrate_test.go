package sqlstore

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func TestScanMigrations(t *testing.T) {
	t.Parallel()

	t.Run("orders numerically and skips other files", func(t *testing.T) {
		t.Parallel()

		fsys := fstest.MapFS{
			"m/10_later.sql":   {Data: []byte("CREATE TABLE b (id TEXT);")},
			"m/2_first.sql":    {Data: []byte("CREATE TABLE a (id TEXT);")},
			"m/README.md":      {Data: []byte("notes")},
			"m/bad name.sql":   {Data: []byte("SELECT 1;")},
			"m/nested/3_x.sql": {Data: []byte("SELECT 1;")},
		}
		migrations, err := scanMigrations(fsys, "m")
		if err != nil {
			t.Fatalf("scanMigrations failed: %v", err)
		}
		if len(migrations) != 2 {
			t.Fatalf("expected 2 migrations, got %d", len(migrations))
		}
		if migrations[0].Version != "2" || migrations[1].Version != "10" {
			t.Fatalf("expected versions 2 then 10, got %s then %s", migrations[0].Version, migrations[1].Version)
		}
		if migrations[0].Description != "first" || migrations[0].Checksum == "" {
			t.Fatalf("expected description and checksum, got %+v", migrations[0])
		}
	})

	t.Run("rejects duplicate versions", func(t *testing.T) {
		t.Parallel()

		fsys := fstest.MapFS{
			"m/1_a.sql":   {Data: []byte("SELECT 1;")},
			"m/001_b.sql": {Data: []byte("SELECT 1;")},
		}
		if _, err := scanMigrations(fsys, "m"); err == nil {
			t.Fatalf("expected duplicate version error")
		}
	})
}

func TestParseSQL(t *testing.T) {
	t.Parallel()

	got := parseSQL(`
-- header comment
CREATE TABLE a (id TEXT);

-- trailing comment
CREATE INDEX idx_a ON a (id);
`)
	if len(got) != 2 {
		t.Fatalf("expected 2 statements, got %d: %q", len(got), got)
	}
	if got[0] != "CREATE TABLE a (id TEXT)" {
		t.Fatalf("unexpected first statement %q", got[0])
	}
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pool, err := NewConnectionPool(ctx, DefaultSQLiteConfig(filepath.Join(t.TempDir(), "m.db")))
	if err != nil {
		t.Fatalf("NewConnectionPool failed: %v", err)
	}
	defer pool.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	for i := 0; i < 2; i++ {
		if err := RunMigrations(ctx, pool, logger); err != nil {
			t.Fatalf("RunMigrations run %d failed: %v", i+1, err)
		}
	}

	applied, err := AppliedMigrations(ctx, pool)
	if err != nil {
		t.Fatalf("AppliedMigrations failed: %v", err)
	}
	embedded, err := LoadMigrations()
	if err != nil {
		t.Fatalf("LoadMigrations failed: %v", err)
	}
	if len(applied) != len(embedded) {
		t.Fatalf("expected %d applied migrations, got %d", len(embedded), len(applied))
	}
	for i := range applied {
		if applied[i].Checksum != embedded[i].Checksum {
			t.Fatalf("expected checksum of %s to be recorded", embedded[i].Version)
		}
	}
}

func TestRunMigrationsRollsBackFailedMigration(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pool, err := NewConnectionPool(ctx, DefaultSQLiteConfig(filepath.Join(t.TempDir(), "m.db")))
	if err != nil {
		t.Fatalf("NewConnectionPool failed: %v", err)
	}
	defer pool.Close()

	migrations := []Migration{{
		Version: "1",
		SQL:     "CREATE TABLE ok (id TEXT); CREATE TABLE broken (",
	}}
	if err := runMigrations(ctx, pool, migrations, slog.New(slog.NewTextHandler(io.Discard, nil))); err == nil {
		t.Fatalf("expected migration failure")
	}

	var count int
	if err := pool.DB().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'ok'`).Scan(&count); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected partial migration to roll back")
	}
	applied, err := AppliedMigrations(ctx, pool)
	if err != nil {
		t.Fatalf("AppliedMigrations failed: %v", err)
	}
	if len(applied) != 0 {
		t.Fatalf("expected no recorded migrations, got %d", len(applied))
	}
}
