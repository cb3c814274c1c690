package sqlstore

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"embed"
	"encoding/hex"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

var migrationFilePattern = regexp.MustCompile(`^(\d+)_([a-zA-Z0-9_-]+)\.sql$`)

// Migration is one embedded schema change.
type Migration struct {
	Version     string
	Description string
	FilePath    string
	SQL         string
	Checksum    string
}

// AppliedMigration records a migration already run against the database.
type AppliedMigration struct {
	Version       string
	AppliedAt     time.Time
	ExecutionTime time.Duration
	Checksum      string
}

// LoadMigrations reads and orders the embedded migration files.
func LoadMigrations() ([]Migration, error) {
	return scanMigrations(migrationFiles, "migrations")
}

func scanMigrations(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	seen := make(map[int]string)
	var migrations []Migration
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		match := migrationFilePattern.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}
		number, err := strconv.Atoi(match[1])
		if err != nil {
			return nil, fmt.Errorf("invalid migration version %q: %w", match[1], err)
		}
		if other, dup := seen[number]; dup {
			return nil, fmt.Errorf("duplicate migration version %s in %s and %s", match[1], other, entry.Name())
		}
		seen[number] = entry.Name()

		filePath := path.Join(dir, entry.Name())
		content, err := fs.ReadFile(fsys, filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %w", filePath, err)
		}
		sum := sha256.Sum256(content)
		migrations = append(migrations, Migration{
			Version:     match[1],
			Description: strings.ReplaceAll(match[2], "_", " "),
			FilePath:    filePath,
			SQL:         string(content),
			Checksum:    hex.EncodeToString(sum[:]),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		a, _ := strconv.Atoi(migrations[i].Version)
		b, _ := strconv.Atoi(migrations[j].Version)
		return a < b
	})
	return migrations, nil
}

// RunMigrations applies every pending embedded migration. Each migration and
// its schema_migrations record commit in one transaction.
func RunMigrations(ctx context.Context, pool *ConnectionPool, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	migrations, err := LoadMigrations()
	if err != nil {
		return err
	}
	return runMigrations(ctx, pool, migrations, logger)
}

func runMigrations(ctx context.Context, pool *ConnectionPool, migrations []Migration, logger *slog.Logger) error {
	start := time.Now()
	if err := initializeVersionTable(ctx, pool); err != nil {
		return err
	}

	applied, err := AppliedMigrations(ctx, pool)
	if err != nil {
		return err
	}
	done := make(map[string]AppliedMigration, len(applied))
	for _, m := range applied {
		done[m.Version] = m
	}

	executed := 0
	for _, m := range migrations {
		if prior, ok := done[m.Version]; ok {
			if prior.Checksum != "" && prior.Checksum != m.Checksum {
				logger.Warn("applied migration changed on disk",
					slog.String("version", m.Version),
					slog.String("file", m.FilePath))
			}
			continue
		}

		migrationStart := time.Now()
		if err := executeMigration(ctx, pool, m, migrationStart); err != nil {
			logger.Error("migration failed",
				slog.String("version", m.Version),
				slog.String("file", m.FilePath),
				slog.String("error", err.Error()))
			return err
		}
		executed++
		logger.Info("migration applied",
			slog.String("version", m.Version),
			slog.String("description", m.Description),
			slog.Duration("duration", time.Since(migrationStart)))
	}

	if executed > 0 {
		logger.Info("migrations complete",
			slog.Int("executed", executed),
			slog.Duration("duration", time.Since(start)))
	}
	return nil
}

func initializeVersionTable(ctx context.Context, pool *ConnectionPool) error {
	const createTableSQL = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL,
			checksum TEXT,
			execution_time_ms INTEGER
		)`
	if _, err := pool.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}
	return nil
}

func executeMigration(ctx context.Context, pool *ConnectionPool, m Migration, started time.Time) error {
	statements := parseSQL(m.SQL)
	if len(statements) == 0 {
		return fmt.Errorf("migration %s: no SQL statements found", m.Version)
	}

	return pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		for i, stmt := range statements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("migration %s: statement %d: %w", m.Version, i+1, err)
			}
		}
		_, err := pool.exec(ctx, tx,
			`INSERT INTO schema_migrations (version, applied_at, checksum, execution_time_ms) VALUES (?, ?, ?, ?)`,
			m.Version, formatTime(time.Now()), m.Checksum, time.Since(started).Milliseconds())
		if err != nil {
			return fmt.Errorf("migration %s: record version: %w", m.Version, err)
		}
		return nil
	})
}

// AppliedMigrations lists the recorded migrations ordered by version.
func AppliedMigrations(ctx context.Context, pool *ConnectionPool) ([]AppliedMigration, error) {
	rows, err := pool.db.QueryContext(ctx, `
		SELECT version, applied_at, COALESCE(checksum, ''), COALESCE(execution_time_ms, 0)
		FROM schema_migrations
		ORDER BY version ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	var out []AppliedMigration
	for rows.Next() {
		var (
			m         AppliedMigration
			appliedAt string
			elapsedMs int64
		)
		if err := rows.Scan(&m.Version, &appliedAt, &m.Checksum, &elapsedMs); err != nil {
			return nil, fmt.Errorf("failed to scan applied migration: %w", err)
		}
		m.AppliedAt, _ = parseTime(appliedAt)
		m.ExecutionTime = time.Duration(elapsedMs) * time.Millisecond
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate applied migrations: %w", err)
	}
	return out, nil
}

// parseSQL splits a migration into statements, dropping "--" comment lines.
func parseSQL(content string) []string {
	var statements []string
	for _, stmt := range strings.Split(content, ";") {
		var lines []string
		for _, line := range strings.Split(stmt, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || strings.HasPrefix(trimmed, "--") {
				continue
			}
			lines = append(lines, trimmed)
		}
		if len(lines) > 0 {
			statements = append(statements, strings.Join(lines, "\n"))
		}
	}
	return statements
}
