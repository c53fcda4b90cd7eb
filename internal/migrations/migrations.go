package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

//go:embed sql/*.sql
var embeddedFS embed.FS

const migrationTable = "shopchat_schema_migrations"

var migrationNamePattern = regexp.MustCompile(`^([0-9]+)_.+\.(up|down)\.sql$`)

// Runner applies the embedded storefront schema migrations in version
// order, tracking progress in the migration table.
type Runner struct {
	fsys fs.FS
}

func NewRunner() *Runner {
	return &Runner{fsys: embeddedFS}
}

type migration struct {
	Version int64
	UpSQL   string
	DownSQL string
}

// Up applies pending migrations. steps == 0 means all pending.
func (r *Runner) Up(ctx context.Context, db *sql.DB, steps int) (int, error) {
	items, err := loadMigrations(r.fsys)
	if err != nil {
		return 0, err
	}
	if err := ensureMigrationTable(ctx, db); err != nil {
		return 0, err
	}
	applied, err := appliedVersions(ctx, db, "ASC")
	if err != nil {
		return 0, err
	}

	appliedSet := make(map[int64]struct{}, len(applied))
	for _, version := range applied {
		appliedSet[version] = struct{}{}
	}

	runCount := 0
	for _, item := range items {
		if _, ok := appliedSet[item.Version]; ok {
			continue
		}
		if steps > 0 && runCount >= steps {
			break
		}
		if err := runInTx(ctx, db, item.UpSQL,
			`INSERT INTO `+migrationTable+` (version) VALUES ($1)`, item.Version); err != nil {
			return runCount, fmt.Errorf("apply migration %d: %w", item.Version, err)
		}
		runCount++
	}
	return runCount, nil
}

// Down rolls back the most recently applied migrations. steps <= 0 rolls
// back one.
func (r *Runner) Down(ctx context.Context, db *sql.DB, steps int) (int, error) {
	if steps <= 0 {
		steps = 1
	}

	items, err := loadMigrations(r.fsys)
	if err != nil {
		return 0, err
	}
	if err := ensureMigrationTable(ctx, db); err != nil {
		return 0, err
	}
	applied, err := appliedVersions(ctx, db, "DESC")
	if err != nil {
		return 0, err
	}

	lookup := make(map[int64]migration, len(items))
	for _, item := range items {
		lookup[item.Version] = item
	}

	runCount := 0
	for _, version := range applied {
		if runCount >= steps {
			break
		}
		item, ok := lookup[version]
		if !ok {
			return runCount, fmt.Errorf("applied migration %d is missing from source", version)
		}
		if err := runInTx(ctx, db, item.DownSQL,
			`DELETE FROM `+migrationTable+` WHERE version = $1`, item.Version); err != nil {
			return runCount, fmt.Errorf("rollback migration %d: %w", item.Version, err)
		}
		runCount++
	}
	return runCount, nil
}

func ensureMigrationTable(ctx context.Context, db *sql.DB) error {
	query := `
CREATE TABLE IF NOT EXISTS ` + migrationTable + ` (
	version BIGINT PRIMARY KEY,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}
	return nil
}

// runInTx executes the migration script and its bookkeeping statement in a
// single transaction so a failed script never leaves a stale version mark.
func runInTx(ctx context.Context, db *sql.DB, script, mark string, version int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, script); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, mark, version); err != nil {
		return fmt.Errorf("record version: %w", err)
	}
	return tx.Commit()
}

func appliedVersions(ctx context.Context, db *sql.DB, order string) ([]int64, error) {
	rows, err := db.QueryContext(ctx, `SELECT version FROM `+migrationTable+` ORDER BY version `+order)
	if err != nil {
		return nil, fmt.Errorf("query applied versions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var versions []int64
	for rows.Next() {
		var version int64
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		versions = append(versions, version)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return versions, nil
}

func loadMigrations(fsys fs.FS) ([]migration, error) {
	entries, err := fs.ReadDir(fsys, "sql")
	if err != nil {
		return nil, fmt.Errorf("read migration dir: %w", err)
	}

	items := map[int64]migration{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		base := path.Base(entry.Name())
		matches := migrationNamePattern.FindStringSubmatch(base)
		if len(matches) != 3 {
			continue
		}
		version, err := strconv.ParseInt(matches[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse migration version for %q: %w", base, err)
		}

		script, err := fs.ReadFile(fsys, path.Join("sql", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read migration %q: %w", entry.Name(), err)
		}

		item := items[version]
		item.Version = version
		if matches[2] == "up" {
			item.UpSQL = string(script)
		} else {
			item.DownSQL = string(script)
		}
		items[version] = item
	}

	versions := make([]int64, 0, len(items))
	for version := range items {
		versions = append(versions, version)
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i] < versions[j] })

	migrations := make([]migration, 0, len(versions))
	for _, version := range versions {
		item := items[version]
		if strings.TrimSpace(item.UpSQL) == "" {
			return nil, fmt.Errorf("migration %d missing up SQL", version)
		}
		if strings.TrimSpace(item.DownSQL) == "" {
			return nil, fmt.Errorf("migration %d missing down SQL", version)
		}
		migrations = append(migrations, item)
	}
	return migrations, nil
}
