package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/mindtrack/internal/utils"
)

const (
	upSuffix   = ".up.sql"
	downSuffix = ".down.sql"
)

// Migration is a single reversible schema revision
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// Applied is a bookkeeping row for a revision that has been applied
type Applied struct {
	Version   int
	Name      string
	AppliedAt time.Time
}

// Status describes a catalog revision and whether it has been applied
type Status struct {
	Version   int
	Name      string
	AppliedAt *time.Time
}

// Runner applies and reverts the schema catalog
type Runner struct {
	db  *sql.DB
	fs  fs.FS
	now func() time.Time
}

// NewRunner creates a new migration runner
func NewRunner(db *sql.DB, migrationFS fs.FS) *Runner {
	return &Runner{
		db:  db,
		fs:  migrationFS,
		now: time.Now,
	}
}

// EnsureVersionTable creates the schema_migrations table if it doesn't exist
func (r *Runner) EnsureVersionTable(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TEXT NOT NULL
		)
	`)
	return err
}

// AppliedMigrations returns the applied revisions ordered by version
func (r *Runner) AppliedMigrations(ctx context.Context) ([]Applied, error) {
	if err := r.EnsureVersionTable(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure schema_migrations table: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, "SELECT version, name, applied_at FROM schema_migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("failed to read applied migrations: %w", err)
	}
	defer rows.Close()

	var applied []Applied
	for rows.Next() {
		var a Applied
		var appliedAt string
		if err := rows.Scan(&a.Version, &a.Name, &appliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan applied migration: %w", err)
		}
		a.AppliedAt, err = utils.ParseTimestamp(appliedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse applied_at for migration %d: %w", a.Version, err)
		}
		applied = append(applied, a)
	}
	return applied, rows.Err()
}

// GetCurrentVersion returns the highest applied version, or 0 for a fresh database
func (r *Runner) GetCurrentVersion(ctx context.Context) (int, error) {
	applied, err := r.AppliedMigrations(ctx)
	if err != nil {
		return 0, err
	}
	if len(applied) == 0 {
		return 0, nil
	}
	return applied[len(applied)-1].Version, nil
}

// ReadMigrationFiles reads and pairs the up/down files of the catalog.
// Returns migrations sorted by version number
func (r *Runner) ReadMigrationFiles() ([]Migration, error) {
	files, err := fs.ReadDir(r.fs, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	byVersion := make(map[int]*Migration)
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		var base string
		var up bool
		switch {
		case strings.HasSuffix(file.Name(), upSuffix):
			base, up = strings.TrimSuffix(file.Name(), upSuffix), true
		case strings.HasSuffix(file.Name(), downSuffix):
			base = strings.TrimSuffix(file.Name(), downSuffix)
		default:
			return nil, fmt.Errorf("invalid migration filename format: %s (expected NNN_name.up.sql or NNN_name.down.sql)", file.Name())
		}

		// Parse version from filename (e.g., "001_init" -> 1)
		parts := strings.SplitN(base, "_", 2)
		if len(parts) < 2 || parts[1] == "" {
			return nil, fmt.Errorf("invalid migration filename format: %s (expected NNN_name.up.sql)", file.Name())
		}

		version, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, fmt.Errorf("invalid version number in filename %s: %w", file.Name(), err)
		}
		if version < 1 {
			return nil, fmt.Errorf("invalid version number in filename %s: version must be at least 1", file.Name())
		}

		content, err := fs.ReadFile(r.fs, file.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", file.Name(), err)
		}

		m, ok := byVersion[version]
		if !ok {
			m = &Migration{Version: version, Name: parts[1]}
			byVersion[version] = m
		} else if m.Name != parts[1] {
			return nil, fmt.Errorf("duplicate migration version %d (%s and %s)", version, m.Name, parts[1])
		}

		if up {
			m.Up = string(content)
		} else {
			m.Down = string(content)
		}
	}

	migrations := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		if strings.TrimSpace(m.Up) == "" {
			return nil, fmt.Errorf("migration %d (%s) is missing its up script", m.Version, m.Name)
		}
		if strings.TrimSpace(m.Down) == "" {
			return nil, fmt.Errorf("migration %d (%s) is missing its down script", m.Version, m.Name)
		}
		migrations = append(migrations, *m)
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

// GetLatestVersion returns the highest migration version available
func (r *Runner) GetLatestVersion() (int, error) {
	migrations, err := r.ReadMigrationFiles()
	if err != nil {
		return 0, err
	}

	if len(migrations) == 0 {
		return 0, nil
	}

	return migrations[len(migrations)-1].Version, nil
}

// ApplyMigrations applies all pending migrations up to the latest version
// Returns the number of migrations applied
func (r *Runner) ApplyMigrations(ctx context.Context, logFn func(string)) (int, error) {
	if logFn == nil {
		logFn = func(s string) {} // no-op logger
	}

	migrations, err := r.ReadMigrationFiles()
	if err != nil {
		return 0, fmt.Errorf("failed to read migrations: %w", err)
	}

	applied, err := r.AppliedMigrations(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get current version: %w", err)
	}

	if err := checkApplied(applied, migrations); err != nil {
		return 0, err
	}

	if len(migrations) == 0 {
		logFn("No migration files found")
		return 0, nil
	}

	pending := migrations[len(applied):]
	currentVersion := 0
	if len(applied) > 0 {
		currentVersion = applied[len(applied)-1].Version
	}

	if len(pending) == 0 {
		logFn(fmt.Sprintf("Database schema is up to date (version %d)", currentVersion))
		return 0, nil
	}

	logFn(fmt.Sprintf("Current schema version: %d", currentVersion))
	logFn(fmt.Sprintf("Target schema version: %d", migrations[len(migrations)-1].Version))
	logFn(fmt.Sprintf("Applying %d migration(s)...", len(pending)))

	startTime := time.Now()
	appliedCount := 0

	err = r.withForeignKeysOff(ctx, func(conn *sql.Conn) error {
		for _, m := range pending {
			logFn(fmt.Sprintf("  Applying migration %d: %s", m.Version, m.Name))
			if err := r.applyOne(ctx, conn, m); err != nil {
				return err
			}
			appliedCount++
			logFn(fmt.Sprintf("  ✓ Migration %d applied successfully", m.Version))
		}
		return nil
	})
	if err != nil {
		return appliedCount, err
	}

	logFn(fmt.Sprintf("Applied %d migration(s) in %v", appliedCount, time.Since(startTime)))
	return appliedCount, nil
}

// Rollback reverts the most recently applied migrations in reverse order.
// steps <= 0 reverts every applied migration. Returns the number reverted.
func (r *Runner) Rollback(ctx context.Context, steps int, logFn func(string)) (int, error) {
	if logFn == nil {
		logFn = func(s string) {}
	}

	migrations, err := r.ReadMigrationFiles()
	if err != nil {
		return 0, fmt.Errorf("failed to read migrations: %w", err)
	}

	applied, err := r.AppliedMigrations(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get current version: %w", err)
	}

	if err := checkApplied(applied, migrations); err != nil {
		return 0, err
	}

	if len(applied) == 0 {
		logFn("No migrations to revert")
		return 0, nil
	}

	if steps <= 0 || steps > len(applied) {
		steps = len(applied)
	}

	revertedCount := 0
	err = r.withForeignKeysOff(ctx, func(conn *sql.Conn) error {
		for i := len(applied) - 1; i >= len(applied)-steps; i-- {
			m := migrations[i]
			logFn(fmt.Sprintf("  Reverting migration %d: %s", m.Version, m.Name))
			if err := r.revertOne(ctx, conn, m); err != nil {
				return err
			}
			revertedCount++
			logFn(fmt.Sprintf("  ✓ Migration %d reverted", m.Version))
		}
		return nil
	})

	return revertedCount, err
}

// Status lists every catalog revision with its applied time, if any
func (r *Runner) Status(ctx context.Context) ([]Status, error) {
	migrations, err := r.ReadMigrationFiles()
	if err != nil {
		return nil, err
	}

	applied, err := r.AppliedMigrations(ctx)
	if err != nil {
		return nil, err
	}

	appliedAt := make(map[int]time.Time, len(applied))
	for _, a := range applied {
		appliedAt[a.Version] = a.AppliedAt
	}

	statuses := make([]Status, 0, len(migrations))
	for _, m := range migrations {
		s := Status{Version: m.Version, Name: m.Name}
		if t, ok := appliedAt[m.Version]; ok {
			t := t
			s.AppliedAt = &t
		}
		statuses = append(statuses, s)
	}
	return statuses, nil
}

// ValidateVersion checks if the database version is compatible with the application
func (r *Runner) ValidateVersion(ctx context.Context) error {
	migrations, err := r.ReadMigrationFiles()
	if err != nil {
		return err
	}

	applied, err := r.AppliedMigrations(ctx)
	if err != nil {
		return err
	}

	return checkApplied(applied, migrations)
}

// checkApplied requires the applied revisions to be a prefix of the catalog.
func checkApplied(applied []Applied, migrations []Migration) error {
	latestVersion := 0
	if len(migrations) > 0 {
		latestVersion = migrations[len(migrations)-1].Version
	}

	for i, a := range applied {
		if a.Version > latestVersion {
			return fmt.Errorf("database schema version (%d) is newer than supported version (%d) - please upgrade the application", a.Version, latestVersion)
		}
		if i >= len(migrations) || migrations[i].Version != a.Version {
			return fmt.Errorf("applied migration %d (%s) is out of order with the migration catalog", a.Version, a.Name)
		}
		if migrations[i].Name != a.Name {
			return fmt.Errorf("applied migration %d is named %q but the catalog has %q", a.Version, a.Name, migrations[i].Name)
		}
	}
	return nil
}

// withForeignKeysOff runs fn on a dedicated connection with foreign key
// enforcement disabled, which table rebuilds require. The pragma cannot be
// changed inside a transaction, so it is toggled around fn.
func (r *Runner) withForeignKeysOff(ctx context.Context, fn func(conn *sql.Conn) error) error {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Close()

	var enabled int
	if err := conn.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&enabled); err != nil {
		return fmt.Errorf("failed to read foreign_keys pragma: %w", err)
	}
	if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		return fmt.Errorf("failed to disable foreign keys: %w", err)
	}
	defer func() {
		_, _ = conn.ExecContext(context.Background(), fmt.Sprintf("PRAGMA foreign_keys = %d", enabled))
	}()

	return fn(conn)
}

func (r *Runner) applyOne(ctx context.Context, conn *sql.Conn, m Migration) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for migration %d: %w", m.Version, err)
	}

	if _, err := tx.ExecContext(ctx, m.Up); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to apply migration %d (%s): %w", m.Version, m.Name, err)
	}

	if err := foreignKeyCheck(ctx, tx); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("migration %d (%s) left the schema inconsistent: %w", m.Version, m.Name, err)
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)",
		m.Version, m.Name, utils.FormatTimestamp(r.now())); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
	}
	return nil
}

func (r *Runner) revertOne(ctx context.Context, conn *sql.Conn, m Migration) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for migration %d: %w", m.Version, err)
	}

	if _, err := tx.ExecContext(ctx, m.Down); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to revert migration %d (%s): %w", m.Version, m.Name, err)
	}

	if err := foreignKeyCheck(ctx, tx); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("reverting migration %d (%s) left the schema inconsistent: %w", m.Version, m.Name, err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM schema_migrations WHERE version = ?", m.Version); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to clear migration %d: %w", m.Version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit revert of migration %d: %w", m.Version, err)
	}
	return nil
}

var errForeignKeyViolation = errors.New("foreign key violation")

func foreignKeyCheck(ctx context.Context, tx *sql.Tx) error {
	rows, err := tx.QueryContext(ctx, "PRAGMA foreign_key_check")
	if err != nil {
		return fmt.Errorf("failed to run foreign key check: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		var table, parent string
		var rowid sql.NullInt64
		var fkid int
		if err := rows.Scan(&table, &rowid, &parent, &fkid); err != nil {
			return fmt.Errorf("%w", errForeignKeyViolation)
		}
		return fmt.Errorf("%w: %s row %d references missing %s", errForeignKeyViolation, table, rowid.Int64, parent)
	}
	return rows.Err()
}
