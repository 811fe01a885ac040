// Package backup keeps rotated snapshots of the journal database next to it.
package backup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/mindtrack/internal/logger"
	"github.com/julianstephens/mindtrack/internal/migration"
	"github.com/julianstephens/mindtrack/migrations"
)

const (
	// DefaultKeep is the number of snapshots retained after rotation.
	DefaultKeep = 14
	DirName     = "backups"
	FilePrefix  = "mindtrack-"
	FileSuffix  = ".sqlite"

	stampLayout = "20060102-150405"
	maxCounter  = 100
)

// ErrNoDatabase is returned when there is nothing to back up.
var ErrNoDatabase = errors.New("database does not exist")

// Info describes one snapshot on disk.
type Info struct {
	Path      string
	Timestamp time.Time
	Size      int64
}

// Name returns the snapshot's file name.
func (i Info) Name() string {
	return filepath.Base(i.Path)
}

type Manager struct {
	dbPath string
	dir    string
	keep   int
	now    func() time.Time
}

// NewManager returns a manager storing snapshots of dbPath in a backups
// directory beside it. keep <= 0 selects DefaultKeep.
func NewManager(dbPath string, keep int) *Manager {
	if keep <= 0 {
		keep = DefaultKeep
	}
	return &Manager{
		dbPath: dbPath,
		dir:    filepath.Join(filepath.Dir(dbPath), DirName),
		keep:   keep,
		now:    time.Now,
	}
}

func (m *Manager) Dir() string {
	return m.dir
}

func (m *Manager) Keep() int {
	return m.keep
}

// Create writes a consistent snapshot of the database and rotates old ones.
func (m *Manager) Create(ctx context.Context) (Info, error) {
	return m.create(ctx, true)
}

func (m *Manager) create(ctx context.Context, rotate bool) (Info, error) {
	if _, err := os.Stat(m.dbPath); os.IsNotExist(err) {
		return Info{}, fmt.Errorf("%w: %s", ErrNoDatabase, m.dbPath)
	}
	if err := os.MkdirAll(m.dir, 0700); err != nil {
		return Info{}, fmt.Errorf("failed to create backup directory: %w", err)
	}

	ts := m.now().UTC()
	dest, err := m.freePath(ts)
	if err != nil {
		return Info{}, err
	}

	if err := vacuumInto(ctx, m.dbPath, dest); err != nil {
		return Info{}, fmt.Errorf("failed to back up database: %w", err)
	}
	logger.Info("Created backup", "path", dest)

	if rotate {
		if err := m.rotate(); err != nil {
			logger.Warn("Failed to rotate old backups", "error", err)
		}
	}

	st, err := os.Stat(dest)
	if err != nil {
		return Info{}, err
	}
	return Info{Path: dest, Timestamp: ts.Truncate(time.Second), Size: st.Size()}, nil
}

// freePath picks an unused file name for a snapshot taken at ts.
func (m *Manager) freePath(ts time.Time) (string, error) {
	stamp := ts.Format(stampLayout)
	path := filepath.Join(m.dir, FilePrefix+stamp+FileSuffix)
	for n := 1; ; n++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, nil
		}
		if n > maxCounter {
			return "", fmt.Errorf("failed to generate unique backup filename")
		}
		path = filepath.Join(m.dir, fmt.Sprintf("%s%s-%d%s", FilePrefix, stamp, n, FileSuffix))
	}
}

// vacuumInto copies src to dest through SQLite, which yields a
// self-contained file even while other connections are open.
func vacuumInto(ctx context.Context, src, dest string) error {
	db, err := sql.Open("sqlite", src+"?mode=ro")
	if err != nil {
		return fmt.Errorf("failed to open source database: %w", err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master").Scan(&n); err != nil {
		return fmt.Errorf("source database appears to be corrupted: %w", err)
	}

	if _, err := db.ExecContext(ctx, "VACUUM INTO ?", dest); err != nil {
		return err
	}
	return nil
}

// List returns the snapshots on disk, newest first. Files that do not look
// like snapshots are ignored.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.dir)
	if os.IsNotExist(err) {
		return []Info{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	type entry struct {
		info Info
		seq  int
	}
	var found []entry
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ts, seq, ok := parseName(e.Name())
		if !ok {
			continue
		}
		path := filepath.Join(m.dir, e.Name())
		st, err := os.Stat(path)
		if err != nil {
			continue
		}
		found = append(found, entry{info: Info{Path: path, Timestamp: ts, Size: st.Size()}, seq: seq})
	}

	sort.Slice(found, func(i, j int) bool {
		if !found[i].info.Timestamp.Equal(found[j].info.Timestamp) {
			return found[i].info.Timestamp.After(found[j].info.Timestamp)
		}
		return found[i].seq > found[j].seq
	})

	out := make([]Info, len(found))
	for i, f := range found {
		out[i] = f.info
	}
	return out, nil
}

// parseName extracts the timestamp and collision counter from a snapshot
// file name of the form mindtrack-YYYYMMDD-HHMMSS[-N].sqlite.
func parseName(name string) (time.Time, int, bool) {
	if !strings.HasPrefix(name, FilePrefix) || !strings.HasSuffix(name, FileSuffix) {
		return time.Time{}, 0, false
	}
	body := strings.TrimSuffix(strings.TrimPrefix(name, FilePrefix), FileSuffix)
	if len(body) < len(stampLayout) {
		return time.Time{}, 0, false
	}

	ts, err := time.Parse(stampLayout, body[:len(stampLayout)])
	if err != nil {
		return time.Time{}, 0, false
	}

	rest := body[len(stampLayout):]
	if rest == "" {
		return ts, 0, true
	}
	if !strings.HasPrefix(rest, "-") {
		return time.Time{}, 0, false
	}
	seq, err := strconv.Atoi(rest[1:])
	if err != nil || seq < 1 {
		return time.Time{}, 0, false
	}
	return ts, seq, true
}

func (m *Manager) rotate() error {
	backups, err := m.List()
	if err != nil {
		return err
	}
	for i := m.keep; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i].Name(), err)
		}
		logger.Debug("Removed old backup", "path", backups[i].Path)
	}
	return nil
}

// Resolve maps a user-supplied name to a snapshot path. Existing paths are
// used as given; bare names are looked up in the backup directory.
func (m *Manager) Resolve(name string) (string, error) {
	if _, err := os.Stat(name); err == nil {
		return filepath.Abs(name)
	}
	if !filepath.IsAbs(name) {
		candidate := filepath.Join(m.dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("backup file not found: tried %s and %s", name, m.dir)
}

// Restore replaces the database with the snapshot at path. The current
// database, if any, is snapshotted first and that snapshot is returned.
// The store must be closed by the caller beforehand.
func (m *Manager) Restore(ctx context.Context, path string) (*Info, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("backup file does not exist: %s", path)
	}
	if err := Verify(ctx, path); err != nil {
		return nil, fmt.Errorf("backup file is corrupted or invalid: %w", err)
	}

	var previous *Info
	if _, err := os.Stat(m.dbPath); err == nil {
		info, err := m.create(ctx, false)
		if err != nil {
			return nil, fmt.Errorf("failed to back up current database before restore: %w", err)
		}
		previous = &info
	}

	tmp := m.dbPath + ".restore.tmp"
	if err := copyFile(path, tmp); err != nil {
		return nil, fmt.Errorf("failed to copy backup file: %w", err)
	}
	if err := os.Rename(tmp, m.dbPath); err != nil {
		if rmErr := os.Remove(tmp); rmErr != nil {
			logger.Warn("Failed to remove temporary restore file", "path", tmp, "error", rmErr)
		}
		return nil, fmt.Errorf("failed to restore database: %w", err)
	}
	// Stale journal files belong to the replaced database.
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(m.dbPath + suffix); err != nil && !os.IsNotExist(err) {
			logger.Warn("Failed to remove stale journal file", "path", m.dbPath+suffix, "error", err)
		}
	}

	logger.Info("Restored database", "from", path)
	return previous, nil
}

// Verify checks that path holds a journal database this build can open:
// a readable SQLite file whose schema is not newer than the catalog.
func Verify(ctx context.Context, path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()

	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master").Scan(&n); err != nil {
		return err
	}

	var tracked int
	err = db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'schema_migrations'").Scan(&tracked)
	if err != nil {
		return err
	}
	if tracked == 0 {
		return fmt.Errorf("not a mindtrack database")
	}

	return migration.NewRunner(db, migrations.SQLite()).ValidateVersion(ctx)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
