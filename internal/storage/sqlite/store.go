package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/mindtrack/internal/logger"
	"github.com/julianstephens/mindtrack/internal/migration"
	"github.com/julianstephens/mindtrack/migrations"
)

// Options tunes the connection pool.
type Options struct {
	MaxOpenConns int
	MaxIdleConns int
}

type Store struct {
	path string
	opts Options
	db   *sql.DB
}

func NewStore(path string, opts Options) *Store {
	return &Store{
		path: path,
		opts: opts,
	}
}

// busyTimeout is how long a pooled connection waits on another writer's
// lock before reporting SQLITE_BUSY.
const busyTimeout = 5 * time.Second

// dsn enables foreign key enforcement and the busy timeout on every pooled
// connection.
func (s *Store) dsn() string {
	return fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(%d)", s.path, busyTimeout.Milliseconds())
}

func (s *Store) open() error {
	db, err := sql.Open("sqlite", s.dsn())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if s.opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(s.opts.MaxOpenConns)
	}
	if s.opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(s.opts.MaxIdleConns)
	}
	s.db = db
	return nil
}

// Open creates the data directory and opens the database without touching
// the schema.
func (s *Store) Open(ctx context.Context) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	if s.db == nil {
		if err := s.open(); err != nil {
			return err
		}
	}
	return s.db.PingContext(ctx)
}

// Init creates the database file if needed and applies pending migrations.
// Calling it on an up-to-date store is a no-op.
func (s *Store) Init(ctx context.Context) error {
	if err := s.Open(ctx); err != nil {
		return err
	}

	if err := s.runMigrations(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func (s *Store) Load(ctx context.Context) error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run 'mindtrack init' first")
	}

	if err := s.open(); err != nil {
		return err
	}

	// Validate schema version using embedded migrations
	if err := s.Migrator().ValidateVersion(ctx); err != nil {
		return err
	}

	return nil
}

func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

// Migrator returns a runner over the embedded catalog bound to this store.
func (s *Store) Migrator() *migration.Runner {
	return migration.NewRunner(s.db, migrations.SQLite())
}

func (s *Store) runMigrations(ctx context.Context) error {
	_, err := s.Migrator().ApplyMigrations(ctx, func(msg string) {
		logger.Info(msg)
	})
	return err
}

func (s *Store) GetConfigPath() string {
	return s.path
}

// GetDB returns the underlying database connection.
// Returns nil if the database has not been initialized or loaded.
func (s *Store) GetDB() *sql.DB {
	return s.db
}
