package migration

import (
	"context"
	"database/sql"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/julianstephens/mindtrack/internal/utils"
	"github.com/julianstephens/mindtrack/migrations"
	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func catalog(files map[string]string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for name, content := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return fsys
}

func tableNames(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("scan failed: %v", err)
		}
		names = append(names, name)
	}
	return names
}

func columnNames(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		t.Fatalf("table_info failed: %v", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("scan failed: %v", err)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func TestGetCurrentVersion(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	runner := NewRunner(db, catalog(map[string]string{
		"001_test.up.sql":   "CREATE TABLE test (id INTEGER);",
		"001_test.down.sql": "DROP TABLE test;",
	}))

	version, err := runner.GetCurrentVersion(ctx)
	if err != nil {
		t.Fatalf("GetCurrentVersion failed: %v", err)
	}
	if version != 0 {
		t.Errorf("expected version 0, got %d", version)
	}

	if _, err := runner.ApplyMigrations(ctx, nil); err != nil {
		t.Fatalf("ApplyMigrations failed: %v", err)
	}

	version, err = runner.GetCurrentVersion(ctx)
	if err != nil {
		t.Fatalf("GetCurrentVersion failed: %v", err)
	}
	if version != 1 {
		t.Errorf("expected version 1, got %d", version)
	}
}

func TestReadMigrationFiles(t *testing.T) {
	db := setupTestDB(t)

	runner := NewRunner(db, catalog(map[string]string{
		"003_another.up.sql":   "CREATE TABLE test2 (id INTEGER);",
		"003_another.down.sql": "DROP TABLE test2;",
		"001_init.up.sql":      "CREATE TABLE test1 (id INTEGER);",
		"001_init.down.sql":    "DROP TABLE test1;",
		"002_update.up.sql":    "ALTER TABLE test1 ADD COLUMN name TEXT;",
		"002_update.down.sql":  "ALTER TABLE test1 DROP COLUMN name;",
		"README.md":            "not a migration",
	}))

	migrations, err := runner.ReadMigrationFiles()
	if err != nil {
		t.Fatalf("ReadMigrationFiles failed: %v", err)
	}

	if len(migrations) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(migrations))
	}

	expected := []struct {
		version int
		name    string
	}{
		{1, "init"},
		{2, "update"},
		{3, "another"},
	}
	for i, want := range expected {
		if migrations[i].Version != want.version || migrations[i].Name != want.name {
			t.Errorf("migration %d: expected version %d and name '%s', got version %d and name '%s'",
				i, want.version, want.name, migrations[i].Version, migrations[i].Name)
		}
		if migrations[i].Up == "" || migrations[i].Down == "" {
			t.Errorf("migration %d: expected both up and down scripts", i)
		}
	}
}

func TestReadMigrationFilesErrors(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		wantErr string
	}{
		{
			name:    "missing underscore",
			files:   map[string]string{"001init.up.sql": "SELECT 1;", "001init.down.sql": "SELECT 1;"},
			wantErr: "invalid migration filename format",
		},
		{
			name:    "missing direction",
			files:   map[string]string{"001_init.sql": "SELECT 1;"},
			wantErr: "invalid migration filename format",
		},
		{
			name:    "zero version",
			files:   map[string]string{"000_init.up.sql": "SELECT 1;", "000_init.down.sql": "SELECT 1;"},
			wantErr: "version must be at least 1",
		},
		{
			name:    "non-numeric version",
			files:   map[string]string{"abc_init.up.sql": "SELECT 1;", "abc_init.down.sql": "SELECT 1;"},
			wantErr: "invalid version number",
		},
		{
			name: "duplicate version",
			files: map[string]string{
				"001_init.up.sql":  "SELECT 1;",
				"001_other.up.sql": "SELECT 1;",
			},
			wantErr: "duplicate migration version",
		},
		{
			name:    "missing down",
			files:   map[string]string{"001_init.up.sql": "SELECT 1;"},
			wantErr: "missing its down script",
		},
		{
			name:    "missing up",
			files:   map[string]string{"001_init.down.sql": "SELECT 1;"},
			wantErr: "missing its up script",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := NewRunner(setupTestDB(t), catalog(tt.files))
			_, err := runner.ReadMigrationFiles()
			if err == nil {
				t.Fatalf("ReadMigrationFiles should have failed")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestApplyMigrationsIncremental(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	fsys := catalog(map[string]string{
		"001_init.up.sql":   "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT);",
		"001_init.down.sql": "DROP TABLE users;",
	})
	runner := NewRunner(db, fsys)

	count, err := runner.ApplyMigrations(ctx, nil)
	if err != nil {
		t.Fatalf("ApplyMigrations (1st) failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 migration applied, got %d", count)
	}

	fsys["002_posts.up.sql"] = &fstest.MapFile{Data: []byte("CREATE TABLE posts (id INTEGER PRIMARY KEY, user_id INTEGER);")}
	fsys["002_posts.down.sql"] = &fstest.MapFile{Data: []byte("DROP TABLE posts;")}

	count, err = runner.ApplyMigrations(ctx, nil)
	if err != nil {
		t.Fatalf("ApplyMigrations (2nd) failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 more migration applied, got %d", count)
	}

	count, err = runner.ApplyMigrations(ctx, nil)
	if err != nil {
		t.Fatalf("ApplyMigrations (3rd) failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 migrations applied on repeat run, got %d", count)
	}

	applied, err := runner.AppliedMigrations(ctx)
	if err != nil {
		t.Fatalf("AppliedMigrations failed: %v", err)
	}
	if len(applied) != 2 || applied[1].Name != "posts" {
		t.Errorf("unexpected bookkeeping rows: %+v", applied)
	}
}

func TestMigrationRollbackOnError(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	runner := NewRunner(db, catalog(map[string]string{
		"001_init.up.sql":     "CREATE TABLE users (id INTEGER PRIMARY KEY);",
		"001_init.down.sql":   "DROP TABLE users;",
		"002_broken.up.sql":   "CREATE TABLE posts (id INTEGER PRIMARY KEY);\nTHIS IS INVALID SQL;",
		"002_broken.down.sql": "DROP TABLE posts;",
	}))

	count, err := runner.ApplyMigrations(ctx, nil)
	if err == nil {
		t.Fatal("ApplyMigrations should have failed with invalid SQL")
	}
	if count != 1 {
		t.Errorf("expected 1 migration applied before the failure, got %d", count)
	}

	version, err := runner.GetCurrentVersion(ctx)
	if err != nil {
		t.Fatalf("GetCurrentVersion failed: %v", err)
	}
	if version != 1 {
		t.Errorf("expected version 1 after failed migration, got %d", version)
	}

	for _, name := range tableNames(t, db) {
		if name == "posts" {
			t.Error("posts table should not exist after failed migration")
		}
	}
}

func TestForeignKeyCheckRejectsRevision(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	runner := NewRunner(db, catalog(map[string]string{
		"001_parent.up.sql": `
			CREATE TABLE parent (id INTEGER PRIMARY KEY);
			CREATE TABLE child (id INTEGER PRIMARY KEY, parent_id INTEGER REFERENCES parent(id));
			INSERT INTO child (id, parent_id) VALUES (1, 42);
		`,
		"001_parent.down.sql": "DROP TABLE child; DROP TABLE parent;",
	}))

	_, err := runner.ApplyMigrations(ctx, nil)
	if err == nil {
		t.Fatal("ApplyMigrations should have failed the foreign key check")
	}
	if !strings.Contains(err.Error(), "foreign key violation") {
		t.Errorf("expected foreign key violation, got: %v", err)
	}

	var enabled int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&enabled); err != nil {
		t.Fatalf("pragma query failed: %v", err)
	}
	if enabled != 1 {
		t.Errorf("expected foreign keys to be re-enabled, got %d", enabled)
	}
}

func TestValidateVersionNewerDatabase(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	runner := NewRunner(db, catalog(map[string]string{
		"001_init.up.sql":   "CREATE TABLE users (id INTEGER PRIMARY KEY);",
		"001_init.down.sql": "DROP TABLE users;",
	}))

	if err := runner.EnsureVersionTable(ctx); err != nil {
		t.Fatalf("EnsureVersionTable failed: %v", err)
	}
	if _, err := db.Exec("INSERT INTO schema_migrations (version, name, applied_at) VALUES (1, 'init', '2025-01-01T00:00:00.000000Z'), (10, 'future', '2025-01-01T00:00:00.000000Z')"); err != nil {
		t.Fatalf("failed to seed bookkeeping: %v", err)
	}

	err := runner.ValidateVersion(ctx)
	if err == nil {
		t.Fatal("ValidateVersion should have failed with newer database version")
	}
	if !strings.Contains(err.Error(), "newer than supported") {
		t.Errorf("unexpected error: %v", err)
	}

	if _, err := runner.ApplyMigrations(ctx, nil); err == nil {
		t.Fatal("ApplyMigrations should have failed with newer database version")
	}
	if _, err := runner.Rollback(ctx, 1, nil); err == nil {
		t.Fatal("Rollback should have failed with newer database version")
	}
}

func TestValidateVersionGap(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	runner := NewRunner(db, catalog(map[string]string{
		"001_init.up.sql":    "CREATE TABLE users (id INTEGER PRIMARY KEY);",
		"001_init.down.sql":  "DROP TABLE users;",
		"002_posts.up.sql":   "CREATE TABLE posts (id INTEGER PRIMARY KEY);",
		"002_posts.down.sql": "DROP TABLE posts;",
	}))

	if err := runner.EnsureVersionTable(ctx); err != nil {
		t.Fatalf("EnsureVersionTable failed: %v", err)
	}
	if _, err := db.Exec("INSERT INTO schema_migrations (version, name, applied_at) VALUES (2, 'posts', '2025-01-01T00:00:00.000000Z')"); err != nil {
		t.Fatalf("failed to seed bookkeeping: %v", err)
	}

	if err := runner.ValidateVersion(ctx); err == nil {
		t.Fatal("ValidateVersion should have rejected a non-contiguous history")
	}
}

func TestGetLatestVersion(t *testing.T) {
	runner := NewRunner(setupTestDB(t), catalog(map[string]string{
		"001_init.up.sql":     "CREATE TABLE users (id INTEGER);",
		"001_init.down.sql":   "DROP TABLE users;",
		"003_posts.up.sql":    "CREATE TABLE posts (id INTEGER);",
		"003_posts.down.sql":  "DROP TABLE posts;",
		"002_update.up.sql":   "ALTER TABLE users ADD COLUMN name TEXT;",
		"002_update.down.sql": "ALTER TABLE users DROP COLUMN name;",
	}))

	latestVersion, err := runner.GetLatestVersion()
	if err != nil {
		t.Fatalf("GetLatestVersion failed: %v", err)
	}
	if latestVersion != 3 {
		t.Errorf("expected latest version 3, got %d", latestVersion)
	}
}

func TestRollbackSteps(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	runner := NewRunner(db, catalog(map[string]string{
		"001_init.up.sql":    "CREATE TABLE users (id INTEGER PRIMARY KEY);",
		"001_init.down.sql":  "DROP TABLE users;",
		"002_posts.up.sql":   "CREATE TABLE posts (id INTEGER PRIMARY KEY);",
		"002_posts.down.sql": "DROP TABLE posts;",
	}))

	if _, err := runner.ApplyMigrations(ctx, nil); err != nil {
		t.Fatalf("ApplyMigrations failed: %v", err)
	}

	var logged []string
	count, err := runner.Rollback(ctx, 1, func(s string) { logged = append(logged, s) })
	if err != nil {
		t.Fatalf("Rollback failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 migration reverted, got %d", count)
	}
	if len(logged) == 0 {
		t.Error("expected rollback progress to be logged")
	}

	version, err := runner.GetCurrentVersion(ctx)
	if err != nil {
		t.Fatalf("GetCurrentVersion failed: %v", err)
	}
	if version != 1 {
		t.Errorf("expected version 1 after rollback, got %d", version)
	}

	names := tableNames(t, db)
	if strings.Join(names, ",") != "schema_migrations,users" {
		t.Errorf("unexpected tables after rollback: %v", names)
	}

	statuses, err := runner.Status(ctx)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if len(statuses) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(statuses))
	}
	if statuses[0].AppliedAt == nil {
		t.Error("expected migration 1 to be applied")
	}
	if statuses[1].AppliedAt != nil {
		t.Error("expected migration 2 to be pending")
	}
}

func TestEmbeddedCatalogRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	runner := NewRunner(db, migrations.SQLite())

	count, err := runner.ApplyMigrations(ctx, nil)
	if err != nil {
		t.Fatalf("ApplyMigrations failed: %v", err)
	}
	if count != 4 {
		t.Errorf("expected 4 migrations applied, got %d", count)
	}

	wantCheckins := []string{
		"created_at", "date", "deleted_at", "id", "mood_level", "mood_text",
		"physical_state_tags", "physical_state_text", "potential_todos", "updated_at", "uuid",
	}
	if got := columnNames(t, db, "daily_checkins"); strings.Join(got, ",") != strings.Join(wantCheckins, ",") {
		t.Errorf("daily_checkins columns = %v, want %v", got, wantCheckins)
	}

	wantTasks := []string{
		"completed_at", "created_at", "daily_checkin_uuid", "deleted_at", "id", "is_completed",
		"sort_order", "task_description", "task_memo", "updated_at", "uuid",
	}
	if got := columnNames(t, db, "micro_tasks"); strings.Join(got, ",") != strings.Join(wantTasks, ",") {
		t.Errorf("micro_tasks columns = %v, want %v", got, wantTasks)
	}

	count, err = runner.ApplyMigrations(ctx, nil)
	if err != nil {
		t.Fatalf("repeat ApplyMigrations failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected idempotent startup, got %d migrations applied", count)
	}

	count, err = runner.Rollback(ctx, 0, nil)
	if err != nil {
		t.Fatalf("Rollback failed: %v", err)
	}
	if count != 4 {
		t.Errorf("expected 4 migrations reverted, got %d", count)
	}

	names := tableNames(t, db)
	if strings.Join(names, ",") != "schema_migrations" {
		t.Errorf("expected only schema_migrations after full rollback, got %v", names)
	}

	var rows int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&rows); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if rows != 0 {
		t.Errorf("expected empty bookkeeping table, got %d rows", rows)
	}
}

func TestEmbeddedCatalogLiveDateIndex(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if _, err := NewRunner(db, migrations.SQLite()).ApplyMigrations(ctx, nil); err != nil {
		t.Fatalf("ApplyMigrations failed: %v", err)
	}

	insert := `INSERT INTO daily_checkins (uuid, date, mood_level, created_at, updated_at, deleted_at)
		VALUES (?, '2025-01-10', 3, '2025-01-10T08:00:00.000000Z', '2025-01-10T08:00:00.000000Z', ?)`

	if _, err := db.Exec(insert, "a", "2025-01-10T09:00:00.000000Z"); err != nil {
		t.Fatalf("insert soft-deleted row failed: %v", err)
	}
	if _, err := db.Exec(insert, "b", nil); err != nil {
		t.Fatalf("insert live row alongside soft-deleted row failed: %v", err)
	}
	if _, err := db.Exec(insert, "c", nil); err == nil {
		t.Fatal("expected a second live row for the same date to be rejected")
	}
}

func TestEmbeddedCatalogUpgradesExistingData(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	runner := NewRunner(db, migrations.SQLite())

	// Bring the store to the initial generation only.
	if _, err := runner.ApplyMigrations(ctx, nil); err != nil {
		t.Fatalf("ApplyMigrations failed: %v", err)
	}
	if _, err := runner.Rollback(ctx, 2, nil); err != nil {
		t.Fatalf("Rollback failed: %v", err)
	}

	seed := []string{
		"INSERT INTO daily_checkins (id, date, mood_level, mood_text) VALUES (1, '2025-01-01', 4, 'fine')",
		"INSERT INTO daily_checkins (id, date, mood_level) VALUES (2, '2025-01-02', NULL)",
		"INSERT INTO micro_tasks (daily_checkin_id, task_description, created_at) VALUES (1, 'walk', '2025-01-01 10:00:00')",
		"INSERT INTO micro_tasks (daily_checkin_id, task_description) VALUES (2, 'orphaned')",
		"INSERT INTO micro_tasks (daily_checkin_id, task_description) VALUES (NULL, 'standalone')",
	}
	for _, stmt := range seed {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("seed %q failed: %v", stmt, err)
		}
	}

	if _, err := runner.ApplyMigrations(ctx, nil); err != nil {
		t.Fatalf("upgrade failed: %v", err)
	}

	var checkins int
	if err := db.QueryRow("SELECT COUNT(*) FROM daily_checkins").Scan(&checkins); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if checkins != 1 {
		t.Errorf("expected 1 check-in carried over, got %d", checkins)
	}

	var checkinUUID, taskRef, createdAt string
	if err := db.QueryRow("SELECT uuid FROM daily_checkins WHERE id = 1").Scan(&checkinUUID); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if len(checkinUUID) != 36 {
		t.Errorf("expected a backfilled uuid, got %q", checkinUUID)
	}
	if err := db.QueryRow("SELECT daily_checkin_uuid, created_at FROM micro_tasks WHERE task_description = 'walk'").Scan(&taskRef, &createdAt); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if taskRef != checkinUUID {
		t.Errorf("expected task to reference %q, got %q", checkinUUID, taskRef)
	}
	if createdAt != "2025-01-01T10:00:00.000000Z" {
		t.Errorf("expected converted created_at, got %q", createdAt)
	}

	// Backfilled timestamps share the fixed width of runtime rows so that
	// ordering by the TEXT column stays chronological.
	var checkinCreated string
	if err := db.QueryRow("SELECT created_at FROM daily_checkins WHERE id = 1").Scan(&checkinCreated); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	var standaloneCreated string
	var standaloneCompleted sql.NullString
	if err := db.QueryRow("SELECT created_at, completed_at FROM micro_tasks WHERE task_description = 'standalone'").Scan(&standaloneCreated, &standaloneCompleted); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	for _, ts := range []string{checkinCreated, standaloneCreated} {
		if len(ts) != len("2006-01-02T15:04:05.000000Z") || !strings.HasSuffix(ts, "Z") {
			t.Errorf("expected a fixed-width microsecond timestamp, got %q", ts)
		}
		if _, err := utils.ParseTimestamp(ts); err != nil {
			t.Errorf("backfilled timestamp %q does not parse: %v", ts, err)
		}
	}
	if standaloneCompleted.Valid {
		t.Errorf("expected completed_at to stay NULL, got %q", standaloneCompleted.String)
	}

	var tasks int
	if err := db.QueryRow("SELECT COUNT(*) FROM micro_tasks").Scan(&tasks); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if tasks != 2 {
		t.Errorf("expected 2 micro-tasks after upgrade, got %d", tasks)
	}
}
