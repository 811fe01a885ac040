package sqlite

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/julianstephens/mindtrack/internal/utils"
)

// isUniqueViolation reports whether err is a UNIQUE constraint failure on
// the given table.column.
func isUniqueViolation(err error, column string) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}

	code := sqliteErr.Code()
	if code != sqlite3.SQLITE_CONSTRAINT_UNIQUE && code&0xff != sqlite3.SQLITE_CONSTRAINT {
		return false
	}
	msg := sqliteErr.Error()
	return strings.Contains(msg, "UNIQUE") && strings.Contains(msg, column)
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTimestamp(t *time.Time) any {
	if t == nil {
		return nil
	}
	return utils.FormatTimestamp(*t)
}

func parseTimestamp(column, value string) (time.Time, error) {
	t, err := utils.ParseTimestamp(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", column, err)
	}
	return t, nil
}

func parseNullTimestamp(column string, value *string) (*time.Time, error) {
	if value == nil {
		return nil, nil
	}
	t, err := parseTimestamp(column, *value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
