package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/mindtrack/internal/models"
	"github.com/julianstephens/mindtrack/internal/storage"
	"github.com/julianstephens/mindtrack/internal/utils"
)

const checkinColumns = `id, uuid, date, mood_level, mood_text, physical_state_tags,
	physical_state_text, potential_todos, created_at, updated_at, deleted_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCheckin(row rowScanner) (models.CheckIn, error) {
	var c models.CheckIn
	var createdAt, updatedAt string
	var deletedAt *string

	err := row.Scan(&c.ID, &c.UUID, &c.Date, &c.MoodLevel, &c.MoodText,
		&c.PhysicalStateTags, &c.PhysicalStateText, &c.PotentialTodos,
		&createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return models.CheckIn{}, err
	}

	if c.CreatedAt, err = parseTimestamp("created_at", createdAt); err != nil {
		return models.CheckIn{}, err
	}
	if c.UpdatedAt, err = parseTimestamp("updated_at", updatedAt); err != nil {
		return models.CheckIn{}, err
	}
	if c.DeletedAt, err = parseNullTimestamp("deleted_at", deletedAt); err != nil {
		return models.CheckIn{}, err
	}

	return c, nil
}

func (s *Store) CreateCheckin(ctx context.Context, c *models.CheckIn) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO daily_checkins (uuid, date, mood_level, mood_text, physical_state_tags,
			physical_state_text, potential_todos, created_at, updated_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.UUID, c.Date, c.MoodLevel, c.MoodText, c.PhysicalStateTags,
		c.PhysicalStateText, c.PotentialTodos,
		utils.FormatTimestamp(c.CreatedAt), utils.FormatTimestamp(c.UpdatedAt),
		nullTimestamp(c.DeletedAt))
	if err != nil {
		if isUniqueViolation(err, "daily_checkins.date") {
			return storage.ErrDuplicateDate
		}
		return fmt.Errorf("failed to insert check-in: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read check-in id: %w", err)
	}
	c.ID = id

	return nil
}

func (s *Store) getLiveCheckin(ctx context.Context, where string, arg any) (models.CheckIn, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+checkinColumns+" FROM daily_checkins WHERE "+where+" AND deleted_at IS NULL", arg)

	c, err := scanCheckin(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CheckIn{}, storage.ErrNotFound
	}
	return c, err
}

func (s *Store) GetLiveCheckinByDate(ctx context.Context, date string) (models.CheckIn, error) {
	return s.getLiveCheckin(ctx, "date = ?", date)
}

func (s *Store) GetLiveCheckinByUUID(ctx context.Context, uuid string) (models.CheckIn, error) {
	return s.getLiveCheckin(ctx, "uuid = ?", uuid)
}

func (s *Store) ListLiveCheckins(ctx context.Context, from, to string) ([]models.CheckIn, error) {
	conditions := []string{"deleted_at IS NULL"}
	var args []any
	if from != "" {
		conditions = append(conditions, "date >= ?")
		args = append(args, from)
	}
	if to != "" {
		conditions = append(conditions, "date <= ?")
		args = append(args, to)
	}

	query := "SELECT " + checkinColumns + " FROM daily_checkins WHERE " +
		strings.Join(conditions, " AND ") + " ORDER BY date"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var checkins []models.CheckIn
	for rows.Next() {
		c, err := scanCheckin(rows)
		if err != nil {
			return nil, err
		}
		checkins = append(checkins, c)
	}

	return checkins, rows.Err()
}

func (s *Store) SoftDeleteCheckin(ctx context.Context, uuid string, at time.Time) (int64, error) {
	// Soft delete the check-in and every live micro-task attached to it
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	ts := utils.FormatTimestamp(at)

	result, err := tx.ExecContext(ctx,
		"UPDATE daily_checkins SET deleted_at = ?, updated_at = ? WHERE uuid = ? AND deleted_at IS NULL",
		ts, ts, uuid)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		return 0, storage.ErrNotFound
	}

	result, err = tx.ExecContext(ctx,
		"UPDATE micro_tasks SET deleted_at = ?, updated_at = ? WHERE daily_checkin_uuid = ? AND deleted_at IS NULL",
		ts, ts, uuid)
	if err != nil {
		return 0, err
	}
	tasks, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	return tasks, tx.Commit()
}

func (s *Store) PurgeDeleted(ctx context.Context) (models.PurgeResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.PurgeResult{}, err
	}
	defer tx.Rollback()

	// Children of purged check-ins are removed here so the count is exact;
	// the foreign key cascade would remove them regardless.
	result, err := tx.ExecContext(ctx, `
		DELETE FROM micro_tasks
		WHERE deleted_at IS NOT NULL
		   OR daily_checkin_uuid IN (SELECT uuid FROM daily_checkins WHERE deleted_at IS NOT NULL)`)
	if err != nil {
		return models.PurgeResult{}, err
	}
	var purged models.PurgeResult
	if purged.MicroTasks, err = result.RowsAffected(); err != nil {
		return models.PurgeResult{}, err
	}

	result, err = tx.ExecContext(ctx, "DELETE FROM daily_checkins WHERE deleted_at IS NOT NULL")
	if err != nil {
		return models.PurgeResult{}, err
	}
	if purged.Checkins, err = result.RowsAffected(); err != nil {
		return models.PurgeResult{}, err
	}

	return purged, tx.Commit()
}
