package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/mindtrack/internal/models"
	"github.com/julianstephens/mindtrack/internal/storage"
	"github.com/julianstephens/mindtrack/internal/utils"
)

const microTaskColumns = `id, uuid, daily_checkin_uuid, task_description, task_memo, is_completed,
	completed_at, created_at, updated_at, deleted_at, sort_order`

func scanMicroTask(row rowScanner) (models.MicroTask, error) {
	var t models.MicroTask
	var checkinUUID, completedAt, deletedAt *string
	var createdAt, updatedAt string

	err := row.Scan(&t.ID, &t.UUID, &checkinUUID, &t.TaskDescription, &t.TaskMemo,
		&t.IsCompleted, &completedAt, &createdAt, &updatedAt, &deletedAt, &t.SortOrder)
	if err != nil {
		return models.MicroTask{}, err
	}

	if checkinUUID != nil {
		t.CheckinUUID = *checkinUUID
	}
	if t.CompletedAt, err = parseNullTimestamp("completed_at", completedAt); err != nil {
		return models.MicroTask{}, err
	}
	if t.CreatedAt, err = parseTimestamp("created_at", createdAt); err != nil {
		return models.MicroTask{}, err
	}
	if t.UpdatedAt, err = parseTimestamp("updated_at", updatedAt); err != nil {
		return models.MicroTask{}, err
	}
	if t.DeletedAt, err = parseNullTimestamp("deleted_at", deletedAt); err != nil {
		return models.MicroTask{}, err
	}

	return t, nil
}

func (s *Store) CreateMicroTask(ctx context.Context, t *models.MicroTask) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO micro_tasks (uuid, daily_checkin_uuid, task_description, task_memo, is_completed,
			completed_at, created_at, updated_at, deleted_at, sort_order)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.UUID, nullString(t.CheckinUUID), t.TaskDescription, t.TaskMemo, t.IsCompleted,
		nullTimestamp(t.CompletedAt), utils.FormatTimestamp(t.CreatedAt),
		utils.FormatTimestamp(t.UpdatedAt), nullTimestamp(t.DeletedAt), t.SortOrder)
	if err != nil {
		return fmt.Errorf("failed to insert micro-task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read micro-task id: %w", err)
	}
	t.ID = id

	return nil
}

func (s *Store) GetLiveMicroTask(ctx context.Context, uuid string) (models.MicroTask, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+microTaskColumns+" FROM micro_tasks WHERE uuid = ? AND deleted_at IS NULL", uuid)

	t, err := scanMicroTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.MicroTask{}, storage.ErrNotFound
	}
	return t, err
}

func (s *Store) ListLiveMicroTasks(ctx context.Context, checkinUUID string) ([]models.MicroTask, error) {
	query := "SELECT " + microTaskColumns + " FROM micro_tasks WHERE deleted_at IS NULL"
	var args []any
	if checkinUUID != "" {
		query += " AND daily_checkin_uuid = ?"
		args = append(args, checkinUUID)
	}
	query += " ORDER BY sort_order, created_at, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.MicroTask
	for rows.Next() {
		t, err := scanMicroTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}

	return tasks, rows.Err()
}

// CompleteMicroTask marks a live task completed. An existing completion
// time is kept.
func (s *Store) CompleteMicroTask(ctx context.Context, uuid string, completedAt, at time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE micro_tasks
		SET is_completed = 1, completed_at = COALESCE(completed_at, ?), updated_at = ?
		WHERE uuid = ? AND deleted_at IS NULL`,
		utils.FormatTimestamp(completedAt), utils.FormatTimestamp(at), uuid)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return storage.ErrNotFound
	}

	return nil
}

func (s *Store) SoftDeleteMicroTask(ctx context.Context, uuid string, at time.Time) error {
	ts := utils.FormatTimestamp(at)
	result, err := s.db.ExecContext(ctx,
		"UPDATE micro_tasks SET deleted_at = ?, updated_at = ? WHERE uuid = ? AND deleted_at IS NULL",
		ts, ts, uuid)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return storage.ErrNotFound
	}

	return nil
}
