package storage

import (
	"context"
	"errors"
	"time"

	"github.com/julianstephens/mindtrack/internal/models"
)

var (
	// ErrNotFound is returned when no live row matches a lookup.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateDate is returned when a live check-in already holds the date.
	ErrDuplicateDate = errors.New("a live check-in already exists for this date")
)

type Provider interface {
	// Lifecycle
	Init(ctx context.Context) error
	Load(ctx context.Context) error
	Close() error

	CheckinRepository
	MicroTaskRepository

	// Utils
	GetConfigPath() string
}

// CheckinRepository persists daily check-ins. Every read only sees live rows.
type CheckinRepository interface {
	// CreateCheckin inserts c and sets c.ID. A live row with the same date
	// yields ErrDuplicateDate.
	CreateCheckin(ctx context.Context, c *models.CheckIn) error
	GetLiveCheckinByDate(ctx context.Context, date string) (models.CheckIn, error)
	GetLiveCheckinByUUID(ctx context.Context, uuid string) (models.CheckIn, error)
	// ListLiveCheckins returns live rows with from <= date <= to, ascending.
	// An empty bound is open.
	ListLiveCheckins(ctx context.Context, from, to string) ([]models.CheckIn, error)
	// SoftDeleteCheckin marks the check-in and its live micro-tasks deleted
	// in one transaction and returns the number of micro-tasks touched.
	SoftDeleteCheckin(ctx context.Context, uuid string, at time.Time) (int64, error)
	// PurgeDeleted physically removes soft-deleted rows.
	PurgeDeleted(ctx context.Context) (models.PurgeResult, error)
}

// MicroTaskRepository persists micro-tasks. Every read only sees live rows.
type MicroTaskRepository interface {
	CreateMicroTask(ctx context.Context, t *models.MicroTask) error
	GetLiveMicroTask(ctx context.Context, uuid string) (models.MicroTask, error)
	// ListLiveMicroTasks returns live tasks ordered by sort order, creation
	// time and key. An empty checkinUUID lists every live task.
	ListLiveMicroTasks(ctx context.Context, checkinUUID string) ([]models.MicroTask, error)
	CompleteMicroTask(ctx context.Context, uuid string, completedAt, at time.Time) error
	SoftDeleteMicroTask(ctx context.Context, uuid string, at time.Time) error
}
