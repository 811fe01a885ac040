// Package service implements the check-in and micro-task operations the
// shell invokes. Every error returned is an *apperr.AppError.
package service

import (
	"context"
	"errors"

	"github.com/julianstephens/mindtrack/internal/app"
	"github.com/julianstephens/mindtrack/internal/apperr"
	"github.com/julianstephens/mindtrack/internal/codec"
	"github.com/julianstephens/mindtrack/internal/constants"
	"github.com/julianstephens/mindtrack/internal/logger"
	"github.com/julianstephens/mindtrack/internal/models"
	"github.com/julianstephens/mindtrack/internal/storage"
	"github.com/julianstephens/mindtrack/internal/validation"
)

type CheckinService struct {
	app *app.Context
}

func NewCheckinService(a *app.Context) *CheckinService {
	return &CheckinService{app: a}
}

// RecordCheckin validates and stores a new check-in for a date that has no
// live check-in yet.
func (s *CheckinService) RecordCheckin(ctx context.Context, p models.CreateCheckinPayload) (*models.CheckinResponse, error) {
	now := s.app.Now().UTC()

	if err := validation.ValidateCheckinPayload(p, now); err != nil {
		logger.Debug("Rejected check-in payload", "date", p.Date, "error", err)
		return nil, err
	}

	_, err := s.app.Store.GetLiveCheckinByDate(ctx, p.Date)
	switch {
	case err == nil:
		return nil, duplicateCheckin(p.Date)
	case !errors.Is(err, storage.ErrNotFound):
		return nil, databaseError("Failed to look up check-in by date", err, "date", p.Date)
	}

	tags, err := codec.EncodeList(p.PhysicalStateTags)
	if err != nil {
		return nil, apperr.Unexpected("Failed to encode physical state tags", err)
	}
	todos, err := codec.EncodeList(p.PotentialTodos)
	if err != nil {
		return nil, apperr.Unexpected("Failed to encode potential todos", err)
	}

	id, err := s.app.NewID()
	if err != nil {
		logger.Error("Failed to generate check-in id", "error", err)
		return nil, apperr.IDGeneration(err)
	}

	c := models.CheckIn{
		UUID:              id,
		Date:              p.Date,
		MoodLevel:         p.MoodLevel,
		PhysicalStateTags: tags,
		PotentialTodos:    todos,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if p.MoodText != nil {
		c.MoodText = *p.MoodText
	}

	if err := s.app.Store.CreateCheckin(ctx, &c); err != nil {
		// Lost a race with a concurrent insert for the same date
		if errors.Is(err, storage.ErrDuplicateDate) {
			return nil, duplicateCheckin(p.Date)
		}
		return nil, databaseError("Failed to insert check-in", err, "date", p.Date)
	}

	logger.Info("Recorded check-in", "id", c.UUID, "date", c.Date)
	resp := ToCheckinResponse(c)
	return &resp, nil
}

// GetCheckinByDate returns the live check-in for date, or nil when there is none.
func (s *CheckinService) GetCheckinByDate(ctx context.Context, date string) (*models.CheckinResponse, error) {
	if _, verr := validation.ParseDateField(date); verr != nil {
		return nil, verr
	}

	c, err := s.app.Store.GetLiveCheckinByDate(ctx, date)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, databaseError("Failed to get check-in by date", err, "date", date)
	}

	resp := ToCheckinResponse(c)
	return &resp, nil
}

func (s *CheckinService) GetCheckin(ctx context.Context, externalID string) (*models.CheckinResponse, error) {
	c, err := findLiveCheckin(ctx, s.app.Store, validation.FieldID, externalID)
	if err != nil {
		return nil, err
	}
	resp := ToCheckinResponse(c)
	return &resp, nil
}

// ListCheckins returns live check-ins in the inclusive date range, oldest
// first. Either bound may be empty.
func (s *CheckinService) ListCheckins(ctx context.Context, from, to string) ([]models.CheckinResponse, error) {
	if verr := validation.CheckDateBound(validation.FieldFrom, from); verr != nil {
		return nil, verr
	}
	if verr := validation.CheckDateBound(validation.FieldTo, to); verr != nil {
		return nil, verr
	}

	checkins, err := s.app.Store.ListLiveCheckins(ctx, from, to)
	if err != nil {
		return nil, databaseError("Failed to list check-ins", err, "from", from, "to", to)
	}

	responses := make([]models.CheckinResponse, 0, len(checkins))
	for _, c := range checkins {
		responses = append(responses, ToCheckinResponse(c))
	}
	return responses, nil
}

// DeleteCheckin soft deletes a check-in together with its live micro-tasks.
func (s *CheckinService) DeleteCheckin(ctx context.Context, externalID string) (*models.DeleteResult, error) {
	externalID, verr := validation.CheckExternalID(validation.FieldID, externalID)
	if verr != nil {
		return nil, verr
	}

	tasks, err := s.app.Store.SoftDeleteCheckin(ctx, externalID, s.app.Now().UTC())
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound(constants.ResourceDailyCheckin, externalID, "no live check-in")
	}
	if err != nil {
		return nil, databaseError("Failed to delete check-in", err, "id", externalID)
	}

	logger.Info("Deleted check-in", "id", externalID, "microTasks", tasks)
	return &models.DeleteResult{CheckinID: externalID, MicroTasks: tasks}, nil
}

// PurgeDeleted physically removes every soft-deleted row.
func (s *CheckinService) PurgeDeleted(ctx context.Context) (*models.PurgeResult, error) {
	purged, err := s.app.Store.PurgeDeleted(ctx)
	if err != nil {
		return nil, databaseError("Failed to purge deleted rows", err)
	}

	logger.Info("Purged deleted rows", "checkins", purged.Checkins, "microTasks", purged.MicroTasks)
	return &purged, nil
}

// findLiveCheckin resolves an external id to a live check-in, reporting a
// malformed id as a validation error on field.
func findLiveCheckin(ctx context.Context, store storage.CheckinRepository, field, externalID string) (models.CheckIn, error) {
	externalID, verr := validation.CheckExternalID(field, externalID)
	if verr != nil {
		return models.CheckIn{}, verr
	}

	c, err := store.GetLiveCheckinByUUID(ctx, externalID)
	if errors.Is(err, storage.ErrNotFound) {
		return models.CheckIn{}, apperr.NotFound(constants.ResourceDailyCheckin, externalID, "no live check-in")
	}
	if err != nil {
		return models.CheckIn{}, databaseError("Failed to get check-in", err, "id", externalID)
	}
	return c, nil
}

func duplicateCheckin(date string) *apperr.AppError {
	return apperr.Validation(validation.FieldDate, apperr.MsgDuplicateCheckin, "Checkin already exists for date "+date)
}

// databaseError logs the raw failure and returns the sanitized AppError.
func databaseError(msg string, err error, keyvals ...interface{}) *apperr.AppError {
	logger.Error(msg, append(keyvals, "error", err)...)
	return apperr.Database(err)
}
