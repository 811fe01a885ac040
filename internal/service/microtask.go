package service

import (
	"context"
	"errors"

	"github.com/julianstephens/mindtrack/internal/app"
	"github.com/julianstephens/mindtrack/internal/apperr"
	"github.com/julianstephens/mindtrack/internal/constants"
	"github.com/julianstephens/mindtrack/internal/logger"
	"github.com/julianstephens/mindtrack/internal/models"
	"github.com/julianstephens/mindtrack/internal/storage"
	"github.com/julianstephens/mindtrack/internal/validation"
)

type MicroTaskService struct {
	app *app.Context
}

func NewMicroTaskService(a *app.Context) *MicroTaskService {
	return &MicroTaskService{app: a}
}

// CreateMicroTask stores a new task, optionally attached to a live check-in.
// A completed task without a completion time is completed now.
func (s *MicroTaskService) CreateMicroTask(ctx context.Context, p models.CreateMicroTaskPayload) (*models.MicroTaskResponse, error) {
	now := s.app.Now().UTC()

	completedAt, err := validation.ValidateMicroTaskPayload(p)
	if err != nil {
		return nil, err
	}

	var checkinUUID string
	if p.CheckinID != "" {
		c, err := findLiveCheckin(ctx, s.app.Store, validation.FieldCheckinID, p.CheckinID)
		if err != nil {
			return nil, err
		}
		checkinUUID = c.UUID
	}

	if p.IsCompleted && completedAt == nil {
		completedAt = &now
	}

	id, err := s.app.NewID()
	if err != nil {
		logger.Error("Failed to generate micro-task id", "error", err)
		return nil, apperr.IDGeneration(err)
	}

	t := models.MicroTask{
		UUID:            id,
		CheckinUUID:     checkinUUID,
		TaskDescription: p.TaskDescription,
		IsCompleted:     p.IsCompleted,
		CompletedAt:     completedAt,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if p.TaskMemo != nil {
		t.TaskMemo = *p.TaskMemo
	}

	if err := s.app.Store.CreateMicroTask(ctx, &t); err != nil {
		return nil, databaseError("Failed to insert micro-task", err, "checkinId", checkinUUID)
	}

	logger.Info("Created micro-task", "id", t.UUID, "checkinId", t.CheckinUUID)
	resp := ToMicroTaskResponse(t)
	return &resp, nil
}

// ListMicroTasks returns live tasks for a check-in, or every live task when
// checkinID is empty.
func (s *MicroTaskService) ListMicroTasks(ctx context.Context, checkinID string) ([]models.MicroTaskResponse, error) {
	if checkinID != "" {
		c, err := findLiveCheckin(ctx, s.app.Store, validation.FieldCheckinID, checkinID)
		if err != nil {
			return nil, err
		}
		checkinID = c.UUID
	}

	tasks, err := s.app.Store.ListLiveMicroTasks(ctx, checkinID)
	if err != nil {
		return nil, databaseError("Failed to list micro-tasks", err, "checkinId", checkinID)
	}

	responses := make([]models.MicroTaskResponse, 0, len(tasks))
	for _, t := range tasks {
		responses = append(responses, ToMicroTaskResponse(t))
	}
	return responses, nil
}

func (s *MicroTaskService) CompleteMicroTask(ctx context.Context, externalID string) (*models.MicroTaskResponse, error) {
	externalID, verr := validation.CheckExternalID(validation.FieldID, externalID)
	if verr != nil {
		return nil, verr
	}

	now := s.app.Now().UTC()
	err := s.app.Store.CompleteMicroTask(ctx, externalID, now, now)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound(constants.ResourceMicroTask, externalID, "no live micro-task")
	}
	if err != nil {
		return nil, databaseError("Failed to complete micro-task", err, "id", externalID)
	}

	t, err := s.app.Store.GetLiveMicroTask(ctx, externalID)
	if err != nil {
		return nil, databaseError("Failed to reload micro-task", err, "id", externalID)
	}

	resp := ToMicroTaskResponse(t)
	return &resp, nil
}

func (s *MicroTaskService) DeleteMicroTask(ctx context.Context, externalID string) error {
	externalID, verr := validation.CheckExternalID(validation.FieldID, externalID)
	if verr != nil {
		return verr
	}

	err := s.app.Store.SoftDeleteMicroTask(ctx, externalID, s.app.Now().UTC())
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NotFound(constants.ResourceMicroTask, externalID, "no live micro-task")
	}
	if err != nil {
		return databaseError("Failed to delete micro-task", err, "id", externalID)
	}

	logger.Info("Deleted micro-task", "id", externalID)
	return nil
}
