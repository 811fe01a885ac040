package validation

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/julianstephens/mindtrack/internal/apperr"
	"github.com/julianstephens/mindtrack/internal/constants"
	"github.com/julianstephens/mindtrack/internal/models"
)

// Field names reported on micro-task validation errors
const (
	FieldCheckinID       = "checkinId"
	FieldTaskDescription = "taskDescription"
	FieldTaskMemo        = "taskMemo"
	FieldCompletedAt     = "completedAt"
	FieldID              = "id"
)

// ValidateMicroTaskPayload checks a micro-task payload and returns the
// parsed completion time, if any. The referenced check-in's existence is
// checked by the service, not here.
func ValidateMicroTaskPayload(p models.CreateMicroTaskPayload) (*time.Time, error) {
	if p.CheckinID != "" {
		if _, err := CheckExternalID(FieldCheckinID, p.CheckinID); err != nil {
			return nil, err
		}
	}
	if err := CheckTaskDescription(p.TaskDescription); err != nil {
		return nil, err
	}
	if err := CheckTaskMemo(p.TaskMemo); err != nil {
		return nil, err
	}
	completedAt, verr := CheckCompletion(p.IsCompleted, p.CompletedAt)
	if verr != nil {
		return nil, verr
	}
	return completedAt, nil
}

// CheckExternalID requires id to be a UUID and returns its canonical
// lowercase hyphenated form, the one stored in the uuid columns.
func CheckExternalID(field, id string) (string, *apperr.AppError) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", apperr.Validation(field, apperr.MsgInvalidID, fmt.Sprintf("Invalid external id %q: %v", id, err))
	}
	return u.String(), nil
}

// CheckTaskDescription requires a non-blank description of at most 200 characters.
func CheckTaskDescription(desc string) *apperr.AppError {
	if strings.TrimSpace(desc) == "" {
		return apperr.Validation(FieldTaskDescription, apperr.MsgTaskDescRequired, "Task description is required")
	}
	if n := utf8.RuneCountInString(desc); n > constants.MaxTaskDescriptionLen {
		return apperr.Validation(FieldTaskDescription, apperr.MsgTaskDescTooLong,
			fmt.Sprintf("Task description must be %d characters or less, got %d", constants.MaxTaskDescriptionLen, n))
	}
	return nil
}

// CheckTaskMemo limits the optional memo to 1000 characters.
func CheckTaskMemo(memo *string) *apperr.AppError {
	if memo == nil {
		return nil
	}
	if n := utf8.RuneCountInString(*memo); n > constants.MaxTaskMemoLen {
		return apperr.Validation(FieldTaskMemo, apperr.MsgTaskMemoTooLong,
			fmt.Sprintf("Task memo must be %d characters or less, got %d", constants.MaxTaskMemoLen, n))
	}
	return nil
}

// CheckCompletion parses completedAt (RFC 3339). A completion time is only
// accepted on a completed task.
func CheckCompletion(isCompleted bool, completedAt *string) (*time.Time, *apperr.AppError) {
	if completedAt == nil {
		return nil, nil
	}
	if !isCompleted {
		return nil, apperr.Validation(FieldCompletedAt, apperr.MsgInvalidCompletion, "completedAt given for a task that is not completed")
	}
	t, err := time.Parse(time.RFC3339Nano, *completedAt)
	if err != nil {
		return nil, apperr.Validation(FieldCompletedAt, apperr.MsgInvalidCompletion, "Invalid completedAt: "+err.Error())
	}
	t = t.UTC()
	return &t, nil
}
