package service

import (
	"github.com/julianstephens/mindtrack/internal/codec"
	"github.com/julianstephens/mindtrack/internal/logger"
	"github.com/julianstephens/mindtrack/internal/models"
	"github.com/julianstephens/mindtrack/internal/utils"
)

// ToCheckinResponse maps a stored check-in to its caller-facing shape.
// Empty text becomes absent. A list that fails to decode is reported as
// absent and logged; it never fails the read.
func ToCheckinResponse(c models.CheckIn) models.CheckinResponse {
	return models.CheckinResponse{
		ExternalID:        c.UUID,
		Date:              c.Date,
		MoodLevel:         c.MoodLevel,
		MoodText:          optionalText(c.MoodText),
		PhysicalStateTags: decodeList(c.UUID, "physical_state_tags", c.PhysicalStateTags),
		PotentialTodos:    decodeList(c.UUID, "potential_todos", c.PotentialTodos),
		CreatedAt:         utils.FormatTimestamp(c.CreatedAt),
		UpdatedAt:         utils.FormatTimestamp(c.UpdatedAt),
	}
}

// ToMicroTaskResponse maps a stored micro-task to its caller-facing shape.
func ToMicroTaskResponse(t models.MicroTask) models.MicroTaskResponse {
	resp := models.MicroTaskResponse{
		ExternalID:      t.UUID,
		CheckinID:       optionalText(t.CheckinUUID),
		TaskDescription: t.TaskDescription,
		TaskMemo:        optionalText(t.TaskMemo),
		IsCompleted:     t.IsCompleted,
		SortOrder:       t.SortOrder,
		CreatedAt:       utils.FormatTimestamp(t.CreatedAt),
		UpdatedAt:       utils.FormatTimestamp(t.UpdatedAt),
	}
	if t.CompletedAt != nil {
		completedAt := utils.FormatTimestamp(*t.CompletedAt)
		resp.CompletedAt = &completedAt
	}
	return resp
}

func optionalText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func decodeList(id, column, stored string) []string {
	items, malformed := codec.DecodeListLenient(stored)
	if malformed {
		logger.Warn("Ignoring malformed list column", "id", id, "column", column)
	}
	return items
}
