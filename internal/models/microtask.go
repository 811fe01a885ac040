package models

import "time"

// MicroTask is a stored micro-task row. CheckinUUID references the owning
// check-in by external identity; "" means the task is unattached.
type MicroTask struct {
	ID              int64
	UUID            string
	CheckinUUID     string
	TaskDescription string
	TaskMemo        string
	IsCompleted     bool
	CompletedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       *time.Time
	SortOrder       int
}

// IsLive reports whether the row has not been soft-deleted.
func (m *MicroTask) IsLive() bool {
	return m.DeletedAt == nil
}

// CreateMicroTaskPayload is the caller input for creating a micro-task.
type CreateMicroTaskPayload struct {
	CheckinID       string  `json:"checkinId,omitempty"`
	TaskDescription string  `json:"taskDescription"`
	TaskMemo        *string `json:"taskMemo,omitempty"`
	IsCompleted     bool    `json:"isCompleted,omitempty"`
	CompletedAt     *string `json:"completedAt,omitempty"`
}

// MicroTaskResponse is the caller-facing shape of a micro-task.
type MicroTaskResponse struct {
	ExternalID      string  `json:"externalId"`
	CheckinID       *string `json:"checkinId,omitempty"`
	TaskDescription string  `json:"taskDescription"`
	TaskMemo        *string `json:"taskMemo,omitempty"`
	IsCompleted     bool    `json:"isCompleted"`
	CompletedAt     *string `json:"completedAt,omitempty"`
	SortOrder       int     `json:"sortOrder"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}
