package models

import "time"

// CheckIn is a stored daily check-in row.
//
// ID is the engine-assigned key and never leaves the storage and service
// layers; UUID is the external identity. Text fields use "" for absent and
// list fields hold the codec encoding.
type CheckIn struct {
	ID                int64
	UUID              string
	Date              string // YYYY-MM-DD
	MoodLevel         int
	MoodText          string
	PhysicalStateTags string
	PhysicalStateText string
	PotentialTodos    string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DeletedAt         *time.Time
}

// IsLive reports whether the row has not been soft-deleted.
func (c *CheckIn) IsLive() bool {
	return c.DeletedAt == nil
}

// CreateCheckinPayload is the caller input for recording a check-in.
// Nil list fields and a nil MoodText mean "not provided".
type CreateCheckinPayload struct {
	Date              string   `json:"date"`
	MoodLevel         int      `json:"moodLevel"`
	MoodText          *string  `json:"moodText,omitempty"`
	PhysicalStateTags []string `json:"physicalStateTags,omitempty"`
	PotentialTodos    []string `json:"potentialTodos,omitempty"`
}

// CheckinResponse is the caller-facing shape of a check-in.
type CheckinResponse struct {
	ExternalID        string   `json:"externalId"`
	Date              string   `json:"date"`
	MoodLevel         int      `json:"moodLevel"`
	MoodText          *string  `json:"moodText,omitempty"`
	PhysicalStateTags []string `json:"physicalStateTags,omitempty"`
	PotentialTodos    []string `json:"potentialTodos,omitempty"`
	CreatedAt         string   `json:"createdAt"`
	UpdatedAt         string   `json:"updatedAt"`
}

// DeleteResult reports what a soft delete touched.
type DeleteResult struct {
	CheckinID  string `json:"checkinId"`
	MicroTasks int64  `json:"microTasks"`
}

// PurgeResult reports rows physically removed by an administrative purge.
type PurgeResult struct {
	Checkins   int64 `json:"checkins"`
	MicroTasks int64 `json:"microTasks"`
}
