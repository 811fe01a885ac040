// Package app holds the process-wide dependencies shared by every service.
package app

import (
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/mindtrack/internal/storage"
)

// Context is built once at startup and handed to each service. Now and
// NewID are injectable so tests can pin the clock and force ID failures.
type Context struct {
	Store storage.Provider
	Now   func() time.Time
	NewID func() (string, error)
}

// New returns a Context over store with the wall clock and random v4 UUIDs.
func New(store storage.Provider) *Context {
	return &Context{
		Store: store,
		Now:   func() time.Time { return time.Now().UTC() },
		NewID: NewUUID,
	}
}

// NewUUID returns a random (v4) UUID string.
func NewUUID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
