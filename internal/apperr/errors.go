package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
)

// AppError is the single error type returned by the service layer.
// Details and Err are kept for local diagnostics and are never serialized.
type AppError struct {
	Kind         Kind
	UserMessage  string
	Field        string
	ResourceType string
	ResourceID   string
	Details      string
	Err          error
}

func (e *AppError) Error() string {
	switch e.Kind {
	case KindValidation:
		return fmt.Sprintf("Validation Error on field '%s': %s", e.Field, e.Details)
	case KindNotFound:
		return fmt.Sprintf("Resource Not Found: Type='%s', ID='%s'. Details: %s", e.ResourceType, e.ResourceID, e.Details)
	}
	if e.Err != nil && e.Details == "" {
		return fmt.Sprintf("%s Error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s Error: %s", e.Kind, e.Details)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches on kind and field so callers can compare against a template
// such as &AppError{Kind: KindValidation, Field: "date"}.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Field == "" || t.Field == e.Field
}

// Envelope is the serialized form of an AppError.
type Envelope struct {
	Kind         Kind   `json:"kind"`
	Message      string `json:"message"`
	Field        string `json:"field,omitempty"`
	ResourceType string `json:"resourceType,omitempty"`
	ResourceID   string `json:"resourceId,omitempty"`
}

// Envelope returns the boundary-safe view of e.
func (e *AppError) Envelope() Envelope {
	env := Envelope{
		Kind:    e.Kind,
		Message: e.UserMessage,
	}
	switch e.Kind {
	case KindValidation:
		env.Field = e.Field
	case KindNotFound:
		env.ResourceType = e.ResourceType
		env.ResourceID = e.ResourceID
	}
	if env.Message == "" {
		env.Message = Message(MsgUnexpected)
	}
	return env
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Envelope())
}

// Validation creates a field-scoped validation error. details is for logs.
func Validation(field string, key MessageKey, details string) *AppError {
	return &AppError{
		Kind:        KindValidation,
		UserMessage: Message(key),
		Field:       field,
		Details:     details,
	}
}

// NotFound creates an identity lookup miss.
func NotFound(resourceType, resourceID, details string) *AppError {
	return &AppError{
		Kind:         KindNotFound,
		UserMessage:  Message(MsgNotFound, resourceType),
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      details,
	}
}

// Database wraps an engine failure.
func Database(err error) *AppError {
	return &AppError{
		Kind:        KindDatabase,
		UserMessage: Message(MsgDatabase),
		Details:     errString(err),
		Err:         err,
	}
}

// Io wraps a filesystem failure.
func Io(err error) *AppError {
	return &AppError{
		Kind:        KindIo,
		UserMessage: Message(MsgIo),
		Details:     errString(err),
		Err:         err,
	}
}

// IDGeneration wraps a failure to produce an external identifier.
func IDGeneration(err error) *AppError {
	return &AppError{
		Kind:        KindIDGeneration,
		UserMessage: Message(MsgIDGeneration),
		Details:     errString(err),
		Err:         err,
	}
}

// TimeUtils wraps a date/time parsing failure outside of input validation.
func TimeUtils(err error) *AppError {
	return &AppError{
		Kind:        KindTimeUtils,
		UserMessage: Message(MsgTimeUtils),
		Details:     errString(err),
		Err:         err,
	}
}

// Unexpected is the catch-all.
func Unexpected(details string, err error) *AppError {
	if details == "" {
		details = errString(err)
	}
	return &AppError{
		Kind:        KindUnexpected,
		UserMessage: Message(MsgUnexpected),
		Details:     details,
		Err:         err,
	}
}

// From converts any error into an AppError. An AppError anywhere in the
// chain is returned as is; everything else becomes Unexpected.
func From(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Unexpected("", err)
}

// KindOf returns the kind of err, or the empty kind for nil.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return From(err).Kind
}

// IsValidation reports whether err is a validation error on field.
// An empty field matches any field.
func IsValidation(err error, field string) bool {
	return errors.Is(err, &AppError{Kind: KindValidation, Field: field})
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
