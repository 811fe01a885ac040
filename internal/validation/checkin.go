package validation

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/julianstephens/mindtrack/internal/apperr"
	"github.com/julianstephens/mindtrack/internal/constants"
	"github.com/julianstephens/mindtrack/internal/models"
	"github.com/julianstephens/mindtrack/internal/utils"
)

// Field names reported on check-in validation errors
const (
	FieldDate              = "date"
	FieldMoodLevel         = "moodLevel"
	FieldMoodText          = "moodText"
	FieldPhysicalStateTags = "physicalStateTags"
	FieldPotentialTodos    = "potentialTodos"
	FieldFrom              = "from"
	FieldTo                = "to"
)

// CheckinRule is a single independently testable check-in predicate.
type CheckinRule func(p models.CreateCheckinPayload, now time.Time) *apperr.AppError

// CheckinRules are evaluated in order; the first violation is reported.
var CheckinRules = []CheckinRule{
	func(p models.CreateCheckinPayload, _ time.Time) *apperr.AppError { return CheckMoodLevel(p.MoodLevel) },
	func(p models.CreateCheckinPayload, now time.Time) *apperr.AppError { return CheckDate(p.Date, now) },
	func(p models.CreateCheckinPayload, _ time.Time) *apperr.AppError { return CheckMoodText(p.MoodText) },
	func(p models.CreateCheckinPayload, _ time.Time) *apperr.AppError {
		return CheckPhysicalStateTags(p.PhysicalStateTags)
	},
	func(p models.CreateCheckinPayload, _ time.Time) *apperr.AppError {
		return CheckPotentialTodos(p.PotentialTodos)
	},
}

// ValidateCheckinPayload runs every check-in rule and returns the first
// violation as a Validation AppError, or nil.
func ValidateCheckinPayload(p models.CreateCheckinPayload, now time.Time) error {
	for _, rule := range CheckinRules {
		if err := rule(p, now); err != nil {
			return err
		}
	}
	return nil
}

// CheckMoodLevel requires the mood level to be within 1..5.
func CheckMoodLevel(level int) *apperr.AppError {
	if level < constants.MoodLevelMin || level > constants.MoodLevelMax {
		return apperr.Validation(FieldMoodLevel, apperr.MsgMoodLevelRange,
			fmt.Sprintf("Mood level must be between %d and %d, got %d", constants.MoodLevelMin, constants.MoodLevelMax, level))
	}
	return nil
}

// ParseDateField parses a YYYY-MM-DD date, reporting failures on the date field.
func ParseDateField(date string) (time.Time, *apperr.AppError) {
	return parseDate(FieldDate, date)
}

// CheckDateBound validates an optional range bound. Empty means open.
func CheckDateBound(field, date string) *apperr.AppError {
	if date == "" {
		return nil
	}
	_, verr := parseDate(field, date)
	return verr
}

func parseDate(field, date string) (time.Time, *apperr.AppError) {
	d, err := utils.ParseDate(date)
	if err != nil {
		return time.Time{}, apperr.Validation(field, apperr.MsgInvalidDate, "Invalid date format: "+err.Error())
	}
	return d, nil
}

// CheckDate requires a valid calendar date that is not after today (UTC).
func CheckDate(date string, now time.Time) *apperr.AppError {
	d, verr := ParseDateField(date)
	if verr != nil {
		return verr
	}
	if utils.IsAfterToday(d, now) {
		return apperr.Validation(FieldDate, apperr.MsgFutureDate, "Cannot record checkin for future dates")
	}
	return nil
}

// CheckMoodText limits the optional mood note to 500 characters.
func CheckMoodText(text *string) *apperr.AppError {
	if text == nil {
		return nil
	}
	if n := utf8.RuneCountInString(*text); n > constants.MaxMoodTextLen {
		return apperr.Validation(FieldMoodText, apperr.MsgMoodTextTooLong,
			fmt.Sprintf("Mood text must be %d characters or less, got %d", constants.MaxMoodTextLen, n))
	}
	return nil
}

// CheckPhysicalStateTags allows at most 10 tags of at most 20 characters.
func CheckPhysicalStateTags(tags []string) *apperr.AppError {
	return checkList(tags, FieldPhysicalStateTags,
		constants.MaxPhysicalStateTags, apperr.MsgTooManyTags,
		constants.MaxPhysicalStateTagLen, apperr.MsgTagTooLong)
}

// CheckPotentialTodos allows at most 3 to-dos of at most 100 characters.
func CheckPotentialTodos(todos []string) *apperr.AppError {
	return checkList(todos, FieldPotentialTodos,
		constants.MaxPotentialTodos, apperr.MsgTooManyTodos,
		constants.MaxPotentialTodoLen, apperr.MsgTodoTooLong)
}

func checkList(items []string, field string, maxItems int, countKey apperr.MessageKey, maxLen int, lenKey apperr.MessageKey) *apperr.AppError {
	if items == nil {
		return nil
	}
	if len(items) > maxItems {
		return apperr.Validation(field, countKey,
			fmt.Sprintf("Maximum %d items allowed, got %d", maxItems, len(items)))
	}
	for i, item := range items {
		if n := utf8.RuneCountInString(item); n > maxLen {
			return apperr.Validation(field, lenKey,
				fmt.Sprintf("Item %d must be %d characters or less, got %d", i, maxLen, n))
		}
	}
	return nil
}
