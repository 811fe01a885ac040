package apperr

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/mindtrack/internal/logger"
)

// Format formats an error message with a consistent "Error: " prefix.
// AppErrors show their user message; raw details stay in the log.
func Format(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		env := appErr.Envelope()
		if env.Field != "" {
			return fmt.Sprintf("Error: %s (%s)", env.Message, env.Field)
		}
		return fmt.Sprintf("Error: %s", env.Message)
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}
