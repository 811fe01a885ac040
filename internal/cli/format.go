package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/julianstephens/mindtrack/internal/models"
)

// PrintCheckin writes a human-readable check-in summary.
func PrintCheckin(w io.Writer, c *models.CheckinResponse) {
	fmt.Fprintf(w, "%s  mood %d/5  [%s]\n", c.Date, c.MoodLevel, c.ExternalID)
	if c.MoodText != nil {
		fmt.Fprintf(w, "  note:  %s\n", *c.MoodText)
	}
	if len(c.PhysicalStateTags) > 0 {
		fmt.Fprintf(w, "  body:  %s\n", strings.Join(c.PhysicalStateTags, ", "))
	}
	if len(c.PotentialTodos) > 0 {
		fmt.Fprintf(w, "  todos: %s\n", strings.Join(c.PotentialTodos, "; "))
	}
}

// PrintMicroTask writes a one-line micro-task summary.
func PrintMicroTask(w io.Writer, t *models.MicroTaskResponse) {
	mark := " "
	if t.IsCompleted {
		mark = "x"
	}
	fmt.Fprintf(w, "[%s] %s  (%s)\n", mark, t.TaskDescription, t.ExternalID)
	if t.TaskMemo != nil {
		fmt.Fprintf(w, "      %s\n", *t.TaskMemo)
	}
}
