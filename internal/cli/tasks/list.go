package tasks

import (
	"fmt"

	"github.com/julianstephens/mindtrack/internal/cli"
)

type TaskListCmd struct {
	Checkin string `short:"c" help:"Only tasks attached to this check-in ID."`
}

func (c *TaskListCmd) Run(ctx *cli.Context) error {
	tasks, err := ctx.Tasks.ListMicroTasks(ctx.Ctx, c.Checkin)
	if err != nil {
		return err
	}

	if len(tasks) == 0 {
		fmt.Fprintln(ctx.Out, "No micro-tasks found.")
		return nil
	}

	for i := range tasks {
		cli.PrintMicroTask(ctx.Out, &tasks[i])
	}
	return nil
}
