package tasks

import (
	"fmt"

	"github.com/julianstephens/mindtrack/internal/cli"
)

type TaskDoneCmd struct {
	ID string `arg:"" help:"Micro-task ID to complete."`
}

func (c *TaskDoneCmd) Run(ctx *cli.Context) error {
	resp, err := ctx.Tasks.CompleteMicroTask(ctx.Ctx, c.ID)
	if err != nil {
		return err
	}

	fmt.Fprint(ctx.Out, "Completed: ")
	cli.PrintMicroTask(ctx.Out, resp)
	return nil
}

type TaskDeleteCmd struct {
	ID string `arg:"" help:"Micro-task ID to delete."`
}

func (c *TaskDeleteCmd) Run(ctx *cli.Context) error {
	if err := ctx.Tasks.DeleteMicroTask(ctx.Ctx, c.ID); err != nil {
		return err
	}

	fmt.Fprintf(ctx.Out, "Deleted micro-task: %s\n", c.ID)
	return nil
}
