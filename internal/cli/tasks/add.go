package tasks

import (
	"fmt"

	"github.com/julianstephens/mindtrack/internal/cli"
	"github.com/julianstephens/mindtrack/internal/models"
)

type TaskAddCmd struct {
	Description string `arg:"" help:"What to do."`
	Checkin     string `short:"c" help:"Attach to this check-in ID."`
	Memo        string `short:"m" help:"Longer memo."`
	Done        bool   `help:"Record the task as already completed."`
}

func (c *TaskAddCmd) Run(ctx *cli.Context) error {
	payload := models.CreateMicroTaskPayload{
		CheckinID:       c.Checkin,
		TaskDescription: c.Description,
		IsCompleted:     c.Done,
	}
	if c.Memo != "" {
		payload.TaskMemo = &c.Memo
	}

	resp, err := ctx.Tasks.CreateMicroTask(ctx.Ctx, payload)
	if err != nil {
		return err
	}

	fmt.Fprint(ctx.Out, "Added micro-task: ")
	cli.PrintMicroTask(ctx.Out, resp)
	return nil
}
