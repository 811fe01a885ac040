package checkins

import (
	"fmt"

	"github.com/julianstephens/mindtrack/internal/cli"
	"github.com/julianstephens/mindtrack/internal/models"
	"github.com/julianstephens/mindtrack/internal/utils"
)

type CheckinRecordCmd struct {
	Mood int      `short:"m" help:"Mood level (1-5)." required:""`
	Date string   `short:"d" help:"Date (YYYY-MM-DD). Defaults to today (UTC)."`
	Note string   `short:"n" help:"Free-text mood note."`
	Tag  []string `short:"t" help:"Physical state tag. Repeat for several." sep:"none"`
	Todo []string `help:"Something you feel you should do. Repeat for several." sep:"none"`
}

func (c *CheckinRecordCmd) Run(ctx *cli.Context) error {
	date := c.Date
	if date == "" {
		date = utils.FormatDate(ctx.App.Now())
	}

	payload := models.CreateCheckinPayload{
		Date:              date,
		MoodLevel:         c.Mood,
		PhysicalStateTags: c.Tag,
		PotentialTodos:    c.Todo,
	}
	if c.Note != "" {
		payload.MoodText = &c.Note
	}

	resp, err := ctx.Checkins.RecordCheckin(ctx.Ctx, payload)
	if err != nil {
		return err
	}

	fmt.Fprintln(ctx.Out, "Recorded check-in:")
	cli.PrintCheckin(ctx.Out, resp)
	return nil
}
