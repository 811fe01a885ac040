package system

import (
	"fmt"

	"github.com/julianstephens/mindtrack/internal/cli"
)

type ConfigCmd struct {
	Show ConfigShowCmd `cmd:"" help:"Print the effective configuration as YAML." default:"1"`
}

type ConfigShowCmd struct{}

func (c *ConfigShowCmd) Run(ctx *cli.Context) error {
	out, err := ctx.Config.YAML()
	if err != nil {
		return err
	}
	fmt.Fprint(ctx.Out, out)
	return nil
}
