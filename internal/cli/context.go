package cli

import (
	"context"
	"io"

	"github.com/julianstephens/mindtrack/internal/app"
	"github.com/julianstephens/mindtrack/internal/commands"
	"github.com/julianstephens/mindtrack/internal/config"
	"github.com/julianstephens/mindtrack/internal/service"
	"github.com/julianstephens/mindtrack/internal/storage/sqlite"
)

// Context is passed to every kong command's Run method.
type Context struct {
	Ctx      context.Context
	Config   *config.Config
	Store    *sqlite.Store
	App      *app.Context
	Checkins *service.CheckinService
	Tasks    *service.MicroTaskService
	Commands *commands.Registry
	Stdin    io.Reader
	Out      io.Writer
}

// NewContext wires the services over store.
func NewContext(ctx context.Context, cfg *config.Config, store *sqlite.Store, stdin io.Reader, out io.Writer) *Context {
	a := app.New(store)
	checkins := service.NewCheckinService(a)
	tasks := service.NewMicroTaskService(a)

	return &Context{
		Ctx:      ctx,
		Config:   cfg,
		Store:    store,
		App:      a,
		Checkins: checkins,
		Tasks:    tasks,
		Commands: commands.New(checkins, tasks),
		Stdin:    stdin,
		Out:      out,
	}
}
