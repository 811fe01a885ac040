package commands

import (
	"context"
	"encoding/json"

	"github.com/julianstephens/mindtrack/internal/models"
	"github.com/julianstephens/mindtrack/internal/service"
)

// Command names understood by the shell
const (
	RecordDailyCheckin    = "record_daily_checkin"
	GetDailyCheckinByDate = "get_daily_checkin_by_date"
	GetDailyCheckin       = "get_daily_checkin"
	ListDailyCheckins     = "list_daily_checkins"
	DeleteDailyCheckin    = "delete_daily_checkin"
	CreateMicroTask       = "create_micro_task"
	ListMicroTasks        = "list_micro_tasks"
	CompleteMicroTask     = "complete_micro_task"
	DeleteMicroTask       = "delete_micro_task"
)

type dateArgs struct {
	Date string `json:"date"`
}

type idArgs struct {
	ID string `json:"id"`
}

type rangeArgs struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type checkinRefArgs struct {
	CheckinID string `json:"checkinId"`
}

// New returns a registry with every service command registered.
func New(checkins *service.CheckinService, tasks *service.MicroTaskService) *Registry {
	r := NewRegistry()

	r.Register(RecordDailyCheckin, func(ctx context.Context, raw json.RawMessage) (any, error) {
		p, err := decodeArgs[models.CreateCheckinPayload](raw)
		if err != nil {
			return nil, err
		}
		return checkins.RecordCheckin(ctx, p)
	})

	r.Register(GetDailyCheckinByDate, func(ctx context.Context, raw json.RawMessage) (any, error) {
		a, err := decodeArgs[dateArgs](raw)
		if err != nil {
			return nil, err
		}
		resp, err := checkins.GetCheckinByDate(ctx, a.Date)
		if err != nil || resp == nil {
			// untyped nil so the envelope carries "data":null
			return nil, err
		}
		return resp, nil
	})

	r.Register(GetDailyCheckin, func(ctx context.Context, raw json.RawMessage) (any, error) {
		a, err := decodeArgs[idArgs](raw)
		if err != nil {
			return nil, err
		}
		return checkins.GetCheckin(ctx, a.ID)
	})

	r.Register(ListDailyCheckins, func(ctx context.Context, raw json.RawMessage) (any, error) {
		a, err := decodeArgs[rangeArgs](raw)
		if err != nil {
			return nil, err
		}
		return checkins.ListCheckins(ctx, a.From, a.To)
	})

	r.Register(DeleteDailyCheckin, func(ctx context.Context, raw json.RawMessage) (any, error) {
		a, err := decodeArgs[idArgs](raw)
		if err != nil {
			return nil, err
		}
		return checkins.DeleteCheckin(ctx, a.ID)
	})

	r.Register(CreateMicroTask, func(ctx context.Context, raw json.RawMessage) (any, error) {
		p, err := decodeArgs[models.CreateMicroTaskPayload](raw)
		if err != nil {
			return nil, err
		}
		return tasks.CreateMicroTask(ctx, p)
	})

	r.Register(ListMicroTasks, func(ctx context.Context, raw json.RawMessage) (any, error) {
		a, err := decodeArgs[checkinRefArgs](raw)
		if err != nil {
			return nil, err
		}
		return tasks.ListMicroTasks(ctx, a.CheckinID)
	})

	r.Register(CompleteMicroTask, func(ctx context.Context, raw json.RawMessage) (any, error) {
		a, err := decodeArgs[idArgs](raw)
		if err != nil {
			return nil, err
		}
		return tasks.CompleteMicroTask(ctx, a.ID)
	})

	r.Register(DeleteMicroTask, func(ctx context.Context, raw json.RawMessage) (any, error) {
		a, err := decodeArgs[idArgs](raw)
		if err != nil {
			return nil, err
		}
		return nil, tasks.DeleteMicroTask(ctx, a.ID)
	})

	return r
}
