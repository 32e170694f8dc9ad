package main

import (
	"context"

	"github.com/samber/mo"
	"go.uber.org/zap"

	"github.com/lifeops/scheduler/internal/adapter"
	"github.com/lifeops/scheduler/internal/adapter/cronbeat"
	"github.com/lifeops/scheduler/internal/api"
	"github.com/lifeops/scheduler/internal/biz/schedule"
	"github.com/lifeops/scheduler/internal/reviewjob"
)

// App bundles the long-lived components main starts and stops.
type App struct {
	server    *api.Server
	provider  *cronbeat.Provider
	schedules schedule.Repo
	reviewJob *reviewjob.Job
	logger    *zap.Logger
}

func NewApp(
	server *api.Server,
	provider *cronbeat.Provider,
	schedules schedule.Repo,
	reviewJob *reviewjob.Job,
	logger *zap.Logger,
) *App {
	return &App{
		server:    server,
		provider:  provider,
		schedules: schedules,
		reviewJob: reviewJob,
		logger:    logger,
	}
}

// Start arms the cron beat and re-registers the surviving schedules, so a
// restart picks up where the previous process left off.
func (a *App) Start(ctx context.Context) error {
	a.provider.Start()
	return a.resyncProvider(ctx)
}

func (a *App) Stop() {
	a.provider.Stop()
}

func (a *App) resyncProvider(ctx context.Context) error {
	if err := a.registerByState(ctx, schedule.StateActive, false); err != nil {
		return err
	}
	return a.registerByState(ctx, schedule.StatePaused, true)
}

func (a *App) registerByState(ctx context.Context, state schedule.State, paused bool) error {
	const pageSize = 200
	for offset := 0; ; offset += pageSize {
		page, _, err := a.schedules.List(ctx,
			&schedule.Filter{State: mo.Some(state)}, offset, pageSize)
		if err != nil {
			return err
		}
		for _, s := range page {
			if err := a.provider.RegisterSchedule(ctx, adapter.FromSchedule(s)); err != nil {
				a.logger.Warn("failed to re-register schedule",
					zap.Uint64("schedule_id", s.ID),
					zap.Error(err))
				continue
			}
			if paused {
				if err := a.provider.PauseSchedule(ctx, s.ID); err != nil {
					a.logger.Warn("failed to re-pause schedule",
						zap.Uint64("schedule_id", s.ID),
						zap.Error(err))
				}
			}
		}
		if len(page) < pageSize {
			return nil
		}
	}
}
