package tasks

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/matinee/matinee/internal/flow"
	"github.com/matinee/matinee/internal/scheduler"
)

// PicksRefreshTask reloads the weekly picks list from the catalog.
type PicksRefreshTask struct {
	flowService *flow.Service
	logger      zerolog.Logger
}

// NewPicksRefreshTask creates a new picks refresh task.
func NewPicksRefreshTask(flowService *flow.Service, logger zerolog.Logger) *PicksRefreshTask {
	return &PicksRefreshTask{
		flowService: flowService,
		logger:      logger.With().Str("task", "picks-refresh").Logger(),
	}
}

// Run fetches a fresh picks list and reseeds the metadata cache with it.
func (t *PicksRefreshTask) Run(ctx context.Context) error {
	t.logger.Info().Msg("Starting weekly picks refresh")

	count, err := t.flowService.RefreshPicks(ctx)
	if err != nil {
		t.logger.Error().Err(err).Msg("Weekly picks refresh failed")
		return err
	}

	t.logger.Info().Int("count", count).Msg("Weekly picks refresh completed")
	return nil
}

// RegisterPicksRefreshTask registers the picks refresh task with the scheduler.
func RegisterPicksRefreshTask(sched *scheduler.Scheduler, flowService *flow.Service, logger zerolog.Logger) error {
	task := NewPicksRefreshTask(flowService, logger)

	return sched.RegisterTask(scheduler.TaskConfig{
		ID:          "picks-refresh",
		Name:        "Weekly Picks Refresh",
		Description: "Reloads the weekly picks list from the catalog",
		Cron:        "0 6 * * 1", // 6 AM Monday
		RunOnStart:  true,
		Func:        task.Run,
	})
}
