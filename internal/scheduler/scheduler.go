// Package scheduler triggers trading cycles on a cron schedule, so the
// engine can run unattended during market hours without an external
// invoker.
package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/indexflow/trading-engine/pkg/types"
)

// Runner is the engine surface the scheduler needs.
type Runner interface {
	RunCycle(ctx context.Context, trigger types.TriggerRequest) types.CycleResult
}

// Scheduler fires scheduled trading cycles. The calendar gate inside
// the engine still decides whether a fired cycle actually trades, so an
// over-broad cron spec only produces skipped cycles, never off-hours
// trades.
type Scheduler struct {
	logger *zap.Logger
	cron   *cron.Cron
	runner Runner
	spec   string
}

// New creates a scheduler running trading cycles on the given cron
// spec (standard five-field syntax).
func New(logger *zap.Logger, spec string, runner Runner) *Scheduler {
	return &Scheduler{
		logger: logger.Named("scheduler"),
		cron:   cron.New(),
		runner: runner,
		spec:   spec,
	}
}

// Start registers the cycle job and starts the cron loop. It fails only
// on an unparsable spec.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.logger.Info("Scheduled cycle firing", zap.String("spec", s.spec))
		result := s.runner.RunCycle(context.Background(), types.TriggerRequest{
			Action: types.ActionTrading,
		})
		s.logger.Info("Scheduled cycle finished",
			zap.String("executionId", result.ExecutionID),
			zap.String("status", string(result.Status)),
		)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("Scheduler started", zap.String("spec", s.spec))
	return nil
}

// Stop stops the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Scheduler stopped")
}
