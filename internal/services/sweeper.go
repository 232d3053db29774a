package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/sustaingain/backend/usecase/tasks"
)

// SweeperConfig carries the cron specs for the scheduled lifecycle jobs.
type SweeperConfig struct {
	AgingSpec      string
	BombSpec       string
	AssignmentSpec string
	JobTimeout     time.Duration
}

// Sweeper schedules the idempotent lifecycle jobs: aging of pending
// instances, bomb explosions and the daily task assignment.
type Sweeper struct {
	lifecycle *tasks.UseCase
	logger    *zap.Logger
	cron      *cron.Cron
	cfg       SweeperConfig
}

func NewSweeper(lifecycle *tasks.UseCase, logger *zap.Logger, cfg SweeperConfig) (*Sweeper, error) {
	if cfg.AgingSpec == "" {
		cfg.AgingSpec = "@hourly"
	}
	if cfg.BombSpec == "" {
		cfg.BombSpec = "@every 1m"
	}
	if cfg.AssignmentSpec == "" {
		cfg.AssignmentSpec = "@daily"
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Sweeper{
		lifecycle: lifecycle,
		logger:    logger,
		cfg:       cfg,
		cron:      cron.New(),
	}

	jobs := []struct {
		name string
		spec string
		run  func(context.Context) (int, error)
	}{
		{"aging", cfg.AgingSpec, lifecycle.RunAgingSweep},
		{"bombs", cfg.BombSpec, lifecycle.RunBombSweep},
		{"assignment", cfg.AssignmentSpec, lifecycle.RunAssignmentSweep},
	}
	for _, job := range jobs {
		job := job
		if _, err := s.cron.AddFunc(job.spec, func() { s.runJob(job.name, job.run) }); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Sweeper) runJob(name string, run func(context.Context) (int, error)) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
	defer cancel()

	affected, err := run(ctx)
	if err != nil {
		s.logger.Error("sweep failed", zap.String("sweep", name), zap.Error(err))
		return
	}
	s.logger.Debug("sweep finished", zap.String("sweep", name), zap.Int("affected", affected))
}

// Start launches the cron scheduler.
func (s *Sweeper) Start() {
	if s == nil || s.cron == nil {
		return
	}
	s.cron.Start()
	s.logger.Info("sweeper started",
		zap.String("aging", s.cfg.AgingSpec),
		zap.String("bombs", s.cfg.BombSpec),
		zap.String("assignment", s.cfg.AssignmentSpec))
}

// Stop gracefully stops the scheduler.
func (s *Sweeper) Stop(ctx context.Context) {
	if s == nil || s.cron == nil {
		return
	}
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	s.logger.Info("sweeper stopped")
}
