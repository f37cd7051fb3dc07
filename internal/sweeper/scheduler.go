package sweeper

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Scheduler struct {
	cron    *cron.Cron
	sweeper *Sweeper
	log     *zap.Logger
}

func NewScheduler(sweeper *Sweeper, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{cron: cron.New(cron.WithSeconds()), sweeper: sweeper, log: log}
}

// Start schedules the sweep at spec (six fields, seconds first) and starts
// the cron loop.
func (s *Scheduler) Start(spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		if _, err := s.sweeper.Run(context.Background(), false); err != nil {
			s.log.Error("blob sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to create sweep job: %w", err)
	}

	s.log.Info("sweep scheduler started", zap.String("schedule", spec))
	s.cron.Start()
	return nil
}

// Stop stops scheduling; the returned context is done once a running sweep ends.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
