// Package scheduler runs the pipeline on a cron schedule. Runs are expected
// not to overlap; the schedule spacing plus the store's uniqueness constraint
// cover the rare case where they do.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/futbot/futbot/internal/pipeline"
)

type Scheduler struct {
	cron     *cron.Cron
	pipeline *pipeline.Pipeline

	mu      sync.Mutex
	running bool
}

func New(spec string, p *pipeline.Pipeline) (*Scheduler, error) {
	c := cron.New()
	s := &Scheduler{cron: c, pipeline: p}

	if _, err := c.AddFunc(spec, s.runOnce); err != nil {
		return nil, err
	}
	return s, nil
}

// Start kicks off an immediate first run, then follows the cron schedule
// until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.runOnce()
	s.cron.Start()

	<-ctx.Done()
	slog.Info("scheduler stopping")
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
}

func (s *Scheduler) runOnce() {
	// Skip a tick instead of overlapping a still-running pipeline pass.
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		slog.Warn("previous run still in progress, skipping this tick")
		return
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	report, err := s.pipeline.Run(context.Background(), time.Now().UTC())
	if err != nil {
		slog.Error("scheduled run failed", "error", err)
		return
	}
	slog.Info("scheduled run finished",
		"status", report.Status,
		"fetched", report.Fetched,
		"published", report.Published)
}
