// Package scheduler keeps the dashboard cache warm by forcing a refresh on
// a cron schedule, so the first page view after TTL expiry does not pay the
// full fetch latency.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"fireview/internal/core"
)

// Refresher is the slice of the report service the scheduler needs.
type Refresher interface {
	Report(ctx context.Context, force bool) (*core.Report, error)
}

type Scheduler struct {
	cron      *cron.Cron
	refresher Refresher
	timeout   time.Duration
}

func New(refresher Refresher) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		refresher: refresher,
		timeout:   2 * time.Minute,
	}
}

// Register adds the refresh task under the given cron expression.
func (s *Scheduler) Register(spec string) error {
	_, err := s.cron.AddFunc(spec, s.refresh)
	return err
}

func (s *Scheduler) Start() {
	s.cron.Start()
	slog.Info("Refresh scheduler started")
}

// Stop stops the scheduler and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	slog.Info("Refresh scheduler stopped")
}

func (s *Scheduler) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	rep, err := s.refresher.Report(ctx, true)
	if err != nil {
		slog.ErrorContext(ctx, "Scheduled refresh failed", "error", err)
		return
	}
	slog.InfoContext(ctx, "Scheduled refresh completed",
		"window", rep.Window.Key(),
		"months", len(rep.Months),
		"duration_ms", time.Since(start).Milliseconds())
}
