package report

import (
	"context"
	"time"

	"fireview/internal/cache"
	"fireview/internal/core"
)

// WindowFunc resolves the reporting window relative to a point in time.
// Config supplies it so a rolling window keeps tracking "today".
type WindowFunc func(now time.Time) (core.Window, error)

// Service is the cache-fronted entry point the HTTP layer and the refresh
// scheduler call: resolve the window, serve from cache while fresh, run the
// orchestrator otherwise.
type Service struct {
	orch   *Orchestrator
	cache  *cache.Store[*core.Report]
	window WindowFunc
	now    func() time.Time
}

func NewService(orch *Orchestrator, store *cache.Store[*core.Report], window WindowFunc) *Service {
	return &Service{
		orch:   orch,
		cache:  store,
		window: window,
		now:    time.Now,
	}
}

// Report returns the aggregate for the configured window, computing it at
// most once per cache lifetime. force bypasses the freshness check. Errors
// from the fetch pipeline propagate unchanged; the cache never substitutes
// an empty result for a failure.
func (s *Service) Report(ctx context.Context, force bool) (*core.Report, error) {
	window, err := s.window(s.now())
	if err != nil {
		return nil, err
	}
	return s.cache.GetOrCompute(ctx, window.Key(), force, func(ctx context.Context) (*core.Report, error) {
		return s.orch.Run(ctx, window)
	})
}
