package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"fireview/internal/core"
)

type fakeRefresher struct {
	calls  int32
	forced int32
	err    error
}

func (f *fakeRefresher) Report(ctx context.Context, force bool) (*core.Report, error) {
	atomic.AddInt32(&f.calls, 1)
	if force {
		atomic.AddInt32(&f.forced, 1)
	}
	if f.err != nil {
		return nil, f.err
	}
	w, err := core.NewWindow(
		time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC),
	)
	if err != nil {
		return nil, err
	}
	return &core.Report{Window: w}, nil
}

func TestRegisterRejectsBadSpec(t *testing.T) {
	s := New(&fakeRefresher{})
	if err := s.Register("not a cron expression"); err == nil {
		t.Error("expected error for invalid cron spec")
	}
	if err := s.Register("*/10 * * * *"); err != nil {
		t.Errorf("valid spec rejected: %v", err)
	}
}

func TestRefreshForcesRecompute(t *testing.T) {
	r := &fakeRefresher{}
	s := New(r)

	s.refresh()

	if got := atomic.LoadInt32(&r.calls); got != 1 {
		t.Fatalf("refresher called %d times, want 1", got)
	}
	if got := atomic.LoadInt32(&r.forced); got != 1 {
		t.Errorf("forced calls = %d, want 1 (scheduler must bypass freshness)", got)
	}
}

func TestRefreshSwallowsErrors(t *testing.T) {
	r := &fakeRefresher{err: errors.New("upstream down")}
	s := New(r)

	// Must not panic; the next scheduled run should still happen.
	s.refresh()
	s.refresh()

	if got := atomic.LoadInt32(&r.calls); got != 2 {
		t.Errorf("refresher called %d times, want 2", got)
	}
}

func TestStartStop(t *testing.T) {
	s := New(&fakeRefresher{})
	if err := s.Register("@every 1h"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	s.Start()
	s.Stop()
}
