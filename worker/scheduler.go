package worker

import (
	"context"
	"log/slog"
	"time"

	"smi-los/internal/config"
)

// Job is one daily stage trigger.
type Job struct {
	Name string
	At   config.ClockTime
	Run  func(ctx context.Context) error
}

// Scheduler fires each job once per calendar day at its configured
// wall-clock time. It is a coarse poll-and-compare loop, not a precise
// timer: the next fire time per job is recomputed on every poll tick.
// Jobs run sequentially on the scheduler goroutine, so stages never overlap
// each other; a long-running stage delays later ticks but cannot corrupt
// state.
type Scheduler struct {
	Jobs []Job
	Poll time.Duration // poll granularity, default 30s

	now  func() time.Time // overridable in tests
	next map[string]time.Time
}

// Start runs the polling loop until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.Poll <= 0 {
		s.Poll = 30 * time.Second
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.init()

	for _, j := range s.Jobs {
		slog.Info("scheduler: job registered", "job", j.Name,
			"at", time.Date(0, 1, 1, j.At.Hour, j.At.Minute, 0, 0, time.UTC).Format("15:04"))
	}

	t := time.NewTicker(s.Poll)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			s.tick(ctx)
		}
	}
}

// init computes the first fire time per job. A trigger time already passed
// today schedules for tomorrow; startup never back-fires missed slots.
func (s *Scheduler) init() {
	s.next = make(map[string]time.Time, len(s.Jobs))
	now := s.now()
	for _, j := range s.Jobs {
		s.next[j.Name] = nextFire(now, j.At)
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	for i := range s.Jobs {
		if ctx.Err() != nil {
			return
		}
		j := &s.Jobs[i]
		now := s.now()
		if now.Before(s.next[j.Name]) {
			continue
		}
		s.next[j.Name] = nextFire(now, j.At)
		slog.Info("scheduler: firing job", "job", j.Name)
		if err := j.Run(ctx); err != nil {
			slog.Error("scheduler: job failed", "job", j.Name, "err", err)
		}
	}
}

// nextFire returns the first occurrence of the daily wall-clock time strictly
// after the given instant.
func nextFire(after time.Time, at config.ClockTime) time.Time {
	fire := time.Date(after.Year(), after.Month(), after.Day(), at.Hour, at.Minute, 0, 0, after.Location())
	if !fire.After(after) {
		fire = fire.AddDate(0, 0, 1)
	}
	return fire
}
