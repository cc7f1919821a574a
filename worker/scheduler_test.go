package worker

import (
	"context"
	"testing"
	"time"

	"smi-los/internal/config"
)

func TestNextFire(t *testing.T) {
	at := config.ClockTime{Hour: 9, Minute: 30}
	tests := []struct {
		name  string
		after time.Time
		want  time.Time
	}{
		{
			"before trigger fires today",
			time.Date(2026, 8, 29, 8, 0, 0, 0, time.UTC),
			time.Date(2026, 8, 29, 9, 30, 0, 0, time.UTC),
		},
		{
			"after trigger fires tomorrow",
			time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC),
			time.Date(2026, 8, 30, 9, 30, 0, 0, time.UTC),
		},
		{
			"exactly at trigger fires tomorrow",
			time.Date(2026, 8, 29, 9, 30, 0, 0, time.UTC),
			time.Date(2026, 8, 30, 9, 30, 0, 0, time.UTC),
		},
		{
			"month boundary",
			time.Date(2026, 8, 31, 23, 0, 0, 0, time.UTC),
			time.Date(2026, 9, 1, 9, 30, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nextFire(tt.after, at); !got.Equal(tt.want) {
				t.Errorf("nextFire(%v) = %v, want %v", tt.after, got, tt.want)
			}
		})
	}
}

func TestSchedulerTick(t *testing.T) {
	now := time.Date(2026, 8, 29, 8, 0, 0, 0, time.UTC)
	var fired []string
	s := &Scheduler{
		Jobs: []Job{
			{Name: "search", At: config.ClockTime{Hour: 9, Minute: 0}, Run: func(ctx context.Context) error {
				fired = append(fired, "search")
				return nil
			}},
			{Name: "blog", At: config.ClockTime{Hour: 10, Minute: 0}, Run: func(ctx context.Context) error {
				fired = append(fired, "blog")
				return nil
			}},
		},
		now: func() time.Time { return now },
	}
	s.init()
	ctx := context.Background()

	// Before any trigger: nothing fires.
	s.tick(ctx)
	if len(fired) != 0 {
		t.Fatalf("fired = %v, want none before trigger times", fired)
	}

	// Past the first trigger only.
	now = time.Date(2026, 8, 29, 9, 0, 30, 0, time.UTC)
	s.tick(ctx)
	if len(fired) != 1 || fired[0] != "search" {
		t.Fatalf("fired = %v, want [search]", fired)
	}

	// Same poll window again: no double fire.
	s.tick(ctx)
	if len(fired) != 1 {
		t.Fatalf("fired = %v, job re-fired inside the same day", fired)
	}

	// Past the second trigger.
	now = time.Date(2026, 8, 29, 10, 0, 30, 0, time.UTC)
	s.tick(ctx)
	if len(fired) != 2 || fired[1] != "blog" {
		t.Fatalf("fired = %v, want [search blog]", fired)
	}

	// Next day: both fire again.
	now = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	s.tick(ctx)
	if len(fired) != 4 {
		t.Fatalf("fired = %v, want both jobs fired again next day", fired)
	}
}

func TestSchedulerInit_NoStartupBackfire(t *testing.T) {
	// Started after today's trigger time: the job waits for tomorrow.
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	fired := 0
	s := &Scheduler{
		Jobs: []Job{
			{Name: "search", At: config.ClockTime{Hour: 9, Minute: 0}, Run: func(ctx context.Context) error {
				fired++
				return nil
			}},
		},
		now: func() time.Time { return now },
	}
	s.init()
	s.tick(context.Background())
	if fired != 0 {
		t.Fatalf("job back-fired at startup")
	}

	now = time.Date(2026, 8, 30, 9, 0, 30, 0, time.UTC)
	s.tick(context.Background())
	if fired != 1 {
		t.Fatalf("fired = %d, want 1 next day", fired)
	}
}
