package worker

import (
	"context"
	"sync"
)

// Manager starts and supervises a set of workers until shutdown.
type Manager struct {
	workers []Worker
}

// NewManager wraps the given workers for supervised startup.
func NewManager(ws ...Worker) *Manager {
	return &Manager{workers: ws}
}

// Start launches every worker and blocks until ctx is cancelled and all
// workers have exited. The first worker error, if any, is returned.
func (m *Manager) Start(ctx context.Context) error {
	var wg sync.WaitGroup
	errs := make(chan error, len(m.workers))
	for _, w := range m.workers {
		wg.Add(1)
		go func(w Worker) {
			defer wg.Done()
			if err := w.Start(ctx); err != nil {
				errs <- err
			}
		}(w)
	}
	<-ctx.Done()
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
