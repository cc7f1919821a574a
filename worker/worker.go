package worker

import "context"

// Worker is a long-running background task driven by the service.
type Worker interface {
	// Start runs the worker until ctx is cancelled.
	Start(ctx context.Context) error
}
