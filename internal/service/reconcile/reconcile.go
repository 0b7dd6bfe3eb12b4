package reconcile

import (
	"context"
	"time"

	"github.com/prolock/prolock-controller/internal/domain/access"
	"github.com/prolock/prolock-controller/internal/logger"
)

// DefaultInterval is the fixed delay between remote status polls.
const DefaultInterval = 10 * time.Second

// StatusSource reports the most recent remote lock status.
type StatusSource interface {
	LatestStatus(ctx context.Context) (access.RemoteStatus, error)
}

// Door applies a remote status to the physical lock.
type Door interface {
	Reconcile(ctx context.Context, status access.RemoteStatus)
}

// Reconciler polls the backend and pushes each status to the door.
type Reconciler struct {
	// source reports the remote status.
	source StatusSource
	// door applies the status.
	door Door
	// interval is the polling period.
	interval time.Duration
}

// New creates a reconciler. A non-positive interval falls back to
// DefaultInterval.
func New(source StatusSource, door Door, interval time.Duration) *Reconciler {
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Reconciler{
		source:   source,
		door:     door,
		interval: interval,
	}
}

// Run polls until the context is canceled. Poll failures are logged and the
// previous lock position is kept; the next tick retries.
func (r *Reconciler) Run(ctx context.Context) error {
	ctx = logger.WithName(ctx, "reconcile")

	logger.InfoKV(ctx, "Polling remote lock status", "interval", r.interval.String())

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Context canceled, exiting")
			return nil
		case <-ticker.C:
			r.step(ctx)
		}
	}
}

// step performs one poll and reconciliation.
func (r *Reconciler) step(ctx context.Context) {
	status, err := r.source.LatestStatus(ctx)
	if err != nil {
		logger.ErrorKV(ctx, "Remote status unavailable, keeping current position", "error", err)

		return
	}

	r.door.Reconcile(ctx, status)
}
