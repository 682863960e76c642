// Package recorder periodically stores the portfolio vs benchmark history point.
package recorder

import (
	"context"
	"time"

	"go.uber.org/zap"

	"folio/internal/logger"
	"folio/internal/services"
)

// RunResult contains the outcome of a recorder cycle.
type RunResult struct {
	Date      string
	Created   bool
	Complete  bool
	Persisted bool
	Duration  time.Duration
}

// Recorder records today's history point on a fixed interval.
type Recorder struct {
	history  services.HistoryServicer
	interval time.Duration
	log      *zap.SugaredLogger
}

// New creates a Recorder. A non-positive interval disables the loop.
func New(history services.HistoryServicer, interval time.Duration) *Recorder {
	return &Recorder{history: history, interval: interval, log: logger.Named("recorder")}
}

// Run executes a single cycle.
func (r *Recorder) Run(ctx context.Context) (*RunResult, error) {
	start := time.Now()

	res, err := r.history.Record(ctx, "")
	if err != nil {
		return nil, err
	}

	return &RunResult{
		Date:      res.Point.Date,
		Created:   res.Created,
		Complete:  res.Complete,
		Persisted: res.Persisted,
		Duration:  time.Since(start),
	}, nil
}

// Start runs one cycle immediately and then one per interval until ctx is
// done. A failed cycle is logged and retried on the next tick.
func (r *Recorder) Start(ctx context.Context) {
	if r.interval <= 0 {
		r.log.Info("history recorder disabled")
		return
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.cycle(ctx)
	for {
		select {
		case <-ctx.Done():
			r.log.Info("history recorder stopped")
			return
		case <-ticker.C:
			r.cycle(ctx)
		}
	}
}

func (r *Recorder) cycle(ctx context.Context) {
	res, err := r.Run(ctx)
	if err != nil {
		r.log.Warnw("history record failed", "error", err)
		return
	}
	r.log.Infow("history record completed",
		"date", res.Date,
		"created", res.Created,
		"complete", res.Complete,
		"persisted", res.Persisted,
		"duration", res.Duration.String(),
	)
}
