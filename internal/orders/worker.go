package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Start launches workers consuming the generation queue. Each queued job is
// executed exactly once; the job's own errors are recorded on the order, so
// a failed generation never stops a worker.
func (s *Service) Start(ctx context.Context, workers int) {
	if workers < 1 {
		workers = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			return s.work(ctx)
		})
	}

	go func() {
		if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("worker pool stopped", zap.Error(err))
		}
	}()
}

func (s *Service) work(ctx context.Context) error {
	for {
		// Drain queued jobs before honoring shutdown so a stopped server
		// finishes the work it already accepted.
		select {
		case id := <-s.jobs:
			s.runJob(ctx, id)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.done:
			return nil
		case id := <-s.jobs:
			s.runJob(ctx, id)
		}
	}
}

func (s *Service) runJob(ctx context.Context, id uuid.UUID) {
	s.metrics.QueueDepth.Dec()
	if _, err := s.Generate(ctx, id); err != nil {
		s.logger.Warn("generation job finished with error",
			zap.String("order_id", id.String()), zap.Error(err))
	}
}

// Shutdown stops accepting new jobs. Workers drain what is already queued
// and then exit. The jobs channel is never closed; a late enqueue sees the
// done channel instead of a panic.
func (s *Service) Shutdown() {
	s.shutdownOnce.Do(func() {
		close(s.done)
	})
}
