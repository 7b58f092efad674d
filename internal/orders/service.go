// Package orders drives an order from submission to asset availability.
// Status moves pending -> processing -> ready, or to failed with a recorded
// reason; ready never regresses and generation runs at most once to effect.
package orders

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"gokart-backend/internal/apperr"
	"gokart-backend/internal/assets"
	"gokart-backend/internal/metrics"
	"gokart-backend/internal/models"
	"gokart-backend/internal/store"
)

// errAlreadyInFlight aborts a claim mutator when another invocation owns the
// order. It never leaves this package.
var errAlreadyInFlight = errors.New("generation already in flight")

type Service struct {
	store   store.Store
	gen     assets.Generator
	fastGen assets.Generator
	logger  *zap.Logger
	metrics *metrics.Registry

	jobs         chan uuid.UUID
	done         chan struct{}
	shutdownOnce sync.Once
}

// New wires the lifecycle service. gen serves queued generation and may
// simulate pipeline latency; fastGen serves the synchronous force-complete
// path and should not.
func New(st store.Store, gen, fastGen assets.Generator, logger *zap.Logger, reg *metrics.Registry, queueSize int) *Service {
	return &Service{
		store:   st,
		gen:     gen,
		fastGen: fastGen,
		logger:  logger,
		metrics: reg,
		jobs:    make(chan uuid.UUID, queueSize),
		done:    make(chan struct{}),
	}
}

// Create validates the request, prices it, stores the order as pending and
// queues its generation job. The record is fully visible in the store before
// the job is enqueued, so status polls can never miss a created order.
func (s *Service) Create(ctx context.Context, prompt, modelType, userEmail string) (*models.Order, error) {
	if prompt == "" {
		s.metrics.OrdersRejected.Inc()
		return nil, fmt.Errorf("%w: prompt is required", apperr.ErrInvalidInput)
	}
	if userEmail == "" {
		s.metrics.OrdersRejected.Inc()
		return nil, fmt.Errorf("%w: user_email is required", apperr.ErrInvalidInput)
	}
	price, ok := models.PriceFor(modelType)
	if !ok {
		s.metrics.OrdersRejected.Inc()
		return nil, fmt.Errorf("%w: unknown model_type %q", apperr.ErrInvalidInput, modelType)
	}

	now := time.Now().UTC()
	order := &models.Order{
		ID:        uuid.New(),
		Prompt:    prompt,
		ModelType: modelType,
		UserEmail: userEmail,
		Status:    models.StatusPending,
		Price:     price,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.Insert(ctx, order); err != nil {
		return nil, err
	}

	s.metrics.OrdersCreated.WithLabelValues(modelType).Inc()
	s.logger.Info("order created",
		zap.String("order_id", order.ID.String()),
		zap.String("model_type", modelType),
		zap.Int("price", price))

	if err := s.enqueue(ctx, order.ID); err != nil {
		// The order stays pending; a retry or force-complete can still
		// finish it.
		s.logger.Warn("failed to enqueue generation job",
			zap.String("order_id", order.ID.String()), zap.Error(err))
	}

	return order, nil
}

// Status returns the current state of an order.
func (s *Service) Status(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.store.Get(ctx, id)
}

// Generate runs the generation step for the queued path. It is idempotent:
// orders that are already processing or ready are left untouched.
func (s *Service) Generate(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.generate(ctx, id, s.gen, false)
}

// ForceComplete finishes an order synchronously, bypassing the queue and any
// simulated latency. It may take over an order the queue has already claimed;
// generation is deterministic, so both writers converge on the same assets.
func (s *Service) ForceComplete(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.generate(ctx, id, s.fastGen, true)
}

// Retry re-queues generation for a failed order. Pending orders are
// re-queued as well; processing and ready orders are left untouched.
func (s *Service) Retry(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.store.Update(ctx, id, func(o *models.Order) error {
		switch o.Status {
		case models.StatusPending, models.StatusFailed:
			o.Status = models.StatusPending
			o.Error = ""
			return nil
		default:
			return errAlreadyInFlight
		}
	})
	if errors.Is(err, errAlreadyInFlight) {
		return s.store.Get(ctx, id)
	}
	if err != nil {
		return nil, err
	}

	s.metrics.RetriesRequested.Inc()
	if err := s.enqueue(ctx, id); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Service) generate(ctx context.Context, id uuid.UUID, gen assets.Generator, takeover bool) (*models.Order, error) {
	// Claim the order. The claim and the final write both go through the
	// store's Update, so readers only ever see complete status/assets pairs.
	claimed, err := s.store.Update(ctx, id, func(o *models.Order) error {
		switch o.Status {
		case models.StatusPending, models.StatusFailed:
		case models.StatusProcessing:
			if !takeover {
				return errAlreadyInFlight
			}
		default:
			return errAlreadyInFlight
		}
		o.Status = models.StatusProcessing
		o.Error = ""
		return nil
	})
	if errors.Is(err, errAlreadyInFlight) {
		return s.store.Get(ctx, id)
	}
	if err != nil {
		return nil, err
	}

	start := time.Now()
	generated, genErr := gen.Generate(ctx, claimed)
	s.metrics.GenerationSec.Observe(time.Since(start).Seconds())

	if genErr != nil {
		s.metrics.Generations.WithLabelValues("failure").Inc()
		s.logger.Error("generation failed",
			zap.String("order_id", id.String()), zap.Error(genErr))
		sentry.CaptureException(genErr)

		order, err := s.store.Update(ctx, id, func(o *models.Order) error {
			if o.Status == models.StatusReady {
				return nil
			}
			o.Status = models.StatusFailed
			o.Error = genErr.Error()
			return nil
		})
		if err != nil {
			return nil, err
		}
		return order, fmt.Errorf("%w: %s", apperr.ErrGeneration, genErr)
	}

	order, err := s.store.Update(ctx, id, func(o *models.Order) error {
		if o.Status == models.StatusReady {
			return nil
		}
		o.Status = models.StatusReady
		o.Assets = generated
		o.Error = ""
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Generations.WithLabelValues("success").Inc()
	s.logger.Info("order ready",
		zap.String("order_id", id.String()),
		zap.String("model_type", order.ModelType))
	return order, nil
}

// enqueue never blocks the caller: a full or stopped queue leaves the order
// pending, where a retry or force-complete can still finish it.
func (s *Service) enqueue(ctx context.Context, id uuid.UUID) error {
	select {
	case <-s.done:
		return errors.New("generation queue is shut down")
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	select {
	case s.jobs <- id:
		s.metrics.QueueDepth.Inc()
		return nil
	default:
		return errors.New("generation queue is full")
	}
}
