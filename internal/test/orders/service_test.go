package orders_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gokart-backend/internal/apperr"
	"gokart-backend/internal/assets"
	"gokart-backend/internal/metrics"
	"gokart-backend/internal/models"
	"gokart-backend/internal/orders"
	"gokart-backend/internal/store"
)

const assetBase = "https://assets.test.example.com"

// flakyGenerator fails the first n attempts, then delegates to a stub.
type flakyGenerator struct {
	mu       sync.Mutex
	failures int
	stub     *assets.Stub
}

func (f *flakyGenerator) Generate(ctx context.Context, order *models.Order) (map[string]string, error) {
	f.mu.Lock()
	if f.failures > 0 {
		f.failures--
		f.mu.Unlock()
		return nil, errors.New("render farm unavailable")
	}
	f.mu.Unlock()
	return f.stub.Generate(ctx, order)
}

func newService(t *testing.T, gen assets.Generator) *orders.Service {
	t.Helper()
	if gen == nil {
		gen = assets.NewStub(assetBase, 0)
	}
	svc := orders.New(store.NewMemory(), gen, assets.NewStub(assetBase, 0), zap.NewNop(), metrics.NewRegistry(), 16)
	t.Cleanup(svc.Shutdown)
	return svc
}

func TestCreate_Pricing(t *testing.T) {
	svc := newService(t, nil)

	newOrder, err := svc.Create(context.Background(), "red kart", models.ModelTypeNew, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, models.PriceNew, newOrder.Price)

	recolor, err := svc.Create(context.Background(), "blue kart", models.ModelTypeRecolor, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, models.PriceRecolor, recolor.Price)
}

func TestCreate_RejectsInvalidInput(t *testing.T) {
	svc := newService(t, nil)

	_, err := svc.Create(context.Background(), "red kart", "remodel", "a@b.com")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = svc.Create(context.Background(), "", models.ModelTypeNew, "a@b.com")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = svc.Create(context.Background(), "red kart", models.ModelTypeNew, "")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestCreate_NeverStartsReady(t *testing.T) {
	// Workers are not started, so the order must sit in pending.
	svc := newService(t, assets.NewStub(assetBase, time.Hour))

	order, err := svc.Create(context.Background(), "red kart", models.ModelTypeNew, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Empty(t, order.Assets)

	got, err := svc.Status(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)
}

func TestGenerate_PopulatesEveryAssetKey(t *testing.T) {
	svc := newService(t, nil)

	order, err := svc.Create(context.Background(), "red kart", models.ModelTypeNew, "a@b.com")
	require.NoError(t, err)

	done, err := svc.Generate(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReady, done.Status)
	assert.Len(t, done.Assets, len(models.AssetKeys))
	for _, key := range models.AssetKeys {
		assert.NotEmpty(t, done.Assets[key], "missing asset %s", key)
	}
}

func TestGenerate_Idempotent(t *testing.T) {
	svc := newService(t, nil)

	order, err := svc.Create(context.Background(), "red kart", models.ModelTypeNew, "a@b.com")
	require.NoError(t, err)

	first, err := svc.Generate(context.Background(), order.ID)
	require.NoError(t, err)
	second, err := svc.Generate(context.Background(), order.ID)
	require.NoError(t, err)

	assert.Equal(t, models.StatusReady, second.Status)
	assert.Equal(t, first.Assets, second.Assets)
}

func TestGenerate_UnknownOrder(t *testing.T) {
	svc := newService(t, nil)

	_, err := svc.Generate(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestStatus_UnknownOrder(t *testing.T) {
	svc := newService(t, nil)

	// Populate the store so "unknown" is not just "empty".
	_, err := svc.Create(context.Background(), "red kart", models.ModelTypeNew, "a@b.com")
	require.NoError(t, err)

	_, err = svc.Status(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestForceComplete_ThenGenerateDoesNotRegress(t *testing.T) {
	svc := newService(t, assets.NewStub(assetBase, time.Hour))

	order, err := svc.Create(context.Background(), "red kart", models.ModelTypeNew, "a@b.com")
	require.NoError(t, err)

	completed, err := svc.ForceComplete(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReady, completed.Status)
	assert.Len(t, completed.Assets, len(models.AssetKeys))

	// A late generate invocation must be a no-op.
	again, err := svc.Generate(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReady, again.Status)
	assert.Equal(t, completed.Assets, again.Assets)
}

func TestGenerate_FailureIsRecordedAndRetryable(t *testing.T) {
	gen := &flakyGenerator{failures: 1, stub: assets.NewStub(assetBase, 0)}
	svc := newService(t, gen)

	order, err := svc.Create(context.Background(), "red kart", models.ModelTypeNew, "a@b.com")
	require.NoError(t, err)

	failed, err := svc.Generate(context.Background(), order.ID)
	assert.ErrorIs(t, err, apperr.ErrGeneration)
	assert.Equal(t, models.StatusFailed, failed.Status)
	assert.Contains(t, failed.Error, "render farm unavailable")
	assert.Empty(t, failed.Assets)

	// Second attempt succeeds and clears the recorded failure.
	done, err := svc.Generate(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReady, done.Status)
	assert.Empty(t, done.Error)
	assert.Len(t, done.Assets, len(models.AssetKeys))
}

func TestRetry_RequeuesFailedOrder(t *testing.T) {
	gen := &flakyGenerator{failures: 1, stub: assets.NewStub(assetBase, 0)}
	svc := newService(t, gen)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx, 2)

	order, err := svc.Create(ctx, "red kart", models.ModelTypeNew, "a@b.com")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		got, err := svc.Status(ctx, order.ID)
		return err == nil && got.Status == models.StatusFailed
	}, 2*time.Second, 10*time.Millisecond)

	_, err = svc.Retry(ctx, order.ID)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		got, err := svc.Status(ctx, order.ID)
		return err == nil && got.Status == models.StatusReady
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRetry_NoOpOnReadyOrder(t *testing.T) {
	svc := newService(t, nil)

	order, err := svc.Create(context.Background(), "red kart", models.ModelTypeNew, "a@b.com")
	require.NoError(t, err)

	completed, err := svc.ForceComplete(context.Background(), order.ID)
	require.NoError(t, err)

	retried, err := svc.Retry(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReady, retried.Status)
	assert.Equal(t, completed.Assets, retried.Assets)
}

func TestWorkerPool_CompletesQueuedOrders(t *testing.T) {
	svc := newService(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx, 4)

	order, err := svc.Create(ctx, "red kart", models.ModelTypeNew, "a@b.com")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		got, err := svc.Status(ctx, order.ID)
		return err == nil && got.Status == models.StatusReady
	}, 2*time.Second, 10*time.Millisecond)

	got, err := svc.Status(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, got.Assets, len(models.AssetKeys))
}

func TestCreate_IDsAreUniqueUnderLoad(t *testing.T) {
	svc := newService(t, nil)

	const n = 10000
	seen := make(map[uuid.UUID]struct{}, n)
	for i := 0; i < n; i++ {
		order, err := svc.Create(context.Background(), "red kart", models.ModelTypeRecolor, "a@b.com")
		require.NoError(t, err)
		_, dup := seen[order.ID]
		require.False(t, dup, "duplicate order id %s", order.ID)
		seen[order.ID] = struct{}{}
	}
}

// A status poll racing the generate step must never see a ready order with
// an incomplete asset map.
func TestStatus_NeverObservesPartialReady(t *testing.T) {
	svc := newService(t, nil)

	order, err := svc.Create(context.Background(), "red kart", models.ModelTypeNew, "a@b.com")
	require.NoError(t, err)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				got, err := svc.Status(context.Background(), order.ID)
				if err != nil {
					continue
				}
				if got.Status == models.StatusReady {
					assert.Len(t, got.Assets, len(models.AssetKeys))
				} else {
					assert.Empty(t, got.Assets)
				}
			}
		}()
	}

	_, err = svc.Generate(context.Background(), order.ID)
	require.NoError(t, err)
	close(stop)
	wg.Wait()
}
