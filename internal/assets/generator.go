// Package assets produces the named output references for an order: the
// three model LODs, the NFT image, and the background.
package assets

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"gokart-backend/internal/models"
)

// Generator produces the full asset map for an order. Implementations must
// populate every key in models.AssetKeys.
type Generator interface {
	Generate(ctx context.Context, order *models.Order) (map[string]string, error)
}

// fileExtensions maps each asset key to the file type its reference points at.
var fileExtensions = map[string]string{
	models.AssetLOD0:       "glb",
	models.AssetLOD1:       "glb",
	models.AssetLOD2:       "glb",
	models.AssetNFT:        "png",
	models.AssetBackground: "png",
}

// Stub fabricates placeholder references without rendering anything. The
// references are a pure function of order id and prompt, so repeated
// generation of the same order yields the same map.
type Stub struct {
	baseURL string
	delay   time.Duration
}

// NewStub returns a Stub serving references under baseURL. delay simulates
// pipeline latency; zero disables it.
func NewStub(baseURL string, delay time.Duration) *Stub {
	return &Stub{baseURL: baseURL, delay: delay}
}

func (s *Stub) Generate(ctx context.Context, order *models.Order) (map[string]string, error) {
	if s.delay > 0 {
		if err := wait(ctx, s.delay); err != nil {
			return nil, err
		}
	}

	assets := make(map[string]string, len(models.AssetKeys))
	for _, key := range models.AssetKeys {
		assets[key] = fmt.Sprintf("%s/orders/%s/%s-%s.%s",
			s.baseURL, order.ID, key, fingerprint(order, key), fileExtensions[key])
	}
	return assets, nil
}

// fingerprint derives a short content-style token from the order so each
// reference looks addressable and stays stable across retries.
func fingerprint(order *models.Order, key string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%s", order.ID, order.ModelType, order.Prompt, key)
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// wait sleeps for d but aborts early when the context is canceled.
func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
