package assets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gokart-backend/internal/models"
)

// Remote submits generation jobs to an external render API. The API is
// expected to answer synchronously with the finished asset references.
// Each Generate call retries transient failures with exponential backoff
// before giving up.
type Remote struct {
	baseURL    string
	apiKey     string
	maxRetries int
	httpClient *http.Client
}

type renderRequest struct {
	OrderID   string `json:"order_id"`
	Prompt    string `json:"prompt"`
	ModelType string `json:"model_type"`
}

type renderResponse struct {
	Assets map[string]string `json:"assets"`
}

// NewRemote returns a client for the render API at baseURL. maxRetries
// bounds the attempts per Generate call; values below 1 mean a single
// attempt.
func NewRemote(baseURL, apiKey string, maxRetries int) *Remote {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Remote{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		maxRetries: maxRetries,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (r *Remote) Generate(ctx context.Context, order *models.Order) (map[string]string, error) {
	var result map[string]string
	err := r.RetryWithBackoff(ctx, func() error {
		var renderErr error
		result, renderErr = r.render(ctx, order)
		return renderErr
	}, r.maxRetries)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *Remote) render(ctx context.Context, order *models.Order) (map[string]string, error) {
	payload := renderRequest{
		OrderID:   order.ID.String(),
		Prompt:    order.Prompt,
		ModelType: order.ModelType,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := r.baseURL + "/render"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("x-api-key", r.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to render order: status %d, body: %s", resp.StatusCode, string(body))
	}

	var result renderResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w, body: %s", err, string(body))
	}

	for _, key := range models.AssetKeys {
		if result.Assets[key] == "" {
			return nil, fmt.Errorf("render response missing asset %q, body: %s", key, string(body))
		}
	}

	return result.Assets, nil
}

// RetryWithBackoff runs fn up to maxRetries times, doubling the pause
// between attempts. The context cancels the backoff wait.
func (r *Remote) RetryWithBackoff(ctx context.Context, fn func() error, maxRetries int) error {
	var err error
	backoff := time.Second
	for attempt := 0; attempt < maxRetries; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == maxRetries-1 {
			break
		}
		if werr := wait(ctx, backoff); werr != nil {
			return werr
		}
		backoff *= 2
	}
	return fmt.Errorf("failed after %d attempts: %w", maxRetries, err)
}
