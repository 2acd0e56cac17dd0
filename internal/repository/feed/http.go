package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Harsh-BH/datalake/internal/domain"
	"github.com/Harsh-BH/datalake/internal/repository"
)

const (
	subscriptionKeyHeader = "Ocp-Apim-Subscription-Key"
	defaultTimeout        = 30 * time.Second

	// maxErrorBody bounds how much of a failed response is kept in the error.
	maxErrorBody = 512
)

// HTTPFeed fetches the player feed with a single authenticated GET.
type HTTPFeed struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

var _ repository.PlayerFeed = (*HTTPFeed)(nil)

// NewHTTPFeed creates a feed client. A zero timeout uses 30s.
func NewHTTPFeed(endpoint, apiKey string, timeout time.Duration) *HTTPFeed {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPFeed{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
	}
}

func (f *HTTPFeed) FetchPlayers(ctx context.Context) (domain.PlayerBatch, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("feed: build request: %w", err)
	}
	req.Header.Set(subscriptionKeyHeader, f.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed: get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("feed: unexpected status %d: %s", resp.StatusCode, body)
	}

	var batch domain.PlayerBatch
	if err := json.NewDecoder(resp.Body).Decode(&batch); err != nil {
		return nil, fmt.Errorf("feed: decode: %w", err)
	}
	return batch, nil
}
