package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/proposalhub/search-sync/pkg/config"
	apperrors "github.com/proposalhub/search-sync/pkg/errors"
	"github.com/proposalhub/search-sync/pkg/resilience"
)

// Client fetches enrichment payloads from the external service, authenticated
// with a bearer credential. Every call is bounded by the configured timeout.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates an enrichment Client from config.
func NewClient(cfg config.EnrichmentConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		http:    &http.Client{Timeout: timeout},
		logger:  slog.Default().With("component", "enrichment-client"),
	}
}

// retryConfig bounds enrichment retries tightly: enrichment runs inside the
// record write path, so the total added latency must stay small.
var retryConfig = resilience.RetryConfig{
	MaxAttempts:  2,
	InitialDelay: 200 * time.Millisecond,
	MaxDelay:     time.Second,
}

// response is the wire shape of the enrichment service reply.
type response struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data"`
}

// Fetch retrieves the enrichment payload for the given SF number. Any failure
// (timeout, non-success status, malformed body, or service-reported failure)
// is returned as an error; callers log and continue, since enrichment must
// never block a record write.
func (c *Client) Fetch(ctx context.Context, sfNumber string) (*Payload, error) {
	if sfNumber == "" {
		return nil, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "sf number is required")
	}

	endpoint := fmt.Sprintf("%s/api/salesforce/document/%s", c.baseURL, url.PathEscape(sfNumber))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building enrichment request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	start := time.Now()

	// Transport failures and 5xx responses are retried with backoff; 4xx
	// responses are final.
	var resp *http.Response
	err = resilience.Retry(ctx, "enrichment-fetch", retryConfig, func() error {
		r, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("calling enrichment service: %w", err)
		}
		if r.StatusCode >= http.StatusInternalServerError {
			r.Body.Close()
			return fmt.Errorf("%w: enrichment service returned %d", apperrors.ErrEnrichmentFailed, r.StatusCode)
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: enrichment service returned %d", apperrors.ErrEnrichmentFailed, resp.StatusCode)
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding enrichment response: %w", err)
	}
	if !body.Success {
		return nil, fmt.Errorf("%w: service reported failure for %s", apperrors.ErrEnrichmentFailed, sfNumber)
	}

	payload := NewPayload(sfNumber, body.Data)
	c.logger.Debug("enrichment payload fetched",
		"sf_number", sfNumber,
		"fields", len(payload.Fields),
		"unknown_fields", len(payload.Extra),
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return payload, nil
}
