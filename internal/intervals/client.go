// Package intervals is the HTTP client adapter for the intervals.icu REST
// API. It owns the credential pair and base URL, performs authenticated GET
// requests and decodes the JSON bodies; it performs no retries and holds no
// per-call state, so a single Client is safe for concurrent tool calls.
package intervals

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/hbastos/intervals-icu-mcp/internal/config"
	"github.com/hbastos/intervals-icu-mcp/internal/logger"
)

// basicAuthUser is the fixed username intervals.icu expects alongside the
// API key as password.
const basicAuthUser = "API_KEY"

type Client struct {
	baseURL   string
	apiKey    string
	athleteID string
	http      *http.Client
	log       *slog.Logger
}

func NewClient(cfg config.IntervalsConfig) *Client {
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:    cfg.APIKey,
		athleteID: cfg.AthleteID,
		http:      &http.Client{Timeout: cfg.Timeout},
		log:       logger.ForComponent("intervals"),
	}
}

// AthleteID returns the configured athlete identifier.
func (c *Client) AthleteID() string {
	return c.athleteID
}

// Get issues an authenticated GET against path, with the configured athlete
// id substituted for any {id} placeholder, and returns the decoded JSON
// body. Failures are *APIError, *TransportError or *DecodeError.
func (c *Client) Get(ctx context.Context, path string, params url.Values) (any, error) {
	endpoint := c.baseURL + strings.ReplaceAll(path, "{id}", c.athleteID)
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	req.SetBasicAuth(basicAuthUser, c.apiKey)
	req.Header.Set("Accept", "application/json")

	reqID := uuid.NewString()
	c.log.Debug("outbound request", "request_id", reqID, "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("request failed", "request_id", reqID, "error", err)
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
			URL:        endpoint,
			Kind:       kindForStatus(resp.StatusCode),
		}
		if apiErr.Kind == KindRateLimit {
			if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
				apiErr.RetryAfter = secs
			}
		}
		c.log.Warn("upstream error",
			"request_id", reqID,
			"status", resp.StatusCode,
			"kind", string(apiErr.Kind))
		return nil, apiErr
	}

	var decoded any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		c.log.Error("decode failed", "request_id", reqID, "error", err)
		return nil, &DecodeError{Err: err}
	}

	c.log.Debug("request complete", "request_id", reqID, "status", resp.StatusCode)
	return decoded, nil
}
