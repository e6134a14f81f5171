// Package wellness exposes the intervals.icu daily wellness endpoints as
// MCP tools: a raw date-range listing and grouped trend summaries.
package wellness

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/hbastos/intervals-icu-mcp/internal/logger"
	"github.com/hbastos/intervals-icu-mcp/internal/tools"
	"github.com/hbastos/intervals-icu-mcp/internal/transform"
)

const wellnessPath = "/athlete/{id}/wellness"

// Fetcher is the slice of the intervals client these tools need.
type Fetcher interface {
	Get(ctx context.Context, path string, params url.Values) (any, error)
}

// GetTools returns the wellness tools backed by f.
func GetTools(f Fetcher) []tools.Tool {
	log := logger.ForComponent("wellness")
	return []tools.Tool{
		&ListTool{fetcher: f, log: log},
		&GroupedTool{fetcher: f, log: log},
	}
}

func fetch(ctx context.Context, f Fetcher, log *slog.Logger, oldest, newest string) ([]any, error) {
	body, err := f.Get(ctx, wellnessPath, tools.DateParams(oldest, newest))
	if err != nil {
		return nil, err
	}
	records, ok := body.([]any)
	if !ok {
		log.Warn("wellness response was not a list", "type", fmt.Sprintf("%T", body))
		return []any{}, nil
	}
	return transform.CleanList(records), nil
}

type ListRequest struct {
	OldestDate string `json:"oldest_date"`
	NewestDate string `json:"newest_date,omitempty"`
}

type ListTool struct {
	fetcher Fetcher
	log     *slog.Logger
}

func (t *ListTool) Name() string {
	return "get_wellness"
}

func (t *ListTool) Description() string {
	return "Fetch daily wellness records (sleep, HRV, resting HR, weight, " +
		"fatigue, training load) for the configured athlete within a date " +
		"range. Dates use YYYY-MM-DD; omit newest_date for no upper limit. " +
		"Returns the list of wellness records with empty fields removed."
}

func (t *ListTool) Title() string {
	return "Get Wellness"
}

func (t *ListTool) Annotations() map[string]bool {
	return tools.ReadOnlyAnnotations()
}

func (t *ListTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"oldest_date": {
				"type": "string",
				"description": "Oldest date to fetch wellness data from (YYYY-MM-DD)"
			},
			"newest_date": {
				"type": "string",
				"description": "Newest date to fetch wellness data from (YYYY-MM-DD, optional)"
			}
		},
		"required": ["oldest_date"]
	}`)
}

func (t *ListTool) Execute(ctx context.Context, input json.RawMessage) (any, error) {
	var req ListRequest
	if err := json.Unmarshal(input, &req); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	if err := tools.ValidateDateRange(req.OldestDate, req.NewestDate); err != nil {
		return nil, err
	}

	t.log.Debug("fetching wellness", "oldest", req.OldestDate, "newest", req.NewestDate)

	records, err := fetch(ctx, t.fetcher, t.log, req.OldestDate, req.NewestDate)
	if err != nil {
		return nil, err
	}

	t.log.Info("retrieved wellness records", "count", len(records))
	return records, nil
}
