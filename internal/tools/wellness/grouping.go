package wellness

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hbastos/intervals-icu-mcp/internal/tools"
	"github.com/hbastos/intervals-icu-mcp/internal/transform"
)

// averagedFields are the wellness metrics summarized per group, keyed by
// their intervals.icu field names.
var averagedFields = []string{
	"weight", "restingHR", "hrv", "sleepTime", "sleepQuality",
	"fatigue", "mood", "motivation",
}

type GroupedRequest struct {
	OldestDate     string `json:"oldest_date"`
	NewestDate     string `json:"newest_date,omitempty"`
	GroupBy        string `json:"group_by,omitempty"`
	IncludeDetails bool   `json:"include_details,omitempty"`
}

// GroupedTool aggregates wellness records into weekly/monthly averages or
// one overall summary, for trend analysis over long ranges.
type GroupedTool struct {
	fetcher Fetcher
	log     *slog.Logger
}

func (t *GroupedTool) Name() string {
	return "get_grouped_wellness"
}

func (t *GroupedTool) Description() string {
	return "Fetch wellness records and group them by week or month (or " +
		"\"all\" for one overall summary), returning per-group averages of " +
		"weight, resting HR, HRV, sleep, fatigue, mood and motivation. Set " +
		"include_details to keep individual records inside each group."
}

func (t *GroupedTool) Title() string {
	return "Get Grouped Wellness"
}

func (t *GroupedTool) Annotations() map[string]bool {
	return tools.ReadOnlyAnnotations()
}

func (t *GroupedTool) Schema() json.RawMessage {
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
			},
			"group_by": {
				"type": "string",
				"description": "How to group wellness data (default: month)",
				"enum": ["week", "month", "all"]
			},
			"include_details": {
				"type": "boolean",
				"description": "Include individual records in each group (default: false)"
			}
		},
		"required": ["oldest_date"]
	}`)
}

func (t *GroupedTool) Execute(ctx context.Context, input json.RawMessage) (any, error) {
	var req GroupedRequest
	if err := json.Unmarshal(input, &req); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	if req.GroupBy == "" {
		req.GroupBy = "month"
	}
	switch req.GroupBy {
	case "week", "month", "all":
	default:
		return nil, &tools.ValidationError{
			Field:   "group_by",
			Message: "must be one of: week, month, all",
		}
	}
	if err := tools.ValidateDateRange(req.OldestDate, req.NewestDate); err != nil {
		return nil, err
	}

	records, err := fetch(ctx, t.fetcher, t.log, req.OldestDate, req.NewestDate)
	if err != nil {
		return nil, err
	}

	t.log.Info("grouping wellness records", "count", len(records), "group_by", req.GroupBy)

	if req.GroupBy == "all" {
		return summarizeAll(records, req.IncludeDetails), nil
	}
	return groupByPeriod(records, req.GroupBy, req.IncludeDetails), nil
}

// summarizeAll collapses the whole range into one statistics block.
func summarizeAll(records []any, includeDetails bool) map[string]any {
	if len(records) == 0 {
		return map[string]any{
			"summary":    map[string]any{},
			"count":      0,
			"date_range": map[string]any{"oldest": nil, "newest": nil},
		}
	}

	summary := summarize(records)
	summary["avg_injury"] = transform.Average(records, "injury")
	summary["avg_kcalConsumed"] = transform.Average(records, "kcalConsumed")

	if lo, hi, ok := minMax(records, "weight"); ok {
		summary["min_weight"] = lo
		summary["max_weight"] = hi
	}
	if lo, hi, ok := minMax(records, "hrv"); ok {
		summary["min_hrv"] = lo
		summary["max_hrv"] = hi
	}

	// Record ids are the wellness dates; the API returns newest first.
	result := map[string]any{
		"summary": transform.Clean(summary),
		"count":   len(records),
		"date_range": map[string]any{
			"oldest": transform.StringField(records[len(records)-1], "id"),
			"newest": transform.StringField(records[0], "id"),
		},
	}
	if includeDetails {
		result["records"] = records
	}
	return result
}

type periodGroup struct {
	Summary map[string]any `json:"summary"`
	Records []any          `json:"records,omitempty"`
}

func groupByPeriod(records []any, period string, includeDetails bool) map[string]any {
	buckets := make(map[string][]any)

	for _, r := range records {
		date := transform.StringField(r, "id")
		if date == "" {
			continue
		}
		day, err := transform.ParseDate(date)
		if err != nil {
			continue
		}
		key := transform.PeriodKey(day, period)
		buckets[key] = append(buckets[key], r)
	}

	groups := make(map[string]any, len(buckets))
	for key, group := range buckets {
		summary := summarize(group)
		summary["count"] = len(group)

		pg := &periodGroup{Summary: transform.Clean(summary).(map[string]any)}
		if includeDetails {
			pg.Records = group
		}
		groups[key] = pg
	}

	return map[string]any{
		"groups":        groups,
		"total_records": len(records),
		"period_type":   period,
	}
}

func summarize(records []any) map[string]any {
	summary := make(map[string]any, len(averagedFields))
	for _, field := range averagedFields {
		summary["avg_"+field] = transform.Average(records, field)
	}
	return summary
}

// minMax scans the named field, skipping absent and zero values the way
// sparse wellness data is usually entered (zero means "not recorded").
func minMax(records []any, field string) (lo, hi float64, ok bool) {
	for _, r := range records {
		v, present := transform.Field(r, field)
		if !present || v == 0 {
			continue
		}
		if !ok || v < lo {
			lo = v
		}
		if !ok || v > hi {
			hi = v
		}
		ok = true
	}
	return lo, hi, ok
}
