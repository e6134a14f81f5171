package activities

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/hbastos/intervals-icu-mcp/internal/tools"
	"github.com/hbastos/intervals-icu-mcp/internal/transform"
)

type GroupedRequest struct {
	OldestDate     string `json:"oldest_date"`
	NewestDate     string `json:"newest_date,omitempty"`
	GroupBy        string `json:"group_by,omitempty"`
	IncludeDetails bool   `json:"include_details,omitempty"`
}

// GroupedTool aggregates activities by sport or time period so large date
// ranges come back as summaries instead of full record dumps.
type GroupedTool struct {
	fetcher Fetcher
	log     *slog.Logger
}

func (t *GroupedTool) Name() string {
	return "get_grouped_activities"
}

func (t *GroupedTool) Description() string {
	return "Fetch activities and group them by sport, day, week or month, " +
		"returning per-group totals (count, duration, distance, elevation) " +
		"instead of individual records. Set include_details for filtered " +
		"per-activity entries inside each group."
}

func (t *GroupedTool) Title() string {
	return "Get Grouped Activities"
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
				"description": "Oldest date to fetch activities from (YYYY-MM-DD)"
			},
			"newest_date": {
				"type": "string",
				"description": "Newest date to fetch activities from (YYYY-MM-DD, optional)"
			},
			"group_by": {
				"type": "string",
				"description": "How to group activities (default: sport)",
				"enum": ["sport", "day", "week", "month"]
			},
			"include_details": {
				"type": "boolean",
				"description": "Include filtered activity details in each group (default: false)"
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
		req.GroupBy = "sport"
	}
	switch req.GroupBy {
	case "sport", "day", "week", "month":
	default:
		return nil, &tools.ValidationError{
			Field:   "group_by",
			Message: "must be one of: sport, day, week, month",
		}
	}
	if err := tools.ValidateDateRange(req.OldestDate, req.NewestDate); err != nil {
		return nil, err
	}

	records, err := fetch(ctx, t.fetcher, t.log, req.OldestDate, req.NewestDate)
	if err != nil {
		return nil, err
	}

	t.log.Info("grouping activities", "count", len(records), "group_by", req.GroupBy)

	if req.GroupBy == "sport" {
		return groupBySport(records, req.IncludeDetails), nil
	}
	return groupByPeriod(records, req.GroupBy, req.IncludeDetails), nil
}

type sportGroup struct {
	Count          int     `json:"count"`
	TotalDuration  float64 `json:"total_duration"`
	TotalDistance  float64 `json:"total_distance"`
	TotalElevation float64 `json:"total_elevation"`
	Activities     []any   `json:"activities,omitempty"`
}

func groupBySport(records []any, includeDetails bool) map[string]any {
	groups := make(map[string]*sportGroup)

	for _, r := range records {
		sport := transform.StringField(r, "type")
		if sport == "" {
			sport = "Unknown"
		}
		g, ok := groups[sport]
		if !ok {
			g = &sportGroup{}
			groups[sport] = g
		}

		g.Count++
		if v, ok := transform.Field(r, "moving_time"); ok {
			g.TotalDuration += v
		}
		if v, ok := transform.Field(r, "distance"); ok {
			g.TotalDistance += v
		}
		if v, ok := transform.Field(r, "icu_elevation_gain"); ok {
			g.TotalElevation += v
		}

		if includeDetails {
			g.Activities = append(g.Activities, detailFields(r,
				"id", "name", "start_date_local", "moving_time", "distance",
				"icu_elevation_gain", "icu_average_watts", "average_heartrate"))
		}
	}

	out := make(map[string]any, len(groups))
	for sport, g := range groups {
		out[sport] = g
	}

	return map[string]any{
		"groups":           out,
		"total_activities": len(records),
		"date_range":       dateRange(records),
	}
}

type periodGroup struct {
	Count         int      `json:"count"`
	Sports        []string `json:"sports"`
	TotalDuration float64  `json:"total_duration"`
	TotalDistance float64  `json:"total_distance"`
	Activities    []any    `json:"activities,omitempty"`

	sportSet map[string]bool
}

func groupByPeriod(records []any, period string, includeDetails bool) map[string]any {
	groups := make(map[string]*periodGroup)

	for _, r := range records {
		start := transform.StringField(r, "start_date_local")
		if start == "" {
			continue
		}
		ts, ok := transform.ParseTimestamp(start)
		if !ok {
			continue
		}

		key := transform.PeriodKey(ts, period)
		g, ok := groups[key]
		if !ok {
			g = &periodGroup{sportSet: make(map[string]bool)}
			groups[key] = g
		}

		g.Count++
		sport := transform.StringField(r, "type")
		if sport == "" {
			sport = "Unknown"
		}
		g.sportSet[sport] = true
		if v, ok := transform.Field(r, "moving_time"); ok {
			g.TotalDuration += v
		}
		if v, ok := transform.Field(r, "distance"); ok {
			g.TotalDistance += v
		}

		if includeDetails {
			g.Activities = append(g.Activities, detailFields(r,
				"id", "name", "type", "start_date_local", "moving_time", "distance"))
		}
	}

	out := make(map[string]any, len(groups))
	for key, g := range groups {
		g.Sports = make([]string, 0, len(g.sportSet))
		for sport := range g.sportSet {
			g.Sports = append(g.Sports, sport)
		}
		sort.Strings(g.Sports)
		out[key] = g
	}

	return map[string]any{
		"groups":           out,
		"total_activities": len(records),
		"period_type":      period,
	}
}

// detailFields projects the named fields out of a record, dropping absent
// ones.
func detailFields(record any, names ...string) map[string]any {
	obj, ok := record.(map[string]any)
	if !ok {
		return map[string]any{}
	}
	out := make(map[string]any, len(names))
	for _, name := range names {
		if v, ok := obj[name]; ok && v != nil {
			out[name] = v
		}
	}
	return out
}

// dateRange reports the span covered by the result. The API returns
// activities newest first.
func dateRange(records []any) map[string]any {
	dr := map[string]any{"oldest": nil, "newest": nil}
	if len(records) == 0 {
		return dr
	}
	if s := transform.StringField(records[len(records)-1], "start_date_local"); s != "" {
		dr["oldest"] = s
	}
	if s := transform.StringField(records[0], "start_date_local"); s != "" {
		dr["newest"] = s
	}
	return dr
}
