package activities

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"reflect"
	"testing"

	"github.com/hbastos/intervals-icu-mcp/internal/intervals"
	"github.com/hbastos/intervals-icu-mcp/internal/tools"
)

type stubFetcher struct {
	lastPath   string
	lastParams url.Values
	calls      int
	body       any
	err        error
}

func (s *stubFetcher) Get(ctx context.Context, path string, params url.Values) (any, error) {
	s.calls++
	s.lastPath = path
	s.lastParams = params
	if s.err != nil {
		return nil, s.err
	}
	return s.body, nil
}

func listTool(f *stubFetcher) *ListTool {
	return GetTools(f)[0].(*ListTool)
}

func groupedTool(f *stubFetcher) *GroupedTool {
	return GetTools(f)[1].(*GroupedTool)
}

func TestGetToolsShape(t *testing.T) {
	ts := GetTools(&stubFetcher{})
	if len(ts) != 2 {
		t.Fatalf("expected 2 tools, got %d", len(ts))
	}
	names := []string{"get_activities", "get_grouped_activities"}
	for i, want := range names {
		if ts[i].Name() != want {
			t.Errorf("tool %d: expected %s, got %s", i, want, ts[i].Name())
		}
		if ts[i].Description() == "" {
			t.Errorf("tool %s: description should not be empty", want)
		}
		if len(ts[i].Schema()) == 0 {
			t.Errorf("tool %s: schema should not be empty", want)
		}
	}
}

func TestListBuildsQuery(t *testing.T) {
	f := &stubFetcher{body: []any{}}
	tool := listTool(f)

	_, err := tool.Execute(context.Background(), json.RawMessage(`{"oldest_date":"2025-07-28"}`))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if f.calls != 1 {
		t.Errorf("expected exactly 1 fetch, got %d", f.calls)
	}
	if f.lastPath != "/athlete/{id}/activities" {
		t.Errorf("unexpected path: %s", f.lastPath)
	}
	if f.lastParams.Get("oldest") != "2025-07-28" {
		t.Errorf("unexpected oldest: %s", f.lastParams.Get("oldest"))
	}
	if _, ok := f.lastParams["newest"]; ok {
		t.Error("newest must be omitted when not provided")
	}
}

func TestListBuildsQueryWithNewest(t *testing.T) {
	f := &stubFetcher{body: []any{}}
	tool := listTool(f)

	input := json.RawMessage(`{"oldest_date":"2025-07-01","newest_date":"2025-07-28"}`)
	if _, err := tool.Execute(context.Background(), input); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if f.lastParams.Get("oldest") != "2025-07-01" || f.lastParams.Get("newest") != "2025-07-28" {
		t.Errorf("unexpected params: %v", f.lastParams)
	}
}

func TestListCleansRecords(t *testing.T) {
	f := &stubFetcher{body: []any{
		map[string]any{"id": float64(1), "name": "", "laps": []any{}, "power": float64(0), "notes": nil},
	}}
	tool := listTool(f)

	got, err := tool.Execute(context.Background(), json.RawMessage(`{"oldest_date":"2025-07-28"}`))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	want := []any{map[string]any{"id": float64(1), "power": float64(0)}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Execute() = %v, want %v", got, want)
	}
}

func TestListValidation(t *testing.T) {
	cases := []struct {
		name  string
		input string
		field string
	}{
		{"missing oldest", `{}`, "oldest_date"},
		{"bad oldest format", `{"oldest_date":"28-07-2025"}`, "oldest_date"},
		{"bad newest format", `{"oldest_date":"2025-07-01","newest_date":"july"}`, "newest_date"},
		{"newest before oldest", `{"oldest_date":"2025-07-28","newest_date":"2025-07-01"}`, "newest_date"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := &stubFetcher{body: []any{}}
			tool := listTool(f)

			_, err := tool.Execute(context.Background(), json.RawMessage(tc.input))
			var vErr *tools.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if vErr.Field != tc.field {
				t.Errorf("expected field %s, got %s", tc.field, vErr.Field)
			}
			if f.calls != 0 {
				t.Error("validation failure must not reach the network")
			}
		})
	}
}

func TestListPropagatesUpstreamError(t *testing.T) {
	f := &stubFetcher{err: &intervals.APIError{StatusCode: 401, Kind: intervals.KindAuthentication}}
	tool := listTool(f)

	_, err := tool.Execute(context.Background(), json.RawMessage(`{"oldest_date":"2025-07-28"}`))

	var apiErr *intervals.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != 401 {
		t.Errorf("expected status 401, got %d", apiErr.StatusCode)
	}
	if f.calls != 1 {
		t.Errorf("expected exactly 1 fetch, got %d", f.calls)
	}
}

func TestListNonListBody(t *testing.T) {
	f := &stubFetcher{body: map[string]any{"error": "unexpected"}}
	tool := listTool(f)

	got, err := tool.Execute(context.Background(), json.RawMessage(`{"oldest_date":"2025-07-28"}`))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if list, ok := got.([]any); !ok || len(list) != 0 {
		t.Errorf("expected empty list, got %v", got)
	}
}

func sampleActivities() []any {
	return []any{
		map[string]any{
			"id": "a3", "type": "Ride", "start_date_local": "2025-07-20T09:00:00",
			"moving_time": float64(3600), "distance": float64(30000), "icu_elevation_gain": float64(400),
		},
		map[string]any{
			"id": "a2", "type": "Run", "start_date_local": "2025-07-15T07:00:00",
			"moving_time": float64(1800), "distance": float64(5000),
		},
		map[string]any{
			"id": "a1", "type": "Ride", "start_date_local": "2025-07-01T09:00:00",
			"moving_time": float64(7200), "distance": float64(60000), "icu_elevation_gain": float64(900),
		},
	}
}

func TestGroupedBySport(t *testing.T) {
	f := &stubFetcher{body: sampleActivities()}
	tool := groupedTool(f)

	got, err := tool.Execute(context.Background(), json.RawMessage(`{"oldest_date":"2025-07-01"}`))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	result := got.(map[string]any)
	if result["total_activities"] != 3 {
		t.Errorf("expected 3 total activities, got %v", result["total_activities"])
	}

	groups := result["groups"].(map[string]any)
	ride := groups["Ride"].(*sportGroup)
	if ride.Count != 2 {
		t.Errorf("expected 2 rides, got %d", ride.Count)
	}
	if ride.TotalDuration != 10800 {
		t.Errorf("expected ride duration 10800, got %v", ride.TotalDuration)
	}
	if ride.TotalElevation != 1300 {
		t.Errorf("expected ride elevation 1300, got %v", ride.TotalElevation)
	}
	if ride.Activities != nil {
		t.Error("details must be omitted by default")
	}

	dr := result["date_range"].(map[string]any)
	if dr["oldest"] != "2025-07-01T09:00:00" || dr["newest"] != "2025-07-20T09:00:00" {
		t.Errorf("unexpected date range: %v", dr)
	}
}

func TestGroupedBySportWithDetails(t *testing.T) {
	f := &stubFetcher{body: sampleActivities()}
	tool := groupedTool(f)

	input := json.RawMessage(`{"oldest_date":"2025-07-01","include_details":true}`)
	got, err := tool.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	groups := got.(map[string]any)["groups"].(map[string]any)
	run := groups["Run"].(*sportGroup)
	if len(run.Activities) != 1 {
		t.Fatalf("expected 1 run detail, got %d", len(run.Activities))
	}
	detail := run.Activities[0].(map[string]any)
	if detail["id"] != "a2" || detail["distance"] != float64(5000) {
		t.Errorf("unexpected detail: %v", detail)
	}
}

func TestGroupedByWeek(t *testing.T) {
	f := &stubFetcher{body: sampleActivities()}
	tool := groupedTool(f)

	input := json.RawMessage(`{"oldest_date":"2025-07-01","group_by":"week"}`)
	got, err := tool.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	result := got.(map[string]any)
	if result["period_type"] != "week" {
		t.Errorf("expected period_type week, got %v", result["period_type"])
	}

	groups := result["groups"].(map[string]any)
	// 2025-07-20 is ISO week 29; 2025-07-15 week 29; 2025-07-01 week 27.
	week29, ok := groups["2025-W29"].(*periodGroup)
	if !ok {
		t.Fatalf("missing week 29 group, got keys %v", groups)
	}
	if week29.Count != 2 {
		t.Errorf("expected 2 activities in week 29, got %d", week29.Count)
	}
	if !reflect.DeepEqual(week29.Sports, []string{"Ride", "Run"}) {
		t.Errorf("unexpected sports: %v", week29.Sports)
	}
}

func TestGroupedByMonthAndDay(t *testing.T) {
	f := &stubFetcher{body: sampleActivities()}
	tool := groupedTool(f)

	got, err := tool.Execute(context.Background(),
		json.RawMessage(`{"oldest_date":"2025-07-01","group_by":"month"}`))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	groups := got.(map[string]any)["groups"].(map[string]any)
	if g, ok := groups["2025-07"].(*periodGroup); !ok || g.Count != 3 {
		t.Errorf("expected single month group of 3, got %v", groups)
	}

	got, err = tool.Execute(context.Background(),
		json.RawMessage(`{"oldest_date":"2025-07-01","group_by":"day"}`))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	groups = got.(map[string]any)["groups"].(map[string]any)
	if len(groups) != 3 {
		t.Errorf("expected 3 day groups, got %d", len(groups))
	}
}

func TestGroupedInvalidGroupBy(t *testing.T) {
	f := &stubFetcher{body: []any{}}
	tool := groupedTool(f)

	input := json.RawMessage(`{"oldest_date":"2025-07-01","group_by":"year"}`)
	_, err := tool.Execute(context.Background(), input)

	var vErr *tools.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if vErr.Field != "group_by" {
		t.Errorf("expected field group_by, got %s", vErr.Field)
	}
	if f.calls != 0 {
		t.Error("invalid group_by must not reach the network")
	}
}
