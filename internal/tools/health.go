package tools

import (
	"context"
	"encoding/json"

	"github.com/hbastos/intervals-icu-mcp/pkg/version"
)

// HealthTool reports server liveness and which athlete the server is bound
// to, without touching the upstream API.
type HealthTool struct {
	athleteID string
}

func NewHealthTool(athleteID string) *HealthTool {
	return &HealthTool{athleteID: athleteID}
}

func (t *HealthTool) Name() string {
	return "health"
}

func (t *HealthTool) Description() string {
	return "Check server health and configured athlete"
}

func (t *HealthTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {},
		"required": []
	}`)
}

func (t *HealthTool) Execute(ctx context.Context, input json.RawMessage) (any, error) {
	return map[string]any{
		"status":     "healthy",
		"version":    version.Version,
		"athlete_id": t.athleteID,
	}, nil
}
