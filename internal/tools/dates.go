package tools

import (
	"net/url"

	"github.com/hbastos/intervals-icu-mcp/internal/transform"
)

// ValidateDateRange checks the oldest/newest tool arguments: oldest is
// required, both must be YYYY-MM-DD, and newest may not precede oldest.
// Validation happens locally so malformed input never reaches the network.
func ValidateDateRange(oldest, newest string) error {
	if oldest == "" {
		return &ValidationError{Field: "oldest_date", Message: "required"}
	}
	oldestDay, err := transform.ParseDate(oldest)
	if err != nil {
		return &ValidationError{Field: "oldest_date", Message: "date must be in YYYY-MM-DD format"}
	}
	if newest == "" {
		return nil
	}
	newestDay, err := transform.ParseDate(newest)
	if err != nil {
		return &ValidationError{Field: "newest_date", Message: "date must be in YYYY-MM-DD format"}
	}
	if newestDay.Before(oldestDay) {
		return &ValidationError{Field: "newest_date", Message: "must not precede oldest_date"}
	}
	return nil
}

// DateParams builds the oldest/newest query parameters, omitting newest
// when not provided.
func DateParams(oldest, newest string) url.Values {
	params := url.Values{"oldest": {oldest}}
	if newest != "" {
		params.Set("newest", newest)
	}
	return params
}
