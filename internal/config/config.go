package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://intervals.icu/api/v1"

// Error reports a missing or malformed environment variable. Configuration
// problems are fatal at startup: the server refuses to serve with bad
// credentials rather than failing on the first tool call.
type Error struct {
	Variable string
	Message  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Variable, e.Message)
}

// IntervalsConfig holds everything needed to talk to the intervals.icu API.
// Values are read once at startup and never mutated afterwards.
type IntervalsConfig struct {
	BaseURL   string
	APIKey    string
	AthleteID string
	Timeout   time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

type Config struct {
	Intervals   IntervalsConfig
	Log         LogConfig
	Environment string
}

// Load reads configuration from the environment.
//
// Required: INTERVALS_API_KEY, INTERVALS_ATHLETE_ID (athlete ids look like
// "i335136"). Optional: INTERVALS_BASE_URL, INTERVALS_TIMEOUT (seconds),
// LOG_LEVEL, LOG_FORMAT, ENVIRONMENT.
func Load() (*Config, error) {
	apiKey := os.Getenv("INTERVALS_API_KEY")
	if apiKey == "" {
		return nil, &Error{
			Variable: "INTERVALS_API_KEY",
			Message:  "required; export a valid API key from intervals.icu settings",
		}
	}

	athleteID := os.Getenv("INTERVALS_ATHLETE_ID")
	if athleteID == "" {
		return nil, &Error{
			Variable: "INTERVALS_ATHLETE_ID",
			Message:  "required; export a valid athlete id (e.g. \"i335136\")",
		}
	}
	if !strings.HasPrefix(athleteID, "i") {
		return nil, &Error{
			Variable: "INTERVALS_ATHLETE_ID",
			Message:  fmt.Sprintf("invalid athlete id %q; should start with \"i\"", athleteID),
		}
	}

	baseURL := os.Getenv("INTERVALS_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, &Error{
			Variable: "INTERVALS_BASE_URL",
			Message:  fmt.Sprintf("invalid base URL %q", baseURL),
		}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, &Error{
			Variable: "INTERVALS_BASE_URL",
			Message:  fmt.Sprintf("invalid scheme %q; use http or https", parsed.Scheme),
		}
	}
	baseURL = strings.TrimRight(baseURL, "/")

	timeout := 30 * time.Second
	if v := os.Getenv("INTERVALS_TIMEOUT"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			return nil, &Error{
				Variable: "INTERVALS_TIMEOUT",
				Message:  fmt.Sprintf("invalid timeout %q; must be a positive number of seconds", v),
			}
		}
		timeout = time.Duration(secs) * time.Second
	}

	logLevel := strings.ToLower(os.Getenv("LOG_LEVEL"))
	if logLevel == "" {
		logLevel = "info"
	}
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, &Error{
			Variable: "LOG_LEVEL",
			Message:  fmt.Sprintf("invalid log level %q", logLevel),
		}
	}

	logFormat := strings.ToLower(os.Getenv("LOG_FORMAT"))
	if logFormat == "" {
		logFormat = "text"
	}
	switch logFormat {
	case "text", "json":
	default:
		return nil, &Error{
			Variable: "LOG_FORMAT",
			Message:  fmt.Sprintf("invalid log format %q", logFormat),
		}
	}

	environment := strings.ToLower(os.Getenv("ENVIRONMENT"))
	if environment == "" {
		environment = "production"
	}
	switch environment {
	case "development", "testing", "production":
	default:
		return nil, &Error{
			Variable: "ENVIRONMENT",
			Message:  fmt.Sprintf("invalid environment %q", environment),
		}
	}

	return &Config{
		Intervals: IntervalsConfig{
			BaseURL:   baseURL,
			APIKey:    apiKey,
			AthleteID: athleteID,
			Timeout:   timeout,
		},
		Log: LogConfig{
			Level:  logLevel,
			Format: logFormat,
		},
		Environment: environment,
	}, nil
}
