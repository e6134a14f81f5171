package config

import (
	"errors"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Setenv("INTERVALS_API_KEY", "test-key")
	t.Setenv("INTERVALS_ATHLETE_ID", "i12345")
	t.Setenv("INTERVALS_BASE_URL", "")
	t.Setenv("INTERVALS_TIMEOUT", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FORMAT", "")
	t.Setenv("ENVIRONMENT", "")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Intervals.BaseURL != "https://intervals.icu/api/v1" {
		t.Errorf("unexpected base URL: %s", cfg.Intervals.BaseURL)
	}
	if cfg.Intervals.APIKey != "test-key" {
		t.Errorf("unexpected api key: %s", cfg.Intervals.APIKey)
	}
	if cfg.Intervals.AthleteID != "i12345" {
		t.Errorf("unexpected athlete id: %s", cfg.Intervals.AthleteID)
	}
	if cfg.Intervals.Timeout != 30*time.Second {
		t.Errorf("unexpected timeout: %v", cfg.Intervals.Timeout)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("unexpected log config: %+v", cfg.Log)
	}
	if cfg.Environment != "production" {
		t.Errorf("unexpected environment: %s", cfg.Environment)
	}
}

func TestLoadMissingAPIKey(t *testing.T) {
	setRequired(t)
	t.Setenv("INTERVALS_API_KEY", "")

	_, err := Load()
	var cfgErr *Error
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *config.Error, got %v", err)
	}
	if cfgErr.Variable != "INTERVALS_API_KEY" {
		t.Errorf("expected INTERVALS_API_KEY, got %s", cfgErr.Variable)
	}
}

func TestLoadMissingAthleteID(t *testing.T) {
	setRequired(t)
	t.Setenv("INTERVALS_ATHLETE_ID", "")

	_, err := Load()
	var cfgErr *Error
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *config.Error, got %v", err)
	}
	if cfgErr.Variable != "INTERVALS_ATHLETE_ID" {
		t.Errorf("expected INTERVALS_ATHLETE_ID, got %s", cfgErr.Variable)
	}
}

func TestLoadBadAthleteIDFormat(t *testing.T) {
	setRequired(t)
	t.Setenv("INTERVALS_ATHLETE_ID", "335136")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for athlete id without i prefix")
	}
}

func TestLoadBaseURLValidation(t *testing.T) {
	cases := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"default kept", "", false},
		{"trailing slash stripped", "https://intervals.icu/api/v1/", false},
		{"ftp rejected", "ftp://intervals.icu", true},
		{"no host rejected", "https://", true},
		{"garbage rejected", "not a url", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv("INTERVALS_BASE_URL", tc.url)

			cfg, err := Load()
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tc.url)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.Intervals.BaseURL[len(cfg.Intervals.BaseURL)-1] == '/' {
				t.Errorf("base URL not normalized: %s", cfg.Intervals.BaseURL)
			}
		})
	}
}

func TestLoadTimeout(t *testing.T) {
	setRequired(t)
	t.Setenv("INTERVALS_TIMEOUT", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Intervals.Timeout != 5*time.Second {
		t.Errorf("expected 5s timeout, got %v", cfg.Intervals.Timeout)
	}

	t.Setenv("INTERVALS_TIMEOUT", "0")
	if _, err := Load(); err == nil {
		t.Error("expected error for zero timeout")
	}

	t.Setenv("INTERVALS_TIMEOUT", "abc")
	if _, err := Load(); err == nil {
		t.Error("expected error for non-numeric timeout")
	}
}

func TestLoadInvalidLogLevel(t *testing.T) {
	setRequired(t)
	t.Setenv("LOG_LEVEL", "verbose")

	if _, err := Load(); err == nil {
		t.Error("expected error for invalid log level")
	}
}

func TestLoadInvalidEnvironment(t *testing.T) {
	setRequired(t)
	t.Setenv("ENVIRONMENT", "staging")

	if _, err := Load(); err == nil {
		t.Error("expected error for invalid environment")
	}
}
