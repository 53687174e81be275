package config

import (
	"testing"
	"time"
)

func TestFromViperDefaults(t *testing.T) {
	cfg, err := FromViper(New())
	if err != nil {
		t.Fatalf("FromViper: %v", err)
	}
	if cfg.BaseURL != "https://httpbin.org" {
		t.Fatalf("unexpected default base url %q", cfg.BaseURL)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Fatalf("unexpected default timeout %s", cfg.RequestTimeout)
	}
	if cfg.HistoryTTL != 7*24*time.Hour {
		t.Fatalf("unexpected history ttl %s", cfg.HistoryTTL)
	}
}

func TestFromViperEnvironment(t *testing.T) {
	t.Setenv("ROY_BASE_URL", "http://api.local/rest/v1")
	t.Setenv("ROY_AUTH_TOKEN", "Bearer t")
	t.Setenv("ROY_REQUEST_TIMEOUT_SECONDS", "0")
	t.Setenv("ROY_HISTORY_TYPE", "none")

	cfg, err := FromViper(New())
	if err != nil {
		t.Fatalf("FromViper: %v", err)
	}
	if cfg.BaseURL != "http://api.local/rest/v1" || cfg.AuthToken != "Bearer t" {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.RequestTimeout != 0 {
		t.Fatalf("expected disabled timeout, got %s", cfg.RequestTimeout)
	}
	if cfg.HistoryType != "none" {
		t.Fatalf("unexpected history type %q", cfg.HistoryType)
	}
}

func TestFromViperRejectsInvalidDurations(t *testing.T) {
	cases := map[string]string{
		"ROY_REQUEST_TIMEOUT_SECONDS":          "-1",
		"ROY_HISTORY_TTL_SECONDS":              "0",
		"ROY_HISTORY_CLEANUP_INTERVAL_SECONDS": "-5",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			if _, err := FromViper(New()); err == nil {
				t.Fatalf("expected error for %s=%s", key, val)
			}
		})
	}
}
