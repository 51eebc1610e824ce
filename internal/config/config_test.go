package config

import (
	"errors"
	"testing"
	"time"

	"pet-wellness/internal/platform/logger"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(envMap(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != DefaultPort || cfg.Addr() != ":8080" {
		t.Fatalf("port=%q", cfg.Port)
	}
	if cfg.CacheTTL != DefaultCacheTTL {
		t.Fatalf("ttl=%v", cfg.CacheTTL)
	}
	if cfg.LogLevel != logger.Info || cfg.LogFormat != logger.FormatText {
		t.Fatalf("log=%v/%v", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.Location() != time.UTC {
		t.Fatalf("location=%v", cfg.Location())
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(envMap(map[string]string{
		"PORT":                     "9090",
		"SQLITE_PATH":              "/tmp/w.db",
		"REDIS_ADDR":               "localhost:6379",
		"REDIS_DB":                 "2",
		"CACHE_TTL":                "90s",
		"LOG_LEVEL":                "debug",
		"LOG_FORMAT":               "json",
		"TZ_NAME":                  "Europe/Rome",
		"WELLNESS_MOOD_MULTIPLIER": "12",
		"WELLNESS_GUM_CRITICAL":    "-40",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RedisDB != 2 || cfg.CacheTTL != 90*time.Second || cfg.SQLitePath != "/tmp/w.db" {
		t.Fatalf("cfg=%+v", cfg)
	}
	if cfg.LogLevel != logger.Debug || cfg.LogFormat != logger.FormatJSON {
		t.Fatalf("log=%v/%v", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.Location().String() != "Europe/Rome" {
		t.Fatalf("location=%v", cfg.Location())
	}

	w := cfg.Weights()
	if w.MoodMultiplier != 12 || w.GumCritical != -40 {
		t.Fatalf("weights=%+v", w)
	}
	if w.VitalCritical != -25 {
		t.Fatalf("untouched weight changed: %v", w.VitalCritical)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"port":           {"PORT": "http"},
		"redis db":       {"REDIS_DB": "x"},
		"ttl":            {"CACHE_TTL": "soon"},
		"negative ttl":   {"CACHE_TTL": "-1m"},
		"tz":             {"TZ_NAME": "Mars/Olympus"},
		"weight":         {"WELLNESS_VITAL_WARNING": "abc"},
		"positive crit":  {"WELLNESS_VITAL_CRITICAL": "10"},
		"zero mood mult": {"WELLNESS_MOOD_MULTIPLIER": "0"},
		"auth half":      {"AUTH_VERIFY_URL": "http://auth"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := load(envMap(env)); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}
