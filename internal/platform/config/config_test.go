package config

import (
	"os"
	"testing"
	"time"
)

const (
	testEnvPostgresDSN = "POSTGRES_DSN"
	testPostgresDSN    = "postgres://localhost/test"
	testErrLoad        = "Load() error = %v"
)

func setRequiredEnvVars(t *testing.T) {
	t.Helper()

	t.Setenv(testEnvPostgresDSN, testPostgresDSN)
}

func TestLoad_MissingRequired(t *testing.T) {
	os.Unsetenv(testEnvPostgresDSN)

	_, err := Load()
	if err == nil {
		t.Error("expected error for missing POSTGRES_DSN")
	}
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnvVars(t)

	for _, key := range []string{
		"APP_ENV", "MAX_ITEMS_PER_CATEGORY", "MAX_LIVE_ITEMS", "LIVE_TTL", "LIVE_NEWS_TTL",
		"MIN_SAVE_SCORE", "ARCHIVE_MIN_SCORE", "ARCHIVE_SCORE", "ARCHIVE_TOP_RANK",
		"KEYWORD_COOLDOWN", "PLACEHOLDER_IMAGE_HOSTS", "HEALTH_PORT",
	} {
		os.Unsetenv(key)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	if cfg.AppEnv != "local" {
		t.Errorf("AppEnv default = %q, want %q", cfg.AppEnv, "local")
	}

	if cfg.MaxItemsPerCategory != 30 {
		t.Errorf("MaxItemsPerCategory default = %d, want 30", cfg.MaxItemsPerCategory)
	}

	if cfg.LiveTTL != 24*time.Hour {
		t.Errorf("LiveTTL default = %v, want 24h", cfg.LiveTTL)
	}

	if cfg.MinSaveScore != 4.0 {
		t.Errorf("MinSaveScore default = %v, want 4.0", cfg.MinSaveScore)
	}

	if cfg.ArchiveMinScore != 7.0 {
		t.Errorf("ArchiveMinScore default = %v, want 7.0", cfg.ArchiveMinScore)
	}

	if cfg.ArchiveTopRank != 3 {
		t.Errorf("ArchiveTopRank default = %d, want 3", cfg.ArchiveTopRank)
	}

	if cfg.KeywordCooldown != 4*time.Hour {
		t.Errorf("KeywordCooldown default = %v, want 4h", cfg.KeywordCooldown)
	}

	if len(cfg.PlaceholderImageHosts) != 1 || cfg.PlaceholderImageHosts[0] != "placehold.co" {
		t.Errorf("PlaceholderImageHosts default = %v, want [placehold.co]", cfg.PlaceholderImageHosts)
	}

	if cfg.HealthPort != 8080 {
		t.Errorf("HealthPort default = %d, want 8080", cfg.HealthPort)
	}
}

func TestLoad_LegacyAliases(t *testing.T) {
	setRequiredEnvVars(t)
	os.Unsetenv("MAX_ITEMS_PER_CATEGORY")
	os.Unsetenv("LIVE_TTL")
	t.Setenv("MAX_LIVE_ITEMS", "50")
	t.Setenv("LIVE_NEWS_TTL", "12h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	if cfg.MaxItemsPerCategory != 50 {
		t.Errorf("MaxItemsPerCategory = %d, want 50", cfg.MaxItemsPerCategory)
	}

	if cfg.LiveTTL != 12*time.Hour {
		t.Errorf("LiveTTL = %v, want 12h", cfg.LiveTTL)
	}
}

func TestLoad_ExplicitValueWinsOverAlias(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("MAX_ITEMS_PER_CATEGORY", "20")
	t.Setenv("MAX_LIVE_ITEMS", "50")

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	if cfg.MaxItemsPerCategory != 20 {
		t.Errorf("MaxItemsPerCategory = %d, want 20", cfg.MaxItemsPerCategory)
	}
}

func TestLoad_InvalidNumeric(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("MAX_ITEMS_PER_CATEGORY", "thirty")

	_, err := Load()
	if err == nil {
		t.Error("expected error for invalid MAX_ITEMS_PER_CATEGORY")
	}
}
