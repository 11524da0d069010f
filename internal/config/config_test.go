package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go.ngs.io/almanac-api/internal/usecase"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, PolicyFallbackTime, cfg.Almanac.NoEventPolicy)
	require.Equal(t, 366, cfg.Almanac.MaxRangeDays)
	require.False(t, cfg.Almanac.RoundToNearestMinute)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9000"
  readTimeout: 5s
almanac:
  roundToNearestMinute: true
  noEventPolicy: classification
  workers: 2
log:
  encoding: json
`)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("ALMANAC_SERVER_PORT", "9100")
	t.Setenv("ALMANAC_ALMANAC_MAX_RANGE_DAYS", "31")
	t.Setenv("ALMANAC_SERVER_CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "9100", cfg.Server.Port)
	require.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSAllowedOrigins)
	require.True(t, cfg.Almanac.RoundToNearestMinute)
	require.Equal(t, PolicyClassification, cfg.Almanac.NoEventPolicy)
	require.Equal(t, 2, cfg.Almanac.Workers)
	require.Equal(t, 31, cfg.Almanac.MaxRangeDays)
	require.Equal(t, "json", cfg.Log.Encoding)
	require.Equal(t, "06:00", cfg.Almanac.RiseFallback)
}

func TestLoad_InvalidFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", writeConfig(t, "server: [unterminated"))
	_, err := Load()
	require.Error(t, err)

	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err = Load()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty port", func(c *Config) { c.Server.Port = "" }},
		{"bad policy", func(c *Config) { c.Almanac.NoEventPolicy = "skip" }},
		{"bad rise fallback", func(c *Config) { c.Almanac.RiseFallback = "6am" }},
		{"bad set fallback", func(c *Config) { c.Almanac.SetFallback = "25:00" }},
		{"zero range", func(c *Config) { c.Almanac.MaxRangeDays = 0 }},
		{"zero workers", func(c *Config) { c.Almanac.Workers = 0 }},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }},
		{"bad encoding", func(c *Config) { c.Log.Encoding = "xml" }},
	}

	require.NoError(t, Default().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_PoliciesMatchUseCase(t *testing.T) {
	for _, policy := range []string{usecase.PolicyFallbackTime, usecase.PolicyClassification} {
		cfg := Default()
		cfg.Almanac.NoEventPolicy = policy
		require.NoError(t, cfg.Validate(), policy)
	}
}

func TestParseClock(t *testing.T) {
	d, err := ParseClock("06:30")
	require.NoError(t, err)
	require.Equal(t, 6*time.Hour+30*time.Minute, d)

	d, err = ParseClock(" 18:00 ")
	require.NoError(t, err)
	require.Equal(t, 18*time.Hour, d)

	_, err = ParseClock("18")
	require.Error(t, err)
}
