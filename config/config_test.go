package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/linkup/librelinkup"
)

func validConfig() *Config {
	return &Config{
		LibreLinkUp: LibreLinkUpConfig{
			Email:    "user@example.com",
			Password: "secret",
			Region:   "eu",
			Profile:  "ios",
			Timeout:  30 * time.Second,
		},
		History:     HistoryConfig{Periods: 5, Period: 14},
		Concurrency: 4,
		Logging:     LoggingConfig{Level: "info", Format: "console"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(cfg *Config)
		errContains string
	}{
		{name: "valid", mutate: func(cfg *Config) {}},
		{name: "global region", mutate: func(cfg *Config) { cfg.LibreLinkUp.Region = "" }},
		{name: "bad region", mutate: func(cfg *Config) { cfg.LibreLinkUp.Region = "eu.evil.com/" }, errContains: "librelinkup.region"},
		{name: "unknown profile", mutate: func(cfg *Config) { cfg.LibreLinkUp.Profile = "windows" }, errContains: "librelinkup.profile"},
		{name: "zero timeout", mutate: func(cfg *Config) { cfg.LibreLinkUp.Timeout = 0 }, errContains: "timeout"},
		{
			name:        "token without user id on ios",
			mutate:      func(cfg *Config) { cfg.LibreLinkUp.Token = "tok" },
			errContains: "user_id",
		},
		{
			name: "token without user id on android",
			mutate: func(cfg *Config) {
				cfg.LibreLinkUp.Token = "tok"
				cfg.LibreLinkUp.Profile = "android"
			},
		},
		{name: "mmol units", mutate: func(cfg *Config) { cfg.Display.Units = "mmol/L" }},
		{name: "bad units", mutate: func(cfg *Config) { cfg.Display.Units = "stones" }, errContains: "display.units"},
		{name: "negative limit", mutate: func(cfg *Config) { cfg.Display.Limit = -1 }, errContains: "display.limit"},
		{name: "zero periods", mutate: func(cfg *Config) { cfg.History.Periods = 0 }, errContains: "history"},
		{name: "concurrency too high", mutate: func(cfg *Config) { cfg.Concurrency = 50 }, errContains: "concurrency"},
		{name: "empty preset", mutate: func(cfg *Config) { cfg.Filter = FilterConfig{"x": " "} }, errContains: "filter preset"},
		{name: "bad level", mutate: func(cfg *Config) { cfg.Logging.Level = "loud" }, errContains: "logging level"},
		{name: "bad format", mutate: func(cfg *Config) { cfg.Logging.Format = "xml" }, errContains: "logging format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := validate(cfg)
			if tt.errContains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestParseUnits(t *testing.T) {
	unit, err := ParseUnits("")
	require.NoError(t, err)
	assert.Nil(t, unit)

	for _, s := range []string{"mg/dL", "MGDL", "mg"} {
		unit, err := ParseUnits(s)
		require.NoError(t, err, s)
		assert.Equal(t, librelinkup.UnitMgPerDl, *unit)
	}

	unit, err = ParseUnits("mmol / L")
	require.NoError(t, err)
	assert.Equal(t, librelinkup.UnitMmolPerL, *unit)

	_, err = ParseUnits("kg")
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
librelinkup:
  email: file@example.com
  password: from-file
  region: EU
  timeout: 10s
display:
  units: mmol/L
  limit: 12
filter:
  spike: ValueMgDl > 250
logging:
  level: DEBUG
`), 0o600))

	t.Setenv("LINKUP_LIBRELINKUP_PASSWORD", "from-env")

	cfg, err := Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, "file@example.com", cfg.LibreLinkUp.Email)
	assert.Equal(t, "from-env", cfg.LibreLinkUp.Password, "environment wins over file")
	assert.Equal(t, "eu", cfg.LibreLinkUp.Region)
	assert.Equal(t, "ios", cfg.LibreLinkUp.Profile)
	assert.Equal(t, 10*time.Second, cfg.LibreLinkUp.Timeout)
	assert.Equal(t, "mmol/L", cfg.Display.Units)
	assert.Equal(t, 12, cfg.Display.Limit)
	assert.Equal(t, 5, cfg.History.Periods)
	assert.Equal(t, 14, cfg.History.Period)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, "ValueMgDl > 250", cfg.Filter["spike"])
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("LINKUP_LIBRELINKUP_EMAIL=dotenv@example.com\n"), 0o600))
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: warn\n"), 0o600))

	// godotenv does not override variables that are already set
	t.Setenv("LINKUP_LIBRELINKUP_EMAIL", "")
	require.NoError(t, os.Unsetenv("LINKUP_LIBRELINKUP_EMAIL"))

	cfg, err := Load(path, envFile)
	require.NoError(t, err)
	assert.Equal(t, "dotenv@example.com", cfg.LibreLinkUp.Email)
	assert.Equal(t, "warn", cfg.Logging.Level)

	assert.NoError(t, loadDotEnv(filepath.Join(dir, "missing.env")))
	assert.NoError(t, loadDotEnv(""))
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"), "")
	assert.Error(t, err, "explicit config path must exist")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("librelinkup:\n  profile: nokia\n"), 0o600))
	_, err = Load(bad, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}
