package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/s0up4200/linkup/librelinkup"
	"github.com/s0up4200/linkup/readings"
)

// EnvPrefix is prepended to every environment variable, e.g. LINKUP_LIBRELINKUP_EMAIL
const EnvPrefix = "LINKUP"

// Load loads the configuration from file, .env and the environment.
// A missing config file is not an error unless configPath names one.
func Load(configPath, envFile string) (*Config, error) {
	if err := loadDotEnv(envFile); err != nil {
		return nil, fmt.Errorf("error loading env file: %w", err)
	}

	v := viper.New()

	setDefaults(v)
	bindEnv(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		v.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".linkup"))
		}

		v.AddConfigPath("/etc/linkup/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || configPath != "" {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	normalize(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadDotEnv loads environment variables from path. Missing files are ignored.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// LibreLinkUp defaults
	v.SetDefault("librelinkup.region", "")
	v.SetDefault("librelinkup.profile", librelinkup.DefaultProfile.Name)
	v.SetDefault("librelinkup.timeout", "30s")

	// Display defaults
	v.SetDefault("display.units", "")
	v.SetDefault("display.limit", 0)

	// History defaults
	v.SetDefault("history.periods", 5)
	v.SetDefault("history.period", 14)

	v.SetDefault("concurrency", readings.DefaultConcurrency)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// bindEnv maps LINKUP_* variables onto config keys, including keys without defaults
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, key := range []string{
		"librelinkup.email",
		"librelinkup.password",
		"librelinkup.token",
		"librelinkup.user_id",
	} {
		_ = v.BindEnv(key)
	}
}

func normalize(cfg *Config) {
	cfg.LibreLinkUp.Email = strings.TrimSpace(cfg.LibreLinkUp.Email)
	cfg.LibreLinkUp.Region = strings.ToLower(strings.TrimSpace(cfg.LibreLinkUp.Region))
	cfg.LibreLinkUp.Profile = strings.ToLower(strings.TrimSpace(cfg.LibreLinkUp.Profile))
	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)
	cfg.Logging.Format = strings.ToLower(cfg.Logging.Format)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if !librelinkup.ValidRegion(cfg.LibreLinkUp.Region) {
		return fmt.Errorf("invalid librelinkup.region: %q", cfg.LibreLinkUp.Region)
	}

	if _, err := librelinkup.ProfileByName(cfg.LibreLinkUp.Profile); err != nil {
		return fmt.Errorf("invalid librelinkup.profile: %w", err)
	}

	if cfg.LibreLinkUp.Timeout <= 0 {
		return fmt.Errorf("librelinkup.timeout must be positive")
	}

	if cfg.LibreLinkUp.Token != "" && cfg.LibreLinkUp.UserID == "" {
		profile, _ := librelinkup.ProfileByName(cfg.LibreLinkUp.Profile)
		if profile.SendAccountID {
			return fmt.Errorf("librelinkup.user_id is required with librelinkup.token for the %s profile", profile.Name)
		}
	}

	if _, err := ParseUnits(cfg.Display.Units); err != nil {
		return err
	}

	if cfg.Display.Limit < 0 {
		return fmt.Errorf("display.limit must not be negative")
	}

	if cfg.History.Periods <= 0 || cfg.History.Period <= 0 {
		return fmt.Errorf("history.periods and history.period must be positive")
	}

	if cfg.Concurrency < 1 || cfg.Concurrency > readings.MaxConcurrency {
		return fmt.Errorf("concurrency must be between 1 and %d", readings.MaxConcurrency)
	}

	for name, expression := range cfg.Filter {
		if strings.TrimSpace(expression) == "" {
			return fmt.Errorf("filter preset %q is empty", name)
		}
	}

	// Validate logging level
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}

// ParseUnits maps a display.units value to a unit. Empty means the patient's
// own preference and returns nil.
func ParseUnits(s string) (*librelinkup.GlucoseUnit, error) {
	var unit librelinkup.GlucoseUnit
	switch strings.ToLower(strings.ReplaceAll(s, " ", "")) {
	case "":
		return nil, nil
	case "mg/dl", "mgdl", "mg":
		unit = librelinkup.UnitMgPerDl
	case "mmol/l", "mmol", "mmoll":
		unit = librelinkup.UnitMmolPerL
	default:
		return nil, fmt.Errorf("invalid display.units: %s (must be 'mg/dL' or 'mmol/L')", s)
	}
	return &unit, nil
}
