package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	LibreLinkUp LibreLinkUpConfig `mapstructure:"librelinkup"`
	Display     DisplayConfig     `mapstructure:"display"`
	History     HistoryConfig     `mapstructure:"history"`
	Filter      FilterConfig      `mapstructure:"filter"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Concurrency int               `mapstructure:"concurrency"`
}

// LibreLinkUpConfig holds account credentials and connection details.
// Token and UserID skip the login round trip when both are set.
type LibreLinkUpConfig struct {
	Email    string        `mapstructure:"email"`
	Password string        `mapstructure:"password"`
	Token    string        `mapstructure:"token"`
	UserID   string        `mapstructure:"user_id"`
	Region   string        `mapstructure:"region"`
	Profile  string        `mapstructure:"profile"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// HasToken reports whether a stored session can be used
func (c LibreLinkUpConfig) HasToken() bool {
	return c.Token != ""
}

// DisplayConfig controls console output
type DisplayConfig struct {
	// Units is "mg/dL", "mmol/L" or empty for the patient's preference
	Units string `mapstructure:"units"`
	// Limit caps the number of readings printed per series
	Limit int `mapstructure:"limit"`
}

// HistoryConfig holds glucose history defaults
type HistoryConfig struct {
	Periods int `mapstructure:"periods"`
	Period  int `mapstructure:"period"`
}

// FilterConfig contains named filter presets
type FilterConfig map[string]string

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
