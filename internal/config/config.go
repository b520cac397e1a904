package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the full runtime configuration, resolved once at startup and
// passed into constructors. Nothing in the core reads the environment
// directly.
type Config struct {
	Addr                  string `mapstructure:"ADDR"`
	Salt                  string `mapstructure:"SALT"`
	StorePlaintextRUT     bool   `mapstructure:"STORE_PLAINTEXT_RUT"`
	DataDir               string `mapstructure:"DATA_DIR"`
	ItemsFile             string `mapstructure:"ITEMS_FILE"`
	AuditDB               string `mapstructure:"AUDIT_DB"`
	GoogleCredentialsFile string `mapstructure:"GOOGLE_CREDENTIALS_FILE"`
	GoogleSheetID         string `mapstructure:"GOOGLE_SHEET_ID"`
	GoogleSheetWorksheet  string `mapstructure:"GOOGLE_SHEET_WORKSHEET"`
	RemoteTimeoutSeconds  int    `mapstructure:"REMOTE_TIMEOUT_SECONDS"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("ADDR", ":8080")
	v.SetDefault("DATA_DIR", "data")
	v.SetDefault("ITEMS_FILE", "snot22_items.csv")
	v.SetDefault("AUDIT_DB", "data/audit.db")
	v.SetDefault("GOOGLE_SHEET_WORKSHEET", "Respuestas")
	v.SetDefault("REMOTE_TIMEOUT_SECONDS", 15)

	// Bind env vars explicitly so Unmarshal picks them up
	for _, key := range []string{
		"ADDR", "SALT", "STORE_PLAINTEXT_RUT", "DATA_DIR", "ITEMS_FILE",
		"AUDIT_DB", "GOOGLE_CREDENTIALS_FILE", "GOOGLE_SHEET_ID",
		"GOOGLE_SHEET_WORKSHEET", "REMOTE_TIMEOUT_SECONDS",
	} {
		_ = v.BindEnv(key)
	}

	// .env is optional
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// RemoteEnabled reports whether the Google Sheets sink should be attempted:
// both the credential file and the sheet id must be present.
func (c *Config) RemoteEnabled() bool {
	return c.GoogleCredentialsFile != "" && c.GoogleSheetID != ""
}

// RemoteTimeout returns the per-call deadline for the remote sink.
func (c *Config) RemoteTimeout() time.Duration {
	if c.RemoteTimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.RemoteTimeoutSeconds) * time.Second
}
