package config

import (
	"errors"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Lifx            LifxConfig     `yaml:"lifx"`
	Features        FeaturesConfig `yaml:"features"`
	Server          ServerConfig   `yaml:"server"`
	Log             LogConfig      `yaml:"log"`
	Ledger          LedgerConfig   `yaml:"ledger"`
	ShutdownTimeout Duration       `yaml:"shutdown_timeout"` // General shutdown timeout for graceful stops
}

// LifxConfig contains LIFX HTTP API settings
type LifxConfig struct {
	Token    string   `yaml:"token"`
	BaseURL  string   `yaml:"base_url"`
	Selector string   `yaml:"selector"` // Default selector when a request carries none
	Timeout  Duration `yaml:"timeout"`  // HTTP timeout for vendor API requests
}

// FeaturesConfig contains feature flags
type FeaturesConfig struct {
	// Breathe stays a string so that any value except "false" keeps the
	// effect enabled, matching how the flag is read from the environment.
	Breathe string `yaml:"breathe"`
}

// BreatheEnabled reports whether the breathe action is allowed
func (c *FeaturesConfig) BreatheEnabled() bool {
	return c.Breathe != "false"
}

// ServerConfig contains proxy HTTP server settings
type ServerConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Path      string `yaml:"path"`       // Route of the proxy endpoint
	StaticDir string `yaml:"static_dir"` // Built web UI, served at / when set
}

// LogConfig contains logging settings
type LogConfig struct {
	Level   string `yaml:"level"`
	Colors  *bool  `yaml:"colors"`
	UseJSON bool   `yaml:"json"`
}

// GetLevel returns the log level with default
func (c *LogConfig) GetLevel() string {
	if c.Level == "" {
		return "info"
	}
	return c.Level
}

// UseColors returns whether console output is colored (default: true)
func (c *LogConfig) UseColors() bool {
	return c.Colors == nil || *c.Colors
}

// LedgerConfig contains action ledger settings
type LedgerConfig struct {
	Enabled         bool     `yaml:"enabled"`
	Path            string   `yaml:"path"`
	RetentionDays   int      `yaml:"retention_days"`
	CleanupInterval Duration `yaml:"cleanup_interval"`
}

// Retention returns the retention window as a duration
func (c *LedgerConfig) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

// Duration is a wrapper around time.Duration for YAML unmarshalling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Load reads and parses the configuration file.
// An empty path skips the file and builds the config from defaults and environment.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}

		// Expand environment variables
		expanded := expandEnvVars(string(data))

		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	return &cfg, nil
}

// Validate checks settings that have no usable default
func (c *Config) Validate() error {
	if c.Lifx.Token == "" {
		return errors.New("lifx.token is required (set LIFX_API_TOKEN)")
	}
	if !strings.HasPrefix(c.Server.Path, "/") {
		return errors.New("server.path must start with /")
	}
	return nil
}

func applyDefaults(cfg *Config) {
	// LIFX defaults
	if cfg.Lifx.BaseURL == "" {
		cfg.Lifx.BaseURL = "https://api.lifx.com/v1"
	}
	cfg.Lifx.BaseURL = strings.TrimRight(cfg.Lifx.BaseURL, "/")
	if cfg.Lifx.Selector == "" {
		cfg.Lifx.Selector = "label:Vibes"
	}
	if cfg.Lifx.Timeout == 0 {
		cfg.Lifx.Timeout = Duration(10 * time.Second)
	}

	// Server defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 7071
	}
	if cfg.Server.Path == "" {
		cfg.Server.Path = "/api/VibeTriggers"
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	// Ledger defaults - the ledger is OFF unless enabled
	if cfg.Ledger.Path == "" {
		cfg.Ledger.Path = "./vibed.sqlite"
	}
	if cfg.Ledger.RetentionDays == 0 {
		cfg.Ledger.RetentionDays = 30
	}
	if cfg.Ledger.CleanupInterval == 0 {
		cfg.Ledger.CleanupInterval = Duration(24 * time.Hour)
	}

	// General shutdown timeout
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = Duration(5 * time.Second)
	}
}

// applyEnvOverrides lets the process environment win over the file
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LIFX_API_TOKEN"); v != "" {
		cfg.Lifx.Token = v
	}
	if v := os.Getenv("LIFX_API_BASE"); v != "" {
		cfg.Lifx.BaseURL = v
	}
	if v := os.Getenv("ENABLE_BREATHE_EFFECT"); v != "" {
		cfg.Features.Breathe = v
	}
}

// expandEnvVars expands environment variables in the format ${VAR} or ${VAR:default}
func expandEnvVars(input string) string {
	// Match ${VAR} or ${VAR:default}
	re := regexp.MustCompile(`\$\{([^}:]+)(?::([^}]*))?\}`)

	return re.ReplaceAllStringFunc(input, func(match string) string {
		parts := re.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := parts[1]
		defaultVal := ""
		if len(parts) >= 3 {
			defaultVal = parts[2]
		}

		if val := os.Getenv(varName); val != "" {
			return val
		}
		return defaultVal
	})
}
