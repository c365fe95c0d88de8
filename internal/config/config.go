package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Guide     GuideConfig     `yaml:"guide"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	// DSN is either a postgres:// URL or a SQLite file path.
	DSN string `yaml:"dsn"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

type GuideConfig struct {
	// BeepVolume is the tone volume in percent, 0-100. 0 silences beeps.
	BeepVolume int `yaml:"beep_volume"`
	// AutomaticMetronome starts the metronome on timed sets without a
	// manual toggle.
	AutomaticMetronome bool `yaml:"automatic_metronome"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix VALENS_ and underscore-separated paths:
//
//	VALENS_SERVER_HOST, VALENS_SERVER_PORT,
//	VALENS_DB_DSN, VALENS_AUTH_API_KEY,
//	VALENS_TS_ENABLED, VALENS_TS_HOSTNAME, VALENS_TS_STATE_DIR,
//	VALENS_GUIDE_BEEP_VOLUME, VALENS_GUIDE_AUTOMATIC_METRONOME
func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{Port: 8080},
		Guide:  GuideConfig{BeepVolume: 100},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("VALENS_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("VALENS_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("VALENS_DB_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("VALENS_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("VALENS_TS_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = enabled
		}
	}
	if v := os.Getenv("VALENS_TS_HOSTNAME"); v != "" {
		cfg.Tailscale.Hostname = v
	}
	if v := os.Getenv("VALENS_TS_STATE_DIR"); v != "" {
		cfg.Tailscale.StateDir = v
	}
	if v := os.Getenv("VALENS_GUIDE_BEEP_VOLUME"); v != "" {
		if volume, err := strconv.Atoi(v); err == nil {
			cfg.Guide.BeepVolume = volume
		}
	}
	if v := os.Getenv("VALENS_GUIDE_AUTOMATIC_METRONOME"); v != "" {
		if automatic, err := strconv.ParseBool(v); err == nil {
			cfg.Guide.AutomaticMetronome = automatic
		}
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.Guide.BeepVolume < 0 || c.Guide.BeepVolume > 100 {
		return fmt.Errorf("guide.beep_volume must be between 0 and 100")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	return nil
}
