package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// LoaderOptions controls how configuration is loaded.
type LoaderOptions struct {
	// ConfigPath is the path to a TOML config file (optional).
	// If provided but the file is missing or invalid, loading fails.
	ConfigPath string

	// FlagOverrides are CLI flag values that override everything else.
	FlagOverrides FlagOverrides

	// Logger is used for warning messages (e.g., undecoded keys).
	// If nil, slog.Default() is used.
	Logger *slog.Logger
}

// FlagOverrides holds CLI flag values. Nil or empty values are unset.
type FlagOverrides struct {
	ListenAddr   *string
	Environment  *string
	StoreDriver  *string
	DataDir      *string
	LoggingLevel *string
}

// envConfig holds environment variable overrides.
type envConfig struct {
	ListenAddr     string   `env:"TASKROOMS_LISTEN_ADDR"`
	Environment    string   `env:"TASKROOMS_ENV"`
	SessionSecret  string   `env:"SESSION_SECRET"`
	StoreDriver    string   `env:"TASKROOMS_STORE_DRIVER"`
	DataDir        string   `env:"TASKROOMS_DATA_DIR"`
	TrustedProxies []string `env:"TASKROOMS_TRUSTED_PROXIES"`
	AIBaseURL      string   `env:"TASKROOMS_AI_BASE_URL"`
	AIAPIKey       string   `env:"TASKROOMS_AI_API_KEY"`
	LoggingLevel   string   `env:"TASKROOMS_LOG_LEVEL"`
}

// fileConfig mirrors Config with pointer sections to detect presence.
type fileConfig struct {
	ListenAddr     string   `toml:"listen_addr"`
	Environment    string   `toml:"environment"`
	TrustedProxies []string `toml:"trusted_proxies"`

	Session *sessionFileConfig `toml:"session"`
	Store   *storeFileConfig   `toml:"store"`
	AI      *aiFileConfig      `toml:"ai"`
	Logging *loggingFileConfig `toml:"logging"`
}

type sessionFileConfig struct {
	Secret   string `toml:"secret"`
	TTLHours int    `toml:"ttl_hours"`
}

type storeFileConfig struct {
	Driver  string                    `toml:"driver"`
	DataDir string                    `toml:"data_dir"`
	Options map[string]map[string]any `toml:"options"`
}

type aiFileConfig struct {
	BaseURL          string `toml:"base_url"`
	APIKey           string `toml:"api_key"`
	TimeoutMS        int    `toml:"timeout_ms"`
	MaxResponseBytes int64  `toml:"max_response_bytes"`
}

type loggingFileConfig struct {
	Level string `toml:"level"`
}

// Load builds the effective configuration with precedence:
// defaults -> TOML file -> environment -> CLI flags.
func Load(opts LoaderOptions) (*Config, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cfg := DefaultConfig()

	if opts.ConfigPath != "" {
		if err := applyFile(cfg, opts.ConfigPath, logger); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	applyFlags(cfg, opts.FlagOverrides)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyFile(cfg *Config, path string, logger *slog.Logger) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}

	var fc fileConfig
	md, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	// Warn about unknown keys so typos do not fail silently.
	for _, key := range md.Undecoded() {
		logger.Warn("unknown config key ignored", "key", key.String(), "file", path)
	}

	if fc.ListenAddr != "" {
		cfg.ListenAddr = fc.ListenAddr
	}
	if fc.Environment != "" {
		cfg.Environment = fc.Environment
	}
	if len(fc.TrustedProxies) > 0 {
		cfg.TrustedProxies = fc.TrustedProxies
	}
	if fc.Session != nil {
		if fc.Session.Secret != "" {
			cfg.Session.Secret = fc.Session.Secret
		}
		if fc.Session.TTLHours > 0 {
			cfg.Session.TTLHours = fc.Session.TTLHours
		}
	}
	if fc.Store != nil {
		if fc.Store.Driver != "" {
			cfg.Store.Driver = fc.Store.Driver
		}
		if fc.Store.DataDir != "" {
			cfg.Store.DataDir = fc.Store.DataDir
		}
		if opts, ok := fc.Store.Options[cfg.Store.Driver]; ok {
			cfg.Store.Options = opts
		}
	}
	if fc.AI != nil {
		if fc.AI.BaseURL != "" {
			cfg.AI.BaseURL = fc.AI.BaseURL
		}
		if fc.AI.APIKey != "" {
			cfg.AI.APIKey = fc.AI.APIKey
		}
		if fc.AI.TimeoutMS > 0 {
			cfg.AI.TimeoutMS = fc.AI.TimeoutMS
		}
		if fc.AI.MaxResponseBytes > 0 {
			cfg.AI.MaxResponseBytes = fc.AI.MaxResponseBytes
		}
	}
	if fc.Logging != nil && fc.Logging.Level != "" {
		cfg.Logging.Level = fc.Logging.Level
	}

	return nil
}

func applyEnv(cfg *Config) error {
	var ec envConfig
	if err := env.Parse(&ec); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}

	if ec.ListenAddr != "" {
		cfg.ListenAddr = ec.ListenAddr
	}
	if ec.Environment != "" {
		cfg.Environment = ec.Environment
	}
	if ec.SessionSecret != "" {
		cfg.Session.Secret = ec.SessionSecret
	}
	if len(ec.TrustedProxies) > 0 {
		cfg.TrustedProxies = ec.TrustedProxies
	}
	if ec.StoreDriver != "" {
		cfg.Store.Driver = ec.StoreDriver
	}
	if ec.DataDir != "" {
		cfg.Store.DataDir = ec.DataDir
	}
	if ec.AIBaseURL != "" {
		cfg.AI.BaseURL = ec.AIBaseURL
	}
	if ec.AIAPIKey != "" {
		cfg.AI.APIKey = ec.AIAPIKey
	}
	if ec.LoggingLevel != "" {
		cfg.Logging.Level = ec.LoggingLevel
	}

	return nil
}

func applyFlags(cfg *Config, fo FlagOverrides) {
	if fo.ListenAddr != nil && *fo.ListenAddr != "" {
		cfg.ListenAddr = *fo.ListenAddr
	}
	if fo.Environment != nil && *fo.Environment != "" {
		cfg.Environment = *fo.Environment
	}
	if fo.StoreDriver != nil && *fo.StoreDriver != "" {
		cfg.Store.Driver = *fo.StoreDriver
	}
	if fo.DataDir != nil && *fo.DataDir != "" {
		cfg.Store.DataDir = *fo.DataDir
	}
	if fo.LoggingLevel != nil && *fo.LoggingLevel != "" {
		cfg.Logging.Level = *fo.LoggingLevel
	}
}

func validate(cfg *Config) error {
	switch cfg.Environment {
	case "development", "production":
	default:
		return fmt.Errorf("invalid environment %q: must be development or production", cfg.Environment)
	}

	if cfg.IsProduction() && strings.TrimSpace(cfg.Session.Secret) == "" {
		return fmt.Errorf("session.secret (or SESSION_SECRET) is required in production")
	}

	if cfg.Session.TTLHours <= 0 {
		return fmt.Errorf("session.ttl_hours must be positive")
	}

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level %q", cfg.Logging.Level)
	}

	return nil
}
