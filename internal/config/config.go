// Package config provides configuration loading and validation.
package config

// Config holds the server configuration.
type Config struct {
	// ListenAddr is the address to listen on.
	// Example: ":8080"
	ListenAddr string `json:"listen_addr"`

	// Environment is "development" or "production". In production the
	// session cookie is marked Secure and the insecure session-secret
	// fallback is rejected.
	Environment string `json:"environment"`

	// TrustedProxies lists proxy addresses (IPs or CIDRs) whose
	// X-Forwarded-For headers are honored when resolving the client
	// address for logging and rate limiting.
	TrustedProxies []string `json:"trusted_proxies"`

	// Session holds session token settings.
	Session SessionConfig `json:"session"`

	// Store holds persistence driver settings.
	Store StoreConfig `json:"store"`

	// AI holds settings for the remote AI collaborator.
	AI AIConfig `json:"ai"`

	// Logging holds logging settings.
	Logging LoggingConfig `json:"logging"`
}

// SessionConfig holds session token settings.
type SessionConfig struct {
	// Secret is the HMAC signing key for session tokens. When empty
	// outside production, a random per-process key is generated: tokens
	// stay verifiable within the running process but not across
	// restarts. An empty secret in production is a startup error.
	Secret string `json:"-"`

	// TTLHours is the session lifetime in hours.
	TTLHours int `json:"ttl_hours"`
}

// StoreConfig holds persistence driver settings.
type StoreConfig struct {
	// Driver is the driver name: memory, sqlite.
	Driver string `json:"driver"`

	// DataDir is the directory for data files (sqlite db).
	DataDir string `json:"data_dir"`

	// Options holds driver-specific settings from
	// [store.options.<driver>], decoded by the driver itself.
	Options map[string]any `json:"options"`
}

// AIConfig holds settings for the remote AI collaborator.
type AIConfig struct {
	// BaseURL is the AI service endpoint. Empty disables AI features.
	BaseURL string `json:"base_url"`

	// APIKey authenticates requests to the AI service.
	APIKey string `json:"-"`

	// TimeoutMS is the overall request timeout in milliseconds.
	TimeoutMS int `json:"timeout_ms"`

	// MaxResponseBytes bounds the response body size.
	MaxResponseBytes int64 `json:"max_response_bytes"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is one of: debug, info, warn, error.
	Level string `json:"level"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Redacted returns a copy safe for logging. Secrets are json-omitted
// already; this exists so call sites stay explicit about intent.
func (c *Config) Redacted() Config {
	cp := *c
	cp.Session.Secret = ""
	cp.AI.APIKey = ""
	return cp
}

// DefaultConfig returns a Config with sensible defaults for local
// development.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:  ":8080",
		Environment: "development",
		Session: SessionConfig{
			TTLHours: 24,
		},
		Store: StoreConfig{
			Driver:  "memory",
			DataDir: "data",
		},
		AI: AIConfig{
			TimeoutMS:        10000,
			MaxResponseBytes: 1 << 20,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
