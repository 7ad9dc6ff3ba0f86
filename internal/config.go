package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Gemini GeminiConfig      `yaml:"gemini"`
	Store  StoreConfig       `yaml:"store"`
	Cache  CacheConfig       `yaml:"cache"`
	Auth   AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Gemini.Validate(); err != nil {
		return err
	}
	if err := c.Store.Validate(); err != nil {
		return err
	}
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// GeminiConfig holds the research provider configuration.
type GeminiConfig struct {
	APIKey                string `yaml:"api_key"`
	Model                 string `yaml:"model"`
	RequestsPerMinute     int    `yaml:"requests_per_minute"`
	SegmentTimeoutSeconds int    `yaml:"segment_timeout_seconds"`
}

// SegmentTimeout returns the per-segment request deadline.
func (c *GeminiConfig) SegmentTimeout() time.Duration {
	return time.Duration(c.SegmentTimeoutSeconds) * time.Second
}

// Validate validates the provider configuration.
func (c *GeminiConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.APIKey, validation.Required),
		validation.Field(&c.Model, validation.Required),
		validation.Field(&c.RequestsPerMinute, validation.Min(1)),
		validation.Field(&c.SegmentTimeoutSeconds, validation.Min(1)),
	)
}

// StoreConfig selects the key-value backend. When Remote.URL is set the
// remote REST store is used, otherwise the local SQLite file.
type StoreConfig struct {
	SQLitePath string            `yaml:"sqlite_path"`
	Remote     RemoteStoreConfig `yaml:"remote"`
}

// RemoteStoreConfig holds the Upstash-style REST store credentials.
type RemoteStoreConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

// RemoteEnabled reports whether the remote backend is configured.
func (c *StoreConfig) RemoteEnabled() bool {
	return c.Remote.URL != ""
}

// Validate validates the store configuration.
func (c *StoreConfig) Validate() error {
	if c.RemoteEnabled() {
		if c.Remote.Token == "" {
			return fmt.Errorf("store: remote url is set but token is empty")
		}
		return nil
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.SQLitePath, validation.Required),
	)
}

// CacheConfig controls report caching.
type CacheConfig struct {
	TTLHours int `yaml:"ttl_hours"`
}

// TTL returns the cache entry lifetime.
func (c *CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

// Validate validates the cache configuration.
func (c *CacheConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.TTLHours, validation.Min(1)),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Gemini: GeminiConfig{
			Model:                 "gemini-2.5-flash",
			RequestsPerMinute:     10,
			SegmentTimeoutSeconds: 120,
		},
		Store: StoreConfig{
			SQLitePath: "./alphadrop.db",
		},
		Cache: CacheConfig{
			TTLHours: 24,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
