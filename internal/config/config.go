// Package config loads and saves the hacker-dash configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aceteam-ai/hacker-dash/internal/provider"
)

// AppName names the configuration directory.
const AppName = "hacker-dash"

// DefaultProvider is used when neither the file nor the environment picks one.
const DefaultProvider = "anthropic"

// ErrNoAPIKey is returned when the selected provider has no API key.
var ErrNoAPIKey = errors.New("no API key configured")

// ProviderConfig holds the settings of one backend.
type ProviderConfig struct {
	APIKey  string `yaml:"api_key,omitempty"`
	Model   string `yaml:"model,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
}

// RunnerConfig controls how generated programs are executed.
type RunnerConfig struct {
	// Command is the runner invoked with the program path appended
	Command []string `yaml:"command,omitempty"`

	// KillGrace is how long a program gets after SIGTERM before it is killed
	KillGrace time.Duration `yaml:"kill_grace,omitempty"`
}

// Config is the on-disk configuration.
type Config struct {
	DefaultProvider string                    `yaml:"default_provider,omitempty"`
	Providers       map[string]ProviderConfig `yaml:"providers,omitempty"`
	Runner          RunnerConfig              `yaml:"runner,omitempty"`

	// StatusPacing scales the themed status messages (1 is normal speed)
	StatusPacing *float64 `yaml:"status_pacing,omitempty"`
}

// Dir returns the configuration directory (<user config dir>/hacker-dash).
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(base, AppName), nil
}

// Path returns the default configuration file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// UsageDBPath returns the path of the usage metrics database.
func UsageDBPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "usage.db"), nil
}

// Load reads the configuration at path. A missing file yields an empty
// configuration.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration to path, readable only by the owner.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// ResolveProvider picks the provider: the flag value, then
// HACKER_DASH_PROVIDER, then the file, then DefaultProvider.
func (c *Config) ResolveProvider(flag string) string {
	name := flag
	if name == "" {
		name = getEnvOrDefault("HACKER_DASH_PROVIDER", c.DefaultProvider)
	}
	if name == "" {
		name = DefaultProvider
	}
	return strings.ToLower(name)
}

// Provider returns the settings for name with the API key taken from the
// environment when it is set there.
func (c *Config) Provider(name string) ProviderConfig {
	name = strings.ToLower(name)
	pc := c.Providers[name]
	if supported(name) {
		pc.APIKey = getEnvOrDefault(KeyEnv(name), pc.APIKey)
	}
	return pc
}

// APIKey returns the API key for name.
func (c *Config) APIKey(name string) (string, error) {
	name = strings.ToLower(name)
	if !supported(name) {
		return "", fmt.Errorf("%w: %q", provider.ErrUnknownProvider, name)
	}
	key := c.Provider(name).APIKey
	if key == "" {
		return "", fmt.Errorf("%w for %s (set %s or run 'hacker-dash config')", ErrNoAPIKey, name, KeyEnv(name))
	}
	return key, nil
}

// SetAPIKey stores key for name in the file configuration.
func (c *Config) SetAPIKey(name, key string) {
	name = strings.ToLower(name)
	if c.Providers == nil {
		c.Providers = make(map[string]ProviderConfig)
	}
	pc := c.Providers[name]
	pc.APIKey = key
	c.Providers[name] = pc
}

// RunnerCommand returns the configured runner or the default `uv run`.
func (c *Config) RunnerCommand() []string {
	if len(c.Runner.Command) > 0 {
		return c.Runner.Command
	}
	return []string{"uv", "run"}
}

// Pacing returns the status message pacing factor (default 1).
func (c *Config) Pacing() float64 {
	if v := os.Getenv("HACKER_DASH_STATUS_PACING"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			return f
		}
	}
	if c.StatusPacing != nil {
		return *c.StatusPacing
	}
	return 1
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.DefaultProvider != "" && !supported(c.DefaultProvider) {
		return fmt.Errorf("%w: default_provider %q (supported: %s)", provider.ErrUnknownProvider, c.DefaultProvider, strings.Join(ProviderNames(), ", "))
	}
	for name := range c.Providers {
		if !supported(name) {
			return fmt.Errorf("%w: providers.%s", provider.ErrUnknownProvider, name)
		}
	}
	if c.Runner.KillGrace < 0 {
		return fmt.Errorf("runner.kill_grace must not be negative")
	}
	if c.StatusPacing != nil && *c.StatusPacing < 0 {
		return fmt.Errorf("status_pacing must not be negative")
	}
	return nil
}

// ProviderNames returns the built-in provider names in sorted order.
func ProviderNames() []string {
	return provider.DefaultRegistry().Names()
}

// KeyEnv returns the environment variable holding the API key for name,
// e.g. GEMINI_API_KEY.
func KeyEnv(name string) string {
	return strings.ToUpper(name) + "_API_KEY"
}

func supported(name string) bool {
	name = strings.ToLower(name)
	for _, n := range ProviderNames() {
		if n == name {
			return true
		}
	}
	return false
}

// MaskKey returns key with all but its last four characters hidden.
func MaskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
