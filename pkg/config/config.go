// Package config handles configuration for desktop-runner.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/devicelab-dev/desktop-runner/pkg/executor"
)

// Defaults.
const (
	DefaultServerURL   = "http://127.0.0.1:9375"
	DefaultCount       = 3
	DefaultOutput      = "reports"
	DefaultCasesDir    = "test-cases"
	DefaultProvider    = "gemini"
	DefaultModel       = "gemini-2.0-flash"
	DefaultTemperature = 0.7
	DefaultAPIKeyEnv   = "GEMINI_API_KEY"
)

// Config represents the workspace configuration (config.yaml).
type Config struct {
	// Automation server
	ServerURL string `yaml:"serverUrl"`

	// Test subject
	Application string `yaml:"application"` // Friendly name or executable path
	Description string `yaml:"description"` // Natural-language description for generation
	Count       int    `yaml:"count"`       // Number of cases to generate

	// Output
	Output   string `yaml:"output"`   // Report directory
	CasesDir string `yaml:"casesDir"` // Where generated cases are saved

	Generator GeneratorConfig `yaml:"generator"`
	Timing    TimingConfig    `yaml:"timing"`

	// Optional ceilings ("30s", "2m"); zero disables
	ActionTimeout time.Duration `yaml:"actionTimeout"`
	CaseTimeout   time.Duration `yaml:"caseTimeout"`

	// Extra or overriding descriptions keyed by lowercase app name
	AppDescriptions map[string]string `yaml:"appDescriptions"`
}

// GeneratorConfig selects the LLM used for test generation.
type GeneratorConfig struct {
	Provider    string   `yaml:"provider"` // gemini, openai, ollama
	Model       string   `yaml:"model"`
	Temperature *float64 `yaml:"temperature"`
	APIKeyEnv   string   `yaml:"apiKeyEnv"` // Env var holding the API key
	BaseURL     string   `yaml:"baseUrl"`   // openai-compatible endpoint or ollama server
}

// TimingConfig overrides executor pacing. Unset fields keep their defaults;
// durations are milliseconds.
type TimingConfig struct {
	FindAttempts       *int `yaml:"findAttempts"`
	FindAttemptDelayMs *int `yaml:"findAttemptDelayMs"`
	ActionRetries      *int `yaml:"actionRetries"`
	PreActionDelayMs   *int `yaml:"preActionDelayMs"`
	PostActionDelayMs  *int `yaml:"postActionDelayMs"`
	KeystrokeDelayMs   *int `yaml:"keystrokeDelayMs"`
	RetryCooldownMs    *int `yaml:"retryCooldownMs"`
	LaunchWaitMs       *int `yaml:"launchWaitMs"`
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &cfg, nil
}

// LoadFromDir looks for config.yaml or config.yml in the directory.
func LoadFromDir(dir string) (*Config, error) {
	// Try config.yaml first
	configPath := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		return Load(configPath)
	}

	// Try config.yml
	configPath = filepath.Join(dir, "config.yml")
	if _, err := os.Stat(configPath); err == nil {
		return Load(configPath)
	}

	// No config file found, return empty config
	return &Config{}, nil
}

// Discover loads the config from the working directory, then from the
// desktop-runner home. Missing files yield an empty config.
func Discover() (*Config, error) {
	cfg, err := LoadFromDir(".")
	if err != nil {
		return nil, err
	}
	if !cfg.IsZero() {
		return cfg, nil
	}
	return LoadFromDir(GetHome())
}

// IsZero returns true if nothing was configured.
func (c *Config) IsZero() bool {
	return c.ServerURL == "" && c.Application == "" && c.Description == "" &&
		c.Count == 0 && c.Output == "" && c.CasesDir == "" &&
		c.Generator == (GeneratorConfig{}) && c.Timing == (TimingConfig{}) &&
		c.ActionTimeout == 0 && c.CaseTimeout == 0 && len(c.AppDescriptions) == 0
}

// Validate rejects values that can never work.
func (c *Config) Validate() error {
	if c.Count < 0 {
		return fmt.Errorf("count must not be negative")
	}
	if c.ActionTimeout < 0 || c.CaseTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	for name, v := range map[string]*int{
		"findAttempts":       c.Timing.FindAttempts,
		"findAttemptDelayMs": c.Timing.FindAttemptDelayMs,
		"actionRetries":      c.Timing.ActionRetries,
		"preActionDelayMs":   c.Timing.PreActionDelayMs,
		"postActionDelayMs":  c.Timing.PostActionDelayMs,
		"keystrokeDelayMs":   c.Timing.KeystrokeDelayMs,
		"retryCooldownMs":    c.Timing.RetryCooldownMs,
		"launchWaitMs":       c.Timing.LaunchWaitMs,
	} {
		if v != nil && *v < 0 {
			return fmt.Errorf("timing.%s must not be negative", name)
		}
	}
	switch c.Generator.Provider {
	case "", "gemini", "openai", "ollama":
	default:
		return fmt.Errorf("unknown generator provider %q", c.Generator.Provider)
	}
	return nil
}

// WithDefaults returns a copy with every unset field filled in.
func (c Config) WithDefaults() Config {
	if c.ServerURL == "" {
		c.ServerURL = DefaultServerURL
	}
	if c.Count == 0 {
		c.Count = DefaultCount
	}
	if c.Output == "" {
		c.Output = DefaultOutput
	}
	if c.CasesDir == "" {
		c.CasesDir = DefaultCasesDir
	}
	if c.Generator.Provider == "" {
		c.Generator.Provider = DefaultProvider
	}
	if c.Generator.Model == "" && c.Generator.Provider == DefaultProvider {
		c.Generator.Model = DefaultModel
	}
	if c.Generator.Temperature == nil {
		t := DefaultTemperature
		c.Generator.Temperature = &t
	}
	if c.Generator.APIKeyEnv == "" {
		c.Generator.APIKeyEnv = defaultAPIKeyEnv(c.Generator.Provider)
	}
	return c
}

func defaultAPIKeyEnv(provider string) string {
	switch provider {
	case "openai":
		return "OPENAI_API_KEY"
	case "ollama":
		return ""
	}
	return DefaultAPIKeyEnv
}

// APIKey reads the generator API key from the configured environment variable.
func (c *Config) APIKey() string {
	if c.Generator.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.Generator.APIKeyEnv)
}

// ExecutorTiming applies the timing overrides to the default pacing.
func (c *Config) ExecutorTiming() executor.Timing {
	t := executor.DefaultTiming()
	ms := func(v *int, d *time.Duration) {
		if v != nil {
			*d = time.Duration(*v) * time.Millisecond
		}
	}
	if c.Timing.FindAttempts != nil {
		t.FindAttempts = *c.Timing.FindAttempts
	}
	if c.Timing.ActionRetries != nil {
		t.ActionRetries = *c.Timing.ActionRetries
	}
	ms(c.Timing.FindAttemptDelayMs, &t.FindAttemptDelay)
	ms(c.Timing.PreActionDelayMs, &t.PreActionDelay)
	ms(c.Timing.PostActionDelayMs, &t.PostActionDelay)
	ms(c.Timing.KeystrokeDelayMs, &t.KeystrokeDelay)
	ms(c.Timing.RetryCooldownMs, &t.RetryCooldown)
	ms(c.Timing.LaunchWaitMs, &t.LaunchWait)
	t.ActionTimeout = c.ActionTimeout
	t.CaseTimeout = c.CaseTimeout
	return t
}
