// Package config loads and validates the SINAX configuration: a YAML file
// with ${VAR} / ${VAR:-default} environment interpolation, so credentials
// can stay out of the file itself.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	General  GeneralConfig  `yaml:"general"`
	Telegram TelegramConfig `yaml:"telegram"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Persona  PersonaConfig  `yaml:"persona"`
	Server   ServerConfig   `yaml:"server"`
	Topics   TopicsConfig   `yaml:"topics"`
}

type GeneralConfig struct {
	LogLevel string `yaml:"logLevel"` // debug | info | warn | error
}

type TelegramConfig struct {
	Token       string `yaml:"token"`
	WebhookURL  string `yaml:"webhookURL"`  // public base URL; empty = no auto-registration
	WebhookPath string `yaml:"webhookPath"` // path the gateway posts updates to
	AdminSecret string `yaml:"adminSecret"` // shared secret for the maintenance endpoints
}

type OpenAIConfig struct {
	APIKey          string `yaml:"apiKey"`
	APIBase         string `yaml:"apiBase"`
	Model           string `yaml:"model"`
	VisionModel     string `yaml:"visionModel"`
	TranscribeModel string `yaml:"transcribeModel"`
	MaxOutputTokens int    `yaml:"maxOutputTokens"`
}

type PersonaConfig struct {
	Override string `yaml:"override"` // explicit persona text, highest priority
	URL      string `yaml:"url"`      // optional remote persona location
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type TopicsConfig struct {
	Capacity int `yaml:"capacity"`
}

// DefaultConfigDir returns ~/.sinax.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sinax"
	}
	return filepath.Join(home, ".sinax")
}

// DefaultConfigPath returns ~/.sinax/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// Load reads, interpolates and validates the config at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	data = []byte(ExpandEnvVars(string(data)))

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// envVarPattern matches ${VAR} and ${VAR:-default}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-(.*?))?\}`)

// ExpandEnvVars replaces ${VAR} with the environment variable value.
// ${VAR:-default} uses "default" when VAR is unset or empty.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		varName := groups[1]
		defaultVal := ""
		hasDefault := len(groups) >= 3 && groups[2] != ""
		if hasDefault {
			defaultVal = groups[2]
		}

		val, exists := os.LookupEnv(varName)
		if !exists || val == "" {
			if hasDefault {
				return defaultVal
			}
			return match
		}
		return val
	})
}

// Save writes cfg to path, creating the directory if needed.
func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

// Validate checks value ranges. Credential presence is checked separately
// by RequireCredentials so read-only commands work without secrets.
func Validate(cfg *Config) error {
	var errs []string

	switch cfg.General.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, "general.logLevel must be one of: debug, info, warn, error")
	}
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		errs = append(errs, "server.port must be between 0 and 65535")
	}
	if cfg.Topics.Capacity < 1 {
		errs = append(errs, "topics.capacity must be >= 1")
	}
	if cfg.OpenAI.MaxOutputTokens < 1 {
		errs = append(errs, "openai.maxOutputTokens must be >= 1")
	}
	if !strings.HasPrefix(cfg.Telegram.WebhookPath, "/") {
		errs = append(errs, "telegram.webhookPath must start with /")
	}
	if cfg.Telegram.WebhookURL != "" && !strings.HasPrefix(cfg.Telegram.WebhookURL, "https://") {
		errs = append(errs, "telegram.webhookURL must be https (Telegram requirement)")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// RequireCredentials reports the fatal startup condition: serving traffic
// without the gateway token or the completion API key.
func RequireCredentials(cfg *Config) error {
	var missing []string
	if strings.TrimSpace(cfg.Telegram.Token) == "" {
		missing = append(missing, "telegram.token")
	}
	if strings.TrimSpace(cfg.OpenAI.APIKey) == "" {
		missing = append(missing, "openai.apiKey")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required credentials: %s", strings.Join(missing, ", "))
	}
	return nil
}
