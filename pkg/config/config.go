// Package config loads and validates workbench configuration from a JSON
// file with environment variable substitution.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
)

// Backend identifiers accepted in the config file.
const (
	BackendAnthropic = "anthropic"
	BackendOpenAI    = "openai"
	BackendOllama    = "ollama"
	BackendGemini    = "gemini"
)

// Defaults applied when the config file leaves a field unset.
const (
	DefaultMaxTokens            = 4096
	DefaultTemperature          = 0.3
	DefaultSupervisorMaxRetries = 3
	DefaultProjectLanguage      = "go"
	DefaultListenAddr           = ":8080"
	DefaultOllamaHost           = "http://localhost:11434"
)

// BackendConfig selects and parameterizes the chat backend.
type BackendConfig struct {
	Provider    string  `json:"provider"`
	Model       string  `json:"model"`
	APIKey      string  `json:"api_key,omitempty"`
	Host        string  `json:"host,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float32 `json:"temperature,omitempty"`
}

// ProjectConfig describes the sandboxed project directory.
type ProjectConfig struct {
	Root     string `json:"root"`
	Language string `json:"language,omitempty"`
}

// WorkflowConfig tunes orchestrator behavior.
type WorkflowConfig struct {
	SupervisorMaxRetries int  `json:"supervisor_max_retries,omitempty"`
	SingleCallMode       bool `json:"single_call_mode,omitempty"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	ListenAddr   string `json:"listen_addr,omitempty"`
	PasswordHash string `json:"password_hash,omitempty"`
}

// Config is the root configuration document.
type Config struct {
	Backend       BackendConfig  `json:"backend"`
	Project       ProjectConfig  `json:"project"`
	Workflow      WorkflowConfig `json:"workflow"`
	Server        ServerConfig   `json:"server"`
	SandboxPolicy string         `json:"sandbox_policy,omitempty"`
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// Load reads, substitutes, defaults, and validates a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Replace ${VAR} placeholders with environment values. Unset
	// variables leave the placeholder intact so validation can report
	// the missing key by name.
	substituted := envVarRegex.ReplaceAllStringFunc(string(data), func(match string) string {
		envVar := match[2 : len(match)-1]
		if value := os.Getenv(envVar); value != "" {
			return value
		}
		return match
	})

	var cfg Config
	if err := json.Unmarshal([]byte(substituted), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Backend.MaxTokens == 0 {
		cfg.Backend.MaxTokens = DefaultMaxTokens
	}
	if cfg.Backend.Temperature == 0 {
		cfg.Backend.Temperature = DefaultTemperature
	}
	if cfg.Backend.Provider == BackendOllama && cfg.Backend.Host == "" {
		cfg.Backend.Host = DefaultOllamaHost
	}
	if cfg.Project.Language == "" {
		cfg.Project.Language = DefaultProjectLanguage
	}
	if cfg.Workflow.SupervisorMaxRetries == 0 {
		cfg.Workflow.SupervisorMaxRetries = DefaultSupervisorMaxRetries
	}
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = DefaultListenAddr
	}
}

// Validate checks the configuration for structural problems. A backend
// whose key placeholder never resolved is reported as unconfigured.
func (c *Config) Validate() error {
	switch c.Backend.Provider {
	case BackendAnthropic, BackendOpenAI, BackendGemini:
		if c.Backend.APIKey == "" || envVarRegex.MatchString(c.Backend.APIKey) {
			return fmt.Errorf("backend %s is not configured: missing api_key", c.Backend.Provider)
		}
	case BackendOllama:
		// Local backend, no key required.
	case "":
		return fmt.Errorf("backend provider is required")
	default:
		return fmt.Errorf("unknown backend provider: %s", c.Backend.Provider)
	}
	if c.Backend.Model == "" {
		return fmt.Errorf("backend model is required")
	}
	if c.Project.Root == "" {
		return fmt.Errorf("project root is required")
	}
	if c.Workflow.SupervisorMaxRetries < 0 {
		return fmt.Errorf("supervisor_max_retries must not be negative")
	}
	return nil
}
