// Package config provides configuration loading and management for the
// code-generation pipeline: provider credentials, per-agent sampling
// parameters, and pipeline tuning knobs. Sources are merged in order:
// built-in defaults, optional YAML file, optional .env file, then
// process environment.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Provider name constants.
const (
	ProviderOpenAI    = "openai"
	ProviderDeepSeek  = "deepseek"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
	ProviderGemini    = "gemini"
	ProviderCustom    = "custom"
)

// Agent role constants.
const (
	AgentPlanner   = "planner"
	AgentCoder     = "coder"
	AgentEvaluator = "evaluator"
	AgentDebugger  = "debugger"
)

// Default pipeline limits.
const (
	DefaultMaxRetries        = 3
	DefaultRetryDelaySec     = 1.0
	DefaultCoderIterations   = 10
	DefaultDebugIterations   = 5
	DefaultMaxIterations     = 3
	DefaultFileContentLimit  = 3000 // bytes of file content interpolated into prompts
	DefaultCommandTimeoutSec = 30
)

// ProviderConfig holds the connection settings for one LLM backend.
type ProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"` // empty means the provider's default endpoint
	Model   string `yaml:"model"`
}

// AgentConfig holds per-agent sampling parameters.
type AgentConfig struct {
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// EvaluatePolicy selects which file list the evaluator reads per task.
type EvaluatePolicy string

const (
	// EvaluateDeclared reads the files the plan declared for the task.
	EvaluateDeclared EvaluatePolicy = "declared"
	// EvaluateActual reads the files the coder actually created.
	EvaluateActual EvaluatePolicy = "actual"
)

// Config is the full pipeline configuration.
type Config struct {
	Provider  string                    `yaml:"provider"`
	Providers map[string]ProviderConfig `yaml:"providers"`
	Agents    map[string]AgentConfig    `yaml:"agents"`

	MaxRetries        int     `yaml:"max_retries"`
	RetryDelaySec     float64 `yaml:"retry_delay_sec"`
	CoderIterations   int     `yaml:"coder_iterations"`
	DebugIterations   int     `yaml:"debug_iterations"`
	MaxIterations     int     `yaml:"max_iterations"`
	FileContentLimit  int     `yaml:"file_content_limit"`
	CommandTimeoutSec int     `yaml:"command_timeout_sec"`

	EvaluatePolicy EvaluatePolicy `yaml:"evaluate_policy"`
	SkipEvaluation bool           `yaml:"skip_evaluation"`
}

// Default returns the built-in configuration, mirroring the stock
// sampling profile of each agent role.
func Default() *Config {
	return &Config{
		Provider: ProviderOpenAI,
		Providers: map[string]ProviderConfig{
			ProviderOpenAI:    {Model: "gpt-4o"},
			ProviderDeepSeek:  {BaseURL: "https://api.deepseek.com/v1", Model: "deepseek-chat"},
			ProviderAnthropic: {Model: "claude-sonnet-4-20250514"},
			ProviderOllama:    {BaseURL: "http://localhost:11434", Model: "llama3.1"},
			ProviderGemini:    {Model: "gemini-2.0-flash"},
			ProviderCustom:    {},
		},
		Agents: map[string]AgentConfig{
			AgentPlanner:   {Temperature: 0.7, MaxTokens: 4000},
			AgentCoder:     {Temperature: 0.3, MaxTokens: 4000},
			AgentEvaluator: {Temperature: 0.5, MaxTokens: 3000},
			AgentDebugger:  {Temperature: 0.3, MaxTokens: 4000},
		},
		MaxRetries:        DefaultMaxRetries,
		RetryDelaySec:     DefaultRetryDelaySec,
		CoderIterations:   DefaultCoderIterations,
		DebugIterations:   DefaultDebugIterations,
		MaxIterations:     DefaultMaxIterations,
		FileContentLimit:  DefaultFileContentLimit,
		CommandTimeoutSec: DefaultCommandTimeoutSec,
		EvaluatePolicy:    EvaluateDeclared,
	}
}

// Load builds the configuration from defaults, an optional YAML file,
// an optional .env file, and the process environment (highest
// precedence). Pass "" for either path to skip that source.
func Load(yamlPath, envPath string) (*Config, error) {
	cfg := Default()

	if yamlPath != "" {
		data, err := os.ReadFile(yamlPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config file %s: %w", yamlPath, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", yamlPath, err)
		}
	}

	if envPath != "" {
		// Missing .env is fine; a malformed one is not.
		if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("load env file %s: %w", envPath, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays provider credentials from environment variables.
func (c *Config) applyEnv() {
	overlay := func(provider, keyVar, urlVar, modelVar string) {
		p := c.Providers[provider]
		if v := os.Getenv(keyVar); v != "" {
			p.APIKey = v
		}
		if urlVar != "" {
			if v := os.Getenv(urlVar); v != "" {
				p.BaseURL = v
			}
		}
		if v := os.Getenv(modelVar); v != "" {
			p.Model = v
		}
		c.Providers[provider] = p
	}

	overlay(ProviderOpenAI, "OPENAI_API_KEY", "", "OPENAI_MODEL")
	overlay(ProviderDeepSeek, "DEEPSEEK_API_KEY", "DEEPSEEK_BASE_URL", "DEEPSEEK_MODEL")
	overlay(ProviderAnthropic, "ANTHROPIC_API_KEY", "", "ANTHROPIC_MODEL")
	overlay(ProviderOllama, "", "OLLAMA_HOST", "OLLAMA_MODEL")
	overlay(ProviderGemini, "GEMINI_API_KEY", "", "GEMINI_MODEL")
	overlay(ProviderCustom, "LLM_API_KEY", "LLM_BASE_URL", "LLM_MODEL")

	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.Provider = strings.ToLower(v)
	}
}

// ActiveProvider returns the selected provider's settings.
func (c *Config) ActiveProvider() (ProviderConfig, error) {
	p, ok := c.Providers[c.Provider]
	if !ok {
		return ProviderConfig{}, fmt.Errorf("unknown provider %q", c.Provider)
	}
	return p, nil
}

// AgentFor returns the sampling config for an agent role, falling back
// to the coder profile for unknown roles.
func (c *Config) AgentFor(role string) AgentConfig {
	if a, ok := c.Agents[role]; ok {
		return a
	}
	return AgentConfig{Temperature: 0.3, MaxTokens: 4000}
}

// Validate checks internal consistency.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI, ProviderDeepSeek, ProviderAnthropic, ProviderOllama, ProviderGemini, ProviderCustom:
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	switch c.EvaluatePolicy {
	case EvaluateDeclared, EvaluateActual:
	default:
		return fmt.Errorf("unknown evaluate_policy %q", c.EvaluatePolicy)
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("max_retries must be >= 1, got %d", c.MaxRetries)
	}
	if c.CoderIterations < 1 || c.DebugIterations < 1 {
		return fmt.Errorf("iteration ceilings must be >= 1")
	}
	return nil
}
