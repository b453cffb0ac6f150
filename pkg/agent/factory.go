package agent

import (
	"fmt"

	"codeagents/pkg/agent/internal/llmimpl/anthropic"
	"codeagents/pkg/agent/internal/llmimpl/google"
	"codeagents/pkg/agent/internal/llmimpl/ollama"
	"codeagents/pkg/agent/internal/llmimpl/openai"
	"codeagents/pkg/agent/llm"
	"codeagents/pkg/config"
)

// NewLLMClient constructs the backend client for the configured
// provider. DeepSeek and custom endpoints speak the OpenAI wire
// protocol with a different base URL.
func NewLLMClient(cfg *config.Config) (llm.LLMClient, error) {
	provider, err := cfg.ActiveProvider()
	if err != nil {
		return nil, err
	}
	if provider.Model == "" {
		return nil, fmt.Errorf("provider %s has no model configured", cfg.Provider)
	}

	switch cfg.Provider {
	case config.ProviderOpenAI, config.ProviderDeepSeek, config.ProviderCustom:
		if provider.APIKey == "" {
			return nil, fmt.Errorf("provider %s requires an API key", cfg.Provider)
		}
		return openai.NewClient(provider.APIKey, provider.BaseURL, provider.Model), nil
	case config.ProviderAnthropic:
		if provider.APIKey == "" {
			return nil, fmt.Errorf("provider %s requires an API key", cfg.Provider)
		}
		return anthropic.NewClient(provider.APIKey, provider.Model), nil
	case config.ProviderGemini:
		if provider.APIKey == "" {
			return nil, fmt.Errorf("provider %s requires an API key", cfg.Provider)
		}
		return google.NewClient(provider.APIKey, provider.Model), nil
	case config.ProviderOllama:
		return ollama.NewClient(provider.BaseURL, provider.Model), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
