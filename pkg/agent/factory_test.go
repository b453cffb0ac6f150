package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeagents/pkg/config"
)

func TestNewLLMClientRequiresAPIKey(t *testing.T) {
	cfg := config.Default()
	cfg.Provider = config.ProviderOpenAI

	_, err := NewLLMClient(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestNewLLMClientOpenAI(t *testing.T) {
	cfg := config.Default()
	cfg.Provider = config.ProviderOpenAI
	p := cfg.Providers[config.ProviderOpenAI]
	p.APIKey = "sk-test"
	cfg.Providers[config.ProviderOpenAI] = p

	client, err := NewLLMClient(cfg)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", client.GetModelName())
}

func TestNewLLMClientOllamaNeedsNoKey(t *testing.T) {
	cfg := config.Default()
	cfg.Provider = config.ProviderOllama

	client, err := NewLLMClient(cfg)
	require.NoError(t, err)
	assert.Equal(t, "llama3.1", client.GetModelName())
}

func TestNewLLMClientRejectsMissingModel(t *testing.T) {
	cfg := config.Default()
	cfg.Provider = config.ProviderCustom
	p := cfg.Providers[config.ProviderCustom]
	p.APIKey = "key"
	cfg.Providers[config.ProviderCustom] = p

	_, err := NewLLMClient(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no model")
}
