package provider

import (
	"context"
	"fmt"
	"os"

	"github.com/daikw/angertranslator/internal/reliability"
)

// DefaultFactory is the default provider factory
type DefaultFactory struct {
	ctx context.Context
}

// NewFactory creates a new provider factory. ctx is used to set up SDK clients.
func NewFactory(ctx context.Context) *DefaultFactory {
	return &DefaultFactory{ctx: ctx}
}

// CreateProvider creates a provider instance by name
func (f *DefaultFactory) CreateProvider(providerName string, config map[string]interface{}) (Provider, error) {
	if config == nil {
		config = map[string]interface{}{}
	}
	switch providerName {
	case NameOpenAI:
		if err := apiKeyFromEnv(config, "OPENAI_API_KEY"); err != nil {
			return nil, err
		}
		return OpenAIProviderFromConfig(config)
	case NameElevenLabs:
		if err := apiKeyFromEnv(config, "ELEVENLABS_API_KEY"); err != nil {
			return nil, err
		}
		return ElevenLabsProviderFromConfig(config)
	case NamePolly:
		return PollyProviderFromConfig(f.ctx, config)
	case NameGCP:
		return GCPProviderFromConfig(f.ctx, config)
	default:
		return nil, reliability.Validation("provider.create", "unknown provider: %s", providerName)
	}
}

// ListProviders returns available provider names
func (f *DefaultFactory) ListProviders() []string {
	return []string{NameOpenAI, NameElevenLabs, NamePolly, NameGCP}
}

// apiKeyFromEnv fills config["api_key"] from envVar when the config has none.
func apiKeyFromEnv(config map[string]interface{}, envVar string) error {
	if apiKey, ok := config["api_key"].(string); ok && apiKey != "" {
		return nil
	}
	apiKey := os.Getenv(envVar)
	if apiKey == "" {
		return reliability.New(reliability.KindInvalidCredential, "provider.create",
			fmt.Errorf("API key not found in config or %s environment variable", envVar))
	}
	config["api_key"] = apiKey
	return nil
}
