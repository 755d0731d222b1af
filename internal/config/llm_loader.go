package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/conceptbridge/conceptbridge/internal/llm"
	"github.com/spf13/viper"
)

// LoadLLMConfig loads LLM configuration from Viper and environment variables.
// Precedence: explicit Viper config > environment variables > defaults.
func LoadLLMConfig() (llm.Config, error) {
	provider := viper.GetString("llm.provider")
	if provider == "" {
		provider = string(llm.DefaultProvider)
	}

	llmProvider, err := llm.ValidateProvider(provider)
	if err != nil {
		return llm.Config{}, fmt.Errorf("invalid provider: %w", err)
	}

	model := viper.GetString("llm.model")
	if model == "" {
		model = llm.DefaultModelForProvider(llmProvider)
	}

	// Missing API keys are not an error here; Ollama needs none, and the
	// factories validate per provider at call time.
	apiKey := ResolveAPIKey(llmProvider)

	baseURL := viper.GetString("llm.baseURL")
	if baseURL == "" && llmProvider == llm.ProviderOllama {
		baseURL = llm.DefaultOllamaURL
	}

	embeddingModel := viper.GetString("llm.embeddingModel")
	if embeddingModel == "" {
		embeddingModel = llm.DefaultEmbeddingModelForProvider(llmProvider)
	}

	return llm.Config{
		Provider:       llmProvider,
		Model:          model,
		EmbeddingModel: embeddingModel,
		APIKey:         apiKey,
		BaseURL:        baseURL,
	}, nil
}

// LoadEmbeddingConfig resolves the embedding side separately, so deployments
// can pair e.g. an Anthropic chat model with OpenAI embeddings.
func LoadEmbeddingConfig() (llm.Config, error) {
	cfg, err := LoadLLMConfig()
	if err != nil {
		return llm.Config{}, err
	}

	if p := viper.GetString("llm.embeddingProvider"); p != "" {
		embProvider, err := llm.ValidateProvider(p)
		if err != nil {
			return llm.Config{}, fmt.Errorf("invalid embedding provider: %w", err)
		}
		cfg.Provider = embProvider
		cfg.APIKey = ResolveAPIKey(embProvider)
		if m := viper.GetString("llm.embeddingModel"); m != "" {
			cfg.EmbeddingModel = m
		} else {
			cfg.EmbeddingModel = llm.DefaultEmbeddingModelForProvider(embProvider)
		}
	}

	if cfg.EmbeddingModel == "" {
		return llm.Config{}, fmt.Errorf("provider %s has no embedding support; set llm.embeddingProvider", cfg.Provider)
	}
	return cfg, nil
}

// ResolveAPIKey returns the best API key for the given provider using
// per-provider config keys, then provider-specific env vars.
func ResolveAPIKey(provider llm.Provider) string {
	path := fmt.Sprintf("llm.apiKeys.%s", provider)
	if viper.IsSet(path) {
		if key := strings.TrimSpace(viper.GetString(path)); key != "" {
			return key
		}
	}
	return strings.TrimSpace(os.Getenv(providerEnvKey(provider)))
}

func providerEnvKey(provider llm.Provider) string {
	switch provider {
	case llm.ProviderOpenAI:
		return "OPENAI_API_KEY"
	case llm.ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case llm.ProviderGemini:
		return "GEMINI_API_KEY"
	default:
		return ""
	}
}
