package recommend

import (
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/post-advisor/constants"
	"github.com/joseph-ayodele/post-advisor/internal/common"
	"github.com/joseph-ayodele/post-advisor/internal/llm"
	"github.com/joseph-ayodele/post-advisor/internal/llm/gemini"
	"github.com/joseph-ayodele/post-advisor/internal/llm/openai"
	"github.com/joseph-ayodele/post-advisor/internal/llm/vertex"
)

// NewProvider builds the configured provider. It returns nil when no credential
// is set, which puts the client in local-fallback mode.
func NewProvider(cfg common.LLMConfig, logger *slog.Logger) (llm.Provider, error) {
	if cfg.APIKey == "" {
		return nil, nil
	}
	switch cfg.Provider {
	case constants.ProviderGemini, "":
		return gemini.NewClient(gemini.Config{
			APIKey:          cfg.APIKey,
			BaseURL:         cfg.BaseURL,
			Model:           cfg.Model,
			Temperature:     cfg.Temperature,
			MaxOutputTokens: cfg.MaxOutputToken,
			Timeout:         cfg.Timeout,
		}, logger), nil
	case constants.ProviderOpenAI:
		return openai.NewClient(openai.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxOutputToken,
			Timeout:     cfg.Timeout,
		}, logger), nil
	case constants.ProviderVertex:
		return vertex.NewClient(vertex.Config{
			ProjectID:       cfg.APIKey,
			Region:          cfg.Region,
			Model:           cfg.Model,
			Temperature:     cfg.Temperature,
			MaxOutputTokens: int32(cfg.MaxOutputToken),
			Timeout:         cfg.Timeout,
		}, logger), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// FallbackNoteFor names the credential variable of the configured provider.
func FallbackNoteFor(provider string) string {
	switch provider {
	case constants.ProviderOpenAI:
		return "Set OPENAI_API_KEY env var to enable AI recommendations."
	case constants.ProviderVertex:
		return "Set VERTEX_PROJECT env var to enable AI recommendations."
	default:
		return FallbackNote
	}
}
