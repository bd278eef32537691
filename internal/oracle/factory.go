package oracle

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jason-s-yu/promptwars/internal/config"
)

// NewProvider selects the provider named by cfg.Provider.
func NewProvider(cfg config.LLMConfig, client *http.Client) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return NewOpenAI(cfg.OpenAIBaseURL, cfg.OpenAIKey, cfg.Model, client), nil
	case "gemini":
		return NewGemini(cfg.GeminiBaseURL, cfg.GeminiKey, cfg.Model, client), nil
	case "ollama":
		return NewOllama(cfg.OllamaBaseURL, cfg.Model, client), nil
	}
	return nil, fmt.Errorf("unknown LLM provider %q, available providers: %s",
		cfg.Provider, strings.Join(config.Providers, ", "))
}
