package oracle

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// DefaultOllamaModel is used when no model is configured.
const DefaultOllamaModel = "llama3.2"

// Ollama calls a local Ollama server. It needs no credentials.
type Ollama struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllama builds an Ollama provider.
func NewOllama(baseURL, model string, client *http.Client) *Ollama {
	if model == "" {
		model = DefaultOllamaModel
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Ollama{baseURL: strings.TrimRight(baseURL, "/"), model: model, client: client}
}

func (p *Ollama) Name() string  { return "ollama" }
func (p *Ollama) Model() string { return p.model }

type ollamaChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
	Options  struct {
		Temperature float64 `json:"temperature"`
		NumPredict  int     `json:"num_predict"`
	} `json:"options"`
}

type ollamaChatResponse struct {
	Model           string  `json:"model"`
	Message         Message `json:"message"`
	DoneReason      string  `json:"done_reason"`
	PromptEvalCount int     `json:"prompt_eval_count"`
	EvalCount       int     `json:"eval_count"`
}

func (p *Ollama) Generate(ctx context.Context, messages []Message, opts GenerateOptions) (Response, error) {
	req := ollamaChatRequest{Model: p.model, Messages: messages}
	req.Options.Temperature = opts.Temperature
	req.Options.NumPredict = opts.MaxTokens

	var out ollamaChatResponse
	if err := doJSON(ctx, p.client, http.MethodPost, p.baseURL+"/api/chat", nil, req, &out); err != nil {
		return Response{}, fmt.Errorf("ollama: %w", err)
	}
	finish := out.DoneReason
	if finish == "" {
		finish = "stop"
	}
	return Response{
		Content:      out.Message.Content,
		Model:        p.model,
		FinishReason: finish,
		Usage: &Usage{
			PromptTokens:     out.PromptEvalCount,
			CompletionTokens: out.EvalCount,
			TotalTokens:      out.PromptEvalCount + out.EvalCount,
		},
	}, nil
}

// IsAvailable lists the pulled models and looks for the configured one, with or without a tag.
func (p *Ollama) IsAvailable(ctx context.Context) bool {
	var tags struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := doJSON(ctx, p.client, http.MethodGet, p.baseURL+"/api/tags", nil, nil, &tags); err != nil {
		return false
	}
	for _, m := range tags.Models {
		if m.Name == p.model || strings.HasPrefix(m.Name, p.model+":") {
			return true
		}
	}
	return false
}
