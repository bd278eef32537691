package oracle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAI calls the chat completions endpoint of an OpenAI compatible API.
type OpenAI struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewOpenAI builds an OpenAI provider. An empty apiKey yields a provider that is never available.
func NewOpenAI(baseURL, apiKey, model string, client *http.Client) *OpenAI {
	if model == "" {
		model = DefaultOpenAIModel
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &OpenAI{baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey, model: model, client: client}
}

func (p *OpenAI) Name() string  { return "openai" }
func (p *OpenAI) Model() string { return p.model }

type openAIChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type openAIChatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Usage *Usage `json:"usage"`
}

func (p *OpenAI) Generate(ctx context.Context, messages []Message, opts GenerateOptions) (Response, error) {
	if p.apiKey == "" {
		return Response{}, errors.New("openai api key is not configured")
	}
	var out openAIChatResponse
	err := doJSON(ctx, p.client, http.MethodPost, p.baseURL+"/chat/completions", p.headers(), openAIChatRequest{
		Model:       p.model,
		Messages:    messages,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}, &out)
	if err != nil {
		return Response{}, fmt.Errorf("openai: %w", err)
	}
	if len(out.Choices) == 0 {
		return Response{}, errors.New("openai: response has no choices")
	}
	model := out.Model
	if model == "" {
		model = p.model
	}
	return Response{
		Content:      out.Choices[0].Message.Content,
		Model:        model,
		FinishReason: out.Choices[0].FinishReason,
		Usage:        out.Usage,
	}, nil
}

// IsAvailable retrieves the configured model.
func (p *OpenAI) IsAvailable(ctx context.Context) bool {
	if p.apiKey == "" {
		return false
	}
	return doJSON(ctx, p.client, http.MethodGet, p.baseURL+"/models/"+p.model, p.headers(), nil, nil) == nil
}

func (p *OpenAI) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + p.apiKey}
}
