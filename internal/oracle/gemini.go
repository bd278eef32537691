package oracle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-1.5-flash"

// Gemini calls the Generative Language REST API.
type Gemini struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewGemini builds a Gemini provider. An empty apiKey yields a provider that is never available.
func NewGemini(baseURL, apiKey, model string, client *http.Client) *Gemini {
	if model == "" {
		model = DefaultGeminiModel
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Gemini{baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey, model: model, client: client}
}

func (p *Gemini) Name() string  { return "gemini" }
func (p *Gemini) Model() string { return p.model }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  struct {
		Temperature     float64 `json:"temperature"`
		MaxOutputTokens int     `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata *struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

// Generate folds system messages into the system instruction and maps the
// assistant role to "model".
func (p *Gemini) Generate(ctx context.Context, messages []Message, opts GenerateOptions) (Response, error) {
	if p.apiKey == "" {
		return Response{}, errors.New("gemini api key is not configured")
	}

	var req geminiRequest
	var system []string
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			system = append(system, m.Content)
		case RoleAssistant:
			req.Contents = append(req.Contents, geminiContent{Role: "model", Parts: []geminiPart{{Text: m.Content}}})
		default:
			req.Contents = append(req.Contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: m.Content}}})
		}
	}
	if len(system) > 0 {
		req.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: strings.Join(system, "\n\n")}}}
	}
	req.GenerationConfig.Temperature = opts.Temperature
	req.GenerationConfig.MaxOutputTokens = opts.MaxTokens

	var out geminiResponse
	url := fmt.Sprintf("%s/models/%s:generateContent", p.baseURL, p.model)
	if err := doJSON(ctx, p.client, http.MethodPost, url, p.headers(), req, &out); err != nil {
		return Response{}, fmt.Errorf("gemini: %w", err)
	}
	if len(out.Candidates) == 0 {
		return Response{}, errors.New("gemini: response has no candidates")
	}

	var text strings.Builder
	for _, part := range out.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	resp := Response{Content: text.String(), Model: p.model, FinishReason: out.Candidates[0].FinishReason}
	if u := out.UsageMetadata; u != nil {
		resp.Usage = &Usage{PromptTokens: u.PromptTokenCount, CompletionTokens: u.CandidatesTokenCount, TotalTokens: u.TotalTokenCount}
	}
	return resp, nil
}

// IsAvailable fetches the model metadata.
func (p *Gemini) IsAvailable(ctx context.Context) bool {
	if p.apiKey == "" {
		return false
	}
	return doJSON(ctx, p.client, http.MethodGet, p.baseURL+"/models/"+p.model, p.headers(), nil, nil) == nil
}

func (p *Gemini) headers() map[string]string {
	return map[string]string{"x-goog-api-key": p.apiKey}
}
