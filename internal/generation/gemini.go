package generation

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

const DEFAULT_GEMINI_MODEL = "gemini-2.0-flash"

type GeminiProvider struct {
	client *genai.Client
	model  string
}

func NewGeminiProvider(cfg *Config) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini API key is required")
	}

	model := cfg.Model
	if model == "" {
		model = DEFAULT_GEMINI_MODEL
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiProvider{client: client, model: model}, nil
}

func (p *GeminiProvider) Name() string {
	return PROVIDER_GEMINI + ":" + p.model
}

func (p *GeminiProvider) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0.7),
	})
	if err != nil {
		return "", &ProviderError{Provider: PROVIDER_GEMINI, Err: err}
	}

	text := resp.Text()
	if text == "" {
		return "", &ProviderError{Provider: PROVIDER_GEMINI, Message: "empty response"}
	}
	return text, nil
}
