package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gojek/heimdall/v7/httpclient"
)

const (
	DEFAULT_OPENAI_BASE_URL = "https://api.openai.com/v1"
	DEFAULT_OPENAI_MODEL    = "gpt-4o-mini"
)

// OpenAIProvider talks to any OpenAI compatible chat completions endpoint.
type OpenAIProvider struct {
	client  *httpclient.Client
	apiKey  string
	baseURL string
	model   string
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model          string            `json:"model"`
	Messages       []openAIMessage   `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

func NewOpenAIProvider(cfg *Config) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DEFAULT_OPENAI_BASE_URL
	}

	model := cfg.Model
	if model == "" {
		model = DEFAULT_OPENAI_MODEL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DEFAULT_TIMEOUT
	}

	// single attempt, the adapter never retries
	client := httpclient.NewClient(
		httpclient.WithHTTPTimeout(timeout),
		httpclient.WithRetryCount(0),
	)

	return &OpenAIProvider{client: client, apiKey: cfg.APIKey, baseURL: baseURL, model: model}, nil
}

func (p *OpenAIProvider) Name() string {
	return PROVIDER_OPENAI + ":" + p.model
}

func (p *OpenAIProvider) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(openAIRequest{
		Model:          p.model,
		Messages:       []openAIMessage{{Role: "user", Content: prompt}},
		Temperature:    0.7,
		ResponseFormat: map[string]string{"type": "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if resp == nil {
		return "", &ProviderError{Provider: PROVIDER_OPENAI, Err: err}
	}
	defer resp.Body.Close()

	raw, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return "", &ProviderError{Provider: PROVIDER_OPENAI, StatusCode: resp.StatusCode, Err: readErr}
	}

	var parsed openAIResponse
	_ = json.Unmarshal(raw, &parsed)

	if resp.StatusCode != http.StatusOK || err != nil {
		message := string(raw)
		if parsed.Error != nil {
			message = parsed.Error.Code + ": " + parsed.Error.Message
		}
		return "", &ProviderError{Provider: PROVIDER_OPENAI, StatusCode: resp.StatusCode, Message: message, Err: err}
	}

	if len(parsed.Choices) == 0 {
		return "", &ProviderError{Provider: PROVIDER_OPENAI, StatusCode: resp.StatusCode, Message: "no choices in response"}
	}

	return parsed.Choices[0].Message.Content, nil
}
