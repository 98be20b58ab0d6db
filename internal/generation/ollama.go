package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"
)

const (
	DEFAULT_OLLAMA_HOST  = "http://localhost:11434"
	DEFAULT_OLLAMA_MODEL = "llama3.2"
)

type OllamaProvider struct {
	client *api.Client
	model  string
}

func NewOllamaProvider(cfg *Config) (*OllamaProvider, error) {
	host := cfg.BaseURL
	if host == "" {
		host = DEFAULT_OLLAMA_HOST
	}

	base, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
	}

	model := cfg.Model
	if model == "" {
		model = DEFAULT_OLLAMA_MODEL
	}

	return &OllamaProvider{
		client: api.NewClient(base, http.DefaultClient),
		model:  model,
	}, nil
}

func (p *OllamaProvider) Name() string {
	return PROVIDER_OLLAMA + ":" + p.model
}

func (p *OllamaProvider) Complete(ctx context.Context, prompt string) (string, error) {
	stream := false
	req := &api.GenerateRequest{
		Model:  p.model,
		Prompt: prompt,
		Stream: &stream,
		Format: json.RawMessage(`"json"`),
		Options: map[string]interface{}{
			"temperature": 0.7,
			"top_p":       0.9,
		},
	}

	var response string
	err := p.client.Generate(ctx, req, func(g api.GenerateResponse) error {
		response += g.Response
		return nil
	})
	if err != nil {
		var statusErr api.StatusError
		if errors.As(err, &statusErr) {
			return "", &ProviderError{Provider: PROVIDER_OLLAMA, StatusCode: statusErr.StatusCode, Message: statusErr.ErrorMessage, Err: err}
		}
		return "", &ProviderError{Provider: PROVIDER_OLLAMA, Err: err}
	}

	return response, nil
}
