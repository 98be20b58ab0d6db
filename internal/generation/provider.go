package generation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	PROVIDER_GEMINI = "gemini"
	PROVIDER_OLLAMA = "ollama"
	PROVIDER_OPENAI = "openai"

	DEFAULT_TIMEOUT = 30 * time.Second
)

// Provider is a single prompt-in, text-out completion call.
type Provider interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

type Config struct {
	Enabled  bool
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
}

// NewProvider returns nil without error when generation is disabled or no
// provider is configured; the adapter then serves fallback content.
func NewProvider(cfg *Config) (Provider, error) {
	if cfg == nil || !cfg.Enabled || cfg.Provider == "" {
		return nil, nil
	}

	switch cfg.Provider {
	case PROVIDER_GEMINI:
		return NewGeminiProvider(cfg)
	case PROVIDER_OLLAMA:
		return NewOllamaProvider(cfg)
	case PROVIDER_OPENAI:
		return NewOpenAIProvider(cfg)
	default:
		return nil, fmt.Errorf("unsupported generation provider: %s", cfg.Provider)
	}
}

// ProviderError carries the upstream status so quota and credential failures
// can be told apart from transient ones.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

var quotaMarkers = []string{
	"insufficient_quota",
	"quota",
	"billing",
	"credit",
	"api key not valid",
	"api_key_invalid",
	"invalid api key",
	"incorrect api key",
	"permission_denied",
	"unauthenticated",
}

// IsQuotaError reports whether err means the provider refuses service because
// of credentials or exhausted credits. Plain rate limiting is not included.
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}

	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		switch providerErr.StatusCode {
		case http.StatusUnauthorized, http.StatusPaymentRequired, http.StatusForbidden:
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range quotaMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
