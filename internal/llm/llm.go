// Package llm talks to the hosted language models that grade a developer's
// pull requests, and turns their replies into a Score.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/joescharf/gitval/internal/textutil"
)

// Provider names accepted by the llm.provider setting.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Completer sends one system+user exchange to a model and returns the text of
// its reply. Implementations make exactly one request per call.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// ErrEmptyResponse is returned when the model replies without any text.
var ErrEmptyResponse = errors.New("no text content in model response")

// statusBodyChars caps the response body quoted in a StatusError.
const statusBodyChars = 300

// StatusError is a non-2xx reply from a model endpoint.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := textutil.Truncate(strings.TrimSpace(e.Body), statusBodyChars, "...")
	return fmt.Sprintf("%s API error (%d): %s", e.Provider, e.StatusCode, body)
}

// Config selects and configures a provider.
type Config struct {
	Provider        string
	APIKey          string
	Model           string
	BaseURL         string
	ReasoningEffort string
	MaxTokens       int64
}

// New returns the Completer for cfg.Provider. It returns (nil, nil) when the
// provider has no API key so callers can report the missing credential at
// scoring time.
func New(cfg Config) (Completer, error) {
	provider := strings.ToLower(cfg.Provider)
	switch provider {
	case "":
		provider = ProviderOpenAI
	case ProviderOpenAI, ProviderAnthropic:
	default:
		return nil, fmt.Errorf("unknown llm provider %q (want %s or %s)", cfg.Provider, ProviderOpenAI, ProviderAnthropic)
	}
	if cfg.APIKey == "" {
		return nil, nil
	}
	if provider == ProviderAnthropic {
		return NewAnthropicClient(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.MaxTokens), nil
	}
	return NewOpenAIClient(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.ReasoningEffort), nil
}
