package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/joescharf/gitval/internal/analysis"
	"github.com/joescharf/gitval/internal/demo"
	"github.com/joescharf/gitval/internal/git"
	"github.com/joescharf/gitval/internal/llm"
	"github.com/joescharf/gitval/internal/scoring"
)

// newFetcher builds the GitHub fetcher from config. A missing token is
// reported when a fetch is attempted.
func newFetcher() (*git.Fetcher, error) {
	return git.NewFetcher(git.Options{
		Token:           viper.GetString("github.token"),
		BaseURL:         viper.GetString("github.base_url"),
		ListPageSize:    viper.GetInt("github.list_page_size"),
		MaxPullRequests: viper.GetInt("github.max_pull_requests"),
		DiffMaxChars:    viper.GetInt("github.diff_max_chars"),
	})
}

// llmConfig reads the settings of the selected provider.
func llmConfig() llm.Config {
	provider := strings.ToLower(viper.GetString("llm.provider"))
	if provider == llm.ProviderAnthropic {
		return llm.Config{
			Provider:  provider,
			APIKey:    viper.GetString("anthropic.api_key"),
			Model:     viper.GetString("anthropic.model"),
			MaxTokens: viper.GetInt64("anthropic.max_tokens"),
		}
	}
	return llm.Config{
		Provider:        provider,
		APIKey:          viper.GetString("openai.api_key"),
		Model:           viper.GetString("openai.model"),
		BaseURL:         viper.GetString("openai.base_url"),
		ReasoningEffort: viper.GetString("openai.reasoning_effort"),
	}
}

// newCompleter returns nil without error when the provider has no API key.
func newCompleter() (llm.Completer, error) {
	cfg := llmConfig()
	c, err := llm.New(cfg)
	if err != nil {
		return nil, err
	}
	if c == nil {
		slog.Debug("no LLM API key configured", "provider", cfg.Provider)
	}
	return c, nil
}

// newService wires the full pipeline from config.
func newService() (*analysis.Service, error) {
	f, err := newFetcher()
	if err != nil {
		return nil, fmt.Errorf("configure GitHub client: %w", err)
	}
	c, err := newCompleter()
	if err != nil {
		return nil, err
	}
	s := scoring.NewScorer(c, viper.GetInt("scoring.prompt_diff_chars"))
	return analysis.NewService(f, s, demo.New(demoDelay())), nil
}
