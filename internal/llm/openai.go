package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/joescharf/gitval/internal/metrics"
)

const (
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultOpenAIModel   = "gpt-5-nano"
)

// OpenAIClient grades through the chat completions endpoint in JSON mode.
type OpenAIClient struct {
	client          *resty.Client
	model           string
	reasoningEffort string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model           string         `json:"model"`
	Messages        []chatMessage  `json:"messages"`
	ResponseFormat  responseFormat `json:"response_format"`
	ReasoningEffort string         `json:"reasoning_effort,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content json.RawMessage `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewOpenAIClient creates a chat completions client. Empty arguments select
// the defaults. The client never retries.
func NewOpenAIClient(apiKey, baseURL, model, reasoningEffort string) *OpenAIClient {
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetAuthToken(apiKey).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &OpenAIClient{
		client:          client,
		model:           model,
		reasoningEffort: reasoningEffort,
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, system, user string) (string, error) {
	defer metrics.ObserveLLM(ProviderOpenAI, time.Now())

	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		ResponseFormat:  responseFormat{Type: "json_object"},
		ReasoningEffort: c.reasoningEffort,
	}

	var result chatResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("openai API call: %w", err)
	}
	if resp.IsError() {
		return "", &StatusError{Provider: ProviderOpenAI, StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	if len(result.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	text, err := contentText(result.Choices[0].Message.Content)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// contentText accepts message content as a plain string or as an array of
// typed parts, concatenating the text parts.
func contentText(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}

	var parts []struct {
		Type string  `json:"type"`
		Text *string `json:"text"`
	}
	if err := json.Unmarshal(raw, &parts); err != nil {
		return "", fmt.Errorf("unexpected message content shape: %s", truncateRaw(raw))
	}
	var sb strings.Builder
	for _, p := range parts {
		if p.Type == "text" && p.Text != nil {
			sb.WriteString(*p.Text)
		}
	}
	return sb.String(), nil
}

func truncateRaw(raw json.RawMessage) string {
	if len(raw) > 120 {
		return string(raw[:120]) + "..."
	}
	return string(raw)
}
