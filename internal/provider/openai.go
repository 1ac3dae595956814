package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/docuchat/docuchat-server/internal/config"
	"github.com/docuchat/docuchat-server/internal/types"
)

// OpenAICompatAdapter speaks the OpenAI chat-completions wire format.
// OpenAI, Perplexity, Hugging Face and DeepSeek all expose this shape, so
// one adapter type serves them, parameterized by base URL and default model.
type OpenAICompatAdapter struct {
	name   string
	cfg    config.ProviderConfig
	client *http.Client
}

func NewOpenAICompatAdapter(name string, cfg config.ProviderConfig, client *http.Client) *OpenAICompatAdapter {
	return &OpenAICompatAdapter{name: name, cfg: cfg, client: client}
}

func (a *OpenAICompatAdapter) Name() string { return a.name }

func (a *OpenAICompatAdapter) Complete(ctx context.Context, prompt, system, apiKey, model string) (string, error) {
	if model == "" {
		model = a.cfg.Model
	}

	body := openAIRequestBody{
		Model: model,
		Messages: []types.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   maxOutputTokens,
		Temperature: temperature,
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal %s request: %w", a.name, err)
	}

	url := a.cfg.BaseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create http request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	for k, v := range a.cfg.Headers {
		if v != "" {
			httpReq.Header.Set(k, v)
		}
	}

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%s request: %w", a.name, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read %s response: %w", a.name, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", classifyStatus(a.name, resp.StatusCode, respBody)
	}

	var parsed openAIResponseBody
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("unmarshal %s response: %w", a.name, err)
	}

	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return fallbackAnswer, nil
	}
	return parsed.Choices[0].Message.Content, nil
}

type openAIRequestBody struct {
	Model       string          `json:"model"`
	Messages    []types.Message `json:"messages"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
}

type openAIResponseBody struct {
	Choices []struct {
		Message types.Message `json:"message"`
	} `json:"choices"`
}
