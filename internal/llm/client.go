// Package llm provides the language model client and response parsing for
// prediction generation.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client generates a completion for a prompt.
type Client interface {
	// Complete sends the prompt and returns the raw response text.
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
	// Model names the configured model for result attribution.
	Model() string
}

// Supported providers.
const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// HTTPClient talks to an ollama server or an OpenAI-compatible chat API.
type HTTPClient struct {
	provider string
	baseURL  string
	apiKey   string
	model    string
	client   *http.Client
	logger   *zap.Logger
}

// NewHTTPClient creates a client for the given provider ("ollama" or
// "openai"). baseURL is the server root, e.g. http://localhost:11434 or
// https://api.openai.com.
func NewHTTPClient(provider, baseURL, apiKey, model string, timeout time.Duration, logger *zap.Logger) (*HTTPClient, error) {
	switch provider {
	case ProviderOllama, ProviderOpenAI:
	default:
		return nil, fmt.Errorf("unsupported llm provider: %q", provider)
	}
	return &HTTPClient{
		provider: provider,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		apiKey:   apiKey,
		model:    model,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}, nil
}

func (c *HTTPClient) Model() string { return c.model }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Complete sends the prompt as a single user message.
func (c *HTTPClient) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	start := time.Now()
	var text string
	var err error
	if c.provider == ProviderOllama {
		text, err = c.completeOllama(ctx, prompt, maxTokens)
	} else {
		text, err = c.completeOpenAI(ctx, prompt, maxTokens)
	}
	if err != nil {
		return "", fmt.Errorf("llm completion: %w", err)
	}
	c.logger.Debug("llm completion",
		zap.String("provider", c.provider),
		zap.String("model", c.model),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("response_len", len(text)))
	return text, nil
}

func (c *HTTPClient) completeOllama(ctx context.Context, prompt string, maxTokens int) (string, error) {
	body := map[string]interface{}{
		"model":    c.model,
		"messages": []chatMessage{{Role: "user", Content: prompt}},
		"stream":   false,
		"options": map[string]interface{}{
			"num_predict": maxTokens,
		},
	}
	var parsed struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := c.post(ctx, "/api/chat", body, &parsed); err != nil {
		return "", err
	}
	return parsed.Message.Content, nil
}

func (c *HTTPClient) completeOpenAI(ctx context.Context, prompt string, maxTokens int) (string, error) {
	body := map[string]interface{}{
		"model":      c.model,
		"messages":   []chatMessage{{Role: "user", Content: prompt}},
		"max_tokens": maxTokens,
	}
	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := c.post(ctx, "/v1/chat/completions", body, &parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("empty choices in response")
	}
	return parsed.Choices[0].Message.Content, nil
}

func (c *HTTPClient) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
