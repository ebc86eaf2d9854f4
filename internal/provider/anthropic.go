package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	anthropicAPIVersion   = "2023-06-01"
	anthropicDefaultURL   = "https://api.anthropic.com/v1"
	anthropicDefaultModel = "claude-sonnet-4-5-20250929"
)

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text,omitempty"`
	} `json:"content"`
	Usage struct {
		InputTokens  int64 `json:"input_tokens"`
		OutputTokens int64 `json:"output_tokens"`
	} `json:"usage"`
}

type apiErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// anthropicClient calls the Anthropic Messages API.
type anthropicClient struct {
	apiKey     string
	modelName  string
	baseURL    string
	maxTokens  int
	httpClient *http.Client
}

func newAnthropic(config Config) *anthropicClient {
	if config.Model == "" {
		config.Model = anthropicDefaultModel
	}
	if config.BaseURL == "" {
		config.BaseURL = anthropicDefaultURL
	}
	return &anthropicClient{
		apiKey:     config.APIKey,
		modelName:  config.Model,
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		maxTokens:  maxTokens(config),
		httpClient: &http.Client{Timeout: timeout(config)},
	}
}

func (a *anthropicClient) model() string {
	return a.modelName
}

func (a *anthropicClient) complete(ctx context.Context, prompt string) (Completion, error) {
	body, err := json.Marshal(anthropicRequest{
		Model:     a.modelName,
		MaxTokens: a.maxTokens,
		Messages:  []anthropicMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return Completion{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return Completion{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", anthropicAPIVersion)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return Completion{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Completion{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return Completion{}, statusError("anthropic", resp.StatusCode, data)
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return Completion{}, fmt.Errorf("failed to parse response: %w", err)
	}

	var text strings.Builder
	for _, c := range parsed.Content {
		if c.Type == "text" {
			text.WriteString(c.Text)
		}
	}
	if text.Len() == 0 {
		return Completion{}, ErrEmptyResponse
	}

	return Completion{
		Text:             text.String(),
		PromptTokens:     parsed.Usage.InputTokens,
		CompletionTokens: parsed.Usage.OutputTokens,
	}, nil
}

// statusError turns a non-200 response into an error, using the API's error
// message when the body carries one.
func statusError(backend string, status int, body []byte) error {
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		if status == http.StatusTooManyRequests {
			return fmt.Errorf("rate limit exceeded: %s", apiErr.Error.Message)
		}
		return fmt.Errorf("%s error (%d): %s", backend, status, apiErr.Error.Message)
	}
	return fmt.Errorf("%s error: status %d", backend, status)
}

func timeout(config Config) time.Duration {
	if config.Timeout == 0 {
		return 120 * time.Second
	}
	return config.Timeout
}

func maxTokens(config Config) int {
	if config.MaxTokens == 0 {
		return 8192
	}
	return config.MaxTokens
}
