package provider

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

const openaiDefaultModel = "gpt-4o-mini"

// openaiClient calls the Chat Completions API through go-openai.
type openaiClient struct {
	client    *openai.Client
	modelName string
	maxTokens int
}

func newOpenAI(config Config) *openaiClient {
	if config.Model == "" {
		config.Model = openaiDefaultModel
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{Timeout: timeout(config)}

	return &openaiClient{
		client:    openai.NewClientWithConfig(clientConfig),
		modelName: config.Model,
		maxTokens: maxTokens(config),
	}
}

func (o *openaiClient) model() string {
	return o.modelName
}

func (o *openaiClient) complete(ctx context.Context, prompt string) (Completion, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.modelName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxCompletionTokens: o.maxTokens,
	})
	if err != nil {
		return Completion{}, fmt.Errorf("openai API call failed: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return Completion{}, ErrEmptyResponse
	}

	return Completion{
		Text:             resp.Choices[0].Message.Content,
		PromptTokens:     int64(resp.Usage.PromptTokens),
		CompletionTokens: int64(resp.Usage.CompletionTokens),
	}, nil
}
