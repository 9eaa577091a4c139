package summary

import (
	"context"
	"errors"

	"github.com/sashabaranov/go-openai"
)

// OpenAISummarizer uses the chat completions API.
type OpenAISummarizer struct {
	client    *openai.Client
	apiKey    string
	model     string
	maxTokens int
}

func NewOpenAISummarizer(apiKey, baseURL, model string, maxTokens int) *OpenAISummarizer {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4
	}
	return &OpenAISummarizer{
		client:    openai.NewClientWithConfig(cfg),
		apiKey:    apiKey,
		model:     model,
		maxTokens: maxTokens,
	}
}

func (o *OpenAISummarizer) Model() string { return o.model }

func (o *OpenAISummarizer) Available() bool { return o.apiKey != "" }

func (o *OpenAISummarizer) Complete(ctx context.Context, system, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.7,
		MaxTokens:   o.maxTokens,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty response from OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}
