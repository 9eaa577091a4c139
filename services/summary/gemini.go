package summary

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// GeminiSummarizer uses the Gemini generateContent API.
type GeminiSummarizer struct {
	apiKey  string
	model   string
	baseURL string
}

func NewGeminiSummarizer(apiKey, model, baseURL string) *GeminiSummarizer {
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiSummarizer{apiKey: apiKey, model: model, baseURL: baseURL}
}

func (g *GeminiSummarizer) Model() string { return g.model }

func (g *GeminiSummarizer) Available() bool { return g.apiKey != "" }

func (g *GeminiSummarizer) Complete(ctx context.Context, system, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      g.apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: g.baseURL},
	})
	if err != nil {
		return "", fmt.Errorf("create client: %w", err)
	}

	result, err := client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		ResponseMIMEType:  "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
		var text string
		for _, part := range result.Candidates[0].Content.Parts {
			if part.Text != "" {
				text += part.Text
			}
		}
		if text != "" {
			return text, nil
		}
	}
	return "", errors.New("empty response from Gemini")
}
