// Package openai backs structured metadata extraction with OpenAI chat
// models.
package openai

import (
	"context"
	"fmt"
	"log/slog"

	goopenai "github.com/sashabaranov/go-openai"
)

const defaultModel = goopenai.GPT4oMini

type Client struct {
	client *goopenai.Client
	model  string
}

func NewClient(apiKey string) *Client {
	return &Client{
		client: goopenai.NewClient(apiKey),
		model:  defaultModel,
	}
}

// NewClientWithBaseURL points the client at an alternate endpoint. Used for
// tests and OpenAI-compatible gateways.
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	cfg := goopenai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return &Client{
		client: goopenai.NewClientWithConfig(cfg),
		model:  defaultModel,
	}
}

// ExtractStructured sends the prompt in JSON mode and returns the raw
// response content.
func (c *Client) ExtractStructured(ctx context.Context, prompt string) (string, error) {
	slog.DebugContext(ctx, "openai extraction call", "model", c.model, "prompt_length", len(prompt))

	resp, err := c.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0.3,
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		slog.ErrorContext(ctx, "openai extraction failed", "error", err)
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
