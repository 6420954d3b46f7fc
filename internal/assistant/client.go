package assistant

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ChatClient answers a question given a system prompt.
type ChatClient interface {
	Complete(ctx context.Context, systemPrompt, question string) (string, error)
}

// OpenAIClient is the production ChatClient.
type OpenAIClient struct {
	client openai.Client
	model  string
}

// NewOpenAIClient constructs the client. model falls back to gpt-4o-mini.
func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	if model == "" {
		model = string(openai.ChatModelGPT4oMini)
	}
	return &OpenAIClient{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

// Complete runs one chat completion round.
func (c *OpenAIClient) Complete(ctx context.Context, systemPrompt, question string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(question),
		},
	})
	if err != nil {
		return "", fmt.Errorf("assistant: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("assistant: empty completion")
	}
	return resp.Choices[0].Message.Content, nil
}
