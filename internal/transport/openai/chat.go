package openai

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/eshop-cloud/recall/internal/domain"
)

// Chat is an LLM chat provider using the OpenAI-compatible API.
type Chat struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewChat creates an OpenAI-compatible chat provider.
func NewChat(cfg *Config) *Chat {
	return &Chat{
		client: newClient(cfg),
		model:  cfg.ChatModel,
		logger: cfg.Logger,
	}
}

// Complete implements domain.ChatCompleter.
func (c *Chat) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return "", parseAPIError(err, domain.ErrChatProviderError)
	}
	if len(resp.Choices) == 0 {
		return "", domain.ErrChatProviderError
	}
	return resp.Choices[0].Message.Content, nil
}
