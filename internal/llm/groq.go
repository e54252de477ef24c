package llm

import (
	"context"
	"fmt"

	"github.com/conneroisu/groq-go"
)

var _ Client = (*GroqClient)(nil)

// GroqClient serves the same contract as the HuggingFace client through the
// Groq chat API, for deployments that have a Groq key instead.
type GroqClient struct {
	client *groq.Client
	model  groq.ChatModel
	system string
}

func NewGroqClient(apiKey, model, systemPrompt string) (*GroqClient, error) {
	client, err := groq.NewClient(apiKey)
	if err != nil {
		return nil, fmt.Errorf("create groq client: %w", err)
	}

	return &GroqClient{
		client: client,
		model:  groq.ChatModel(model),
		system: systemPrompt,
	}, nil
}

func (c *GroqClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.ChatCompletion(ctx, groq.ChatCompletionRequest{
		Model: c.model,
		Messages: []groq.ChatCompletionMessage{
			{Role: groq.RoleSystem, Content: c.system},
			{Role: groq.RoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no response choices", ErrUpstreamUnavailable)
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("%w: empty response", ErrUpstreamUnavailable)
	}

	return content, nil
}
