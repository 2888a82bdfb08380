// Package assist suggests moderation actions for listings using an LLM.
// It is optional; the gateway runs without it when no API key is configured.
package assist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/marketgrid/admin-gateway/internal/model"
)

const systemPrompt = `You review marketplace listings for policy problems.
Given a listing and the list of valid block reasons, answer with the single
most fitting reason, verbatim from the list, or a short free-text reason if
none fits. Answer with the reason text only.`

// Assistant suggests a block reason for an item under review.
type Assistant struct {
	client *openai.Client
	model  string
}

// New creates an assistant. The model defaults to gpt-4o-mini when empty.
func New(apiKey, modelName string) (*Assistant, error) {
	if apiKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}
	if modelName == "" {
		modelName = "gpt-4o-mini"
	}
	return &Assistant{
		client: openai.NewClient(apiKey),
		model:  modelName,
	}, nil
}

// SuggestBlockReason returns a suggested block reason for the item, guided
// by the upstream's reason list for the item's subtype.
func (a *Assistant) SuggestBlockReason(ctx context.Context, item model.Item, reasons []model.BlockReason) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Listing kind: %s\nTitle: %s\nDescription: %s\n", item.Kind, item.Title, item.Description)
	if len(reasons) > 0 {
		sb.WriteString("Valid reasons:\n")
		for _, r := range reasons {
			fmt.Fprintf(&sb, "- %s\n", r.Text)
		}
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: sb.String()},
		},
		MaxTokens:   128,
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no completion returned")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
