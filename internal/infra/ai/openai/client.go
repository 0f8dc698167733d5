package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	domai "github.com/bryanwahyu/rfp-compare/internal/domain/ai"
	"github.com/bryanwahyu/rfp-compare/internal/domain/criteria"
	"github.com/bryanwahyu/rfp-compare/internal/infra/ai/prompt"
)

const maxTokens = 2048

// Client implements the Validator port on the OpenAI chat completion API.
// DeepResearchModel, when set, is used for deep-research validations.
type Client struct {
	*openai.Client
	Model             string
	DeepResearchModel string
}

func NewClient(apiKey, model, deepResearchModel string) *Client {
	return &Client{Client: openai.NewClient(apiKey), Model: model, DeepResearchModel: deepResearchModel}
}

// ValidateCriterion asks the model whether entityName meets the criterion,
// expecting the structured JSON schema from the prompt package.
func (c *Client) ValidateCriterion(ctx context.Context, cr criteria.Criterion, entityName string, useDeepResearch bool) (criteria.Judgment, error) {
	model := c.Model
	if model == "" {
		model = "o3-2025-04-16"
	}
	if useDeepResearch && c.DeepResearchModel != "" {
		model = c.DeepResearchModel
	}

	req := openai.ChatCompletionRequest{
		Model: model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.GetSystemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: prompt.GetUserPrompt(entityName, cr.Text)},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return criteria.Judgment{}, fmt.Errorf("%w: %v", domai.ErrQuotaExceeded, err)
		}
		return criteria.Judgment{}, fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return criteria.Judgment{}, fmt.Errorf("empty completion response")
	}

	return prompt.ParseValidation(resp.Choices[0].Message.Content)
}
