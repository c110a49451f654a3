package snapsolve

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// openRouterBaseURL is the OpenAI-compatible endpoint OpenRouter exposes;
// the same client and wire format serve both providers.
const openRouterBaseURL = "https://openrouter.ai/api/v1"

const clientTimeout = 60 * time.Second

type openAIClient struct {
	name   Provider // ProviderOpenAI or ProviderOpenRouter
	client *openai.Client
}

func newOpenAIClient(cfg Config) (providerClient, error) {
	key := cfg.APIKey()
	if key == "" {
		return nil, fmt.Errorf("%s: %w", cfg.Provider, ErrNotConfigured)
	}
	oc := openai.DefaultConfig(key)
	oc.HTTPClient = &http.Client{Timeout: clientTimeout}
	if cfg.Provider == ProviderOpenRouter {
		oc.BaseURL = openRouterBaseURL
	}
	return &openAIClient{name: cfg.Provider, client: openai.NewClientWithConfig(oc)}, nil
}

func (p *openAIClient) Generate(ctx context.Context, plan stagePlan) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, buildChatRequest(plan, p.name))
	if err != nil {
		return "", err
	}
	return normalizeChatResponse(resp)
}

// buildChatRequest shapes a stage plan into a chat-completion request with
// multimodal content blocks. Pure; shared by OpenAI and OpenRouter.
func buildChatRequest(plan stagePlan, provider Provider) openai.ChatCompletionRequest {
	msgs := make([]openai.ChatCompletionMessage, 0, 2)
	if strings.TrimSpace(plan.System) != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: plan.System,
		})
	}

	if len(plan.Images) == 0 {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: plan.Prompt,
		})
	} else {
		parts := make([]openai.ChatMessagePart, 0, len(plan.Images)+1)
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeText,
			Text: plan.Prompt,
		})
		for _, img := range plan.Images {
			url := &openai.ChatMessageImageURL{URL: "data:image/png;base64," + img}
			if provider == ProviderOpenRouter {
				url.Detail = openai.ImageURLDetailHigh
			}
			parts = append(parts, openai.ChatMessagePart{
				Type:     openai.ChatMessagePartTypeImageURL,
				ImageURL: url,
			})
		}
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:         openai.ChatMessageRoleUser,
			MultiContent: parts,
		})
	}

	return openai.ChatCompletionRequest{
		Model:       plan.Model,
		Messages:    msgs,
		MaxTokens:   plan.MaxOutputTokens,
		Temperature: plan.Temperature,
	}
}

// normalizeChatResponse reduces a chat completion to plain text or a
// structured failure: empty choices, token-ceiling truncation, and missing
// content each map to their own reason.
func normalizeChatResponse(resp openai.ChatCompletionResponse) (string, error) {
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonLength {
		return "", fmt.Errorf("%w: increase the model's max tokens or shorten the prompt", ErrTruncated)
	}
	if strings.TrimSpace(choice.Message.Content) == "" {
		return "", ErrNoTextContent
	}
	return choice.Message.Content, nil
}
