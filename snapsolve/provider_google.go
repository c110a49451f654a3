package snapsolve

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

type geminiClient struct {
	client *genai.Client
}

func newGeminiClient(cfg Config) (providerClient, error) {
	key := cfg.APIKey()
	if key == "" {
		return nil, fmt.Errorf("%s: %w", cfg.Provider, ErrNotConfigured)
	}
	gc, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:     key,
		HTTPClient: &http.Client{Timeout: clientTimeout},
	})
	if err != nil {
		return nil, err
	}
	return &geminiClient{client: gc}, nil
}

func (p *geminiClient) Generate(ctx context.Context, plan stagePlan) (string, error) {
	contents, cfg, err := buildGenerateContentRequest(plan)
	if err != nil {
		return "", err
	}
	res, err := p.client.Models.GenerateContent(ctx, plan.Model, contents, cfg)
	if err != nil {
		return "", err
	}
	return normalizeGenerateContentResponse(res)
}

// buildGenerateContentRequest shapes a stage plan into a Gemini contents
// array mixing text and inline image data. The system instruction rides
// inline with the user text since every stage is single-turn.
func buildGenerateContentRequest(plan stagePlan) ([]*genai.Content, *genai.GenerateContentConfig, error) {
	text := plan.Prompt
	if strings.TrimSpace(plan.System) != "" {
		text = plan.System + "\n\n" + plan.Prompt
	}

	parts := make([]*genai.Part, 0, len(plan.Images)+1)
	parts = append(parts, &genai.Part{Text: text})
	for i, img := range plan.Images {
		raw, err := base64.StdEncoding.DecodeString(img)
		if err != nil {
			return nil, nil, fmt.Errorf("decoding image %d: %w", i, err)
		}
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: "image/png", Data: raw},
		})
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](plan.Temperature),
		MaxOutputTokens: int32(plan.MaxOutputTokens),
	}
	return []*genai.Content{{Role: "user", Parts: parts}}, cfg, nil
}

// normalizeGenerateContentResponse validates the candidate ladder the way
// the API misbehaves in practice: absent candidates, MAX_TOKENS truncation,
// partless content, then empty text.
func normalizeGenerateContentResponse(res *genai.GenerateContentResponse) (string, error) {
	if res == nil || len(res.Candidates) == 0 {
		return "", ErrEmptyResponse
	}
	cand := res.Candidates[0]
	if cand.FinishReason == genai.FinishReasonMaxTokens {
		return "", fmt.Errorf("%w: increase the model's max tokens or shorten the prompt", ErrTruncated)
	}
	if cand.Content == nil || len(cand.Content.Parts) == 0 {
		if cand.FinishReason != "" {
			return "", fmt.Errorf("incomplete response, finish reason %s: %w", cand.FinishReason, ErrEmptyResponse)
		}
		return "", ErrEmptyResponse
	}

	var text string
	for _, part := range cand.Content.Parts {
		if part.Text == "" {
			continue
		}
		if text == "" {
			text = part.Text
		} else {
			text += "\n" + part.Text
		}
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrNoTextContent
	}
	return text, nil
}
