package snapsolve

import (
	"errors"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func TestBuildChatRequest_TextOnly(t *testing.T) {
	cfg := Config{Provider: ProviderOpenAI, SolutionModel: "gpt-4o"}
	plan := solutionPlan(cfg, ProblemInfo{ProblemStatement: "Two Sum"}, "python")
	req := buildChatRequest(plan, ProviderOpenAI)

	if req.Model != "gpt-4o" {
		t.Errorf("unexpected model %q", req.Model)
	}
	if req.MaxTokens != maxOutputTokens {
		t.Errorf("unexpected max tokens %d", req.MaxTokens)
	}
	if req.Temperature != 0.2 {
		t.Errorf("unexpected temperature %v", req.Temperature)
	}
	if len(req.Messages) != 2 {
		t.Fatalf("expected system + user messages, got %d", len(req.Messages))
	}
	if req.Messages[0].Role != openai.ChatMessageRoleSystem {
		t.Errorf("first message role %q", req.Messages[0].Role)
	}
	user := req.Messages[1]
	if user.Content == "" || len(user.MultiContent) != 0 {
		t.Errorf("text-only plan should use plain content")
	}
	if !strings.Contains(user.Content, "Two Sum") {
		t.Errorf("prompt missing problem statement")
	}
}

func TestBuildChatRequest_ImagesBecomeDataURLs(t *testing.T) {
	cfg := Config{Provider: ProviderOpenAI}
	plan := extractionPlan(cfg, "python", []string{"aGVsbG8=", "d29ybGQ="})
	req := buildChatRequest(plan, ProviderOpenAI)

	user := req.Messages[len(req.Messages)-1]
	if user.Content != "" {
		t.Fatalf("image plan should use multi-content")
	}
	if len(user.MultiContent) != 3 {
		t.Fatalf("expected text part + 2 image parts, got %d", len(user.MultiContent))
	}
	if user.MultiContent[0].Type != openai.ChatMessagePartTypeText {
		t.Errorf("first part should carry the prompt text")
	}
	img := user.MultiContent[1]
	if img.Type != openai.ChatMessagePartTypeImageURL {
		t.Fatalf("second part should be an image")
	}
	if img.ImageURL.URL != "data:image/png;base64,aGVsbG8=" {
		t.Errorf("unexpected data URL %q", img.ImageURL.URL)
	}
	if img.ImageURL.Detail != "" {
		t.Errorf("detail hint is OpenRouter-only, got %q", img.ImageURL.Detail)
	}
}

func TestBuildChatRequest_OpenRouterDetailHint(t *testing.T) {
	cfg := Config{Provider: ProviderOpenRouter, OpenRouterModel: defaultOpenRouterModel}
	plan := extractionPlan(cfg, "python", []string{"aGVsbG8="})
	req := buildChatRequest(plan, ProviderOpenRouter)

	user := req.Messages[len(req.Messages)-1]
	if got := user.MultiContent[1].ImageURL.Detail; got != openai.ImageURLDetailHigh {
		t.Errorf("expected high detail hint, got %q", got)
	}
}

func TestBuildChatRequest_MCQTemperature(t *testing.T) {
	req := buildChatRequest(mcqPlan(Config{Provider: ProviderOpenAI}, []string{"aGVsbG8="}), ProviderOpenAI)
	if req.Temperature != 0.1 {
		t.Errorf("unexpected MCQ temperature %v", req.Temperature)
	}
}

func TestNormalizeChatResponse_Text(t *testing.T) {
	resp := openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message:      openai.ChatCompletionMessage{Content: "answer"},
			FinishReason: openai.FinishReasonStop,
		}},
	}
	got, err := normalizeChatResponse(resp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "answer" {
		t.Errorf("unexpected text %q", got)
	}
}

func TestNormalizeChatResponse_EmptyChoices(t *testing.T) {
	_, err := normalizeChatResponse(openai.ChatCompletionResponse{})
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestNormalizeChatResponse_Truncation(t *testing.T) {
	resp := openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message:      openai.ChatCompletionMessage{Content: "partial"},
			FinishReason: openai.FinishReasonLength,
		}},
	}
	_, err := normalizeChatResponse(resp)
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
	if errors.Is(err, ErrEmptyResponse) {
		t.Errorf("truncation must stay distinguishable from emptiness")
	}
}

func TestNormalizeChatResponse_NoTextContent(t *testing.T) {
	resp := openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message:      openai.ChatCompletionMessage{Content: "   "},
			FinishReason: openai.FinishReasonStop,
		}},
	}
	_, err := normalizeChatResponse(resp)
	if !errors.Is(err, ErrNoTextContent) {
		t.Fatalf("expected ErrNoTextContent, got %v", err)
	}
}
