package snapsolve

import (
	"errors"
	"strings"
	"testing"

	"google.golang.org/genai"
)

func TestBuildGenerateContentRequest_SystemRidesWithPrompt(t *testing.T) {
	cfg := Config{Provider: ProviderGemini}
	contents, gen, err := buildGenerateContentRequest(extractionPlan(cfg, "go", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(contents) != 1 || contents[0].Role != "user" {
		t.Fatalf("expected a single user content, got %+v", contents)
	}
	if len(contents[0].Parts) != 1 {
		t.Fatalf("expected one text part, got %d", len(contents[0].Parts))
	}
	text := contents[0].Parts[0].Text
	if !strings.Contains(text, extractionSystem) {
		t.Errorf("system instruction missing from text")
	}
	if !strings.Contains(text, "go") {
		t.Errorf("language missing from prompt")
	}
	if gen.MaxOutputTokens != maxOutputTokens {
		t.Errorf("unexpected token ceiling %d", gen.MaxOutputTokens)
	}
	if gen.Temperature == nil || *gen.Temperature != 0.2 {
		t.Errorf("unexpected temperature %v", gen.Temperature)
	}
}

func TestBuildGenerateContentRequest_DecodesImages(t *testing.T) {
	cfg := Config{Provider: ProviderGemini}
	contents, _, err := buildGenerateContentRequest(extractionPlan(cfg, "python", []string{"aGVsbG8="}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	parts := contents[0].Parts
	if len(parts) != 2 {
		t.Fatalf("expected text + image parts, got %d", len(parts))
	}
	blob := parts[1].InlineData
	if blob == nil {
		t.Fatalf("expected inline image data")
	}
	if blob.MIMEType != "image/png" {
		t.Errorf("unexpected mime type %q", blob.MIMEType)
	}
	if string(blob.Data) != "hello" {
		t.Errorf("image bytes not decoded, got %q", blob.Data)
	}
}

func TestBuildGenerateContentRequest_RejectsBadBase64(t *testing.T) {
	cfg := Config{Provider: ProviderGemini}
	_, _, err := buildGenerateContentRequest(extractionPlan(cfg, "python", []string{"%%%not base64%%%"}))
	if err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestNormalizeGenerateContentResponse_JoinsTextParts(t *testing.T) {
	res := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "first"},
				{Text: "second"},
			}},
		}},
	}
	got, err := normalizeGenerateContentResponse(res)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "first\nsecond" {
		t.Errorf("unexpected text %q", got)
	}
}

func TestNormalizeGenerateContentResponse_NoCandidates(t *testing.T) {
	if _, err := normalizeGenerateContentResponse(nil); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("nil response: expected ErrEmptyResponse, got %v", err)
	}
	_, err := normalizeGenerateContentResponse(&genai.GenerateContentResponse{})
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("empty candidates: expected ErrEmptyResponse, got %v", err)
	}
}

func TestNormalizeGenerateContentResponse_MaxTokens(t *testing.T) {
	res := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonMaxTokens}},
	}
	_, err := normalizeGenerateContentResponse(res)
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}

func TestNormalizeGenerateContentResponse_PartlessContentNamesReason(t *testing.T) {
	res := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}},
	}
	_, err := normalizeGenerateContentResponse(res)
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
	if !strings.Contains(err.Error(), string(genai.FinishReasonSafety)) {
		t.Errorf("finish reason missing from error: %v", err)
	}
}

func TestNormalizeGenerateContentResponse_OnlyEmptyText(t *testing.T) {
	res := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: "  "}}},
		}},
	}
	_, err := normalizeGenerateContentResponse(res)
	if !errors.Is(err, ErrNoTextContent) {
		t.Fatalf("expected ErrNoTextContent, got %v", err)
	}
}
