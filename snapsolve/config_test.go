package snapsolve

import (
	"strings"
	"testing"
)

func TestSanitizeModel_AllowList(t *testing.T) {
	if got := sanitizeModel("gpt-4o-mini", ProviderOpenAI); got != "gpt-4o-mini" {
		t.Errorf("allowed model rewritten to %q", got)
	}
	if got := sanitizeModel("gpt-3.5-turbo", ProviderOpenAI); got != defaultOpenAIModel {
		t.Errorf("unknown model should clamp to default, got %q", got)
	}
	if got := sanitizeModel("gemini-1.0-pro", ProviderGemini); got != defaultGeminiModel {
		t.Errorf("unknown model should clamp to default, got %q", got)
	}
}

func TestSanitizeModel_OpenRouterFreeForm(t *testing.T) {
	if got := sanitizeModel("anthropic/claude-3-haiku", ProviderOpenRouter); got != "anthropic/claude-3-haiku" {
		t.Errorf("free-form selection rewritten to %q", got)
	}
	if got := sanitizeModel("", ProviderOpenRouter); got != defaultOpenRouterModel {
		t.Errorf("empty selection should default, got %q", got)
	}
}

func TestModelForStage_Fallthrough(t *testing.T) {
	cfg := Config{Provider: ProviderGemini, ExtractionModel: "gemini-2.5-pro"}
	if got := cfg.modelForStage(StageExtraction); got != "gemini-2.5-pro" {
		t.Errorf("override ignored, got %q", got)
	}
	if got := cfg.modelForStage(StageSolution); got != defaultGeminiModel {
		t.Errorf("expected provider default, got %q", got)
	}

	or := Config{Provider: ProviderOpenRouter, OpenRouterModel: "qwen/qwen-2.5-72b-instruct"}
	if got := or.modelForStage(StageSolution); got != "qwen/qwen-2.5-72b-instruct" {
		t.Errorf("openrouter selection ignored, got %q", got)
	}
	if got := (Config{Provider: ProviderOpenRouter}).modelForStage(StageMCQ); got != defaultOpenRouterModel {
		t.Errorf("expected openrouter default, got %q", got)
	}
}

func TestAPIKey_TracksActiveProvider(t *testing.T) {
	cfg := Config{
		Provider:     ProviderGemini,
		OpenAIAPIKey: "sk-" + strings.Repeat("a", 40),
		GeminiAPIKey: " gem-key-with-padding ",
	}
	if got := cfg.APIKey(); got != "gem-key-with-padding" {
		t.Errorf("expected trimmed gemini key, got %q", got)
	}
	cfg.Provider = ProviderOpenRouter
	if cfg.HasAPIKey() {
		t.Errorf("inactive provider keys must not count")
	}
}

func TestValidAPIKeyFormat(t *testing.T) {
	openAIKey := "sk-" + strings.Repeat("a", 40)
	openRouterKey := "sk-or-v1-" + strings.Repeat("b", 40)

	if !ValidAPIKeyFormat(openAIKey, ProviderOpenAI) {
		t.Errorf("well-formed openai key rejected")
	}
	if ValidAPIKeyFormat("sk-short", ProviderOpenAI) {
		t.Errorf("short openai key accepted")
	}
	if !ValidAPIKeyFormat(openRouterKey, ProviderOpenRouter) {
		t.Errorf("well-formed openrouter key rejected")
	}
	if ValidAPIKeyFormat(openAIKey, ProviderOpenRouter) {
		t.Errorf("openai key accepted as openrouter")
	}
	if !ValidAPIKeyFormat("AIzaSyExample123", ProviderGemini) {
		t.Errorf("plausible gemini key rejected")
	}
	if ValidAPIKeyFormat("short", ProviderGemini) {
		t.Errorf("too-short gemini key accepted")
	}
}

func TestDetectProvider(t *testing.T) {
	if got := DetectProvider("sk-or-v1-abc"); got != ProviderOpenRouter {
		t.Errorf("expected openrouter, got %q", got)
	}
	if got := DetectProvider("sk-abcdef"); got != ProviderOpenAI {
		t.Errorf("expected openai, got %q", got)
	}
	if got := DetectProvider("AIzaSyExample123"); got != ProviderGemini {
		t.Errorf("expected gemini, got %q", got)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()
	if cfg.Provider != ProviderGemini {
		t.Errorf("unexpected default provider %q", cfg.Provider)
	}
	if cfg.Language != defaultLanguage || cfg.SolvingMode != ModeCoding {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.ExtractionModel != defaultGeminiModel || cfg.MCQModel != defaultGeminiModel {
		t.Errorf("stage models should default to %q", defaultGeminiModel)
	}
}
