package snapsolve

import (
	"regexp"
	"strings"
)

// Config is the persisted assistant configuration. Exactly one provider is
// active at a time; each stage may override the model it invokes.
type Config struct {
	Provider Provider `json:"api_provider"`

	OpenAIAPIKey     string `json:"openai_api_key,omitempty"`
	GeminiAPIKey     string `json:"gemini_api_key,omitempty"`
	OpenRouterAPIKey string `json:"openrouter_api_key,omitempty"`
	OpenRouterModel  string `json:"openrouter_model,omitempty"`

	ExtractionModel string `json:"extraction_model"`
	SolutionModel   string `json:"solution_model"`
	DebuggingModel  string `json:"debugging_model"`
	MCQModel        string `json:"mcq_model"`

	Language    string `json:"language"`
	SolvingMode Mode   `json:"solving_mode"`
}

const (
	defaultOpenAIModel     = "gpt-4o"
	defaultGeminiModel     = "gemini-2.5-flash"
	defaultOpenRouterModel = "meta-llama/llama-3.1-8b-instruct:free"
	defaultLanguage        = "python"
)

// allowedModels is the per-provider model allow-list. OpenRouter is
// user-configurable free-form and has no list.
var allowedModels = map[Provider][]string{
	ProviderOpenAI: {"gpt-4o", "gpt-4o-mini"},
	ProviderGemini: {
		"gemini-2.5-pro",
		"gemini-2.5-flash",
		"gemini-2.5-flash-lite-preview-06-17",
		"gemini-2.0-flash",
	},
}

func defaultConfig() Config {
	return Config{
		Provider:        ProviderGemini,
		OpenRouterModel: defaultOpenRouterModel,
		ExtractionModel: defaultGeminiModel,
		SolutionModel:   defaultGeminiModel,
		DebuggingModel:  defaultGeminiModel,
		MCQModel:        defaultGeminiModel,
		Language:        defaultLanguage,
		SolvingMode:     ModeCoding,
	}
}

func defaultModel(p Provider) string {
	switch p {
	case ProviderOpenAI:
		return defaultOpenAIModel
	case ProviderOpenRouter:
		return defaultOpenRouterModel
	default:
		return defaultGeminiModel
	}
}

// sanitizeModel clamps a model selection to the provider's allow-list,
// falling back to the provider default on anything unrecognized.
func sanitizeModel(model string, p Provider) string {
	if p == ProviderOpenRouter {
		if model == "" {
			return defaultOpenRouterModel
		}
		return model
	}
	for _, allowed := range allowedModels[p] {
		if model == allowed {
			return model
		}
	}
	return defaultModel(p)
}

// APIKey returns the credential for the active provider.
func (c Config) APIKey() string {
	switch c.Provider {
	case ProviderOpenAI:
		return strings.TrimSpace(c.OpenAIAPIKey)
	case ProviderGemini:
		return strings.TrimSpace(c.GeminiAPIKey)
	case ProviderOpenRouter:
		return strings.TrimSpace(c.OpenRouterAPIKey)
	default:
		return ""
	}
}

// HasAPIKey reports whether the active provider has a credential configured.
func (c Config) HasAPIKey() bool {
	return c.APIKey() != ""
}

// modelForStage resolves the model to invoke for a stage, falling through
// explicit per-stage override, then the OpenRouter free-form selection, then
// the provider default.
func (c Config) modelForStage(stage Stage) string {
	var m string
	switch stage {
	case StageExtraction:
		m = c.ExtractionModel
	case StageSolution:
		m = c.SolutionModel
	case StageDebugging:
		m = c.DebuggingModel
	case StageMCQ:
		m = c.MCQModel
	}
	if m == "" && c.Provider == ProviderOpenRouter {
		m = c.OpenRouterModel
	}
	if m == "" {
		m = defaultModel(c.Provider)
	}
	return m
}

var (
	openAIKeyRe     = regexp.MustCompile(`^sk-[a-zA-Z0-9]{32,}$`)
	openRouterKeyRe = regexp.MustCompile(`^sk-or-[a-zA-Z0-9-]{32,}$`)
)

// ValidAPIKeyFormat reports whether key plausibly belongs to the provider.
// Gemini keys have no distinctive prefix, so only a length check applies.
func ValidAPIKeyFormat(key string, p Provider) bool {
	key = strings.TrimSpace(key)
	switch p {
	case ProviderOpenAI:
		return openAIKeyRe.MatchString(key)
	case ProviderGemini:
		return len(key) >= 10
	case ProviderOpenRouter:
		return openRouterKeyRe.MatchString(key)
	default:
		return false
	}
}

// DetectProvider guesses the provider from a key's prefix. Gemini is the
// default since its keys carry no prefix.
func DetectProvider(key string) Provider {
	key = strings.TrimSpace(key)
	switch {
	case strings.HasPrefix(key, "sk-or-"):
		return ProviderOpenRouter
	case strings.HasPrefix(key, "sk-"):
		return ProviderOpenAI
	default:
		return ProviderGemini
	}
}
