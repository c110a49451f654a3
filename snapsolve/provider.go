package snapsolve

import "context"

// Output token ceiling for every stage. Generous on purpose so answers are
// not cut off mid-JSON; truncation is still detected and surfaced.
const maxOutputTokens = 16000

// providerClient is the strategy each backend implements. The processor
// depends only on this interface; request building and response
// normalization stay provider-private behind it.
type providerClient interface {
	// Generate executes one stage call and returns the normalized text.
	Generate(ctx context.Context, plan stagePlan) (string, error)
}

// stagePlan is a normalized, provider-agnostic description of one stage
// call. Building a plan has no side effects.
type stagePlan struct {
	Stage  Stage
	Model  string
	System string
	Prompt string

	// Images are base64-encoded PNGs in capture order; empty for the
	// text-only solution stage.
	Images []string

	Temperature     float32
	MaxOutputTokens int
}

func extractionPlan(cfg Config, language string, images []string) stagePlan {
	return stagePlan{
		Stage:           StageExtraction,
		Model:           cfg.modelForStage(StageExtraction),
		System:          extractionSystem,
		Prompt:          extractionPrompt(language),
		Images:          images,
		Temperature:     0.2,
		MaxOutputTokens: maxOutputTokens,
	}
}

func solutionPlan(cfg Config, info ProblemInfo, language string) stagePlan {
	return stagePlan{
		Stage:           StageSolution,
		Model:           cfg.modelForStage(StageSolution),
		System:          solutionSystem,
		Prompt:          solutionPrompt(info, language),
		Temperature:     0.2,
		MaxOutputTokens: maxOutputTokens,
	}
}

func debugPlan(cfg Config, info ProblemInfo, language string, images []string) stagePlan {
	return stagePlan{
		Stage:           StageDebugging,
		Model:           cfg.modelForStage(StageDebugging),
		System:          debugSystem,
		Prompt:          debugPrompt(info, language),
		Images:          images,
		Temperature:     0.2,
		MaxOutputTokens: maxOutputTokens,
	}
}

func mcqPlan(cfg Config, images []string) stagePlan {
	return stagePlan{
		Stage:           StageMCQ,
		Model:           cfg.modelForStage(StageMCQ),
		System:          mcqSystem,
		Prompt:          mcqPrompt,
		Images:          images,
		Temperature:     0.1,
		MaxOutputTokens: maxOutputTokens,
	}
}
