package snapsolve

// Provider identifies which LLM backend handles a request.
type Provider string

const (
	ProviderOpenAI     Provider = "openai"
	ProviderGemini     Provider = "gemini"
	ProviderOpenRouter Provider = "openrouter"
)

// providerLabel returns the display name used in user-facing messages.
func providerLabel(p Provider) string {
	switch p {
	case ProviderOpenAI:
		return "OpenAI"
	case ProviderGemini:
		return "Gemini"
	case ProviderOpenRouter:
		return "OpenRouter"
	default:
		return string(p)
	}
}

// Stage is one discrete model invocation phase.
type Stage string

const (
	StageExtraction Stage = "extraction"
	StageSolution   Stage = "solution"
	StageDebugging  Stage = "debugging"
	StageMCQ        Stage = "mcq"
)

// Mode selects the primary processing path: full coding workflow or
// single-shot multiple-choice analysis.
type Mode string

const (
	ModeCoding Mode = "coding"
	ModeMCQ    Mode = "mcq"
)

// View mirrors what the UI is currently showing. A processing run started
// from the queue view is a primary run; one started from the solutions view
// is a debug pass over the extra screenshot queue.
type View string

const (
	ViewQueue     View = "queue"
	ViewSolutions View = "solutions"
)

// ProblemInfo is the structured problem description produced by the
// extraction stage and consumed by the solution and debugging stages.
type ProblemInfo struct {
	ProblemStatement string `json:"problem_statement"`
	Constraints      string `json:"constraints,omitempty"`
	ExampleInput     string `json:"example_input,omitempty"`
	ExampleOutput    string `json:"example_output,omitempty"`
}

// SolutionResult is the fully populated output of the solution stage.
// Every field falls back to a default when the model text lacks it.
type SolutionResult struct {
	Code            string   `json:"code"`
	Thoughts        []string `json:"thoughts"`
	TimeComplexity  string   `json:"time_complexity"`
	SpaceComplexity string   `json:"space_complexity"`
}

// DebugResult is the output of the debugging stage.
type DebugResult struct {
	Code            string   `json:"code"`
	DebugAnalysis   string   `json:"debug_analysis"`
	Thoughts        []string `json:"thoughts"`
	TimeComplexity  string   `json:"time_complexity"`
	SpaceComplexity string   `json:"space_complexity"`
}

// QuestionType classifies a multiple-choice question.
type QuestionType string

const (
	QuestionSingleCorrect   QuestionType = "single_correct"
	QuestionMultipleCorrect QuestionType = "multiple_correct"
	QuestionTrueFalse       QuestionType = "true_false"
)

// MCQResult is the normalized multiple-choice answer. CorrectOptions is
// always a subset of the letters derivable from Options; misformatted model
// output degrades to safe defaults instead of failing the stage.
type MCQResult struct {
	Question       string       `json:"question"`
	Options        []string     `json:"options"`
	CorrectOptions []string     `json:"correct_options"`
	QuestionType   QuestionType `json:"question_type"`
	Reasoning      string       `json:"reasoning"`

	// Display-compatibility fields synthesized from the structured answer so
	// MCQ results render through the same UI path as coding solutions.
	Code            string   `json:"code"`
	Thoughts        []string `json:"thoughts"`
	TimeComplexity  string   `json:"time_complexity"`
	SpaceComplexity string   `json:"space_complexity"`
}
