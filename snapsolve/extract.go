package snapsolve

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Defaults supplied when a heuristic finds nothing. The complexity defaults
// are complete sentences, not bare notation, so the UI never shows a stub.
const (
	defaultThought         = "Solution approach based on efficiency and readability"
	defaultDebugThought    = "Debug analysis based on your screenshots"
	defaultTimeComplexity  = "O(n) - Linear time complexity because we only iterate through the array once. Each element is processed exactly one time, and the hashmap lookups are O(1) operations."
	defaultSpaceComplexity = "O(n) - Linear space complexity because we store elements in the hashmap. In the worst case, we might need to store all elements before finding the solution pair."
	defaultDebugCode       = "// Debug mode - see analysis below"
)

var (
	codeBlockRe     = regexp.MustCompile("(?s)```[a-zA-Z0-9+#-]*[ \t]*\n?(.*?)```")
	bulletRe        = regexp.MustCompile(`(?m)^\s*(?:[-*•]|\d+\.)\s+(.+)$`)
	bigORe          = regexp.MustCompile(`(?i)O\([^)]+\)`)
	thoughtsLabelRe = regexp.MustCompile(`(?i)(?:Thoughts:|Key Insights:|Reasoning:|Approach:)`)
	timeLabelRe     = regexp.MustCompile(`(?i)Time complexity:?[ \t]*`)
	spaceLabelRe    = regexp.MustCompile(`(?i)Space complexity:?[ \t]*`)
	capitalLineRe   = regexp.MustCompile(`\n\s*[A-Z]`)
	optionLetterRe  = regexp.MustCompile(`^\s*([A-Za-z])[.)]`)
	headingRe       = regexp.MustCompile(`(?m)^#{1,3} `)
)

// extractCodeBlock returns the contents of the first fenced code block,
// whatever language tag it declares.
func extractCodeBlock(text string) (string, bool) {
	m := codeBlockRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// extractThoughts pulls the insight list out of a labeled section
// ("Thoughts:", "Key Insights:", "Reasoning:", "Approach:") bounded by the
// next complexity label or end of text. Bullet and numbered lines win;
// plain non-empty lines are the fallback; a default insight covers a
// missing section entirely.
func extractThoughts(text string) []string {
	loc := thoughtsLabelRe.FindStringIndex(text)
	if loc == nil {
		return []string{defaultThought}
	}
	section := text[loc[1]:]
	bound := len(section)
	if b := timeLabelRe.FindStringIndex(section); b != nil && b[0] < bound {
		bound = b[0]
	}
	if b := spaceLabelRe.FindStringIndex(section); b != nil && b[0] < bound {
		bound = b[0]
	}
	section = section[:bound]

	var thoughts []string
	for _, m := range bulletRe.FindAllStringSubmatch(section, -1) {
		if s := strings.TrimSpace(m[1]); s != "" {
			thoughts = append(thoughts, s)
		}
	}
	if len(thoughts) == 0 {
		for _, line := range strings.Split(section, "\n") {
			if s := strings.TrimSpace(line); s != "" {
				thoughts = append(thoughts, s)
			}
		}
	}
	if len(thoughts) == 0 {
		return []string{defaultThought}
	}
	return thoughts
}

// extractTimeComplexity captures the span after a "Time complexity" label,
// bounded by the "Space complexity" label or end of text.
func extractTimeComplexity(text string) string {
	loc := timeLabelRe.FindStringIndex(text)
	if loc == nil {
		return defaultTimeComplexity
	}
	span := text[loc[1]:]
	if b := spaceLabelRe.FindStringIndex(span); b != nil {
		span = span[:b[0]]
	}
	return normalizeComplexity(strings.TrimSpace(span), defaultTimeComplexity)
}

// extractSpaceComplexity captures the span after a "Space complexity"
// label, bounded by the next line opening a new section or end of text.
func extractSpaceComplexity(text string) string {
	loc := spaceLabelRe.FindStringIndex(text)
	if loc == nil {
		return defaultSpaceComplexity
	}
	span := text[loc[1]:]
	if b := capitalLineRe.FindStringIndex(span); b != nil {
		span = span[:b[0]]
	}
	return normalizeComplexity(strings.TrimSpace(span), defaultSpaceComplexity)
}

// normalizeComplexity guarantees the captured span has both a Big-O token
// and an explanatory connective: a span with no notation gets an "O(n) -"
// prefix, and notation without a "-" or "because" gets a "-" inserted after
// it. Empty spans fall back to the full default sentence.
func normalizeComplexity(span, fallback string) string {
	if span == "" {
		return fallback
	}
	notation := bigORe.FindString(span)
	if notation == "" {
		return "O(n) - " + span
	}
	if !strings.Contains(span, "-") && !strings.Contains(span, "because") {
		rest := strings.TrimSpace(strings.Replace(span, notation, "", 1))
		if rest == "" {
			return notation
		}
		return notation + " - " + rest
	}
	return span
}

// parseProblemInfo decodes the extraction stage's JSON answer. Fences are
// stripped and the sanitizer runs first; a parse failure afterwards is
// terminal for the stage. Non-string fields are re-serialized rather than
// dropped so a model returning, say, a constraints array still yields text.
func parseProblemInfo(text string) (ProblemInfo, error) {
	var m map[string]any
	if err := json.Unmarshal([]byte(sanitizeJSON(stripFences(text))), &m); err != nil {
		return ProblemInfo{}, failStage(
			"Failed to parse problem information. Please try again or use clearer screenshots.",
			err,
		)
	}
	return ProblemInfo{
		ProblemStatement: stringField(m, "problem_statement"),
		Constraints:      stringField(m, "constraints"),
		ExampleInput:     stringField(m, "example_input"),
		ExampleOutput:    stringField(m, "example_output"),
	}, nil
}

func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		raw, _ := json.Marshal(v)
		return string(raw)
	}
}

// parseSolution assembles a fully populated SolutionResult from free-form
// model text. With no fenced block the whole text is taken as code.
func parseSolution(text string) SolutionResult {
	code, ok := extractCodeBlock(text)
	if !ok {
		code = strings.TrimSpace(text)
	}
	return SolutionResult{
		Code:            code,
		Thoughts:        extractThoughts(text),
		TimeComplexity:  extractTimeComplexity(text),
		SpaceComplexity: extractSpaceComplexity(text),
	}
}

// parseDebug assembles a DebugResult. The analysis keeps the model's own
// markdown; when it arrives without headings, the known section names are
// promoted to headings so the UI renders structure.
func parseDebug(text string) DebugResult {
	code := defaultDebugCode
	if c, ok := extractCodeBlock(text); ok {
		code = c
	}

	analysis := text
	if !headingRe.MatchString(analysis) {
		for _, fix := range debugHeadingFixes {
			analysis = replaceFirst(analysis, fix.re, fix.heading)
		}
	}

	var thoughts []string
	for _, m := range bulletRe.FindAllStringSubmatch(analysis, -1) {
		if s := strings.TrimSpace(m[1]); s != "" {
			thoughts = append(thoughts, s)
		}
		if len(thoughts) == 5 {
			break
		}
	}
	if len(thoughts) == 0 {
		thoughts = []string{defaultDebugThought}
	}

	return DebugResult{
		Code:            code,
		DebugAnalysis:   analysis,
		Thoughts:        thoughts,
		TimeComplexity:  "N/A - Debug mode",
		SpaceComplexity: "N/A - Debug mode",
	}
}

var debugHeadingFixes = []struct {
	re      *regexp.Regexp
	heading string
}{
	{regexp.MustCompile(`(?i)issues identified|problems found|bugs found`), "## Issues Identified"},
	{regexp.MustCompile(`(?i)code improvements|improvements|suggested changes`), "## Code Improvements"},
	{regexp.MustCompile(`(?i)optimizations|performance improvements`), "## Optimizations"},
	{regexp.MustCompile(`(?i)explanation|detailed analysis`), "## Explanation"},
}

func replaceFirst(s string, re *regexp.Regexp, repl string) string {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + repl + s[loc[1]:]
}

// parseMCQ decodes the MCQ stage's JSON answer into an MCQResult with
// type-guarded fallbacks: non-array options become empty, correct options
// are filtered to the letters the options actually admit, and missing
// fields get defaults instead of failing the stage. A JSON parse failure
// after sanitization is the only terminal outcome.
func parseMCQ(text string) (MCQResult, error) {
	var m map[string]any
	if err := json.Unmarshal([]byte(sanitizeJSON(stripFences(text))), &m); err != nil {
		return MCQResult{}, failStage("Failed to parse MCQ analysis. Please try again.", err)
	}

	options := stringSlice(m["options"])
	correct := filterLetters(stringSlice(m["correct_options"]), options)

	qt := QuestionType(stringField(m, "question_type"))
	switch qt {
	case QuestionSingleCorrect, QuestionMultipleCorrect, QuestionTrueFalse:
	default:
		qt = QuestionSingleCorrect
	}

	question := stringField(m, "question")
	reasoning := stringField(m, "reasoning")

	res := MCQResult{
		Question:       question,
		Options:        options,
		CorrectOptions: correct,
		QuestionType:   qt,
		Reasoning:      reasoning,
	}
	if res.Question == "" {
		res.Question = "Question extracted from image"
	}
	if res.Reasoning == "" {
		res.Reasoning = "Analysis based on the provided image"
	}

	res.Code = mcqDisplayBlock(question, options, correct, reasoning)
	answers := strings.Join(correct, ", ")
	if answers == "" {
		answers = "Not determined"
	}
	res.Thoughts = []string{
		fmt.Sprintf("Question Type: %s", qt),
		fmt.Sprintf("Correct Answer(s): %s", answers),
	}
	res.TimeComplexity = "N/A - MCQ Mode"
	res.SpaceComplexity = "N/A - MCQ Mode"
	return res, nil
}

// mcqDisplayBlock synthesizes the compatibility "code" text so MCQ answers
// flow through the same display path as coding solutions.
func mcqDisplayBlock(question string, options, correct []string, reasoning string) string {
	if question == "" {
		question = "Question not extracted"
	}
	if reasoning == "" {
		reasoning = "No reasoning provided"
	}
	return fmt.Sprintf("Question: %s\n\nOptions:\n%s\n\nCorrect Answer(s): %s\n\nReasoning:\n%s",
		question, strings.Join(options, "\n"), strings.Join(correct, ", "), reasoning)
}

func stringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// filterLetters keeps only the answers whose letter is derivable from the
// option list, either from an explicit "A." / "B)" prefix or from the
// option's position.
func filterLetters(answers, options []string) []string {
	allowed := make(map[string]bool, len(options))
	for i, opt := range options {
		if m := optionLetterRe.FindStringSubmatch(opt); m != nil {
			allowed[strings.ToUpper(m[1])] = true
		} else if i < 26 {
			allowed[string(rune('A'+i))] = true
		}
	}
	out := make([]string, 0, len(answers))
	for _, a := range answers {
		letter := strings.ToUpper(strings.TrimSpace(a))
		if allowed[letter] {
			out = append(out, letter)
		}
	}
	return out
}
