package snapsolve

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	fenceRe         = regexp.MustCompile("```(?:json)?")
	trailingCommaRe = regexp.MustCompile(`,(\s*[}\]])`)
)

// stripFences removes markdown code fences the models like to wrap JSON in.
func stripFences(s string) string {
	return strings.TrimSpace(fenceRe.ReplaceAllString(s, ""))
}

// sanitizeJSON repairs common defects in model-emitted JSON: stray control
// characters, trailing commas, an unterminated final string, and unclosed
// objects or arrays. Already-valid input is returned unchanged apart from
// surrounding whitespace, so the pass is idempotent. If the result still
// fails to parse, the caller treats that as terminal; no further repair is
// attempted.
func sanitizeJSON(s string) string {
	cleaned := strings.TrimSpace(stripControlChars(s))
	if json.Valid([]byte(cleaned)) {
		return cleaned
	}
	cleaned = trailingCommaRe.ReplaceAllString(cleaned, "$1")
	if json.Valid([]byte(cleaned)) {
		return cleaned
	}
	return closeUnbalanced(cleaned)
}

// stripControlChars drops control characters that break JSON parsing,
// keeping tab, newline and carriage return.
func stripControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		if r < 0x20 || r == 0x7F {
			return -1
		}
		return r
	}, s)
}

// closeUnbalanced closes an unterminated trailing string and then appends
// the closers for any still-open objects and arrays, innermost first. A
// stack keeps each closer matched to its own opener; quotes inside string
// values do not confuse the count because the scan tracks string state.
func closeUnbalanced(s string) string {
	var stack []byte
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{', '[':
			if !inString {
				stack = append(stack, c)
			}
		case '}':
			if !inString && len(stack) > 0 && stack[len(stack)-1] == '{' {
				stack = stack[:len(stack)-1]
			}
		case ']':
			if !inString && len(stack) > 0 && stack[len(stack)-1] == '[' {
				stack = stack[:len(stack)-1]
			}
		}
	}

	var b strings.Builder
	b.WriteString(s)
	if inString {
		b.WriteByte('"')
	}
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			b.WriteByte('}')
		} else {
			b.WriteByte(']')
		}
	}
	return b.String()
}
