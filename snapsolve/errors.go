package snapsolve

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// Sentinel failures shared by the response normalizers and the processor.
// Truncation is kept distinct from generic parse failures so the caller can
// suggest raising token limits instead of a blind retry.
var (
	ErrNotConfigured = errors.New("api key not configured")
	ErrEmptyResponse = errors.New("empty or invalid response")
	ErrNoTextContent = errors.New("no text content in response")
	ErrTruncated     = errors.New("response truncated by token limit")
	ErrNoProblemInfo = errors.New("no problem info available")
)

// stageError pairs an internal cause with the exact message surfaced to the
// UI. Parse failures use it so the user sees stage-appropriate wording.
type stageError struct {
	msg   string
	cause error
}

func (e *stageError) Error() string { return e.msg }

func (e *stageError) Unwrap() error { return e.cause }

func failStage(msg string, cause error) error {
	return &stageError{msg: msg, cause: cause}
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// httpStatus extracts the HTTP status from provider SDK errors, or 0.
func httpStatus(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	var gerr genai.APIError
	if errors.As(err, &gerr) {
		return gerr.Code
	}
	return 0
}

// isAuthError reports whether err names a credential problem, which the
// processor escalates to the api-key-invalid signal instead of a generic
// solution error.
func isAuthError(err error) bool {
	return errors.Is(err, ErrNotConfigured) || httpStatus(err) == 401
}

// userMessage maps a stage failure to the message shown to the user.
// Cancellations are benign, transport failures distinguish auth, rate
// limiting and server trouble, and parse failures keep their stage wording.
func userMessage(p Provider, err error) string {
	var se *stageError
	if errors.As(err, &se) {
		return se.msg
	}
	switch {
	case isCanceled(err):
		return "Processing was canceled by the user."
	case errors.Is(err, ErrNotConfigured):
		return fmt.Sprintf("%s API key not configured. Please check your settings.", providerLabel(p))
	case errors.Is(err, ErrTruncated):
		return "Response was truncated due to token limit. Please try with a shorter prompt or increase model's max tokens."
	case errors.Is(err, ErrEmptyResponse):
		return fmt.Sprintf("Empty or invalid response from %s API", providerLabel(p))
	case errors.Is(err, ErrNoTextContent):
		return fmt.Sprintf("No text content in %s API response. The response may be empty or incomplete.", providerLabel(p))
	case errors.Is(err, ErrNoProblemInfo):
		return "No problem info available"
	}
	switch status := httpStatus(err); {
	case status == 401:
		return fmt.Sprintf("Invalid %s API key. Please check your settings.", providerLabel(p))
	case status == 429:
		return fmt.Sprintf("%s API rate limit exceeded or insufficient credits. Please try again later.", providerLabel(p))
	case status >= 500:
		return fmt.Sprintf("%s server error. Please try again later.", providerLabel(p))
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "Failed to process screenshots. Please try again."
}
