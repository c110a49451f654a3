package snapsolve

import "github.com/google/uuid"

// EventKind names a lifecycle notification sent to the UI collaborator.
type EventKind string

const (
	EventInitialStart     EventKind = "initial-start"
	EventNoScreenshots    EventKind = "no-screenshots"
	EventProblemExtracted EventKind = "problem-extracted"
	EventSolutionSuccess  EventKind = "solution-success"
	EventSolutionError    EventKind = "solution-error"
	EventDebugStart       EventKind = "debug-start"
	EventDebugSuccess     EventKind = "debug-success"
	EventDebugError       EventKind = "debug-error"
	EventAPIKeyInvalid    EventKind = "api-key-invalid"
	EventProgress         EventKind = "processing-status"
)

// Progress is a best-effort UI hint. Percentages increase monotonically
// within a cycle; delivery is not guaranteed and never drives control flow.
type Progress struct {
	Message  string `json:"message"`
	Progress int    `json:"progress"`
}

// Event is one UI notification. Cycle ties events from the same processing
// run together; cancel-all notifications carry uuid.Nil.
type Event struct {
	Cycle uuid.UUID
	Kind  EventKind

	// Data holds the event payload: ProblemInfo for problem-extracted,
	// SolutionResult or MCQResult for solution-success, DebugResult for
	// debug-success, a message string for the error kinds, and Progress for
	// processing-status. Nil for the bare signals.
	Data any
}

// EventSink receives lifecycle events from the processor. Implementations
// must not block; the processor sends synchronously from its worker.
type EventSink interface {
	Send(Event)
}
