package session

import "github.com/ericksa/legalyze/internal/notice"

type EventKind string

const (
	EventDocumentLoaded     EventKind = "document_loaded"
	EventModeChanged        EventKind = "mode_changed"
	EventAnalysisStarted    EventKind = "analysis_started"
	EventAnalysisReady      EventKind = "analysis_ready"
	EventAnalysisFailed     EventKind = "analysis_failed"
	EventTranscriptChanged  EventKind = "transcript_changed"
	EventSandboxChanged     EventKind = "sandbox_changed"
	EventSuggestionsChanged EventKind = "suggestions_changed"
)

// Event is delivered to sinks after every state transition.
type Event struct {
	Kind  EventKind
	State Snapshot
}

// Sink consumes state changes and notices; it is the presentation side.
type Sink interface {
	Notify(n notice.Notice)
	Render(ev Event)
}

// Role tags a visible transcript entry.
type Role string

const (
	RoleUser      Role = "user"
	RolePending   Role = "pending"
	RoleAssistant Role = "assistant"
	RoleError     Role = "error"
)

// Entry is one line of the visible Q&A transcript. Unlike the chat history
// it also holds optimistic, pending and failed entries.
type Entry struct {
	Role Role
	Text string
}

const (
	PendingText  = "Analyzing your question..."
	FallbackText = "Sorry, I encountered an error while processing your question. Please try again."
)
