// Package task holds the static Task Registry plus every task's prompt
// builder and response parser: the generic, provider-agnostic pipeline
// stage the orchestrator drives.
package task

// JobSnapshot is the subset of job state a builder is allowed to see. It is
// passed by value into builders so a builder can never mutate caller state.
type JobSnapshot struct {
	JobID  string            `json:"jobId"`
	Draft  map[string]any    `json:"draft"`
	Fields map[string]string `json:"fields,omitempty"`
}

// TaskContext threads everything a builder/parser pair needs through the
// orchestrator without closure-captured state (DESIGN NOTES: replace
// closure-captured async state with an explicit context value).
type TaskContext struct {
	JobID      string
	Attempt    int
	StrictMode bool

	Job JobSnapshot

	// VisibleFieldIds scopes the suggest task to fields the UI currently shows.
	VisibleFieldIds []string
	// PreviousSuggestions lets suggest avoid repeating a rejected candidate.
	PreviousSuggestions []string
	// UpdatedFieldID names the field whose edit triggered a suggest pass.
	UpdatedFieldID string
	// CompanyContext is optional enrichment text for suggest.
	CompanyContext string

	// SupportedChannels is the caller-supplied allow-list for channel tasks.
	SupportedChannels []string

	// PlanID threads an asset plan identifier through asset_master/asset_adapt.
	PlanID string
	// ChannelID/FormatID scope a single asset-generation call.
	ChannelID string
	FormatID  string

	// PriorStageOutput carries a prior video-pipeline stage's JSON output
	// into the next stage (video_config -> storyboard; the storyboard then
	// feeds both compliance and caption).
	PriorStageOutput string

	// Conversation carries prior copilot turns for copilot_agent.
	Conversation []ConversationMessage
}

// ConversationMessage is one turn in a copilot conversation, as seen by the
// copilot_agent builder.
type ConversationMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ProviderResponse is the adapter-agnostic shape a parser consumes: the raw
// text plus any structured JSON the adapter layer already decoded.
type ProviderResponse struct {
	Text  string
	JSON  map[string]any
	Model string
}

// ParseErrorReason enumerates the closed set of structured-output violation
// reasons a parser can report (spec §4.B/§7).
type ParseErrorReason string

const (
	ReasonStructuredMissing ParseErrorReason = "structured_missing"
	ReasonInvalidChannel    ParseErrorReason = "invalid_channel"
	ReasonInvalidFitScore   ParseErrorReason = "invalid_fit_score"
	ReasonEmptyResponse     ParseErrorReason = "empty_response"
	ReasonParserException   ParseErrorReason = "parser_exception"
)

// maxRawPreview bounds ParseError.RawPreview per spec §8 invariant 10.
const maxRawPreview = 512

// ParseError is the typed failure a parser returns instead of a result.
// It implements error so callers that just want a message can use it
// directly, but the orchestrator inspects Reason/RawPreview explicitly.
type ParseError struct {
	Reason     ParseErrorReason
	Message    string
	RawPreview string
}

func (e *ParseError) Error() string {
	return string(e.Reason) + ": " + e.Message
}

// NewParseError builds a ParseError, truncating rawText to the 512-char
// preview bound.
func NewParseError(reason ParseErrorReason, message, rawText string) *ParseError {
	preview := rawText
	if len(preview) > maxRawPreview {
		preview = preview[:maxRawPreview]
	}
	return &ParseError{Reason: reason, Message: message, RawPreview: preview}
}

// Descriptor is the static, per-task catalog entry (spec §3 Task Descriptor).
type Descriptor struct {
	Name string

	// SystemPrompt is used when SystemBuilder is nil.
	SystemPrompt string
	// SystemBuilder, when set, computes the system prompt from ctx.
	SystemBuilder func(TaskContext) string

	// Builder produces the user prompt payload.
	Builder func(TaskContext) (string, error)

	// Parser validates+normalizes a provider response into a result or error.
	Parser func(ProviderResponse, TaskContext) (any, *ParseError)

	Mode        string // "text" | "json"
	Temperature float64
	MaxTokens   int

	Retries       int
	StrictOnRetry bool
}
