// Package logging provides structured audit logging for domain lifecycle events.
// Audit entries are newline-delimited JSON, one event per line, meant as a
// logging seam for an external sink (e.g. BigQuery) rather than a query engine
// in themselves.
package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// AuditEventType identifies the kind of domain event being recorded.
type AuditEventType string

const (
	// Provider/orchestrator events
	AuditLLMRequest  AuditEventType = "llm_request"
	AuditLLMResponse AuditEventType = "llm_response"
	AuditLLMError    AuditEventType = "llm_error"

	// Job lifecycle events
	AuditJobCreated     AuditEventType = "job_created"
	AuditJobRefined     AuditEventType = "job_refined"
	AuditJobFinalized   AuditEventType = "job_finalized"
	AuditJobChannelsSet AuditEventType = "job_channels_set"

	// Asset run events
	AuditAssetPlanned  AuditEventType = "asset_planned"
	AuditAssetComplete AuditEventType = "asset_complete"
	AuditAssetFailed   AuditEventType = "asset_failed"
	AuditHeroImageSet  AuditEventType = "hero_image_set"
	AuditVideoSet      AuditEventType = "video_set"

	// Copilot conversation events
	AuditCopilotTurn      AuditEventType = "copilot_turn"
	AuditCopilotToolCall  AuditEventType = "copilot_tool_call"
	AuditCopilotToolApply AuditEventType = "copilot_tool_apply"

	// HTTP surface events
	AuditHTTPRequest AuditEventType = "http_request"
)

// AuditEvent is a single structured audit log line.
type AuditEvent struct {
	Timestamp  int64                  `json:"ts"`
	EventType  AuditEventType         `json:"event"`
	Category   string                 `json:"cat"`
	RequestID  string                 `json:"req,omitempty"`
	JobID      string                 `json:"jobId,omitempty"`
	Route      string                 `json:"route,omitempty"`
	Target     string                 `json:"target,omitempty"`
	Success    bool                   `json:"success"`
	DurationMs int64                  `json:"dur_ms,omitempty"`
	Error      string                 `json:"error,omitempty"`
	Message    string                 `json:"msg,omitempty"`
	Fields     map[string]interface{} `json:"fields,omitempty"`
}

var (
	auditFile   *os.File
	auditMu     sync.Mutex
	auditLogger *AuditLogger
)

// AuditLogger handles structured audit logging scoped to a job/request.
type AuditLogger struct {
	jobID     string
	requestID string
	category  Category
}

// InitAudit initializes the audit logging system.
func InitAudit() error {
	if !IsDebugMode() {
		return nil
	}

	auditMu.Lock()
	defer auditMu.Unlock()

	if auditFile != nil {
		return nil
	}

	date := time.Now().Format("2006-01-02")
	auditPath := filepath.Join(logsDir, fmt.Sprintf("%s_audit.log", date))

	file, err := os.OpenFile(auditPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	auditFile = file

	header := fmt.Sprintf("# Audit log started at %s\n", time.Now().Format(time.RFC3339))
	auditFile.WriteString(header)

	return nil
}

// CloseAudit closes the audit log file.
func CloseAudit() {
	auditMu.Lock()
	defer auditMu.Unlock()

	if auditFile != nil {
		auditFile.Close()
		auditFile = nil
	}
}

// Audit returns the global, unscoped audit logger.
func Audit() *AuditLogger {
	if auditLogger == nil {
		auditLogger = &AuditLogger{}
	}
	return auditLogger
}

// AuditWithJob creates an audit logger scoped to a job.
func AuditWithJob(jobID string) *AuditLogger {
	return &AuditLogger{jobID: jobID}
}

// AuditWithRequest creates an audit logger scoped to an HTTP request.
func AuditWithRequest(requestID string) *AuditLogger {
	return &AuditLogger{requestID: requestID}
}

// AuditWithContext creates a fully-scoped audit logger.
func AuditWithContext(jobID, requestID string, category Category) *AuditLogger {
	return &AuditLogger{jobID: jobID, requestID: requestID, category: category}
}

// Log writes an audit event, filling in scope defaults.
func (a *AuditLogger) Log(event AuditEvent) {
	if !IsDebugMode() || auditFile == nil {
		return
	}

	if event.Timestamp == 0 {
		event.Timestamp = time.Now().UnixMilli()
	}
	if event.JobID == "" && a.jobID != "" {
		event.JobID = a.jobID
	}
	if event.RequestID == "" && a.requestID != "" {
		event.RequestID = a.requestID
	}
	if event.Category == "" && a.category != "" {
		event.Category = string(a.category)
	}

	auditMu.Lock()
	defer auditMu.Unlock()

	data, err := json.Marshal(event)
	if err == nil {
		auditFile.WriteString(string(data) + "\n")
	}
}

// LLMCall logs a completed provider invocation.
func (a *AuditLogger) LLMCall(taskName, model string, durationMs int64, success bool, errMsg string) {
	a.Log(AuditEvent{
		EventType:  AuditLLMResponse,
		Target:     model,
		Success:    success,
		DurationMs: durationMs,
		Error:      errMsg,
		Fields:     map[string]interface{}{"task": taskName},
		Message:    fmt.Sprintf("llm call: task=%s model=%s success=%v (%dms)", taskName, model, success, durationMs),
	})
}

// JobLifecycle logs a job document transition (created/refined/finalized/channels set).
func (a *AuditLogger) JobLifecycle(eventType AuditEventType, jobID, status string) {
	a.Log(AuditEvent{
		EventType: eventType,
		JobID:     jobID,
		Target:    status,
		Success:   true,
		Message:   fmt.Sprintf("job %s: %s -> %s", eventType, jobID, status),
	})
}

// AssetRun logs an asset coordinator event (planned/complete/failed).
func (a *AuditLogger) AssetRun(eventType AuditEventType, jobID, assetKey string, durationMs int64, success bool, errMsg string) {
	a.Log(AuditEvent{
		EventType:  eventType,
		JobID:      jobID,
		Target:     assetKey,
		Success:    success,
		DurationMs: durationMs,
		Error:      errMsg,
		Message:    fmt.Sprintf("asset %s: job=%s asset=%s success=%v (%dms)", eventType, jobID, assetKey, success, durationMs),
	})
}

// CopilotTurn logs a copilot conversation turn.
func (a *AuditLogger) CopilotTurn(jobID, clientMessageID string, toolCalls int, success bool) {
	a.Log(AuditEvent{
		EventType: AuditCopilotTurn,
		JobID:     jobID,
		Success:   success,
		Fields:    map[string]interface{}{"clientMessageId": clientMessageID, "toolCalls": toolCalls},
		Message:   fmt.Sprintf("copilot turn: job=%s toolCalls=%d success=%v", jobID, toolCalls, success),
	})
}

// HTTPRequest logs a completed HTTP request.
func (a *AuditLogger) HTTPRequest(route string, status int, durationMs int64) {
	a.Log(AuditEvent{
		EventType:  AuditHTTPRequest,
		Route:      route,
		Success:    status < 500,
		DurationMs: durationMs,
		Fields:     map[string]interface{}{"status": status},
		Message:    fmt.Sprintf("http request: route=%s status=%d (%dms)", route, status, durationMs),
	})
}
