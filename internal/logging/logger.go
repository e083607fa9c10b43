// Package logging provides config-driven categorized file-based logging for the
// job orchestration core.
// Logs are written to .jobcore/logs/ with separate files per category.
// Logging is controlled by debug_mode in .jobcore/config.json - when false, no logs are written.
package logging

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Category represents a log category/system
type Category string

const (
	// Core system categories
	CategoryBoot   Category = "boot"   // Boot/initialization
	CategoryHTTP   Category = "http"   // HTTP surface request handling

	// Task execution categories
	CategoryOrchestrator Category = "orchestrator" // Task run/retry/backoff
	CategoryRouting      Category = "routing"      // Provider/model routing decisions
	CategoryProvider     Category = "provider"     // LLM provider adapter calls
	CategoryTask         Category = "task"         // Prompt building / response parsing

	// Domain categories
	CategoryJob       Category = "job"       // Job lifecycle store operations
	CategoryAssets    Category = "assets"    // Asset coordinator / per-asset generation
	CategoryHeroImage Category = "heroimage" // Hero-image subtask runner
	CategoryVideo     Category = "video"     // Video subtask runner
	CategoryCopilot   Category = "copilot"   // Copilot conversation / tool loop
)

// loggingConfig mirrors the relevant parts of config.LoggingConfig
// to avoid circular imports
type loggingConfig struct {
	DebugMode  bool            `json:"debug_mode"`
	Categories map[string]bool `json:"categories"`
	Level      string          `json:"level"`
	JSONFormat bool            `json:"json_format"` // Output structured JSON lines
}

// configFile structure for reading .jobcore/config.json
type configFile struct {
	Logging loggingConfig `json:"logging"`
}

// StructuredLogEntry represents a JSON log entry for external log shipping.
type StructuredLogEntry struct {
	Timestamp int64  `json:"ts"`       // Unix milliseconds
	Category  string `json:"cat"`      // Log category
	Level     string `json:"lvl"`      // debug/info/warn/error
	Message   string `json:"msg"`      // Log message
	File      string `json:"file"`     // Source file (optional)
	Line      int    `json:"line"`     // Source line (optional)
	RequestID string `json:"req,omitempty"` // Request correlation ID
	Fields    map[string]interface{} `json:"fields,omitempty"` // Additional structured fields
}

// Logger wraps a standard logger with category and file output
type Logger struct {
	category Category
	logger   *log.Logger
	file     *os.File
}

var (
	loggers      = make(map[Category]*Logger)
	loggersMu    sync.RWMutex
	logsDir      string
	workspace    string
	config       loggingConfig
	configLoaded bool
	configMu     sync.RWMutex
	logLevel     int // 0=debug, 1=info, 2=warn, 3=error
)

// Log levels
const (
	LevelDebug = 0
	LevelInfo  = 1
	LevelWarn  = 2
	LevelError = 3
)

// Initialize sets up the logging directory and loads config.
// Should be called once at startup with the workspace path.
func Initialize(ws string) error {
	if ws == "" {
		return fmt.Errorf("workspace path required")
	}

	workspace = ws
	logsDir = filepath.Join(workspace, ".jobcore", "logs")

	// Load config first to check if debug mode is enabled
	if err := loadConfig(); err != nil {
		// Log to stderr if we can't load config
		fmt.Fprintf(os.Stderr, "[logging] Warning: could not load config: %v\n", err)
		// Default to disabled (production mode)
		config.DebugMode = false
	}

	// Only create logs directory if debug mode is enabled
	if !config.DebugMode {
		return nil // Silent no-op in production mode
	}

	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	// Create a boot log entry
	bootLogger := Get(CategoryBoot)
	bootLogger.Info("=== Job Orchestration Core Logging Initialized ===")
	bootLogger.Info("Workspace: %s", workspace)
	bootLogger.Info("Logs directory: %s", logsDir)
	bootLogger.Info("Debug mode: %v", config.DebugMode)
	bootLogger.Info("Log level: %s", config.Level)

	// Log enabled categories
	if len(config.Categories) > 0 {
		enabledCount := 0
		for cat, enabled := range config.Categories {
			if enabled {
				enabledCount++
			}
			bootLogger.Debug("Category '%s': %v", cat, enabled)
		}
		bootLogger.Info("Enabled categories: %d/%d", enabledCount, len(config.Categories))
	} else {
		bootLogger.Info("All categories enabled (no category filter)")
	}

	return nil
}

// loadConfig reads the logging config from .jobcore/config.json
func loadConfig() error {
	configMu.Lock()
	defer configMu.Unlock()

	configPath := filepath.Join(workspace, ".jobcore", "config.json")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// No config = production mode (no logging)
			config.DebugMode = false
			configLoaded = true
			return nil
		}
		return err
	}

	var cf configFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	config = cf.Logging
	configLoaded = true

	// Parse log level
	switch config.Level {
	case "debug":
		logLevel = LevelDebug
	case "info":
		logLevel = LevelInfo
	case "warn", "warning":
		logLevel = LevelWarn
	case "error":
		logLevel = LevelError
	default:
		logLevel = LevelInfo
	}

	return nil
}

// ReloadConfig reloads the config from disk.
// Call this if config changes at runtime.
func ReloadConfig() error {
	return loadConfig()
}

// IsDebugMode returns whether debug logging is enabled
func IsDebugMode() bool {
	configMu.RLock()
	defer configMu.RUnlock()
	return config.DebugMode
}

// IsCategoryEnabled returns whether a specific category is enabled
func IsCategoryEnabled(category Category) bool {
	configMu.RLock()
	defer configMu.RUnlock()

	if !config.DebugMode {
		return false
	}

	if config.Categories == nil {
		return true // All enabled by default in debug mode
	}

	enabled, exists := config.Categories[string(category)]
	if !exists {
		return true // Enable by default if not specified
	}
	return enabled
}

// Get returns (or creates) a logger for the given category.
// Returns a no-op logger if debug mode is disabled or category is disabled.
func Get(category Category) *Logger {
	if !IsCategoryEnabled(category) {
		// Return a no-op logger
		return &Logger{category: category}
	}

	if logsDir == "" {
		return &Logger{category: category}
	}

	loggersMu.RLock()
	if l, ok := loggers[category]; ok {
		loggersMu.RUnlock()
		return l
	}
	loggersMu.RUnlock()

	// Create new logger
	loggersMu.Lock()
	defer loggersMu.Unlock()

	// Double-check after acquiring write lock
	if l, ok := loggers[category]; ok {
		return l
	}

	// Create log file with date prefix for easy rotation
	date := time.Now().Format("2006-01-02")
	filename := fmt.Sprintf("%s_%s.log", date, category)
	logPath := filepath.Join(logsDir, filename)

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		// Fall back to no-op logger
		fmt.Fprintf(os.Stderr, "[logging] Warning: could not open log file %s: %v\n", logPath, err)
		return &Logger{category: category}
	}

	l := &Logger{
		category: category,
		file:     file,
		logger:   log.New(file, "", log.Ldate|log.Ltime|log.Lmicroseconds),
	}
	loggers[category] = l

	return l
}

// logJSON writes a structured JSON log entry
func (l *Logger) logJSON(level, msg string) {
	entry := StructuredLogEntry{
		Timestamp: time.Now().UnixMilli(),
		Category:  string(l.category),
		Level:     level,
		Message:   msg,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		l.logger.Printf("[%s] %s", level, msg) // Fallback to text
		return
	}
	l.logger.Printf("%s", data)
}

// Debug logs a debug message (only if level <= debug)
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelDebug {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if config.JSONFormat {
		l.logJSON("debug", msg)
	} else {
		l.logger.Printf("[DEBUG] %s", msg)
	}
}

// Info logs an informational message (only if level <= info)
func (l *Logger) Info(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelInfo {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if config.JSONFormat {
		l.logJSON("info", msg)
	} else {
		l.logger.Printf("[INFO] %s", msg)
	}
}

// Warn logs a warning message (only if level <= warn)
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelWarn {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if config.JSONFormat {
		l.logJSON("warn", msg)
	} else {
		l.logger.Printf("[WARN] %s", msg)
	}
}

// Error logs an error message (always logged if logger exists)
func (l *Logger) Error(format string, args ...interface{}) {
	if l.logger == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if config.JSONFormat {
		l.logJSON("error", msg)
	} else {
		l.logger.Printf("[ERROR] %s", msg)
	}
}

// StructuredLog writes a fully structured log entry with custom fields
func (l *Logger) StructuredLog(level string, msg string, fields map[string]interface{}) {
	if l.logger == nil {
		return
	}
	entry := StructuredLogEntry{
		Timestamp: time.Now().UnixMilli(),
		Category:  string(l.category),
		Level:     level,
		Message:   msg,
		Fields:    fields,
	}
	if config.JSONFormat {
		data, err := json.Marshal(entry)
		if err == nil {
			l.logger.Printf("%s", data)
			return
		}
	}
	// Fallback to text format with fields
	l.logger.Printf("[%s] %s | fields=%v", level, msg, fields)
}

// IsJSONFormat returns whether JSON logging is enabled
func IsJSONFormat() bool {
	configMu.RLock()
	defer configMu.RUnlock()
	return config.JSONFormat
}

// WithContext returns a context logger for structured logging
func (l *Logger) WithContext(ctx map[string]interface{}) *ContextLogger {
	return &ContextLogger{logger: l, context: ctx}
}

// ContextLogger provides structured logging with key-value context
type ContextLogger struct {
	logger  *Logger
	context map[string]interface{}
}

func (c *ContextLogger) Debug(format string, args ...interface{}) {
	if c.logger.logger == nil || logLevel > LevelDebug {
		return
	}
	msg := fmt.Sprintf(format, args...)
	c.logger.logger.Printf("[DEBUG] %s | ctx=%v", msg, c.context)
}

func (c *ContextLogger) Info(format string, args ...interface{}) {
	if c.logger.logger == nil || logLevel > LevelInfo {
		return
	}
	msg := fmt.Sprintf(format, args...)
	c.logger.logger.Printf("[INFO] %s | ctx=%v", msg, c.context)
}

func (c *ContextLogger) Warn(format string, args ...interface{}) {
	if c.logger.logger == nil || logLevel > LevelWarn {
		return
	}
	msg := fmt.Sprintf(format, args...)
	c.logger.logger.Printf("[WARN] %s | ctx=%v", msg, c.context)
}

func (c *ContextLogger) Error(format string, args ...interface{}) {
	if c.logger.logger == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	c.logger.logger.Printf("[ERROR] %s | ctx=%v", msg, c.context)
}

// CloseAll closes all open log files (call at shutdown)
func CloseAll() {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	for _, l := range loggers {
		if l.file != nil {
			l.file.Close()
		}
	}
	loggers = make(map[Category]*Logger)
}

// =============================================================================
// CONVENIENCE FUNCTIONS - Quick logging without getting a logger first
// These are no-ops if the category is disabled
// =============================================================================

// Boot logs to the boot category
func Boot(format string, args ...interface{}) { Get(CategoryBoot).Info(format, args...) }

// BootDebug logs debug to the boot category
func BootDebug(format string, args ...interface{}) { Get(CategoryBoot).Debug(format, args...) }

// BootWarn logs warning to the boot category
func BootWarn(format string, args ...interface{}) { Get(CategoryBoot).Warn(format, args...) }

// BootError logs error to the boot category
func BootError(format string, args ...interface{}) { Get(CategoryBoot).Error(format, args...) }

// HTTP logs to the http category
func HTTP(format string, args ...interface{}) { Get(CategoryHTTP).Info(format, args...) }

// HTTPDebug logs debug to the http category
func HTTPDebug(format string, args ...interface{}) { Get(CategoryHTTP).Debug(format, args...) }

// HTTPWarn logs warning to the http category
func HTTPWarn(format string, args ...interface{}) { Get(CategoryHTTP).Warn(format, args...) }

// HTTPError logs error to the http category
func HTTPError(format string, args ...interface{}) { Get(CategoryHTTP).Error(format, args...) }

// Orchestrator logs to the orchestrator category
func Orchestrator(format string, args ...interface{}) { Get(CategoryOrchestrator).Info(format, args...) }

// OrchestratorDebug logs debug to the orchestrator category
func OrchestratorDebug(format string, args ...interface{}) {
	Get(CategoryOrchestrator).Debug(format, args...)
}

// OrchestratorWarn logs warning to the orchestrator category
func OrchestratorWarn(format string, args ...interface{}) {
	Get(CategoryOrchestrator).Warn(format, args...)
}

// OrchestratorError logs error to the orchestrator category
func OrchestratorError(format string, args ...interface{}) {
	Get(CategoryOrchestrator).Error(format, args...)
}

// Routing logs to the routing category
func Routing(format string, args ...interface{}) { Get(CategoryRouting).Info(format, args...) }

// RoutingDebug logs debug to the routing category
func RoutingDebug(format string, args ...interface{}) { Get(CategoryRouting).Debug(format, args...) }

// RoutingWarn logs warning to the routing category
func RoutingWarn(format string, args ...interface{}) { Get(CategoryRouting).Warn(format, args...) }

// RoutingError logs error to the routing category
func RoutingError(format string, args ...interface{}) { Get(CategoryRouting).Error(format, args...) }

// Provider logs to the provider category
func Provider(format string, args ...interface{}) { Get(CategoryProvider).Info(format, args...) }

// ProviderDebug logs debug to the provider category
func ProviderDebug(format string, args ...interface{}) { Get(CategoryProvider).Debug(format, args...) }

// ProviderWarn logs warning to the provider category
func ProviderWarn(format string, args ...interface{}) { Get(CategoryProvider).Warn(format, args...) }

// ProviderError logs error to the provider category
func ProviderError(format string, args ...interface{}) { Get(CategoryProvider).Error(format, args...) }

// Task logs to the task category
func Task(format string, args ...interface{}) { Get(CategoryTask).Info(format, args...) }

// TaskDebug logs debug to the task category
func TaskDebug(format string, args ...interface{}) { Get(CategoryTask).Debug(format, args...) }

// TaskWarn logs warning to the task category
func TaskWarn(format string, args ...interface{}) { Get(CategoryTask).Warn(format, args...) }

// TaskError logs error to the task category
func TaskError(format string, args ...interface{}) { Get(CategoryTask).Error(format, args...) }

// Job logs to the job category
func Job(format string, args ...interface{}) { Get(CategoryJob).Info(format, args...) }

// JobDebug logs debug to the job category
func JobDebug(format string, args ...interface{}) { Get(CategoryJob).Debug(format, args...) }

// JobWarn logs warning to the job category
func JobWarn(format string, args ...interface{}) { Get(CategoryJob).Warn(format, args...) }

// JobError logs error to the job category
func JobError(format string, args ...interface{}) { Get(CategoryJob).Error(format, args...) }

// Assets logs to the assets category
func Assets(format string, args ...interface{}) { Get(CategoryAssets).Info(format, args...) }

// AssetsDebug logs debug to the assets category
func AssetsDebug(format string, args ...interface{}) { Get(CategoryAssets).Debug(format, args...) }

// AssetsWarn logs warning to the assets category
func AssetsWarn(format string, args ...interface{}) { Get(CategoryAssets).Warn(format, args...) }

// AssetsError logs error to the assets category
func AssetsError(format string, args ...interface{}) { Get(CategoryAssets).Error(format, args...) }

// HeroImage logs to the heroimage category
func HeroImage(format string, args ...interface{}) { Get(CategoryHeroImage).Info(format, args...) }

// HeroImageDebug logs debug to the heroimage category
func HeroImageDebug(format string, args ...interface{}) { Get(CategoryHeroImage).Debug(format, args...) }

// HeroImageWarn logs warning to the heroimage category
func HeroImageWarn(format string, args ...interface{}) { Get(CategoryHeroImage).Warn(format, args...) }

// HeroImageError logs error to the heroimage category
func HeroImageError(format string, args ...interface{}) { Get(CategoryHeroImage).Error(format, args...) }

// Video logs to the video category
func Video(format string, args ...interface{}) { Get(CategoryVideo).Info(format, args...) }

// VideoDebug logs debug to the video category
func VideoDebug(format string, args ...interface{}) { Get(CategoryVideo).Debug(format, args...) }

// VideoWarn logs warning to the video category
func VideoWarn(format string, args ...interface{}) { Get(CategoryVideo).Warn(format, args...) }

// VideoError logs error to the video category
func VideoError(format string, args ...interface{}) { Get(CategoryVideo).Error(format, args...) }

// Copilot logs to the copilot category
func Copilot(format string, args ...interface{}) { Get(CategoryCopilot).Info(format, args...) }

// CopilotDebug logs debug to the copilot category
func CopilotDebug(format string, args ...interface{}) { Get(CategoryCopilot).Debug(format, args...) }

// CopilotWarn logs warning to the copilot category
func CopilotWarn(format string, args ...interface{}) { Get(CategoryCopilot).Warn(format, args...) }

// CopilotError logs error to the copilot category
func CopilotError(format string, args ...interface{}) { Get(CategoryCopilot).Error(format, args...) }

// =============================================================================
// REQUEST ID TRACING - For distributed request tracing
// =============================================================================

// RequestLogger provides request-scoped logging with a correlation ID
type RequestLogger struct {
	logger    *Logger
	requestID string
	fields    map[string]interface{}
}

// WithRequestID creates a request-scoped logger for distributed tracing
func WithRequestID(category Category, requestID string) *RequestLogger {
	return &RequestLogger{
		logger:    Get(category),
		requestID: requestID,
		fields:    make(map[string]interface{}),
	}
}

// WithField adds a field to the request logger
func (r *RequestLogger) WithField(key string, value interface{}) *RequestLogger {
	r.fields[key] = value
	return r
}

func (r *RequestLogger) formatMsg(format string, args ...interface{}) string {
	msg := fmt.Sprintf(format, args...)
	if len(r.fields) > 0 {
		return fmt.Sprintf("[req:%s] %s | %v", r.requestID, msg, r.fields)
	}
	return fmt.Sprintf("[req:%s] %s", r.requestID, msg)
}

func (r *RequestLogger) Debug(format string, args ...interface{}) {
	if r.logger.logger == nil || logLevel > LevelDebug {
		return
	}
	r.logger.logger.Printf("[DEBUG] %s", r.formatMsg(format, args...))
}

func (r *RequestLogger) Info(format string, args ...interface{}) {
	if r.logger.logger == nil || logLevel > LevelInfo {
		return
	}
	r.logger.logger.Printf("[INFO] %s", r.formatMsg(format, args...))
}

func (r *RequestLogger) Warn(format string, args ...interface{}) {
	if r.logger.logger == nil || logLevel > LevelWarn {
		return
	}
	r.logger.logger.Printf("[WARN] %s", r.formatMsg(format, args...))
}

func (r *RequestLogger) Error(format string, args ...interface{}) {
	if r.logger.logger == nil {
		return
	}
	r.logger.logger.Printf("[ERROR] %s", r.formatMsg(format, args...))
}

// =============================================================================
// TIMING HELPERS - For performance logging
// =============================================================================

// Timer helps measure operation duration
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation
func StartTimer(category Category, operation string) *Timer {
	return &Timer{
		category: category,
		op:       operation,
		start:    time.Now(),
	}
}

// Stop ends the timer and logs the duration
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithInfo ends the timer and logs at info level
func (t *Timer) StopWithInfo() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Info("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithThreshold logs warning if duration exceeds threshold
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		Get(t.category).Warn("%s took %v (threshold: %v)", t.op, elapsed, threshold)
	} else {
		Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	}
	return elapsed
}
