package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the severity of a log entry
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

func (l LogLevel) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	case FatalLevel:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel converts a string to LogLevel, defaulting to info
func ParseLogLevel(level string) LogLevel {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return DebugLevel
	case "INFO":
		return InfoLevel
	case "WARN", "WARNING":
		return WarnLevel
	case "ERROR":
		return ErrorLevel
	case "FATAL":
		return FatalLevel
	default:
		return InfoLevel
	}
}

// LogEntry is a single structured log line
type LogEntry struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Service   string                 `json:"service,omitempty"`
}

// Logger writes structured log entries to a single destination
type Logger struct {
	level      LogLevel
	writer     io.Writer
	service    string
	enableJSON bool
	mu         sync.RWMutex
	fields     map[string]interface{}
}

// Config holds logger configuration
type Config struct {
	Level      LogLevel
	Writer     io.Writer
	Service    string
	EnableJSON bool
}

// New creates a new Logger instance
func New(config Config) *Logger {
	if config.Writer == nil {
		config.Writer = os.Stdout
	}
	if config.Service == "" {
		config.Service = "cinema"
	}

	return &Logger{
		level:      config.Level,
		writer:     config.Writer,
		service:    config.Service,
		enableJSON: config.EnableJSON,
		fields:     make(map[string]interface{}),
	}
}

// NewDefault creates a JSON logger on stdout at info level
func NewDefault() *Logger {
	return New(Config{
		Level:      InfoLevel,
		Writer:     os.Stdout,
		Service:    "cinema",
		EnableJSON: true,
	})
}

// WithFields returns a new logger carrying additional fields
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	l.mu.RLock()
	newFields := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		newFields[k] = v
	}
	l.mu.RUnlock()

	for k, v := range fields {
		newFields[k] = v
	}

	return &Logger{
		level:      l.level,
		writer:     l.writer,
		service:    l.service,
		enableJSON: l.enableJSON,
		fields:     newFields,
	}
}

// WithField returns a new logger with one additional field
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// WithRequestID returns a new logger tagged with the request ID
func (l *Logger) WithRequestID(requestID string) *Logger {
	return l.WithField("request_id", requestID)
}

// SetLevel sets the minimum log level
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// GetLevel returns the current log level
func (l *Logger) GetLevel() LogLevel {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

func (l *Logger) log(level LogLevel, message string, fields map[string]interface{}) {
	l.mu.RLock()
	if level < l.level {
		l.mu.RUnlock()
		return
	}
	l.mu.RUnlock()

	entry := LogEntry{
		Timestamp: time.Now().UTC(),
		Level:     level.String(),
		Message:   message,
		Service:   l.service,
	}

	l.mu.RLock()
	if len(l.fields) > 0 || len(fields) > 0 {
		entry.Fields = make(map[string]interface{})
		for k, v := range l.fields {
			entry.Fields[k] = v
		}
		for k, v := range fields {
			entry.Fields[k] = v
		}
	}

	if requestID, ok := entry.Fields["request_id"].(string); ok {
		entry.RequestID = requestID
		delete(entry.Fields, "request_id")
	}
	l.mu.RUnlock()

	l.writeEntry(entry)

	if level == FatalLevel {
		os.Exit(1)
	}
}

func (l *Logger) writeEntry(entry LogEntry) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.enableJSON {
		data, _ := json.Marshal(entry)
		fmt.Fprintf(l.writer, "%s\n", data)
		return
	}

	// Plain text format for development
	fieldsStr := ""
	if len(entry.Fields) > 0 {
		parts := make([]string, 0, len(entry.Fields))
		for k, v := range entry.Fields {
			parts = append(parts, fmt.Sprintf("%s=%v", k, v))
		}
		fieldsStr = fmt.Sprintf(" {%s}", strings.Join(parts, ", "))
	}

	fmt.Fprintf(l.writer, "%s [%s] %s%s\n",
		entry.Timestamp.Format("2006-01-02 15:04:05"), entry.Level, entry.Message, fieldsStr)
}

func mergeFields(fields []map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{})
	for _, f := range fields {
		for k, v := range f {
			merged[k] = v
		}
	}
	return merged
}

// Debug logs a debug message
func (l *Logger) Debug(message string, fields ...map[string]interface{}) {
	l.log(DebugLevel, message, mergeFields(fields))
}

// Info logs an info message
func (l *Logger) Info(message string, fields ...map[string]interface{}) {
	l.log(InfoLevel, message, mergeFields(fields))
}

// Warn logs a warning message
func (l *Logger) Warn(message string, fields ...map[string]interface{}) {
	l.log(WarnLevel, message, mergeFields(fields))
}

// Error logs an error message
func (l *Logger) Error(message string, fields ...map[string]interface{}) {
	l.log(ErrorLevel, message, mergeFields(fields))
}

// Fatal logs a fatal message and exits
func (l *Logger) Fatal(message string, fields ...map[string]interface{}) {
	l.log(FatalLevel, message, mergeFields(fields))
}

// Debugf logs a formatted debug message
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.log(DebugLevel, fmt.Sprintf(format, args...), nil)
}

// Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.log(InfoLevel, fmt.Sprintf(format, args...), nil)
}

// Warnf logs a formatted warning message
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.log(WarnLevel, fmt.Sprintf(format, args...), nil)
}

// Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.log(ErrorLevel, fmt.Sprintf(format, args...), nil)
}

// Fatalf logs a formatted fatal message and exits
func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.log(FatalLevel, fmt.Sprintf(format, args...), nil)
}

type contextKey string

const loggerContextKey contextKey = "logger"

// FromContext retrieves the request-scoped logger, or a default one
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*Logger); ok {
		return logger
	}
	return NewDefault()
}

// ToContext attaches a logger to the context
func ToContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}
