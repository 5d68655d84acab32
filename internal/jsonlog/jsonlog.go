package jsonlog

import (
	"encoding/json"
	"io"
	"os"
	"runtime/debug"
	"sync"
	"time"
)

// Level is a custom type for defining log levels.
type Level int8

// Log level constants to define different levels of logging severity.
const (
	LevelInfo  Level = iota // General informational messages.
	LevelWarn               // Unusual but tolerated conditions, such as disabled authentication.
	LevelError              // Errors the application recovered from.
	LevelFatal              // Errors after which the application cannot continue.
	LevelOff                // No logging.
)

// String converts the log level to its string representation.
func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return ""
	}
}

// ParseLevel maps a level name such as "info" or "ERROR" to a Level.
func ParseLevel(s string) (Level, bool) {
	switch s {
	case "info", "INFO":
		return LevelInfo, true
	case "warn", "WARN":
		return LevelWarn, true
	case "error", "ERROR":
		return LevelError, true
	case "fatal", "FATAL":
		return LevelFatal, true
	case "off", "OFF":
		return LevelOff, true
	}
	return LevelOff, false
}

// Logger writes one JSON object per line and drops messages below minLevel.
// Loggers derived with With share the output and its lock.
type Logger struct {
	out      io.Writer         // Destination for the log messages, such as os.Stdout.
	minLevel Level             // Minimum log level to output messages for.
	fields   map[string]string // Properties bound with With, added to every entry.
	mu       *sync.Mutex       // Serializes writes to out across derived loggers.
	exit     func(int)         // Called by PrintFatal; os.Exit outside tests.
}

// New creates a new Logger instance.
func New(out io.Writer, minLevel Level) *Logger {
	return &Logger{
		out:      out,
		minLevel: minLevel,
		mu:       &sync.Mutex{},
		exit:     os.Exit,
	}
}

// With returns a Logger that adds properties to every entry. Properties
// passed to a Print call take precedence over bound ones.
func (l *Logger) With(properties map[string]string) *Logger {
	merged := make(map[string]string, len(l.fields)+len(properties))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range properties {
		merged[k] = v
	}
	child := *l
	child.fields = merged
	return &child
}

// PrintInfo logs a message at the INFO level.
func (l *Logger) PrintInfo(message string, properties map[string]string) {
	l.print(LevelInfo, message, properties)
}

// PrintWarn logs a message at the WARN level.
func (l *Logger) PrintWarn(message string, properties map[string]string) {
	l.print(LevelWarn, message, properties)
}

// PrintError logs an error message at the ERROR level.
func (l *Logger) PrintError(err error, properties map[string]string) {
	l.print(LevelError, err.Error(), properties)
}

// PrintFatal logs an error message at the FATAL level and then exits the application.
func (l *Logger) PrintFatal(err error, properties map[string]string) {
	l.print(LevelFatal, err.Error(), properties)
	l.exit(1)
}

// print writes a log entry if the log level is at or above the minimum level.
func (l *Logger) print(level Level, message string, properties map[string]string) (int, error) {
	// Return immediately if the log level is below the minimum threshold.
	if level < l.minLevel {
		return 0, nil
	}

	// Merge bound fields under the per-call properties.
	if len(l.fields) > 0 {
		merged := make(map[string]string, len(l.fields)+len(properties))
		for k, v := range l.fields {
			merged[k] = v
		}
		for k, v := range properties {
			merged[k] = v
		}
		properties = merged
	}

	// Define a struct to hold the log entry data.
	aux := struct {
		Level      string            `json:"level"`                // The log level (e.g., INFO, ERROR).
		Time       string            `json:"time"`                 // The current time in UTC, RFC 3339.
		Message    string            `json:"message"`              // The log message.
		Properties map[string]string `json:"properties,omitempty"` // Optional properties to include with the log message.
		Trace      string            `json:"trace,omitempty"`      // Stack trace, included for error levels and above.
	}{
		Level:      level.String(),
		Time:       time.Now().UTC().Format(time.RFC3339),
		Message:    message,
		Properties: properties,
	}

	// Include a stack trace if the log level is ERROR or higher.
	if level >= LevelError {
		aux.Trace = string(debug.Stack())
	}

	// Marshal the log entry to JSON.
	line, err := json.Marshal(aux)
	if err != nil {
		// If JSON marshaling fails, log the error in plain text.
		line = []byte(LevelError.String() + ": unable to marshal log message: " + err.Error())
	}

	// Ensure that log writes are atomic by locking the mutex.
	l.mu.Lock()
	defer l.mu.Unlock()

	// Write the log entry to the output, appending a newline.
	return l.out.Write(append(line, '\n'))
}

// Write logs a message at the ERROR level, so a Logger can back a log.Logger
// such as http.Server.ErrorLog.
func (l *Logger) Write(message []byte) (n int, err error) {
	return l.print(LevelError, string(message), nil)
}
