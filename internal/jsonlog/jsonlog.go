package jsonlog

import (
	"encoding/json"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"time"
)

// Level type to represent the severity level for a log entry
type Level int8

const (
	LevelDebug Level = iota - 1
	LevelInfo
	LevelError
	LevelFatal
	LevelOff
)

// String return human friendly string for the severity level
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return ""
	}
}

// ParseLevel maps a flag value such as "debug" or "ERROR" to a Level.
// Unknown values fall back to LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return LevelDebug
	case "ERROR":
		return LevelError
	case "FATAL":
		return LevelFatal
	case "OFF":
		return LevelOff
	default:
		return LevelInfo
	}
}

// Logger writes one JSON object per line to out for every entry at or above
// minLevel. Loggers derived with With share the output and the mutex of their
// parent.
type Logger struct {
	out      io.Writer
	minLevel Level
	mu       *sync.Mutex
	fields   map[string]string
	exit     func(int)
}

// NewLogger return a new Logger instance which writes log entries at or above
// a minimum severity level to a specific output destination
func NewLogger(out io.Writer, minLevel Level) *Logger {
	return &Logger{
		out:      out,
		minLevel: minLevel,
		mu:       &sync.Mutex{},
		exit:     os.Exit,
	}
}

// With returns a child logger which adds fields to the properties of every
// entry it writes. Properties passed to a Print method take precedence.
func (l *Logger) With(fields map[string]string) *Logger {
	merged := make(map[string]string, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}

	return &Logger{
		out:      l.out,
		minLevel: l.minLevel,
		mu:       l.mu,
		fields:   merged,
		exit:     l.exit,
	}
}

func (l *Logger) PrintDebug(message string, properties map[string]string) {
	l.print(LevelDebug, message, properties)
}

// PrintInfo writes message and properties at LevelInfo.
func (l *Logger) PrintInfo(message string, properties map[string]string) {
	l.print(LevelInfo, message, properties)
}

// PrintError writes err and properties at LevelError, with a stack trace.
func (l *Logger) PrintError(err error, properties map[string]string) {
	l.print(LevelError, err.Error(), properties)
}

// PrintFatal writes err and properties at LevelFatal and terminates the
// process.
func (l *Logger) PrintFatal(err error, properties map[string]string) {
	l.print(LevelFatal, err.Error(), properties)
	l.exit(1)
}

func (l *Logger) print(level Level, message string, properties map[string]string) (int, error) {
	if level < l.minLevel {
		return 0, nil
	}

	aux := struct {
		Level      string            `json:"level"`
		Time       string            `json:"time"`
		Message    string            `json:"message"`
		Properties map[string]string `json:"properties,omitempty"`
		Trace      string            `json:"trace,omitempty"`
	}{
		Level:      level.String(),
		Time:       time.Now().UTC().Format(time.RFC3339),
		Message:    message,
		Properties: l.merge(properties),
	}

	// Include a stack trace for entries at the ERROR and FATAL level
	if level >= LevelError {
		aux.Trace = string(debug.Stack())
	}

	line, err := json.Marshal(aux)
	if err != nil {
		line = []byte(LevelError.String() + ": unable to marshal log message: " + err.Error())
	}

	// Lock the mutex so that no two writes to the output destination can happen
	// concurrently, otherwise entries may be intermingled in the output.
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.out.Write(append(line, '\n'))
}

func (l *Logger) merge(properties map[string]string) map[string]string {
	if len(l.fields) == 0 {
		return properties
	}

	merged := make(map[string]string, len(l.fields)+len(properties))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range properties {
		merged[k] = v
	}
	return merged
}

// Write satisfies io.Writer so the logger can back http.Server.ErrorLog.
// Entries are written at LevelError.
func (l *Logger) Write(message []byte) (n int, err error) {
	return l.print(LevelError, strings.TrimSpace(string(message)), nil)
}
