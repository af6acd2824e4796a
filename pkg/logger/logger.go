package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

var logLevelNames = map[LogLevel]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
	FATAL: "FATAL",
}

// ParseLevel maps a config string such as "info" or "WARN" to a LogLevel.
func ParseLevel(s string) (LogLevel, error) {
	for level, name := range logLevelNames {
		if strings.EqualFold(s, name) {
			return level, nil
		}
	}
	return INFO, fmt.Errorf("unknown log level %q", s)
}

func (l LogLevel) String() string {
	if name, ok := logLevelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// Logger writes a human readable line per entry to its console writer and,
// when file logging is enabled, a JSON line to the log file.
// A Logger is created once per process and passed to whatever needs it.
type Logger struct {
	mu      sync.Mutex
	level   LogLevel
	console io.Writer
	file    *os.File
	now     func() time.Time
	exit    func(int)
}

type LogEntry struct {
	Level     string         `json:"level"`
	Timestamp string         `json:"timestamp"`
	Component string         `json:"component,omitempty"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// New returns an INFO level logger writing to console. A nil console
// discards console output.
func New(console io.Writer) *Logger {
	if console == nil {
		console = io.Discard
	}
	return &Logger{
		level:   INFO,
		console: console,
		now:     time.Now,
		exit:    os.Exit,
	}
}

// Nop returns a logger that drops everything.
func Nop() *Logger {
	l := New(io.Discard)
	l.level = FATAL + 1
	return l
}

func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *Logger) GetLevel() LogLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

func (l *Logger) EnableFileLogging(filePath string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	if l.file != nil {
		l.file.Close()
	}

	l.file = file
	return nil
}

// Close releases the log file, if any.
func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
}

func (l *Logger) logMessage(level LogLevel, component string, message string, fields map[string]any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	entry := LogEntry{
		Level:     logLevelNames[level],
		Timestamp: l.now().UTC().Format(time.RFC3339),
		Component: component,
		Message:   message,
		Fields:    fields,
	}

	if l.file != nil {
		jsonData, err := json.Marshal(entry)
		if err == nil {
			l.file.Write(append(jsonData, '\n'))
		}
	}

	var fieldStr string
	if len(fields) > 0 {
		fieldStr = " " + formatFields(fields)
	}

	fmt.Fprintf(l.console, "[%s] [%s]%s %s%s\n",
		entry.Timestamp,
		entry.Level,
		formatComponent(component),
		message,
		fieldStr,
	)

	if level == FATAL {
		l.exit(1)
	}
}

func formatComponent(component string) string {
	if component == "" {
		return ""
	}
	return fmt.Sprintf(" %s:", component)
}

func formatFields(fields map[string]any) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return fmt.Sprintf("{%s}", strings.Join(parts, ", "))
}

func (l *Logger) Debug(message string) {
	l.logMessage(DEBUG, "", message, nil)
}

func (l *Logger) DebugC(component string, message string) {
	l.logMessage(DEBUG, component, message, nil)
}

func (l *Logger) DebugCF(component string, message string, fields map[string]any) {
	l.logMessage(DEBUG, component, message, fields)
}

func (l *Logger) Info(message string) {
	l.logMessage(INFO, "", message, nil)
}

func (l *Logger) InfoC(component string, message string) {
	l.logMessage(INFO, component, message, nil)
}

func (l *Logger) InfoCF(component string, message string, fields map[string]any) {
	l.logMessage(INFO, component, message, fields)
}

func (l *Logger) Warn(message string) {
	l.logMessage(WARN, "", message, nil)
}

func (l *Logger) WarnC(component string, message string) {
	l.logMessage(WARN, component, message, nil)
}

func (l *Logger) WarnCF(component string, message string, fields map[string]any) {
	l.logMessage(WARN, component, message, fields)
}

func (l *Logger) Error(message string) {
	l.logMessage(ERROR, "", message, nil)
}

func (l *Logger) ErrorC(component string, message string) {
	l.logMessage(ERROR, component, message, nil)
}

func (l *Logger) ErrorCF(component string, message string, fields map[string]any) {
	l.logMessage(ERROR, component, message, fields)
}

func (l *Logger) FatalCF(component string, message string, fields map[string]any) {
	l.logMessage(FATAL, component, message, fields)
}
