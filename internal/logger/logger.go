package logger

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"
)

// LogLevel is the severity of a log record
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

var (
	pid          = os.Getpid()
	levelStrings = map[LogLevel]string{
		DEBUG: "DEBUG",
		INFO:  "INFO",
		WARN:  "WARN",
		ERROR: "ERROR",
	}
)

// ParseLevel maps a config string to a level, defaulting to INFO
func ParseLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG
	case "WARN":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// Logger writes leveled records with timestamp, PID, caller function and
// key=value context fields. ERROR and above go to stderr.
type Logger struct {
	minLevel LogLevel
}

// NewLogger creates a logger that drops records below minLevel
func NewLogger(minLevel LogLevel) *Logger {
	return &Logger{minLevel: minLevel}
}

var defaultLogger = NewLogger(INFO)

// callerName extracts the calling function's short name
func callerName(skip int) string {
	pc, _, _, ok := runtime.Caller(skip)
	if !ok {
		return "unknown"
	}
	fullName := runtime.FuncForPC(pc).Name()
	parts := strings.Split(fullName, "/")
	name := parts[len(parts)-1]
	if idx := strings.LastIndex(name, "."); idx != -1 {
		return name[idx+1:]
	}
	return name
}

func format(level LogLevel, funcName, message string, context map[string]interface{}) string {
	timestamp := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")

	var contextStr string
	if len(context) > 0 {
		pairs := make([]string, 0, len(context))
		for k, v := range context {
			pairs = append(pairs, fmt.Sprintf("%s=%v", k, v))
		}
		contextStr = " | " + strings.Join(pairs, " ")
	}

	return fmt.Sprintf("[%s] [PID:%d] [%s] %s: %s%s",
		timestamp, pid, funcName, levelStrings[level], message, contextStr)
}

func (l *Logger) log(level LogLevel, message string, context map[string]interface{}) {
	if level < l.minLevel {
		return
	}

	// Skip: log -> Debug/Info/Warn/Error -> actual caller
	msg := format(level, callerName(3), message, context)

	if level >= ERROR {
		fmt.Fprintln(os.Stderr, msg)
	} else {
		fmt.Fprintln(os.Stdout, msg)
	}
}

func (l *Logger) Debug(message string, context ...map[string]interface{}) {
	l.log(DEBUG, message, first(context))
}

func (l *Logger) Info(message string, context ...map[string]interface{}) {
	l.log(INFO, message, first(context))
}

func (l *Logger) Warn(message string, context ...map[string]interface{}) {
	l.log(WARN, message, first(context))
}

func (l *Logger) Error(message string, context ...map[string]interface{}) {
	l.log(ERROR, message, first(context))
}

func first(context []map[string]interface{}) map[string]interface{} {
	if len(context) > 0 {
		return context[0]
	}
	return nil
}

// Package-level functions through the default logger

func Debug(message string, context ...map[string]interface{}) {
	defaultLogger.Debug(message, context...)
}

func Info(message string, context ...map[string]interface{}) {
	defaultLogger.Info(message, context...)
}

func Warn(message string, context ...map[string]interface{}) {
	defaultLogger.Warn(message, context...)
}

func Error(message string, context ...map[string]interface{}) {
	defaultLogger.Error(message, context...)
}

// SetMinLevel adjusts the default logger's threshold
func SetMinLevel(level LogLevel) {
	defaultLogger.minLevel = level
}
