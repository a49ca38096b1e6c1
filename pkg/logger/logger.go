package logger

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
)

// Level represents log verbosity levels.
// Higher levels include all lower level logs:
// ERROR (0) - Only critical errors
// WARN (1) - Warnings and errors
// INFO (2) - Important events (startup, shutdown) + warn/error
// DEBUG (3) - Everything including per-request logs
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

var levelFromString = map[string]Level{
	"error": LevelError,
	"warn":  LevelWarn,
	"info":  LevelInfo,
	"debug": LevelDebug,
}

type Logger struct {
	mu     sync.RWMutex
	level  Level
	stdLog *log.Logger
	errLog *log.Logger
}

var defaultLogger = &Logger{
	level:  LevelInfo,
	stdLog: log.New(os.Stdout, "", log.LstdFlags),
	errLog: log.New(os.Stderr, "", log.LstdFlags),
}

// SetLevel sets the global log level
func SetLevel(level Level) {
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	defaultLogger.level = level
}

// SetLevelFromString sets log level from a string (error, warn, info, debug)
func SetLevelFromString(levelStr string) error {
	level, ok := levelFromString[strings.ToLower(levelStr)]
	if !ok {
		return fmt.Errorf("invalid log level: %s (valid: error, warn, info, debug)", levelStr)
	}
	SetLevel(level)
	return nil
}

// shouldLog returns true if the given level should be logged
func shouldLog(level Level) bool {
	defaultLogger.mu.RLock()
	defer defaultLogger.mu.RUnlock()
	return level <= defaultLogger.level
}

// Debug logs debug-level messages (high frequency, verbose)
// Ex: per-request access lines, reconciliation details
func Debug(format string, args ...any) {
	if shouldLog(LevelDebug) {
		defaultLogger.stdLog.Printf("[DEBUG] "+format, args...)
	}
}

// Info logs info-level messages (important events)
// Ex: server startup, shutdown
func Info(format string, args ...any) {
	if shouldLog(LevelInfo) {
		defaultLogger.stdLog.Printf("[INFO] "+format, args...)
	}
}

// Warn logs warning-level messages
// Ex: best-effort leaderboard writes failing, recoverable errors
func Warn(format string, args ...any) {
	if shouldLog(LevelWarn) {
		defaultLogger.stdLog.Printf("[WARN] "+format, args...)
	}
}

// Error logs error-level messages
// Ex: failed store transactions, unrecoverable errors
func Error(format string, args ...any) {
	if shouldLog(LevelError) {
		defaultLogger.errLog.Printf("[ERROR] "+format, args...)
	}
}

// Fatal logs an error and exits
func Fatal(format string, args ...any) {
	defaultLogger.errLog.Printf("[FATAL] "+format, args...)
	os.Exit(1)
}
