package utils

import (
	"log"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger writes workspace activity to a rotating log file under the
// project's .docai directory. Credentials are never passed to it.
type Logger struct {
	logger *log.Logger
}

var (
	loggers  = make(map[string]*Logger)
	loggerMu sync.Mutex
)

// GetLogger returns the logger for a project root, creating it on first
// use. Log files rotate so a long-lived project never grows an unbounded
// log.
func GetLogger(rootDir string) *Logger {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	if logger, ok := loggers[rootDir]; ok {
		return logger
	}

	logFile := &lumberjack.Logger{
		Filename:   filepath.Join(rootDir, ".docai", "docai.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	logger := &Logger{logger: log.New(logFile, "", log.LstdFlags)}
	loggers[rootDir] = logger
	return logger
}

// Log writes a general message to the log file only.
func (l *Logger) Log(message string) {
	l.logger.Print(message)
}

// Logf writes a formatted message to the log file only.
func (l *Logger) Logf(format string, v ...interface{}) {
	l.logger.Printf(format, v...)
}

// LogOperation records a workflow operation and its outcome.
func (l *Logger) LogOperation(operation string, details string) {
	l.logger.Printf("Operation: %s, Details: %s", operation, details)
}
