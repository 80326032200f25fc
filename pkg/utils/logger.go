package utils

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger writes orchestration progress to a rotated log file and mirrors
// user-facing steps to stdout.
type Logger struct {
	logger        *log.Logger
	quiet         bool
	jsonMode      bool
	correlationID string
}

var (
	globalLogger *Logger
	once         sync.Once
)

// NewLogger creates a logger backed by a rotating file at the given path.
// When quiet is true, process steps are written to the log file only.
func NewLogger(path string, quiet bool) *Logger {
	logFile := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    15, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	l := &Logger{
		logger: log.New(logFile, "", log.LstdFlags),
		quiet:  quiet,
	}
	if os.Getenv("CODESMITH_JSON_LOGS") == "1" {
		l.jsonMode = true
	}
	return l
}

// GetLogger returns the process-wide logger, creating it on first use.
// Components should prefer an injected *Logger; this exists for the CLI
// entry points and for tests that do not care about log placement.
func GetLogger(quiet bool) *Logger {
	once.Do(func() {
		globalLogger = NewLogger(".codesmith/service.log", quiet)
	})
	globalLogger.quiet = quiet
	return globalLogger
}

// WithCorrelationID returns a shallow copy of the logger that tags every
// line with the given request/job identifier.
func (w *Logger) WithCorrelationID(id string) *Logger {
	cp := *w
	cp.correlationID = id
	return &cp
}

// Close closes the underlying rotated file.
func (w *Logger) Close() error {
	if logFile, ok := w.logger.Writer().(*lumberjack.Logger); ok {
		return logFile.Close()
	}
	return nil
}

// LogProcessStep logs the current step in a process and mirrors it to stdout.
func (w *Logger) LogProcessStep(step string) {
	w.write("info", "Process Step: "+step)
	if !w.quiet {
		fmt.Println(step)
	}
}

// Log logs a general message only to the log file.
func (w *Logger) Log(message string) {
	w.write("info", message)
}

// Logf logs a formatted general message only to the log file.
func (w *Logger) Logf(format string, v ...interface{}) {
	w.write("info", fmt.Sprintf(format, v...))
}

func (w *Logger) LogError(err error) {
	w.write("error", fmt.Sprintf("Error: %s", err))
}

func (w *Logger) write(level, message string) {
	if w.jsonMode {
		_ = json.NewEncoder(w.logger.Writer()).Encode(map[string]any{"level": level, "msg": message, "cid": w.correlationID})
		return
	}
	if w.correlationID != "" {
		w.logger.Printf("[%s] %s", w.correlationID, message)
		return
	}
	w.logger.Print(message)
}
