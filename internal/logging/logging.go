package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu           sync.Mutex
	traceEnabled bool
	logger       = zap.NewNop()
)

// Configure directs log output to path as JSON lines. An empty path disables
// logging entirely, since the terminal belongs to the UI. Directories are
// created automatically when missing.
func Configure(path string) {
	mu.Lock()
	defer mu.Unlock()
	_ = logger.Sync()
	if strings.TrimSpace(path) == "" {
		logger = zap.NewNop()
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "unable to create log directory: %v\n", err)
		logger = zap.NewNop()
		return
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	cfg.Sampling = nil
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	built, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to open log file: %v\n", err)
		logger = zap.NewNop()
		return
	}
	logger = built
}

// SetTraceEnabled toggles emission of trace entries.
func SetTraceEnabled(enabled bool) {
	mu.Lock()
	traceEnabled = enabled
	mu.Unlock()
}

// Logger returns the active logger.
func Logger() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// Trace writes a debug entry for event when tracing is enabled.
func Trace(event string, payload map[string]interface{}) {
	mu.Lock()
	enabled, l := traceEnabled, logger
	mu.Unlock()
	if !enabled {
		return
	}
	if len(payload) == 0 {
		l.Debug(event)
		return
	}
	l.Debug(event, zap.Any("payload", payload))
}

// Info writes an informational entry regardless of tracing.
func Info(msg string, fields ...zap.Field) {
	Logger().Info(msg, fields...)
}

// Error writes err to the log.
func Error(err error) {
	if err == nil {
		return
	}
	Logger().Error(err.Error(), zap.Error(err))
}

// Sync flushes buffered entries.
func Sync() {
	_ = Logger().Sync()
}
