package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/w-flo/eu-emission-factors/internal/config"
)

var (
	processLogger *slog.Logger
	processOnce   sync.Once

	logFile   *os.File
	logFileMu sync.Mutex
)

type contextKey string

// RunIDContextKey stores the run ID in a context
const RunIDContextKey contextKey = "run_id"

// InitializeLogger builds the process logger from cfg and installs it as the slog
// default. Only the first call has an effect.
func InitializeLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	var err error
	processOnce.Do(func() {
		var w io.Writer
		if w, err = logDestination(cfg, os.Stdout); err != nil {
			return
		}
		processLogger = NewLogger(cfg, w)
		slog.SetDefault(processLogger)
	})
	return processLogger, err
}

// GetLogger returns the process logger, or slog.Default before InitializeLogger ran
func GetLogger() *slog.Logger {
	if processLogger == nil {
		return slog.Default()
	}
	return processLogger
}

// NewLogger builds a logger writing to w with the level and format of cfg.
// Records carry run_id and trace_id when the context has them.
func NewLogger(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Level)}

	var h slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	return slog.New(runHandler{h})
}

// logDestination resolves the output mode. File modes keep the file open until
// CloseLogFile.
func logDestination(cfg config.LoggingConfig, console io.Writer) (io.Writer, error) {
	mode := strings.ToLower(cfg.Output)
	if mode != "file" && mode != "both" {
		return console, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", cfg.FilePath, err)
	}

	logFileMu.Lock()
	logFile = f
	logFileMu.Unlock()

	if mode == "both" {
		return io.MultiWriter(console, f), nil
	}
	return f, nil
}

// runHandler adds the run and trace identifiers of the context to every record
type runHandler struct {
	slog.Handler
}

func (h runHandler) Handle(ctx context.Context, r slog.Record) error {
	if runID := GetRunID(ctx); runID != "" {
		r.AddAttrs(slog.String("run_id", runID))
	}
	if traceID := TraceIDFromContext(ctx); traceID != "" {
		r.AddAttrs(slog.String("trace_id", traceID))
	}
	return h.Handler.Handle(ctx, r)
}

func (h runHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return runHandler{h.Handler.WithAttrs(attrs)}
}

func (h runHandler) WithGroup(name string) slog.Handler {
	return runHandler{h.Handler.WithGroup(name)}
}

// parseLogLevel accepts the slog level names plus "warning". Unknown names log at info.
func parseLogLevel(level string) slog.Level {
	if strings.EqualFold(level, "warning") {
		return slog.LevelWarn
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// CloseLogFile closes the log file opened by InitializeLogger, if any
func CloseLogFile() error {
	logFileMu.Lock()
	defer logFileMu.Unlock()

	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

// ResetLoggerForTesting closes the log file and allows InitializeLogger to run again
func ResetLoggerForTesting() {
	CloseLogFile()
	processLogger = nil
	processOnce = sync.Once{}
}
