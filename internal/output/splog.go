// Package output provides the console logger and styled output used by the
// git-rewrite commands.
package output

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// consoleHandler writes messages without timestamps or level prefixes.
// Attributes are appended as key=value pairs.
type consoleHandler struct {
	writer    io.Writer
	debugMode bool
	quiet     *bool
	attrs     []slog.Attr
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	if level == slog.LevelDebug {
		return h.debugMode
	}
	return true
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	if *h.quiet {
		return nil
	}

	var sb strings.Builder
	if record.Level >= slog.LevelWarn && !strings.HasPrefix(record.Message, "⚠️") && !strings.HasPrefix(record.Message, "❌") {
		sb.WriteString(strings.ToLower(record.Level.String()))
		sb.WriteString(": ")
	}
	sb.WriteString(record.Message)
	writeAttr := func(a slog.Attr) bool {
		sb.WriteString(" ")
		sb.WriteString(a.Key)
		sb.WriteString("=")
		sb.WriteString(a.Value.String())
		return true
	}
	for _, a := range h.attrs {
		writeAttr(a)
	}
	record.Attrs(writeAttr)

	_, err := fmt.Fprintln(h.writer, sb.String())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

func (h *consoleHandler) WithGroup(_ string) slog.Handler {
	return h
}

// createLumberjackLogger creates a lumberjack logger with configuration from environment variables
func createLumberjackLogger(logFilePath string) *lumberjack.Logger {
	config := &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    1,  // megabytes
		MaxBackups: 2,
		MaxAge:     30, // days
		Compress:   false,
	}

	if maxSizeStr := os.Getenv("GIT_REWRITE_LOG_MAX_SIZE"); maxSizeStr != "" {
		if maxSize, err := strconv.Atoi(maxSizeStr); err == nil && maxSize > 0 {
			config.MaxSize = maxSize
		}
	}
	if maxBackupsStr := os.Getenv("GIT_REWRITE_LOG_MAX_BACKUPS"); maxBackupsStr != "" {
		if maxBackups, err := strconv.Atoi(maxBackupsStr); err == nil && maxBackups >= 0 {
			config.MaxBackups = maxBackups
		}
	}
	if maxAgeStr := os.Getenv("GIT_REWRITE_LOG_MAX_AGE"); maxAgeStr != "" {
		if maxAge, err := strconv.Atoi(maxAgeStr); err == nil && maxAge > 0 {
			config.MaxAge = maxAge
		}
	}

	return config
}

// multiHandler fans out log records to multiple handlers
type multiHandler struct {
	handlers []slog.Handler
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *multiHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, record.Level) {
			if err := handler.Handle(ctx, record.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newHandlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		newHandlers[i] = handler.WithAttrs(attrs)
	}
	return &multiHandler{handlers: newHandlers}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	newHandlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		newHandlers[i] = handler.WithGroup(name)
	}
	return &multiHandler{handlers: newHandlers}
}

// Options configures a Splog
type Options struct {
	// Out receives command results; defaults to os.Stdout
	Out io.Writer
	// Err receives log messages; defaults to os.Stderr
	Err io.Writer
	// Debug enables debug messages on the console
	Debug bool
	// LogFile, when set, receives every message with timestamps
	LogFile string
}

// Splog provides structured logging and output
type Splog struct {
	logger    *slog.Logger
	out       io.Writer
	logWriter io.WriteCloser
	quiet     bool
}

// NewSplog creates a console-only splog writing to stdout and stderr.
// Debug messages are enabled when the DEBUG environment variable is set.
func NewSplog() *Splog {
	splog, _ := NewSplogWithOptions(Options{Debug: os.Getenv("DEBUG") != ""})
	return splog
}

// NewSplogWithOptions creates a splog with optional file logging
func NewSplogWithOptions(opts Options) (*Splog, error) {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	splog := &Splog{out: opts.Out}

	handlers := []slog.Handler{&consoleHandler{
		writer:    opts.Err,
		debugMode: opts.Debug,
		quiet:     &splog.quiet,
	}}

	if opts.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(opts.LogFile), 0750); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		lumberjackLogger := createLumberjackLogger(opts.LogFile)
		splog.logWriter = lumberjackLogger

		handlers = append(handlers, slog.NewTextHandler(lumberjackLogger, &slog.HandlerOptions{
			Level: slog.LevelDebug, // the file always gets everything
			ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey {
					return slog.Attr{Key: a.Key, Value: slog.StringValue(a.Value.Time().Format("2006-01-02 15:04:05.000"))}
				}
				return a
			},
		}))
	}

	splog.logger = slog.New(&multiHandler{handlers: handlers})
	return splog, nil
}

// Logger returns the slog logger backing this splog, for packages that log
// structured records
func (s *Splog) Logger() *slog.Logger {
	return s.logger
}

// SetQuiet suppresses console log output while an interactive prompt owns the terminal
func (s *Splog) SetQuiet(quiet bool) {
	s.quiet = quiet
}

func (s *Splog) logMessage(level slog.Level, format string, args ...any) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	s.logger.Log(context.Background(), level, msg)
}

// Info writes an info message
// nolint // format string validation is handled internally via fmt.Sprintf
func (s *Splog) Info(format string, args ...any) {
	s.logMessage(slog.LevelInfo, format, args...)
}

// Warn writes a warning message
// nolint // format string validation is handled internally via fmt.Sprintf
func (s *Splog) Warn(format string, args ...any) {
	s.logMessage(slog.LevelWarn, "⚠️  "+format, args...)
}

// Error writes an error message
// nolint // format string validation is handled internally via fmt.Sprintf
func (s *Splog) Error(format string, args ...any) {
	s.logMessage(slog.LevelError, "❌ "+format, args...)
}

// Debug writes a debug message
// nolint // format string validation is handled internally via fmt.Sprintf
func (s *Splog) Debug(format string, args ...any) {
	s.logMessage(slog.LevelDebug, format, args...)
}

// Tip writes a tip message
// nolint // format string validation is handled internally via fmt.Sprintf
func (s *Splog) Tip(format string, args ...any) {
	s.logMessage(slog.LevelInfo, "💡 "+format, args...)
}

// Page writes command output, such as new commit ids, to the output stream
func (s *Splog) Page(content string) {
	_, _ = fmt.Fprint(s.out, content)
}

// Newline writes a newline to the output stream
func (s *Splog) Newline() {
	_, _ = fmt.Fprintln(s.out)
}

// Close closes the log file if one was opened
func (s *Splog) Close() error {
	if s.logWriter != nil {
		return s.logWriter.Close()
	}
	return nil
}
