// Package logger is the debug stream of the library: a global zerolog
// logger with optional rotated file output. Parse failures, dlopen
// errors and other OS-level detail are reported here and never become
// part of the public error surface.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	// Log is the global logger instance. Until Init runs it writes
	// error-level events and above to stderr and discards the rest.
	Log = zerolog.New(os.Stderr).Level(zerolog.ErrorLevel).With().Timestamp().Logger()

	// fileWriter is the file output for logging (with rotation)
	fileWriter *lumberjack.Logger
)

// LoggingConfig holds configuration for file-based logging.
type LoggingConfig struct {
	FileEnabled *bool
	MaxSizeMB   int
	MaxAgeDays  int
	MaxBackups  int
}

// IsFileEnabled returns whether file logging is enabled.
// Defaults to true if not explicitly set.
func (c *LoggingConfig) IsFileEnabled() bool {
	if c.FileEnabled == nil {
		return true
	}
	return *c.FileEnabled
}

// GetMaxSizeMB returns the max size in MB, defaulting to 50 if not set.
func (c *LoggingConfig) GetMaxSizeMB() int {
	if c.MaxSizeMB <= 0 {
		return 50
	}
	return c.MaxSizeMB
}

// GetMaxAgeDays returns the max age in days, defaulting to 7 if not set.
func (c *LoggingConfig) GetMaxAgeDays() int {
	if c.MaxAgeDays <= 0 {
		return 7
	}
	return c.MaxAgeDays
}

// GetMaxBackups returns the max backups, defaulting to 3 if not set.
func (c *LoggingConfig) GetMaxBackups() int {
	if c.MaxBackups <= 0 {
		return 3
	}
	return c.MaxBackups
}

// Init initializes the global logger with console-only output. Use
// InitWithFile for file logging.
func Init(debug bool) {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    false,
	}

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	Log = zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// InitWithFile initializes the logger with optional file output. If
// logsDir is empty or cfg indicates file logging is disabled, this
// behaves like Init (console-only).
func InitWithFile(debug bool, logsDir string, cfg *LoggingConfig) error {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    false,
	}

	if logsDir == "" || cfg == nil || !cfg.IsFileEnabled() {
		Log = zerolog.New(consoleWriter).
			Level(level).
			With().
			Timestamp().
			Logger()
		return nil
	}

	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	fileWriter = &lumberjack.Logger{
		Filename:   filepath.Join(logsDir, "strut.log"),
		MaxSize:    cfg.GetMaxSizeMB(),
		MaxAge:     cfg.GetMaxAgeDays(),
		MaxBackups: cfg.GetMaxBackups(),
		LocalTime:  true,
		Compress:   false,
	}

	// Console gets the human-readable format, the file gets JSON.
	multi := io.MultiWriter(consoleWriter, fileWriter)

	Log = zerolog.New(multi).
		Level(level).
		With().
		Timestamp().
		Logger()

	return nil
}

// CloseFileWriter closes the file writer if it exists. Call this on
// program shutdown for clean log file closure.
func CloseFileWriter() error {
	if fileWriter != nil {
		err := fileWriter.Close()
		fileWriter = nil
		return err
	}
	return nil
}

// GetLogFilePath returns the path to the current log file, or empty
// string if file logging is disabled.
func GetLogFilePath() string {
	if fileWriter != nil {
		return fileWriter.Filename
	}
	return ""
}

// Debug starts a debug-level log event.
func Debug() *zerolog.Event {
	return Log.Debug()
}

// Info starts an info-level log event.
func Info() *zerolog.Event {
	return Log.Info()
}

// Warn starts a warn-level log event.
func Warn() *zerolog.Event {
	return Log.Warn()
}

// Error starts an error-level log event.
func Error() *zerolog.Event {
	return Log.Error()
}
