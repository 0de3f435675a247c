// Package log provides structured, colored logging for the token tools.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jrick/logrotate/rotator"
	"github.com/rs/zerolog"
)

// Logger is the global logger instance.
var Logger zerolog.Logger

// Component loggers. Init and InitWithRolls rebuild them, so packages read
// them when constructing their long-lived values, not at package init.
var (
	RPC     zerolog.Logger
	Service zerolog.Logger
	Source  zerolog.Logger
	Daemon  zerolog.Logger
	CLI     zerolog.Logger
)

// Log file rotation settings.
const (
	rotateThresholdKB = 32 * 1024
	defaultMaxRolls   = 8
)

// logRotator is the file output when Init was given a file. Close it on
// shutdown.
var logRotator *rotator.Rotator

func init() {
	// Default to colored console output
	Logger = NewConsoleLogger(os.Stderr, "info")
	initComponentLoggers()
}

// Init initializes the logger with the given configuration.
// When file is non-empty, logs are written to both the console (colored or
// JSON depending on jsonOutput) and a rotating file (always JSON).
func Init(level string, jsonOutput bool, file string) error {
	return InitWithRolls(level, jsonOutput, file, defaultMaxRolls)
}

// InitWithRolls is Init with an explicit number of rolled files to keep.
func InitWithRolls(level string, jsonOutput bool, file string, maxRolls int) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}

	var consoleWriter io.Writer
	if jsonOutput {
		consoleWriter = os.Stderr
	} else {
		consoleWriter = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "15:04:05",
		}
	}

	if file == "" {
		Logger = zerolog.New(consoleWriter).Level(lvl).With().Timestamp().Logger()
		initComponentLoggers()
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(file), 0o700); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	if maxRolls <= 0 {
		maxRolls = defaultMaxRolls
	}
	r, err := rotator.New(file, rotateThresholdKB, false, maxRolls)
	if err != nil {
		return fmt.Errorf("create log rotator: %w", err)
	}
	Close()
	logRotator = r

	// The rotator is not safe for concurrent writes.
	fileWriter := zerolog.SyncWriter(r)
	multi := zerolog.MultiLevelWriter(consoleWriter, fileWriter)
	Logger = zerolog.New(multi).
		Level(lvl).
		With().
		Timestamp().
		Logger()

	initComponentLoggers()
	return nil
}

// Close flushes and closes the log file, if any.
func Close() error {
	if logRotator == nil {
		return nil
	}
	err := logRotator.Close()
	logRotator = nil
	return err
}

// NewConsoleLogger creates a colored console logger.
func NewConsoleLogger(w io.Writer, level string) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
	}

	lvl, _ := ParseLevel(level)
	return zerolog.New(output).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}

// NewJSONLogger creates a structured JSON logger.
func NewJSONLogger(w io.Writer, level string) zerolog.Logger {
	lvl, _ := ParseLevel(level)
	return zerolog.New(w).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}

// ParseLevel converts a level name to a zerolog.Level. An empty name means
// info; unknown names return info and an error.
func ParseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel, nil
	case "debug":
		return zerolog.DebugLevel, nil
	case "info", "":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	case "disabled", "off":
		return zerolog.Disabled, nil
	default:
		return zerolog.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}

// initComponentLoggers initializes loggers for each component.
func initComponentLoggers() {
	RPC = WithComponent("rpc")
	Service = WithComponent("service")
	Source = WithComponent("source")
	Daemon = WithComponent("daemon")
	CLI = WithComponent("cli")
}

// WithComponent returns a logger with a component field.
func WithComponent(name string) zerolog.Logger {
	return Logger.With().Str("component", name).Logger()
}
