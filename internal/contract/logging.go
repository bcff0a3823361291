package contract

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Logging formats supported.
const (
	ConsoleLogFormat = "console"
	JSONLogFormat    = "json"
)

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string // trace, debug, info, warn, error, disabled
	Format string // console or json
	Output io.Writer
}

var (
	logger zerolog.Logger
	logMu  sync.RWMutex
)

func init() {
	initLogger(LogConfig{})
}

// InitLogger configures the global logger. It is safe to call more than once.
func InitLogger(cfg LogConfig) {
	logMu.Lock()
	defer logMu.Unlock()
	initLogger(cfg)
}

// initLogger must be called with logMu held.
func initLogger(cfg LogConfig) {
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	if cfg.Format == "" {
		cfg.Format = ConsoleLogFormat
	}
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	zerolog.SetGlobalLevel(parseLevel(cfg.Level))
	zerolog.TimeFieldFormat = time.RFC3339

	output := cfg.Output
	if cfg.Format == ConsoleLogFormat {
		output = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: "15:04:05"}
	}
	logger = zerolog.New(output).With().Timestamp().Logger()
}

// ValidLogLevel reports whether the level name is understood by InitLogger.
func ValidLogLevel(level string) bool {
	switch strings.ToLower(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
		return true
	}
	return false
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	case "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Logger returns the global logger.
func Logger() zerolog.Logger {
	logMu.RLock()
	defer logMu.RUnlock()
	return logger
}

// ComponentLogger returns a child logger tagged with the component name.
func ComponentLogger(component string) zerolog.Logger {
	l := Logger()
	return l.With().Str("component", component).Logger()
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	l := Logger()
	l.Error().Err(err).Msg(msg)
	os.Exit(1)
}

// LogWarn logs a warning message.
func LogWarn(msg string, err error) {
	l := Logger()
	l.Warn().Err(err).Msg(msg)
}
