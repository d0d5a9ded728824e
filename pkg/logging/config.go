package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel is a zerolog level name
type LogLevel string

const (
	LogLevelTrace LogLevel = "trace"
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogFormat selects JSON or human-readable output
type LogFormat string

const (
	LogFormatJSON    LogFormat = "json"
	LogFormatConsole LogFormat = "console"
)

// Config holds the logging configuration shared by the CLI and the ingest server
type Config struct {
	Level       LogLevel  `json:"level" yaml:"level"`
	Format      LogFormat `json:"format" yaml:"format"`
	ServiceName string    `json:"service_name" yaml:"service_name"`
	Environment string    `json:"environment" yaml:"environment"`
	Version     string    `json:"version" yaml:"version"`
	Caller      bool      `json:"caller" yaml:"caller"`
	Timestamp   bool      `json:"timestamp" yaml:"timestamp"`
	PID         bool      `json:"pid" yaml:"pid"`
	NoColor     bool      `json:"no_color" yaml:"no_color"`

	// Output defaults to stderr
	Output io.Writer `json:"-" yaml:"-"`
}

// DefaultConfig logs info and above to stderr in console format.
func DefaultConfig() *Config {
	return &Config{
		Level:       LogLevelInfo,
		Format:      LogFormatConsole,
		ServiceName: "agrisync",
		Environment: "local",
		Version:     "dev",
		Caller:      true,
		Timestamp:   true,
		PID:         false,
	}
}

// Configure sets up the global logger with the given configuration.
// A nil config uses DefaultConfig.
func Configure(config *Config) zerolog.Logger {
	if config == nil {
		config = DefaultConfig()
	}

	level, err := zerolog.ParseLevel(string(config.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	log.Logger = NewLogger(config)
	return log.Logger
}

// NewLogger builds a logger from config without touching global state.
func NewLogger(config *Config) zerolog.Logger {
	out := config.Output
	if out == nil {
		out = os.Stderr
	}
	if config.Format == LogFormatConsole {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: config.NoColor}
	}

	lc := zerolog.New(out).With().
		Str("service", config.ServiceName).
		Str("environment", config.Environment).
		Str("version", config.Version)
	if config.Timestamp {
		lc = lc.Timestamp()
	}
	if config.Caller {
		lc = lc.Caller()
	}
	if config.PID {
		lc = lc.Int("pid", os.Getpid())
	}
	return lc.Logger()
}

// envBindings maps environment variables onto Config fields.
var envBindings = map[string]func(*Config, string){
	"LOG_LEVEL":     func(c *Config, v string) { c.Level = LogLevel(strings.ToLower(v)) },
	"LOG_FORMAT":    func(c *Config, v string) { c.Format = LogFormat(strings.ToLower(v)) },
	"SERVICE_NAME":  func(c *Config, v string) { c.ServiceName = v },
	"ENVIRONMENT":   func(c *Config, v string) { c.Environment = v },
	"VERSION":       func(c *Config, v string) { c.Version = v },
	"LOG_CALLER":    func(c *Config, v string) { c.Caller = v == "true" },
	"LOG_TIMESTAMP": func(c *Config, v string) { c.Timestamp = v == "true" },
	"LOG_PID":       func(c *Config, v string) { c.PID = v == "true" },
}

// ApplyEnv overlays the LOG_* and service variables found by lookup onto
// config. NO_COLOR disables colour whenever it is set, even to "".
func ApplyEnv(config *Config, lookup func(string) (string, bool)) {
	for name, apply := range envBindings {
		if v, ok := lookup(name); ok && v != "" {
			apply(config, v)
		}
	}
	if _, ok := lookup("NO_COLOR"); ok {
		config.NoColor = true
	}
}

// ConfigureFromEnv configures logging from the process environment.
func ConfigureFromEnv() zerolog.Logger {
	config := DefaultConfig()
	ApplyEnv(config, os.LookupEnv)
	return Configure(config)
}

// GetLogger returns the global logger tagged with component.
func GetLogger(component string) zerolog.Logger {
	return log.Logger.With().Str("component", component).Logger()
}

// GetLoggerWithFields returns a component logger carrying extra fields.
func GetLoggerWithFields(component string, fields map[string]interface{}) zerolog.Logger {
	return log.Logger.With().Str("component", component).Fields(fields).Logger()
}
