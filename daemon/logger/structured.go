package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// Logger is the global structured logger instance
	Logger zerolog.Logger
	
	// Maintain backward compatibility with existing logger functions
	initialized bool
)

func init() {
	initStructuredLogger()
}

// initStructuredLogger initializes the structured logger with console-only
// output; this Logger has no file sink. SetupFileLogger (file_logger.go)
// redirects only the standard library log package to a rotating file.
func initStructuredLogger() {
	zerolog.TimeFieldFormat = time.RFC3339

	consoleWriter := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "15:04:05",
		NoColor:    false,
	}

	Logger = zerolog.New(consoleWriter).
		With().
		Timestamp().
		Str("service", "cgtrace").
		Logger()

	initialized = true
}

// Structured logging functions for the collection pipeline.

// LogTick logs one sampling tick's summary.
func LogTick(containersTracked, batchSize int, duration time.Duration) {
	Logger.Debug().
		Str("component", "pipeline").
		Int("containers_tracked", containersTracked).
		Int("batch_size", batchSize).
		Dur("duration", duration).
		Msg("tick complete")
}

// LogDiscoveryEvent logs a containerd task/container lifecycle event.
func LogDiscoveryEvent(eventType, containerID string) {
	Logger.Info().
		Str("component", "discovery").
		Str("event_type", eventType).
		Str("container_id", containerID).
		Msg("discovery event")
}

// LogPersistenceBatch logs the outcome of one batch insert into the
// relational store.
func LogPersistenceBatch(rows int, duration time.Duration, err error) {
	event := Logger.Info().
		Str("component", "persistence").
		Int("rows", rows).
		Dur("duration", duration)
	if err != nil {
		event = Logger.Error().Str("component", "persistence").Err(err)
	}
	event.Msg("batch insert")
}

// LogConfigLoad logs configuration loading events.
func LogConfigLoad(source string, success bool, errorMsg string) {
	event := Logger.Info().
		Str("component", "config").
		Str("source", source).
		Bool("success", success)

	if !success && errorMsg != "" {
		event = event.Str("error", errorMsg)
	}

	event.Msg("configuration loaded")
}

// LogHealthCheck logs health check results with dependency status.
func LogHealthCheck(status string, dependencies map[string]string, duration time.Duration) {
	event := Logger.Info().
		Str("component", "health").
		Str("status", status).
		Dur("duration", duration)

	for service, serviceStatus := range dependencies {
		event = event.Str("dep_"+service, serviceStatus)
	}

	event.Msg("health check completed")
}

// Backward compatibility functions that wrap the existing logger behavior
// These maintain the same interface as the existing logger package

// Info logs an info message (backward compatible)
func Info(format string, args ...interface{}) {
	if initialized {
		Logger.Info().Msgf(format, args...)
	} else {
		// Fallback to existing logger if not initialized
		log.Info().Msgf(format, args...)
	}
}

// Warn logs a warning message (backward compatible)
func Warn(format string, args ...interface{}) {
	if initialized {
		Logger.Warn().Msgf(format, args...)
	} else {
		log.Warn().Msgf(format, args...)
	}
}

// Error logs an error message (backward compatible)
func Error(format string, args ...interface{}) {
	if initialized {
		Logger.Error().Msgf(format, args...)
	} else {
		log.Error().Msgf(format, args...)
	}
}

// Debug logs a debug message (backward compatible)
func Debug(format string, args ...interface{}) {
	if initialized {
		Logger.Debug().Msgf(format, args...)
	} else {
		log.Debug().Msgf(format, args...)
	}
}

// Fatal logs a fatal message and exits (backward compatible)
func Fatal(format string, args ...interface{}) {
	if initialized {
		Logger.Fatal().Msgf(format, args...)
	} else {
		log.Fatal().Msgf(format, args...)
	}
}

// GetLogger returns the structured logger instance for advanced usage
func GetLogger() zerolog.Logger {
	return Logger
}

// WithContext creates a logger with additional context fields
func WithContext(fields map[string]interface{}) zerolog.Logger {
	ctx := Logger.With()
	for key, value := range fields {
		ctx = ctx.Interface(key, value)
	}
	return ctx.Logger()
}
