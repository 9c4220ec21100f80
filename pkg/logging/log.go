package logging

import (
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	logger = zerolog.Nop()
	mutex  sync.Mutex
)

// Setup configures the package logger. With enabled=false all log calls are
// no-ops. An empty path logs to stderr with the console writer; otherwise
// lines are appended to the file at path.
func Setup(enabled bool, path string) error {
	mutex.Lock()
	defer mutex.Unlock()

	if !enabled {
		logger = zerolog.Nop()
		return nil
	}

	if path == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(zerolog.DebugLevel).With().Timestamp().Logger()
		return nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	logger = zerolog.New(f).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	return nil
}

func Debug(format string, args ...interface{}) {
	logger.Debug().Msgf(format, args...)
}

func Info(format string, args ...interface{}) {
	logger.Info().Msgf(format, args...)
}

func Warn(format string, args ...interface{}) {
	logger.Warn().Msgf(format, args...)
}

func Error(format string, args ...interface{}) {
	logger.Error().Msgf(format, args...)
}
