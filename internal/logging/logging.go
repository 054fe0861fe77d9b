// Package logging configures the structured logger used by mmv.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	// Quiet until Setup is called with an explicit verbosity.
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
}

// LevelForVerbosity maps the -v count to a log level.
func LevelForVerbosity(verbosity int) zerolog.Level {
	switch {
	case verbosity <= 0:
		return zerolog.WarnLevel
	case verbosity == 1:
		return zerolog.InfoLevel
	case verbosity == 2:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

// Setup configures the global logger based on verbosity level.
// Console output goes to console (stderr when nil); when logFile is not empty
// the same events are appended to it as JSON.
func Setup(verbosity int, console io.Writer, logFile string) {
	zerolog.SetGlobalLevel(LevelForVerbosity(verbosity))

	if console == nil {
		console = os.Stderr
	}

	writers := []io.Writer{zerolog.ConsoleWriter{
		Out:        console,
		TimeFormat: time.TimeOnly,
		NoColor:    !isTerminal(console),
	}}

	var fileErr error
	if logFile != "" {
		var f *os.File
		f, fileErr = openLogFile(logFile)
		if fileErr == nil {
			writers = append(writers, f)
		}
	}

	log.Logger = zerolog.New(io.MultiWriter(writers...)).With().Timestamp().Logger()

	if fileErr != nil {
		log.Warn().Err(fileErr).Str("path", logFile).Msg("Failed to create log file, logging to console only")
	}

	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		log.Logger = log.Logger.With().Caller().Logger()
	}
	log.Debug().Int("verbosity", verbosity).Str("logFile", logFile).Msg("Logging configured")
}

// GetLogger returns the global logger tagged with component=name.
func GetLogger(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// Timed logs operation at debug level and returns a func that logs its
// elapsed time. Call it with defer.
func Timed(logger zerolog.Logger, operation string) func() {
	begin := time.Now()
	logger.Debug().Str("op", operation).Msg("Begin")
	return func() {
		logger.Debug().Str("op", operation).Dur("elapsed", time.Since(begin)).Msg("End")
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// openLogFile opens logPath for appending, creating missing directories.
func openLogFile(logPath string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, fmt.Errorf("log directory %s: %w", filepath.Dir(logPath), err)
	}
	return os.OpenFile(logPath, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
}
