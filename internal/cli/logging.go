package cli

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/phsym/zeroslog"
	"github.com/rs/zerolog"
)

// EnvLogLevel selects the log level (debug, info, warn, error) when --verbose is not given.
const EnvLogLevel = "AG_LOG_LEVEL"

func logLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(v)); err == nil {
			return lvl
		}
	}
	return slog.LevelWarn
}

func setupLogging(w io.Writer, verbose bool) {
	output := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Stamp}
	log := zerolog.New(output).With().Timestamp().Logger()
	slog.SetDefault(slog.New(
		zeroslog.NewHandler(log, &zeroslog.HandlerOptions{Level: logLevel(verbose)}),
	))
}
