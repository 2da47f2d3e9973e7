package main

import (
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"github.com/frankcohen/cloudcity/config"
)

// setupLogging installs the default logger. Logs go to stderr so stdout stays
// free for the QR code and command output.
func setupLogging(cfg *config.Config) {
	slog.SetDefault(slog.New(newLogHandler(os.Stderr, cfg)))

	log.SetFlags(0)
	log.SetOutput(slog.NewLogLogger(slog.Default().Handler(), slog.LevelInfo).Writer())
}

// newLogHandler returns a JSON handler in prod and a tint handler otherwise.
// Without log.level, prod logs at info and development at debug.
func newLogHandler(w io.Writer, cfg *config.Config) slog.Handler {
	level := slog.LevelDebug
	if cfg.IsProd() {
		level = slog.LevelInfo
	}
	if cfg.Log.Level != "" {
		level = parseLevel(cfg.Log.Level)
	}

	if cfg.IsProd() {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: level,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey && len(groups) == 0 {
					return slog.String("ts", a.Value.Time().UTC().Format(time.RFC3339Nano))
				}
				return a
			},
		})
	}

	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		AddSource:  level == slog.LevelDebug,
		TimeFormat: "15:04:05.000",
	})
}

// parseLevel accepts the log.level values; "warning" is an alias of "warn".
func parseLevel(s string) slog.Level {
	if s == "warning" {
		s = "warn"
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
