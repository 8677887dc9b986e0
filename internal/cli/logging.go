package cli

import (
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	slogzerolog "github.com/samber/slog-zerolog/v2"
)

// NewLogger returns a slog logger writing zerolog console output to w.
func NewLogger(w io.Writer, level zerolog.Level) *slog.Logger {
	zl := zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: color.NoColor}).
		Level(level).
		With().Timestamp().Logger()
	return slog.New(slogzerolog.Option{Level: slogLevel(level), Logger: &zl}.NewZerologHandler())
}

func slogLevel(level zerolog.Level) slog.Level {
	switch {
	case level <= zerolog.DebugLevel:
		return slog.LevelDebug
	case level == zerolog.InfoLevel:
		return slog.LevelInfo
	case level == zerolog.WarnLevel:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
