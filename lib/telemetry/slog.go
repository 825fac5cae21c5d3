package telemetry

import (
	"io"
	"log/slog"
	"os"
)

// InitSlog installs a text handler on stderr as the default logger.
func InitSlog(verbose bool) {
	slog.SetDefault(slog.New(NewHandler(os.Stderr, verbose)))
}

func NewHandler(w io.Writer, verbose bool) slog.Handler {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: verbose,
	})
}
