package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/climops/precip-analysis/internal/config"
)

// NewLogger builds the process-wide slog.Logger from the configured level and
// format. Unrecognized values fall back to info and json. Logs go to stderr
// so stdout stays free for command output.
func NewLogger(cfg *config.Config) *slog.Logger {
	return slog.New(newHandler(os.Stderr, cfg.LogLevel, cfg.LogFormat))
}

func newHandler(w io.Writer, level, format string) slog.Handler {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	if strings.ToLower(format) == "text" {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
