package api

import (
	"io"
	"log/slog"
	"strings"

	"github.com/FACorreiaa/invoice-converter/pkg/config"
)

// NewLogger builds the process logger from the observability settings.
func NewLogger(cfg config.ObservabilityConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.LogFormat, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
