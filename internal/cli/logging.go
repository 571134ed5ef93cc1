package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/riordanpawley/chatterm/internal/config"
)

// LogFile is the log file name inside log.dir
const LogFile = "chatterm.log"

// OpenLogger creates a text logger writing to <log.dir>/chatterm.log at the
// configured level. The terminal belongs to the TUI, so nothing is logged to
// stderr. Close the returned closer on exit.
func OpenLogger(cfg config.LogConfig) (*slog.Logger, io.Closer, error) {
	level, err := config.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(cfg.Dir, LogFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	return logger, f, nil
}

// ResolveMarkdownStyle turns "auto" (or no style) into "dark" or "light" by
// asking hasDark. It runs once before the TUI takes over the terminal, since
// the background query reads from stdin.
func ResolveMarkdownStyle(style string, hasDark func() bool) string {
	if style != "" && style != "auto" {
		return style
	}
	if hasDark() {
		return "dark"
	}
	return "light"
}
