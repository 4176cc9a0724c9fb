package cmd

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

var (
	logger  *slog.Logger
	logFile *os.File
)

func logPath() string {
	return filepath.Join(viper.GetString("state_dir"), "crowdfund.log")
}

func logLevel() slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(viper.GetString("log.level")))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// getLogger returns the diagnostic logger writing to <state_dir>/crowdfund.log.
// With mirror set and --verbose on, records are also written to stderr.
// Commands that own the terminal (the form, the MCP transport) pass false.
func getLogger(mirror bool) *slog.Logger {
	if logger != nil {
		return logger
	}

	var w io.Writer = io.Discard
	if err := os.MkdirAll(viper.GetString("state_dir"), 0755); err == nil {
		f, err := os.OpenFile(logPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err == nil {
			logFile = f
			w = f
		} else if ui != nil {
			ui.Warning("Cannot open log file: %v", err)
		}
	}
	if mirror && verbose {
		w = io.MultiWriter(w, os.Stderr)
	}

	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel()}))
	return logger
}

func closeLogger() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
	logger = nil
}
