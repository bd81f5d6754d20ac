// Package logging provides structured zerolog-based logging with per-component
// sub-loggers.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logging configuration.
type Config struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

var (
	global   = zerolog.New(os.Stderr).With().Timestamp().Logger()
	globalMu sync.RWMutex
)

// Init replaces the global logger. Output goes to stderr unless w is given.
func Init(cfg Config, w ...io.Writer) error {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stderr
	if len(w) > 0 && w[0] != nil {
		out = w[0]
	}
	if cfg.Format == "text" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: true}
	}

	globalMu.Lock()
	global = zerolog.New(out).Level(level).With().Timestamp().Logger()
	globalMu.Unlock()
	return nil
}

// Get returns the global logger.
func Get() zerolog.Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return global
}

// Component returns a logger tagged with the component field.
func Component(name string) zerolog.Logger {
	return Get().With().Str("component", name).Logger()
}

func parseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel, nil
	case "", "info":
		return zerolog.InfoLevel, nil
	case "warn":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.InfoLevel, fmt.Errorf("invalid log level: %s", level)
	}
}
