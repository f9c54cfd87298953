package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New creates a component logger on stdout. env "dev" selects the human
// readable console writer; anything else writes JSON lines.
// An empty env falls back to the APP_ENV environment variable.
func New(env, component string) zerolog.Logger {
	return NewTo(os.Stdout, env, component)
}

// NewTo is New with an explicit destination.
func NewTo(w io.Writer, env, component string) zerolog.Logger {
	if env == "" {
		env = os.Getenv("APP_ENV")
	}
	if strings.ToLower(env) == "dev" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).With().Timestamp().Str("component", component).Logger()
}

// SetLevel sets the global level ("debug", "info", "warn", ...).
func SetLevel(level string) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(lvl)
	return nil
}
