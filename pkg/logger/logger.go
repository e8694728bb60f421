// Package logger holds the process-wide zerolog logger.
//
// main calls Init once with values from configuration; components receive a
// child logger from With so every line carries its origin.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options configures Init.
type Options struct {
	Level   string // trace, debug, info, warn or error; anything else is info
	Pretty  bool   // console writer instead of JSON
	Service string
	Env     string
	Output  io.Writer // os.Stdout when nil
}

var (
	mu   sync.RWMutex
	root *zerolog.Logger
)

// Init builds the root logger. Later calls return the existing logger
// unchanged until Reset.
func Init(opts Options) zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if root != nil {
		return *root
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	level := ParseLevel(opts.Level)
	zerolog.SetGlobalLevel(level)

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	fields := zerolog.New(out).Level(level).With().Timestamp()
	if opts.Service != "" {
		fields = fields.Str("service", opts.Service)
	}
	if opts.Env != "" {
		fields = fields.Str("env", opts.Env)
	}
	l := fields.Logger()
	root = &l
	return l
}

// Get returns the root logger and panics before Init.
func Get() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if root == nil {
		panic("logger: Get called before Init")
	}
	return *root
}

// With returns a child of the root logger tagged with component.
func With(component string) zerolog.Logger {
	return Get().With().Str("component", component).Logger()
}

// Reset drops the root logger. Tests only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	root = nil
}

// ParseLevel maps a level name to zerolog, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
