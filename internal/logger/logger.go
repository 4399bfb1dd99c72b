// Package logger provides levelled logging for reqlens.
// Warnings and errors are always written. Debug and section output only
// appear in verbose mode, which the --verbose flag or LOG_LEVEL=debug enables.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/phuslu/log"
)

var (
	mu      sync.RWMutex
	verbose bool
	// requested records SetVerbose, which a later non-debug level keeps.
	requested bool
	level               = log.WarnLevel
	output    io.Writer = os.Stderr
	base                = newLogger(os.Stderr, log.WarnLevel)
)

func newLogger(w io.Writer, lvl log.Level) log.Logger {
	return log.Logger{
		Level: lvl,
		Writer: &log.ConsoleWriter{
			Writer:    w,
			Formatter: format,
		},
	}
}

// format renders entries as "[LEVEL] message key=value".
func format(w io.Writer, a *log.FormatterArgs) (int, error) {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(levelLabel(a.Level))
	b.WriteString("] ")
	b.WriteString(a.Message)
	for _, kv := range a.KeyValues {
		b.WriteString(" ")
		b.WriteString(kv.Key)
		b.WriteString("=")
		b.WriteString(kv.Value)
	}
	b.WriteString("\n")
	return io.WriteString(w, b.String())
}

func levelLabel(l string) string {
	switch strings.ToLower(l) {
	case "warn", "warning":
		return "WARN"
	case "":
		return "INFO"
	default:
		return strings.ToUpper(l)
	}
}

func rebuild() {
	lvl := level
	if verbose {
		lvl = log.DebugLevel
	}
	base = newLogger(output, lvl)
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	requested = v
	rebuild()
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetLevel sets the minimum level from a name such as "info" or "error".
// Unknown names fall back to warn. A "debug" level also enables verbose mode,
// which other levels turn off again unless SetVerbose(true) asked for it.
func SetLevel(name string) {
	mu.Lock()
	defer mu.Unlock()
	verbose = requested
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug", "trace":
		level = log.DebugLevel
		verbose = true
	case "info":
		level = log.InfoLevel
	case "error":
		level = log.ErrorLevel
	default:
		level = log.WarnLevel
	}
	rebuild()
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	rebuild()
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		base.Debug().Msgf(format, args...)
	}
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Info prints an informational message at info level or in verbose mode.
func Info(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	base.Info().Msgf(format, args...)
}

// Warn prints a warning message.
func Warn(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	base.Warn().Msgf(format, args...)
}

// Error prints an error message.
func Error(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	base.Error().Msgf(format, args...)
}

// Document logs a per-document event with structured fields. It is used by
// the refresh loop so failures stay greppable by document id.
func Document(docID, event string, err error) {
	mu.RLock()
	defer mu.RUnlock()
	if err != nil {
		base.Warn().Str("doc", docID).Str("event", event).Err(err).Msg("document failed")
		return
	}
	if verbose {
		base.Debug().Str("doc", docID).Str("event", event).Msg("document")
	}
}
