// Package nrglog is a thin, level-gated wrapper over the standard log
// package, grounded on HazelnutParadise-insyra's logger.go: bracketed
// tag prefixes, a package-level level gate, Fatalf for unrecoverable
// startup errors. No structured-logging library appears in any corpus
// go.mod, so log is the corpus-consistent choice rather than a fallback.
package nrglog

import "log"

// Level orders verbosity from most to least chatty.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelFatal
)

var level = LevelInfo

// SetLevel sets the package-wide minimum level that gets emitted.
func SetLevel(l Level) { level = l }

func logAt(l Level, tag, msg string, args ...any) {
	if level > l {
		return
	}
	log.Printf(tag+msg, args...)
}

// Debugf logs a debug-level message.
func Debugf(msg string, args ...any) { logAt(LevelDebug, "[nrg debug] ", msg, args...) }

// Infof logs an info-level message.
func Infof(msg string, args ...any) { logAt(LevelInfo, "[nrg] ", msg, args...) }

// Warnf logs a warn-level message.
func Warnf(msg string, args ...any) { logAt(LevelWarn, "[nrg warning] ", msg, args...) }

// Fatalf logs and terminates the process, matching spec.md §7's
// propagation policy: non-retried errors bubble to the top-level
// driver, which prints a diagnostic and exits nonzero.
func Fatalf(msg string, args ...any) {
	log.Fatalf("[nrg FATAL] "+msg, args...)
}
