// Package log provides structured event capture for the break timer.
//
// This package defines the Logger interface and Event types for recording
// what the scheduler did: phase transitions, commands received, replies
// sent, and errors. It is separate from operational logging (slog) - event
// capture provides a complete machine-readable trace of the timer's
// behavior for debugging and analysis.
//
// # Basic Usage
//
// Applications configure capture by providing a Logger implementation:
//
//	// For development: log to console via slog
//	cfg.Events = log.NewSlogAdapter(slog.Default())
//
//	// For production: write to binary file
//	cfg.Events, _ = log.NewFileLogger("/var/log/breaktimed/events.blog")
//
//	// Both: use MultiLogger
//	cfg.Events = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # File Format
//
// Log files use CBOR encoding with integer keys and the .blog extension.
// Reader streams events back, optionally filtered.
package log
