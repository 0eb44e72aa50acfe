package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes timer events to an slog.Logger.
// Useful for development when you want to see scheduler events in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("session_id", event.SessionID),
		slog.String("direction", event.Direction.String()),
		slog.String("category", event.Category.String()),
	}

	if event.Phase != "" {
		attrs = append(attrs, slog.String("phase", event.Phase))
	}
	if event.RemoteAddr != "" {
		attrs = append(attrs, slog.String("remote_addr", event.RemoteAddr))
	}

	// Add type-specific attributes
	switch {
	case event.Command != nil:
		attrs = append(attrs, slog.String("token", event.Command.Token))
		if event.Command.Minutes != nil {
			attrs = append(attrs, slog.Uint64("minutes", uint64(*event.Command.Minutes)))
		}
	case event.Reply != nil:
		attrs = append(attrs, slog.Uint64("seconds", event.Reply.Seconds))
	case event.PhaseChange != nil:
		attrs = append(attrs,
			slog.String("old_phase", event.PhaseChange.OldPhase),
			slog.String("new_phase", event.PhaseChange.NewPhase),
		)
		if event.PhaseChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.PhaseChange.Reason))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "timer", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
