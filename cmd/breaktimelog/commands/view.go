// Package commands implements the breaktimelog CLI commands.
package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/wlbreaktime/breaktime-go/pkg/log"
)

// ViewFilter specifies criteria for filtering events in the view command.
type ViewFilter struct {
	Direction *log.Direction
	Category  *log.Category
	Phase     string
}

// RunView reads the log file and writes matching events to w in a
// human-readable format.
func RunView(path string, filter ViewFilter, w io.Writer) error {
	reader, err := log.NewFilteredReader(path, log.Filter{
		Direction: filter.Direction,
		Category:  filter.Category,
		Phase:     filter.Phase,
	})
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(w, event)
	}
	return nil
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [session:id] DIRECTION PHASE Type
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	session := shortenSessionID(event.SessionID)

	var typeLabel string
	switch {
	case event.Command != nil:
		typeLabel = "Command"
	case event.Reply != nil:
		typeLabel = "Reply"
	case event.PhaseChange != nil:
		typeLabel = "Phase"
	case event.Error != nil:
		typeLabel = "Error"
	default:
		typeLabel = "Unknown"
	}

	dir := "   "
	if event.Category == log.CategoryCommand || event.Category == log.CategoryReply {
		dir = fmt.Sprintf("%-3s", event.Direction.String())
	}

	fmt.Fprintf(w, "%s [session:%s] %s %-7s %s\n", ts, session, dir, event.Phase, typeLabel)

	switch {
	case event.Command != nil:
		formatCommandDetails(w, event.Command, event.RemoteAddr)
	case event.Reply != nil:
		formatReplyDetails(w, event.Reply, event.RemoteAddr)
	case event.PhaseChange != nil:
		formatPhaseChangeDetails(w, event.PhaseChange)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w) // Blank line between events
}

// shortenSessionID returns the first 8 characters of the session ID.
func shortenSessionID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatCommandDetails(w io.Writer, cmd *log.CommandEvent, remote string) {
	fmt.Fprintf(w, "  Token: %s", cmd.Token)
	if cmd.Minutes != nil {
		fmt.Fprintf(w, "  Minutes: %d", *cmd.Minutes)
	}
	fmt.Fprintln(w)
	if remote != "" {
		fmt.Fprintf(w, "  From: %s\n", remote)
	}
}

func formatReplyDetails(w io.Writer, reply *log.ReplyEvent, remote string) {
	fmt.Fprintf(w, "  Seconds: %d\n", reply.Seconds)
	if remote != "" {
		fmt.Fprintf(w, "  To: %s\n", remote)
	}
}

func formatPhaseChangeDetails(w io.Writer, pc *log.PhaseChangeEvent) {
	if pc.OldPhase != "" && pc.OldPhase != pc.NewPhase {
		fmt.Fprintf(w, "  Transition: %s -> %s\n", pc.OldPhase, pc.NewPhase)
	}
	if pc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", pc.Reason)
	}
}

func formatErrorDetails(w io.Writer, e *log.ErrorEventData) {
	fmt.Fprintf(w, "  Message: %s\n", e.Message)
	if e.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", e.Context)
	}
}

// ParseDirectionFlag parses a direction flag value.
func ParseDirectionFlag(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("unknown direction: %s (expected in, out)", s)
	}
}

// ParseCategoryFlag parses a category flag value.
func ParseCategoryFlag(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "command":
		return log.CategoryCommand, nil
	case "reply":
		return log.CategoryReply, nil
	case "phase":
		return log.CategoryPhase, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("unknown category: %s (expected command, reply, phase, error)", s)
	}
}

// ParsePhaseFlag parses a phase flag value into the stored phase name.
func ParsePhaseFlag(s string) (string, error) {
	switch strings.ToLower(s) {
	case "working":
		return "WORKING", nil
	case "break":
		return "BREAK", nil
	default:
		return "", fmt.Errorf("unknown phase: %s (expected working, break)", s)
	}
}
