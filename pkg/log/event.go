package log

import (
	"time"
)

// Event represents one recorded timer event.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies the daemon run this event belongs to (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Direction indicates datagram flow, where applicable.
	Direction Direction `cbor:"3,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"4,keyasint"`

	// Phase names the scheduler phase the event occurred in.
	Phase string `cbor:"5,keyasint,omitempty"`

	// RemoteAddr is the sender's socket path, "<unbound>" when absent.
	RemoteAddr string `cbor:"6,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Command     *CommandEvent     `cbor:"7,keyasint,omitempty"`  // Command received
	Reply       *ReplyEvent       `cbor:"8,keyasint,omitempty"`  // Reply sent
	PhaseChange *PhaseChangeEvent `cbor:"9,keyasint,omitempty"`  // Phase transition
	Error       *ErrorEventData   `cbor:"10,keyasint,omitempty"` // Recovered errors
}

// Direction indicates the direction of datagram flow.
type Direction uint8

const (
	// DirectionIn indicates an incoming datagram.
	DirectionIn Direction = 0
	// DirectionOut indicates an outgoing datagram.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryCommand indicates a received command datagram.
	CategoryCommand Category = 0
	// CategoryReply indicates a reply datagram sent to a helper.
	CategoryReply Category = 1
	// CategoryPhase indicates a phase transition or phase-clock reset.
	CategoryPhase Category = 2
	// CategoryError indicates a recovered error.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryCommand:
		return "COMMAND"
	case CategoryReply:
		return "REPLY"
	case CategoryPhase:
		return "PHASE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// CommandEvent captures a received command.
type CommandEvent struct {
	// Token is the wire token as received.
	Token string `cbor:"1,keyasint"`

	// Minutes carries the value of a completed two-packet set.
	Minutes *uint16 `cbor:"2,keyasint,omitempty"`
}

// ReplyEvent captures a reply sent back to a helper.
type ReplyEvent struct {
	// Seconds is the reply value.
	Seconds uint64 `cbor:"1,keyasint"`
}

// Phase transition reasons.
const (
	// ReasonNaturalExpiry - the phase ran its full duration.
	ReasonNaturalExpiry = "natural-expiry"

	// ReasonCommand - a break/skip command ended the phase early.
	ReasonCommand = "command"

	// ReasonSuspendReset - an interrupted receive was treated as a wake
	// from system suspension and reset the phase clock.
	ReasonSuspendReset = "suspend-reset"

	// ReasonStartup - the first working phase of a daemon run.
	ReasonStartup = "startup"
)

// PhaseChangeEvent captures a phase transition or phase-clock reset.
type PhaseChangeEvent struct {
	// OldPhase is the previous phase name (may equal NewPhase for a
	// phase-clock reset).
	OldPhase string `cbor:"1,keyasint,omitempty"`

	// NewPhase is the phase being entered.
	NewPhase string `cbor:"2,keyasint"`

	// Reason for the transition.
	Reason string `cbor:"3,keyasint,omitempty"`
}

// ErrorEventData captures errors the scheduler recovered from.
type ErrorEventData struct {
	// Message is the error message.
	Message string `cbor:"1,keyasint"`

	// Context describes what was being done.
	Context string `cbor:"2,keyasint,omitempty"`
}
