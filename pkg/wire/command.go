package wire

// Kind identifies a command from the wire vocabulary.
type Kind uint8

const (
	// KindBreak ends the working phase immediately.
	KindBreak Kind = iota + 1

	// KindSet changes the working interval. The minute count arrives in a
	// follow-up datagram; see ParseMinutes.
	KindSet

	// KindReset restores the configured working interval and restarts the
	// phase. Always answered with the new interval in seconds.
	KindReset

	// KindGet queries the remaining seconds of the current phase.
	KindGet

	// KindSkip ends the break phase immediately.
	KindSkip
)

// Wire tokens, exactly as they appear in datagrams.
const (
	TokenBreak = "break"
	TokenSet   = "set"
	TokenReset = "reset"
	TokenGet   = "get"
	TokenSkip  = "skip"
)

// String returns the command name.
func (k Kind) String() string {
	switch k {
	case KindBreak:
		return "BREAK"
	case KindSet:
		return "SET"
	case KindReset:
		return "RESET"
	case KindGet:
		return "GET"
	case KindSkip:
		return "SKIP"
	default:
		return "UNKNOWN"
	}
}

// Token returns the wire token for the command.
func (k Kind) Token() string {
	switch k {
	case KindBreak:
		return TokenBreak
	case KindSet:
		return TokenSet
	case KindReset:
		return TokenReset
	case KindGet:
		return TokenGet
	case KindSkip:
		return TokenSkip
	default:
		return ""
	}
}

// ExpectsReply reports whether the daemon answers this command with a
// seconds datagram.
func (k Kind) ExpectsReply() bool {
	return k == KindGet || k == KindReset
}

// Command is a decoded wire command. Minutes is only meaningful for
// KindSet, and only after the value datagram has been received and parsed.
type Command struct {
	Kind    Kind
	Minutes uint16
}
