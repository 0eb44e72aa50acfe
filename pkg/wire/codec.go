package wire

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Codec errors.
var (
	// ErrEmptyPayload indicates a zero-length datagram.
	ErrEmptyPayload = errors.New("empty payload")

	// ErrMalformedPayload indicates a payload that is not valid UTF-8 text.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrUnknownCommand indicates a token outside the known vocabulary.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrInvalidMinutes indicates a value datagram that is not a decimal
	// minute count in the u16 range.
	ErrInvalidMinutes = errors.New("invalid minute value")

	// ErrInvalidSeconds indicates a reply that is not decimal ASCII seconds.
	ErrInvalidSeconds = errors.New("invalid seconds value")
)

// ParseCommand decodes a command datagram. The first whitespace-delimited
// token selects the command. An unrecognized token yields ErrUnknownCommand
// (recoverable: log and ignore); a payload that is not UTF-8 text yields
// ErrMalformedPayload.
func ParseCommand(payload []byte) (Command, error) {
	if len(payload) == 0 {
		return Command{}, ErrEmptyPayload
	}
	if !utf8.Valid(payload) {
		return Command{}, ErrMalformedPayload
	}

	fields := strings.Fields(string(payload))
	if len(fields) == 0 {
		return Command{}, ErrEmptyPayload
	}

	switch fields[0] {
	case TokenBreak:
		return Command{Kind: KindBreak}, nil
	case TokenSet:
		return Command{Kind: KindSet}, nil
	case TokenReset:
		return Command{Kind: KindReset}, nil
	case TokenGet:
		return Command{Kind: KindGet}, nil
	case TokenSkip:
		return Command{Kind: KindSkip}, nil
	default:
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, fields[0])
	}
}

// ParseMinutes decodes the value datagram of a two-packet set command.
// The payload must contain only decimal digits and fit in 16 bits.
func ParseMinutes(payload []byte) (uint16, error) {
	if !utf8.Valid(payload) {
		return 0, ErrMalformedPayload
	}
	s := string(payload)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidMinutes)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidMinutes, s)
		}
	}
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMinutes, s)
	}
	return uint16(n), nil
}

// EncodeMinutes encodes a minute count for the set value datagram.
func EncodeMinutes(minutes uint16) []byte {
	return []byte(strconv.FormatUint(uint64(minutes), 10))
}

// EncodeSeconds encodes a duration as a decimal ASCII seconds reply,
// floored to whole seconds, never negative.
func EncodeSeconds(d time.Duration) []byte {
	secs := int64(d / time.Second)
	if secs < 0 {
		secs = 0
	}
	return []byte(strconv.FormatInt(secs, 10))
}

// ParseSeconds decodes a decimal ASCII seconds reply.
func ParseSeconds(payload []byte) (uint64, error) {
	if !utf8.Valid(payload) {
		return 0, ErrMalformedPayload
	}
	n, err := strconv.ParseUint(string(payload), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSeconds, string(payload))
	}
	return n, nil
}
