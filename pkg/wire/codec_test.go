package wire

import (
	"errors"
	"testing"
	"time"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    Kind
	}{
		{name: "break", payload: "break", want: KindBreak},
		{name: "set", payload: "set", want: KindSet},
		{name: "reset", payload: "reset", want: KindReset},
		{name: "get", payload: "get", want: KindGet},
		{name: "skip", payload: "skip", want: KindSkip},
		{name: "leading whitespace", payload: "  get", want: KindGet},
		{name: "trailing junk after token", payload: "get now", want: KindGet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := ParseCommand([]byte(tt.payload))
			if err != nil {
				t.Fatalf("ParseCommand(%q) failed: %v", tt.payload, err)
			}
			if cmd.Kind != tt.want {
				t.Errorf("kind = %s, want %s", cmd.Kind, tt.want)
			}
		})
	}
}

func TestParseCommandUnknown(t *testing.T) {
	_, err := ParseCommand([]byte("pause"))
	if !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("expected ErrUnknownCommand, got %v", err)
	}
}

func TestParseCommandEmpty(t *testing.T) {
	for _, payload := range [][]byte{nil, {}, []byte("   ")} {
		if _, err := ParseCommand(payload); !errors.Is(err, ErrEmptyPayload) {
			t.Errorf("ParseCommand(%q): expected ErrEmptyPayload, got %v", payload, err)
		}
	}
}

func TestParseCommandMalformed(t *testing.T) {
	_, err := ParseCommand([]byte{0xff, 0xfe, 0xfd})
	if !errors.Is(err, ErrMalformedPayload) {
		t.Errorf("expected ErrMalformedPayload, got %v", err)
	}
}

func TestParseMinutes(t *testing.T) {
	tests := []struct {
		payload string
		want    uint16
		wantErr bool
	}{
		{payload: "30", want: 30},
		{payload: "0", want: 0},
		{payload: "65535", want: 65535},
		{payload: "65536", wantErr: true},
		{payload: "", wantErr: true},
		{payload: "-5", wantErr: true},
		{payload: "3.5", wantErr: true},
		{payload: "30m", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseMinutes([]byte(tt.payload))
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidMinutes) {
				t.Errorf("ParseMinutes(%q): expected ErrInvalidMinutes, got %v", tt.payload, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseMinutes(%q) failed: %v", tt.payload, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMinutes(%q) = %d, want %d", tt.payload, got, tt.want)
		}
	}
}

func TestEncodeSeconds(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{d: 1800 * time.Second, want: "1800"},
		{d: 90*time.Second + 700*time.Millisecond, want: "90"},
		{d: 0, want: "0"},
		{d: -5 * time.Second, want: "0"},
	}

	for _, tt := range tests {
		if got := string(EncodeSeconds(tt.d)); got != tt.want {
			t.Errorf("EncodeSeconds(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestSecondsRoundTrip(t *testing.T) {
	got, err := ParseSeconds(EncodeSeconds(1799 * time.Second))
	if err != nil {
		t.Fatalf("ParseSeconds failed: %v", err)
	}
	if got != 1799 {
		t.Errorf("seconds = %d, want 1799", got)
	}
}

func TestParseSecondsInvalid(t *testing.T) {
	for _, payload := range []string{"", "abc", "-1", "12 34"} {
		if _, err := ParseSeconds([]byte(payload)); !errors.Is(err, ErrInvalidSeconds) {
			t.Errorf("ParseSeconds(%q): expected ErrInvalidSeconds, got %v", payload, err)
		}
	}
}

func TestKindTokenRoundTrip(t *testing.T) {
	for _, k := range []Kind{KindBreak, KindSet, KindReset, KindGet, KindSkip} {
		cmd, err := ParseCommand([]byte(k.Token()))
		if err != nil {
			t.Fatalf("ParseCommand(%q) failed: %v", k.Token(), err)
		}
		if cmd.Kind != k {
			t.Errorf("round trip of %s produced %s", k, cmd.Kind)
		}
	}
}

func TestExpectsReply(t *testing.T) {
	replies := map[Kind]bool{
		KindBreak: false,
		KindSet:   false,
		KindReset: true,
		KindGet:   true,
		KindSkip:  false,
	}
	for k, want := range replies {
		if got := k.ExpectsReply(); got != want {
			t.Errorf("%s.ExpectsReply() = %v, want %v", k, got, want)
		}
	}
}
