package schedule

import (
	"errors"
	"time"

	"github.com/wlbreaktime/breaktime-go/pkg/wire"
)

// State errors.
var (
	ErrInvalidDuration = errors.New("invalid duration")
)

// MinReceiveTimeout is the floor for blocking-receive timeouts. A timeout
// of zero or less would make the receive call invalid, so remaining time
// is clamped to this value.
const MinReceiveTimeout = 1 * time.Second

// Phase is one of the two states the scheduler alternates through.
type Phase uint8

const (
	// PhaseWorking - the user is working, counting down to the next break.
	PhaseWorking Phase = iota

	// PhaseBreak - the user is on a break.
	PhaseBreak
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseWorking:
		return "WORKING"
	case PhaseBreak:
		return "BREAK"
	default:
		return "UNKNOWN"
	}
}

// Outcome reports how a phase ended.
type Outcome uint8

const (
	// OutcomeNaturalExpiry - the phase ran its full duration.
	OutcomeNaturalExpiry Outcome = iota

	// OutcomeSkipped - the phase was ended early by a command.
	OutcomeSkipped
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeNaturalExpiry:
		return "NATURAL_EXPIRY"
	case OutcomeSkipped:
		return "SKIPPED"
	default:
		return "UNKNOWN"
	}
}

// Disposition is the loop-control result of dispatching one command.
type Disposition uint8

const (
	// DispositionContinue - keep waiting in the current phase.
	DispositionContinue Disposition = iota

	// DispositionEndPhase - leave the current phase now.
	DispositionEndPhase

	// DispositionIgnored - the command does not apply in the current phase.
	DispositionIgnored
)

// State is the mutable scheduling record. It is created once at daemon
// start and owned exclusively by the scheduler loop.
type State struct {
	phase Phase

	// workDuration is the only runtime-mutable duration (via set/reset).
	workDuration time.Duration

	// defaultWork is the configured working interval restored by reset and
	// at the start of every working phase.
	defaultWork time.Duration

	// breakDuration is fixed for the process lifetime.
	breakDuration time.Duration

	// phaseStart marks when the current phase began or was last reset.
	phaseStart time.Time

	// skipRequested is set when a command ends the phase early and is
	// consumed on phase exit.
	skipRequested bool
}

// NewState creates the timer state from configured defaults, starting in
// the working phase at now.
func NewState(workInterval, breakDuration time.Duration, now time.Time) (*State, error) {
	if workInterval < time.Second || breakDuration < time.Second {
		return nil, ErrInvalidDuration
	}
	return &State{
		phase:         PhaseWorking,
		workDuration:  workInterval,
		defaultWork:   workInterval,
		breakDuration: breakDuration,
		phaseStart:    now,
	}, nil
}

// Phase returns the current phase.
func (s *State) Phase() Phase { return s.phase }

// WorkDuration returns the current working interval.
func (s *State) WorkDuration() time.Duration { return s.workDuration }

// BreakDuration returns the fixed break duration.
func (s *State) BreakDuration() time.Duration { return s.breakDuration }

// phaseDuration returns the full duration of the current phase.
func (s *State) phaseDuration() time.Duration {
	if s.phase == PhaseBreak {
		return s.breakDuration
	}
	return s.workDuration
}

// Elapsed returns time spent in the current phase, never negative.
func (s *State) Elapsed(now time.Time) time.Duration {
	elapsed := now.Sub(s.phaseStart)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// Remaining returns the time left in the current phase, floored at zero.
func (s *State) Remaining(now time.Time) time.Duration {
	remaining := s.phaseDuration() - s.Elapsed(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ReceiveTimeout returns the duration the scheduler should block for,
// clamped to MinReceiveTimeout. It must be recomputed on every loop
// iteration because the remaining time shrinks and may be altered by
// set/reset.
func (s *State) ReceiveTimeout(now time.Time) time.Duration {
	remaining := s.Remaining(now)
	if remaining < MinReceiveTimeout {
		return MinReceiveTimeout
	}
	return remaining
}

// Expired reports whether the current phase has run its full duration.
func (s *State) Expired(now time.Time) bool {
	return s.Elapsed(now) >= s.phaseDuration()
}

// StartPhase enters the given phase at now. Entering the working phase
// restores the configured working interval, so a set only affects the
// phase it was issued in.
func (s *State) StartPhase(p Phase, now time.Time) {
	s.phase = p
	s.phaseStart = now
	s.skipRequested = false
	if p == PhaseWorking {
		s.workDuration = s.defaultWork
	}
}

// Reset restores the configured working interval and restarts the phase
// clock. Also used for the suspend heuristic: an interrupted receive is
// treated as an implicit reset.
func (s *State) Reset(now time.Time) {
	s.workDuration = s.defaultWork
	s.phaseStart = now
}

// SetMinutes changes the working interval and restarts the phase clock.
func (s *State) SetMinutes(minutes uint16, now time.Time) {
	s.workDuration = time.Duration(minutes) * time.Minute
	s.phaseStart = now
}

// ConsumeSkip returns whether the phase was ended early by a command and
// clears the flag.
func (s *State) ConsumeSkip() bool {
	skipped := s.skipRequested
	s.skipRequested = false
	return skipped
}

// Apply dispatches one decoded command against the state. It returns the
// loop disposition and, for commands that answer, the reply duration.
// Commands that do not apply in the current phase are reported as ignored
// and leave the state untouched.
func (s *State) Apply(cmd wire.Command, now time.Time) (Disposition, *time.Duration) {
	switch s.phase {
	case PhaseWorking:
		switch cmd.Kind {
		case wire.KindBreak:
			s.skipRequested = true
			return DispositionEndPhase, nil
		case wire.KindSet:
			s.SetMinutes(cmd.Minutes, now)
			return DispositionContinue, nil
		case wire.KindReset:
			s.Reset(now)
			reply := s.workDuration
			return DispositionContinue, &reply
		case wire.KindGet:
			reply := s.Remaining(now)
			return DispositionContinue, &reply
		}
	case PhaseBreak:
		if cmd.Kind == wire.KindSkip {
			s.skipRequested = true
			return DispositionEndPhase, nil
		}
	}
	return DispositionIgnored, nil
}
