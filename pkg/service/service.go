package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/wlbreaktime/breaktime-go/pkg/log"
	"github.com/wlbreaktime/breaktime-go/pkg/schedule"
	"github.com/wlbreaktime/breaktime-go/pkg/transport"
	"github.com/wlbreaktime/breaktime-go/pkg/wire"
)

const (
	// DefaultSecondaryTimeout bounds the wait for the value datagram of a
	// two-packet set exchange.
	DefaultSecondaryTimeout = 3 * time.Second

	// DefaultNotifyGrace is how long the break announcement stays on
	// screen before the break actually starts.
	DefaultNotifyGrace = 10 * time.Second
)

// ErrInvalidConfig indicates an unusable service configuration.
var ErrInvalidConfig = errors.New("invalid service configuration")

// Notifier shows a desktop notification.
type Notifier interface {
	Notify(summary, body string) error
}

// SoundPlayer plays the break chime.
type SoundPlayer interface {
	Play() error
}

// MonitorController turns the displays off and back on around a break.
type MonitorController interface {
	PowerOff() error
	PowerOn() error
}

// PopupSurface shows and hides the fullscreen break surface.
type PopupSurface interface {
	Show() error
	Hide() error
}

// Config carries the scheduler parameters and collaborators.
type Config struct {
	// WorkInterval is the initial working phase duration.
	WorkInterval time.Duration

	// BreakDuration is the fixed break phase duration.
	BreakDuration time.Duration

	// SecondaryTimeout for the set value datagram. Zero selects
	// DefaultSecondaryTimeout.
	SecondaryTimeout time.Duration

	// NotifyGrace between the break announcement and the break itself.
	// Zero selects DefaultNotifyGrace.
	NotifyGrace time.Duration

	ShowNotification bool
	PlaySound        bool
	TurnOffMonitors  bool
	ShowPopup        bool

	// Collaborators. A nil collaborator disables the matching step even
	// when its toggle is set.
	Notifier Notifier
	Sound    SoundPlayer
	Monitors MonitorController
	Popup    PopupSurface

	// Logger for operational messages. Nil discards them.
	Logger *slog.Logger

	// Events receives the structured event stream. Nil discards it.
	Events log.Logger
}

// Service is the break scheduler. Create it with New and drive it with
// Run; everything else happens on the Run goroutine.
type Service struct {
	cfg       Config
	sock      *transport.Socket
	state     *schedule.State
	sessionID string
	logger    *slog.Logger
	events    log.Logger
}

// New creates a scheduler bound to the given socket. The socket remains
// owned by the caller and is not closed by the service.
func New(sock *transport.Socket, cfg Config) (*Service, error) {
	if cfg.SecondaryTimeout <= 0 {
		cfg.SecondaryTimeout = DefaultSecondaryTimeout
	}
	if cfg.NotifyGrace <= 0 {
		cfg.NotifyGrace = DefaultNotifyGrace
	}

	state, err := schedule.NewState(cfg.WorkInterval, cfg.BreakDuration, time.Now())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	events := cfg.Events
	if events == nil {
		events = log.NoopLogger{}
	}

	return &Service{
		cfg:       cfg,
		sock:      sock,
		state:     state,
		sessionID: uuid.New().String(),
		logger:    logger,
		events:    events,
	}, nil
}

// SessionID returns the UUID identifying this daemon run in the event
// stream.
func (s *Service) SessionID() string {
	return s.sessionID
}

// Run alternates working and break phases until the context is canceled
// or the socket fails. The returned error is never nil.
func (s *Service) Run(ctx context.Context) error {
	// Cancellation must wake a blocked receive, otherwise shutdown would
	// wait out the current receive timeout.
	stop := context.AfterFunc(ctx, func() { _ = s.sock.Interrupt() })
	defer stop()

	s.startPhase(schedule.PhaseWorking, log.ReasonStartup)

	for {
		outcome, err := s.runWorking(ctx)
		if err != nil {
			return err
		}

		// The announcement and its grace period run before the break
		// clock starts, so the break is never shortened by them.
		if outcome == schedule.OutcomeNaturalExpiry {
			if err := s.announceBreak(ctx); err != nil {
				return err
			}
		}
		s.playSound()
		s.monitorsOff()
		shown := s.popupShow()

		s.startPhase(schedule.PhaseBreak, reasonFor(outcome))
		outcome, err = s.runBreak(ctx)

		if shown {
			s.popupHide()
		}
		s.monitorsOn()
		if err != nil {
			return err
		}
		s.playSound()

		s.startPhase(schedule.PhaseWorking, reasonFor(outcome))
	}
}

func reasonFor(o schedule.Outcome) string {
	if o == schedule.OutcomeSkipped {
		return log.ReasonCommand
	}
	return log.ReasonNaturalExpiry
}

// runWorking waits out the working phase, dispatching commands as they
// arrive. It returns how the phase ended.
func (s *Service) runWorking(ctx context.Context) (schedule.Outcome, error) {
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		data, from, err := s.sock.Receive(s.state.ReceiveTimeout(time.Now()))
		now := time.Now()
		switch {
		case err == nil:
			end, herr := s.handleDatagram(data, from, now)
			if herr != nil {
				return 0, herr
			}
			if end {
				s.state.ConsumeSkip()
				return schedule.OutcomeSkipped, nil
			}
		case transport.IsTimeout(err):
			// expected wakeup, fall through to the expiry check
		case transport.IsInterrupted(err):
			// an interrupted receive usually means the machine slept
			// through the wait; restart the phase clock so the stale
			// elapsed time does not trigger an immediate break
			s.state.Reset(now)
			s.logger.Info("wait interrupted, assuming wake from suspend",
				"next_break_in", s.state.WorkDuration())
			s.emitPhaseChange(now, schedule.PhaseWorking, schedule.PhaseWorking, log.ReasonSuspendReset)
		default:
			return 0, fmt.Errorf("receive: %w", err)
		}

		if s.state.Expired(time.Now()) {
			s.logger.Info("work interval is over")
			return schedule.OutcomeNaturalExpiry, nil
		}
	}
}

// runBreak waits out the break phase. Only skip acts here; anything
// else is logged and dropped.
func (s *Service) runBreak(ctx context.Context) (schedule.Outcome, error) {
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		data, from, err := s.sock.Receive(s.state.ReceiveTimeout(time.Now()))
		now := time.Now()
		switch {
		case err == nil:
			cmd, perr := wire.ParseCommand(data)
			if perr != nil {
				fatal, herr := s.handleParseError(perr, from, now)
				if fatal {
					return 0, herr
				}
				break
			}
			s.emitCommand(now, cmd, nil, from)
			disp, _ := s.state.Apply(cmd, now)
			if disp == schedule.DispositionEndPhase {
				s.state.ConsumeSkip()
				s.logger.Info("break skipped")
				return schedule.OutcomeSkipped, nil
			}
			s.logger.Warn("command does not apply during a break",
				"command", cmd.Kind.Token(), "from", from.String())
		case transport.IsTimeout(err):
			// expected wakeup
		case transport.IsInterrupted(err):
			// spurious wakeup; the remaining time is recomputed on the
			// next pass so nothing needs doing
		default:
			return 0, fmt.Errorf("receive: %w", err)
		}

		if s.state.Expired(time.Now()) {
			s.logger.Info("break is over")
			return schedule.OutcomeNaturalExpiry, nil
		}
	}
}

// handleDatagram dispatches one working-phase datagram. end reports
// whether the phase should terminate now.
func (s *Service) handleDatagram(data []byte, from *transport.ReplyAddr, now time.Time) (end bool, err error) {
	cmd, perr := wire.ParseCommand(data)
	if perr != nil {
		fatal, herr := s.handleParseError(perr, from, now)
		if fatal {
			return false, herr
		}
		return false, nil
	}

	if cmd.Kind == wire.KindSet {
		return false, s.completeSet(from, now)
	}

	s.emitCommand(now, cmd, nil, from)
	disp, reply := s.state.Apply(cmd, now)
	switch disp {
	case schedule.DispositionEndPhase:
		s.logger.Info("break requested", "from", from.String())
		return true, nil
	case schedule.DispositionIgnored:
		s.logger.Warn("command does not apply in this phase",
			"command", cmd.Kind.Token(), "phase", s.state.Phase())
		return false, nil
	}

	switch cmd.Kind {
	case wire.KindReset:
		s.logger.Info("timer reset", "next_break_in", s.state.WorkDuration())
		s.emitPhaseChange(now, schedule.PhaseWorking, schedule.PhaseWorking, log.ReasonCommand)
	case wire.KindGet:
		s.logger.Debug("remaining time requested", "remaining", s.state.Remaining(now))
	}

	if reply != nil {
		s.sendReply(now, *reply, from)
	}
	return false, nil
}

// handleParseError classifies a bad payload. Unknown or empty payloads
// are dropped; binary garbage means the channel cannot be trusted and
// is fatal.
func (s *Service) handleParseError(perr error, from *transport.ReplyAddr, now time.Time) (fatal bool, err error) {
	if errors.Is(perr, wire.ErrMalformedPayload) {
		return true, fmt.Errorf("decode command: %w", perr)
	}
	s.logger.Warn("ignoring unrecognized datagram", "err", perr, "from", from.String())
	s.emitError(now, perr.Error(), "dispatch", from)
	return false, nil
}

// completeSet finishes a two-packet set exchange by waiting for the
// value datagram. A timeout or a bad value abandons the set and leaves
// the interval unchanged.
func (s *Service) completeSet(from *transport.ReplyAddr, now time.Time) error {
	data, _, err := s.sock.Receive(s.cfg.SecondaryTimeout)
	switch {
	case err == nil:
	case transport.IsTimeout(err):
		s.logger.Warn("set value datagram never arrived, interval unchanged",
			"from", from.String())
		s.emitError(time.Now(), "set value datagram never arrived", "set", from)
		return nil
	default:
		return fmt.Errorf("receive set value: %w", err)
	}

	now = time.Now()
	minutes, perr := wire.ParseMinutes(data)
	if perr != nil {
		if errors.Is(perr, wire.ErrMalformedPayload) {
			return fmt.Errorf("decode set value: %w", perr)
		}
		s.logger.Warn("invalid set value, interval unchanged",
			"err", perr, "from", from.String())
		s.emitError(now, perr.Error(), "set", from)
		return nil
	}

	cmd := wire.Command{Kind: wire.KindSet, Minutes: minutes}
	s.emitCommand(now, cmd, &minutes, from)
	s.state.Apply(cmd, now)
	s.logger.Info("work interval set",
		"minutes", minutes, "next_break_in", s.state.WorkDuration())
	return nil
}

// sendReply answers a get or reset. Failures are recoverable: the
// helper simply goes unanswered.
func (s *Service) sendReply(now time.Time, d time.Duration, from *transport.ReplyAddr) {
	if !from.Bound() {
		s.logger.Warn("cannot reply, sender socket is unbound")
		s.emitError(now, transport.ErrNoReplyAddress.Error(), "reply", from)
		return
	}
	payload := wire.EncodeSeconds(d)
	if err := s.sock.Reply(from, payload); err != nil {
		s.logger.Warn("reply failed", "err", err, "to", from.String())
		s.emitError(now, err.Error(), "reply", from)
		return
	}
	seconds, _ := wire.ParseSeconds(payload)
	s.emitReply(now, seconds, from)
}

// announceBreak shows the break notification and sleeps out the grace
// period. Only context cancellation is fatal here.
func (s *Service) announceBreak(ctx context.Context) error {
	if !s.cfg.ShowNotification || s.cfg.Notifier == nil {
		return nil
	}
	body := fmt.Sprintf("The break starts in %d seconds.", int(s.cfg.NotifyGrace/time.Second))
	if err := s.cfg.Notifier.Notify("It's break time!", body); err != nil {
		s.logger.Warn("notification failed", "err", err)
		s.emitError(time.Now(), err.Error(), "notify", nil)
		return nil
	}
	return sleepCtx(ctx, s.cfg.NotifyGrace)
}

func (s *Service) playSound() {
	if !s.cfg.PlaySound || s.cfg.Sound == nil {
		return
	}
	if err := s.cfg.Sound.Play(); err != nil {
		s.logger.Warn("sound playback failed", "err", err)
		s.emitError(time.Now(), err.Error(), "sound", nil)
	}
}

func (s *Service) monitorsOff() {
	if !s.cfg.TurnOffMonitors || s.cfg.Monitors == nil {
		return
	}
	if err := s.cfg.Monitors.PowerOff(); err != nil {
		s.logger.Warn("could not power monitors off", "err", err)
		s.emitError(time.Now(), err.Error(), "monitors", nil)
	}
}

func (s *Service) monitorsOn() {
	if !s.cfg.TurnOffMonitors || s.cfg.Monitors == nil {
		return
	}
	if err := s.cfg.Monitors.PowerOn(); err != nil {
		s.logger.Warn("could not power monitors on", "err", err)
		s.emitError(time.Now(), err.Error(), "monitors", nil)
	}
}

func (s *Service) popupShow() bool {
	if !s.cfg.ShowPopup || s.cfg.Popup == nil {
		return false
	}
	if err := s.cfg.Popup.Show(); err != nil {
		s.logger.Warn("could not show the break popup", "err", err)
		s.emitError(time.Now(), err.Error(), "popup", nil)
		return false
	}
	return true
}

func (s *Service) popupHide() {
	if err := s.cfg.Popup.Hide(); err != nil {
		s.logger.Warn("could not hide the break popup", "err", err)
		s.emitError(time.Now(), err.Error(), "popup", nil)
	}
}

// startPhase transitions the schedule and records the change.
func (s *Service) startPhase(p schedule.Phase, reason string) {
	old := s.state.Phase()
	now := time.Now()
	s.state.StartPhase(p, now)
	switch p {
	case schedule.PhaseWorking:
		s.logger.Info("work time", "next_break_in", s.state.WorkDuration())
	case schedule.PhaseBreak:
		s.logger.Info("break time", "duration", s.state.BreakDuration())
	}
	s.emitPhaseChange(now, old, p, reason)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *Service) emitCommand(now time.Time, cmd wire.Command, minutes *uint16, from *transport.ReplyAddr) {
	s.events.Log(log.Event{
		Timestamp:  now,
		SessionID:  s.sessionID,
		Direction:  log.DirectionIn,
		Category:   log.CategoryCommand,
		Phase:      s.state.Phase().String(),
		RemoteAddr: from.String(),
		Command:    &log.CommandEvent{Token: cmd.Kind.Token(), Minutes: minutes},
	})
}

func (s *Service) emitReply(now time.Time, seconds uint64, from *transport.ReplyAddr) {
	s.events.Log(log.Event{
		Timestamp:  now,
		SessionID:  s.sessionID,
		Direction:  log.DirectionOut,
		Category:   log.CategoryReply,
		Phase:      s.state.Phase().String(),
		RemoteAddr: from.String(),
		Reply:      &log.ReplyEvent{Seconds: seconds},
	})
}

func (s *Service) emitPhaseChange(now time.Time, old, next schedule.Phase, reason string) {
	s.events.Log(log.Event{
		Timestamp: now,
		SessionID: s.sessionID,
		Category:  log.CategoryPhase,
		Phase:     next.String(),
		PhaseChange: &log.PhaseChangeEvent{
			OldPhase: old.String(),
			NewPhase: next.String(),
			Reason:   reason,
		},
	})
}

func (s *Service) emitError(now time.Time, msg, context string, from *transport.ReplyAddr) {
	ev := log.Event{
		Timestamp: now,
		SessionID: s.sessionID,
		Category:  log.CategoryError,
		Phase:     s.state.Phase().String(),
		Error:     &log.ErrorEventData{Message: msg, Context: context},
	}
	if from != nil {
		ev.RemoteAddr = from.String()
	}
	s.events.Log(ev)
}
