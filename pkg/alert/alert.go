// Package alert runs the external collaborators the scheduler triggers at
// phase transitions: the sound cue, display power control, and the popup
// surface. All three are modeled as external commands; none of them
// contains scheduling logic.
package alert

import (
	"errors"
	"fmt"
	"os/exec"
)

// ErrNoCommand indicates a collaborator configured without a command.
var ErrNoCommand = errors.New("no command configured")

// Sound plays the break cue by running an external player.
type Sound struct {
	cmd []string
}

// NewSound creates a sound player from a command line.
func NewSound(cmd []string) *Sound {
	return &Sound{cmd: cmd}
}

// Play starts the player without waiting for playback to finish, so the
// scheduler is not stalled by the cue's length.
func (s *Sound) Play() error {
	if len(s.cmd) == 0 {
		return ErrNoCommand
	}
	cmd := exec.Command(s.cmd[0], s.cmd[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("play sound: %w", err)
	}
	go cmd.Wait() // reap
	return nil
}

// Monitors powers attached displays on and off through an external
// compositor control command.
type Monitors struct {
	offCmd []string
	onCmd  []string
}

// NewMonitors creates a display power controller.
func NewMonitors(offCmd, onCmd []string) *Monitors {
	return &Monitors{offCmd: offCmd, onCmd: onCmd}
}

// PowerOff turns the displays off. Failures are reported to the caller,
// which logs them and carries on; a dark screen is not worth a dead timer.
func (m *Monitors) PowerOff() error {
	return runCommand(m.offCmd)
}

// PowerOn turns the displays back on.
func (m *Monitors) PowerOn() error {
	return runCommand(m.onCmd)
}

func runCommand(argv []string) error {
	if len(argv) == 0 {
		return ErrNoCommand
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run %s: %w", argv[0], err)
	}
	return nil
}

// Popup shows the fullscreen break surface by keeping an external
// renderer process alive for the length of the break.
type Popup struct {
	cmd  []string
	proc *exec.Cmd
}

// NewPopup creates a popup surface from a command line.
func NewPopup(cmd []string) *Popup {
	return &Popup{cmd: cmd}
}

// Show starts the renderer.
func (p *Popup) Show() error {
	if len(p.cmd) == 0 {
		return ErrNoCommand
	}
	if p.proc != nil {
		return nil // already visible
	}
	cmd := exec.Command(p.cmd[0], p.cmd[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("show popup: %w", err)
	}
	p.proc = cmd
	return nil
}

// Hide stops the renderer. Safe to call when nothing is shown.
func (p *Popup) Hide() error {
	if p.proc == nil {
		return nil
	}
	proc := p.proc
	p.proc = nil
	if err := proc.Process.Kill(); err != nil {
		return fmt.Errorf("hide popup: %w", err)
	}
	proc.Wait()
	return nil
}
