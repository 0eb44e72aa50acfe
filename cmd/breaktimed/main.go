// Command breaktimed is the break reminder daemon.
//
// It alternates working and break phases, accepting commands on a unix
// datagram socket in XDG_RUNTIME_DIR and driving the configured desktop
// collaborators (notification, sound, monitor power, popup) around each
// break. Under systemd the socket is taken over from socket activation
// and readiness is signaled back; outside systemd the daemon binds the
// socket itself.
//
// Usage:
//
//	breaktimed [flags]
//
// Flags:
//
//	-config string       Configuration file path (overrides the layered lookup)
//	-log-level string    Log level: debug, info, warn, error (default "info")
//	-event-log string    Write the CBOR event stream to this file
//	-runtime-dir string  Socket directory (default $XDG_RUNTIME_DIR)
//	-no-activation       Bind the socket directly even under systemd
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/wlbreaktime/breaktime-go/pkg/activation"
	"github.com/wlbreaktime/breaktime-go/pkg/alert"
	"github.com/wlbreaktime/breaktime-go/pkg/config"
	"github.com/wlbreaktime/breaktime-go/pkg/log"
	"github.com/wlbreaktime/breaktime-go/pkg/notify"
	"github.com/wlbreaktime/breaktime-go/pkg/service"
	"github.com/wlbreaktime/breaktime-go/pkg/transport"
)

var flags struct {
	configFile   string
	logLevel     string
	eventLog     string
	runtimeDir   string
	noActivation bool
}

func init() {
	flag.StringVar(&flags.configFile, "config", "", "Configuration file path")
	flag.StringVar(&flags.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.StringVar(&flags.eventLog, "event-log", "", "Write the CBOR event stream to this file")
	flag.StringVar(&flags.runtimeDir, "runtime-dir", "", "Socket directory (default $XDG_RUNTIME_DIR)")
	flag.BoolVar(&flags.noActivation, "no-activation", false, "Bind the socket directly even under systemd")
}

func main() {
	flag.Parse()
	logger := setupLogging(flags.logLevel)

	if err := run(logger); err != nil {
		logger.Error("daemon failed", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger.Info("configuration loaded",
		"work_interval", cfg.WorkInterval.Std(),
		"break_duration", cfg.BreakDuration.Std())

	sock, ownsPath, err := bindSocket(logger)
	if err != nil {
		return err
	}
	defer func() {
		if ownsPath {
			_ = sock.CloseAndUnlink()
		} else {
			_ = sock.Close()
		}
	}()

	events, cleanup, err := setupEvents(logger)
	if err != nil {
		return err
	}
	defer cleanup()

	svcCfg := service.Config{
		WorkInterval:     cfg.WorkInterval.Std(),
		BreakDuration:    cfg.BreakDuration.Std(),
		ShowNotification: cfg.ShowNotification,
		PlaySound:        cfg.PlaySound,
		TurnOffMonitors:  cfg.TurnOffMonitors,
		ShowPopup:        cfg.ShowPopup,
		Logger:           logger,
		Events:           events,
	}
	closeCollaborators := setupCollaborators(&svcCfg, cfg, logger)
	defer closeCollaborators()

	svc, err := service.New(sock, svcCfg)
	if err != nil {
		return err
	}
	logger.Info("scheduler ready", "session", svc.SessionID(), "socket", sock.LocalPath())

	if !flags.noActivation {
		if err := activation.NotifyReady(); err != nil {
			logger.Warn("readiness notification failed", "err", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = svc.Run(ctx)
	if errors.Is(err, context.Canceled) {
		logger.Info("shutting down")
		return nil
	}
	return err
}

func loadConfig() (config.Config, error) {
	if flags.configFile != "" {
		return config.LoadFile(flags.configFile)
	}
	return config.Load()
}

// bindSocket takes the socket handed over by systemd socket activation,
// or binds directly in -no-activation mode. ownsPath reports whether the
// daemon must unlink the socket file on exit.
func bindSocket(logger *slog.Logger) (sock *transport.Socket, ownsPath bool, err error) {
	if !flags.noActivation {
		if !activation.Booted() {
			return nil, false, fmt.Errorf("not running under systemd; start through a socket unit or pass -no-activation")
		}
		sock, err = activation.Socket()
		if err != nil {
			return nil, false, err
		}
		logger.Info("using the socket from socket activation")
		return sock, false, nil
	}

	dir := flags.runtimeDir
	if dir == "" {
		dir = os.Getenv("XDG_RUNTIME_DIR")
	}
	if dir == "" {
		return nil, false, fmt.Errorf("XDG_RUNTIME_DIR is not set and -runtime-dir was not given")
	}

	sock, err = transport.Listen(transport.SocketPath(dir))
	if err != nil {
		return nil, false, err
	}
	return sock, true, nil
}

func setupEvents(logger *slog.Logger) (log.Logger, func(), error) {
	var sinks []log.Logger
	cleanup := func() {}

	if flags.eventLog != "" {
		fl, err := log.NewFileLogger(flags.eventLog)
		if err != nil {
			return nil, nil, fmt.Errorf("open event log: %w", err)
		}
		sinks = append(sinks, fl)
		cleanup = func() { _ = fl.Close() }
	}
	sinks = append(sinks, log.NewSlogAdapter(logger))

	return log.NewMultiLogger(sinks...), cleanup, nil
}

// setupCollaborators wires the desktop integrations the configuration
// asks for. A collaborator that cannot be constructed is disabled with a
// warning rather than failing the daemon.
func setupCollaborators(svcCfg *service.Config, cfg config.Config, logger *slog.Logger) (cleanup func()) {
	cleanup = func() {}

	if cfg.ShowNotification {
		n, err := notify.NewDesktopNotifier("breaktimed")
		if err != nil {
			logger.Warn("desktop notifications unavailable", "err", err)
		} else {
			svcCfg.Notifier = n
			cleanup = func() { _ = n.Close() }
		}
	}
	if cfg.PlaySound && len(cfg.SoundCommand) > 0 {
		svcCfg.Sound = alert.NewSound(cfg.SoundCommand)
	}
	if cfg.TurnOffMonitors && len(cfg.MonitorOffCommand) > 0 && len(cfg.MonitorOnCommand) > 0 {
		svcCfg.Monitors = alert.NewMonitors(cfg.MonitorOffCommand, cfg.MonitorOnCommand)
	}
	if cfg.ShowPopup && len(cfg.PopupCommand) > 0 {
		svcCfg.Popup = alert.NewPopup(cfg.PopupCommand)
	}
	return cleanup
}

func setupLogging(level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})
	return slog.New(h)
}
