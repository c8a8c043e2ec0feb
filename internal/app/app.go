// Package app wires configuration, logging, IPC, and the listening
// controller behind the earshot command-line surface.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/waiterix/earshot/internal/audio"
	"github.com/waiterix/earshot/internal/cli"
	"github.com/waiterix/earshot/internal/config"
	"github.com/waiterix/earshot/internal/deepgram"
	"github.com/waiterix/earshot/internal/doctor"
	"github.com/waiterix/earshot/internal/hook"
	"github.com/waiterix/earshot/internal/ipc"
	"github.com/waiterix/earshot/internal/listener"
	"github.com/waiterix/earshot/internal/logging"
	"github.com/waiterix/earshot/internal/version"
)

const forwardTimeout = 220 * time.Millisecond

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText("earshot"))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText("earshot"))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	logRuntime, err := logging.New(parsed.Debug)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	cfgLoaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("load config failed", "error", err.Error())
		return 1
	}
	for _, w := range cfgLoaded.Warnings {
		msg := w.Message
		if w.Line > 0 {
			msg = fmt.Sprintf("line %d: %s", w.Line, w.Message)
		}
		fmt.Fprintf(r.Stderr, "warning: %s\n", msg)
		logger.Warn("config warning", "line", w.Line, "message", w.Message)
	}

	logger.Info("command start",
		"command", parsed.Command,
		"config", cfgLoaded.Path,
		"log", logRuntime.Path,
	)

	switch parsed.Command {
	case cli.CommandDoctor:
		report := doctor.Run(ctx, cfgLoaded)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	case cli.CommandDevices:
		return r.commandDevices(ctx)
	case cli.CommandStatus:
		return r.commandStatus(ctx)
	case cli.CommandEnable:
		return r.forwardOrFail(ctx, "enable")
	case cli.CommandDisable:
		return r.forwardOrFail(ctx, "disable")
	case cli.CommandListen:
		return r.commandListen(ctx, cfgLoaded.Config, logger)
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

// commandListen runs the foreground daemon: it owns the control socket,
// builds the engine factory, and keeps the controller alive until the
// context is cancelled.
func (r Runner) commandListen(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	sock, err := ipc.Acquire(ctx, socketPath, 180*time.Millisecond, 8)
	if err != nil {
		if errors.Is(err, ipc.ErrAlreadyRunning) {
			fmt.Fprintln(r.Stderr, "error: an earshot daemon is already running")
			return 1
		}
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() {
		_ = sock.Close()
		_ = os.Remove(socketPath)
	}()

	apiKey := ""
	if cfg.Engine.APIKeyEnv != "" {
		apiKey = os.Getenv(cfg.Engine.APIKeyEnv)
	}

	factory := deepgram.NewFactory(logger, deepgram.Options{
		Endpoint:        cfg.Engine.Endpoint,
		APIKey:          apiKey,
		Model:           cfg.Engine.Model,
		SampleRate:      cfg.Engine.SampleRate,
		Channels:        cfg.Engine.Channels,
		NoSpeechTimeout: time.Duration(cfg.Engine.NoSpeechTimeoutMS) * time.Millisecond,
		Input:           cfg.Audio.Input,
	})

	detectHook := hook.NewRunner(cfg.Detect, logger)

	controller := listener.NewController(logger, factory, listener.Config{
		Phrases:  cfg.Wake.Phrases,
		Language: cfg.Wake.Language,
		OnDetected: func(phrase string) {
			fmt.Fprintf(r.Stdout, "detected: %s\n", phrase)
			detectHook.Fire(ctx, phrase)
		},
		Policy: listener.RestartPolicy{
			ErrorMinGap: time.Duration(cfg.Restart.ErrorGapMS) * time.Millisecond,
			ErrorDelay:  time.Duration(cfg.Restart.ErrorDelayMS) * time.Millisecond,
			EndMinGap:   time.Duration(cfg.Restart.EndGapMS) * time.Millisecond,
			EndDelay:    time.Duration(cfg.Restart.EndDelayMS) * time.Millisecond,
		},
	})
	defer controller.Close()

	if !controller.IsSupported() {
		fmt.Fprintf(r.Stderr, "error: recognition engine unavailable; set %s and retry\n", cfg.Engine.APIKeyEnv)
		return 1
	}

	serverCtx, serverCancel := context.WithCancel(ctx)
	defer serverCancel()

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- ipc.Serve(serverCtx, sock, controller)
	}()

	controller.Enable()
	fmt.Fprintf(r.Stdout, "earshot listening (socket %s)\n", socketPath)

	select {
	case <-ctx.Done():
		controller.Close()
		serverCancel()
		if serverErr := <-serverErrCh; serverErr != nil {
			logger.Error("ipc server failed", "error", serverErr.Error())
		}
		fmt.Fprintln(r.Stdout, "earshot stopped")
		return 0
	case serverErr := <-serverErrCh:
		controller.Close()
		if serverErr != nil {
			fmt.Fprintf(r.Stderr, "error: ipc server failed: %v\n", serverErr)
			return 1
		}
		return 0
	}
}

func (r Runner) commandDevices(ctx context.Context) int {
	devices, err := audio.ListDevices(ctx)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if len(devices) == 0 {
		fmt.Fprintln(r.Stdout, "no audio devices found")
		return 1
	}

	for _, device := range devices {
		defaultMark := " "
		if device.Default {
			defaultMark = "*"
		}
		availability := "yes"
		if !device.Available {
			availability = "no"
		}
		muted := "no"
		if device.Muted {
			muted = "yes"
		}
		fmt.Fprintf(
			r.Stdout,
			"%s id=%s | description=%q | state=%s | available=%s | muted=%s\n",
			defaultMark,
			device.ID,
			device.Description,
			device.State,
			availability,
			muted,
		)
	}

	return 0
}

func (r Runner) commandStatus(ctx context.Context) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintln(r.Stdout, "not running")
		return 0
	}

	resp, handled, err := tryForward(ctx, socketPath, "status")
	if !handled {
		fmt.Fprintln(r.Stdout, "not running")
		return 0
	}
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	state := resp.State
	if state == "" {
		state = "idle"
	}
	fmt.Fprintln(r.Stdout, state)
	if resp.Message != "" {
		fmt.Fprintln(r.Stdout, resp.Message)
	}
	return 0
}

func (r Runner) forwardOrFail(ctx context.Context, command string) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	resp, handled, err := tryForward(ctx, socketPath, command)
	if !handled {
		fmt.Fprintln(r.Stderr, "error: no running earshot daemon")
		return 1
	}
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if resp.Message != "" {
		fmt.Fprintln(r.Stdout, resp.Message)
	}
	return 0
}

// tryForward sends one command to a possibly running daemon. handled=false
// means no daemon is reachable.
func tryForward(ctx context.Context, socketPath string, command string) (ipc.Response, bool, error) {
	resp, err := ipc.Send(ctx, socketPath, ipc.Request{Command: command}, forwardTimeout)
	if err == nil {
		if resp.OK {
			return resp, true, nil
		}
		return resp, true, errors.New(resp.Error)
	}

	if ipc.IsSocketMissing(err) || ipc.IsConnectionRefused(err) {
		return ipc.Response{}, false, nil
	}

	return ipc.Response{}, true, fmt.Errorf("forward command %q: %w", command, err)
}
