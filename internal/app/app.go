// Package app dispatches neuroscan commands and wires their collaborators.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/rbright/neuroscan/internal/cli"
	"github.com/rbright/neuroscan/internal/config"
	"github.com/rbright/neuroscan/internal/doctor"
	"github.com/rbright/neuroscan/internal/logging"
	"github.com/rbright/neuroscan/internal/version"
)

const binaryName = "neuroscan"

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
		fmt.Fprint(r.Stderr, cli.HelpText(binaryName))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText(binaryName))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	logRuntime, err := logging.New()
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

	cfg := cfgLoaded.Config
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
	case cli.CommandStop:
		return r.commandControl(ctx, cli.CommandStop)
	case cli.CommandCancel:
		return r.commandControl(ctx, cli.CommandCancel)
	case cli.CommandImage:
		return r.commandImage(ctx, cfg, parsed, logger)
	case cli.CommandVoice:
		return r.commandVoice(ctx, cfg, parsed, logger)
	case cli.CommandScreen:
		return r.commandScreen(ctx, cfg, parsed, logger)
	case cli.CommandResults:
		return r.commandResults(ctx, cfg, logger)
	case cli.CommandLogin:
		return r.commandLogin(ctx, cfg, parsed, logger)
	case cli.CommandRegister:
		return r.commandRegister(ctx, cfg, parsed, logger)
	case cli.CommandLogout:
		return r.commandLogout(logger)
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

func (r Runner) fail(logger *slog.Logger, msg string, err error) int {
	fmt.Fprintf(r.Stderr, "error: %v\n", err)
	if logger != nil {
		logger.Error(msg, "error", err.Error())
	}
	return 1
}

func (r Runner) warn(format string, args ...any) {
	fmt.Fprintf(r.Stderr, "warning: "+format+"\n", args...)
}
