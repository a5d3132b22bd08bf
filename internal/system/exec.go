package system

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"deskvox/internal/assistant"
)

// runFunc runs a command to completion; tests swap it out.
type runFunc func(ctx context.Context, name string, args ...string) error

func runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// startFunc starts a command without waiting for it.
type startFunc func(name string, args ...string) error

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}

	go func() {
		if err := cmd.Wait(); err != nil {
			slog.Debug("Launched process exited", "cmd", name, "err", err)
		}
	}()
	return nil
}

// Launcher opens and closes desktop applications.
type Launcher struct {
	start startFunc
	run   runFunc
}

func NewLauncher() *Launcher {
	return &Launcher{start: startDetached, run: runCommand}
}

func (l *Launcher) Run(_ context.Context, argv []string) error {
	if len(argv) == 0 {
		return errors.New("empty command")
	}
	return l.start(argv[0], argv[1:]...)
}

// Start launches app by its executable name, without arguments.
func (l *Launcher) Start(_ context.Context, app string) error {
	if app == "" {
		return errors.New("empty application name")
	}
	return l.start(app)
}

// Kill terminates every process whose name is exactly app.
func (l *Launcher) Kill(ctx context.Context, app string) error {
	if app == "" {
		return errors.New("empty application name")
	}

	err := l.run(ctx, "pkill", "-x", app)

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return fmt.Errorf("no process named %q", app)
	}
	return err
}

func (l *Launcher) OpenURL(_ context.Context, url string) error {
	return l.start("xdg-open", url)
}

var _ assistant.Launcher = (*Launcher)(nil)
