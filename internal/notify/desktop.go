package notify

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Desktop posts transient notifications through notify-send, which works
// with mako, swaync, dunst and the GNOME shell alike.
type Desktop struct {
	app string
	run func(ctx context.Context, name string, args ...string) ([]byte, error)
}

func NewDesktop(app string) *Desktop {
	return &Desktop{app: app, run: combinedOutput}
}

func (d *Desktop) Notify(ctx context.Context, summary string) error {
	args := []string{"--app-name", d.app, "--expire-time", "2000", summary}
	if out, err := d.run(ctx, "notify-send", args...); err != nil {
		return fmt.Errorf("notify-send: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func combinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}
