package system

import (
	"context"
	"strconv"
	"time"

	"deskvox/internal/assistant"
)

const injectTimeout = 10 * time.Second

// Pointer injects mouse and keyboard events through xdotool.
type Pointer struct {
	run runFunc
}

func NewPointer() *Pointer {
	return &Pointer{run: runCommand}
}

func (p *Pointer) MoveTo(x, y int) error {
	return p.xdotool("mousemove", strconv.Itoa(x), strconv.Itoa(y))
}

func (p *Pointer) Click() error {
	return p.xdotool("click", "1")
}

// Scroll moves the wheel by amount notches; positive is up.
func (p *Pointer) Scroll(amount int) error {
	button := "4"
	if amount < 0 {
		button = "5"
		amount = -amount
	}
	if amount == 0 {
		return nil
	}
	return p.xdotool("click", "--repeat", strconv.Itoa(amount), button)
}

func (p *Pointer) TypeText(text string) error {
	return p.xdotool("type", "--delay", "12", "--", text)
}

func (p *Pointer) xdotool(args ...string) error {
	ctx, cancel := context.WithTimeout(context.Background(), injectTimeout)
	defer cancel()
	return p.run(ctx, "xdotool", args...)
}

var _ assistant.Pointer = (*Pointer)(nil)
