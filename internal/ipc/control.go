package ipc

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"deskvox/internal/assistant"
	"deskvox/internal/intent"
	"deskvox/internal/session"
)

// Controller is the part of the assistant reachable from deskvox-ctl.
type Controller interface {
	Submit(ctx context.Context, text string) assistant.Outcome
	Listen(ctx context.Context) assistant.Outcome
	ListenFile(ctx context.Context, path string) assistant.Outcome
	Status() session.Snapshot
	History() []string
	Phrases() []intent.Phrase
	SetTheme(theme string) error
	SetSpeechRate(rate int) int
	SetName(name string)
}

// NewHandler maps control commands onto c. quit is called for "quit".
func NewHandler(c Controller, quit func()) Handler {
	return func(ctx context.Context, msg ControlMessage) ControlReply {
		text := strings.TrimSpace(msg.Text)

		switch msg.Cmd {
		case "listen":
			return outcome(c.Listen(ctx))
		case "say":
			if text == "" {
				return fail("nothing to say")
			}
			return outcome(c.Submit(ctx, text))
		case "listen-file":
			if text == "" {
				return fail("missing audio file path")
			}
			return outcome(c.ListenFile(ctx, text))
		case "status":
			st := c.Status()
			return ControlReply{OK: true, Status: &st}
		case "history":
			return ControlReply{OK: true, History: c.History()}
		case "phrases":
			return ControlReply{OK: true, Phrases: c.Phrases()}
		case "theme":
			if err := c.SetTheme(text); err != nil {
				return fail(err.Error())
			}
			return ControlReply{OK: true, Message: "theme set to " + text}
		case "rate":
			n, err := strconv.Atoi(text)
			if err != nil {
				return fail(fmt.Sprintf("invalid rate %q", text))
			}
			return ControlReply{OK: true, Message: fmt.Sprintf("speech rate set to %d", c.SetSpeechRate(n))}
		case "name":
			if text == "" {
				return fail("missing name")
			}
			c.SetName(text)
			return ControlReply{OK: true, Message: "name set to " + text}
		case "quit":
			quit()
			return ControlReply{OK: true, Message: "bye"}
		default:
			return fail(fmt.Sprintf("unknown command %q", msg.Cmd))
		}
	}
}

func outcome(o assistant.Outcome) ControlReply {
	return ControlReply{
		OK:      o == assistant.Accepted || o == assistant.Delivered,
		Message: o.String(),
	}
}

func fail(msg string) ControlReply {
	return ControlReply{Message: msg}
}
