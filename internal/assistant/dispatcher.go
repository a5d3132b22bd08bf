package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"deskvox/internal/intent"
	"deskvox/internal/session"
)

const (
	msgUnknown   = "I didn't understand that command. Please try again."
	msgFailed    = "Something went wrong with that command."
	msgRepeat    = "I didn't catch that. Could you please repeat?"
	msgNoService = "Could not request results; check your internet connection."
	msgNoSpeech  = "Could not speak text"
)

// Apps holds the command lines used by the single-shot launch intents.
type Apps struct {
	Browser      []string
	Notepad      []string
	Calculator   []string
	FileExplorer []string
	Shutdown     []string
}

type Deps struct {
	Session  *session.Session
	Resolver *intent.Resolver
	Surface  Surface
	Speaker  Speaker
	Launcher Launcher
	Pointer  Pointer
	Screen   Screen
	Files    Filesystem
	Wiki     Encyclopedia
	Apps     Apps
	Now      func() time.Time
	Quit     func()
	Log      *slog.Logger
}

type handler func(ctx context.Context, t *turn) error

// Dispatcher executes one resolved utterance at a time. It does not lock:
// callers serialize Dispatch (see Assistant).
type Dispatcher struct {
	Deps
	handlers map[intent.Intent]handler
}

func NewDispatcher(deps Deps) *Dispatcher {
	if deps.Resolver == nil {
		deps.Resolver = intent.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Quit == nil {
		deps.Quit = func() {}
	}
	if deps.Log == nil {
		deps.Log = slog.Default()
	}

	d := &Dispatcher{Deps: deps}
	d.handlers = map[intent.Intent]handler{
		intent.OpenBrowser:        openBrowser,
		intent.OpenNotepad:        openNotepad,
		intent.OpenFileExplorer:   openFileExplorer,
		intent.SearchWikipedia:    searchWikipedia,
		intent.OpenCalculator:     openCalculator,
		intent.Time:               tellTime,
		intent.Screenshot:         takeScreenshot,
		intent.Shutdown:           shutdown,
		intent.CreateFile:         createFile,
		intent.MoveMouse:          moveMouse,
		intent.Click:              click,
		intent.Scroll:             scroll,
		intent.Type:               typeText,
		intent.Exit:               exit,
		intent.OpenApplication:    openApplication,
		intent.CloseApplication:   closeApplication,
		intent.OpenWebsite:        openWebsite,
		intent.CloseWebsite:       closeWebsite,
		intent.SearchOnline:       searchOnline,
		intent.ListFiles:          listFiles,
		intent.CopyFile:           copyFile,
		intent.ShowVisualizations: showVisualizations,
	}

	return d
}

// Dispatch records the utterance, resolves it and runs the matching action.
// followUp supplies the answers to any question the action asks.
func (d *Dispatcher) Dispatch(ctx context.Context, utterance string, followUp Listener) {
	d.Session.Record(utterance)

	if d.Session.TakeName(utterance) {
		d.Log.Info("Name captured", "name", utterance)
		d.Say(ctx, fmt.Sprintf("Hello %s! How can I help you today?", utterance))
		return
	}

	in, ok := d.Resolver.Resolve(utterance)
	h, known := d.handlers[in]
	if !ok || !known {
		d.Log.Info("Command not understood", "text", utterance, "intent", in)
		d.Say(ctx, msgUnknown)
		return
	}

	d.Log.Info("Executing command", "intent", in, "text", utterance)

	t := &turn{d: d, intent: in, followUp: followUp}
	if err := d.run(ctx, h, t); err != nil {
		d.Log.Error("Error executing command", "intent", in, "err", err)
		d.Say(ctx, msgFailed)
	}
}

func (d *Dispatcher) run(ctx context.Context, h handler, t *turn) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	return h(ctx, t)
}

// Say shows text as the assistant's line and speaks it. Speech failures are
// downgraded to an on-surface error.
func (d *Dispatcher) Say(ctx context.Context, text string) {
	if text == "" {
		return
	}

	d.Surface.Assistant(text)

	if d.Speaker == nil {
		return
	}
	if err := d.Speaker.Speak(ctx, text); err != nil {
		d.Log.Error("Error in text-to-speech", "err", err)
		d.Surface.Error(msgNoSpeech)
	}
}

// reportListen turns a failed listen into the user-facing reaction: nothing
// on timeout, a repeat request, or a connectivity message.
func (d *Dispatcher) reportListen(ctx context.Context, err error) {
	switch {
	case errors.Is(err, ErrListenTimeout),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		d.Log.Debug("Listen ended without input", "err", err)
	case errors.Is(err, ErrUnintelligible):
		d.Say(ctx, msgRepeat)
	default:
		d.Log.Error("Speech recognition error", "err", err)
		d.Say(ctx, msgNoService)
	}
}

type turn struct {
	d        *Dispatcher
	intent   intent.Intent
	followUp Listener
}

// ask says prompt and waits for exactly one follow-up utterance.
func (t *turn) ask(ctx context.Context, prompt string) (string, bool) {
	t.d.Say(ctx, prompt)

	if err := t.d.Session.BeginPending(t.intent); err != nil {
		t.d.Log.Warn("Follow-up requested while another is pending", "intent", t.intent, "err", err)
	} else {
		defer t.d.Session.EndPending()
	}

	text, err := t.followUp.Listen(ctx)
	if err != nil {
		t.d.reportListen(ctx, err)
		return "", false
	}
	if text == "" {
		return "", false
	}

	t.d.Log.Debug("Follow-up received", "intent", t.intent, "text", text)
	return text, true
}

func (t *turn) say(ctx context.Context, format string, args ...any) {
	t.d.Say(ctx, fmt.Sprintf(format, args...))
}

func (t *turn) name() string {
	return t.d.Session.Name()
}
