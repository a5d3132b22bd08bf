package assistant

import (
	"context"
	"sync"

	"deskvox/internal/intent"
	"deskvox/internal/session"
)

const msgBusy = "Please wait, I'm still working on the previous command."

// Outcome tells a caller what happened to its input.
type Outcome int

const (
	Accepted Outcome = iota
	Delivered
	Ignored
	Busy
	Unavailable
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case Delivered:
		return "delivered as follow-up"
	case Ignored:
		return "ignored"
	case Busy:
		return "busy"
	case Unavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// ClipTranscriber turns a recorded audio file into an utterance.
type ClipTranscriber interface {
	TranscribeFile(ctx context.Context, path string) (string, error)
}

// Assistant routes typed and spoken input into the Dispatcher and keeps at
// most one dispatch in flight.
type Assistant struct {
	d     *Dispatcher
	voice Listener
	clips ClipTranscriber
	typed *TypedInput

	busy sync.Mutex
	wg   sync.WaitGroup
}

// New wires an Assistant. voice and clips may be nil when no microphone or
// recognizer is available.
func New(d *Dispatcher, typed *TypedInput, voice Listener, clips ClipTranscriber) *Assistant {
	return &Assistant{
		d:     d,
		voice: voice,
		clips: clips,
		typed: typed,
	}
}

// Start arms name capture and asks for the user's name.
func (a *Assistant) Start(ctx context.Context) {
	a.d.Session.ExpectName()
	a.d.Say(ctx, "What is your name?")

	if a.voice != nil {
		a.Listen(ctx)
	}
}

// Submit handles one typed line.
func (a *Assistant) Submit(ctx context.Context, text string) Outcome {
	if text == "" {
		return Ignored
	}

	if a.typed.Offer(text) {
		a.d.Surface.User(text)
		return Delivered
	}

	if !a.busy.TryLock() {
		a.reject(text)
		return Busy
	}

	a.d.Surface.User(text)
	a.spawn(func() {
		defer a.busy.Unlock()
		a.d.Dispatch(ctx, text, a.typed)
	})

	return Accepted
}

// Listen captures one spoken command in the background and dispatches it.
func (a *Assistant) Listen(ctx context.Context) Outcome {
	if a.voice == nil {
		return Unavailable
	}
	if !a.busy.TryLock() {
		a.reject("listen")
		return Busy
	}

	a.spawn(func() {
		defer a.busy.Unlock()

		text, err := a.voice.Listen(ctx)
		if err != nil {
			a.d.reportListen(ctx, err)
			return
		}

		a.d.Surface.User(text)
		a.d.Dispatch(ctx, text, a.voice)
	})

	return Accepted
}

// ListenFile treats a recorded clip as a spoken command.
func (a *Assistant) ListenFile(ctx context.Context, path string) Outcome {
	if a.clips == nil {
		return Unavailable
	}
	if !a.busy.TryLock() {
		a.reject(path)
		return Busy
	}

	a.spawn(func() {
		defer a.busy.Unlock()

		text, err := a.clips.TranscribeFile(ctx, path)
		if err != nil {
			a.d.reportListen(ctx, err)
			return
		}

		a.d.Surface.User(text)
		a.d.Dispatch(ctx, text, a.followUp())
	})

	return Accepted
}

func (a *Assistant) followUp() Listener {
	if a.voice != nil {
		return a.voice
	}
	return a.typed
}

func (a *Assistant) reject(input string) {
	a.d.Log.Warn("Rejected input while busy", "input", input, "pending", a.d.Session.Pending().String())
	a.d.Surface.Error(msgBusy)
}

func (a *Assistant) spawn(f func()) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		f()
	}()
}

// Wait blocks until background dispatches have returned.
func (a *Assistant) Wait() {
	a.wg.Wait()
}

func (a *Assistant) SetTheme(theme string) error {
	if err := a.d.Session.SetTheme(theme); err != nil {
		return err
	}
	a.d.Log.Info("Theme changed", "theme", theme)
	return nil
}

// SetSpeechRate stores the clamped rate and applies it to speech output.
func (a *Assistant) SetSpeechRate(rate int) int {
	rate = a.d.Session.SetSpeechRate(rate)
	if a.d.Speaker != nil {
		a.d.Speaker.SetRate(rate)
	}
	a.d.Log.Info("Speech rate changed", "rate", rate)
	return rate
}

func (a *Assistant) SetName(name string) {
	a.d.Session.SetName(name)
	a.d.Log.Info("Name changed", "name", name)
}

func (a *Assistant) Status() session.Snapshot {
	return a.d.Session.Snapshot()
}

func (a *Assistant) History() []string {
	return a.d.Session.History()
}

func (a *Assistant) Phrases() []intent.Phrase {
	return a.d.Resolver.Phrases()
}
