package tts

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"deskvox/internal/assistant"
)

// Ducker lowers other audio while the assistant talks.
type Ducker interface {
	DuckOthers(ctx context.Context, factor float64, duration time.Duration) error
	UnduckOthers(ctx context.Context, duration time.Duration) error
}

type DuckOptions struct {
	Factor float64
	Fade   time.Duration
}

// Speaker speaks one utterance at a time through espeak-ng. The rate can
// change mid-utterance and applies from the next one.
type Speaker struct {
	mu    sync.Mutex
	voice string
	rate  atomic.Int64

	ducker Ducker
	duck   DuckOptions
	log    *slog.Logger

	say func(text, voice string, rate int) error
}

// NewSpeaker returns a Speaker for voice (an espeak language such as "en").
// ducker may be nil.
func NewSpeaker(voice string, rate int, ducker Ducker, duck DuckOptions, log *slog.Logger) *Speaker {
	s := &Speaker{
		voice:  voice,
		ducker: ducker,
		duck:   duck,
		log:    log,
		say:    espeakSay,
	}
	s.rate.Store(int64(rate))
	return s
}

func (s *Speaker) Speak(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ducker != nil {
		if err := s.ducker.DuckOthers(ctx, s.duck.Factor, s.duck.Fade); err != nil {
			s.log.Warn("Failed to duck audio", "err", err)
		}
		defer func() {
			if err := s.ducker.UnduckOthers(context.WithoutCancel(ctx), s.duck.Fade); err != nil {
				s.log.Warn("Failed to restore audio", "err", err)
			}
		}()
	}

	return s.say(text, s.voice, int(s.rate.Load()))
}

func (s *Speaker) SetRate(rate int) {
	s.rate.Store(int64(rate))
}

var _ assistant.Speaker = (*Speaker)(nil)
