package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"deskvox/internal/assistant"
	"deskvox/internal/audio"
	"deskvox/internal/config"
	"deskvox/internal/knowledge"
	"deskvox/internal/notify"
	"deskvox/internal/proxy"
	"deskvox/internal/session"
	"deskvox/internal/surface"
	"deskvox/internal/tts"
	"deskvox/internal/voice"
	"deskvox/pkg/stt"
)

func buildSurface(cfg config.Config, sess *session.Session, log *slog.Logger) (assistant.Surface, func()) {
	out := surface.Multi{surface.NewConsole(os.Stdout, sess.Theme)}

	if cfg.Bus.URL == "" {
		return out, func() {}
	}

	bus, err := surface.NewBus(cfg.Bus.URL, cfg.Bus.Name, log)
	if err != nil {
		log.Warn("Bus unavailable, console only", "url", cfg.Bus.URL, "err", err)
		return out, func() {}
	}
	return append(out, bus), func() { bus.Close() }
}

func buildSpeaker(cfg config.Config, sess *session.Session, log *slog.Logger) assistant.Speaker {
	if !cfg.TTS.Enabled {
		return nil
	}

	var ducker tts.Ducker
	if cfg.Duck.Enabled {
		ducker = audio.NewDucker(cfg.Duck.Self, cfg.Duck.MinVolume)
	}

	return tts.NewSpeaker(cfg.TTS.Voice, sess.SpeechRate(), ducker, tts.DuckOptions{
		Factor: cfg.Duck.Factor,
		Fade:   cfg.Duck.Fade,
	}, log)
}

func buildEncyclopedia(cfg config.Config, proxyAddr string) (assistant.Encyclopedia, error) {
	httpClient, err := proxy.NewHTTPClient(proxyAddr)
	if err != nil {
		return nil, fmt.Errorf("dial socks proxy %s: %w", proxyAddr, err)
	}

	switch cfg.Knowledge.Backend {
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY not set")
		}
		client := openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithHTTPClient(httpClient),
		)
		return knowledge.NewOpenAI(client, cfg.Knowledge.Model), nil
	case "wikipedia":
		return knowledge.NewWikipedia(cfg.Knowledge.Endpoint, httpClient), nil
	default:
		return nil, fmt.Errorf("unknown knowledge backend %q", cfg.Knowledge.Backend)
	}
}

type voiceInput struct {
	mic   *voice.Mic
	clips *voice.Clips

	closers []io.Closer
}

func (v *voiceInput) Close() {
	for i := len(v.closers) - 1; i >= 0; i-- {
		v.closers[i].Close()
	}
}

type closeFunc func()

func (f closeFunc) Close() error {
	f()
	return nil
}

// buildVoice loads the whisper model and, when mic is set, opens the audio
// device. The clip transcriber works without a microphone.
func buildVoice(cfg config.Config, surf assistant.Surface, log *slog.Logger, mic bool) (*voiceInput, error) {
	tr, err := stt.NewTranscriber(cfg.STT.Model, stt.Options{
		Language: cfg.STT.Language,
		Threads:  cfg.STT.Threads,
	})
	if err != nil {
		return nil, fmt.Errorf("init whisper: %w", err)
	}
	log.Debug("Loaded whisper", "model", cfg.STT.Model)

	v := &voiceInput{
		clips:   voice.NewClips(tr, log),
		closers: []io.Closer{tr},
	}
	if !mic {
		return v, nil
	}

	rec := audio.NewRecorder()
	if err := rec.Init(); err != nil {
		log.Warn("Failed to init audio, clips only", "err", err)
		return v, nil
	}
	v.closers = append(v.closers, closeFunc(rec.Close))
	log.Debug("Loaded recorder")

	beeper := notify.NewBeeper(cfg.Listen.Beep)
	desktop := notify.NewDesktop("deskvox")

	cue := func(ctx context.Context) {
		surf.Status("Listening...")
		if err := beeper.Beep(ctx); err != nil {
			log.Debug("Listening cue failed", "err", err)
		}
		if cfg.Listen.Notify {
			if err := desktop.Notify(ctx, "Listening..."); err != nil {
				log.Debug("Desktop notification failed", "err", err)
			}
		}
	}

	v.mic = voice.NewMic(rec, tr, audio.RecordOptions{
		Wait:       cfg.Listen.Wait,
		MaxLength:  cfg.Listen.MaxUtterance,
		SilenceRMS: cfg.Listen.SilenceRMS,
	}, cue, log)

	return v, nil
}
