// Package voice turns microphone audio and recorded clips into utterances.
package voice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"deskvox/internal/assistant"
	"deskvox/internal/audio"
	"deskvox/pkg/audioconv"
	"deskvox/pkg/stt"
)

const transcribeTimeout = 60 * time.Second

type Recorder interface {
	RecordUtterance(ctx context.Context, opt audio.RecordOptions) ([]float32, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, pcm16k []float32) (stt.Result, error)
}

// Mic is an assistant.Listener backed by the default input device.
type Mic struct {
	rec Recorder
	tr  Transcriber
	opt audio.RecordOptions
	cue func(ctx context.Context)
	log *slog.Logger
}

// NewMic returns a microphone listener. cue runs right before recording
// starts and may be nil.
func NewMic(rec Recorder, tr Transcriber, opt audio.RecordOptions, cue func(ctx context.Context), log *slog.Logger) *Mic {
	if cue == nil {
		cue = func(context.Context) {}
	}
	return &Mic{rec: rec, tr: tr, opt: opt, cue: cue, log: log}
}

func (m *Mic) Listen(ctx context.Context) (string, error) {
	m.cue(ctx)

	m.log.Info("Starting listening")
	pcm, err := m.rec.RecordUtterance(ctx, m.opt)
	switch {
	case errors.Is(err, audio.ErrNoSpeech):
		return "", assistant.ErrListenTimeout
	case ctx.Err() != nil:
		return "", ctx.Err()
	case err != nil:
		return "", fmt.Errorf("%w: record: %v", assistant.ErrRecognizer, err)
	}

	m.log.Info("Recorded", "samples", len(pcm))
	return transcribe(ctx, m.tr, pcm, m.log)
}

// Clips is an assistant.ClipTranscriber for audio files on disk.
type Clips struct {
	tr  Transcriber
	log *slog.Logger
}

func NewClips(tr Transcriber, log *slog.Logger) *Clips {
	return &Clips{tr: tr, log: log}
}

func (c *Clips) TranscribeFile(ctx context.Context, path string) (string, error) {
	pcm, err := audioconv.DecodeFile(ctx, path, audioconv.Options{
		MaxSamples: audioconv.TargetRate * 60,
	})
	if err != nil {
		c.log.Error("Failed to decode clip", "path", path, "err", err)
		return "", fmt.Errorf("%w: %v", assistant.ErrUnintelligible, err)
	}

	c.log.Info("Decoded clip", "path", path, "samples", len(pcm))
	return transcribe(ctx, c.tr, pcm, c.log)
}

func transcribe(ctx context.Context, tr Transcriber, pcm []float32, log *slog.Logger) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, transcribeTimeout)
	defer cancel()

	res, err := tr.Transcribe(ctx, pcm)
	switch {
	case errors.Is(err, stt.ErrNoAudio):
		return "", assistant.ErrListenTimeout
	case err != nil:
		return "", fmt.Errorf("%w: %v", assistant.ErrRecognizer, err)
	}

	log.Info("Transcribed", "text", res.Text, "lang", res.Language)

	text, ok := Clean(res.Text)
	if !ok {
		return "", assistant.ErrUnintelligible
	}
	return text, nil
}
