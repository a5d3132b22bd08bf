package audio

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/gordonklaus/portaudio"
)

const (
	SampleRate = 16000
	frameSize  = 320 // 20ms
	frameDur   = time.Second * frameSize / SampleRate
)

var ErrNoSpeech = errors.New("no speech detected")

type RecordOptions struct {
	// Wait is how long to wait for speech to start; 0 waits until MaxLength.
	Wait       time.Duration
	MaxLength  time.Duration
	SilenceRMS float64
	// Trailing silence that ends the utterance.
	Silence time.Duration
}

type Recorder struct{}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Init() error {
	return portaudio.Initialize()
}

func (r *Recorder) Close() {
	portaudio.Terminate()
}

// RecordUtterance captures one utterance from the default input device as
// 16 kHz mono PCM. It returns ErrNoSpeech if nothing louder than the silence
// threshold arrives within opt.Wait.
func (r *Recorder) RecordUtterance(ctx context.Context, opt RecordOptions) ([]float32, error) {
	buf := make([]float32, frameSize)

	stream, err := portaudio.OpenDefaultStream(1, 0, SampleRate, len(buf), buf)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, err
	}
	defer stream.Stop()

	d := newDetector(opt)
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if err := stream.Read(); err != nil {
			return nil, err
		}

		if done, err := d.push(buf); done {
			return d.out, err
		}
	}
}

// detector is an energy-based endpointer over fixed 20ms frames.
type detector struct {
	thresh        float64
	waitFrames    int
	silenceFrames int
	maxFrames     int

	frames   int
	speaking bool
	spoken   int
	quiet    int
	out      []float32
}

func newDetector(opt RecordOptions) *detector {
	if opt.SilenceRMS <= 0 {
		opt.SilenceRMS = 0.015
	}
	if opt.Silence <= 0 {
		opt.Silence = 600 * time.Millisecond
	}
	if opt.MaxLength <= 0 {
		opt.MaxLength = 10 * time.Second
	}

	return &detector{
		thresh:        opt.SilenceRMS,
		waitFrames:    int(opt.Wait / frameDur),
		silenceFrames: int(opt.Silence / frameDur),
		maxFrames:     int(opt.MaxLength / frameDur),
		out:           make([]float32, 0, SampleRate*3),
	}
}

// push feeds one frame and reports whether recording is finished.
func (d *detector) push(frame []float32) (bool, error) {
	d.frames++

	if frameRMS(frame) > d.thresh {
		d.speaking = true
		d.quiet = 0
	} else if d.speaking {
		d.quiet++
		if d.quiet >= d.silenceFrames {
			return true, nil
		}
	} else {
		limit := d.waitFrames
		if limit <= 0 {
			limit = d.maxFrames
		}
		if d.frames >= limit {
			return true, ErrNoSpeech
		}
		return false, nil
	}

	d.out = append(d.out, frame...)
	d.spoken++
	return d.spoken >= d.maxFrames, nil
}

func frameRMS(f []float32) float64 {
	if len(f) == 0 {
		return 0
	}
	var s float64
	for _, x := range f {
		s += float64(x * x)
	}
	return math.Sqrt(s / float64(len(f)))
}
