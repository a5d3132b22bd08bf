// Package audioconv decodes audio clips into the 16 kHz mono float32 PCM the
// speech recognizer expects.
package audioconv

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	popus "github.com/pekim/opus"
)

const TargetRate = 16000

var ErrUnsupported = errors.New("unsupported audio format")

type Options struct {
	MaxSamples int // 0 = no limit
}

// raw is decoded interleaved PCM before downmixing and resampling.
type raw struct {
	pcm      []float32
	channels int
	rate     int
}

type decoder func(io.ReadSeeker) (raw, error)

var byExt = map[string][]decoder{
	".wav":  {decodeWAV},
	".mp3":  {decodeMP3},
	".ogg":  {decodeVorbis, decodeOpus},
	".oga":  {decodeVorbis, decodeOpus},
	".opus": {decodeOpus},
}

var byMagic = map[string][]decoder{
	"RIFF":    {decodeWAV},
	"OggS":    {decodeVorbis, decodeOpus},
	"ID3\x03": {decodeMP3},
	"ID3\x04": {decodeMP3},
}

// DecodeFile picks a decoder by extension, falling back to sniffing the
// first four bytes, and returns normalized 16 kHz mono samples.
func DecodeFile(ctx context.Context, path string, opt Options) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	decoders, ok := byExt[strings.ToLower(filepath.Ext(path))]
	if !ok {
		magic, _ := bufio.NewReader(f).Peek(4)
		if decoders, ok = byMagic[string(magic)]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Base(path))
		}
	}

	return decode(ctx, f, decoders, opt)
}

// decode tries each decoder in turn, rewinding between attempts.
func decode(ctx context.Context, r io.ReadSeeker, decoders []decoder, opt Options) ([]float32, error) {
	var errs []error
	for _, dec := range decoders {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := r.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}

		clip, err := dec(r)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		return normalize(clip, opt), nil
	}
	return nil, fmt.Errorf("decode: %w", errors.Join(errs...))
}

func normalize(clip raw, opt Options) []float32 {
	x := downmix(clip.pcm, clip.channels)
	x = resample(x, clip.rate, TargetRate)
	if opt.MaxSamples > 0 && len(x) > opt.MaxSamples {
		x = x[:opt.MaxSamples]
	}
	return x
}

func decodeWAV(r io.ReadSeeker) (raw, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return raw{}, errors.New("invalid wav")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return raw{}, err
	}
	if buf == nil || len(buf.Data) == 0 {
		return raw{}, errors.New("empty wav")
	}

	depth := int(dec.BitDepth)
	if depth == 0 {
		depth = 16
	}

	clip := raw{pcm: intsToFloat(buf.Data, depth), channels: 1, rate: 44100}
	if buf.Format != nil {
		if buf.Format.NumChannels > 0 {
			clip.channels = buf.Format.NumChannels
		}
		if buf.Format.SampleRate > 0 {
			clip.rate = buf.Format.SampleRate
		}
	}
	return clip, nil
}

// go-mp3 always yields 16-bit little-endian stereo.
func decodeMP3(r io.ReadSeeker) (raw, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return raw{}, err
	}
	var b bytes.Buffer
	if _, err := io.Copy(&b, dec); err != nil {
		return raw{}, err
	}
	samples := make([]int16, b.Len()/2)
	if err := binary.Read(&b, binary.LittleEndian, samples); err != nil {
		return raw{}, err
	}

	rate := dec.SampleRate()
	if rate <= 0 {
		rate = 44100
	}
	return raw{pcm: int16sToFloat(samples), channels: 2, rate: rate}, nil
}

func decodeVorbis(r io.ReadSeeker) (raw, error) {
	pcm, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return raw{}, err
	}
	if format == nil || format.Channels <= 0 || format.SampleRate <= 0 {
		return raw{}, errors.New("invalid ogg/vorbis stream")
	}
	return raw{pcm: pcm, channels: format.Channels, rate: format.SampleRate}, nil
}

// Opus always decodes at 48 kHz.
func decodeOpus(r io.ReadSeeker) (raw, error) {
	dec, err := popus.NewDecoder(r)
	if err != nil {
		return raw{}, err
	}
	defer dec.Destroy()

	ch := dec.ChannelCount()
	if ch <= 0 {
		ch = 1
	}

	var pcm []float32
	buf := make([]int16, 48_000*ch/2)
	for {
		n, err := dec.Read(buf)
		if n > 0 {
			pcm = append(pcm, int16sToFloat(buf[:n*ch])...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return raw{}, err
		}
	}
	if len(pcm) == 0 {
		return raw{}, errors.New("empty opus stream")
	}
	return raw{pcm: pcm, channels: ch, rate: 48000}, nil
}
