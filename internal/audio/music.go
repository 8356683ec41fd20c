package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
)

// Source is decoded music already at the stream's sample rate.
type Source interface {
	// Stream fills frames with stereo samples and returns how many it wrote.
	// Fewer than len(frames) means the music has ended.
	Stream(frames [][2]float64) int
	// Seek moves to t seconds from the start of the music.
	Seek(t float64) error
}

// Decoder turns a file into a Source matching the stream configuration.
type Decoder func(path string, config StreamConfig) (Source, error)

const resampleQuality = 4

// DecodeFile decodes mp3, ogg, wav and flac files, resamples them to the
// stream rate and keeps the samples in memory so the callback never touches
// the disk.
func DecodeFile(path string, config StreamConfig) (Source, error) {
	f, err := os.Open(path)
	if nil != err {
		return nil, err
	}

	var streamer beep.StreamSeekCloser
	var format beep.Format
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".flac":
		streamer, format, err = flac.Decode(f)
	default:
		f.Close()
		return nil, fmt.Errorf("unsupported audio file %q", filepath.Base(path))
	}
	if nil != err {
		f.Close()
		return nil, fmt.Errorf("unable to decode %v: %w", filepath.Base(path), err)
	}
	defer streamer.Close()

	rate := beep.SampleRate(config.SampleRate)
	var s beep.Streamer = streamer
	if format.SampleRate != rate {
		s = beep.Resample(resampleQuality, format.SampleRate, rate, streamer)
	}

	buffer := beep.NewBuffer(beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2})
	buffer.Append(s)
	if err := streamer.Err(); nil != err {
		return nil, fmt.Errorf("unable to decode %v: %w", filepath.Base(path), err)
	}
	return &bufferedSource{
		s:    buffer.Streamer(0, buffer.Len()),
		rate: rate,
	}, nil
}

type bufferedSource struct {
	s    beep.StreamSeeker
	rate beep.SampleRate
}

func (b *bufferedSource) Stream(frames [][2]float64) int {
	n, ok := b.s.Stream(frames)
	if !ok {
		return 0
	}
	return n
}

func (b *bufferedSource) Seek(t float64) error {
	p := b.rate.N(time.Duration(t * float64(time.Second)))
	if p < 0 {
		p = 0
	}
	if p > b.s.Len() {
		p = b.s.Len()
	}
	return b.s.Seek(p)
}
