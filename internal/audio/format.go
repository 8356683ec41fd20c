package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// SampleFormat is the encoding a device consumes. The encoder for a format is
// picked once when the stream is built.
type SampleFormat int

const (
	FormatU8 SampleFormat = iota + 1
	FormatS16
)

func (f SampleFormat) Bytes() int {
	switch f {
	case FormatU8:
		return 1
	case FormatS16:
		return 2
	}
	return 0
}

func (f SampleFormat) String() string {
	switch f {
	case FormatU8:
		return "u8"
	case FormatS16:
		return "s16"
	}
	return fmt.Sprintf("SampleFormat(%d)", int(f))
}

// encoder converts interleaved samples in [-1, 1] into device bytes.
type encoder func(dst []byte, src []float32)

func (f SampleFormat) encoder() encoder {
	switch f {
	case FormatU8:
		return encodeU8
	case FormatS16:
		return encodeS16
	}
	return nil
}

func encodeU8(dst []byte, src []float32) {
	for i, s := range src {
		v := math.Round((float64(s) + 1) * 127.5)
		dst[i] = uint8(math.Max(0, math.Min(255, v)))
	}
}

func encodeS16(dst []byte, src []float32) {
	for i, s := range src {
		v := math.Round(float64(s) * math.MaxInt16)
		v = math.Max(math.MinInt16, math.Min(math.MaxInt16, v))
		binary.LittleEndian.PutUint16(dst[2*i:], uint16(int16(v)))
	}
}

// StreamConfig describes an output stream.
type StreamConfig struct {
	SampleRate   int
	Channels     int
	Format       SampleFormat
	BufferFrames int
}

func (c StreamConfig) BufferDuration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(c.BufferFrames) * time.Second / time.Duration(c.SampleRate)
}

func (c StreamConfig) valid() bool {
	return c.SampleRate > 0 && c.Channels > 0 && c.BufferFrames > 0 && nil != c.Format.encoder()
}

func (c StreamConfig) String() string {
	return fmt.Sprintf("%dHz %dch %v %d frames", c.SampleRate, c.Channels, c.Format, c.BufferFrames)
}
