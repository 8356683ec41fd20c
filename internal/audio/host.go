package audio

import "time"

// CallbackInfo carries the timestamps of one callback invocation: when it was
// called and when its first sample will reach the speaker.
type CallbackInfo struct {
	Callback time.Time
	Playback time.Time
}

// Callback fills out with interleaved samples. Returning an error stops the
// stream.
type Callback func(out []float32, info CallbackInfo) error

type Host interface {
	DefaultOutputDevice() (Device, error)
}

type Device interface {
	Name() string
	// SupportedConfigs lists configurations in order of preference.
	SupportedConfigs() ([]StreamConfig, error)
	BuildStream(config StreamConfig, callback Callback, onError func(error)) (Stream, error)
}

type Stream interface {
	Play() error
	Close() error
}
