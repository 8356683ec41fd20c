package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/hajimehoshi/oto"
)

// DefaultConfigs are tried when no configuration is given to NewOtoHost.
func DefaultConfigs() []StreamConfig {
	return []StreamConfig{
		{SampleRate: 48000, Channels: 2, Format: FormatS16, BufferFrames: 1024},
		{SampleRate: 44100, Channels: 2, Format: FormatS16, BufferFrames: 1024},
		{SampleRate: 44100, Channels: 1, Format: FormatU8, BufferFrames: 1024},
	}
}

// OtoHost plays through the system's default output with oto. oto cannot
// enumerate devices, so there is exactly one.
type OtoHost struct {
	configs []StreamConfig
}

func NewOtoHost(configs ...StreamConfig) *OtoHost {
	if len(configs) == 0 {
		configs = DefaultConfigs()
	}
	return &OtoHost{configs: configs}
}

func (h *OtoHost) DefaultOutputDevice() (Device, error) {
	return &otoDevice{configs: h.configs}, nil
}

type otoDevice struct {
	configs []StreamConfig
}

func (d *otoDevice) Name() string {
	return "default"
}

// SupportedConfigs drops what oto cannot open: it takes 8 and 16 bit samples
// in mono or stereo.
func (d *otoDevice) SupportedConfigs() ([]StreamConfig, error) {
	supported := []StreamConfig{}
	for _, c := range d.configs {
		if c.valid() && c.Channels <= 2 {
			supported = append(supported, c)
		}
	}
	return supported, nil
}

func (d *otoDevice) BuildStream(config StreamConfig, callback Callback, onError func(error)) (Stream, error) {
	if !config.valid() {
		return nil, fmt.Errorf("invalid stream config %v", config)
	}
	bufferBytes := config.BufferFrames * config.Channels * config.Format.Bytes()
	ctx, err := oto.NewContext(config.SampleRate, config.Channels, config.Format.Bytes(), bufferBytes)
	if nil != err {
		return nil, err
	}
	return &otoStream{
		config:   config,
		ctx:      ctx,
		player:   ctx.NewPlayer(),
		callback: callback,
		onError:  onError,
		encode:   config.Format.encoder(),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// otoStream drives the callback from a pump goroutine. Writing to the player
// blocks until oto has room for another buffer, which paces the loop at one
// callback per buffer period.
type otoStream struct {
	config   StreamConfig
	ctx      *oto.Context
	player   *oto.Player
	callback Callback
	onError  func(error)
	encode   encoder

	playOnce  sync.Once
	closeOnce sync.Once
	started   bool
	stop      chan struct{}
	done      chan struct{}
}

func (s *otoStream) Play() error {
	s.playOnce.Do(func() {
		s.started = true
		go s.pump()
	})
	return nil
}

func (s *otoStream) pump() {
	defer close(s.done)

	samples := make([]float32, s.config.BufferFrames*s.config.Channels)
	buf := make([]byte, len(samples)*s.config.Format.Bytes())
	latency := s.config.BufferDuration()

	for {
		select {
		case <-s.stop:
			return
		default:
		}

		now := time.Now()
		info := CallbackInfo{Callback: now, Playback: now.Add(latency)}
		if err := s.callback(samples, info); nil != err {
			s.onError(err)
			return
		}
		s.encode(buf, samples)
		if _, err := s.player.Write(buf); nil != err {
			s.onError(fmt.Errorf("unable to write to audio device: %w", err))
			return
		}
	}
}

func (s *otoStream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stop)
		if s.started {
			<-s.done
		}
		if perr := s.player.Close(); nil != perr {
			err = perr
		}
		if cerr := s.ctx.Close(); nil != cerr && nil == err {
			err = cerr
		}
	})
	return err
}
