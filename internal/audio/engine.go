package audio

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

type options struct {
	host   Host
	log    *zap.Logger
	clock  Clock
	decode Decoder
}

type Option func(*options)

func WithHost(h Host) Option {
	return func(o *options) {
		o.host = h
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

func WithClock(c Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

func WithDecoder(d Decoder) Option {
	return func(o *options) {
		o.decode = d
	}
}

func applyOptions(opts ...Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if nil == o.host {
		o.host = NewOtoHost()
	}
	if nil == o.log {
		o.log = zap.NewNop()
	}
	if nil == o.clock {
		o.clock = systemClock{}
	}
	if nil == o.decode {
		o.decode = DecodeFile
	}
	return o
}

// Engine owns the output stream. The control side sends commands through
// CommandSender and reads PlaybackPosition; the callback owns everything
// else.
type Engine struct {
	config StreamConfig
	stream Stream
	queue  *commandQueue
	state  *stateSlot
	sender *Sender
	clock  Clock
	log    *zap.Logger
	decode Decoder

	loads   atomic.Uint64
	loading sync.WaitGroup

	closeOnce sync.Once
	done      chan struct{}
}

// Open starts playing silence on the default output device using its first
// supported configuration.
func Open(opts ...Option) (*Engine, error) {
	o := applyOptions(opts...)

	device, err := o.host.DefaultOutputDevice()
	if nil != err {
		return nil, fmt.Errorf("%w: %w", ErrNoOutputDevice, err)
	}
	if nil == device {
		return nil, ErrNoOutputDevice
	}
	configs, err := device.SupportedConfigs()
	if nil != err {
		return nil, fmt.Errorf("%w: %w", ErrNoStreamConfig, err)
	}
	if len(configs) == 0 {
		return nil, ErrNoStreamConfig
	}
	config := configs[0]

	e := &Engine{
		config: config,
		queue:  &commandQueue{},
		state:  &stateSlot{},
		clock:  o.clock,
		log:    o.log,
		decode: o.decode,
		done:   make(chan struct{}),
	}
	e.sender = newSender(e.queue, e.load)
	m := newMixer(config, e.queue, e.state, o.clock, o.log)

	stream, err := device.BuildStream(config, m.process, e.onStreamError)
	if nil != err {
		return nil, fmt.Errorf("%w: %w", ErrBuildStream, err)
	}
	if err := stream.Play(); nil != err {
		stream.Close()
		return nil, fmt.Errorf("%w: %w", ErrPlayStream, err)
	}
	e.stream = stream

	o.log.Info("audio stream started",
		zap.String("device", device.Name()),
		zap.Stringer("config", config),
	)
	return e, nil
}

// onStreamError is called from the audio goroutine when the stream stops.
func (e *Engine) onStreamError(err error) {
	if err == ErrDisconnected {
		e.log.Info("command channel closed, stopping audio")
	} else {
		e.log.Error("an error occurred on audio stream", zap.Error(err))
	}
	e.queue.stop()
	e.closeOnce.Do(func() { close(e.done) })
}

// load decodes off the audio goroutine. Only the most recent request is
// installed.
func (e *Engine) load(path string) {
	generation := e.loads.Add(1)
	e.loading.Add(1)
	go func() {
		defer e.loading.Done()
		source, err := e.decode(path, e.config)
		if nil != err {
			e.log.Error("unable to load music", zap.String("path", path), zap.Error(err))
			return
		}
		if e.loads.Load() != generation {
			e.log.Debug("discarding superseded music", zap.String("path", path))
			return
		}
		if err := e.queue.push(installMusic{source: source, generation: generation}); nil != err {
			e.log.Warn("unable to install music", zap.String("path", path), zap.Error(err))
			return
		}
		e.log.Info("loaded music", zap.String("path", path))
	}()
}

// CommandSender returns the engine's own producer. Use Clone for others.
func (e *Engine) CommandSender() *Sender {
	return e.sender
}

// PlaybackPosition returns the current playback time in seconds, or false
// when nothing is playing.
func (e *Engine) PlaybackPosition() (float64, bool) {
	return e.state.load().Position(e.clock.Now())
}

func (e *Engine) Config() StreamConfig {
	return e.config
}

// Done is closed once the stream has stopped.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

func (e *Engine) Close() error {
	e.sender.Close()
	e.queue.stop()
	err := e.stream.Close()
	e.loading.Wait()
	e.closeOnce.Do(func() { close(e.done) })
	return err
}
