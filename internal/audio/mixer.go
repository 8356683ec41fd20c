package audio

import (
	"math"

	"go.uber.org/zap"
)

// Output samples are clamped to this magnitude however many clicks overlap.
const maxAmplitude = 1.0

// mixer is the state owned by the audio callback. Nothing else touches it;
// the control side talks to it through the command queue and reads the
// published state.
type mixer struct {
	config StreamConfig
	queue  *commandQueue
	state  *stateSlot
	clock  Clock
	log    *zap.Logger

	playing      bool
	playbackTime float64
	volume       float64
	effectVolume float64

	music      Source
	generation uint64

	schedule   Schedule
	pending    SoundEffect
	hasPending bool
	effects    []effect

	commands []Command
	frames   [][2]float64
}

func newMixer(config StreamConfig, queue *commandQueue, state *stateSlot, clock Clock, log *zap.Logger) *mixer {
	return &mixer{
		config:       config,
		queue:        queue,
		state:        state,
		clock:        clock,
		log:          log,
		volume:       1,
		effectVolume: 1,
		effects:      make([]effect, 0, 16),
		commands:     make([]Command, 0, 16),
		frames:       make([][2]float64, config.BufferFrames),
	}
}

func (m *mixer) apply(cmd Command) {
	switch c := cmd.(type) {
	case Play:
		m.playing = true
	case Pause:
		m.playing = false
	case Seek:
		m.schedule = nil
		m.hasPending = false
		m.effects = m.effects[:0]
		m.playbackTime = math.Max(c.Time, 0)
		m.seekMusic()
		m.playing = false
	case SetVolume:
		m.volume = c.Volume
	case SetSoundEffectVolume:
		m.effectVolume = c.Volume
	case SetSoundEffectSchedules:
		m.schedule = c.Schedule
		m.hasPending = false
	case installMusic:
		if c.generation < m.generation {
			return
		}
		m.generation = c.generation
		m.music = c.source
		m.seekMusic()
	}
}

func (m *mixer) seekMusic() {
	if nil == m.music {
		return
	}
	if err := m.music.Seek(m.playbackTime); nil != err {
		m.log.Warn("unable to seek music", zap.Float64("time", m.playbackTime), zap.Error(err))
	}
}

// due returns the next scheduled click at or before end, if any.
func (m *mixer) due(end float64) (SoundEffect, bool) {
	if !m.hasPending {
		if nil == m.schedule {
			return SoundEffect{}, false
		}
		next, ok := m.schedule.Next()
		if !ok {
			m.schedule = nil
			return SoundEffect{}, false
		}
		m.pending, m.hasPending = next, true
	}
	if m.pending.Time > end {
		return SoundEffect{}, false
	}
	m.hasPending = false
	return m.pending, true
}

func (m *mixer) publish(info CallbackInfo) {
	if !m.playing {
		m.state.publish(PlaybackState{})
		return
	}
	m.state.publish(PlaybackState{
		Playing:   true,
		Reference: m.clock.Now().Add(info.Playback.Sub(info.Callback)),
		Time:      m.playbackTime,
	})
}

// process is the real-time callback. It must not block: the queue is only
// tried, and the work is bounded by the buffer size and the clicks in it.
func (m *mixer) process(out []float32, info CallbackInfo) error {
	cmds, disconnected := m.queue.drain(m.commands[:0])
	if disconnected {
		return ErrDisconnected
	}
	for i, cmd := range cmds {
		m.apply(cmd)
		cmds[i] = nil
	}
	m.commands = cmds[:0]

	m.publish(info)

	channels := m.config.Channels
	rate := float64(m.config.SampleRate)
	frames := len(out) / channels
	end := m.playbackTime
	if m.playing {
		end += float64(len(out)) / rate / float64(channels)
	}

	if m.playing {
		for {
			e, ok := m.due(end)
			if !ok {
				break
			}
			delay := int(math.Round((e.Time - m.playbackTime) * rate))
			m.effects = append(m.effects, newEffect(e.Frequency, m.effectVolume, delay, m.config.SampleRate))
		}
	}

	live := m.effects[:0]
	for _, e := range m.effects {
		if !e.exhausted() {
			live = append(live, e)
		}
	}
	m.effects = live

	if len(m.frames) < frames {
		m.frames = make([][2]float64, frames)
	}
	music := m.frames[:frames]
	n := 0
	if m.playing && nil != m.music {
		n = m.music.Stream(music)
	}
	for i := n; i < frames; i++ {
		music[i] = [2]float64{}
	}

	for i := 0; i < frames; i++ {
		sfx := 0.0
		for j := range m.effects {
			sfx += m.effects[j].next()
		}
		frame := music[i]
		for c := 0; c < channels; c++ {
			var v float64
			switch channels {
			case 1:
				v = (frame[0] + frame[1]) / 2
			default:
				v = frame[c%2]
			}
			v = v*m.volume + sfx
			out[i*channels+c] = float32(math.Max(-maxAmplitude, math.Min(maxAmplitude, v)))
		}
	}

	m.playbackTime = end
	return nil
}
