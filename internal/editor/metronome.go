package editor

import (
	"git.lost.host/meutraa/karaoke/internal/audio"
	"git.lost.host/meutraa/karaoke/internal/timing"
)

const (
	AccentFrequency = 1244.51 // D#6, first beat of a measure
	BeatFrequency   = 739.99  // F#5
)

// Metronome turns ticks into clicks. It never runs out.
type Metronome struct {
	ticks  *timing.BeatTimeIterator
	accent float64
	beat   float64
}

func NewMetronome(ticks *timing.BeatTimeIterator, accent, beat float64) *Metronome {
	return &Metronome{ticks: ticks, accent: accent, beat: beat}
}

func (m *Metronome) Next() (audio.SoundEffect, bool) {
	tick := m.ticks.Next()
	frequency := m.beat
	if tick.Downbeat {
		frequency = m.accent
	}
	return audio.SoundEffect{Time: tick.Time, Frequency: frequency}, true
}
