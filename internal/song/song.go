package song

import (
	"encoding/json"
	"math"

	"git.lost.host/meutraa/karaoke/internal/beat"
	"git.lost.host/meutraa/karaoke/internal/timing"
)

// Song is the timing of one piece of music.
type Song struct {
	Title  string
	Artist string
	Music  string  // path to the audio file
	Offset float64 // seconds of audio before beat 0

	Tempos   *timing.TempoMap
	Measures *timing.MeasureMap
}

func New() *Song {
	return &Song{
		Tempos:   &timing.TempoMap{},
		Measures: &timing.MeasureMap{},
	}
}

// UnmarshalJSON keeps both maps usable when they are missing or null.
func (s *Song) UnmarshalJSON(data []byte) error {
	type plain Song
	if err := json.Unmarshal(data, (*plain)(s)); nil != err {
		return err
	}
	if nil == s.Tempos {
		s.Tempos = &timing.TempoMap{}
	}
	if nil == s.Measures {
		s.Measures = &timing.MeasureMap{}
	}
	return nil
}

func (s *Song) BeatToTime(pos beat.Position) float64 {
	return timing.BeatToTime(s.Offset, s.Tempos, pos)
}

func (s *Song) TimeToBeat(t float64) float64 {
	return timing.TimeToBeat(s.Offset, s.Tempos, t)
}

// Ticks yields metronome ticks from the first grid point at or after start.
func (s *Song) Ticks(start beat.Position) *timing.BeatTimeIterator {
	return timing.BeatTimes(s.Offset, s.Measures, s.Tempos, start)
}

// tickTolerance absorbs the float error of converting a tick's time back to
// a beat.
const tickTolerance = 1e-9

// TicksAt yields metronome ticks from the first one sounding at or after t.
// A tick whose time is t itself is kept even when TimeToBeat(t) lands a hair
// past its beat.
func (s *Song) TicksAt(t float64) *timing.BeatTimeIterator {
	from := math.Floor(s.TimeToBeat(t)) - 1
	if from < 0 || math.IsNaN(from) {
		from = 0
	}
	it := s.Ticks(beat.NewPosition(int64(from), 1))
	tick := it.Next()
	for tick.Time < t-tickTolerance {
		tick = it.Next()
	}
	return s.Ticks(tick.Beat)
}

// MeasureAt returns the index of the measure containing pos, counted from
// zero, along with its bounds. pos must not be negative.
func (s *Song) MeasureAt(pos beat.Position) (index int, start, end beat.Position) {
	it := timing.Measures(s.Measures)
	for {
		start, end = it.Next()
		if pos.Less(end) {
			return index, start, end
		}
		index++
	}
}

// Tempo returns the tempo in effect at pos.
func (s *Song) Tempo(pos beat.Position) float64 {
	if p, ok := s.Tempos.At(pos); ok {
		return p.BPM
	}
	if points := s.Tempos.Points(); len(points) > 0 {
		return points[0].BPM
	}
	return timing.DefaultTempo
}

// MeasureLength returns the measure length in effect at pos.
func (s *Song) MeasureLength(pos beat.Position) beat.Length {
	if p, ok := s.Measures.At(pos); ok {
		return p.Length
	}
	return beat.Four()
}
