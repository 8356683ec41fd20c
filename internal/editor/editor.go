package editor

import (
	"fmt"
	"math"
	"math/big"

	"go.uber.org/zap"

	"git.lost.host/meutraa/karaoke/internal/audio"
	"git.lost.host/meutraa/karaoke/internal/beat"
	"git.lost.host/meutraa/karaoke/internal/detect"
	"git.lost.host/meutraa/karaoke/internal/song"
)

const (
	DefaultMusicVolume     = 0.4
	DefaultMetronomeVolume = 0.4
)

type CommandSender interface {
	Send(cmd audio.Command) error
}

type Positioner interface {
	PlaybackPosition() (float64, bool)
}

// Playback is where the music is, both in seconds and in beats.
type Playback struct {
	Time float64
	Beat beat.Position
}

// deltas are the cursor steps, largest first.
var deltas = []beat.Length{
	beat.NewLength(1, 1),
	beat.NewLength(1, 2),
	beat.NewLength(1, 3),
	beat.NewLength(1, 4),
	beat.NewLength(1, 6),
	beat.NewLength(1, 8),
}

// Editor is the control side of an editing session. It is not safe for
// concurrent use; it lives on the input goroutine.
type Editor struct {
	Song *song.Song

	MusicVolume     float64
	MetronomeVolume float64
	AccentFrequency float64
	BeatFrequency   float64

	sender     CommandSender
	positioner Positioner
	log        *zap.Logger

	cursor   beat.Position
	delta    beat.Length
	playing  bool
	playback *Playback
	detector detect.Detector
}

func New(s *song.Song, sender CommandSender, positioner Positioner, log *zap.Logger) *Editor {
	if nil == log {
		log = zap.NewNop()
	}
	return &Editor{
		Song:            s,
		MusicVolume:     DefaultMusicVolume,
		MetronomeVolume: DefaultMetronomeVolume,
		AccentFrequency: AccentFrequency,
		BeatFrequency:   BeatFrequency,
		sender:          sender,
		positioner:      positioner,
		log:             log,
		cursor:          beat.Zero(),
		delta:           beat.One(),
	}
}

func (e *Editor) Cursor() beat.Position {
	return e.cursor
}

func (e *Editor) Delta() beat.Length {
	return e.delta
}

// SetCursor moves the cursor, stopping at beat 0.
func (e *Editor) SetCursor(pos beat.Position) {
	if pos.Sign() < 0 {
		pos = beat.Zero()
	}
	e.cursor = pos
}

func (e *Editor) Left() {
	e.SetCursor(e.cursor.Sub(e.delta))
}

func (e *Editor) Right() {
	e.SetCursor(e.cursor.Add(e.delta))
}

// Coarser steps to the next larger cursor step.
func (e *Editor) Coarser() {
	next := deltas[0]
	for _, d := range deltas {
		if d.Cmp(e.delta) <= 0 {
			break
		}
		next = d
	}
	e.delta = next
}

// Finer steps to the next smaller cursor step.
func (e *Editor) Finer() {
	next := deltas[len(deltas)-1]
	for i := len(deltas) - 1; i >= 0; i-- {
		if deltas[i].Cmp(e.delta) >= 0 {
			break
		}
		next = deltas[i]
	}
	e.delta = next
}

// TempoAtCursor returns the governing tempo and whether a breakpoint sits
// exactly on the cursor.
func (e *Editor) TempoAtCursor() (bpm float64, exists bool) {
	p, ok := e.Song.Tempos.At(e.cursor)
	return e.Song.Tempo(e.cursor), ok && p.Beat.Equal(e.cursor)
}

func (e *Editor) MeasureLengthAtCursor() (length beat.Length, exists bool) {
	p, ok := e.Song.Measures.At(e.cursor)
	return e.Song.MeasureLength(e.cursor), ok && p.Beat.Equal(e.cursor)
}

// SetTempo sets the tempo from the cursor on. nil removes the breakpoint.
func (e *Editor) SetTempo(bpm *float64) error {
	if nil == bpm {
		e.Song.Tempos.Remove(e.cursor)
		return nil
	}
	return e.Song.Tempos.Set(e.cursor, *bpm)
}

// SetMeasureLength sets the measure length from the cursor on. nil removes
// the breakpoint.
func (e *Editor) SetMeasureLength(length *beat.Length) error {
	if nil == length {
		e.Song.Measures.Remove(e.cursor)
		return nil
	}
	return e.Song.Measures.Set(e.cursor, *length)
}

func (e *Editor) Playing() bool {
	return e.playing
}

// Playback returns the last polled playback position.
func (e *Editor) Playback() (Playback, bool) {
	if nil == e.playback {
		return Playback{}, false
	}
	return *e.playback, true
}

// DisplayTime is the playback time while playing, otherwise the cursor's.
func (e *Editor) DisplayTime() float64 {
	if p, ok := e.Playback(); ok {
		return p.Time
	}
	return e.Song.BeatToTime(e.cursor)
}

func (e *Editor) LoadMusic() error {
	if e.Song.Music == "" {
		return nil
	}
	return e.sender.Send(audio.LoadMusic{Path: e.Song.Music})
}

// TogglePlay pauses, or starts playback from the cursor with the metronome.
func (e *Editor) TogglePlay() error {
	if e.playing {
		if err := e.sender.Send(audio.Pause{}); nil != err {
			return err
		}
		e.playing = false
		e.playback = nil
		return nil
	}

	t := e.Song.BeatToTime(e.cursor)
	metronome := NewMetronome(e.Song.Ticks(e.cursor), e.AccentFrequency, e.BeatFrequency)
	for _, cmd := range []audio.Command{
		audio.Seek{Time: t},
		audio.SetSoundEffectSchedules{Schedule: metronome},
		audio.Play{},
	} {
		if err := e.sender.Send(cmd); nil != err {
			return fmt.Errorf("unable to start playback: %w", err)
		}
	}
	e.playing = true
	e.log.Debug("playing", zap.Stringer("cursor", e.cursor), zap.Float64("time", t))
	return nil
}

func (e *Editor) SetVolumes(music, metronome float64) error {
	e.MusicVolume = clamp(music)
	e.MetronomeVolume = clamp(metronome)
	return e.SendVolumes()
}

func (e *Editor) SendVolumes() error {
	if err := e.sender.Send(audio.SetVolume{Volume: e.MusicVolume}); nil != err {
		return err
	}
	return e.sender.Send(audio.SetSoundEffectVolume{Volume: e.MetronomeVolume})
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Poll refreshes the playback position. It is meant to be called once per
// frame.
func (e *Editor) Poll() (Playback, bool) {
	if !e.playing {
		return Playback{}, false
	}
	t, ok := e.positioner.PlaybackPosition()
	if !ok {
		return e.Playback()
	}
	r := new(big.Rat).SetFloat64(e.Song.TimeToBeat(t))
	if nil == r {
		return e.Playback()
	}
	e.playback = &Playback{Time: t, Beat: beat.PositionFromRat(r)}
	return *e.playback, true
}

// Tap records a tap at the current playback time. Taps while stopped are
// ignored.
func (e *Editor) Tap() bool {
	t, ok := e.positioner.PlaybackPosition()
	if !ok {
		return false
	}
	e.detector.Tap(t)
	return true
}

func (e *Editor) Detected() (detect.Result, bool) {
	return e.detector.Result()
}

func (e *Editor) ResetTaps() {
	e.detector.Reset()
}

// ApplyDetected sets the tapped tempo at the cursor.
func (e *Editor) ApplyDetected() error {
	r, ok := e.detector.Result()
	if !ok {
		return nil
	}
	bpm := math.Round(r.BPM*100) / 100
	return e.SetTempo(&bpm)
}
