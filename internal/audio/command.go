package audio

// Command is a request from the control goroutine to the audio callback.
// Commands are applied in the order they were sent, at the start of the next
// callback.
type Command interface {
	command()
}

type Play struct{}

type Pause struct{}

// Seek moves playback to Time seconds and pauses. Pending and sounding
// metronome clicks are discarded.
type Seek struct {
	Time float64
}

// LoadMusic decodes the file at Path off the audio goroutine and swaps it in
// as the music source once ready. A file that cannot be decoded is logged and
// the previous source keeps playing.
type LoadMusic struct {
	Path string
}

type SetVolume struct {
	Volume float64
}

type SetSoundEffectVolume struct {
	Volume float64
}

// SetSoundEffectSchedules replaces the pending schedule. Clicks that are
// already sounding are left alone.
type SetSoundEffectSchedules struct {
	Schedule Schedule
}

// installMusic carries a decoded source into the callback.
type installMusic struct {
	source     Source
	generation uint64
}

func (Play) command()                    {}
func (Pause) command()                   {}
func (Seek) command()                    {}
func (LoadMusic) command()               {}
func (SetVolume) command()               {}
func (SetSoundEffectVolume) command()    {}
func (SetSoundEffectSchedules) command() {}
func (installMusic) command()            {}

// SoundEffect is a click to be played at Time seconds.
type SoundEffect struct {
	Time      float64
	Frequency float64
}

// Schedule is a lazy sequence of clicks ordered by time. The engine takes
// entries in order and never rewinds; ok is false once it is exhausted.
type Schedule interface {
	Next() (effect SoundEffect, ok bool)
}

// SliceSchedule is a finite Schedule.
type SliceSchedule []SoundEffect

func (s *SliceSchedule) Next() (SoundEffect, bool) {
	if len(*s) == 0 {
		return SoundEffect{}, false
	}
	e := (*s)[0]
	*s = (*s)[1:]
	return e, true
}
