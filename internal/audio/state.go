package audio

import (
	"sync/atomic"
	"time"
)

// PlaybackState is what the callback last knew about playback. When Playing,
// Time seconds of music are heard at the Reference instant.
type PlaybackState struct {
	Playing   bool
	Reference time.Time
	Time      float64
}

// Position extrapolates the playback time at now. now may precede the
// reference instant, which gives a small negative correction.
func (s PlaybackState) Position(now time.Time) (float64, bool) {
	if !s.Playing {
		return 0, false
	}
	return s.Time + now.Sub(s.Reference).Seconds(), true
}

// stateSlot holds the latest published state. The callback overwrites it
// without waiting and readers always see the most recent value.
type stateSlot struct {
	p atomic.Pointer[PlaybackState]
}

func (s *stateSlot) publish(state PlaybackState) {
	s.p.Store(&state)
}

func (s *stateSlot) load() PlaybackState {
	if p := s.p.Load(); nil != p {
		return *p
	}
	return PlaybackState{}
}

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}
