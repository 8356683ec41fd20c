package audio

import (
	"math"
	"time"
)

// EffectDuration is the length of one metronome click.
const EffectDuration = 50 * time.Millisecond

// effect is a sine burst that starts after delay frames. It produces one
// value per frame; the mixer copies it to every channel.
type effect struct {
	delay  int
	length int
	i      int
	step   float64
	amp    float64
}

func newEffect(frequency, amp float64, delay, sampleRate int) effect {
	if delay < 0 {
		delay = 0
	}
	return effect{
		delay:  delay,
		length: int(int64(sampleRate) * int64(EffectDuration) / int64(time.Second)),
		step:   2 * math.Pi * frequency / float64(sampleRate),
		amp:    amp,
	}
}

func (e *effect) next() float64 {
	if e.delay > 0 {
		e.delay--
		return 0
	}
	if e.i >= e.length {
		return 0
	}
	v := e.amp * math.Sin(e.step*float64(e.i))
	e.i++
	return v
}

func (e *effect) exhausted() bool {
	return e.delay == 0 && e.i >= e.length
}
