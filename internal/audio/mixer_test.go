package audio

import (
	"math"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestMixer(config StreamConfig) (*mixer, *Sender) {
	q := &commandQueue{}
	sender := newSender(q, nil)
	clock := &fakeClock{now: time.Unix(0, 0)}
	return newMixer(config, q, &stateSlot{}, clock, zap.NewNop()), sender
}

func run(t *testing.T, m *mixer, buffers int) []float32 {
	out := make([]float32, m.config.BufferFrames*m.config.Channels)
	for i := 0; i < buffers; i++ {
		if err := m.process(out, CallbackInfo{}); nil != err {
			t.Fatal(err)
		}
	}
	return out
}

// countingSchedule counts the entries the mixer has taken from it.
type countingSchedule struct {
	SliceSchedule
	taken int
}

func (s *countingSchedule) Next() (SoundEffect, bool) {
	e, ok := s.SliceSchedule.Next()
	if ok {
		s.taken++
	}
	return e, ok
}

// fired is the number of clicks started, not counting one taken and held
// until its time comes.
func (s *countingSchedule) fired(m *mixer) int {
	if m.hasPending {
		return s.taken - 1
	}
	return s.taken
}

func TestEachClickFiresOnce(t *testing.T) {
	m, sender := newTestMixer(testConfig)
	schedule := &countingSchedule{SliceSchedule: SliceSchedule{{Time: 0.05, Frequency: 440}, {Time: 0.15, Frequency: 440}, {Time: 0.25, Frequency: 440}}}
	sender.Send(SetSoundEffectSchedules{Schedule: schedule})
	sender.Send(Play{})

	run(t, m, 1)
	if n := schedule.fired(m); n != 1 {
		t.Log("fired in the first buffer", n)
		t.Fail()
	}
	run(t, m, 4)
	if n := schedule.fired(m); n != 3 {
		t.Log("fired", n)
		t.Fail()
	}
	if math.Abs(m.playbackTime-0.5) > 1e-9 {
		t.Log("time", m.playbackTime)
		t.Fail()
	}
}

func TestClickWaitsForPlayback(t *testing.T) {
	m, sender := newTestMixer(testConfig)
	schedule := &countingSchedule{SliceSchedule: SliceSchedule{{Time: 0, Frequency: 440}}}
	sender.Send(SetSoundEffectSchedules{Schedule: schedule})

	run(t, m, 3)
	if schedule.taken != 0 || m.playbackTime != 0 {
		t.Log("paused mixer took", schedule.taken, m.playbackTime)
		t.Fail()
	}

	sender.Send(Play{})
	run(t, m, 1)
	if n := schedule.fired(m); n != 1 {
		t.Log("fired", n)
		t.Fail()
	}
}

// A 250Hz click at 1000Hz advances a quarter turn per frame, so the burst is
// 0, 1, 0, -1 starting at the frame the click is due.
func TestClickAlignment(t *testing.T) {
	m, sender := newTestMixer(testConfig)
	schedule := SliceSchedule{{Time: 0.010, Frequency: 250}}
	sender.Send(SetSoundEffectSchedules{Schedule: &schedule})
	sender.Send(Play{})

	out := run(t, m, 1)
	for i := 0; i < 10; i++ {
		if out[i] != 0 {
			t.Fatal("sample", i, "before the click", out[i])
		}
	}
	expected := []float64{0, 1, 0, -1}
	for i, e := range expected {
		if math.Abs(float64(out[10+i])-e) > 1e-6 {
			t.Log("sample", 10+i, "got", out[10+i], "expected", e)
			t.Fail()
		}
	}
}

func TestEffectVolume(t *testing.T) {
	m, sender := newTestMixer(testConfig)
	schedule := SliceSchedule{{Time: 0, Frequency: 250}}
	sender.Send(SetSoundEffectVolume{Volume: 0.4})
	sender.Send(SetSoundEffectSchedules{Schedule: &schedule})
	sender.Send(Play{})

	out := run(t, m, 1)
	if math.Abs(float64(out[1])-0.4) > 1e-6 {
		t.Log("got", out[1])
		t.Fail()
	}
}

func TestClickSpansBuffers(t *testing.T) {
	m, sender := newTestMixer(testConfig)
	// 50ms at 1000Hz is 50 frames; starting at frame 80 it runs into the
	// next buffer.
	schedule := SliceSchedule{{Time: 0.080, Frequency: 250}}
	sender.Send(SetSoundEffectSchedules{Schedule: &schedule})
	sender.Send(Play{})

	run(t, m, 1)
	if len(m.effects) != 1 {
		t.Fatal("effects", len(m.effects))
	}
	out := run(t, m, 1)
	// the burst resumes at its 20th sample
	if math.Abs(float64(out[1])-1) > 1e-6 {
		t.Log("got", out[1])
		t.Fail()
	}
	run(t, m, 1)
	if len(m.effects) != 0 {
		t.Log("exhausted click kept", len(m.effects))
		t.Fail()
	}
}

func TestOutputIsClamped(t *testing.T) {
	m, sender := newTestMixer(testConfig)
	schedule := SliceSchedule{}
	for i := 0; i < 50; i++ {
		schedule = append(schedule, SoundEffect{Time: 0, Frequency: 250})
	}
	sender.Send(SetSoundEffectSchedules{Schedule: &schedule})
	sender.Send(Play{})

	out := run(t, m, 1)
	peak := 0.0
	for _, v := range out {
		a := math.Abs(float64(v))
		if a > maxAmplitude {
			t.Fatal("sample out of range", v)
		}
		peak = math.Max(peak, a)
	}
	if peak != maxAmplitude {
		t.Log("peak", peak)
		t.Fail()
	}
}

func TestSeekDropsClicks(t *testing.T) {
	m, sender := newTestMixer(testConfig)
	schedule := SliceSchedule{{Time: 0.05, Frequency: 250}, {Time: 0.5, Frequency: 250}}
	sender.Send(SetSoundEffectSchedules{Schedule: &schedule})
	sender.Send(Play{})
	run(t, m, 1)
	if len(m.effects) != 1 {
		t.Fatal("effects", len(m.effects))
	}

	sender.Send(Seek{Time: 3})
	sender.Send(Play{})
	out := run(t, m, 1)
	if len(m.effects) != 0 || nil != m.schedule || m.hasPending {
		t.Log("effects", len(m.effects), "schedule", m.schedule)
		t.Fail()
	}
	for _, v := range out {
		if v != 0 {
			t.Fatal("heard", v)
		}
	}
	if math.Abs(m.playbackTime-3.1) > 1e-9 {
		t.Log("time", m.playbackTime)
		t.Fail()
	}
}

func TestNegativeSeek(t *testing.T) {
	m, sender := newTestMixer(testConfig)
	sender.Send(Seek{Time: -1})
	run(t, m, 1)
	if m.playbackTime != 0 {
		t.Log("time", m.playbackTime)
		t.Fail()
	}
}

func TestStereoMusic(t *testing.T) {
	config := StreamConfig{SampleRate: 1000, Channels: 2, Format: FormatS16, BufferFrames: 10}
	m, sender := newTestMixer(config)
	sender.Send(installMusic{source: &stereoSource{}, generation: 1})
	sender.Send(Play{})

	out := run(t, m, 1)
	for i := 0; i < len(out); i += 2 {
		if out[i] != 0.5 || out[i+1] != -0.5 {
			t.Fatal("frame", i/2, out[i], out[i+1])
		}
	}
}

type stereoSource struct{}

func (stereoSource) Stream(frames [][2]float64) int {
	for i := range frames {
		frames[i] = [2]float64{0.5, -0.5}
	}
	return len(frames)
}

func (stereoSource) Seek(float64) error {
	return nil
}
