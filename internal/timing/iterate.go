package timing

import (
	"git.lost.host/meutraa/karaoke/internal/beat"
)

// MeasureIterator yields consecutive measures forever. The score has no end,
// so callers bound consumption themselves. To restart, build a new one.
type MeasureIterator struct {
	points []MeasurePoint
	next   int
	length beat.Length
	start  beat.Position
}

func Measures(measures *MeasureMap) *MeasureIterator {
	return &MeasureIterator{
		points: measures.Points(),
		length: beat.Four(),
		start:  beat.Zero(),
	}
}

// Next returns the start and end of the next measure.
//
// A breakpoint at the measure start resizes that measure. A breakpoint
// strictly inside it ends the measure early and its length applies from there.
func (it *MeasureIterator) Next() (start, end beat.Position) {
	// Keys behind the cursor only update the running length.
	for it.next < len(it.points) && it.points[it.next].Beat.Less(it.start) {
		it.length = it.points[it.next].Length
		it.next++
	}
	if it.next < len(it.points) && it.points[it.next].Beat.Equal(it.start) {
		it.length = it.points[it.next].Length
		it.next++
	}
	end = it.start.Add(it.length)
	if it.next < len(it.points) && it.points[it.next].Beat.Less(end) {
		end = it.points[it.next].Beat
		it.length = it.points[it.next].Length
		it.next++
	}
	start = it.start
	it.start = end
	return start, end
}

// Tick is one metronome click.
type Tick struct {
	Beat     beat.Position
	Downbeat bool    // first beat of a measure
	Time     float64 // seconds
}

// BeatTimeIterator yields a tick on every measure start and on every whole
// beat after it within the measure.
type BeatTimeIterator struct {
	measures     *MeasureIterator
	mStart, mEnd beat.Position
	next         beat.Position
	segs         []segment
	seg          int
}

// BeatTimes starts at the first tick at or after start.
func BeatTimes(offset float64, measures *MeasureMap, tempos *TempoMap, start beat.Position) *BeatTimeIterator {
	it := &BeatTimeIterator{
		measures: Measures(measures),
		segs:     segments(offset, tempos),
	}
	it.mStart, it.mEnd = it.measures.Next()
	for !start.Less(it.mEnd) {
		it.mStart, it.mEnd = it.measures.Next()
	}
	if start.Less(it.mStart) {
		it.next = it.mStart
	} else {
		it.next = it.mStart.Add(start.Diff(it.mStart).Ceil())
	}
	if !it.next.Less(it.mEnd) {
		it.advanceMeasure()
	}
	return it
}

func (it *BeatTimeIterator) advanceMeasure() {
	it.next = it.mEnd
	it.mStart, it.mEnd = it.measures.Next()
}

func (it *BeatTimeIterator) Next() Tick {
	pos := it.next
	for it.seg+1 < len(it.segs) && !pos.Less(it.segs[it.seg+1].beat) {
		it.seg++
	}
	tick := Tick{
		Beat:     pos,
		Downbeat: pos.Equal(it.mStart),
		Time:     it.segs[it.seg].timeOf(pos),
	}
	it.next = pos.Add(beat.One())
	if !it.next.Less(it.mEnd) {
		it.advanceMeasure()
	}
	return tick
}
