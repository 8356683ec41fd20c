package timing

import (
	"sort"

	"git.lost.host/meutraa/karaoke/internal/beat"
)

// segment is a stretch of constant tempo. Its start time is derived from
// the exact beat length of every preceding segment, so the time of any beat
// only carries the rounding of one float conversion per segment.
type segment struct {
	beat beat.Position
	time float64
	bpm  float64
}

func (s *segment) timeOf(pos beat.Position) float64 {
	return s.time + pos.Diff(s.beat).Float64()*60/s.bpm
}

func (s *segment) beatOf(t float64) float64 {
	return s.beat.Float64() + (t-s.time)*s.bpm/60
}

// segments lays the tempo map out in wall time. The first breakpoint's tempo
// also covers the beats before it; an empty map plays at DefaultTempo.
func segments(offset float64, tempos *TempoMap) []segment {
	points := tempos.Points()
	if len(points) == 0 {
		return []segment{{beat: beat.Zero(), time: offset, bpm: DefaultTempo}}
	}
	segs := make([]segment, 1, len(points)+1)
	segs[0] = segment{beat: beat.Zero(), time: offset, bpm: points[0].BPM}
	for _, p := range points {
		last := &segs[len(segs)-1]
		if !last.beat.Less(p.Beat) {
			last.bpm = p.BPM
			continue
		}
		segs = append(segs, segment{
			beat: p.Beat,
			time: last.timeOf(p.Beat),
			bpm:  p.BPM,
		})
	}
	return segs
}

// BeatToTime returns the wall clock time in seconds at which pos is played,
// offset being the lead-in before beat zero.
func BeatToTime(offset float64, tempos *TempoMap, pos beat.Position) float64 {
	segs := segments(offset, tempos)
	i := sort.Search(len(segs), func(i int) bool {
		return pos.Less(segs[i].beat)
	})
	if i > 0 {
		i--
	}
	return segs[i].timeOf(pos)
}

// TimeToBeat inverts BeatToTime. The result is a float since wall time is.
func TimeToBeat(offset float64, tempos *TempoMap, t float64) float64 {
	segs := segments(offset, tempos)
	i := sort.Search(len(segs), func(i int) bool {
		return t < segs[i].time
	})
	if i > 0 {
		i--
	}
	return segs[i].beatOf(t)
}
