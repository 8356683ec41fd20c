package editor

import (
	"fmt"
	"math"
	"math/big"
	"strconv"

	"git.lost.host/meutraa/karaoke/internal/beat"
)

// FormatTime renders seconds as m:ss.mmm, rounded to the millisecond.
func FormatTime(t float64) string {
	sign := ""
	if t < 0 {
		sign, t = "-", -t
	}
	millis := uint64(math.Floor((t + 0.0005) * 1000))
	return fmt.Sprintf("%v%d:%02d.%03d", sign, millis/60000, millis%60000/1000, millis%1000)
}

// Label is the measure index and the beat within it, e.g. "3:1+1/2". While
// playing only whole beats are shown.
func (e *Editor) Label() string {
	pos := e.cursor
	playback, playing := e.Playback()
	if playing {
		pos = playback.Beat
	}
	if pos.Sign() < 0 {
		return "-:-"
	}
	index, start, _ := e.Song.MeasureAt(pos)
	within := beat.PositionFromRat(pos.Diff(start).Rat())
	if playing {
		return strconv.Itoa(index) + ":" + within.Trunc().String()
	}
	return strconv.Itoa(index) + ":" + beat.Format(within)
}

// NoteName describes the cursor step as a note value, 1/4 beat being a 16th.
func (e *Editor) NoteName() string {
	n := new(big.Rat).Quo(big.NewRat(4, 1), e.delta.Rat())
	return n.RatString() + "th"
}
