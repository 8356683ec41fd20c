package theme

import (
	"fmt"
)

type Color struct {
	R, G, B uint8
}

type DefaultTheme struct {
}

func (t *DefaultTheme) RenderCell(denom int, downbeat bool) string {
	if downbeat {
		return paint(downbeatColor, downbeatSym)
	}
	if denom == 1 {
		return paint(beatColor, beatSym)
	}
	return paint(getNoteColor(denom), subSym)
}

func (t *DefaultTheme) RenderCursor(denom int) string {
	return paint(getNoteColor(denom), cursorSym)
}

func (t *DefaultTheme) RenderPlayhead() string {
	return paint(playheadColor, playheadSym)
}

func (t *DefaultTheme) RenderMarker(kind Marker) string {
	switch kind {
	case TempoMarker:
		return paint(tempoColor, "♩")
	case MeasureMarker:
		return paint(measureColor, "‖")
	}
	return " "
}

func paint(c Color, s string) string {
	return fmt.Sprintf("\033[38;2;%v;%v;%vm%v\033[0m", c.R, c.G, c.B, s)
}

const (
	downbeatSym = "┃"
	beatSym     = "│"
	subSym      = "·"
	cursorSym   = "▼"
	playheadSym = "█"
)

var (
	downbeatColor = Color{236, 236, 236}
	beatColor     = Color{140, 140, 140}
	playheadColor = Color{0, 236, 128}
	tempoColor    = Color{236, 195, 0}
	measureColor  = Color{0, 118, 236}
	noteColors    = map[int]Color{
		1:  {236, 30, 0},    // 1/4 red
		2:  {0, 118, 236},   // 1/8 blue
		3:  {106, 0, 236},   // 1/12 purple
		4:  {236, 195, 0},   // 1/16 yellow
		6:  {236, 0, 106},   // 1/24 pink
		8:  {236, 128, 0},   // 1/32 orange
		12: {173, 236, 236}, // 1/48 light blue
		16: {0, 236, 128},   // 1/64 green
		-1: {255, 255, 255}, // other white
	}
)

// getNoteColor picks the color for a beat fraction by its denominator, so a
// 1/4 beat step is a 16th note.
func getNoteColor(d int) Color {
	col, ok := noteColors[d]
	if !ok {
		return noteColors[-1]
	}
	return col
}
