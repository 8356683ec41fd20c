package render

import (
	"time"

	"git.lost.host/meutraa/karaoke/internal/theme"
)

type Renderer interface {
	Init() error
	Deinit() error
	Size() (columns, rows int)
	AddDecoration(col, row uint16, content string, frames int)
	RenderLoop(framePeriod time.Duration, render func(now time.Time) bool)
	Fill(row, column uint16, message string)
	FillColor(row, column uint16, color theme.Color, message string)
	Clear()
}
