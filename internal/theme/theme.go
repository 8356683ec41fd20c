package theme

type Theme interface {
	// RenderCell draws a grid point whose beat fraction has denominator denom
	RenderCell(denom int, downbeat bool) string
	RenderCursor(denom int) string
	RenderPlayhead() string
	RenderMarker(kind Marker) string
}

type Marker int

const (
	TempoMarker Marker = iota
	MeasureMarker
)
