package timing

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"git.lost.host/meutraa/karaoke/internal/beat"
)

// DefaultTempo is used when a TempoMap has no breakpoints.
const DefaultTempo = 120.0

var (
	ErrInvalidTempo         = errors.New("tempo must be a positive finite number")
	ErrInvalidMeasureLength = errors.New("measure length must be positive")
)

type TempoPoint struct {
	Beat beat.Position
	BPM  float64
}

// TempoMap is a piecewise constant tempo over beat positions.
// Points are kept sorted by beat with unique keys.
type TempoMap struct {
	points []TempoPoint
}

func NewTempoMap(points ...TempoPoint) (*TempoMap, error) {
	m := &TempoMap{}
	for _, p := range points {
		if err := m.Set(p.Beat, p.BPM); nil != err {
			return nil, err
		}
	}
	return m, nil
}

func (m *TempoMap) search(pos beat.Position) int {
	return sort.Search(len(m.points), func(i int) bool {
		return !m.points[i].Beat.Less(pos)
	})
}

// Set inserts or replaces the breakpoint at pos.
func (m *TempoMap) Set(pos beat.Position, bpm float64) error {
	if math.IsNaN(bpm) || math.IsInf(bpm, 0) || bpm <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidTempo, bpm)
	}
	i := m.search(pos)
	if i < len(m.points) && m.points[i].Beat.Equal(pos) {
		m.points[i].BPM = bpm
		return nil
	}
	m.points = append(m.points, TempoPoint{})
	copy(m.points[i+1:], m.points[i:])
	m.points[i] = TempoPoint{Beat: pos, BPM: bpm}
	return nil
}

// Remove deletes the breakpoint at pos, reporting whether one existed.
func (m *TempoMap) Remove(pos beat.Position) bool {
	i := m.search(pos)
	if i < len(m.points) && m.points[i].Beat.Equal(pos) {
		m.points = append(m.points[:i], m.points[i+1:]...)
		return true
	}
	return false
}

// At returns the last breakpoint at or before pos.
func (m *TempoMap) At(pos beat.Position) (TempoPoint, bool) {
	if nil == m {
		return TempoPoint{}, false
	}
	i := sort.Search(len(m.points), func(i int) bool {
		return pos.Less(m.points[i].Beat)
	})
	if i == 0 {
		return TempoPoint{}, false
	}
	return m.points[i-1], true
}

// Points returns the breakpoints in beat order. The slice is a copy.
func (m *TempoMap) Points() []TempoPoint {
	if nil == m {
		return nil
	}
	return append([]TempoPoint(nil), m.points...)
}

func (m *TempoMap) Len() int {
	if nil == m {
		return 0
	}
	return len(m.points)
}

func (m *TempoMap) Clone() *TempoMap {
	return &TempoMap{points: m.Points()}
}

type MeasurePoint struct {
	Beat   beat.Position
	Length beat.Length
}

// MeasureMap is a piecewise constant measure length over beat positions.
// A measure boundary exists at every key.
type MeasureMap struct {
	points []MeasurePoint
}

func NewMeasureMap(points ...MeasurePoint) (*MeasureMap, error) {
	m := &MeasureMap{}
	for _, p := range points {
		if err := m.Set(p.Beat, p.Length); nil != err {
			return nil, err
		}
	}
	return m, nil
}

func (m *MeasureMap) search(pos beat.Position) int {
	return sort.Search(len(m.points), func(i int) bool {
		return !m.points[i].Beat.Less(pos)
	})
}

func (m *MeasureMap) Set(pos beat.Position, length beat.Length) error {
	if length.Sign() <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidMeasureLength, length)
	}
	i := m.search(pos)
	if i < len(m.points) && m.points[i].Beat.Equal(pos) {
		m.points[i].Length = length
		return nil
	}
	m.points = append(m.points, MeasurePoint{})
	copy(m.points[i+1:], m.points[i:])
	m.points[i] = MeasurePoint{Beat: pos, Length: length}
	return nil
}

func (m *MeasureMap) Remove(pos beat.Position) bool {
	i := m.search(pos)
	if i < len(m.points) && m.points[i].Beat.Equal(pos) {
		m.points = append(m.points[:i], m.points[i+1:]...)
		return true
	}
	return false
}

func (m *MeasureMap) At(pos beat.Position) (MeasurePoint, bool) {
	if nil == m {
		return MeasurePoint{}, false
	}
	i := sort.Search(len(m.points), func(i int) bool {
		return pos.Less(m.points[i].Beat)
	})
	if i == 0 {
		return MeasurePoint{}, false
	}
	return m.points[i-1], true
}

func (m *MeasureMap) Points() []MeasurePoint {
	if nil == m {
		return nil
	}
	return append([]MeasurePoint(nil), m.points...)
}

func (m *MeasureMap) Len() int {
	if nil == m {
		return 0
	}
	return len(m.points)
}

func (m *MeasureMap) Clone() *MeasureMap {
	return &MeasureMap{points: m.Points()}
}
