package timing

import (
	"encoding/json"

	"git.lost.host/meutraa/karaoke/internal/beat"
)

// Maps are stored as JSON objects keyed by the beat as "n/d".

func (m *TempoMap) MarshalJSON() ([]byte, error) {
	obj := make(map[string]float64, m.Len())
	for _, p := range m.Points() {
		key, _ := p.Beat.MarshalText()
		obj[string(key)] = p.BPM
	}
	return json.Marshal(obj)
}

func (m *TempoMap) UnmarshalJSON(data []byte) error {
	var obj map[string]float64
	if err := json.Unmarshal(data, &obj); nil != err {
		return err
	}
	m.points = nil
	for key, bpm := range obj {
		pos, err := beat.ParsePosition(key)
		if nil != err {
			return err
		}
		if err := m.Set(pos, bpm); nil != err {
			return err
		}
	}
	return nil
}

func (m *MeasureMap) MarshalJSON() ([]byte, error) {
	obj := make(map[string]beat.Length, m.Len())
	for _, p := range m.Points() {
		key, _ := p.Beat.MarshalText()
		obj[string(key)] = p.Length
	}
	return json.Marshal(obj)
}

func (m *MeasureMap) UnmarshalJSON(data []byte) error {
	var obj map[string]beat.Length
	if err := json.Unmarshal(data, &obj); nil != err {
		return err
	}
	m.points = nil
	for key, length := range obj {
		pos, err := beat.ParsePosition(key)
		if nil != err {
			return err
		}
		if err := m.Set(pos, length); nil != err {
			return err
		}
	}
	return nil
}
