package timing

import (
	"encoding/json"
	"math"
	"testing"

	"git.lost.host/meutraa/karaoke/internal/beat"
)

func whole(n int64) beat.Position {
	return beat.NewPosition(n, 1)
}

func referenceTempos(t testing.TB) *TempoMap {
	tempos, err := NewTempoMap(
		TempoPoint{Beat: whole(8), BPM: 240},
		TempoPoint{Beat: whole(16), BPM: 120},
		TempoPoint{Beat: beat.NewPosition(41, 2), BPM: 240},
	)
	if nil != err {
		t.Fatal(err)
	}
	return tempos
}

// Expected wall time of beats 0..22 with a 2.5s lead-in.
var referenceTable = []float64{
	2.5, 2.75, 3.0, 3.25, 3.5, 3.75, 4.0, 4.25,
	4.5, 4.75, 5.0, 5.25, 5.5, 5.75, 6.0, 6.25,
	6.5, 7.0, 7.5, 8.0, 8.5, 8.875, 9.125,
}

func TestBeatToTimeReference(t *testing.T) {
	tempos := referenceTempos(t)
	for i, expected := range referenceTable {
		got := BeatToTime(2.5, tempos, whole(int64(i)))
		if math.Abs(got-expected) > 1e-9 {
			t.Log("beat    ", i)
			t.Log("got     ", got)
			t.Log("expected", expected)
			t.Fail()
		}
	}
}

func TestEmptyTempoMap(t *testing.T) {
	tempos, _ := NewTempoMap()
	if got := BeatToTime(1, tempos, whole(4)); got != 3 {
		t.Log("got", got)
		t.Fail()
	}
	if got := TimeToBeat(1, tempos, 3); got != 4 {
		t.Log("got", got)
		t.Fail()
	}
	if got := BeatToTime(0, nil, whole(2)); got != 1 {
		t.Log("nil map", got)
		t.Fail()
	}
}

func TestInverse(t *testing.T) {
	tempos := referenceTempos(t)
	_ = tempos.Set(beat.NewPosition(100, 3), 77.7)
	for n := int64(-7); n < 300; n++ {
		p := beat.NewPosition(n, 7)
		back := TimeToBeat(2.5, tempos, BeatToTime(2.5, tempos, p))
		if math.Abs(back-p.Float64()) > 1e-9 {
			t.Log("beat", p, "back", back)
			t.Fail()
		}
	}
}

func TestMonotonic(t *testing.T) {
	tempos := referenceTempos(t)
	_ = tempos.Set(whole(30), 33)
	_ = tempos.Set(beat.NewPosition(61, 2), 300)
	last := math.Inf(-1)
	for n := int64(0); n < 400; n++ {
		tm := BeatToTime(0.3, tempos, beat.NewPosition(n, 8))
		if tm < last {
			t.Log("beat", n, "/8 went back in time", last, tm)
			t.Fail()
		}
		last = tm
	}
	last = math.Inf(-1)
	for tm := 0.0; tm < 40; tm += 0.01 {
		b := TimeToBeat(0.3, tempos, tm)
		if b < last {
			t.Log("time", tm, "went back in beats", last, b)
			t.Fail()
		}
		last = b
	}
}

func boundaries(measures *MeasureMap, n int) []string {
	it := Measures(measures)
	out := []string{}
	for i := 0; i < n; i++ {
		start, end := it.Next()
		if i == 0 {
			out = append(out, start.String())
		}
		out = append(out, end.String())
	}
	return out
}

func measureMap(t *testing.T, points ...MeasurePoint) *MeasureMap {
	m, err := NewMeasureMap(points...)
	if nil != err {
		t.Fatal(err)
	}
	return m
}

var measureTests = []struct {
	name     string
	points   []MeasurePoint
	expected []string
}{
	{
		name:     "empty",
		expected: []string{"0", "4", "8", "12", "16", "20", "24", "28", "32", "36", "40"},
	},
	{
		name:     "three from sixteen",
		points:   []MeasurePoint{{Beat: whole(16), Length: beat.NewLength(3, 1)}},
		expected: []string{"0", "4", "8", "12", "16", "19", "22", "25", "28", "31", "34"},
	},
	{
		name:     "three from zero",
		points:   []MeasurePoint{{Beat: whole(0), Length: beat.NewLength(3, 1)}},
		expected: []string{"0", "3", "6", "9", "12", "15", "18", "21", "24", "27", "30"},
	},
	{
		name:     "truncated",
		points:   []MeasurePoint{{Beat: whole(6), Length: beat.NewLength(5, 2)}},
		expected: []string{"0", "4", "6", "17/2", "11", "27/2", "16", "37/2", "21", "47/2", "26"},
	},
	{
		name: "two keys in one measure",
		points: []MeasurePoint{
			{Beat: whole(4), Length: beat.NewLength(8, 1)},
			{Beat: whole(6), Length: beat.NewLength(2, 1)},
		},
		expected: []string{"0", "4", "6", "8", "10", "12", "14", "16", "18", "20", "22"},
	},
}

func TestMeasures(t *testing.T) {
	for _, test := range measureTests {
		got := boundaries(measureMap(t, test.points...), 10)
		if len(got) != len(test.expected) {
			t.Log(test.name, got)
			t.Fail()
			continue
		}
		for i := range got {
			if got[i] != test.expected[i] {
				t.Log(test.name)
				t.Log("got     ", got)
				t.Log("expected", test.expected)
				t.Fail()
				break
			}
		}
	}
}

func TestMeasuresRestart(t *testing.T) {
	m := measureMap(t, MeasurePoint{Beat: whole(16), Length: beat.NewLength(3, 1)})
	a := boundaries(m, 8)
	b := boundaries(m, 8)
	for i := range a {
		if a[i] != b[i] {
			t.Fail()
		}
	}
}

func TestBeatTimesFromStart(t *testing.T) {
	tempos := referenceTempos(t)
	m := measureMap(t, MeasurePoint{Beat: whole(16), Length: beat.NewLength(3, 1)})
	it := BeatTimes(2.5, m, tempos, beat.Zero())
	downbeats := map[int64]bool{0: true, 4: true, 8: true, 12: true, 16: true, 19: true, 22: true}
	for i := int64(0); i <= 22; i++ {
		tick := it.Next()
		if !tick.Beat.Equal(whole(i)) {
			t.Log("expected beat", i, "got", tick.Beat)
			t.Fail()
		}
		if tick.Downbeat != downbeats[i] {
			t.Log("beat", i, "downbeat", tick.Downbeat)
			t.Fail()
		}
		if math.Abs(tick.Time-referenceTable[i]) > 1e-9 {
			t.Log("beat", i, "time", tick.Time, "expected", referenceTable[i])
			t.Fail()
		}
	}
}

func TestBeatTimesMidScore(t *testing.T) {
	tempos := referenceTempos(t)
	_ = tempos.Set(beat.NewPosition(23, 2), 90)
	m := measureMap(t,
		MeasurePoint{Beat: whole(6), Length: beat.NewLength(3, 1)},
		MeasurePoint{Beat: beat.NewPosition(41, 2), Length: beat.NewLength(7, 2)},
	)

	full := BeatTimes(2.5, m, tempos, beat.Zero())
	tail := []Tick{}
	for len(tail) < 40 {
		tick := full.Next()
		if tick.Beat.Less(whole(11)) {
			continue
		}
		tail = append(tail, tick)
	}

	for _, start := range []beat.Position{whole(11), beat.NewPosition(21, 2)} {
		mid := BeatTimes(2.5, m, tempos, start)
		for i, expected := range tail {
			got := mid.Next()
			if !got.Beat.Equal(expected.Beat) || got.Downbeat != expected.Downbeat || got.Time != expected.Time {
				t.Log("start   ", start, "index", i)
				t.Log("got     ", got)
				t.Log("expected", expected)
				t.Fail()
				break
			}
		}
	}
}

func TestBeatTimesMatchBeatToTime(t *testing.T) {
	tempos := referenceTempos(t)
	m := measureMap(t, MeasurePoint{Beat: beat.NewPosition(41, 2), Length: beat.NewLength(3, 1)})
	it := BeatTimes(2.5, m, tempos, beat.Zero())
	for i := 0; i < 60; i++ {
		tick := it.Next()
		if expected := BeatToTime(2.5, tempos, tick.Beat); tick.Time != expected {
			t.Log(tick.Beat, tick.Time, expected)
			t.Fail()
		}
	}
}

// A tempo change half way through a beat splits that beat's duration
// between both tempos.
func TestBeatTimesTempoChangeMidBeat(t *testing.T) {
	tempos, _ := NewTempoMap(
		TempoPoint{Beat: whole(0), BPM: 120},
		TempoPoint{Beat: beat.NewPosition(5, 2), BPM: 60},
	)
	it := BeatTimes(0, nil, tempos, beat.Zero())
	expected := []float64{0, 0.5, 1, 1.75, 2.75}
	for i, e := range expected {
		tick := it.Next()
		if math.Abs(tick.Time-e) > 1e-12 {
			t.Log("tick", i, tick.Time, e)
			t.Fail()
		}
	}
}

func TestBeatTimesTruncatedMeasure(t *testing.T) {
	m := measureMap(t, MeasurePoint{Beat: beat.NewPosition(5, 2), Length: beat.NewLength(2, 1)})
	it := BeatTimes(0, m, nil, beat.Zero())
	expected := []string{"0", "1", "2", "5/2", "7/2", "9/2", "11/2"}
	downbeat := []bool{true, false, false, true, false, true, false}
	for i := range expected {
		tick := it.Next()
		if tick.Beat.String() != expected[i] || tick.Downbeat != downbeat[i] {
			t.Log(i, tick.Beat, tick.Downbeat)
			t.Fail()
		}
	}
}

func TestTempoMapEdits(t *testing.T) {
	tempos, _ := NewTempoMap()
	if err := tempos.Set(whole(4), 0); nil == err {
		t.Log("zero tempo accepted")
		t.Fail()
	}
	_ = tempos.Set(whole(8), 100)
	_ = tempos.Set(whole(4), 90)
	_ = tempos.Set(whole(8), 110)
	points := tempos.Points()
	if len(points) != 2 || !points[0].Beat.Equal(whole(4)) || points[1].BPM != 110 {
		t.Log(points)
		t.Fail()
	}
	if p, ok := tempos.At(whole(7)); !ok || p.BPM != 90 {
		t.Log("at 7", p, ok)
		t.Fail()
	}
	if _, ok := tempos.At(whole(3)); ok {
		t.Fail()
	}
	if !tempos.Remove(whole(4)) || tempos.Remove(whole(4)) || tempos.Len() != 1 {
		t.Fail()
	}
}

func TestMapsJSON(t *testing.T) {
	tempos := referenceTempos(t)
	m := measureMap(t, MeasurePoint{Beat: beat.NewPosition(41, 2), Length: beat.NewLength(7, 2)})
	data, err := json.Marshal(struct {
		Tempos   *TempoMap
		Measures *MeasureMap
	}{tempos, m})
	if nil != err {
		t.Fatal(err)
	}
	expected := `{"Tempos":{"16/1":120,"41/2":240,"8/1":240},"Measures":{"41/2":"7/2"}}`
	if string(data) != expected {
		t.Log("got     ", string(data))
		t.Log("expected", expected)
		t.Fail()
	}

	var back struct {
		Tempos   *TempoMap
		Measures *MeasureMap
	}
	if err := json.Unmarshal(data, &back); nil != err {
		t.Fatal(err)
	}
	if back.Tempos.Len() != 3 || back.Measures.Len() != 1 {
		t.Fail()
	}
	if BeatToTime(2.5, back.Tempos, whole(22)) != BeatToTime(2.5, tempos, whole(22)) {
		t.Fail()
	}
}

func BenchmarkBeatTimes(b *testing.B) {
	tempos := referenceTempos(b)
	for n := 0; n < b.N; n++ {
		it := BeatTimes(2.5, nil, tempos, beat.Zero())
		for i := 0; i < 256; i++ {
			it.Next()
		}
	}
}
