package parser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"git.lost.host/meutraa/karaoke/internal/beat"
	"git.lost.host/meutraa/karaoke/internal/testdata"
)

func TestParseReference(t *testing.T) {
	p := DefaultParser{}
	s, err := p.ParseString(testdata.SM, "")
	if nil != err {
		t.Fatal(err)
	}
	expected, err := testdata.GetSong()
	if nil != err {
		t.Fatal(err)
	}

	if s.Title != expected.Title || s.Artist != expected.Artist || s.Music != expected.Music || s.Offset != expected.Offset {
		t.Log("out     ", s.Title, s.Artist, s.Music, s.Offset)
		t.Log("expected", expected.Title, expected.Artist, expected.Music, expected.Offset)
		t.Fail()
	}

	tempos, expectedTempos := s.Tempos.Points(), expected.Tempos.Points()
	if len(tempos) != len(expectedTempos) {
		t.Fatal("tempos", tempos)
	}
	for i := range tempos {
		if !tempos[i].Beat.Equal(expectedTempos[i].Beat) || tempos[i].BPM != expectedTempos[i].BPM {
			t.Log(i, tempos[i], expectedTempos[i])
			t.Fail()
		}
	}

	length := s.MeasureLength(beat.NewPosition(41, 2))
	if !length.Equal(beat.NewLength(7, 2)) || s.Measures.Len() != 2 {
		t.Log("measures", s.Measures.Points())
		t.Fail()
	}

	for i := 0; i <= 22; i++ {
		pos := beat.NewPosition(int64(i), 1)
		if s.BeatToTime(pos) != expected.BeatToTime(pos) {
			t.Log(i, s.BeatToTime(pos), expected.BeatToTime(pos))
			t.Fail()
		}
	}
}

var malformedTests = map[string]error{
	"#OFFSET:abc;":                     nil,
	"#BPMS:0=120=3;":                   ErrMalformed,
	"#BPMS:0=-120;":                    nil,
	"#BPMS:x=120;":                     beat.ErrInvalidBeat,
	"#TIMESIGNATURES:0=4=0;":           ErrMalformed,
	"#TIMESIGNATURES:0=4;":             ErrMalformed,
	"#TIMESIGNATURES:0.000=4=4,8=0=4;": nil,
}

func TestParseMalformed(t *testing.T) {
	p := DefaultParser{}
	for in, expected := range malformedTests {
		_, err := p.ParseString(in, "")
		if nil == err {
			t.Log(in, "parsed")
			t.Fail()
			continue
		}
		if nil != expected && !errors.Is(err, expected) {
			t.Log(in, err)
			t.Fail()
		}
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "song.sm")
	if err := os.WriteFile(file, []byte(testdata.SM), 0o644); nil != err {
		t.Fatal(err)
	}

	p := DefaultParser{}
	s, err := p.Parse(file)
	if nil != err {
		t.Fatal(err)
	}
	if s.Music != filepath.Join(dir, "reference.ogg") {
		t.Log("music", s.Music)
		t.Fail()
	}

	if _, err := p.Parse(filepath.Join(dir, "missing.sm")); !errors.Is(err, os.ErrNotExist) {
		t.Log(err)
		t.Fail()
	}
}
