package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"git.lost.host/meutraa/karaoke/internal/beat"
	"git.lost.host/meutraa/karaoke/internal/parser"
	"git.lost.host/meutraa/karaoke/internal/store"
	"git.lost.host/meutraa/karaoke/internal/testdata"
)

func TestWriteTicks(t *testing.T) {
	s, err := testdata.GetSong()
	if nil != err {
		t.Fatal(err)
	}
	ticks := collectTicks(s, beat.NewPosition(19, 1), 4)

	out := &bytes.Buffer{}
	writeTicks(out, s, ticks, 1)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	expected := [][]string{
		{"4:3", "19", "0:08.000", "○"},
		{"▶", "5:0", "20", "0:08.500", "●"},
		{"6:0", "20+1/2", "0:08.750", "●"},
		{"6:1", "21+1/2", "0:09.000", "○"},
	}
	if len(lines) != len(expected) {
		t.Fatal(out.String())
	}
	for i, line := range lines {
		fields := strings.Fields(line)
		if strings.Join(fields, " ") != strings.Join(expected[i], " ") {
			t.Log("out     ", fields)
			t.Log("expected", expected[i])
			t.Fail()
		}
	}
}

func TestLoadSongPrefersSavedTiming(t *testing.T) {
	dir := t.TempDir()
	chart := filepath.Join(dir, "song.sm")
	if err := os.WriteFile(chart, []byte(testdata.SM), 0o644); nil != err {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "reference.ogg"), []byte("not really vorbis"), 0o644); nil != err {
		t.Fatal(err)
	}

	st := &store.DefaultStore{}
	if err := st.Init(filepath.Join(dir, "timings.db")); nil != err {
		t.Fatal(err)
	}
	defer st.Deinit()
	psr := &parser.DefaultParser{}

	s, key, err := loadSong(psr, st, chart, zap.NewNop())
	if nil != err {
		t.Fatal(err)
	}
	if key == "" || s.Tempos.Len() != 4 {
		t.Log("key", key, "tempos", s.Tempos.Points())
		t.Fail()
	}

	s.Tempos.Set(beat.NewPosition(32, 1), 90)
	s.Music = "elsewhere.ogg"
	if err := st.Save(key, s); nil != err {
		t.Fatal(err)
	}

	saved, _, err := loadSong(psr, st, chart, zap.NewNop())
	if nil != err {
		t.Fatal(err)
	}
	if saved.Tempo(beat.NewPosition(40, 1)) != 90 {
		t.Log("saved timing not used", saved.Tempos.Points())
		t.Fail()
	}
	if saved.Music != filepath.Join(dir, "reference.ogg") {
		t.Log("music", saved.Music)
		t.Fail()
	}
}

func TestLoadSongWithoutMusic(t *testing.T) {
	dir := t.TempDir()
	chart := filepath.Join(dir, "song.sm")
	if err := os.WriteFile(chart, []byte(testdata.SM), 0o644); nil != err {
		t.Fatal(err)
	}
	st := &store.DefaultStore{}
	if err := st.Init(filepath.Join(dir, "timings.db")); nil != err {
		t.Fatal(err)
	}
	defer st.Deinit()

	s, key, err := loadSong(&parser.DefaultParser{}, st, chart, zap.NewNop())
	if nil != err || nil == s {
		t.Fatal(err)
	}
	if key != "" {
		t.Log("music is missing but got key", key)
		t.Fail()
	}
}

func TestWriteHistory(t *testing.T) {
	s, err := testdata.GetSong()
	if nil != err {
		t.Fatal(err)
	}
	saved := time.Date(2024, 3, 1, 12, 30, 0, 0, time.Local)
	out := &bytes.Buffer{}
	writeHistory(out, []store.Revision{{Sum: "abc", Saved: saved, Song: s}})

	fields := strings.Fields(out.String())
	expected := []string{"1", "2024-03-01", "12:30:00", "offset", "2.5", "♩", "240", "4", "tempos", "2", "measures"}
	if strings.Join(fields, " ") != strings.Join(expected, " ") {
		t.Log("out     ", fields)
		t.Log("expected", expected)
		t.Fail()
	}
}
