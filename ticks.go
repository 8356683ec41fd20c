package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/gosuri/uilive"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"git.lost.host/meutraa/karaoke/internal/audio"
	"git.lost.host/meutraa/karaoke/internal/beat"
	"git.lost.host/meutraa/karaoke/internal/config"
	"git.lost.host/meutraa/karaoke/internal/editor"
	"git.lost.host/meutraa/karaoke/internal/parser"
	"git.lost.host/meutraa/karaoke/internal/song"
	"git.lost.host/meutraa/karaoke/internal/store"
	"git.lost.host/meutraa/karaoke/internal/timing"
)

const (
	followPeriod = 50 * time.Millisecond
	// seconds of music to keep playing after the last listed tick
	followTail = 1.0
)

func collectTicks(s *song.Song, from beat.Position, count int) []timing.Tick {
	it := s.Ticks(from)
	ticks := make([]timing.Tick, count)
	for i := range ticks {
		ticks[i] = it.Next()
	}
	return ticks
}

// writeTicks lists ticks one per line. The tick at index current, if any, is
// marked.
func writeTicks(w io.Writer, s *song.Song, ticks []timing.Tick, current int) {
	for i, tick := range ticks {
		index, start, _ := s.MeasureAt(tick.Beat)
		within := beat.PositionFromRat(tick.Beat.Diff(start).Rat())
		mark, accent := " ", "○"
		if i == current {
			mark = "▶"
		}
		if tick.Downbeat {
			accent = "●"
		}
		fmt.Fprintf(w, "%v %4d:%-8v %-10v %v %v\n",
			mark, index, beat.Format(within), beat.Format(tick.Beat), editor.FormatTime(tick.Time), accent)
	}
}

func runTicks(settings config.Settings, log *zap.Logger) error {
	st := &store.DefaultStore{}
	if err := st.Init(*config.Database); nil != err {
		return err
	}
	defer st.Deinit()

	s, _, err := loadSong(&parser.DefaultParser{}, st, config.Chart, log)
	if nil != err {
		return err
	}
	from, err := beat.ParsePosition(*config.From)
	if nil != err {
		return fmt.Errorf("--from: %w", err)
	}
	if *config.Count < 1 {
		return fmt.Errorf("--count must be positive")
	}
	ticks := collectTicks(s, from, *config.Count)

	fd := os.Stdout.Fd()
	if !*config.Follow {
		writeTicks(os.Stdout, s, ticks, -1)
		return nil
	}
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		log.Warn("not following ticks, stdout is not a terminal")
		writeTicks(os.Stdout, s, ticks, -1)
		return nil
	}
	return followTicks(settings, s, from, ticks, log)
}

// followTicks plays the music from the first tick and redraws the list with
// the tick last heard marked.
func followTicks(settings config.Settings, s *song.Song, from beat.Position, ticks []timing.Tick, log *zap.Logger) error {
	engine, err := audio.Open(
		audio.WithHost(audio.NewOtoHost(settings.StreamConfigs()...)),
		audio.WithLogger(log),
	)
	if nil != err {
		return err
	}
	defer engine.Close()

	e := editor.New(s, engine.CommandSender(), engine, log)
	e.MusicVolume = settings.MusicVolume
	e.MetronomeVolume = settings.MetronomeVolume
	e.AccentFrequency = settings.AccentFrequency
	e.BeatFrequency = settings.BeatFrequency
	e.SetCursor(from)
	if err := e.SendVolumes(); nil != err {
		return err
	}
	if err := e.LoadMusic(); nil != err {
		return err
	}
	if err := e.TogglePlay(); nil != err {
		return err
	}

	w := uilive.New()
	w.Start()
	defer w.Stop()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt)
	defer signal.Stop(signals)

	ticker := time.NewTicker(followPeriod)
	defer ticker.Stop()

	last := ticks[len(ticks)-1].Time
	for {
		select {
		case <-engine.Done():
			return audio.ErrDisconnected
		case <-signals:
			return nil
		case <-ticker.C:
		}

		t, ok := engine.PlaybackPosition()
		if !ok {
			continue
		}
		current := -1
		for i, tick := range ticks {
			if tick.Time > t {
				break
			}
			current = i
		}
		writeTicks(w, s, ticks, current)
		w.Flush()
		if t > last+followTail {
			return nil
		}
	}
}
