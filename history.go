package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"git.lost.host/meutraa/karaoke/internal/beat"
	"git.lost.host/meutraa/karaoke/internal/config"
	"git.lost.host/meutraa/karaoke/internal/parser"
	"git.lost.host/meutraa/karaoke/internal/store"
)

const savedLayout = "2006-01-02 15:04:05"

var errNoMusic = errors.New("chart has no music to look timings up by")

// writeHistory lists revisions oldest first, one per line.
func writeHistory(w io.Writer, revisions []store.Revision) {
	for i, r := range revisions {
		fmt.Fprintf(w, "%3d  %v  offset %-8v ♩ %-7v %d tempos  %d measures\n",
			i+1,
			r.Saved.Local().Format(savedLayout),
			r.Song.Offset,
			formatBPM(r.Song.Tempo(beat.Zero())),
			r.Song.Tempos.Len(),
			r.Song.Measures.Len(),
		)
	}
}

func runHistory(log *zap.Logger) error {
	st := &store.DefaultStore{}
	if err := st.Init(*config.Database); nil != err {
		return err
	}
	defer st.Deinit()

	_, key, err := loadSong(&parser.DefaultParser{}, st, config.Chart, log)
	if nil != err {
		return err
	}
	if key == "" {
		return errNoMusic
	}
	revisions, err := st.History(key)
	if nil != err {
		return err
	}
	if len(revisions) == 0 {
		log.Info("no saved timing", zap.String("chart", config.Chart))
		return nil
	}
	writeHistory(os.Stdout, revisions)
	return nil
}
