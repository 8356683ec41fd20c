package main

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"git.lost.host/meutraa/karaoke/internal/config"
	"git.lost.host/meutraa/karaoke/internal/parser"
	"git.lost.host/meutraa/karaoke/internal/song"
	"git.lost.host/meutraa/karaoke/internal/store"
)

const version = "0.3.0"

func main() {
	cmd, err := config.Parse(version, os.Args[1:])
	if nil != err {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	console := newLogger(*config.Verbose, "stderr")
	defer console.Sync()

	settings, err := config.LoadSettings(*config.SettingsFile)
	if nil != err {
		console.Fatal("unable to load settings", zap.Error(err))
	}

	switch cmd {
	case config.Edit:
		err = runEdit(settings)
	case config.Ticks:
		err = runTicks(settings, console)
	case config.Serve:
		err = runServe(settings, console)
	case config.History:
		err = runHistory(console)
	}
	if nil != err {
		console.Fatal("karaoke stopped", zap.Error(err))
	}
}

// newLogger writes to outputs, which are paths or stdout/stderr.
func newLogger(verbose bool, outputs ...string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.OutputPaths = outputs
	cfg.ErrorOutputPaths = outputs
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := cfg.Build()
	if nil != err {
		return zap.NewNop()
	}
	return logger
}

// loadSong parses the chart and prefers the timing saved for its music, if
// any. key identifies the music in the store and is empty when there is no
// music to identify.
func loadSong(psr parser.Parser, st store.Store, chart string, log *zap.Logger) (s *song.Song, key string, err error) {
	s, err = psr.Parse(chart)
	if nil != err {
		return nil, "", fmt.Errorf("unable to parse %v: %w", chart, err)
	}
	if s.Music == "" {
		log.Warn("chart has no music", zap.String("chart", chart))
		return s, "", nil
	}

	key, err = store.Sum(s.Music)
	if nil != err {
		log.Warn("unable to identify music", zap.String("music", s.Music), zap.Error(err))
		return s, "", nil
	}
	saved, err := st.Load(key)
	if errors.Is(err, store.ErrNotFound) {
		return s, key, nil
	} else if nil != err {
		log.Warn("unable to load saved timing", zap.Error(err))
		return s, key, nil
	}
	log.Info("using saved timing", zap.String("music", s.Music))
	saved.Music = s.Music
	return saved, key, nil
}
