package main

import (
	"os"
	"os/signal"

	"go.uber.org/zap"

	"git.lost.host/meutraa/karaoke/internal/audio"
	"git.lost.host/meutraa/karaoke/internal/config"
	"git.lost.host/meutraa/karaoke/internal/parser"
	"git.lost.host/meutraa/karaoke/internal/remote"
	"git.lost.host/meutraa/karaoke/internal/store"
)

func runServe(settings config.Settings, log *zap.Logger) error {
	st := &store.DefaultStore{}
	if err := st.Init(*config.Database); nil != err {
		return err
	}
	defer st.Deinit()

	s, _, err := loadSong(&parser.DefaultParser{}, st, config.Chart, log)
	if nil != err {
		return err
	}

	engine, err := audio.Open(
		audio.WithHost(audio.NewOtoHost(settings.StreamConfigs()...)),
		audio.WithLogger(log),
	)
	if nil != err {
		return err
	}
	defer engine.Close()

	sender := engine.CommandSender()
	for _, cmd := range []audio.Command{
		audio.SetVolume{Volume: settings.MusicVolume},
		audio.SetSoundEffectVolume{Volume: settings.MetronomeVolume},
	} {
		if err := sender.Send(cmd); nil != err {
			return err
		}
	}
	if s.Music != "" {
		if err := sender.Send(audio.LoadMusic{Path: s.Music}); nil != err {
			return err
		}
	}

	srv := remote.New(s, func() remote.Producer { return sender.Clone() }, engine,
		remote.WithLogger(log),
		remote.WithFrequencies(settings.AccentFrequency, settings.BeatFrequency),
	)
	errs := make(chan error, 1)
	go func() {
		errs <- srv.Run(*config.Addr)
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt)
	defer signal.Stop(signals)

	select {
	case err := <-errs:
		return err
	case <-engine.Done():
		return audio.ErrDisconnected
	case <-signals:
		log.Info("interrupted")
		return nil
	}
}
