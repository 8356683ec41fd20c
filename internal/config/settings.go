package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"git.lost.host/meutraa/karaoke/internal/audio"
)

// Settings tune the audio output and the metronome.
type Settings struct {
	SampleRate int           `yaml:"sample_rate"` // 0 tries the defaults
	Channels   int           `yaml:"channels"`
	Format     string        `yaml:"format"` // u8 or s16
	Buffer     time.Duration `yaml:"buffer"`

	MusicVolume     float64 `yaml:"music_volume"`
	MetronomeVolume float64 `yaml:"metronome_volume"`
	AccentFrequency float64 `yaml:"accent_frequency"`
	BeatFrequency   float64 `yaml:"beat_frequency"`
}

func DefaultSettings() Settings {
	return Settings{
		Channels:        2,
		Format:          "s16",
		Buffer:          20 * time.Millisecond,
		MusicVolume:     0.4,
		MetronomeVolume: 0.4,
		AccentFrequency: 1244.51,
		BeatFrequency:   739.99,
	}
}

// LoadSettings reads path over the defaults. A missing file is not an error.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	} else if nil != err {
		return s, err
	}
	if err := yaml.Unmarshal(data, &s); nil != err {
		return s, fmt.Errorf("unable to read settings %v: %w", path, err)
	}
	return s, s.validate()
}

func (s Settings) validate() error {
	if s.SampleRate < 0 || s.Channels < 1 || s.Channels > 2 || s.Buffer <= 0 {
		return fmt.Errorf("invalid audio settings: %v Hz, %v channels, %v buffer", s.SampleRate, s.Channels, s.Buffer)
	}
	if _, err := s.format(); nil != err {
		return err
	}
	for _, v := range []float64{s.MusicVolume, s.MetronomeVolume} {
		if v < 0 || v > 1 {
			return fmt.Errorf("volume %v is outside [0, 1]", v)
		}
	}
	if s.AccentFrequency <= 0 || s.BeatFrequency <= 0 {
		return errors.New("click frequencies must be positive")
	}
	return nil
}

func (s Settings) format() (audio.SampleFormat, error) {
	switch s.Format {
	case "u8":
		return audio.FormatU8, nil
	case "s16", "":
		return audio.FormatS16, nil
	}
	return 0, fmt.Errorf("unknown sample format %q", s.Format)
}

// StreamConfigs lists the output configurations to try, best first.
func (s Settings) StreamConfigs() []audio.StreamConfig {
	format, err := s.format()
	if nil != err {
		format = audio.FormatS16
	}
	rates := []int{s.SampleRate}
	if s.SampleRate == 0 {
		rates = []int{48000, 44100}
	}
	configs := []audio.StreamConfig{}
	for _, rate := range rates {
		frames := int(int64(rate) * int64(s.Buffer) / int64(time.Second))
		configs = append(configs, audio.StreamConfig{
			SampleRate:   rate,
			Channels:     s.Channels,
			Format:       format,
			BufferFrames: frames,
		})
	}
	return configs
}
