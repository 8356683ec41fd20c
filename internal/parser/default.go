package parser

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"git.lost.host/meutraa/karaoke/internal/beat"
	"git.lost.host/meutraa/karaoke/internal/song"
)

var ErrMalformed = errors.New("malformed chart")

// DefaultParser reads the timing headers of StepMania .sm files. Note data is
// ignored.
type DefaultParser struct{}

func (p *DefaultParser) Parse(file string) (*song.Song, error) {
	data, err := os.ReadFile(file)
	if nil != err {
		return nil, err
	}
	return p.ParseString(string(data), filepath.Dir(file))
}

// ParseString parses chart text. The music path is resolved against dir.
func (p *DefaultParser) ParseString(data, dir string) (*song.Song, error) {
	str := strings.ReplaceAll(data, "\r", "")
	meta := strings.Split(str, "#NOTES:")[0]

	s := song.New()
	for _, mdl := range strings.Split("\n"+meta, "\n#") {
		mdl = strings.TrimSpace(mdl)
		key, value, ok := strings.Cut(mdl, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), ";"))

		var err error
		switch strings.ToUpper(key) {
		case "TITLE":
			s.Title = value
		case "ARTIST":
			s.Artist = value
		case "MUSIC":
			if value != "" {
				s.Music = filepath.Join(dir, value)
			}
		case "OFFSET":
			var offs float64
			offs, err = strconv.ParseFloat(value, 64)
			// beat 0 is heard OFFSET seconds before the audio starts
			s.Offset = -offs
		case "BPMS":
			err = p.parseBPMs(s, value)
		case "TIMESIGNATURES":
			err = p.parseTimeSignatures(s, value)
		}
		if nil != err {
			return nil, fmt.Errorf("#%v: %w", key, err)
		}
	}
	return s, nil
}

func (p *DefaultParser) pairs(value string, n int) ([][]string, error) {
	value = strings.ReplaceAll(value, "\n", "")
	out := [][]string{}
	for _, pair := range strings.Split(value, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		as := strings.Split(pair, "=")
		if len(as) != n {
			return nil, fmt.Errorf("%w: %q", ErrMalformed, pair)
		}
		out = append(out, as)
	}
	return out, nil
}

func (p *DefaultParser) parseBPMs(s *song.Song, value string) error {
	pairs, err := p.pairs(value, 2)
	if nil != err {
		return err
	}
	for _, as := range pairs {
		pos, err := beat.ParsePosition(as[0])
		if nil != err {
			return err
		}
		bpm, err := strconv.ParseFloat(strings.TrimSpace(as[1]), 64)
		if nil != err {
			return err
		}
		if err := s.Tempos.Set(pos, bpm); nil != err {
			return err
		}
	}
	return nil
}

// A signature num/den lasts num*4/den quarter note beats.
func (p *DefaultParser) parseTimeSignatures(s *song.Song, value string) error {
	pairs, err := p.pairs(value, 3)
	if nil != err {
		return err
	}
	for _, as := range pairs {
		pos, err := beat.ParsePosition(as[0])
		if nil != err {
			return err
		}
		num, err := strconv.ParseInt(strings.TrimSpace(as[1]), 10, 64)
		if nil != err {
			return err
		}
		den, err := strconv.ParseInt(strings.TrimSpace(as[2]), 10, 64)
		if nil != err {
			return err
		}
		if den <= 0 {
			return fmt.Errorf("%w: time signature %v/%v", ErrMalformed, num, den)
		}
		length := beat.LengthFromRat(big.NewRat(num*4, den))
		if err := s.Measures.Set(pos, length); nil != err {
			return err
		}
	}
	return nil
}
