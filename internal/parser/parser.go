package parser

import "git.lost.host/meutraa/karaoke/internal/song"

type Parser interface {
	Parse(file string) (*song.Song, error)
}
