package store

import (
	"time"

	"git.lost.host/meutraa/karaoke/internal/song"
)

type Store interface {
	Init(path string) error
	Deinit()

	// Save records a new revision of the timing for key
	Save(key string, s *song.Song) error

	// Load returns the most recent revision for key
	Load(key string) (*song.Song, error)

	History(key string) ([]Revision, error)
}

type Revision struct {
	Sum   string
	Saved time.Time
	Song  *song.Song
}
