package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"git.lost.host/meutraa/karaoke/internal/song"
)

var ErrNotFound = errors.New("no saved timing")

type DefaultStore struct {
	db *sql.DB
}

func (s *DefaultStore) Init(path string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}

	initStatement := `
	create table if not exists timings
	  (
		  id integer not null primary key,
		  sum text not null,
		  saved integer not null,
		  song blob
	  );
	create index if not exists timings_sum on timings(sum);
	`
	if _, err = db.Exec(initStatement); nil != err {
		db.Close()
		return fmt.Errorf("unable to create timings table: %w", err)
	}

	s.db = db
	return nil
}

func (s *DefaultStore) Deinit() {
	if nil != s.db {
		s.db.Close()
	}
}

// Sum identifies a music file by its contents so timings follow the audio
// when it is renamed.
func Sum(path string) (string, error) {
	f, err := os.Open(path)
	if nil != err {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); nil != err {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(h.Sum(nil)), nil
}

func (s *DefaultStore) Save(key string, sg *song.Song) error {
	data, err := json.Marshal(sg)
	if nil != err {
		return fmt.Errorf("unable to marshal timing: %w", err)
	}
	_, err = s.db.Exec("insert into timings(sum, saved, song) values(?, ?, ?)", key, time.Now().UnixNano(), data)
	if nil != err {
		return fmt.Errorf("unable to save timing: %w", err)
	}
	return nil
}

func (s *DefaultStore) Load(key string) (*song.Song, error) {
	var data []byte
	err := s.db.QueryRow("select song from timings where sum = ? order by id desc limit 1", key).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	} else if nil != err {
		return nil, fmt.Errorf("unable to load timing: %w", err)
	}
	return decode(data)
}

func (s *DefaultStore) History(key string) ([]Revision, error) {
	revisions := []Revision{}
	rows, err := s.db.Query("select sum, saved, song from timings where sum = ? order by id", key)
	if nil != err {
		return nil, fmt.Errorf("unable to load timings: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var sum string
		var saved int64
		var data []byte
		if err := rows.Scan(&sum, &saved, &data); nil != err {
			return nil, err
		}
		sg, err := decode(data)
		if nil != err {
			return nil, err
		}
		revisions = append(revisions, Revision{
			Sum:   sum,
			Saved: time.Unix(0, saved),
			Song:  sg,
		})
	}
	return revisions, rows.Err()
}

func decode(data []byte) (*song.Song, error) {
	sg := song.New()
	if err := json.Unmarshal(data, sg); nil != err {
		return nil, fmt.Errorf("unable to unmarshal timing: %w", err)
	}
	return sg, nil
}
