package testdata

import (
	"encoding/json"

	"git.lost.host/meutraa/karaoke/internal/song"
)

// SM is a StepMania header whose timing matches GetSong.
const SM = `#TITLE:Reference;
#ARTIST:Nobody;
#MUSIC:reference.ogg;
#OFFSET:-2.500;
#BPMS:0.000=240.000,8.000=240.000
,16.000=120.000,20.500=240.000;
#TIMESIGNATURES:0.000=4=4,20.500=7=8;
#NOTES:
     dance-single:
     :
     Beginner:
     1:
     0,0,0,0,0:
0000
0000
0000
0000
;
`

const data = `{
	"Title": "Reference",
	"Artist": "Nobody",
	"Music": "reference.ogg",
	"Offset": 2.5,
	"Tempos": {"0/1": 240, "8/1": 240, "16/1": 120, "41/2": 240},
	"Measures": {"0/1": "4/1", "41/2": "7/2"}
}`

func GetSong() (*song.Song, error) {
	s := song.New()
	if err := json.Unmarshal([]byte(data), s); nil != err {
		return nil, err
	}
	return s, nil
}
