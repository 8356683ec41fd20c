package remote

import (
	"math"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"git.lost.host/meutraa/karaoke/internal/audio"
	"git.lost.host/meutraa/karaoke/internal/editor"
	"git.lost.host/meutraa/karaoke/internal/song"
)

// Producer is one sender on the engine's command queue.
type Producer interface {
	Send(cmd audio.Command) error
	Close()
}

type Positioner interface {
	PlaybackPosition() (float64, bool)
}

type Option func(*Server)

func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		s.log = l
	}
}

// WithFrequencies sets the metronome's downbeat and beat click pitches.
func WithFrequencies(accent, beat float64) Option {
	return func(s *Server) {
		s.accent, s.beat = accent, beat
	}
}

// Server exposes playback control over HTTP. Every request gets its own
// producer, closed when the request is done.
type Server struct {
	song       *song.Song
	producer   func() Producer
	positioner Positioner
	log        *zap.Logger
	router     *gin.Engine

	accent, beat float64

	// armed is set once a metronome has been sent to the engine
	mu    sync.Mutex
	armed bool
}

func New(s *song.Song, producer func() Producer, positioner Positioner, opts ...Option) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	srv := &Server{
		song:       s,
		producer:   producer,
		positioner: positioner,
		log:        zap.NewNop(),
		router:     r,
		accent:     editor.AccentFrequency,
		beat:       editor.BeatFrequency,
	}
	for _, opt := range opts {
		opt(srv)
	}
	r.GET("/api/position", srv.getPosition)
	r.POST("/api/play", srv.play)
	r.POST("/api/pause", srv.pause)
	r.POST("/api/seek", srv.seek)
	r.POST("/api/volume", srv.volume)
	r.POST("/api/load", srv.load)
	return srv
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Run(addr string) error {
	s.log.Info("remote control listening", zap.String("addr", addr))
	return s.router.Run(addr)
}

func (s *Server) send(c *gin.Context, cmds ...audio.Command) bool {
	p := s.producer()
	defer p.Close()
	for _, cmd := range cmds {
		if err := p.Send(cmd); nil != err {
			s.log.Warn("unable to send command", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return false
		}
	}
	c.Status(http.StatusAccepted)
	return true
}

// metronome clicks from the first tick sounding at or after t.
func (s *Server) metronome(t float64) audio.Command {
	return audio.SetSoundEffectSchedules{
		Schedule: editor.NewMetronome(s.song.TicksAt(t), s.accent, s.beat),
	}
}

func (s *Server) getPosition(c *gin.Context) {
	t, ok := s.positioner.PlaybackPosition()
	if !ok {
		c.JSON(http.StatusOK, gin.H{"playing": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"playing": true,
		"time":    t,
		"beat":    s.song.TimeToBeat(t),
		"display": editor.FormatTime(t),
	})
}

// play starts playback. Before any seek the engine sits at 0 with no
// metronome, so the first play arms one from the start.
func (s *Server) play(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.armed {
		s.send(c, audio.Play{})
		return
	}
	s.armed = s.send(c, s.metronome(0), audio.Play{})
}

func (s *Server) pause(c *gin.Context) {
	s.send(c, audio.Pause{})
}

// seek moves to time and arms the metronome from the next tick. Playback is
// left paused.
func (s *Server) seek(c *gin.Context) {
	t, err := strconv.ParseFloat(c.Query("time"), 64)
	if nil != err || math.IsNaN(t) || math.IsInf(t, 0) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "time must be a number of seconds"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.armed = s.send(c, audio.Seek{Time: t}, s.metronome(math.Max(t, 0)))
}

func (s *Server) volume(c *gin.Context) {
	cmds := []audio.Command{}
	for _, param := range []struct {
		key string
		cmd func(float64) audio.Command
	}{
		{"music", func(v float64) audio.Command { return audio.SetVolume{Volume: v} }},
		{"metronome", func(v float64) audio.Command { return audio.SetSoundEffectVolume{Volume: v} }},
	} {
		key := param.key
		value, ok := c.GetQuery(key)
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(value, 64)
		if nil != err || v < 0 || v > 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": key + " must be between 0 and 1"})
			return
		}
		cmds = append(cmds, param.cmd(v))
	}
	if len(cmds) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no volume given"})
		return
	}
	s.send(c, cmds...)
}

func (s *Server) load(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing path"})
		return
	}
	s.send(c, audio.LoadMusic{Path: path})
}
