package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/eiannone/keyboard"
	"go.uber.org/zap"

	"git.lost.host/meutraa/karaoke/internal/audio"
	"git.lost.host/meutraa/karaoke/internal/beat"
	"git.lost.host/meutraa/karaoke/internal/config"
	"git.lost.host/meutraa/karaoke/internal/editor"
	"git.lost.host/meutraa/karaoke/internal/parser"
	"git.lost.host/meutraa/karaoke/internal/render"
	"git.lost.host/meutraa/karaoke/internal/store"
	"git.lost.host/meutraa/karaoke/internal/theme"
	"git.lost.host/meutraa/karaoke/internal/timing"
)

const (
	headerRows   = 4
	footerRows   = 3
	gutterWidth  = 6
	volumeStep   = 0.05
	messageFrame = 90
)

var titleColor = theme.Color{R: 236, G: 236, B: 236}

// prompt collects a line of input for an edit.
type prompt struct {
	label  string
	input  string
	commit func(string) error
}

// Program is the terminal editor.
type Program struct {
	Parser   parser.Parser
	Store    store.Store
	Theme    theme.Theme
	Renderer render.Renderer

	log    *zap.Logger
	engine *audio.Engine
	editor *editor.Editor
	key    string

	prompt        *prompt
	columns, rows int
}

func (p *Program) Init(chart string, settings config.Settings) error {
	// Ensure our Default implementations are used as interfaces
	p.Parser = &parser.DefaultParser{}
	p.Store = &store.DefaultStore{}
	p.Theme = &theme.DefaultTheme{}
	p.Renderer = render.NewRenderer()

	if err := p.Store.Init(*config.Database); nil != err {
		return err
	}

	s, key, err := loadSong(p.Parser, p.Store, chart, p.log)
	if nil != err {
		return err
	}
	p.key = key

	p.engine, err = audio.Open(
		audio.WithHost(audio.NewOtoHost(settings.StreamConfigs()...)),
		audio.WithLogger(p.log),
	)
	if nil != err {
		return err
	}

	p.editor = editor.New(s, p.engine.CommandSender(), p.engine, p.log)
	p.editor.MusicVolume = settings.MusicVolume
	p.editor.MetronomeVolume = settings.MetronomeVolume
	p.editor.AccentFrequency = settings.AccentFrequency
	p.editor.BeatFrequency = settings.BeatFrequency
	if err := p.editor.SendVolumes(); nil != err {
		return err
	}
	if err := p.editor.LoadMusic(); nil != err {
		return err
	}

	p.columns, p.rows = p.Renderer.Size()
	return nil
}

func (p *Program) Deinit() {
	if nil != p.engine {
		p.engine.Close()
	}
	if nil != p.Store {
		p.Store.Deinit()
	}
}

func (p *Program) message(format string, args ...interface{}) {
	p.Renderer.AddDecoration(2, uint16(p.rows), fmt.Sprintf(format, args...), messageFrame)
}

func (p *Program) save() {
	if p.key == "" {
		p.message("no music to save the timing against")
		return
	}
	if err := p.Store.Save(p.key, p.editor.Song); nil != err {
		p.log.Error("unable to save", zap.Error(err))
		p.message("unable to save: %v", err)
		return
	}
	p.message("saved")
}

func (p *Program) ask(label, initial string, commit func(string) error) {
	p.prompt = &prompt{label: label, input: initial, commit: commit}
}

// Update handles one key. It returns false when the editor should close.
func (p *Program) Update(ev keyboard.KeyEvent) bool {
	if nil != p.prompt {
		p.updatePrompt(ev)
		return true
	}

	e := p.editor
	var err error
	switch ev.Key {
	case keyboard.KeyEsc, keyboard.KeyCtrlC:
		return false
	case keyboard.KeyArrowLeft:
		e.Left()
	case keyboard.KeyArrowRight:
		e.Right()
	case keyboard.KeyArrowUp:
		e.Coarser()
	case keyboard.KeyArrowDown:
		e.Finer()
	case keyboard.KeyHome:
		e.SetCursor(beat.Zero())
	case keyboard.KeySpace:
		err = e.TogglePlay()
	}

	switch ev.Rune {
	case 'q':
		return false
	case 'b':
		bpm, _ := e.TempoAtCursor()
		p.ask("tempo", strconv.FormatFloat(bpm, 'f', -1, 64), func(s string) error {
			v, err := strconv.ParseFloat(s, 64)
			if nil != err {
				return err
			}
			return e.SetTempo(&v)
		})
	case 'B':
		err = e.SetTempo(nil)
	case 'm':
		length, _ := e.MeasureLengthAtCursor()
		p.ask("measure length", length.String(), func(s string) error {
			l, err := beat.ParseLength(s)
			if nil != err {
				return err
			}
			return e.SetMeasureLength(&l)
		})
	case 'M':
		err = e.SetMeasureLength(nil)
	case 'o':
		p.ask("offset", strconv.FormatFloat(e.Song.Offset, 'f', -1, 64), func(s string) error {
			v, err := strconv.ParseFloat(s, 64)
			if nil != err {
				return err
			}
			e.Song.Offset = v
			return nil
		})
	case '/':
		e.Tap()
	case 't':
		err = e.ApplyDetected()
	case 'r':
		e.ResetTaps()
	case '+', '=':
		err = e.SetVolumes(e.MusicVolume+volumeStep, e.MetronomeVolume)
	case '-':
		err = e.SetVolumes(e.MusicVolume-volumeStep, e.MetronomeVolume)
	case ']':
		err = e.SetVolumes(e.MusicVolume, e.MetronomeVolume+volumeStep)
	case '[':
		err = e.SetVolumes(e.MusicVolume, e.MetronomeVolume-volumeStep)
	case 's':
		p.save()
	}
	if nil != err {
		p.log.Warn("edit failed", zap.Error(err))
		p.message("%v", err)
	}
	return true
}

func (p *Program) updatePrompt(ev keyboard.KeyEvent) {
	switch ev.Key {
	case keyboard.KeyEsc:
		p.prompt = nil
	case keyboard.KeyEnter:
		if err := p.prompt.commit(strings.TrimSpace(p.prompt.input)); nil != err {
			p.message("%v", err)
		}
		p.prompt = nil
	case keyboard.KeyBackspace, keyboard.KeyBackspace2:
		if n := len(p.prompt.input); n > 0 {
			p.prompt.input = p.prompt.input[:n-1]
		}
	default:
		if ev.Rune != 0 {
			p.prompt.input += string(ev.Rune)
		}
	}
}

func (p *Program) Render(now time.Time) {
	e := p.editor
	e.Poll()
	p.columns, p.rows = p.Renderer.Size()
	p.Renderer.Clear()

	s := e.Song
	p.Renderer.FillColor(1, 2, titleColor, fmt.Sprintf("%v - %v", s.Title, s.Artist))

	bpm, _ := e.TempoAtCursor()
	length, _ := e.MeasureLengthAtCursor()
	p.Renderer.Fill(2, 2, fmt.Sprintf("%-10v %-6v %v   ♩ %v   ‖ %v   offset %v",
		e.Label(), e.NoteName(), editor.FormatTime(e.DisplayTime()), bpm, length, s.Offset))
	p.Renderer.Fill(3, 2, fmt.Sprintf("music %3.0f%%   metronome %3.0f%%",
		e.MusicVolume*100, e.MetronomeVolume*100))

	p.renderGrid()

	if r, ok := e.Detected(); ok {
		p.Renderer.Fill(uint16(p.rows-2), 2, fmt.Sprintf("tapped %.2f BPM, offset %.3f s, R² %.4f", r.BPM, r.Offset, r.R2))
	}
	if nil != p.prompt {
		p.Renderer.Fill(uint16(p.rows-1), 2, fmt.Sprintf("%v: %v█", p.prompt.label, p.prompt.input))
	} else {
		p.Renderer.Fill(uint16(p.rows-1), 2, "space play  ←→ move  ↑↓ step  b/B tempo  m/M measure  o offset  / tap  t apply  s save  q quit")
	}
}

// renderGrid draws one measure per row around the cursor, or the playhead
// while playing.
func (p *Program) renderGrid() {
	e := p.editor
	s := e.Song
	focus := e.Cursor()
	playback, playing := e.Playback()
	if playing && playback.Beat.Sign() >= 0 {
		focus = playback.Beat
	}

	gridRows := p.rows - headerRows - footerRows
	if gridRows < 1 {
		return
	}
	index, _, _ := s.MeasureAt(focus)
	first := index - gridRows/2
	if first < 0 {
		first = 0
	}

	delta := e.Delta()
	cursor := e.Cursor()
	tempos := s.Tempos.Points()

	measures := timing.Measures(s.Measures)
	for i := 0; i < first; i++ {
		measures.Next()
	}
	for row := 0; row < gridRows; row++ {
		start, end := measures.Next()
		y := uint16(headerRows + row + 1)
		p.Renderer.Fill(y, 1, fmt.Sprintf("%4d ", first+row))

		x := gutterWidth
		for pos := start; pos.Less(end) && x < p.columns-12; pos = pos.Add(delta) {
			next := pos.Add(delta)
			if !next.Less(end) {
				next = end
			}
			denom := int(pos.Rat().Denom().Int64())
			cell := p.Theme.RenderCell(denom, pos.Equal(start))
			if playing && !playback.Beat.Less(pos) && playback.Beat.Less(next) {
				cell = p.Theme.RenderPlayhead()
			} else if !cursor.Less(pos) && cursor.Less(next) {
				cell = p.Theme.RenderCursor(int(delta.Rat().Denom().Int64()))
			}
			p.Renderer.Fill(y, uint16(x), cell)
			x++
		}

		markers := []string{}
		for _, t := range tempos {
			if !t.Beat.Less(start) && t.Beat.Less(end) {
				markers = append(markers, p.Theme.RenderMarker(theme.TempoMarker)+formatBPM(t.BPM))
			}
		}
		if l, ok := s.Measures.At(start); ok && l.Beat.Equal(start) {
			markers = append(markers, p.Theme.RenderMarker(theme.MeasureMarker)+l.Length.String())
		}
		if len(markers) > 0 {
			p.Renderer.Fill(y, uint16(x+1), strings.Join(markers, " "))
		}
	}
}

func formatBPM(bpm float64) string {
	if bpm == math.Trunc(bpm) {
		return strconv.FormatFloat(bpm, 'f', 0, 64)
	}
	return strconv.FormatFloat(bpm, 'f', 2, 64)
}

func runEdit(settings config.Settings) error {
	p := &Program{log: newLogger(*config.Verbose, "karaoke.log")}
	defer p.log.Sync()

	defer p.Deinit()
	if err := p.Init(config.Chart, settings); nil != err {
		return err
	}

	keys, err := keyboard.GetKeys(128)
	if nil != err {
		return fmt.Errorf("unable to open keyboard: %w", err)
	}
	defer func() {
		if err := keyboard.Close(); nil != err {
			p.log.Warn("unable to close keyboard", zap.Error(err))
		}
	}()

	// Clear the screen and hide the cursor
	if err := p.Renderer.Init(); nil != err {
		return err
	}
	defer p.Renderer.Deinit()

	p.Renderer.RenderLoop(*config.FramePeriod, func(now time.Time) bool {
		for i := len(keys); i > 0; i-- {
			ev := <-keys
			if nil != ev.Err {
				p.log.Error("keyboard", zap.Error(ev.Err))
				return false
			}
			if !p.Update(ev) {
				return false
			}
		}
		select {
		case <-p.engine.Done():
			return false
		default:
		}
		p.Render(now)
		return true
	})
	return nil
}
