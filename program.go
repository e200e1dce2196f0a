package main

import (
	"errors"
	"fmt"
	"log"
	"math"
	"path/filepath"
	"strings"
	"time"

	"git.lost.host/meutraa/hero/internal/audio"
	"git.lost.host/meutraa/hero/internal/clock"
	"git.lost.host/meutraa/hero/internal/config"
	"git.lost.host/meutraa/hero/internal/input"
	"git.lost.host/meutraa/hero/internal/library"
	"git.lost.host/meutraa/hero/internal/parser"
	"git.lost.host/meutraa/hero/internal/render"
	"git.lost.host/meutraa/hero/internal/score"
	"git.lost.host/meutraa/hero/internal/session"
	"git.lost.host/meutraa/hero/internal/theme"
)

const messageTime = 1500 * time.Millisecond

type Screen int

const (
	ScreenSongs Screen = iota
	ScreenCharts
	ScreenConfirmDelete
	ScreenGame
	ScreenResults
)

type message struct {
	text  string
	left  time.Duration
	after func() // Blocks input until it runs
}

type Program struct {
	Config *config.Config
	Parser *parser.DefaultParser
	Scorer score.Scorer
	Theme  theme.Theme
	Keys   *input.KeyMap
	Player string

	time    clock.TimeProvider
	audio   session.Audio
	silent  bool
	session *session.Session

	screen   Screen
	songs    []string
	songIdx  int
	song     string
	charts   []string
	bests    []string
	chartIx  int
	attempt  int
	personal string

	msg      *message
	splashes []int
	field    *render.Field
	done     bool
}

// NewProgram wires a front end around a. With a nil time provider the
// system clock is used.
func NewProgram(cfg *config.Config, scorer score.Scorer, keys *input.KeyMap, player string, a session.Audio, tp clock.TimeProvider) *Program {
	if nil == tp {
		tp = clock.SystemTime{}
	}
	p := &Program{
		Config: cfg,
		Parser: &parser.DefaultParser{},
		Scorer: scorer,
		Theme:  &theme.DefaultTheme{},
		Keys:   keys,
		Player: player,
		time:   tp,
	}
	_, p.silent = a.(*audio.Silent)
	p.useAudio(a)
	p.refreshSongs()
	return p
}

func (p *Program) useAudio(a session.Audio) {
	p.audio = a
	p.session = session.New(session.Options{
		Tuning:  p.Config.Tuning,
		Time:    p.time,
		Audio:   a,
		Charts:  p.Parser,
		Records: p.Scorer,
		Player:  p.Player,
	})
}

// progress is how far through the song now is, false when the transport
// cannot tell the song length
func (p *Program) progress(now time.Duration) (float64, bool) {
	l, ok := p.audio.(interface{ Length() time.Duration })
	if !ok || l.Length() <= 0 {
		return 0, false
	}
	return math.Min(float64(now)/float64(l.Length()), 1), true
}

func (p *Program) Done() bool {
	return p.done
}

func (p *Program) InGame() bool {
	return p.screen == ScreenGame && (nil == p.msg || nil == p.msg.after)
}

func (p *Program) show(text string, after func()) {
	log.Println(text)
	p.msg = &message{text: text, left: messageTime, after: after}
}

func (p *Program) refreshSongs() {
	songs, err := library.ListSongs(p.Config.Assets)
	if nil != err {
		log.Println(err)
	}
	p.songs = songs
	if p.songIdx >= len(p.songs) {
		p.songIdx = 0
	}
}

func (p *Program) refreshCharts() {
	charts, err := library.ListCharts(p.Config.Assets, p.song)
	if nil != err {
		log.Println(err)
	}
	p.charts = charts
	p.bests = make([]string, len(charts))
	for i, c := range charts {
		best, ok, err := p.Scorer.Best(library.ChartID(c))
		if nil != err {
			log.Println(err)
			continue
		}
		if ok {
			p.bests[i] = fmt.Sprintf("best %v/%v (%.2f%%) by %v", best.Hits, best.Total, best.Accuracy, best.Player)
		}
	}
	if p.chartIx >= len(p.charts) {
		p.chartIx = 0
	}
}

// openSong moves to the chart choice, or straight into recording when the
// song has no charts yet
func (p *Program) openSong(song string) {
	p.song = song
	p.chartIx = 0
	p.refreshCharts()
	if len(p.charts) == 0 {
		p.show("No chart found. Entering recording mode...", p.record)
		return
	}
	p.screen = ScreenCharts
}

func (p *Program) openCharts() {
	p.refreshCharts()
	if len(p.charts) == 0 {
		p.screen = ScreenSongs
		return
	}
	p.screen = ScreenCharts
}

// start runs begin, retrying once without sound if the speaker is unusable
func (p *Program) start(begin func() error) error {
	err := begin()
	if errors.Is(err, audio.ErrSpeaker) && !p.silent {
		log.Println(err, "continuing without sound")
		p.silent = true
		p.useAudio(audio.NewSilent(p.time))
		err = begin()
	}
	return err
}

func (p *Program) record() {
	chart, err := library.NextChartPath(p.Config.Assets, p.song)
	if nil == err {
		err = p.start(func() error { return p.session.StartRecording(p.song, chart) })
	}
	if nil != err {
		p.show(fmt.Sprintf("Unable to record: %v", err), p.openCharts)
		return
	}
	p.screen = ScreenGame
}

func (p *Program) play(chart string) {
	notes, err := p.Parser.Parse(chart)
	if nil == err {
		err = p.start(func() error { return p.session.StartPlaying(p.song, chart, notes) })
	}
	if errors.Is(err, session.ErrEmptyChart) {
		p.show("Chart is empty, record it again", p.openCharts)
		return
	}
	if nil != err {
		p.show(fmt.Sprintf("Unable to play: %v", err), p.openCharts)
		return
	}
	p.screen = ScreenGame
}

func (p *Program) leaveResults() {
	if err := p.session.Dismiss(); nil != err {
		log.Println(err)
	}
	p.openCharts()
}

func (p *Program) Handle(ev input.Event) {
	if nil != p.msg && nil != p.msg.after {
		after := p.msg.after
		p.msg = nil
		after()
		return
	}

	switch p.screen {
	case ScreenSongs:
		p.handleSongs(ev)
	case ScreenCharts:
		p.handleCharts(ev)
	case ScreenConfirmDelete:
		p.handleConfirm(ev)
	case ScreenGame:
		p.handleGame(ev)
	case ScreenResults:
		switch ev.Action {
		case input.ActionSelect, input.ActionBack, input.ActionQuit:
			p.leaveResults()
		}
	}
}

func move(idx, n int, ev input.Event) int {
	if n == 0 {
		return 0
	}
	switch ev.Action {
	case input.ActionUp:
		return (idx - 1 + n) % n
	case input.ActionDown:
		return (idx + 1) % n
	}
	return idx
}

func (p *Program) handleSongs(ev input.Event) {
	switch ev.Action {
	case input.ActionQuit:
		p.done = true
	case input.ActionUp, input.ActionDown:
		p.songIdx = move(p.songIdx, len(p.songs), ev)
	case input.ActionSelect:
		if len(p.songs) > 0 {
			p.openSong(p.songs[p.songIdx])
		}
	}
}

func (p *Program) handleCharts(ev input.Event) {
	switch ev.Action {
	case input.ActionQuit, input.ActionBack:
		p.screen = ScreenSongs
	case input.ActionUp, input.ActionDown:
		p.chartIx = move(p.chartIx, len(p.charts), ev)
	case input.ActionSelect, input.ActionLoad:
		p.play(p.charts[p.chartIx])
	case input.ActionRecord:
		p.record()
	case input.ActionDelete:
		p.screen = ScreenConfirmDelete
	}
}

func (p *Program) handleConfirm(ev input.Event) {
	switch ev.Action {
	case input.ActionYes:
		chart := p.charts[p.chartIx]
		if library.DeleteChart(chart) {
			if err := p.Scorer.ResetChart(library.ChartID(chart), p.Player); nil != err {
				log.Println(err)
			}
			p.show("Deleted: "+filepath.Base(chart), p.openCharts)
			return
		}
		p.show("Unable to delete "+filepath.Base(chart), p.openCharts)
	case input.ActionNo, input.ActionBack, input.ActionQuit:
		p.screen = ScreenCharts
	}
}

func (p *Program) handleGame(ev input.Event) {
	phase := p.session.Phase()
	switch ev.Action {
	case input.ActionLane:
		if p.session.HandleLaneInput(ev.Lane) {
			p.splashes = append(p.splashes, ev.Lane)
		}
	case input.ActionPause:
		var err error
		if phase == session.PhasePaused {
			err = p.session.Resume()
		} else {
			err = p.session.Pause()
		}
		if nil != err {
			log.Println(err)
		}
	case input.ActionSave:
		if p.session.Mode() != session.ModeRecord {
			return
		}
		if err := p.session.SaveRecording(); nil != err {
			p.show(fmt.Sprintf("Unable to save: %v", err), nil)
			return
		}
		p.show("Chart saved!", nil)
	case input.ActionSelect:
		if phase != session.PhaseRecording {
			return
		}
		if err := p.session.PlayRecording(); nil != err {
			p.show(fmt.Sprintf("Unable to play: %v", err), nil)
		}
	case input.ActionQuit:
		p.session.Stop()
		p.openCharts()
	}
}

// Tick advances messages and the session by one frame
func (p *Program) Tick(dt time.Duration) {
	if nil != p.msg {
		p.msg.left -= dt
		if p.msg.left <= 0 {
			after := p.msg.after
			p.msg = nil
			if nil != after {
				after()
			}
		}
	}

	if p.screen != ScreenGame {
		return
	}

	wasIn := p.session.Phase().InSong()
	p.session.Update(dt)
	phase := p.session.Phase()
	if !wasIn || phase.InSong() {
		return
	}

	result := p.session.Result()
	switch phase {
	case session.PhaseResults:
		p.screen = ScreenResults
		history, err := p.Scorer.Load(library.ChartID(result.Chart))
		if nil != err {
			log.Println(err)
		}
		p.attempt = len(history)
		p.personal = ""
		best, ok, err := p.Scorer.PersonalBest(library.ChartID(result.Chart), p.Player)
		if nil != err {
			log.Println(err)
		} else if ok {
			p.personal = fmt.Sprintf("your best %v / %v (%.2f%%)", best.Hits, best.Total, best.Accuracy)
		}
	case session.PhaseIdle:
		switch {
		case nil != result.Err:
			p.show(fmt.Sprintf("Unable to save chart: %v", result.Err), p.openCharts)
		case result.Saved:
			p.show("Chart saved!", p.openCharts)
		default:
			p.openCharts()
		}
	}
}

func (p *Program) Draw(r render.Renderer) {
	cols, rows := r.Size()
	switch p.screen {
	case ScreenSongs:
		p.drawSongs(r)
	case ScreenCharts:
		p.drawCharts(r)
	case ScreenConfirmDelete:
		p.drawCharts(r)
		r.Fill(rows-2, 3, fmt.Sprintf("Delete %v? (y/n)", filepath.Base(p.charts[p.chartIx])))
	case ScreenGame:
		p.drawGame(r, cols, rows)
	case ScreenResults:
		p.drawResults(r)
	}

	if nil != p.msg {
		col := (cols - len(p.msg.text)) / 2
		if col < 1 {
			col = 1
		}
		r.Fill(rows/2, col, "\033[1m"+p.msg.text+"\033[0m")
	}
}

func (p *Program) drawList(r render.Renderer, items []string, selected int, notes []string) {
	for i, item := range items {
		prefix := "  "
		if i == selected {
			prefix = "> "
		}
		line := prefix + item
		if i < len(notes) && "" != notes[i] {
			line += "  " + notes[i]
		}
		r.Fill(5+i, 3, line)
	}
}

func (p *Program) drawSongs(r render.Renderer) {
	r.Fill(2, 3, fmt.Sprintf("hero  |  %v  |  keys %v", p.Player, p.Keys.Names()))
	if len(p.songs) == 0 {
		r.Fill(5, 3, fmt.Sprintf("No songs in %v", p.Config.Assets))
		return
	}
	names := make([]string, len(p.songs))
	for i, s := range p.songs {
		names[i] = library.DisplayName(s)
	}
	p.drawList(r, names, p.songIdx, nil)
	r.Fill(6+len(names), 3, "up/down select   enter open   esc quit")
}

func (p *Program) drawCharts(r render.Renderer) {
	r.Fill(2, 3, library.DisplayName(p.song))
	names := make([]string, len(p.charts))
	for i, c := range p.charts {
		names[i] = filepath.Base(c)
	}
	p.drawList(r, names, p.chartIx, p.bests)
	r.Fill(6+len(names), 3, "enter/l play   r record new   d delete   backspace back")
}

func (p *Program) drawGame(r render.Renderer, cols, rows int) {
	snap := p.session.Snapshot()
	tuning := p.Config.Tuning

	width := cols - 40
	if width > 60 {
		width = 60
	}
	if width < tuning.LaneCount() {
		width = tuning.LaneCount()
	}
	left := (cols-width)/2 + 10
	p.field = render.NewField(tuning, 2, rows-2, left, left+width)

	hitRow := p.field.HitRow()
	names := p.Keys.Names()
	for lane := 0; lane < tuning.LaneCount(); lane++ {
		col := p.field.HitCol(lane)
		r.Fill(hitRow, col, p.Theme.RenderHitField(lane))
		if lane < len(names) {
			r.FillColor(rows-1, col, p.Theme.LaneColor(lane), names[lane])
		}
	}
	for _, lane := range p.splashes {
		r.AddDecoration(p.field.HitCol(lane), hitRow-1, p.Theme.RenderHitSplash(lane), 8)
	}
	p.splashes = p.splashes[:0]

	for _, n := range snap.Active {
		if col, row, ok := p.field.NoteCell(n, snap.Now); ok {
			r.Fill(row, col, p.Theme.RenderNote(n.Lane))
		}
	}

	r.Fill(2, 3, fmt.Sprintf("%v  %v", snap.Mode, library.DisplayName(snap.Song)))
	r.Fill(3, 3, fmt.Sprintf("time    %6.1fs", snap.Now.Seconds()))
	if snap.Mode == session.ModeRecord {
		r.Fill(5, 3, fmt.Sprintf("notes   %6v", snap.Recorded))
		r.Fill(7, 3, "s save   enter try it")
	} else {
		r.Fill(5, 3, fmt.Sprintf("hits    %6v", snap.Score))
		r.Fill(6, 3, fmt.Sprintf("misses  %6v", snap.Misses))
		if snap.Score > 0 {
			r.Fill(7, 3, fmt.Sprintf("offset  %+5dms", snap.Offset.Milliseconds()))
		}
	}
	if done, ok := p.progress(snap.Now); ok {
		r.Fill(1, 1, strings.Repeat("━", int(done*float64(cols))))
	}
	r.Fill(8, 3, "space pause   esc quit")

	switch snap.Phase {
	case session.PhasePaused:
		r.Fill(rows/2-2, cols/2-4, "PAUSED")
	case session.PhaseResuming:
		r.Fill(rows/2-2, cols/2, fmt.Sprint(math.Ceil(snap.Countdown.Seconds())))
	}
}

func (p *Program) drawResults(r render.Renderer) {
	result := p.session.Result()
	r.Fill(2, 3, filepath.Base(result.Chart))
	r.Fill(4, 3, fmt.Sprintf("hits      %v / %v", result.Hits, result.Total))
	r.Fill(5, 3, fmt.Sprintf("misses    %v", result.Misses))
	r.Fill(6, 3, fmt.Sprintf("accuracy  %.2f%%", result.Accuracy))
	if p.attempt > 0 {
		r.Fill(7, 3, fmt.Sprintf("attempt   #%v", p.attempt))
	}
	if result.NewBest {
		r.Fill(9, 3, "New personal best!")
	}
	if "" != p.personal {
		r.Fill(10, 3, p.personal)
	}
	if nil != result.Err {
		r.Fill(11, 3, fmt.Sprintf("not saved: %v", result.Err))
	}
	r.Fill(13, 3, "enter continue")
}
