package session

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"git.lost.host/meutraa/hero/internal/clock"
	"git.lost.host/meutraa/hero/internal/game"
	"git.lost.host/meutraa/hero/internal/library"
	"git.lost.host/meutraa/hero/internal/score"
)

var (
	ErrNoSong            = errors.New("no song selected")
	ErrEmptyChart        = errors.New("chart has no notes")
	ErrInvalidTransition = errors.New("invalid session transition")
)

// Audio is the song transport the session drives in lockstep with its clock.
// A failed Load leaves the current song untouched.
type Audio interface {
	Load(path string) error
	Play() error
	Pause()
	Resume()
	Stop()
	IsPlaying() bool
}

// ChartStore persists recorded charts
type ChartStore interface {
	SaveChart(path string, chart game.Chart) error
}

// Records keeps best scores and attempt history
type Records interface {
	RecordAttempt(chartID, playerID string, hits, total int) (bool, error)
	Save(chartID, playerID string, inputs []game.Note) error
}

// Result describes how the last session ended
type Result struct {
	Mode     Mode
	Chart    string
	Hits     int
	Misses   int
	Total    int
	Accuracy float64 // Percent
	NewBest  bool
	Saved    bool
	Err      error // Persistence failure, the session itself still finished
}

// Session runs one record or playback pass over a song. All methods are
// safe to call from multiple goroutines, a single lock guards the clock,
// the active notes and the spawn cursor.
type Session struct {
	mu sync.Mutex

	tuning    game.Tuning
	clock     *clock.Song
	scheduler *game.Scheduler
	judge     *score.Judge

	audio   Audio
	charts  ChartStore
	records Records
	player  string

	phase     Phase
	resumeTo  Phase
	countdown time.Duration
	mode      Mode

	song   string
	chart  string // Chart path, the save target in record mode
	score  int
	misses int
	offset time.Duration // Of the last hit

	recorded game.Chart
	active   game.ActiveNotes
	cursor   int
	inputs   []game.Note

	result Result
}

type Options struct {
	Tuning  game.Tuning
	Time    clock.TimeProvider
	Audio   Audio
	Charts  ChartStore
	Records Records
	Player  string
}

func New(o Options) *Session {
	return &Session{
		tuning:    o.Tuning,
		clock:     clock.NewSong(o.Time),
		scheduler: game.NewScheduler(o.Tuning),
		judge:     score.NewJudge(o.Tuning),
		audio:     o.Audio,
		charts:    o.Charts,
		records:   o.Records,
		player:    o.Player,
	}
}

func (s *Session) reset(mode Mode, phase Phase, song, chart string, recorded game.Chart) {
	s.mode = mode
	s.phase = phase
	s.resumeTo = PhaseIdle
	s.countdown = 0
	s.song = song
	s.chart = chart
	s.score = 0
	s.misses = 0
	s.offset = 0
	s.recorded = recorded
	s.active.Clear()
	s.cursor = 0
	s.inputs = []game.Note{}
	s.result = Result{}
}

func (s *Session) startSong(song string) error {
	if err := s.audio.Load(song); nil != err {
		return fmt.Errorf("unable to load %v: %w", song, err)
	}
	s.audio.Stop()
	if err := s.audio.Play(); nil != err {
		return fmt.Errorf("unable to play %v: %w", song, err)
	}
	s.clock.Start()
	return nil
}

// StartRecording begins a fresh recording of song, saved to chart when the
// song ends or on SaveRecording
func (s *Session) StartRecording(song, chart string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if song == "" {
		return ErrNoSong
	}
	if err := s.startSong(song); nil != err {
		return err
	}
	s.reset(ModeRecord, PhaseRecording, song, chart, game.Chart{})
	return nil
}

// StartPlaying plays back chart over song. The chart is copied, sorted and
// stripped of notes outside the configured lanes.
func (s *Session) StartPlaying(song, chart string, notes game.Chart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startPlaying(song, chart, notes)
}

func (s *Session) startPlaying(song, chart string, notes game.Chart) error {
	if song == "" {
		return ErrNoSong
	}
	notes, dropped := notes.Sanitize(s.tuning.LaneCount())
	if dropped > 0 {
		log.Printf("dropped %v notes outside %v lanes\n", dropped, s.tuning.LaneCount())
	}
	if len(notes) == 0 {
		return ErrEmptyChart
	}
	if err := s.startSong(song); nil != err {
		return err
	}
	s.reset(ModePlay, PhasePlaying, song, chart, notes)
	return nil
}

// PlayRecording switches from recording straight to playing back what has
// been recorded so far
func (s *Session) PlayRecording() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode != ModeRecord || !s.phase.Active() {
		return fmt.Errorf("%w: play recording while %v", ErrInvalidTransition, s.phase)
	}
	if len(s.recorded) == 0 {
		return ErrEmptyChart
	}
	// attempts are stored under the chart's name, so the chart is written first
	if err := s.saveRecording(); nil != err {
		return err
	}
	return s.startPlaying(s.song, s.chart, s.recorded)
}

// SaveRecording writes what has been recorded so far without stopping
func (s *Session) SaveRecording() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode != ModeRecord {
		return fmt.Errorf("%w: save while %v", ErrInvalidTransition, s.mode)
	}
	return s.saveRecording()
}

func (s *Session) saveRecording() error {
	if s.chart == "" {
		return fmt.Errorf("%w: no chart path to save to", ErrInvalidTransition)
	}
	if len(s.recorded) == 0 {
		return ErrEmptyChart
	}
	if err := s.charts.SaveChart(s.chart, s.recorded); nil != err {
		return fmt.Errorf("unable to save chart: %w", err)
	}
	return nil
}

// Update advances the session by one frame. dt only drives the resume
// countdown, song time always comes from the clock.
func (s *Session) Update(dt time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.phase {
	case PhaseIdle, PhasePaused, PhaseResults:
		return
	case PhaseResuming:
		s.countdown -= dt
		if s.countdown > 0 {
			return
		}
		s.countdown = 0
		s.resumeGameplay()
	case PhaseRecording, PhasePlaying:
	}

	now := s.clock.Elapsed()
	if s.phase == PhasePlaying {
		s.cursor = s.scheduler.Advance(s.recorded, &s.active, now, s.cursor)
		s.misses += s.scheduler.Cleanup(&s.active, now)
	}

	if !s.audio.IsPlaying() {
		s.finish()
	}
}

func (s *Session) resumeGameplay() {
	s.clock.Resume()
	s.audio.Resume()
	s.phase = s.resumeTo
	s.resumeTo = PhaseIdle
}

func (s *Session) finish() {
	s.audio.Stop()
	result := Result{
		Mode:   s.mode,
		Chart:  s.chart,
		Hits:   s.score,
		Total:  len(s.recorded),
		Misses: s.misses,
	}

	switch s.mode {
	case ModeRecord:
		if len(s.recorded) == 0 {
			log.Println("nothing recorded, chart not saved")
		} else if err := s.saveRecording(); nil != err {
			log.Println(err)
			result.Err = err
		} else {
			result.Saved = true
		}
		s.phase = PhaseIdle
		s.mode = ModeIdle
	case ModePlay:
		// notes still on screen when the song stops were never hit
		result.Misses += s.active.Len() + len(s.recorded) - s.cursor
		result.Accuracy = score.Accuracy(s.score, len(s.recorded))
		chartID := library.ChartID(s.chart)
		if nil != s.records {
			newBest, err := s.records.RecordAttempt(chartID, s.player, s.score, len(s.recorded))
			if nil != err {
				log.Println("unable to record attempt", err)
				result.Err = err
			}
			result.NewBest = newBest
			if err := s.records.Save(chartID, s.player, s.inputs); nil != err {
				log.Println("unable to save inputs", err)
				if nil == result.Err {
					result.Err = err
				}
			}
		}
		s.phase = PhaseResults
	case ModeIdle:
		s.phase = PhaseIdle
	}

	s.active.Clear()
	s.result = result
}

// HandleLaneInput records the press in record mode, or judges it in play
// mode. It reports whether a note was hit.
func (s *Session) HandleLaneInput(lane int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if lane < 0 || lane >= s.tuning.LaneCount() {
		return false
	}

	switch s.phase {
	case PhaseRecording:
		s.recorded = append(s.recorded, game.Note{Lane: lane, Time: s.clock.Elapsed()})
	case PhasePlaying:
		now := s.clock.Elapsed()
		s.inputs = append(s.inputs, game.Note{Lane: lane, Time: now})
		if n, ok := s.judge.Attempt(&s.active, lane, now); ok {
			s.score++
			s.offset = score.Offset(n, now)
			return true
		}
	case PhaseIdle, PhasePaused, PhaseResuming, PhaseResults:
	}
	return false
}

func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.phase.Active() {
		return fmt.Errorf("%w: pause while %v", ErrInvalidTransition, s.phase)
	}
	s.clock.Pause()
	s.audio.Pause()
	s.resumeTo = s.phase
	s.phase = PhasePaused
	return nil
}

// Resume starts the countdown back into gameplay
func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhasePaused {
		return fmt.Errorf("%w: resume while %v", ErrInvalidTransition, s.phase)
	}
	s.countdown = s.tuning.Countdown
	s.phase = PhaseResuming
	if s.countdown <= 0 {
		s.resumeGameplay()
	}
	return nil
}

// Stop abandons the session without saving or scoring
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.audio.Stop()
	s.reset(ModeIdle, PhaseIdle, "", "", game.Chart{})
}

// Dismiss leaves the results screen
func (s *Session) Dismiss() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseResults {
		return fmt.Errorf("%w: dismiss while %v", ErrInvalidTransition, s.phase)
	}
	s.phase = PhaseIdle
	s.mode = ModeIdle
	return nil
}
