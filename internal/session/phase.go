package session

import (
	"time"

	"git.lost.host/meutraa/hero/internal/game"
)

type Mode int

const (
	ModeIdle Mode = iota
	ModeRecord
	ModePlay
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeRecord:
		return "record"
	case ModePlay:
		return "play"
	}
	return "unknown"
}

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRecording
	PhasePlaying
	PhasePaused
	PhaseResuming // Counting down back into the phase that was paused
	PhaseResults
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRecording:
		return "recording"
	case PhasePlaying:
		return "playing"
	case PhasePaused:
		return "paused"
	case PhaseResuming:
		return "resuming"
	case PhaseResults:
		return "results"
	}
	return "unknown"
}

// Active reports whether song time is running and input is accepted
func (p Phase) Active() bool {
	return p == PhaseRecording || p == PhasePlaying
}

// InSong reports whether a song is loaded, paused or not
func (p Phase) InSong() bool {
	return p.Active() || p == PhasePaused || p == PhaseResuming
}

// Snapshot is a copy of the session state for rendering
type Snapshot struct {
	Phase     Phase
	Mode      Mode
	Song      string
	Chart     string
	Now       time.Duration
	Score     int
	Misses    int
	Offset    time.Duration // Early is positive, zero until the first hit
	Recorded  int
	Countdown time.Duration
	Active    []game.Note
	Result    Result
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		Phase:     s.phase,
		Mode:      s.mode,
		Song:      s.song,
		Chart:     s.chart,
		Now:       s.clock.Elapsed(),
		Score:     s.score,
		Misses:    s.misses,
		Offset:    s.offset,
		Recorded:  len(s.recorded),
		Countdown: s.countdown,
		Active:    s.active.Notes(),
		Result:    s.result,
	}
}

func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *Session) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

// Recorded returns a copy of the notes recorded, or being played back
func (s *Session) Recorded() game.Chart {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(game.Chart, len(s.recorded))
	copy(out, s.recorded)
	return out
}

func (s *Session) Result() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

func (s *Session) Tuning() game.Tuning {
	return s.tuning
}
