package clock

import "time"

// Song is a pausable song clock. Elapsed is pulled from the wall clock on
// every call rather than integrated from frame deltas, so uneven frame
// intervals never drift it. Time spent paused is excluded.
//
// Song does no locking, the owning session serializes access.
type Song struct {
	time TimeProvider

	started     bool
	startTime   time.Time
	totalPaused time.Duration

	paused         bool
	pauseStartedAt time.Time
}

func NewSong(tp TimeProvider) *Song {
	if tp == nil {
		tp = SystemTime{}
	}
	return &Song{time: tp}
}

// Start begins a fresh song at elapsed zero, discarding any pause state
func (s *Song) Start() {
	s.started = true
	s.startTime = s.time.Now()
	s.totalPaused = 0
	s.paused = false
	s.pauseStartedAt = time.Time{}
}

func (s *Song) Pause() {
	if s.paused {
		return
	}
	s.pauseStartedAt = s.time.Now()
	s.paused = true
}

func (s *Song) Resume() {
	if !s.paused {
		return
	}
	s.totalPaused += s.time.Now().Sub(s.pauseStartedAt)
	s.pauseStartedAt = time.Time{}
	s.paused = false
}

func (s *Song) IsPaused() bool {
	return s.paused
}

// Elapsed returns song time. While paused it stays frozen at the value it had
// when the pause began. Before Start it is zero.
func (s *Song) Elapsed() time.Duration {
	if !s.started {
		return 0
	}
	now := s.time.Now()
	if s.paused {
		now = s.pauseStartedAt
	}
	return now.Sub(s.startTime) - s.totalPaused
}

// PausedFor is the total time excluded from Elapsed, including a pause in progress
func (s *Song) PausedFor() time.Duration {
	total := s.totalPaused
	if s.paused {
		total += s.time.Now().Sub(s.pauseStartedAt)
	}
	return total
}
