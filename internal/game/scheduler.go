package game

import "time"

// Scheduler moves chart notes into the active set as they come due, and
// retires the ones that can no longer be hit.
//
// Retirement is time based: a note is dropped once now > Time + Grace.
type Scheduler struct {
	Tuning Tuning
}

func NewScheduler(t Tuning) *Scheduler {
	return &Scheduler{Tuning: t}
}

// Advance spawns every note from cursor onwards that is due at now and
// returns the new cursor. The chart must be sorted, the scan stops at the
// first note not yet due.
func (s *Scheduler) Advance(chart Chart, active *ActiveNotes, now time.Duration, cursor int) int {
	for cursor < len(chart) && chart[cursor].Due(s.Tuning, now) {
		active.Add(chart[cursor])
		cursor++
	}
	return cursor
}

// Cleanup removes expired notes and returns how many it removed.
func (s *Scheduler) Cleanup(active *ActiveNotes, now time.Duration) int {
	retired := 0
	for i := 0; i < active.Len(); {
		if active.At(i).Expired(s.Tuning, now) {
			active.Remove(i)
			retired++
			continue
		}
		i++
	}
	return retired
}
