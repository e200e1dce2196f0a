package game

import (
	"time"
)

// Note is one timed lane event. Recorded input and chart notes are the same
// value, a note becomes active once the scheduler spawns it.
type Note struct {
	Lane int           // The chart lane
	Time time.Duration // The song time the note should be hit
}

// Ratio is 1 when the note sits at its spawn point and 0 on the hit line.
// It goes negative once the note has passed the hit line.
func (n Note) Ratio(t Tuning, songTime time.Duration) float64 {
	return float64(n.Time-songTime) / float64(t.LeadTime)
}

// Position returns the game-space coordinates of the note at songTime.
// It is not clamped and may be asked for any time.
func (n Note) Position(t Tuning, songTime time.Duration) (x, y float64) {
	ratio := n.Ratio(t, songTime)
	lane := t.Lanes[n.Lane]
	x = lane.SpawnX*ratio + lane.HitX*(1-ratio)
	y = t.SpawnY*ratio + t.HitY*(1-ratio)
	return x, y
}

// Due reports whether the note should be on screen at now.
func (n Note) Due(t Tuning, now time.Duration) bool {
	return now >= n.Time-t.LeadTime
}

// Expired reports whether the note has passed its grace period at now.
func (n Note) Expired(t Tuning, now time.Duration) bool {
	return now > n.Time+t.Grace
}
