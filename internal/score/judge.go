package score

import (
	"math"
	"time"

	"git.lost.host/meutraa/hero/internal/game"
)

// Judge matches lane input against the active notes.
//
// When several notes of the lane are inside the window at once, the one
// closest to the hit line wins. Equal distances go to the note spawned first.
type Judge struct {
	Tuning game.Tuning
}

func NewJudge(t game.Tuning) *Judge {
	return &Judge{Tuning: t}
}

// Attempt uses the tuning's hit window
func (j *Judge) Attempt(active *game.ActiveNotes, lane int, now time.Duration) (game.Note, bool) {
	low, high := j.Tuning.HitWindow()
	return j.AttemptWindow(active, lane, now, low, high)
}

// AttemptWindow removes and returns the hit note, if any note in lane has a
// y position within [low, high] at now.
func (j *Judge) AttemptWindow(active *game.ActiveNotes, lane int, now time.Duration, low, high float64) (game.Note, bool) {
	closest := -1
	distance := math.Inf(1)

	for i := 0; i < active.Len(); i++ {
		note := active.At(i)
		if note.Lane != lane {
			continue
		}
		_, y := note.Position(j.Tuning, now)
		if y < low || y > high {
			continue
		}
		if d := math.Abs(y - j.Tuning.HitY); d < distance {
			distance = d
			closest = i
		}
	}

	if closest < 0 {
		return game.Note{}, false
	}
	return active.Remove(closest), true
}

// Offset is how early (positive) or late (negative) an input at hitTime was
func Offset(n game.Note, hitTime time.Duration) time.Duration {
	return n.Time - hitTime
}
