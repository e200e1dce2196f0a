package game

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var ErrInvalidTuning = errors.New("invalid tuning")

// Lane holds the game-space x coordinates a lane's notes travel between.
type Lane struct {
	SpawnX float64
	HitX   float64
}

// Tuning is the immutable gameplay configuration shared by the scheduler,
// the judge and note positioning. Game space has y increasing upward,
// notes fall from SpawnY towards HitY.
type Tuning struct {
	Lanes         []Lane
	SpawnY        float64
	HitY          float64
	HitHalfHeight float64       // Half the thickness of the hit window
	LeadTime      time.Duration // Travel time from spawn to the hit line
	Grace         time.Duration // How long past its time a note stays active
	Countdown     time.Duration // Delay between resume and gameplay continuing
}

func DefaultTuning() Tuning {
	return Tuning{
		Lanes: []Lane{
			{SpawnX: -29, HitX: -91},
			{SpawnX: -12, HitX: -43},
			{SpawnX: 6, HitX: 6},
			{SpawnX: 24, HitX: 53},
			{SpawnX: 46, HitX: 101},
		},
		SpawnY:        300,
		HitY:          -146,
		HitHalfHeight: 18,
		LeadTime:      4 * time.Second,
		Grace:         500 * time.Millisecond,
		Countdown:     3 * time.Second,
	}
}

func (t Tuning) LaneCount() int {
	return len(t.Lanes)
}

// HitWindow returns the inclusive y range an input is accepted in.
func (t Tuning) HitWindow() (low, high float64) {
	return t.HitY - t.HitHalfHeight, t.HitY + t.HitHalfHeight
}

// windowExit is how long after its time a note takes to fall out of the
// bottom of the hit window.
func (t Tuning) windowExit() time.Duration {
	travel := math.Abs(t.SpawnY - t.HitY)
	return time.Duration(math.Ceil(float64(t.LeadTime) * t.HitHalfHeight / travel))
}

func (t Tuning) Validate() error {
	if len(t.Lanes) == 0 {
		return fmt.Errorf("%w: no lanes", ErrInvalidTuning)
	}
	if t.LeadTime <= 0 {
		return fmt.Errorf("%w: lead time must be positive, got %v", ErrInvalidTuning, t.LeadTime)
	}
	if t.SpawnY == t.HitY {
		return fmt.Errorf("%w: spawn and hit y are both %v", ErrInvalidTuning, t.HitY)
	}
	if t.HitHalfHeight < 0 {
		return fmt.Errorf("%w: negative hit window %v", ErrInvalidTuning, t.HitHalfHeight)
	}
	if t.Countdown < 0 {
		return fmt.Errorf("%w: negative countdown %v", ErrInvalidTuning, t.Countdown)
	}
	if exit := t.windowExit(); t.Grace < exit {
		return fmt.Errorf("%w: grace %v would retire notes still inside the hit window (needs at least %v)",
			ErrInvalidTuning, t.Grace, exit)
	}
	return nil
}
