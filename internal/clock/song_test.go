package clock

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func TestElapsedBeforeStart(t *testing.T) {
	mock := NewMockTime(epoch)
	song := NewSong(mock)
	mock.Advance(time.Hour)
	assert.Equal(t, time.Duration(0), song.Elapsed())
}

func TestPauseExcludesPausedTime(t *testing.T) {
	mock := NewMockTime(epoch)
	song := NewSong(mock)
	song.Start()

	mock.Advance(1500 * time.Millisecond)
	before := song.Elapsed()
	song.Pause()

	mock.Advance(10 * time.Second)
	assert.Equal(t, before, song.Elapsed(), "frozen while paused")
	assert.Equal(t, 10*time.Second, song.PausedFor())

	song.Resume()
	assert.Equal(t, before, song.Elapsed(), "resumes from the paused value")

	mock.Advance(250 * time.Millisecond)
	assert.Equal(t, before+250*time.Millisecond, song.Elapsed())
}

func TestPauseResumeIdempotent(t *testing.T) {
	mock := NewMockTime(epoch)
	song := NewSong(mock)
	song.Start()

	song.Resume()
	mock.Advance(time.Second)
	assert.Equal(t, time.Second, song.Elapsed())

	song.Pause()
	mock.Advance(time.Second)
	song.Pause()
	mock.Advance(time.Second)
	assert.True(t, song.IsPaused())
	assert.Equal(t, time.Second, song.Elapsed())

	song.Resume()
	song.Resume()
	mock.Advance(time.Second)
	assert.Equal(t, 2*time.Second, song.Elapsed())
	assert.Equal(t, 2*time.Second, song.PausedFor())
}

func TestStartResetsPauseState(t *testing.T) {
	mock := NewMockTime(epoch)
	song := NewSong(mock)
	song.Start()
	mock.Advance(time.Second)
	song.Pause()
	mock.Advance(time.Second)

	song.Start()
	assert.False(t, song.IsPaused())
	assert.Equal(t, time.Duration(0), song.Elapsed())
	assert.Equal(t, time.Duration(0), song.PausedFor())
	mock.Advance(time.Second)
	assert.Equal(t, time.Second, song.Elapsed())
}

func TestElapsedNonDecreasingUnderRandomPauses(t *testing.T) {
	mock := NewMockTime(epoch)
	song := NewSong(mock)
	song.Start()
	rng := rand.New(rand.NewSource(7))

	var running, last time.Duration
	for i := 0; i < 5000; i++ {
		switch rng.Intn(4) {
		case 0:
			song.Pause()
		case 1:
			song.Resume()
		}
		step := time.Duration(rng.Int63n(int64(40 * time.Millisecond)))
		if !song.IsPaused() {
			running += step
		}
		mock.Advance(step)

		e := song.Elapsed()
		if e < last {
			t.Log("step", i, "elapsed went from", last, "to", e)
			t.FailNow()
		}
		assert.Equal(t, running, e)
		last = e
	}
}

func TestSystemTimeAdvances(t *testing.T) {
	song := NewSong(nil)
	song.Start()
	time.Sleep(5 * time.Millisecond)
	assert.GreaterOrEqual(t, song.Elapsed(), 5*time.Millisecond)
}
