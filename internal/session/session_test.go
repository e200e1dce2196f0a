package session

import (
	"errors"
	"testing"
	"time"

	"git.lost.host/meutraa/hero/internal/clock"
	"git.lost.host/meutraa/hero/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAudio struct {
	loadErr error
	loaded  string
	playing bool
	paused  bool
	calls   []string
}

func (a *fakeAudio) Load(path string) error {
	a.calls = append(a.calls, "load")
	if nil != a.loadErr {
		return a.loadErr
	}
	a.loaded = path
	return nil
}

func (a *fakeAudio) Play() error {
	a.calls = append(a.calls, "play")
	a.playing = true
	a.paused = false
	return nil
}

func (a *fakeAudio) Pause() {
	a.calls = append(a.calls, "pause")
	a.paused = true
}

func (a *fakeAudio) Resume() {
	a.calls = append(a.calls, "resume")
	a.paused = false
}

func (a *fakeAudio) Stop() {
	a.playing = false
}

func (a *fakeAudio) IsPlaying() bool {
	return a.playing
}

// end simulates the song running out
func (a *fakeAudio) end() {
	a.playing = false
}

type fakeCharts struct {
	saved map[string]game.Chart
	err   error
}

func (c *fakeCharts) SaveChart(path string, chart game.Chart) error {
	if nil != c.err {
		return c.err
	}
	out := make(game.Chart, len(chart))
	copy(out, chart)
	c.saved[path] = out
	return nil
}

type attempt struct {
	chart, player string
	hits, total   int
}

type fakeRecords struct {
	attempts []attempt
	inputs   [][]game.Note
	newBest  bool
	err      error
}

func (r *fakeRecords) RecordAttempt(chartID, playerID string, hits, total int) (bool, error) {
	if nil != r.err {
		return false, r.err
	}
	r.attempts = append(r.attempts, attempt{chartID, playerID, hits, total})
	return r.newBest, nil
}

func (r *fakeRecords) Save(chartID, playerID string, inputs []game.Note) error {
	r.inputs = append(r.inputs, inputs)
	return nil
}

type harness struct {
	*Session
	time    *clock.MockTime
	audio   *fakeAudio
	charts  *fakeCharts
	records *fakeRecords
}

func newHarness() *harness {
	h := &harness{
		time:    clock.NewMockTime(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
		audio:   &fakeAudio{},
		charts:  &fakeCharts{saved: map[string]game.Chart{}},
		records: &fakeRecords{newBest: true},
	}
	h.Session = New(Options{
		Tuning:  game.DefaultTuning(),
		Time:    h.time,
		Audio:   h.audio,
		Charts:  h.charts,
		Records: h.records,
		Player:  "ada",
	})
	return h
}

// tick advances wall time and runs one frame
func (h *harness) tick(d time.Duration) {
	h.time.Advance(d)
	h.Update(d)
}

func TestSingleNoteScenario(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.StartPlaying("song.mp3", "assets/song_chart_01.txt", game.Chart{{Lane: 0, Time: 2 * time.Second}}))

	h.Update(0)
	snap := h.Snapshot()
	assert.Len(t, snap.Active, 1, "already due at song start")

	h.tick(2 * time.Second)
	assert.True(t, h.HandleLaneInput(0))
	assert.Equal(t, 1, h.Score())
	assert.False(t, h.HandleLaneInput(0))
	assert.Equal(t, 1, h.Score())
}

func TestRecordAppendsInOrder(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.StartRecording("song.mp3", "assets/song_chart_01.txt"))
	assert.Equal(t, PhaseRecording, h.Phase())
	assert.Equal(t, "song.mp3", h.audio.loaded)

	h.tick(1200 * time.Millisecond)
	h.HandleLaneInput(3)
	h.HandleLaneInput(1)
	h.tick(300 * time.Millisecond)
	h.HandleLaneInput(0)
	assert.False(t, h.HandleLaneInput(9), "out of range lanes are ignored")

	assert.Equal(t, game.Chart{
		{Lane: 3, Time: 1200 * time.Millisecond},
		{Lane: 1, Time: 1200 * time.Millisecond},
		{Lane: 0, Time: 1500 * time.Millisecond},
	}, h.Recorded())
	assert.True(t, h.Recorded().IsSorted())
}

func TestRecordingSavesAtSongEnd(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.StartRecording("song.mp3", "assets/song_chart_01.txt"))
	h.tick(time.Second)
	h.HandleLaneInput(2)

	h.audio.end()
	h.tick(16 * time.Millisecond)

	assert.Equal(t, PhaseIdle, h.Phase())
	result := h.Result()
	assert.True(t, result.Saved)
	assert.Equal(t, ModeRecord, result.Mode)
	assert.Equal(t, game.Chart{{Lane: 2, Time: time.Second}}, h.charts.saved["assets/song_chart_01.txt"])
}

func TestRecordingSaveFailureIsReported(t *testing.T) {
	h := newHarness()
	h.charts.err = errors.New("disk full")
	require.NoError(t, h.StartRecording("song.mp3", "assets/song_chart_01.txt"))
	h.HandleLaneInput(0)

	assert.Error(t, h.SaveRecording())
	assert.Equal(t, PhaseRecording, h.Phase(), "a failed save keeps recording")

	h.audio.end()
	h.Update(0)
	result := h.Result()
	assert.False(t, result.Saved)
	assert.Error(t, result.Err)
	assert.Equal(t, PhaseIdle, h.Phase())
}

func TestSaveRecordingMidSong(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.StartRecording("song.mp3", "c.txt"))
	h.tick(time.Second)
	h.HandleLaneInput(4)

	require.NoError(t, h.SaveRecording())
	assert.Len(t, h.charts.saved["c.txt"], 1)
	assert.Equal(t, PhaseRecording, h.Phase())
}

func TestPlayRecording(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.StartRecording("song.mp3", "c.txt"))
	assert.ErrorIs(t, h.PlayRecording(), ErrEmptyChart)
	assert.Equal(t, PhaseRecording, h.Phase())

	h.tick(5 * time.Second)
	h.HandleLaneInput(1)
	require.NoError(t, h.PlayRecording())

	snap := h.Snapshot()
	assert.Equal(t, PhasePlaying, snap.Phase)
	assert.Equal(t, time.Duration(0), snap.Now, "the song restarts")
	assert.Equal(t, 1, snap.Recorded)
	assert.Equal(t, 0, snap.Score)
	assert.Equal(t, game.Chart{{Lane: 1, Time: 5 * time.Second}}, h.charts.saved["c.txt"])
}

func TestTriedRecordingScoresUnderSavedChart(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.StartRecording("song.mp3", "assets/song_chart_01.txt"))
	h.HandleLaneInput(0)
	require.NoError(t, h.PlayRecording())
	require.Contains(t, h.charts.saved, "assets/song_chart_01.txt", "the chart exists before it is scored")

	h.Update(0)
	assert.True(t, h.HandleLaneInput(0))
	h.audio.end()
	h.Update(0)

	assert.Equal(t, PhaseResults, h.Phase())
	assert.Equal(t, []attempt{{"song_chart_01.txt", "ada", 1, 1}}, h.records.attempts)
}

func TestPlayRecordingSaveFailureKeepsRecording(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.StartRecording("song.mp3", "c.txt"))
	h.tick(time.Second)
	h.HandleLaneInput(2)
	h.charts.err = errors.New("read only")

	assert.Error(t, h.PlayRecording())
	assert.Equal(t, PhaseRecording, h.Phase())
	assert.Equal(t, ModeRecord, h.Mode())
	assert.Len(t, h.Recorded(), 1)
	assert.Empty(t, h.records.attempts)
}

func TestPlayRecordingLoadFailureKeepsSongRunning(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.StartRecording("song.mp3", "c.txt"))
	h.tick(time.Second)
	h.HandleLaneInput(2)
	h.audio.loadErr = errors.New("file vanished")

	assert.Error(t, h.PlayRecording())
	assert.True(t, h.audio.playing, "the recording's song is not stopped")

	h.tick(16 * time.Millisecond)
	assert.Equal(t, PhaseRecording, h.Phase(), "the recording carries on")
	assert.Equal(t, time.Second+16*time.Millisecond, h.Snapshot().Now)
}

func TestEmptyRecordingIsNotSaved(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.StartRecording("song.mp3", "c.txt"))
	assert.ErrorIs(t, h.SaveRecording(), ErrEmptyChart)

	h.audio.end()
	h.Update(0)

	assert.Equal(t, PhaseIdle, h.Phase())
	result := h.Result()
	assert.False(t, result.Saved)
	assert.NoError(t, result.Err)
	assert.Empty(t, h.charts.saved)
}

func TestHitOffset(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.StartPlaying("song.mp3", "c.txt", game.Chart{
		{Lane: 0, Time: time.Second},
		{Lane: 1, Time: 2 * time.Second},
	}))
	h.Update(0)
	assert.Equal(t, time.Duration(0), h.Snapshot().Offset)

	h.tick(980 * time.Millisecond)
	require.True(t, h.HandleLaneInput(0))
	assert.Equal(t, 20*time.Millisecond, h.Snapshot().Offset, "early hits are positive")

	h.tick(1030 * time.Millisecond)
	require.True(t, h.HandleLaneInput(1))
	assert.Equal(t, -10*time.Millisecond, h.Snapshot().Offset)
}

func TestPlaythroughResults(t *testing.T) {
	h := newHarness()
	chart := game.Chart{
		{Lane: 0, Time: 1 * time.Second},
		{Lane: 1, Time: 2 * time.Second},
		{Lane: 2, Time: 3 * time.Second},
		{Lane: 3, Time: 9 * time.Second},
	}
	require.NoError(t, h.StartPlaying("song.mp3", "assets/song_chart_01.txt", chart))

	h.tick(time.Second)
	assert.True(t, h.HandleLaneInput(0))
	h.tick(time.Second)
	assert.False(t, h.HandleLaneInput(2), "wrong lane")
	h.tick(time.Second)
	assert.True(t, h.HandleLaneInput(2))
	h.tick(time.Second)
	assert.Equal(t, 1, h.Snapshot().Misses, "lane 1 expired")

	h.audio.end()
	h.tick(16 * time.Millisecond)

	assert.Equal(t, PhaseResults, h.Phase())
	result := h.Result()
	assert.Equal(t, 2, result.Hits)
	assert.Equal(t, 4, result.Total)
	assert.Equal(t, 2, result.Misses)
	assert.Equal(t, 50.0, result.Accuracy)
	assert.True(t, result.NewBest)
	assert.Equal(t, []attempt{{"song_chart_01.txt", "ada", 2, 4}}, h.records.attempts)
	require.Len(t, h.records.inputs, 1)
	assert.Len(t, h.records.inputs[0], 3)

	require.NoError(t, h.Dismiss())
	assert.Equal(t, PhaseIdle, h.Phase())
	assert.Equal(t, ModeIdle, h.Mode())
}

func TestPersistenceFailureStillShowsResults(t *testing.T) {
	h := newHarness()
	h.records.err = errors.New("locked")
	require.NoError(t, h.StartPlaying("song.mp3", "c.txt", game.Chart{{Lane: 0, Time: time.Second}}))
	h.audio.end()
	h.Update(0)

	assert.Equal(t, PhaseResults, h.Phase())
	assert.Error(t, h.Result().Err)
	assert.False(t, h.Result().NewBest)
}

func TestPauseFreezesNotesAndCountsDown(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.StartPlaying("song.mp3", "c.txt", game.Chart{{Lane: 0, Time: 10 * time.Second}}))

	h.tick(5 * time.Second)
	assert.Empty(t, h.Snapshot().Active)
	require.NoError(t, h.Pause())
	assert.True(t, h.audio.paused)
	assert.Equal(t, PhasePaused, h.Phase())
	assert.False(t, h.HandleLaneInput(0))

	h.tick(time.Minute)
	assert.Equal(t, 5*time.Second, h.Snapshot().Now)
	assert.ErrorIs(t, h.Pause(), ErrInvalidTransition)

	require.NoError(t, h.Resume())
	assert.Equal(t, PhaseResuming, h.Phase())
	assert.ErrorIs(t, h.Resume(), ErrInvalidTransition)

	h.tick(2 * time.Second)
	assert.Equal(t, PhaseResuming, h.Phase())
	assert.Equal(t, time.Second, h.Snapshot().Countdown)
	assert.Equal(t, 5*time.Second, h.Snapshot().Now, "still frozen during the countdown")

	h.tick(time.Second)
	assert.Equal(t, PhasePlaying, h.Phase())
	assert.False(t, h.audio.paused)
	assert.Equal(t, 5*time.Second, h.Snapshot().Now)

	h.tick(time.Second)
	assert.Equal(t, 6*time.Second, h.Snapshot().Now)
	assert.Len(t, h.Snapshot().Active, 1)
}

func TestPausedRecordingResumesIntoRecording(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.StartRecording("song.mp3", "c.txt"))
	h.tick(time.Second)
	require.NoError(t, h.Pause())
	h.audio.end()
	h.tick(10 * time.Second)
	assert.Equal(t, PhasePaused, h.Phase(), "no end of song check while paused")

	h.audio.playing = true
	require.NoError(t, h.Resume())
	h.tick(3 * time.Second)
	assert.Equal(t, PhaseRecording, h.Phase())
	h.HandleLaneInput(0)
	assert.Equal(t, game.Chart{{Lane: 0, Time: time.Second}}, h.Recorded())
}

func TestZeroCountdownResumesImmediately(t *testing.T) {
	h := newHarness()
	h.tuning.Countdown = 0
	require.NoError(t, h.StartRecording("song.mp3", "c.txt"))
	require.NoError(t, h.Pause())
	require.NoError(t, h.Resume())
	assert.Equal(t, PhaseRecording, h.Phase())
}

func TestRefusedTransitions(t *testing.T) {
	h := newHarness()

	assert.ErrorIs(t, h.StartRecording("", "c.txt"), ErrNoSong)
	assert.ErrorIs(t, h.StartPlaying("", "c.txt", game.Chart{{Lane: 0}}), ErrNoSong)
	assert.ErrorIs(t, h.StartPlaying("song.mp3", "c.txt", game.Chart{}), ErrEmptyChart)
	assert.ErrorIs(t, h.StartPlaying("song.mp3", "c.txt", game.Chart{{Lane: 7}}), ErrEmptyChart)
	assert.ErrorIs(t, h.Pause(), ErrInvalidTransition)
	assert.ErrorIs(t, h.SaveRecording(), ErrInvalidTransition)
	assert.ErrorIs(t, h.PlayRecording(), ErrInvalidTransition)
	assert.ErrorIs(t, h.Dismiss(), ErrInvalidTransition)
	assert.Empty(t, h.audio.calls, "refused starts never touch the audio")
	assert.Equal(t, PhaseIdle, h.Phase())

	h.audio.loadErr = errors.New("no such file")
	assert.Error(t, h.StartRecording("gone.mp3", "c.txt"))
	assert.Equal(t, PhaseIdle, h.Phase())
}

func TestStartPlayingSortsAndFilters(t *testing.T) {
	h := newHarness()
	chart := game.Chart{
		{Lane: 1, Time: 3 * time.Second},
		{Lane: 9, Time: 1 * time.Second},
		{Lane: 0, Time: 2 * time.Second},
	}
	require.NoError(t, h.StartPlaying("song.mp3", "c.txt", chart))

	assert.Equal(t, game.Chart{{Lane: 0, Time: 2 * time.Second}, {Lane: 1, Time: 3 * time.Second}}, h.Recorded())
	assert.Equal(t, 9, chart[1].Lane, "the caller's chart is untouched")
}

func TestRestartResetsState(t *testing.T) {
	h := newHarness()
	chart := game.Chart{{Lane: 0, Time: time.Second}, {Lane: 0, Time: 3 * time.Second}}
	require.NoError(t, h.StartPlaying("song.mp3", "c.txt", chart))
	h.tick(time.Second)
	require.True(t, h.HandleLaneInput(0))

	require.NoError(t, h.StartPlaying("song.mp3", "c.txt", chart))
	snap := h.Snapshot()
	assert.Equal(t, 0, snap.Score)
	assert.Empty(t, snap.Active)
	assert.Equal(t, time.Duration(0), snap.Now)

	h.Update(0)
	assert.Len(t, h.Snapshot().Active, 2)
}

func TestStop(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.StartRecording("song.mp3", "c.txt"))
	h.tick(time.Second)
	h.HandleLaneInput(0)
	h.Stop()

	assert.Equal(t, PhaseIdle, h.Phase())
	assert.False(t, h.audio.playing)
	assert.Empty(t, h.Recorded())
	assert.Empty(t, h.charts.saved, "stopping never saves")
}

func TestPhaseStrings(t *testing.T) {
	phases := map[Phase]string{
		PhaseIdle:      "idle",
		PhaseRecording: "recording",
		PhasePlaying:   "playing",
		PhasePaused:    "paused",
		PhaseResuming:  "resuming",
		PhaseResults:   "results",
		Phase(42):      "unknown",
	}
	for p, name := range phases {
		assert.Equal(t, name, p.String())
	}
	assert.Equal(t, "record", ModeRecord.String())
	assert.True(t, PhasePaused.InSong())
	assert.False(t, PhasePaused.Active())
}
