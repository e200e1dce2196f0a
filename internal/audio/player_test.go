package audio

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"git.lost.host/meutraa/hero/internal/clock"
	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSilence(t *testing.T, d time.Duration) string {
	t.Helper()
	format := beep.Format{SampleRate: 8000, NumChannels: 1, Precision: 2}
	path := filepath.Join(t.TempDir(), "quiet.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, wav.Encode(f, beep.Silence(format.SampleRate.N(d)), format))
	return path
}

func TestDecoderFor(t *testing.T) {
	for _, ext := range []string{"a.mp3", "b.OGG", "c.wav"} {
		_, err := decoderFor(ext)
		assert.NoError(t, err, ext)
	}
	_, err := decoderFor("d.flac")
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestSilentRunsForSongLength(t *testing.T) {
	mock := clock.NewMockTime(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	s := NewSilent(mock)

	assert.ErrorIs(t, s.Play(), ErrNotLoaded)
	require.NoError(t, s.Load(writeSilence(t, 2*time.Second)))
	assert.Equal(t, 2*time.Second, s.Length())
	assert.False(t, s.IsPlaying())

	require.NoError(t, s.Play())
	mock.Advance(1500 * time.Millisecond)
	assert.True(t, s.IsPlaying())

	s.Pause()
	mock.Advance(time.Minute)
	assert.True(t, s.IsPlaying(), "paused time does not count")
	s.Resume()

	mock.Advance(500 * time.Millisecond)
	assert.False(t, s.IsPlaying())
}

func TestSilentStopAndErrors(t *testing.T) {
	s := NewSilent(nil)
	assert.Error(t, s.Load(filepath.Join(t.TempDir(), "missing.mp3")))
	assert.ErrorIs(t, s.Load("song.flac"), ErrUnsupported)

	require.NoError(t, s.Load(writeSilence(t, time.Minute)))
	require.NoError(t, s.Play())
	assert.True(t, s.IsPlaying())
	s.Stop()
	assert.False(t, s.IsPlaying())
}

func TestPlayerWithoutSong(t *testing.T) {
	p := NewPlayer()
	assert.ErrorIs(t, p.Play(), ErrNotLoaded)
	assert.False(t, p.IsPlaying())
	assert.Equal(t, time.Duration(0), p.Length())
	assert.ErrorIs(t, p.Load("song.flac"), ErrUnsupported)
	// no speaker has been opened, these must not block
	p.Pause()
	p.Resume()
	p.Stop()
	assert.NoError(t, p.Close())
}
