package audio

import (
	"fmt"
	"os"
	"time"

	"git.lost.host/meutraa/hero/internal/clock"
)

// Silent is a transport for running without a sound device. It decodes the
// song only to learn its length, then reports playing until that much
// unpaused time has passed.
type Silent struct {
	clock   *clock.Song
	length  time.Duration
	loaded  bool
	playing bool
}

func NewSilent(tp clock.TimeProvider) *Silent {
	return &Silent{clock: clock.NewSong(tp)}
}

func (s *Silent) Load(path string) error {
	decode, err := decoderFor(path)
	if nil != err {
		return err
	}
	f, err := os.Open(path)
	if nil != err {
		return err
	}
	streamer, format, err := decode(f)
	if nil != err {
		f.Close()
		return fmt.Errorf("unable to decode %v: %w", path, err)
	}
	defer streamer.Close()

	s.length = format.SampleRate.D(streamer.Len())
	s.loaded = true
	s.playing = false
	return nil
}

func (s *Silent) Play() error {
	if !s.loaded {
		return ErrNotLoaded
	}
	s.clock.Start()
	s.playing = true
	return nil
}

func (s *Silent) Pause() {
	s.clock.Pause()
}

func (s *Silent) Resume() {
	s.clock.Resume()
}

func (s *Silent) Stop() {
	s.playing = false
}

func (s *Silent) IsPlaying() bool {
	return s.playing && s.clock.Elapsed() < s.length
}

func (s *Silent) Length() time.Duration {
	return s.length
}
