package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
)

var (
	ErrNotLoaded   = errors.New("no song loaded")
	ErrUnsupported = errors.New("unsupported audio format")
	ErrSpeaker     = errors.New("unable to open speaker")
)

type decoder func(f *os.File) (beep.StreamSeekCloser, beep.Format, error)

func decoderFor(path string) (decoder, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return mp3.Decode(f) }, nil
	case ".ogg":
		return func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return vorbis.Decode(f) }, nil
	case ".wav":
		return func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return wav.Decode(f) }, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnsupported, filepath.Ext(path))
}

// Player streams one song at a time through the speaker. The speaker is
// initialised once, at the sample rate of the first song loaded, later songs
// are resampled to it.
type Player struct {
	mu sync.Mutex

	rate        beep.SampleRate
	initialized bool

	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl

	// Set from the speaker goroutine when the song runs out
	done    atomic.Bool
	started atomic.Bool
}

func NewPlayer() *Player {
	return &Player{}
}

func (p *Player) Load(path string) error {
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

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/60)); nil != err {
			streamer.Close()
			return fmt.Errorf("%w: %v", ErrSpeaker, err)
		}
		p.rate = format.SampleRate
		p.initialized = true
	}

	p.closeLocked()
	p.streamer = streamer
	p.format = format
	p.started.Store(false)
	p.done.Store(false)
	return nil
}

func (p *Player) closeLocked() {
	if nil != p.streamer {
		speaker.Clear()
		p.streamer.Close()
		p.streamer = nil
		p.ctrl = nil
	}
}

// Play starts the loaded song from the beginning
func (p *Player) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if nil == p.streamer {
		return ErrNotLoaded
	}
	speaker.Clear()
	if err := p.streamer.Seek(0); nil != err {
		return fmt.Errorf("unable to rewind song: %w", err)
	}

	var s beep.Streamer = p.streamer
	if p.format.SampleRate != p.rate {
		s = beep.Resample(4, p.format.SampleRate, p.rate, s)
	}
	p.done.Store(false)
	p.ctrl = &beep.Ctrl{Streamer: beep.Seq(s, beep.Callback(func() {
		p.done.Store(true)
	}))}
	p.started.Store(true)
	speaker.Play(p.ctrl)
	return nil
}

func (p *Player) setPaused(paused bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if nil == p.ctrl {
		return
	}
	speaker.Lock()
	p.ctrl.Paused = paused
	speaker.Unlock()
}

func (p *Player) Pause() {
	p.setPaused(true)
}

func (p *Player) Resume() {
	p.setPaused(false)
}

func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		speaker.Clear()
	}
	p.ctrl = nil
	p.started.Store(false)
}

// IsPlaying is true from Play until the song ends or is stopped, pausing
// does not change it
func (p *Player) IsPlaying() bool {
	return p.started.Load() && !p.done.Load()
}

// Length of the loaded song
func (p *Player) Length() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if nil == p.streamer {
		return 0
	}
	return p.format.SampleRate.D(p.streamer.Len())
}

// Close releases the loaded song
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()
	p.started.Store(false)
	return nil
}

var _ io.Closer = (*Player)(nil)
