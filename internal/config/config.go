package config

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"git.lost.host/meutraa/hero/internal/game"
	"gopkg.in/alecthomas/kingpin.v2"
)

const Version = "0.3.0"

var ErrLaneMismatch = errors.New("lane keys and lane positions differ in count")

type Config struct {
	Assets      string
	Data        string
	Profile     string
	Keys        string
	LogFile     string
	FramePeriod time.Duration
	Mute        bool
	Tuning      game.Tuning
}

func floats(fs []float64) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = strconv.FormatFloat(f, 'f', -1, 64)
	}
	return out
}

// Parse reads the command line, args excludes the program name
func Parse(args []string) (*Config, error) {
	def := game.DefaultTuning()
	spawnXs := make([]float64, len(def.Lanes))
	hitXs := make([]float64, len(def.Lanes))
	for i, l := range def.Lanes {
		spawnXs[i], hitXs[i] = l.SpawnX, l.HitX
	}

	app := kingpin.New("hero", "Record a chart to a song, then try to play it back.")
	app.Version(Version)

	var (
		assets      = app.Flag("assets", "Song and chart directory").Default("assets").Short('a').String()
		data        = app.Flag("data", "Score database").Default("save_data/hero.db").String()
		profile     = app.Flag("profile", "Player profile").Default("guest").Short('u').String()
		keys        = app.Flag("keys", "Lane keys, left to right, overrides the profile").String()
		logFile     = app.Flag("log", "Log file").Default("hero.log").String()
		leadTime    = app.Flag("lead-time", "Time a note takes to reach the hit line").Default(def.LeadTime.String()).Short('l').Duration()
		hitWindow   = app.Flag("hit-window", "Half height of the hit window").Default(strconv.FormatFloat(def.HitHalfHeight, 'f', -1, 64)).Short('w').Float64()
		grace       = app.Flag("grace", "Time a note stays hittable past the hit line").Default(def.Grace.String()).Duration()
		countdown   = app.Flag("countdown", "Resume countdown").Default(def.Countdown.String()).Short('c').Duration()
		spawnY      = app.Flag("spawn-y", "Height notes spawn at").Default(strconv.FormatFloat(def.SpawnY, 'f', -1, 64)).Float64()
		hitY        = app.Flag("hit-y", "Height of the hit line").Default(strconv.FormatFloat(def.HitY, 'f', -1, 64)).Float64()
		spawnX      = app.Flag("spawn-x", "Spawn x of each lane, repeatable").Default(floats(spawnXs)...).Float64List()
		hitX        = app.Flag("hit-x", "Hit line x of each lane, repeatable").Default(floats(hitXs)...).Float64List()
		framePeriod = app.Flag("frame-period", "Render frame period").Default("16ms").Short('p').Duration()
		mute        = app.Flag("mute", "Keep time without opening the speaker").Short('m').Bool()
	)

	if _, err := app.Parse(args); nil != err {
		return nil, err
	}

	if len(*spawnX) != len(*hitX) {
		return nil, fmt.Errorf("%w: %v spawn positions, %v hit positions", ErrLaneMismatch, len(*spawnX), len(*hitX))
	}
	if "" != *keys && len([]rune(*keys)) != len(*spawnX) {
		return nil, fmt.Errorf("%w: %v keys, %v lanes", ErrLaneMismatch, len([]rune(*keys)), len(*spawnX))
	}
	if *framePeriod <= 0 {
		return nil, fmt.Errorf("frame period must be positive, got %v", *framePeriod)
	}

	t := game.Tuning{
		SpawnY:        *spawnY,
		HitY:          *hitY,
		HitHalfHeight: *hitWindow,
		LeadTime:      *leadTime,
		Grace:         *grace,
		Countdown:     *countdown,
	}
	for i := range *spawnX {
		t.Lanes = append(t.Lanes, game.Lane{SpawnX: (*spawnX)[i], HitX: (*hitX)[i]})
	}
	if err := t.Validate(); nil != err {
		return nil, err
	}

	return &Config{
		Assets:      *assets,
		Data:        *data,
		Profile:     *profile,
		Keys:        *keys,
		LogFile:     *logFile,
		FramePeriod: *framePeriod,
		Mute:        *mute,
		Tuning:      t,
	}, nil
}

// LaneKeys resolves the key binding, a flag wins over the profile's
func (c *Config) LaneKeys(profileKeys string) (string, error) {
	keys := c.Keys
	if "" == keys {
		keys = profileKeys
	}
	if len([]rune(keys)) != c.Tuning.LaneCount() {
		return "", fmt.Errorf("%w: %v keys, %v lanes", ErrLaneMismatch, len([]rune(keys)), c.Tuning.LaneCount())
	}
	return keys, nil
}
