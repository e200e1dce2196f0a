package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"git.lost.host/meutraa/hero/internal/audio"
	"git.lost.host/meutraa/hero/internal/config"
	"git.lost.host/meutraa/hero/internal/input"
	"git.lost.host/meutraa/hero/internal/render"
	"git.lost.host/meutraa/hero/internal/score"
	"git.lost.host/meutraa/hero/internal/session"
)

func main() {
	if err := run(os.Args[1:]); nil != err {
		log.Fatalln(err)
	}
}

func run(args []string) error {
	cfg, err := config.Parse(args)
	if nil != err {
		return err
	}

	// The terminal belongs to the renderer, so logs go to a file
	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if nil != err {
		return fmt.Errorf("unable to open log file: %w", err)
	}
	defer logFile.Close()
	log.SetOutput(logFile)

	// Ensure our Default implementations are used as interfaces
	var scorer score.Scorer = &score.DefaultScorer{}
	var r render.Renderer = &render.DefaultRenderer{}

	if err := scorer.Init(cfg.Data); nil != err {
		return err
	}
	defer scorer.Deinit()

	profile, err := scorer.Profile(cfg.Profile)
	if nil != err {
		return err
	}
	keys, err := cfg.LaneKeys(profile.Keys)
	if nil != err {
		return err
	}
	if keys != profile.Keys {
		profile.Keys = keys
		if err := scorer.SaveProfile(profile); nil != err {
			log.Println(err)
		}
	}
	keyMap, err := input.NewKeyMap(keys)
	if nil != err {
		return err
	}

	var a session.Audio
	if cfg.Mute {
		a = audio.NewSilent(nil)
	} else {
		player := audio.NewPlayer()
		defer player.Close()
		a = player
	}

	reader, err := input.Open(128)
	if nil != err {
		return err
	}
	defer reader.Close()

	// Clear the screen and hide the cursor
	if err := r.Init(); nil != err {
		return err
	}
	defer func() {
		// Restore the terminal state
		if err := r.Deinit(); nil != err {
			log.Println(err)
		}
	}()

	log.Printf("playing as %v with keys %v\n", profile.Name, keys)
	p := NewProgram(cfg, scorer, keyMap, profile.Name, a, nil)
	r.RenderLoop(cfg.FramePeriod, func(dt time.Duration) bool {
		for _, ev := range reader.Drain() {
			p.Handle(keyMap.Translate(ev, p.InGame()))
		}
		p.Tick(dt)
		p.Draw(r)
		return !p.Done()
	})
	return nil
}
