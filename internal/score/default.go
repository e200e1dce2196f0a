package score

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"git.lost.host/meutraa/hero/internal/game"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

var ErrNotInitialized = errors.New("score database not initialized")

// DefaultKeys is the lane binding new profiles start with
const DefaultKeys = "yuiop"

type DefaultScorer struct {
	db *sql.DB
}

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

type InputsCompact struct {
	Lane  int
	Times []time.Duration
}

// compactInputs groups input times by lane, one entry per lane up to the
// highest lane used
func compactInputs(inputs []game.Note) []InputsCompact {
	laneCount := 0
	for _, i := range inputs {
		if i.Lane+1 > laneCount {
			laneCount = i.Lane + 1
		}
	}
	ins := make([]InputsCompact, laneCount)
	for l := range ins {
		ins[l] = InputsCompact{Lane: l, Times: []time.Duration{}}
	}
	for _, i := range inputs {
		ins[i.Lane].Times = append(ins[i.Lane].Times, i.Time)
	}
	return ins
}

// uncompactInputs restores the time ordered input list
func uncompactInputs(inputs []InputsCompact) []game.Note {
	ins := []game.Note{}
	for _, i := range inputs {
		for _, t := range i.Times {
			ins = append(ins, game.Note{Lane: i.Lane, Time: t})
		}
	}
	sort.SliceStable(ins, func(a, b int) bool { return ins[a].Time < ins[b].Time })
	return ins
}

const schema = `
create table if not exists profiles
  (
	  id text not null primary key,
	  name text not null unique collate nocase,
	  keys text not null
  );
create table if not exists personal_bests
  (
	  profile_id text not null,
	  chart text not null,
	  hits integer not null,
	  total integer not null,
	  accuracy real not null,
	  primary key (profile_id, chart)
  );
create table if not exists global_bests
  (
	  chart text not null primary key,
	  player text not null,
	  hits integer not null,
	  total integer not null,
	  accuracy real not null
  );
create table if not exists scores
  (
	  id integer not null primary key,
	  chart text not null,
	  player text not null,
	  inputs blob,
	  played_at integer not null
  );
`

func (s *DefaultScorer) Init(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); nil != err {
			return fmt.Errorf("unable to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if nil != err {
		return fmt.Errorf("unable to open score database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err = db.Exec(schema); nil != err {
		db.Close()
		return fmt.Errorf("unable to create score tables: %w", err)
	}

	s.db = db
	return nil
}

func (s *DefaultScorer) Deinit() {
	if nil != s.db {
		s.db.Close()
		s.db = nil
	}
}

func (s *DefaultScorer) ready() error {
	if nil == s.db {
		return ErrNotInitialized
	}
	return nil
}

func loadProfile(q querier, name string) (*Profile, error) {
	p := Profile{}
	err := q.QueryRow("select id, name, keys from profiles where name = ?", name).Scan(&p.ID, &p.Name, &p.Keys)
	if errors.Is(err, sql.ErrNoRows) {
		p = Profile{ID: uuid.New().String(), Name: name, Keys: DefaultKeys}
		if _, err := q.Exec("insert into profiles(id, name, keys) values(?, ?, ?)", p.ID, p.Name, p.Keys); nil != err {
			return nil, fmt.Errorf("unable to create profile %q: %w", name, err)
		}
		return &p, nil
	}
	if nil != err {
		return nil, fmt.Errorf("unable to load profile %q: %w", name, err)
	}
	return &p, nil
}

// Profile loads the named profile, creating it when it does not exist
func (s *DefaultScorer) Profile(name string) (*Profile, error) {
	if err := s.ready(); nil != err {
		return nil, err
	}
	return loadProfile(s.db, name)
}

func (s *DefaultScorer) SaveProfile(p *Profile) error {
	if err := s.ready(); nil != err {
		return err
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	_, err := s.db.Exec(`insert into profiles(id, name, keys) values(?, ?, ?)
		on conflict(id) do update set name = excluded.name, keys = excluded.keys`, p.ID, p.Name, p.Keys)
	if nil != err {
		return fmt.Errorf("unable to save profile %q: %w", p.Name, err)
	}
	return nil
}

func (s *DefaultScorer) Profiles() ([]string, error) {
	if err := s.ready(); nil != err {
		return nil, err
	}
	rows, err := s.db.Query("select name from profiles order by name collate nocase")
	if nil != err {
		return nil, fmt.Errorf("unable to list profiles: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); nil != err {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *DefaultScorer) DeleteProfile(name string) (bool, error) {
	if err := s.ready(); nil != err {
		return false, err
	}
	tx, err := s.db.Begin()
	if nil != err {
		return false, err
	}
	defer tx.Rollback()

	var id string
	err = tx.QueryRow("select id from profiles where name = ?", name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if nil != err {
		return false, fmt.Errorf("unable to find profile %q: %w", name, err)
	}
	if _, err := tx.Exec("delete from personal_bests where profile_id = ?", id); nil != err {
		return false, err
	}
	if _, err := tx.Exec("delete from profiles where id = ?", id); nil != err {
		return false, err
	}
	return true, tx.Commit()
}

// RecordAttempt updates the global and personal bests. Either is only
// replaced by strictly more hits, a first attempt with zero hits still
// claims the empty global table.
func (s *DefaultScorer) RecordAttempt(chartID, playerID string, hits, total int) (bool, error) {
	if err := s.ready(); nil != err {
		return false, err
	}
	accuracy := Accuracy(hits, total)

	tx, err := s.db.Begin()
	if nil != err {
		return false, fmt.Errorf("unable to begin attempt: %w", err)
	}
	defer tx.Rollback()

	globalHits := -1
	err = tx.QueryRow("select hits from global_bests where chart = ?", chartID).Scan(&globalHits)
	if nil != err && !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("unable to read global best: %w", err)
	}
	if hits > globalHits {
		_, err = tx.Exec(`insert or replace into global_bests(chart, player, hits, total, accuracy)
			values(?, ?, ?, ?, ?)`, chartID, playerID, hits, total, accuracy)
		if nil != err {
			return false, fmt.Errorf("unable to save global best: %w", err)
		}
	}

	profile, err := loadProfile(tx, playerID)
	if nil != err {
		return false, err
	}

	personalHits := 0
	err = tx.QueryRow("select hits from personal_bests where profile_id = ? and chart = ?",
		profile.ID, chartID).Scan(&personalHits)
	if nil != err && !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("unable to read personal best: %w", err)
	}
	isNewBest := false
	if hits > personalHits {
		_, err = tx.Exec(`insert or replace into personal_bests(profile_id, chart, hits, total, accuracy)
			values(?, ?, ?, ?, ?)`, profile.ID, chartID, hits, total, accuracy)
		if nil != err {
			return false, fmt.Errorf("unable to save personal best: %w", err)
		}
		isNewBest = true
	}

	if err := tx.Commit(); nil != err {
		return false, fmt.Errorf("unable to commit attempt: %w", err)
	}
	return isNewBest, nil
}

func (s *DefaultScorer) Best(chartID string) (Best, bool, error) {
	if err := s.ready(); nil != err {
		return Best{}, false, err
	}
	var b Best
	err := s.db.QueryRow("select player, hits, total, accuracy from global_bests where chart = ?", chartID).
		Scan(&b.Player, &b.Hits, &b.Total, &b.Accuracy)
	if errors.Is(err, sql.ErrNoRows) {
		return Best{}, false, nil
	}
	if nil != err {
		return Best{}, false, fmt.Errorf("unable to read global best: %w", err)
	}
	return b, true, nil
}

func (s *DefaultScorer) PersonalBest(chartID, playerID string) (Best, bool, error) {
	if err := s.ready(); nil != err {
		return Best{}, false, err
	}
	b := Best{Player: playerID}
	err := s.db.QueryRow(`select pb.hits, pb.total, pb.accuracy from personal_bests pb
		join profiles p on p.id = pb.profile_id
		where p.name = ? and pb.chart = ?`, playerID, chartID).
		Scan(&b.Hits, &b.Total, &b.Accuracy)
	if errors.Is(err, sql.ErrNoRows) {
		return Best{}, false, nil
	}
	if nil != err {
		return Best{}, false, fmt.Errorf("unable to read personal best: %w", err)
	}
	return b, true, nil
}

// ResetChart wipes the chart from the global table and the player's bests
func (s *DefaultScorer) ResetChart(chartID, playerID string) error {
	if err := s.ready(); nil != err {
		return err
	}
	tx, err := s.db.Begin()
	if nil != err {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("delete from global_bests where chart = ?", chartID); nil != err {
		return fmt.Errorf("unable to reset global best: %w", err)
	}
	_, err = tx.Exec(`delete from personal_bests where chart = ? and profile_id in
		(select id from profiles where name = ?)`, chartID, playerID)
	if nil != err {
		return fmt.Errorf("unable to reset personal best: %w", err)
	}
	return tx.Commit()
}

// ResetAll wipes the whole global table and every best of the player
func (s *DefaultScorer) ResetAll(playerID string) error {
	if err := s.ready(); nil != err {
		return err
	}
	tx, err := s.db.Begin()
	if nil != err {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("delete from global_bests"); nil != err {
		return fmt.Errorf("unable to reset global bests: %w", err)
	}
	_, err = tx.Exec(`delete from personal_bests where profile_id in
		(select id from profiles where name = ?)`, playerID)
	if nil != err {
		return fmt.Errorf("unable to reset personal bests: %w", err)
	}
	return tx.Commit()
}

func (s *DefaultScorer) Save(chartID, playerID string, inputs []game.Note) error {
	if err := s.ready(); nil != err {
		return err
	}
	data, err := json.Marshal(compactInputs(inputs))
	if nil != err {
		return fmt.Errorf("unable to marshal inputs: %w", err)
	}
	_, err = s.db.Exec("insert into scores(chart, player, inputs, played_at) values(?, ?, ?, ?)",
		chartID, playerID, data, time.Now().Unix())
	if nil != err {
		return fmt.Errorf("unable to save score: %w", err)
	}
	return nil
}

func (s *DefaultScorer) Load(chartID string) ([]History, error) {
	if err := s.ready(); nil != err {
		return nil, err
	}
	histories := []History{}
	rows, err := s.db.Query("select chart, player, inputs, played_at from scores where chart = ? order by id", chartID)
	if nil != err {
		return histories, fmt.Errorf("unable to load scores: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var h History
		var data []byte
		var playedAt int64
		if err := rows.Scan(&h.Chart, &h.Player, &data, &playedAt); nil != err {
			log.Println("unable to scan score row", err)
			continue
		}
		var ins []InputsCompact
		if err := json.Unmarshal(data, &ins); nil != err {
			log.Println("unable to unmarshal input history", err)
			continue
		}
		h.Inputs = uncompactInputs(ins)
		h.PlayedAt = time.Unix(playedAt, 0)
		histories = append(histories, h)
	}
	return histories, rows.Err()
}
