package score

import (
	"math"
	"time"

	"git.lost.host/meutraa/hero/internal/game"
)

type Scorer interface {
	Init(path string) error
	Deinit()

	// Record a finished playthrough, returns true on a new personal best
	RecordAttempt(chartID, playerID string, hits, total int) (bool, error)
	// The global best for the chart
	Best(chartID string) (Best, bool, error)
	PersonalBest(chartID, playerID string) (Best, bool, error)

	// Save the inputs of this performance
	Save(chartID, playerID string, inputs []game.Note) error
	// Load up previous performances for the chart
	Load(chartID string) ([]History, error)

	Profile(name string) (*Profile, error)
	SaveProfile(p *Profile) error
	Profiles() ([]string, error)
	DeleteProfile(name string) (bool, error)

	ResetChart(chartID, playerID string) error
	ResetAll(playerID string) error
}

type Best struct {
	Player   string
	Hits     int
	Total    int
	Accuracy float64 // Percent, rounded to two decimals
}

type Profile struct {
	ID   string
	Name string
	Keys string // One rune per lane
}

type History struct {
	Chart    string
	Player   string
	Inputs   []game.Note
	PlayedAt time.Time
}

// Accuracy is hits/total as a percentage rounded to two decimals
func Accuracy(hits, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(hits)/float64(total)*10000) / 100
}
