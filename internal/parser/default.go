package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"git.lost.host/meutraa/hero/internal/game"
)

// Chart files hold one note per line, "<lane> <seconds>", seconds written
// with four decimal places, ascending by time.
type DefaultParser struct{}

func (p *DefaultParser) parseLine(line string) (game.Note, bool) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return game.Note{}, false
	}
	lane, err := strconv.Atoi(fields[0])
	if nil != err || lane < 0 {
		return game.Note{}, false
	}
	seconds, err := strconv.ParseFloat(fields[1], 64)
	if nil != err || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return game.Note{}, false
	}
	return game.Note{
		Lane: lane,
		Time: time.Duration(math.Round(seconds * float64(time.Second))),
	}, true
}

// Decode returns every well formed note and how many lines were skipped
func (p *DefaultParser) Decode(r io.Reader) (game.Chart, int) {
	chart := game.Chart{}
	skipped := 0

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		note, ok := p.parseLine(line)
		if !ok {
			skipped++
			continue
		}
		chart = append(chart, note)
	}
	if err := scanner.Err(); nil != err {
		// Keep what was read before the failure
		log.Println("unable to finish reading chart", err)
	}
	return chart, skipped
}

func (p *DefaultParser) Parse(file string) (game.Chart, error) {
	f, err := os.Open(file)
	if errors.Is(err, os.ErrNotExist) {
		return game.Chart{}, nil
	}
	if nil != err {
		return game.Chart{}, fmt.Errorf("unable to open chart: %w", err)
	}
	defer f.Close()

	chart, skipped := p.Decode(f)
	if skipped > 0 {
		log.Printf("skipped %v malformed lines in %v\n", skipped, file)
	}
	return chart, nil
}

func (p *DefaultParser) Encode(w io.Writer, chart game.Chart) error {
	bw := bufio.NewWriter(w)
	for _, note := range chart {
		if _, err := fmt.Fprintf(bw, "%d %.4f\n", note.Lane, note.Time.Seconds()); nil != err {
			return err
		}
	}
	return bw.Flush()
}

// Write replaces the chart file, the old file is only swapped out once the
// new one is fully written
func (p *DefaultParser) Write(file string, chart game.Chart) error {
	dir := filepath.Dir(file)
	if err := os.MkdirAll(dir, 0o755); nil != err {
		return fmt.Errorf("unable to create chart directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".chart-*.tmp")
	if nil != err {
		return fmt.Errorf("unable to create chart: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := p.Encode(tmp, chart); nil != err {
		tmp.Close()
		return fmt.Errorf("unable to write chart: %w", err)
	}
	if err := tmp.Close(); nil != err {
		return fmt.Errorf("unable to write chart: %w", err)
	}
	if err := os.Rename(tmp.Name(), file); nil != err {
		return fmt.Errorf("unable to save chart: %w", err)
	}
	return nil
}

// SaveChart lets the parser act as the session's chart store
func (p *DefaultParser) SaveChart(file string, chart game.Chart) error {
	return p.Write(file, chart)
}
