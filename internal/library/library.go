package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Extensions the audio package can decode
var SongExtensions = map[string]bool{
	".mp3": true,
	".ogg": true,
	".wav": true,
}

func sortByName(paths []string) {
	sort.SliceStable(paths, func(i, j int) bool {
		return strings.ToLower(filepath.Base(paths[i])) < strings.ToLower(filepath.Base(paths[j]))
	})
}

// DisplayName is the song's file name without extension
func DisplayName(song string) string {
	base := filepath.Base(song)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ChartID is the key scores are stored under
func ChartID(chart string) string {
	return filepath.Base(chart)
}

// ListSongs returns the playable audio files directly inside dir, sorted by
// name. A missing directory has no songs.
func ListSongs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	if nil != err {
		return nil, fmt.Errorf("unable to read song directory: %w", err)
	}

	songs := []string{}
	for _, e := range entries {
		if e.IsDir() || !SongExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		songs = append(songs, filepath.Join(dir, e.Name()))
	}
	sortByName(songs)
	return songs, nil
}

// ListCharts returns the charts recorded for song, files named
// <song>_chart*.txt in dir, sorted by name
func ListCharts(dir, song string) ([]string, error) {
	prefix := DisplayName(song) + "_chart"
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	if nil != err {
		return nil, fmt.Errorf("unable to read chart directory: %w", err)
	}

	charts := []string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".txt") {
			continue
		}
		charts = append(charts, filepath.Join(dir, name))
	}
	sortByName(charts)
	return charts, nil
}

// NextChartPath picks an unused chart name, <song>_chart_01.txt upwards
func NextChartPath(dir, song string) (string, error) {
	base := DisplayName(song)
	charts, err := ListCharts(dir, song)
	if nil != err {
		return "", err
	}
	existing := map[string]bool{}
	for _, c := range charts {
		existing[strings.ToLower(filepath.Base(c))] = true
	}

	for i := 1; i < 1000; i++ {
		name := fmt.Sprintf("%s_chart_%02d.txt", base, i)
		if !existing[strings.ToLower(name)] {
			return filepath.Join(dir, name), nil
		}
	}
	return filepath.Join(dir, base+"_chart_new.txt"), nil
}

// DeleteChart removes the chart, false when nothing was removed
func DeleteChart(chart string) bool {
	return nil == os.Remove(chart)
}
